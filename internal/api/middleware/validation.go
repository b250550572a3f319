package middleware

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// 5XX XXX XX XX，允许 0 / +90 前缀与空格、括号、短横线
var trPhonePattern = regexp.MustCompile(`^(?:\+?90|0)?5\d{9}$`)

func validTRPhone(fl validator.FieldLevel) bool {
	cleaned := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(fl.Field().String())
	return trPhonePattern.MatchString(cleaned)
}

// RegisterValidators 向 gin 的校验器注册自定义规则
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}
	if err := v.RegisterValidation("tr_phone", validTRPhone); err != nil {
		return fmt.Errorf("register tr_phone: %w", err)
	}
	return nil
}

var fieldLabels = map[string]string{
	"FirstName":     "Ad",
	"LastName":      "Soyad",
	"Phone":         "Telefon",
	"CampaignID":    "Kampanya",
	"AddressDetail": "Adres",
	"ProductIDs":    "Ürün seçimi",
}

// ValidationMessage 把绑定错误转成给顾客看的提示
func ValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Form bilgileri okunamadı."
	}
	fe := verrs[0]
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s alanı zorunludur.", label)
	case "tr_phone":
		return "Lütfen geçerli bir cep telefonu numarası girin (5XX XXX XX XX)."
	case "max":
		return fmt.Sprintf("%s alanı çok uzun.", label)
	default:
		return fmt.Sprintf("%s alanı geçersiz.", label)
	}
}
