package service

import (
	"errors"
	"fmt"
)

// 下单错误种类；OrderError.Kind 取其一，可用 errors.Is 判断
var (
	ErrTooManyRequests      = errors.New("too many requests")
	ErrNotFound             = errors.New("not found")
	ErrCampaignInactive     = errors.New("campaign inactive")
	ErrInsufficientQuantity = errors.New("insufficient quantity")
	ErrEmptySelection       = errors.New("empty selection")
	ErrSecurityViolation    = errors.New("security violation")
	ErrOutOfStock           = errors.New("out of stock")
	ErrInternal             = errors.New("internal error")
)

const (
	msgTooManyRequests   = "Çok fazla sipariş denemesi yaptınız. Lütfen %d dakika sonra tekrar deneyin."
	msgCampaignNotFound  = "Kampanya bulunamadı."
	msgAddressNotFound   = "Seçilen adres bilgisi bulunamadı."
	msgProductNotFound   = "Seçilen ürün bulunamadı."
	msgCampaignInactive  = "Bu kampanya şu anda aktif değil."
	msgInsufficientQty   = "En az %d adet ürün seçmelisiniz."
	msgEmptySelection    = "Lütfen en az bir ürün seçin."
	msgSecurityViolation = "Güvenlik Hatası: Seçiminiz doğrulanamadı. Lütfen sayfayı yenileyip tekrar deneyin."
	msgOutOfStock        = "Üzgünüz, %s ürünü stokta yok."
	msgInternal          = "Siparişiniz oluşturulurken bir hata oluştu. Lütfen tekrar deneyin."
)

// OrderError 面向顾客的下单错误，Message 为土耳其语提示
type OrderError struct {
	Kind      error
	Message   string
	ProductID uint
	Err       error
}

func (e *OrderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *OrderError) Is(target error) bool { return target == e.Kind }

func (e *OrderError) Unwrap() error { return e.Err }

func newOrderError(kind error, msg string) *OrderError {
	return &OrderError{Kind: kind, Message: msg}
}
