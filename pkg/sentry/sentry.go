// Package sentry 包装错误上报；未配置 DSN 时所有调用均为空操作
package sentry

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/d60-Lab/campaign-shop/config"
)

var enabled bool

func Init(cfg config.SentryConfig) error {
	if cfg.DSN == "" {
		return nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		AttachStacktrace: true,
	}); err != nil {
		return err
	}
	enabled = true
	return nil
}

// CaptureError 上报错误并附带标签
func CaptureError(ctx context.Context, err error, tags map[string]string) {
	if !enabled || err == nil {
		return
	}
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		hub.CaptureException(err)
	})
}

func Flush() {
	if enabled {
		sentry.Flush(2 * time.Second)
	}
}

// CapturePanic 上报 recover 得到的值
func CapturePanic(ctx context.Context, recovered interface{}) {
	if !enabled || recovered == nil {
		return
	}
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}
	hub.RecoverWithContext(ctx, recovered)
}
