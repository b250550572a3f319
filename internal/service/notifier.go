package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/campaign-shop/internal/repository"
	"github.com/d60-Lab/campaign-shop/pkg/logger"
)

const (
	// NotificationsKey 后台实时面板读取的订单通知列表
	NotificationsKey  = "notifications:orders"
	notificationsKeep = 100
)

// NotificationWorker 从 outbox 拉取订单事件并推送到 Redis 通知列表
type NotificationWorker struct {
	outbox       repository.OutboxRepository
	rdb          redis.Cmdable
	batchSize    int
	pollInterval time.Duration
	claimLease   time.Duration
	workers      int
	metricsCh    chan time.Duration // outbox->pushed latency
}

func NewNotificationWorker(outbox repository.OutboxRepository, rdb redis.Cmdable, workers, batchSize int, pollInterval, claimLease time.Duration) *NotificationWorker {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	if claimLease <= 0 {
		claimLease = time.Minute
	}
	return &NotificationWorker{
		outbox:       outbox,
		rdb:          rdb,
		workers:      workers,
		batchSize:    batchSize,
		pollInterval: pollInterval,
		claimLease:   claimLease,
		metricsCh:    make(chan time.Duration, 1024),
	}
}

func (w *NotificationWorker) Metrics() <-chan time.Duration { return w.metricsCh }

// Start 启动若干 worker 轮询处理 outbox；返回停止函数。
func (w *NotificationWorker) Start() func(context.Context) error {
	stop := make(chan struct{})
	done := make(chan struct{}, w.workers)
	for i := 0; i < w.workers; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			w.loop(stop)
		}()
	}
	return func(ctx context.Context) error {
		close(stop)
		for i := 0; i < w.workers; i++ {
			select {
			case <-done:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	}
}

func (w *NotificationWorker) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if _, err := w.processOnce(context.Background()); err != nil {
				logger.Warn("notification worker: process batch failed", zap.Error(err))
			}
		}
	}
}

// processOnce claims one batch and pushes it; failed events go back to pending.
// An event whose MarkDone fails stays in processing and is re-claimed after
// the lease, so the feed may see it twice.
func (w *NotificationWorker) processOnce(ctx context.Context) (int, error) {
	batch, err := w.outbox.ClaimPending(ctx, w.batchSize, w.claimLease)
	if err != nil {
		return 0, fmt.Errorf("claim outbox: %w", err)
	}
	pushed := 0
	for _, ev := range batch {
		if err := w.push(ctx, ev.Payload); err != nil {
			logger.Warn("notification push failed",
				zap.String("event_id", ev.ID),
				zap.Uint("order_id", ev.OrderID),
				zap.Error(err),
			)
			if rerr := w.outbox.Release(ctx, ev.ID); rerr != nil {
				logger.Error("release outbox event failed", zap.String("event_id", ev.ID), zap.Error(rerr))
			}
			continue
		}
		if err := w.outbox.MarkDone(ctx, ev.ID); err != nil {
			logger.Error("mark outbox event done failed", zap.String("event_id", ev.ID), zap.Error(err))
			continue
		}
		pushed++
		if !ev.CreatedAt.IsZero() {
			select {
			case w.metricsCh <- time.Since(ev.CreatedAt):
			default:
			}
		}
	}
	return pushed, nil
}

func (w *NotificationWorker) push(ctx context.Context, payload string) error {
	_, err := w.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LPush(ctx, NotificationsKey, payload)
		p.LTrim(ctx, NotificationsKey, 0, notificationsKeep-1)
		return nil
	})
	return err
}

// Notification 通知列表中的一条记录
type Notification struct {
	OrderID        uint   `json:"order_id"`
	TrackingNumber string `json:"tracking_number"`
	CampaignTitle  string `json:"campaign_title"`
	Customer       string `json:"customer"`
	City           string `json:"city"`
	TotalAmount    string `json:"total_amount"`
	Items          int    `json:"items"`
	CreatedAt      string `json:"created_at"`
}

// RecentNotifications 最新的 n 条通知，最新的在前
func RecentNotifications(ctx context.Context, rdb redis.Cmdable, n int) ([]Notification, error) {
	if n <= 0 || n > notificationsKeep {
		n = notificationsKeep
	}
	raw, err := rdb.LRange(ctx, NotificationsKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Notification, 0, len(raw))
	for _, r := range raw {
		var nt Notification
		if err := json.Unmarshal([]byte(r), &nt); err != nil {
			logger.Warn("skip malformed notification", zap.Error(err))
			continue
		}
		out = append(out, nt)
	}
	return out, nil
}
