package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/campaign-shop/internal/model"
	"github.com/d60-Lab/campaign-shop/internal/repository"
	"github.com/d60-Lab/campaign-shop/internal/testutil"
)

func TestNotificationWorker_PushesPlacedOrders(t *testing.T) {
	f := newOrderFixture(t, nil)
	mr, rdb := newMiniredis(t)

	order, err := f.svc.PlaceOrder(context.Background(), f.input(f.shop.Products[0].ID))
	require.NoError(t, err)

	w := NewNotificationWorker(f.repos.Outbox, rdb, 1, 10, time.Second, time.Minute)
	n, err := w.processOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	items, err := mr.List(NotificationsKey)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	var ev model.OrderEvent
	require.NoError(t, f.db.First(&ev).Error)
	assert.Equal(t, model.OutboxDone, ev.Status)
	assert.NotNil(t, ev.ProcessedAt)

	recent, err := RecentNotifications(context.Background(), rdb, 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, order.ID, recent[0].OrderID)
	assert.Equal(t, order.TrackingNumber, recent[0].TrackingNumber)
	assert.Equal(t, "İstanbul", recent[0].City)
	assert.Equal(t, "584.90", recent[0].TotalAmount)

	// 已处理事件不会重复推送
	n, err = w.processOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNotificationWorker_CapsList(t *testing.T) {
	db := testutil.NewDB(t)
	outbox := repository.NewOutboxRepository(db)
	mr, rdb := newMiniredis(t)

	for i := 0; i < notificationsKeep+20; i++ {
		require.NoError(t, outbox.Create(context.Background(), &model.OrderEvent{
			ID:      fmt.Sprintf("ev-%03d", i),
			OrderID: uint(i + 1),
			Type:    model.OrderEventCreated,
			Payload: fmt.Sprintf(`{"order_id":%d}`, i+1),
			Status:  model.OutboxPending,
		}))
	}

	w := NewNotificationWorker(outbox, rdb, 1, 50, time.Second, time.Minute)
	total := 0
	for i := 0; i < 5; i++ {
		n, err := w.processOnce(context.Background())
		require.NoError(t, err)
		total += n
	}
	assert.Equal(t, notificationsKeep+20, total)

	items, err := mr.List(NotificationsKey)
	require.NoError(t, err)
	assert.Len(t, items, notificationsKeep)
}

func TestNotificationWorker_ReleasesOnRedisFailure(t *testing.T) {
	db := testutil.NewDB(t)
	outbox := repository.NewOutboxRepository(db)
	mr, rdb := newMiniredis(t)
	require.NoError(t, outbox.Create(context.Background(), &model.OrderEvent{
		ID: "ev-1", OrderID: 1, Type: model.OrderEventCreated, Payload: `{}`, Status: model.OutboxPending,
	}))

	mr.SetError("READONLY")
	w := NewNotificationWorker(outbox, rdb, 1, 10, time.Second, time.Minute)
	n, err := w.processOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	var ev model.OrderEvent
	require.NoError(t, db.First(&ev, "id = ?", "ev-1").Error)
	assert.Equal(t, model.OutboxPending, ev.Status)

	mr.SetError("")
	n, err = w.processOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

type flakyOutbox struct {
	repository.OutboxRepository
	failDone int
}

func (o *flakyOutbox) MarkDone(ctx context.Context, id string) error {
	if o.failDone > 0 {
		o.failDone--
		return errors.New("connection reset")
	}
	return o.OutboxRepository.MarkDone(ctx, id)
}

func TestNotificationWorker_MarkDoneFailure(t *testing.T) {
	db := testutil.NewDB(t)
	outbox := &flakyOutbox{OutboxRepository: repository.NewOutboxRepository(db), failDone: 1}
	mr, rdb := newMiniredis(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, outbox.Create(context.Background(), &model.OrderEvent{
			ID: fmt.Sprintf("ev-%d", i), OrderID: uint(i + 1), Type: model.OrderEventCreated,
			Payload: fmt.Sprintf(`{"order_id":%d}`, i+1), Status: model.OutboxPending,
			CreatedAt: time.Now().Add(time.Duration(i) * time.Second),
		}))
	}

	w := NewNotificationWorker(outbox, rdb, 1, 10, time.Second, time.Minute)
	n, err := w.processOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n, "one failed ack must not abort the rest of the batch")

	var stuck model.OrderEvent
	require.NoError(t, db.First(&stuck, "id = ?", "ev-0").Error)
	assert.Equal(t, model.OutboxProcessing, stuck.Status)
	assert.Equal(t, int64(2), testutil.CountRows(t, db.Where("status = ?", model.OutboxDone), &model.OrderEvent{}))

	// 租约未过期前不会被重复认领
	n, err = w.processOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, db.Model(&model.OrderEvent{}).Where("id = ?", "ev-0").
		Update("claimed_at", time.Now().Add(-2*time.Minute)).Error)
	n, err = w.processOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, db.First(&stuck, "id = ?", "ev-0").Error)
	assert.Equal(t, model.OutboxDone, stuck.Status)

	// 至少一次投递：ev-0 推送了两次
	items, err := mr.List(NotificationsKey)
	require.NoError(t, err)
	assert.Len(t, items, 4)
}

func TestNotificationWorker_StartStop(t *testing.T) {
	f := newOrderFixture(t, nil)
	mr, rdb := newMiniredis(t)
	_, err := f.svc.PlaceOrder(context.Background(), f.input(f.shop.Products[0].ID))
	require.NoError(t, err)

	w := NewNotificationWorker(f.repos.Outbox, rdb, 2, 10, 10*time.Millisecond, time.Minute)
	stop := w.Start()

	assert.Eventually(t, func() bool {
		items, _ := mr.List(NotificationsKey)
		return len(items) == 1
	}, 2*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, stop(ctx))

	select {
	case d := <-w.Metrics():
		assert.GreaterOrEqual(t, d, time.Duration(0))
	default:
		t.Fatal("expected a latency sample")
	}
}

func TestRedisVisitorStore_TouchTrimsStaleVisitors(t *testing.T) {
	mr, rdb := newMiniredis(t)
	store := NewRedisVisitorStore(rdb)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.Touch(ctx, "eski", now.Add(-2*visitorWindow)))
	require.NoError(t, store.Touch(ctx, "yeni", now))

	members, err := mr.ZMembers(VisitorsKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"yeni"}, members)
	assert.Equal(t, 2*visitorWindow, mr.TTL(VisitorsKey))
}

func TestMemoryVisitorStore_TouchTrimsStaleVisitors(t *testing.T) {
	store := NewMemoryVisitorStore()
	ctx := context.Background()
	old := time.Now().Add(-2 * visitorWindow)
	for i := 0; i < memoryPruneMin-1; i++ {
		require.NoError(t, store.Touch(ctx, fmt.Sprintf("eski-%d", i), old))
	}
	require.NoError(t, store.Touch(ctx, "yeni", time.Now()))

	store.mu.Lock()
	size := len(store.seen)
	store.mu.Unlock()
	assert.Equal(t, 1, size)
}

func TestVisitorTracker(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	stores := map[string]func(t *testing.T) VisitorStore{
		"redis": func(t *testing.T) VisitorStore {
			_, rdb := newMiniredis(t)
			return NewRedisVisitorStore(rdb)
		},
		"memory": func(*testing.T) VisitorStore { return NewMemoryVisitorStore() },
	}
	for name, newStore := range stores {
		t.Run(name, func(t *testing.T) {
			tracker := NewVisitorTracker(newStore(t), 16)
			clock := now
			tracker.now = func() time.Time { return clock }
			stop := tracker.Start(1)

			tracker.Enqueue("a")
			tracker.Enqueue("b")
			tracker.Enqueue("a")
			clock = now.Add(3 * time.Minute)
			tracker.Enqueue("c")

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			require.NoError(t, stop(ctx))
			require.Eventually(t, func() bool { return tracker.QueueLen() == 0 }, time.Second, 5*time.Millisecond)

			// 停止函数会排空队列，但 worker 可能仍在写最后一条
			require.Eventually(t, func() bool {
				n, err := tracker.ActiveCount(context.Background())
				return err == nil && n == 3
			}, time.Second, 5*time.Millisecond)

			clock = now.Add(6 * time.Minute)
			n, err := tracker.ActiveCount(context.Background())
			require.NoError(t, err)
			assert.EqualValues(t, 1, n)
		})
	}
}
