package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/campaign-shop/pkg/logger"
)

const (
	// VisitorsKey 活跃访客有序集合，score 为最近访问的毫秒时间戳
	VisitorsKey   = "visitors:active"
	visitorWindow = 5 * time.Minute
)

// VisitorStore 记录访客最近一次访问
type VisitorStore interface {
	Touch(ctx context.Context, visitorID string, at time.Time) error
	// Count 清理窗口外的访客并返回窗口内数量
	Count(ctx context.Context, since time.Time) (int64, error)
}

type RedisVisitorStore struct {
	rdb redis.Cmdable
}

func NewRedisVisitorStore(rdb redis.Cmdable) *RedisVisitorStore {
	return &RedisVisitorStore{rdb: rdb}
}

// Touch 写入时顺带清理窗口外的访客，无人查看面板时集合也不会无限增长
func (s *RedisVisitorStore) Touch(ctx context.Context, visitorID string, at time.Time) error {
	_, err := s.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.ZAdd(ctx, VisitorsKey, redis.Z{Score: float64(at.UnixMilli()), Member: visitorID})
		p.ZRemRangeByScore(ctx, VisitorsKey, "-inf", scoreBefore(at.Add(-visitorWindow)))
		p.Expire(ctx, VisitorsKey, 2*visitorWindow)
		return nil
	})
	return err
}

func (s *RedisVisitorStore) Count(ctx context.Context, since time.Time) (int64, error) {
	if err := s.rdb.ZRemRangeByScore(ctx, VisitorsKey, "-inf", scoreBefore(since)).Err(); err != nil {
		return 0, err
	}
	return s.rdb.ZCard(ctx, VisitorsKey).Result()
}

func scoreBefore(t time.Time) string {
	return "(" + strconv.FormatInt(t.UnixMilli(), 10)
}

// MemoryVisitorStore 单进程回退实现
type MemoryVisitorStore struct {
	mu      sync.Mutex
	seen    map[string]time.Time
	pruneAt int
}

const memoryPruneMin = 1024

func NewMemoryVisitorStore() *MemoryVisitorStore {
	return &MemoryVisitorStore{seen: make(map[string]time.Time), pruneAt: memoryPruneMin}
}

// Touch 集合大小翻倍时清理一次，均摊开销
func (s *MemoryVisitorStore) Touch(_ context.Context, visitorID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[visitorID] = at
	if len(s.seen) >= s.pruneAt {
		s.prune(at.Add(-visitorWindow))
		s.pruneAt = max(2*len(s.seen), memoryPruneMin)
	}
	return nil
}

func (s *MemoryVisitorStore) Count(_ context.Context, since time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune(since)
	return int64(len(s.seen)), nil
}

func (s *MemoryVisitorStore) prune(since time.Time) {
	for id, at := range s.seen {
		if at.Before(since) {
			delete(s.seen, id)
		}
	}
}

type touchJob struct {
	visitorID string
	at        time.Time
}

// VisitorTracker 异步记录访客，不阻塞请求路径；队列满时丢弃
type VisitorTracker struct {
	store VisitorStore
	ch    chan touchJob
	now   func() time.Time
}

func NewVisitorTracker(store VisitorStore, queueSize int) *VisitorTracker {
	if queueSize <= 0 {
		queueSize = 10000
	}
	return &VisitorTracker{store: store, ch: make(chan touchJob, queueSize), now: time.Now}
}

func (t *VisitorTracker) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 2
	}
	stopCh := make(chan struct{})
	for i := 0; i < workers; i++ {
		go func() {
			for {
				select {
				case job := <-t.ch:
					t.write(job)
				case <-stopCh:
					return
				}
			}
		}()
	}
	return func(ctx context.Context) error {
		close(stopCh)
		// 停止后同步排空剩余队列
		for {
			select {
			case job := <-t.ch:
				t.write(job)
			case <-ctx.Done():
				return ctx.Err()
			default:
				return nil
			}
		}
	}
}

func (t *VisitorTracker) write(job touchJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := t.store.Touch(ctx, job.visitorID, job.at); err != nil {
		logger.Warn("record visitor failed", zap.String("visitor", job.visitorID), zap.Error(err))
	}
}

func (t *VisitorTracker) Enqueue(visitorID string) {
	select {
	case t.ch <- touchJob{visitorID: visitorID, at: t.now()}:
	default:
		logger.Warn("visitor queue full, drop touch", zap.String("visitor", visitorID))
	}
}

// ActiveCount 最近 5 分钟内的访客数
func (t *VisitorTracker) ActiveCount(ctx context.Context) (int64, error) {
	return t.store.Count(ctx, t.now().Add(-visitorWindow))
}

// QueueLen 返回当前队列长度（采样值）。
func (t *VisitorTracker) QueueLen() int { return len(t.ch) }
