package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/d60-Lab/campaign-shop/config"
	"github.com/d60-Lab/campaign-shop/internal/app"
	"github.com/d60-Lab/campaign-shop/internal/model"
	"github.com/d60-Lab/campaign-shop/internal/repository"
	"github.com/d60-Lab/campaign-shop/internal/service"
	"github.com/d60-Lab/campaign-shop/pkg/cache"
	"github.com/d60-Lab/campaign-shop/pkg/database"
	"github.com/d60-Lab/campaign-shop/pkg/logger"
)

// 模拟秒杀流量：大量买家并发抢购少量库存，验证不超卖并统计延迟
var (
	buyers      = flag.Int("buyers", 500, "买家数量")
	concurrency = flag.Int("concurrency", 50, "并发数")
	stockQty    = flag.Int("stock", 100, "每个商品的库存")
	products    = flag.Int("products", 3, "活动内商品数")
	perIP       = flag.Int("buyers-per-ip", 1, "每个 IP 的买家数，大于限流阈值时会触发 429")
)

type BenchResult struct {
	Name            string
	Duration        time.Duration
	TotalRequests   int64
	SuccessRequests int64
	FailedRequests  int64
	QPS             float64
	AvgLatency      time.Duration
	P50Latency      time.Duration
	P95Latency      time.Duration
	P99Latency      time.Duration
}

type address struct {
	CityID, DistrictID, NeighborhoodID uint
}

type outcomes struct {
	placed, outOfStock, limited, other int64
}

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init("error", "console"); err != nil {
		return err
	}
	ctx := context.Background()

	db, err := database.InitDB(cfg)
	if err != nil {
		return err
	}
	if err := repository.InitSchema(db); err != nil {
		return err
	}
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		if rdb, err = cache.NewRedisClient(ctx, cfg.Redis.Addr, cache.WithPassword(cfg.Redis.Password), cache.WithDB(cfg.Redis.DB)); err != nil {
			return err
		}
		defer rdb.Close()
	}

	a, err := app.New(cfg, db, rdb)
	if err != nil {
		return err
	}

	campaign, productIDs, addr, err := prepareCampaign(ctx, a)
	if err != nil {
		return err
	}

	fmt.Println("===== 活动下单压测 =====")
	fmt.Printf("活动: %s (id=%d)\n", campaign.Slug, campaign.ID)
	fmt.Printf("买家数: %d | 并发数: %d | 商品数: %d | 每商品库存: %d\n", *buyers, *concurrency, len(productIDs), *stockQty)

	var (
		out       outcomes
		total     int64
		latencies []time.Duration
		latencyMu sync.Mutex
		wg        sync.WaitGroup
	)
	jobs := make(chan int)
	start := time.Now()
	for w := 0; w < *concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				// 每个买家买满最低数量，商品轮换
				ip := i / max(*perIP, 1)
				ids := make([]uint, campaign.MinQuantity)
				for k := range ids {
					ids[k] = productIDs[(i+k)%len(productIDs)]
				}
				in := service.PlaceOrderInput{
					CampaignID:     campaign.ID,
					FirstName:      "Alıcı",
					LastName:       fmt.Sprintf("No%d", i),
					Phone:          fmt.Sprintf("0555%07d", i),
					CityID:         addr.CityID,
					DistrictID:     addr.DistrictID,
					NeighborhoodID: addr.NeighborhoodID,
					AddressDetail:  "Simülasyon",
					ProductIDs:     ids,
					ClientIP:       fmt.Sprintf("10.%d.%d.%d", ip>>16&0xff, ip>>8&0xff, ip&0xff),
				}

				reqStart := time.Now()
				_, err := a.Orders.PlaceOrder(ctx, in)
				latency := time.Since(reqStart)

				atomic.AddInt64(&total, 1)
				switch {
				case err == nil:
					atomic.AddInt64(&out.placed, 1)
				case errors.Is(err, service.ErrOutOfStock):
					atomic.AddInt64(&out.outOfStock, 1)
				case errors.Is(err, service.ErrTooManyRequests):
					atomic.AddInt64(&out.limited, 1)
				default:
					if atomic.AddInt64(&out.other, 1) <= 5 {
						fmt.Printf("下单失败: %v\n", err)
					}
				}

				latencyMu.Lock()
				latencies = append(latencies, latency)
				latencyMu.Unlock()
			}
		}()
	}
	for i := 0; i < *buyers; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	duration := time.Since(start)

	printBenchResult(calculateResult("PlaceOrder", duration, total, out.placed, total-out.placed, latencies))
	fmt.Printf("成功: %d | 缺货: %d | 限流: %d | 其他错误: %d\n", out.placed, out.outOfStock, out.limited, out.other)

	return verifyStock(ctx, a, campaign, productIDs, out.placed)
}

// prepareCampaign 建一个独立的压测活动，避免影响已有数据
func prepareCampaign(ctx context.Context, a *app.App) (*model.Campaign, []uint, *address, error) {
	suffix := time.Now().UnixNano()
	c := &model.Campaign{
		Title: "Trafik Simülasyonu", Slug: fmt.Sprintf("trafficsim-%d", suffix),
		Price: decimal.NewFromInt(300), MinQuantity: 3,
		ShippingPrice: decimal.NewFromInt(100), CODPrice: decimal.NewFromInt(100), CODPriceDiscounted: decimal.NewFromInt(85),
		IsActive: true,
	}
	if err := a.Repos.Campaigns.Create(ctx, c); err != nil {
		return nil, nil, nil, err
	}
	ids := make([]uint, 0, *products)
	for i := 0; i < *products; i++ {
		p := &model.Product{
			Name: fmt.Sprintf("Sim Ürün %d", i+1), SKU: fmt.Sprintf("SIM-%d-%d", suffix, i),
			IsActive: true, StockQty: *stockQty,
		}
		if err := a.DB.WithContext(ctx).Create(p).Error; err != nil {
			return nil, nil, nil, err
		}
		if err := a.Repos.Campaigns.AddProduct(ctx, c.ID, p.ID, i); err != nil {
			return nil, nil, nil, err
		}
		ids = append(ids, p.ID)
	}

	var addr address
	res := a.DB.WithContext(ctx).Table("neighborhoods").
		Select("districts.city_id AS city_id, neighborhoods.district_id AS district_id, neighborhoods.id AS neighborhood_id").
		Joins("JOIN districts ON districts.id = neighborhoods.district_id").
		Limit(1).Scan(&addr)
	if res.Error != nil {
		return nil, nil, nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil, nil, errors.New("no address data, run cmd/seed first")
	}
	return c, ids, &addr, nil
}

// verifyStock 扣减总量必须等于成功订单件数，且库存不为负
func verifyStock(ctx context.Context, a *app.App, c *model.Campaign, ids []uint, placed int64) error {
	ps, err := a.Repos.Products.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	var sold int64
	for _, p := range ps {
		if p.StockQty < 0 {
			return fmt.Errorf("product %d oversold: stock %d", p.ID, p.StockQty)
		}
		sold += int64(*stockQty - p.StockQty)
	}
	if want := placed * int64(c.MinQuantity); sold != want {
		return fmt.Errorf("stock mismatch: sold %d units, orders account for %d", sold, want)
	}
	fmt.Printf("✅ 库存校验通过：售出 %d 件，无超卖\n", sold)
	return nil
}

func calculateResult(name string, duration time.Duration, total, success, failed int64, latencies []time.Duration) *BenchResult {
	r := &BenchResult{
		Name:            name,
		Duration:        duration,
		TotalRequests:   total,
		SuccessRequests: success,
		FailedRequests:  failed,
	}
	if len(latencies) == 0 {
		return r
	}
	r.QPS = float64(total) / duration.Seconds()

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}
	r.AvgLatency = sum / time.Duration(len(latencies))

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	r.P50Latency = percentile(latencies, 0.50)
	r.P95Latency = percentile(latencies, 0.95)
	r.P99Latency = percentile(latencies, 0.99)
	return r
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	index := int(math.Ceil(float64(len(sorted))*p)) - 1
	if index < 0 {
		index = 0
	}
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}

func printBenchResult(result *BenchResult) {
	fmt.Printf("名称: %s\n", result.Name)
	fmt.Printf("耗时: %v\n", result.Duration)
	fmt.Printf("总请求数: %d\n", result.TotalRequests)
	fmt.Printf("成功请求: %d\n", result.SuccessRequests)
	fmt.Printf("失败请求: %d\n", result.FailedRequests)
	fmt.Printf("QPS: %.2f\n", result.QPS)
	fmt.Printf("平均延迟: %v\n", result.AvgLatency)
	fmt.Printf("P50 延迟: %v\n", result.P50Latency)
	fmt.Printf("P95 延迟: %v\n", result.P95Latency)
	fmt.Printf("P99 延迟: %v\n", result.P99Latency)
}
