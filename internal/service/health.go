package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	client "keyhub/internal/database/client"

	"golang.org/x/sync/errgroup"
)

const readinessTimeout = 2 * time.Second

// Pinger 外部依賴的連線檢查
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthService struct {
	live   atomic.Bool
	ready  atomic.Bool
	checks map[string]Pinger
}

func NewHealthService(redisClient *client.RedisClient, mongoClient *client.MongoClient) *HealthService {
	s := &HealthService{
		checks: map[string]Pinger{
			"redis":   redisClient,
			"mongodb": mongoClient,
		},
	}
	s.live.Store(true)
	s.ready.Store(false) // 啟動完成後再打開
	return s
}

func (s *HealthService) SetReady(v bool) {
	s.ready.Store(v)
}

func (s *HealthService) IsLive() bool {
	return s.live.Load()
}

func (s *HealthService) IsReady() bool {
	return s.ready.Load()
}

// Dependencies 逐一 ping 外部依賴，回傳失敗的項目與原因；全部正常時為空 map
func (s *HealthService) Dependencies(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()

	var (
		mu     sync.Mutex
		g      errgroup.Group
		failed = map[string]string{}
	)
	for name, check := range s.checks {
		g.Go(func() error {
			if err := check.Ping(ctx); err != nil {
				mu.Lock()
				failed[name] = err.Error()
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return failed
}
