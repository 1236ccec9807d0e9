// AngelaMos | 2026
// stats.go

package admin

import (
	"context"
	"database/sql"
	"runtime"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const sampleTimeout = 2 * time.Second

// systemSampler gathers connection pool and runtime figures for the admin
// stats endpoints. Any of its funcs may be nil.
type systemSampler struct {
	dbStats    func() sql.DBStats
	redisStats func() *redis.PoolStats
	dbPing     func(ctx context.Context) error
	redisPing  func(ctx context.Context) error
}

func (p systemSampler) collect(ctx context.Context) SystemStatsResponse {
	ctx, cancel := context.WithTimeout(ctx, sampleTimeout)
	defer cancel()

	var (
		wg       sync.WaitGroup
		dbOK     bool
		dbLat    time.Duration
		redisOK  bool
		redisLat time.Duration
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		dbOK, dbLat = ping(ctx, p.dbPing)
	}()
	go func() {
		defer wg.Done()
		redisOK, redisLat = ping(ctx, p.redisPing)
	}()
	wg.Wait()

	return SystemStatsResponse{
		Database: DatabaseStatus{
			Healthy: dbOK,
			Latency: dbLat.String(),
			Stats:   p.dbPool(),
		},
		Redis: RedisStatus{
			Healthy: redisOK,
			Latency: redisLat.String(),
			Stats:   p.redisPool(),
		},
		Runtime: readRuntimeStats(),
	}
}

// ping reports a missing pinger as healthy: the dependency is simply not
// wired in that process.
func ping(ctx context.Context, fn func(context.Context) error) (bool, time.Duration) {
	if fn == nil {
		return true, 0
	}
	start := time.Now()
	err := fn(ctx)
	return err == nil, time.Since(start)
}

func (p systemSampler) dbPool() *DBPoolStats {
	if p.dbStats == nil {
		return nil
	}

	s := p.dbStats()
	return &DBPoolStats{
		MaxOpenConnections: s.MaxOpenConnections,
		OpenConnections:    s.OpenConnections,
		InUse:              s.InUse,
		Idle:               s.Idle,
		WaitCount:          s.WaitCount,
		WaitDuration:       s.WaitDuration.String(),
		MaxIdleClosed:      s.MaxIdleClosed,
		MaxIdleTimeClosed:  s.MaxIdleTimeClosed,
		MaxLifetimeClosed:  s.MaxLifetimeClosed,
	}
}

func (p systemSampler) redisPool() *RedisPoolStats {
	if p.redisStats == nil {
		return nil
	}

	s := p.redisStats()
	return &RedisPoolStats{
		Hits:       s.Hits,
		Misses:     s.Misses,
		Timeouts:   s.Timeouts,
		TotalConns: s.TotalConns,
		IdleConns:  s.IdleConns,
		StaleConns: s.StaleConns,
	}
}

func readRuntimeStats() RuntimeStats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return RuntimeStats{
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		MemAlloc:     mem.Alloc,
		MemSys:       mem.Sys,
		HeapObjects:  mem.HeapObjects,
		NumGC:        mem.NumGC,
	}
}
