package main

import (
	"context"
	"net/http"
	"time"

	"github.com/alexsward/marquee/store"
	"github.com/alexsward/marquee/store/memory"
	"github.com/alexsward/marquee/store/redis"
	"github.com/pkg/errors"
	"github.com/tidwall/redcon"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type Service interface {
	Run(ctx context.Context) error
}

// BackingStore describes one partition of the movie store.
type BackingStore struct {
	Type      store.StoreType
	Partition int
	Address   string
}

type LimiterConfig struct {
	RPS   float64
	Burst int
}

type ServiceConfig struct {
	ListenAddr      string
	RespAddr        string
	BackingStores   []BackingStore
	Partitioner     string
	Limiter         LimiterConfig
	ShutdownTimeout time.Duration
}

func NewService(cfg *ServiceConfig) (Service, error) {
	s, err := newService(cfg)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func newService(cfg *ServiceConfig) (*service, error) {
	if len(cfg.BackingStores) == 0 {
		return nil, errors.New("no backing stores supplied to Service")
	}
	router, err := store.ParsePartitionStrategy(cfg.Partitioner, len(cfg.BackingStores))
	if err != nil {
		return nil, err
	}

	partitions := make([]store.Partition, 0, len(cfg.BackingStores))
	for _, bs := range cfg.BackingStores {
		st, err := newBackingStore(bs)
		if err != nil {
			return nil, multierr.Append(err, closePartitions(partitions))
		}
		partitions = append(partitions, store.Partition{Id: bs.Partition, Type: bs.Type, Store: st})
	}

	movies, err := store.NewPartitioned(router, partitions...)
	if err != nil {
		return nil, multierr.Append(err, closePartitions(partitions))
	}

	s := &service{
		config:  cfg,
		store:   movies,
		clients: atomic.NewInt64(0),
	}
	if cfg.Limiter.RPS > 0 {
		if cfg.Limiter.Burst < 1 {
			return nil, multierr.Append(
				errors.Errorf("limiter burst must be at least 1 when limiter rps is set, got %d", cfg.Limiter.Burst),
				movies.Close(),
			)
		}
		s.limiter = rate.NewLimiter(rate.Limit(cfg.Limiter.RPS), cfg.Limiter.Burst)
	}
	return s, nil
}

func newBackingStore(bs BackingStore) (store.MovieStore, error) {
	switch bs.Type {
	case store.StoreTypeMemory:
		return memory.NewStore(), nil
	case store.StoreTypeRedis:
		return redis.NewStore(redis.WithAddress(bs.Address), redis.AsPartition(bs.Partition))
	}
	return nil, errors.Errorf("unsupported store type %s for partition %d", bs.Type, bs.Partition)
}

func closePartitions(partitions []store.Partition) error {
	var err error
	for _, p := range partitions {
		err = multierr.Append(err, p.Store.Close())
	}
	return err
}

type service struct {
	config  *ServiceConfig
	store   *store.Partitioned
	limiter *rate.Limiter
	clients *atomic.Int64
}

// Run serves HTTP, and RESP when configured, until ctx is cancelled or a
// listener fails. The store is closed on the way out.
func (s *service) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.ListenAddr,
		Handler:      s.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorLog:     zap.NewStdLog(zap.L()),
	}

	failed := make(chan error, 2)
	go func() {
		zap.L().Info("starting http server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			failed <- errors.Wrap(err, "http server")
		}
	}()

	var (
		resp *redcon.Server
		err  error
	)
	if s.config.RespAddr != "" {
		resp, err = s.startResp(failed)
	}

	if err == nil {
		select {
		case <-ctx.Done():
			zap.L().Info("shutting down", zap.NamedError("reason", ctx.Err()))
		case err = <-failed:
			zap.L().Error("listener failed, shutting down", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	err = multierr.Append(err, srv.Shutdown(shutdownCtx))
	if resp != nil {
		err = multierr.Append(err, resp.Close())
	}
	err = multierr.Append(err, s.store.Close())

	zap.L().Info("stopped", zap.String("addr", srv.Addr))
	return err
}

// startResp returns once the RESP listener is accepting, so the caller can
// always Close it. failed must have room for one error that nobody reads.
func (s *service) startResp(failed chan<- error) (*redcon.Server, error) {
	resp := redcon.NewServer(s.config.RespAddr, s.respHandler, s.accept, s.closed)
	listening := make(chan error, 1)
	go func() {
		if err := resp.ListenServeAndSignal(listening); err != nil {
			failed <- errors.Wrap(err, "resp server")
		}
	}()
	if err := <-listening; err != nil {
		return nil, errors.Wrap(err, "resp server")
	}
	zap.L().Info("started resp server", zap.String("addr", s.config.RespAddr))
	return resp, nil
}
