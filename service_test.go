package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/alexsward/marquee/store"
)

func TestNewServiceRequiresBackingStores(t *testing.T) {
	if _, err := NewService(&ServiceConfig{}); err == nil {
		t.Fatal("expected error with no backing stores")
	}
}

func TestNewServiceRejectsUnknownPartitioner(t *testing.T) {
	_, err := NewService(&ServiceConfig{
		BackingStores: []BackingStore{
			{Type: store.StoreTypeMemory, Partition: 0},
			{Type: store.StoreTypeMemory, Partition: 1},
		},
		Partitioner: "random",
	})
	if err == nil {
		t.Fatal("expected error for unknown partitioner")
	}
}

func TestNewServiceRejectsZeroLimiterBurst(t *testing.T) {
	_, err := NewService(&ServiceConfig{
		BackingStores: []BackingStore{{Type: store.StoreTypeMemory}},
		Limiter:       LimiterConfig{RPS: 10, Burst: 0},
	})
	if err == nil {
		t.Fatal("expected error for a limiter that can never admit a request")
	}

	s := newTestService(t, func(cfg *ServiceConfig) {
		cfg.Limiter = LimiterConfig{RPS: 10, Burst: 1}
	})
	if s.limiter == nil {
		t.Fatal("expected limiter to be configured")
	}
}

func TestNewServiceWithRedisPartitions(t *testing.T) {
	// Redis clients connect lazily, so nothing needs to be listening here.
	s := newTestService(t, func(cfg *ServiceConfig) {
		cfg.BackingStores = []BackingStore{
			{Type: store.StoreTypeRedis, Partition: 0, Address: "127.0.0.1:6379"},
			{Type: store.StoreTypeRedis, Partition: 1, Address: "127.0.0.1:6380"},
		}
		cfg.Partitioner = "rendezvous"
	})

	if got := s.store.Partitions(); len(got) != 2 {
		t.Fatalf("expected 2 partitions, got %v", got)
	}
	if s.store.Type(1) != store.StoreTypeRedis {
		t.Fatalf("expected redis partition, got %s", s.store.Type(1))
	}
}

func TestRunServesUntilCancelled(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	s := newTestService(t, func(cfg *ServiceConfig) {
		cfg.ListenAddr = addr
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	var resp *http.Response
	for i := 0; i < 50; i++ {
		if resp, err = http.Get("http://" + addr + "/movie/1"); err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server never came up: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunReportsListenFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	s := newTestService(t, func(cfg *ServiceConfig) {
		cfg.ListenAddr = ln.Addr().String()
	})
	if err := s.Run(context.Background()); err == nil || errors.Is(err, http.ErrServerClosed) {
		t.Fatalf("expected listen error, got %v", err)
	}
}
