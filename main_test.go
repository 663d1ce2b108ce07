package main

import (
	"flag"
	"testing"

	"github.com/alexsward/marquee/store"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func newCliContext(t *testing.T, args ...string) *cli.Context {
	t.Helper()
	a := app()
	set := flag.NewFlagSet(a.Name, flag.ContinueOnError)
	for _, f := range a.Flags {
		if err := f.Apply(set); err != nil {
			t.Fatalf("apply %v: %v", f.Names(), err)
		}
	}
	if err := set.Parse(args); err != nil {
		t.Fatalf("parse: %v", err)
	}
	return cli.NewContext(a, set, nil)
}

func TestBackingStoreConfigurationDefaultsToMemory(t *testing.T) {
	stores, err := getBackingStoreConfiguration(newCliContext(t))
	if err != nil {
		t.Fatalf("getBackingStoreConfiguration: %v", err)
	}
	if len(stores) != 1 || stores[0].Type != store.StoreTypeMemory {
		t.Fatalf("expected one memory store, got %+v", stores)
	}
}

func TestBackingStoreConfigurationRedisPartitions(t *testing.T) {
	stores, err := getBackingStoreConfiguration(newCliContext(t,
		"--store", "redis", "--redis-addr", "10.0.0.1:6379", "--redis-addr", "10.0.0.2:6379"))
	if err != nil {
		t.Fatalf("getBackingStoreConfiguration: %v", err)
	}
	if len(stores) != 2 {
		t.Fatalf("expected 2 stores, got %+v", stores)
	}
	for p, bs := range stores {
		if bs.Type != store.StoreTypeRedis || bs.Partition != p {
			t.Fatalf("unexpected backing store %+v", bs)
		}
	}
	if stores[1].Address != "10.0.0.2:6379" {
		t.Fatalf("unexpected address %s", stores[1].Address)
	}

	stores, err = getBackingStoreConfiguration(newCliContext(t, "--store", "redis"))
	if err != nil || len(stores) != 1 || stores[0].Address != ":6379" {
		t.Fatalf("expected default redis address, got %+v, %v", stores, err)
	}
}

func TestBackingStoreConfigurationRejectsUnknownStore(t *testing.T) {
	if _, err := getBackingStoreConfiguration(newCliContext(t, "--store", "postgres")); err == nil {
		t.Fatal("expected error for unknown store")
	}
}

func TestSetupLogger(t *testing.T) {
	defer zap.ReplaceGlobals(zap.NewNop())()

	if err := setupLogger(newCliContext(t, "--log-level", "loud")); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if err := setupLogger(newCliContext(t, "--log-level", "debug")); err != nil {
		t.Fatalf("setupLogger: %v", err)
	}
	if !zap.L().Core().Enabled(zap.DebugLevel) {
		t.Fatal("expected debug logging to be enabled")
	}
}
