package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexsward/marquee/store"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app().RunContext(ctx, os.Args); err != nil {
		zap.L().Error("error running application", zap.Error(err))
		os.Exit(1)
	}
}

func app() *cli.App {
	return &cli.App{
		Name:  "marquee",
		Usage: "serve movies by name-derived id over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Value: "INFO",
			},
			&cli.StringFlag{
				Name:  "listen-addr",
				Value: ":8080",
				Usage: "HTTP listen address",
			},
			&cli.StringFlag{
				Name:  "store",
				Value: "memory",
				Usage: "backing store: memory or redis",
			},
			&cli.StringSliceFlag{
				Name:  "redis-addr",
				Usage: "redis address, one partition per flag (store=redis only)",
			},
			&cli.StringFlag{
				Name:  "partitioner",
				Value: "modulo",
				Usage: "partition strategy when there is more than one backing store: modulo or rendezvous",
			},
			&cli.StringFlag{
				Name:  "resp-addr",
				Usage: "address for the RESP operator listener, disabled when empty",
			},
			&cli.Float64Flag{
				Name:  "limiter-rps",
				Usage: "requests per second across the server, 0 disables limiting",
			},
			&cli.IntFlag{
				Name:  "limiter-burst",
				Value: 4,
			},
			&cli.DurationFlag{
				Name:  "shutdown-timeout",
				Value: 5 * time.Second,
			},
		},
		Before: func(ctx *cli.Context) error {
			return setupLogger(ctx)
		},
		Action: func(ctx *cli.Context) error {
			stores, err := getBackingStoreConfiguration(ctx)
			if err != nil {
				return err
			}
			s, err := NewService(&ServiceConfig{
				ListenAddr:    ctx.String("listen-addr"),
				RespAddr:      ctx.String("resp-addr"),
				BackingStores: stores,
				Partitioner:   ctx.String("partitioner"),
				Limiter: LimiterConfig{
					RPS:   ctx.Float64("limiter-rps"),
					Burst: ctx.Int("limiter-burst"),
				},
				ShutdownTimeout: ctx.Duration("shutdown-timeout"),
			})
			if err != nil {
				return errors.Wrap(err, "error creating service")
			}
			return s.Run(ctx.Context)
		},
	}
}

func getBackingStoreConfiguration(ctx *cli.Context) ([]BackingStore, error) {
	st, err := store.ParseStoreType(ctx.String("store"))
	if err != nil {
		return nil, err
	}
	if st == store.StoreTypeMemory {
		return []BackingStore{{Type: store.StoreTypeMemory, Partition: 0}}, nil
	}

	addrs := ctx.StringSlice("redis-addr")
	if len(addrs) == 0 {
		addrs = []string{":6379"}
	}
	stores := make([]BackingStore, 0, len(addrs))
	for p, addr := range addrs {
		stores = append(stores, BackingStore{
			Type:      st,
			Partition: p,
			Address:   addr,
		})
	}
	return stores, nil
}

func setupLogger(ctx *cli.Context) error {
	ecfg := zap.NewProductionEncoderConfig()
	ecfg.EncodeTime = zapcore.RFC3339TimeEncoder
	encoder := zapcore.NewConsoleEncoder(ecfg)
	level, err := zapcore.ParseLevel(ctx.String("log-level"))
	if err != nil {
		return err
	}
	core := zapcore.NewCore(encoder, os.Stdout, level)
	zap.ReplaceGlobals(zap.New(core))
	return nil
}
