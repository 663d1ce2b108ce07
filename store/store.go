package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexsward/marquee/model"
	"github.com/pkg/errors"
)

var (
	ErrMovieNotFound = errors.New("movie not found")
)

// MovieStore is a movie keyed by its id. Put either inserts or fully
// replaces, never merges, and reports which one happened.
type MovieStore interface {
	Keys(ctx context.Context, pattern string) ([]model.MovieId, error)
	Get(ctx context.Context, id model.MovieId) (model.Movie, error)
	Put(ctx context.Context, id model.MovieId, movie model.Movie) (replaced bool, err error)
	Close() error
}

type StoreType int

const (
	StoreTypeMemory StoreType = 0
	StoreTypeRedis  StoreType = 1
)

func (t StoreType) String() string {
	switch t {
	case StoreTypeMemory:
		return "memory"
	case StoreTypeRedis:
		return "redis"
	}
	return fmt.Sprintf("unknown(%d)", int(t))
}

func ParseStoreType(raw string) (StoreType, error) {
	switch strings.ToLower(raw) {
	case "memory", "mem":
		return StoreTypeMemory, nil
	case "redis":
		return StoreTypeRedis, nil
	}
	return 0, errors.Errorf("unknown store type: %s -- expected memory or redis", raw)
}
