package redis

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/alexsward/marquee/model"
	"github.com/alexsward/marquee/store"
	"github.com/pkg/errors"
	rdb "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "movie:"

type Store struct {
	partition int
	address   string
	client    *rdb.Client
}

type Option func(*Store) error

func WithAddress(address string) Option {
	return func(s *Store) error {
		if address == "" {
			return errors.New("redis address must not be empty")
		}
		s.address = address
		return nil
	}
}

func AsPartition(p int) Option {
	return func(s *Store) error {
		s.partition = p
		return nil
	}
}

func NewStore(opts ...Option) (*Store, error) {
	store := &Store{
		address: ":6379",
	}
	for _, opt := range opts {
		if err := opt(store); err != nil {
			return nil, err
		}
	}

	store.client = rdb.NewClient(&rdb.Options{
		Addr: store.address,
	})

	return store, nil
}

// record is the JSON document stored under each key.
type record struct {
	Name    string `json:"name"`
	Year    uint16 `json:"year"`
	WasGood bool   `json:"was_good"`
}

func key(id model.MovieId) string {
	return keyPrefix + id.String()
}

func (s *Store) Ping(ctx context.Context) error {
	return errors.Wrapf(s.client.Ping(ctx).Err(), "pinging redis at %s", s.address)
}

func (s *Store) Keys(ctx context.Context, pattern string) ([]model.MovieId, error) {
	keys, err := s.client.Keys(ctx, keyPrefix+pattern).Result()
	if err != nil {
		return nil, errors.Wrap(err, "listing keys")
	}
	r := make([]model.MovieId, len(keys))
	for i, k := range keys {
		r[i] = model.MovieId(strings.TrimPrefix(k, keyPrefix))
	}
	return r, nil
}

func (s *Store) Put(ctx context.Context, id model.MovieId, movie model.Movie) (bool, error) {
	zap.L().Debug("PUT", zap.Stringer("id", id), zap.Int("partition", s.partition))

	content, err := json.Marshal(record{Name: movie.Name, Year: movie.Year, WasGood: movie.WasGood})
	if err != nil {
		return false, errors.Wrap(err, "encoding movie")
	}

	// SET ... GET returns the previous value, so insert vs replace is decided
	// by the server in one step.
	err = s.client.SetArgs(ctx, key(id), content, rdb.SetArgs{Get: true}).Err()
	switch {
	case err == rdb.Nil:
		return false, nil
	case err != nil:
		return false, errors.Wrapf(err, "setting %s", id)
	}
	return true, nil
}

func (s *Store) Get(ctx context.Context, id model.MovieId) (model.Movie, error) {
	zap.L().Debug("GET", zap.Stringer("id", id), zap.Int("partition", s.partition))

	v, err := s.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if err == rdb.Nil {
			return model.Movie{}, store.ErrMovieNotFound
		}
		return model.Movie{}, errors.Wrapf(err, "getting %s", id)
	}

	var r record
	if err := json.Unmarshal(v, &r); err != nil {
		return model.Movie{}, errors.Wrapf(err, "decoding %s", id)
	}
	return model.Movie{Name: r.Name, Year: r.Year, WasGood: r.WasGood}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
