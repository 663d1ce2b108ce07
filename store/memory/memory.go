package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/alexsward/marquee/model"
	"github.com/alexsward/marquee/store"
	"github.com/tidwall/match"
	"go.uber.org/zap"
)

// Store holds every movie in one map behind one mutex. Each operation
// takes the lock for exactly one map access.
type Store struct {
	mu     sync.Mutex
	movies map[model.MovieId]model.Movie
}

func NewStore() *Store {
	return &Store{
		movies: make(map[model.MovieId]model.Movie),
	}
}

func (s *Store) Get(_ context.Context, id model.MovieId) (model.Movie, error) {
	s.mu.Lock()
	m, ok := s.movies[id]
	s.mu.Unlock()

	if !ok {
		return model.Movie{}, store.ErrMovieNotFound
	}
	return m, nil
}

func (s *Store) Put(_ context.Context, id model.MovieId, movie model.Movie) (bool, error) {
	s.mu.Lock()
	_, replaced := s.movies[id]
	s.movies[id] = movie
	s.mu.Unlock()

	zap.L().Debug("PUT", zap.Stringer("id", id), zap.Bool("replaced", replaced))
	return replaced, nil
}

// Keys returns the ids matching a glob pattern, sorted.
func (s *Store) Keys(_ context.Context, pattern string) ([]model.MovieId, error) {
	s.mu.Lock()
	keys := make([]model.MovieId, 0, len(s.movies))
	for id := range s.movies {
		if match.Match(id.String(), pattern) {
			keys = append(keys, id)
		}
	}
	s.mu.Unlock()

	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys, nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.movies)
}

func (s *Store) Close() error {
	return nil
}
