package model

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// MovieId identifies a movie. It is derived from the movie's name only, so
// two different names can in principle collide.
type MovieId string

func NewMovieId[T []byte | string](name T) MovieId {
	return MovieId(strconv.FormatUint(hashName([]byte(name)), 10))
}

func (i MovieId) String() string {
	return string(i)
}

// Hash is used for partition routing. It hashes the id text itself so a
// caller holding only the id lands on the same partition as the writer.
func (i MovieId) Hash() uint64 {
	return xxhash.Sum64String(string(i))
}

func hashName(value []byte) uint64 {
	return xxhash.Sum64(value)
}
