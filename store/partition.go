package store

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/alexsward/marquee/model"
	"github.com/cespare/xxhash/v2"
	"github.com/dgryski/go-rendezvous"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

type PartitionStrategy func(model.MovieId) int

func SingleStorePartitionStrategy(id model.MovieId) int {
	return 0
}

func ModuloPartitionStrategy(partitions int) PartitionStrategy {
	return func(i model.MovieId) int {
		return int(i.Hash() % uint64(partitions))
	}
}

// RendezvousPartitionStrategy picks the partition with the highest
// rendezvous weight for an id, so adding a partition only moves the ids
// that now prefer it.
func RendezvousPartitionStrategy(partitions int) PartitionStrategy {
	nodes := make([]string, partitions)
	for p := range nodes {
		nodes[p] = strconv.Itoa(p)
	}
	r := rendezvous.New(nodes, xxhash.Sum64String)
	return func(i model.MovieId) int {
		p, err := strconv.Atoi(r.Lookup(i.String()))
		if err != nil {
			return 0
		}
		return p
	}
}

func ParsePartitionStrategy(name string, partitions int) (PartitionStrategy, error) {
	if partitions <= 1 {
		return SingleStorePartitionStrategy, nil
	}
	switch strings.ToLower(name) {
	case "modulo", "mod", "":
		return ModuloPartitionStrategy(partitions), nil
	case "rendezvous", "hrw":
		return RendezvousPartitionStrategy(partitions), nil
	}
	return nil, errors.Errorf("unknown partitioner: %s -- expected modulo or rendezvous", name)
}

// Partitioned fans a single MovieStore out over several backing stores.
type Partitioned struct {
	stores map[int]MovieStore
	router PartitionStrategy
	kinds  map[int]StoreType
}

type Partition struct {
	Id    int
	Type  StoreType
	Store MovieStore
}

func NewPartitioned(router PartitionStrategy, partitions ...Partition) (*Partitioned, error) {
	if len(partitions) == 0 {
		return nil, errors.New("no backing stores supplied")
	}
	p := &Partitioned{
		stores: make(map[int]MovieStore, len(partitions)),
		kinds:  make(map[int]StoreType, len(partitions)),
		router: router,
	}
	for _, part := range partitions {
		if _, ok := p.stores[part.Id]; ok {
			return nil, errors.Errorf("partition %d supplied twice", part.Id)
		}
		p.stores[part.Id] = part.Store
		p.kinds[part.Id] = part.Type
	}
	return p, nil
}

func (p *Partitioned) partition(id model.MovieId) (MovieStore, error) {
	n := p.router(id)
	s, ok := p.stores[n]
	if !ok {
		return nil, errors.Errorf("no MovieStore configured for partition %d", n)
	}
	return s, nil
}

func (p *Partitioned) Get(ctx context.Context, id model.MovieId) (model.Movie, error) {
	s, err := p.partition(id)
	if err != nil {
		return model.Movie{}, err
	}
	return s.Get(ctx, id)
}

func (p *Partitioned) Put(ctx context.Context, id model.MovieId, movie model.Movie) (bool, error) {
	s, err := p.partition(id)
	if err != nil {
		return false, err
	}
	return s.Put(ctx, id, movie)
}

func (p *Partitioned) Keys(ctx context.Context, pattern string) ([]model.MovieId, error) {
	keys := make([]model.MovieId, 0)
	for _, n := range p.Partitions() {
		ks, err := p.stores[n].Keys(ctx, pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "partition %d", n)
		}
		keys = append(keys, ks...)
	}
	return keys, nil
}

// Partitions returns the partition numbers in ascending order.
func (p *Partitioned) Partitions() []int {
	ns := make([]int, 0, len(p.stores))
	for n := range p.stores {
		ns = append(ns, n)
	}
	sort.Ints(ns)
	return ns
}

func (p *Partitioned) Type(partition int) StoreType {
	return p.kinds[partition]
}

func (p *Partitioned) Close() error {
	var err error
	for _, n := range p.Partitions() {
		err = multierr.Append(err, p.stores[n].Close())
	}
	return err
}
