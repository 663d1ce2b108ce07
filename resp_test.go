package main

import (
	"context"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/tidwall/redcon"
)

func newTestRespClient(t *testing.T, s *service) *goredis.Client {
	t.Helper()

	srv := redcon.NewServer("127.0.0.1:0", s.respHandler, s.accept, s.closed)
	signal := make(chan error)
	go srv.ListenServeAndSignal(signal)
	if err := <-signal; err != nil {
		t.Fatalf("resp listen: %v", err)
	}

	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr().String()})
	t.Cleanup(func() {
		client.Close()
		srv.Close()
	})
	return client
}

func TestRespPing(t *testing.T) {
	client := newTestRespClient(t, newTestService(t))

	pong, err := client.Ping(context.Background()).Result()
	if err != nil || pong != "PONG" {
		t.Fatalf("PING = %q, %v", pong, err)
	}
}

func TestRespSetThenGet(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	client := newTestRespClient(t, s)

	id, err := client.Do(ctx, "MOVIE.SET", "Inception", "2010", "true").Text()
	if err != nil {
		t.Fatalf("MOVIE.SET: %v", err)
	}

	// The HTTP and RESP surfaces share one store.
	ts := newTestServer(t, s)
	var got getMovieResponse
	decode(t, getMovie(t, ts.URL, id), &got)
	if got != (getMovieResponse{Name: "Inception", Year: 2010, WasGood: true}) {
		t.Fatalf("unexpected movie over HTTP: %+v", got)
	}

	fields, err := client.Do(ctx, "MOVIE.GET", id).Slice()
	if err != nil {
		t.Fatalf("MOVIE.GET: %v", err)
	}
	if len(fields) != 3 || fields[0] != "Inception" || fields[1] != int64(2010) || fields[2] != "true" {
		t.Fatalf("unexpected fields %#v", fields)
	}

	keys, err := client.Do(ctx, "MOVIE.KEYS", "*").StringSlice()
	if err != nil || len(keys) != 1 || keys[0] != id {
		t.Fatalf("MOVIE.KEYS = %v, %v", keys, err)
	}
}

func TestRespErrors(t *testing.T) {
	ctx := context.Background()
	client := newTestRespClient(t, newTestService(t))

	tests := []struct {
		name string
		args []interface{}
		want string
	}{
		{"missing movie", []interface{}{"MOVIE.GET", "9999"}, "Movie 9999 not found"},
		{"bad year", []interface{}{"MOVIE.SET", "Heat", "70000", "true"}, "invalid year supplied: 70000"},
		{"bad was_good", []interface{}{"MOVIE.SET", "Heat", "1995", "maybe"}, "invalid was_good supplied: maybe"},
		{"arity", []interface{}{"MOVIE.SET", "Heat"}, "incorrect number of arguments to MOVIE.SET: 2"},
		{"unknown", []interface{}{"FLUSHALL"}, "ERR: Command FLUSHALL not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := client.Do(ctx, tt.args...).Err()
			if err == nil || err.Error() != tt.want {
				t.Fatalf("expected %q, got %v", tt.want, err)
			}
		})
	}
}

func TestRespPartitions(t *testing.T) {
	client := newTestRespClient(t, newTestService(t))

	parts, err := client.Do(context.Background(), "PARTITIONS").StringSlice()
	if err != nil {
		t.Fatalf("PARTITIONS: %v", err)
	}
	if len(parts) != 1 || parts[0] != "0 | memory" {
		t.Fatalf("unexpected partitions %v", parts)
	}
}
