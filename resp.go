package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexsward/marquee/model"
	"github.com/alexsward/marquee/store"
	"github.com/tidwall/redcon"
	"go.uber.org/zap"
)

// respHandler serves the operator listener. It speaks RESP so any redis
// client can inspect and seed the store.
func (s *service) respHandler(conn redcon.Conn, cmd redcon.Command) {
	ctx := context.Background()

	switch strings.ToLower(string(cmd.Args[0])) {
	case "ping":
		conn.WriteString("PONG")
	case "movie.set":
		if len(cmd.Args) != 4 {
			conn.WriteError(fmt.Sprintf("incorrect number of arguments to MOVIE.SET: %d", len(cmd.Args)))
			return
		}
		year, err := strconv.ParseUint(string(cmd.Args[2]), 10, 16)
		if err != nil {
			conn.WriteError(fmt.Sprintf("invalid year supplied: %s", cmd.Args[2]))
			return
		}
		wasGood, err := strconv.ParseBool(string(cmd.Args[3]))
		if err != nil {
			conn.WriteError(fmt.Sprintf("invalid was_good supplied: %s", cmd.Args[3]))
			return
		}

		id := model.NewMovieId(cmd.Args[1])
		m := model.Movie{Name: string(cmd.Args[1]), Year: uint16(year), WasGood: wasGood}
		if _, err := s.store.Put(ctx, id, m); err != nil {
			conn.WriteError(fmt.Sprintf("error storing movie: %s", err))
			return
		}
		conn.WriteBulkString(id.String())
	case "movie.get":
		if len(cmd.Args) != 2 {
			conn.WriteError(fmt.Sprintf("incorrect number of arguments to MOVIE.GET: %d", len(cmd.Args)))
			return
		}
		id := model.MovieId(cmd.Args[1])
		m, err := s.store.Get(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrMovieNotFound) {
				conn.WriteError(fmt.Sprintf("Movie %s not found", id))
				return
			}
			conn.WriteError(fmt.Sprintf("error retrieving movie: %s", err))
			return
		}
		conn.WriteArray(3)
		conn.WriteBulkString(m.Name)
		conn.WriteInt(int(m.Year))
		conn.WriteBulkString(strconv.FormatBool(m.WasGood))
	case "movie.keys":
		if len(cmd.Args) != 2 {
			conn.WriteError("must supply a pattern")
			return
		}
		keys, err := s.store.Keys(ctx, string(cmd.Args[1]))
		if err != nil {
			conn.WriteError(fmt.Sprintf("error listing keys: %s", err))
			return
		}
		conn.WriteArray(len(keys))
		for _, k := range keys {
			conn.WriteBulkString(k.String())
		}
	case "partitions":
		partitions := s.store.Partitions()
		conn.WriteArray(len(partitions))
		for _, p := range partitions {
			conn.WriteBulkString(fmt.Sprintf("%d | %s", p, s.store.Type(p)))
		}
	default:
		conn.WriteError(fmt.Sprintf("ERR: Command %s not found", string(cmd.Args[0])))
	}
}

func (s *service) accept(conn redcon.Conn) bool {
	zap.L().Debug("resp client connected",
		zap.String("remote", conn.RemoteAddr()),
		zap.Int64("clients", s.clients.Inc()),
	)
	return true
}

func (s *service) closed(conn redcon.Conn, err error) {
	zap.L().Debug("resp client disconnected",
		zap.String("remote", conn.RemoteAddr()),
		zap.Int64("clients", s.clients.Dec()),
		zap.Error(err),
	)
}
