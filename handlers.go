package main

import (
	"errors"
	"net/http"

	"github.com/alexsward/marquee/model"
	"github.com/alexsward/marquee/store"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// postMovieHandler stores a movie under the id derived from its name,
// replacing whatever was there.
func (s *service) postMovieHandler(w http.ResponseWriter, r *http.Request) {
	req, err := readPostMovieRequest(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id := model.NewMovieId(req.Name)
	replaced, err := s.store.Put(r.Context(), id, req.movie())
	if err != nil {
		writeError(w, r, unknownError(err))
		return
	}

	zap.L().Info("stored movie",
		zap.String("request_id", requestIDFrom(r.Context())),
		zap.Stringer("id", id),
		zap.Bool("replaced", replaced),
	)
	writeJSON(w, r, http.StatusOK, newPostMovieResponse(id))
}

func (s *service) getMovieHandler(w http.ResponseWriter, r *http.Request) {
	req := getMovieRequest{
		Id: model.MovieId(httprouter.ParamsFromContext(r.Context()).ByName("id")),
	}

	m, err := s.store.Get(r.Context(), req.Id)
	if err != nil {
		if errors.Is(err, store.ErrMovieNotFound) {
			writeError(w, r, movieNotFound(req.Id))
			return
		}
		writeError(w, r, unknownError(err))
		return
	}

	writeJSON(w, r, http.StatusOK, newGetMovieResponse(m))
}
