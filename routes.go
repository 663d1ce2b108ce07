package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (s *service) routes() http.Handler {
	router := httprouter.New()
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	router.NotFound = http.HandlerFunc(s.routeNotFound)
	router.MethodNotAllowed = http.HandlerFunc(s.methodNotAllowed)
	router.PanicHandler = s.recoverPanic

	router.HandlerFunc(http.MethodGet, "/movie/:id", s.getMovieHandler)
	router.HandlerFunc(http.MethodPost, "/movie/", s.postMovieHandler)

	return s.requestID(s.logRequests(s.rateLimit(router)))
}
