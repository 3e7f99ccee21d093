package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/roach88/butterflies/internal/service"
)

func (s *Server) getRoot(w http.ResponseWriter, r *http.Request) {
	s.sendJson(w, http.StatusOK, messageJson{Message: msgRunning})
}

func (s *Server) getButterfly(w http.ResponseWriter, r *http.Request) {
	b, err := s.svc.GetButterfly(r.Context(), mux.Vars(r)["id"])
	if service.IsNotFound(err) {
		s.sendError(w, http.StatusNotFound, msgNotFound)
		return
	}
	if err != nil {
		s.sendServiceError(w, r, err)
		return
	}
	s.sendJson(w, http.StatusOK, b)
}

func (s *Server) postButterfly(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	b, err := s.svc.CreateButterfly(r.Context(), body)
	if err != nil {
		s.sendServiceError(w, r, err)
		return
	}
	s.sendJson(w, http.StatusOK, b)
}

func (s *Server) postRating(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	rating, err := s.svc.SubmitRating(r.Context(), mux.Vars(r)["butterflyId"], body)
	if err != nil {
		s.sendServiceError(w, r, err)
		return
	}
	s.sendJson(w, http.StatusOK, rating)
}

func (s *Server) getRatedButterflies(w http.ResponseWriter, r *http.Request) {
	butterflies, err := s.svc.RatedButterflies(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		s.sendServiceError(w, r, err)
		return
	}
	s.sendJson(w, http.StatusOK, butterflies)
}

func (s *Server) deleteRatings(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.ClearRatings(r.Context()); err != nil {
		s.sendServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(msgDeleted))
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.svc.GetUser(r.Context(), mux.Vars(r)["id"])
	if service.IsNotFound(err) {
		s.sendError(w, http.StatusNotFound, msgNotFound)
		return
	}
	if err != nil {
		s.sendServiceError(w, r, err)
		return
	}
	s.sendJson(w, http.StatusOK, u)
}

func (s *Server) postUser(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	u, err := s.svc.CreateUser(r.Context(), body)
	if err != nil {
		s.sendServiceError(w, r, err)
		return
	}
	s.sendJson(w, http.StatusOK, u)
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.sendError(w, http.StatusNotFound, msgNotFound)
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.sendError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
}
