package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"go.uber.org/zap"

	"github.com/roach88/butterflies/internal/service"
)

// Client-facing messages not owned by the service layer.
const (
	msgNotFound         = "Not found"
	msgMethodNotAllowed = "Method not allowed"
	msgDeleted          = "Deleted!"
	msgRunning          = "Server is running!"
)

type errorJson struct {
	Error string `json:"error"`
}

type messageJson struct {
	Message string `json:"message"`
}

func (s *Server) sendJson(w http.ResponseWriter, status int, obj any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(obj); err != nil {
		s.logger.Warn("write response", zap.Error(err))
	}
}

func (s *Server) sendError(w http.ResponseWriter, status int, message string) {
	s.sendJson(w, status, errorJson{Error: message})
}

// sendServiceError maps a service error to its status code. Store failures
// are logged with their cause and reported without detail.
func (s *Server) sendServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var se *service.Error
	if !errors.As(err, &se) {
		s.logger.Error("unexpected error", zap.String("path", r.URL.Path), zap.Error(err))
		s.sendError(w, http.StatusInternalServerError, service.MsgStoreFailure)
		return
	}

	switch se.Code {
	case service.CodeValidation, service.CodeConflict:
		s.sendError(w, http.StatusBadRequest, se.Message)
	case service.CodeNotFound:
		s.sendError(w, http.StatusNotFound, se.Message)
	default:
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		s.sendError(w, http.StatusInternalServerError, se.Message)
	}
}

// readBody returns the request body if it is declared as JSON and fits in
// MaxBodyBytes. Otherwise it answers 400 and returns false.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		s.sendError(w, http.StatusBadRequest, service.MsgInvalidBody)
		return nil, false
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		s.logger.Debug("read body", zap.Error(err))
		s.sendError(w, http.StatusBadRequest, service.MsgInvalidBody)
		return nil, false
	}
	return body, true
}
