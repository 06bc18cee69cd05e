package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"energy-service/internal/cache"
	"energy-service/internal/models"
	"energy-service/internal/report"
	"energy-service/internal/service"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	maxBodyBytes = 1 << 20
	defaultLimit = 10
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Failed to encode response", zap.Error(err))
	}
}

// writeError maps service errors onto status codes. Unknown errors are
// logged and reported as 500 without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error(), Field: verr.Field})
	case errors.Is(err, service.ErrOwnerRequired):
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrOwnerTaken):
		s.writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, cache.ErrMiss), errors.Is(err, report.ErrNoData):
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrCacheDisabled):
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	default:
		s.logger.Error("Request failed",
			zap.String("request_id", requestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func (s *Server) badRequest(w http.ResponseWriter, msg string) {
	s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("limit must be a positive integer")
	}
	return n, nil
}

// ownerFilter returns nil when the owner_id parameter is absent.
func ownerFilter(r *http.Request) *string {
	q := r.URL.Query()
	if !q.Has("owner_id") {
		return nil
	}
	owner := q.Get("owner_id")
	return &owner
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   version,
	})
}

func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OwnerID string `json:"owner_id"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		s.badRequest(w, err.Error())
		return
	}

	if err := s.svc.Register(r.Context(), req.OwnerID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"owner_id": req.OwnerID})
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		s.badRequest(w, err.Error())
		return
	}
	if req.Username == "" || req.Password == "" {
		s.badRequest(w, "username and password are required")
		return
	}

	owner, err := s.svc.Login(req.Username, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"owner_id": owner, "username": req.Username})
}

func (s *Server) submitHandler(w http.ResponseWriter, r *http.Request) {
	var sub models.Submission
	if err := decodeBody(w, r, &sub); err != nil {
		s.badRequest(w, err.Error())
		return
	}

	result, err := s.svc.Submit(r.Context(), sub)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	points, err := s.svc.Dashboard(r.Context(), ownerFilter(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, points)
}

func (s *Server) dashboardChartHandler(w http.ResponseWriter, r *http.Request) {
	points, err := s.svc.Dashboard(r.Context(), ownerFilter(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	png, err := s.charts.BillHistoryPNG(points)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	if _, err := w.Write(png); err != nil {
		s.logger.Warn("Failed to write chart", zap.Error(err))
	}
}

func (s *Server) resultHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		s.badRequest(w, "invalid result id")
		return
	}

	result, err := s.svc.Result(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) recentResultsHandler(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner_id")
	if owner == "" {
		s.badRequest(w, "owner_id is required")
		return
	}
	limit, err := queryLimit(r)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}

	results, err := s.svc.RecentResults(r.Context(), owner, int64(limit))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, results)
}

func (s *Server) getAnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.svc.Stats())
}

func (s *Server) getAnomaliesHandler(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, s.svc.RecentAnomalies(limit))
}
