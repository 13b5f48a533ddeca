// SPDX-License-Identifier: MIT

// Package api exposes the daemon's HTTP surface: catalog inspection,
// forced refresh, playback selection and volume control.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ytwall/ytwall/internal/catalog"
	"github.com/ytwall/ytwall/internal/log"
	"github.com/ytwall/ytwall/internal/manager"
)

// Catalog is the slice of the channel manager the API needs.
type Catalog interface {
	State() manager.State
	Entries() []catalog.Entry
	LiveVideos() []catalog.Entry
	Initialize(ctx context.Context, force bool) error
	Refresh(ctx context.Context) ([]string, error)
}

// Playback is the slice of the selector the API needs.
type Playback interface {
	Select(id string) error
	Stop()
	Selected() (string, bool)
	VisibleButtons() []catalog.Entry
	SetVolume(v float64)
	Volume() float64
}

// Server handles HTTP requests.
type Server struct {
	catalog  Catalog
	playback Playback
	token    string
	logger   zerolog.Logger
}

// New creates the API server. An empty token disables authentication;
// volume and selection changes are then open to any caller.
func New(cat Catalog, playback Playback, token string) *Server {
	return &Server{
		catalog:  cat,
		playback: playback,
		token:    token,
		logger:   log.WithComponent("api"),
	}
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestIDContext)
	r.Use(middleware.Recoverer)
	r.Use(httprate.LimitByIP(120, time.Minute))

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/videos", s.handleVideos)
		r.Get("/videos/live", s.handleLiveVideos)
		r.Get("/buttons", s.handleButtons)
		r.Get("/volume", s.handleGetVolume)

		r.Group(func(r chi.Router) {
			r.Use(s.requireToken)
			r.Post("/refresh", s.handleRefresh)
			r.Post("/select/{id}", s.handleSelect)
			r.Delete("/select", s.handleDeselect)
			r.Put("/volume", s.handleSetVolume)
		})
	})
	return r
}

// requestIDContext copies chi's request id into the logging context so
// downstream log lines carry it.
func requestIDContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rid := middleware.GetReqID(r.Context()); rid != "" {
			r = r.WithContext(log.ContextWithRequestID(r.Context(), rid))
		}
		next.ServeHTTP(w, r)
	})
}

// requireToken guards mutating endpoints. Volume in particular may only be
// adjusted by an authorized actor.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" && r.Header.Get("Authorization") != "Bearer "+s.token {
			s.logger.Warn().
				Str("event", "api.unauthorized").
				Str("path", r.URL.Path).
				Msg("rejected request with invalid or missing token")
			writeError(w, http.StatusUnauthorized, "invalid or missing token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"state":  s.catalog.State().String(),
	})
}

func (s *Server) handleVideos(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Entries())
}

func (s *Server) handleLiveVideos(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.LiveVideos())
}

func (s *Server) handleButtons(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.playback.VisibleButtons())
}

// handleRefresh runs a refresh cycle, or a forced full rebuild with
// ?force=true.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))

	logger := log.WithComponentFromContext(r.Context(), "api")

	if force {
		if err := s.catalog.Initialize(r.Context(), true); err != nil {
			logger.Error().Err(err).Str("event", "api.rebuild_failed").Msg("forced rebuild failed")
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"rebuilt": true})
		return
	}

	newlyLive, err := s.catalog.Refresh(r.Context())
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if newlyLive == nil {
		newlyLive = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"newlyLive": newlyLive})
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.playback.Select(id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	selected, _ := s.playback.Selected()
	writeJSON(w, http.StatusOK, map[string]string{"selected": selected})
}

func (s *Server) handleDeselect(w http.ResponseWriter, _ *http.Request) {
	s.playback.Stop()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetVolume(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]float64{"volume": s.playback.Volume()})
}

func (s *Server) handleSetVolume(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Volume *float64 `json:"volume"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Volume == nil {
		writeError(w, http.StatusBadRequest, "body must be {\"volume\": <0..1>}")
		return
	}
	s.playback.SetVolume(*body.Volume)
	writeJSON(w, http.StatusOK, map[string]float64{"volume": s.playback.Volume()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
