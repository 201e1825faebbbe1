// Package server exposes audits over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/selimozcann/HeaderHunter/internal/audit"
	"github.com/selimozcann/HeaderHunter/internal/check"
	"github.com/selimozcann/HeaderHunter/internal/fetch"
	"github.com/selimozcann/HeaderHunter/internal/report"
	"github.com/selimozcann/HeaderHunter/internal/util"
)

// Auditor is what the API needs from the audit pipeline.
type Auditor interface {
	Audit(ctx context.Context, target string) (*audit.Result, error)
	Checks() []check.Check
}

// Options configures the API.
type Options struct {
	// AllowInternal permits audits of loopback, private and link-local hosts.
	AllowInternal bool
}

type api struct {
	auditor Auditor
	opts    Options
}

type checkInfo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// NewRouter builds the API router.
func NewRouter(a Auditor, opts Options) *mux.Router {
	h := &api{auditor: a, opts: opts}
	r := mux.NewRouter()
	r.Use(LoggingMiddleware)
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.HandleFunc("/checks", h.checks).Methods(http.MethodGet)
	r.HandleFunc("/audit", h.audit).Methods(http.MethodGet)
	return r
}

// NewServer wraps the router in an http.Server with conservative timeouts.
// The write timeout leaves room for a full fetch.
func NewServer(addr string, a Auditor, opts Options, fetchTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           NewRouter(a, opts),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      fetchTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func (h *api) health(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *api) checks(w http.ResponseWriter, r *http.Request) {
	cat := h.auditor.Checks()
	out := make([]checkInfo, 0, len(cat))
	for _, c := range cat {
		out = append(out, checkInfo{ID: c.ID(), Title: c.Title()})
	}
	respondWithJSON(w, http.StatusOK, out)
}

func (h *api) audit(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("url")
	if raw == "" {
		respondWithError(w, http.StatusBadRequest, "missing url parameter")
		return
	}
	format := report.FormatJSON
	if f := r.URL.Query().Get("format"); f != "" {
		parsed, err := report.ParseFormat(f)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		format = parsed
	}
	u, err := fetch.ParseTarget(raw)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !h.opts.AllowInternal && util.IsInternalHost(u.Hostname()) {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("refusing to audit internal host %s", u.Hostname()))
		return
	}

	res, err := h.auditor.Audit(r.Context(), u.String())
	if err != nil {
		respondWithError(w, statusFor(err), err.Error())
		return
	}

	body, err := report.Render(res.Report, format, report.Options{})
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	switch format {
	case report.FormatHuman:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	case report.FormatHTML:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	default:
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func statusFor(err error) int {
	var (
		timeout *fetch.TimeoutError
		network *fetch.NetworkError
		loop    *fetch.RedirectLoopError
	)
	switch {
	case errors.Is(err, fetch.ErrInvalidTarget):
		return http.StatusBadRequest
	case errors.As(err, &timeout):
		return http.StatusGatewayTimeout
	case errors.As(err, &network), errors.As(err, &loop):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("API Error: marshal response: %v", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
