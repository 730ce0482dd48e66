package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/docscan/internal/detection"
)

// HTTPOptions configures the HTTP transport.
type HTTPOptions struct {
	// Timeout bounds the processing of one request.
	Timeout time.Duration

	// MaxBodyBytes bounds the request body.
	MaxBodyBytes int64

	Version string
}

type httpHandler struct {
	svc  *Service
	opts HTTPOptions
}

// NewHTTPHandler returns the HTTP API:
//
//	POST /process   {"action": "detect"|"warp"|"select", ...}
//	GET  /health
//
// Failures are reported as {"error": "..."} with status 200, which is what
// existing browser clients expect.
func NewHTTPHandler(svc *Service, opts HTTPOptions) http.Handler {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 32 << 20
	}
	h := &httpHandler{svc: svc, opts: opts}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /process", h.process)
	mux.HandleFunc("GET /health", h.health)

	return corsMiddleware(h.logRequests(mux))
}

func (h *httpHandler) process(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxBodyBytes)
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		respondError(w, "failed to read request body")
		return
	}

	var head struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		respondError(w, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.opts.Timeout)
	defer cancel()

	result, err := runWithContext(ctx, func() (interface{}, error) {
		return h.svc.Process(head.Action, raw)
	})
	if err != nil {
		respondError(w, err.Error())
		return
	}
	respondJSON(w, result, http.StatusOK)
}

func (h *httpHandler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]interface{}{
		"status":   "ok",
		"version":  h.opts.Version,
		"backends": detection.Backends(),
	}, http.StatusOK)
}

// runWithContext runs fn and gives up waiting when ctx ends. fn keeps
// running in the background; the scanner operations cannot be interrupted.
func runWithContext(ctx context.Context, fn func() (interface{}, error)) (interface{}, error) {
	type outcome struct {
		v   interface{}
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := fn()
		done <- outcome{v, err}
	}()

	select {
	case o := <-done:
		return o.v, o.err
	case <-ctx.Done():
		return nil, fmt.Errorf("request aborted: %w", ctx.Err())
	}
}

func (h *httpHandler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		h.svc.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"remote":   r.RemoteAddr,
			"duration": time.Since(start).String(),
		}).Debug("http request")
	})
}

// corsMiddleware allows any origin.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func respondJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, message string) {
	respondJSON(w, map[string]string{"error": message}, http.StatusOK)
}
