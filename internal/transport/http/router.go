// Package httptransport assembles the public HTTP surface: login endpoints,
// provider passthroughs, static key material, health, and metrics.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"facesign/internal/platform/metrics"
	"facesign/internal/platform/middleware"
	"facesign/internal/transport/http/shared"
)

// requestTimeout bounds every handler. Liveness checks upload face scans, so
// this is generous.
const requestTimeout = 60 * time.Second

// Registrar is implemented by module handlers that attach routes.
type Registrar interface {
	Register(r chi.Router)
}

// Config carries the static content the router serves directly.
type Config struct {
	// Host is the externally visible base URL used in the issuer document.
	Host string

	// SDKPublicKeyPEM is served to capture SDKs; IssuerKeyMultibase is the
	// public half of the token signing key in multibase form.
	SDKPublicKeyPEM   []byte
	IssuerKeyMultibase []byte
}

// NewRouter wires the middleware chain and mounts all module handlers.
func NewRouter(logger *slog.Logger, m *metrics.Metrics, cfg Config, handlers ...Registrar) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Latency(m))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.ContentTypeJSON)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		shared.WriteJSON(w, http.StatusOK, map[string]string{
			"message": "FaceSign Service is running",
		})
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	registerKeys(r, cfg)

	for _, handler := range handlers {
		handler.Register(r)
	}

	return r
}
