package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"facesign/internal/transport/http/shared"
)

// issuerDocument is the public issuer description consumed by credential
// verifiers.
type issuerDocument struct {
	Context         string   `json:"@context"`
	ID              string   `json:"id"`
	AssertionMethod []string `json:"assertionMethod"`
	Authentication  []string `json:"authentication"`
}

// registerKeys serves static key material. Content is loaded once at startup;
// these endpoints never touch disk per request.
func registerKeys(r chi.Router, cfg Config) {
	r.Get("/sdk/public-key", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(cfg.SDKPublicKeyPEM)
	})

	r.Get("/idos/issuers/1", func(w http.ResponseWriter, _ *http.Request) {
		shared.WriteJSON(w, http.StatusOK, issuerDocument{
			Context:         "https://w3id.org/security/v2",
			ID:              cfg.Host + "/idos/issuers/1",
			AssertionMethod: []string{cfg.Host + "/idos/keys/1"},
			Authentication:  []string{},
		})
	})

	r.Get("/idos/keys/1", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(cfg.IssuerKeyMultibase)
	})
}
