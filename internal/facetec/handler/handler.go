// Package handler exposes provider passthrough endpoints: session tokens for
// the capture SDK and 1:1 verification against a stored enrollment.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"facesign/internal/facetec"
	"facesign/internal/platform/middleware"
	"facesign/internal/resolve/ports"
	"facesign/internal/transport/http/shared"
	dErrors "facesign/pkg/domain-errors"
)

// Provider defines the provider operations the handler fronts.
type Provider interface {
	SessionToken(ctx context.Context, deviceKey, deviceIdentifier string) (string, error)
	Match(ctx context.Context, identifier string, sample ports.Sample) (facetec.MatchResult, error)
}

// Handler handles the provider passthrough endpoints.
type Handler struct {
	logger    *slog.Logger
	provider  Provider
	telemetry ports.Telemetry
}

// New creates a provider passthrough Handler.
func New(provider Provider, logger *slog.Logger, telemetry ports.Telemetry) *Handler {
	return &Handler{
		logger:    logger,
		provider:  provider,
		telemetry: telemetry,
	}
}

// Register registers the passthrough routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/session-token", h.handleSessionToken)
	r.Post("/match", h.handleMatch)
}

type sessionTokenRequest struct {
	Key              string `json:"key"`
	DeviceIdentifier string `json:"deviceIdentifier"`
}

type sessionTokenResponse struct {
	Success      bool   `json:"success"`
	SessionToken string `json:"sessionToken"`
}

func (h *Handler) handleSessionToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req sessionTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	sessionToken, err := h.provider.SessionToken(ctx, req.Key, req.DeviceIdentifier)
	if err != nil {
		h.logger.ErrorContext(ctx, "session token fetch failed",
			"request_id", middleware.GetRequestID(ctx), "error", err.Error())
		shared.WriteError(w, dErrors.New(dErrors.CodeUnavailable,
			"failed to get session token"))
		return
	}

	payload := map[string]any{"deviceIdentifier": req.DeviceIdentifier}
	if device := middleware.ParseDevice(ctx).Fields(); device != nil {
		payload["device"] = device
	}
	h.telemetry.Log(ctx, "session-token", payload)

	shared.WriteJSON(w, http.StatusOK, sessionTokenResponse{
		Success:      true,
		SessionToken: sessionToken,
	})
}

type matchRequest struct {
	FaceScan                  string `json:"faceScan"`
	AuditTrailImage           string `json:"auditTrailImage"`
	LowQualityAuditTrailImage string `json:"lowQualityAuditTrailImage"`
	SessionID                 string `json:"sessionId"`
	Key                       string `json:"key"`
	DeviceIdentifier          string `json:"deviceIdentifier"`
	ExternalUserID            string `json:"externalUserId"`
}

type matchResponse struct {
	Success        bool   `json:"success"`
	WasProcessed   bool   `json:"wasProcessed"`
	Error          bool   `json:"error"`
	ScanResultBlob string `json:"scanResultBlob,omitempty"`
	// LivenessDone lets the UI distinguish a failed match (retry not useful)
	// from a failed liveness check (ask the user to repeat the capture).
	LivenessDone bool `json:"livenessDone"`
	RetryScreen  int  `json:"retryScreenEnumInt"`
	MatchLevel   int  `json:"matchLevel"`
}

func (h *Handler) handleMatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.ExternalUserID == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "externalUserId is required"))
		return
	}

	sample := ports.Sample{
		FaceScan:                  req.FaceScan,
		AuditTrailImage:           req.AuditTrailImage,
		LowQualityAuditTrailImage: req.LowQualityAuditTrailImage,
		SessionID:                 req.SessionID,
		DeviceKey:                 req.Key,
		DeviceIdentifier:          req.DeviceIdentifier,
	}

	result, err := h.provider.Match(ctx, req.ExternalUserID, sample)
	if err != nil {
		h.logger.ErrorContext(ctx, "match failed",
			"request_id", middleware.GetRequestID(ctx), "error", err.Error())
		shared.WriteError(w, dErrors.New(dErrors.CodeUnavailable,
			"match process failed"))
		return
	}

	if !result.WasProcessed || result.Errored {
		h.telemetry.Log(ctx, "match-failed", map[string]any{
			"identifier":   req.ExternalUserID,
			"wasProcessed": result.WasProcessed,
		})
	} else {
		h.telemetry.Log(ctx, "match-done", map[string]any{
			"identifier": req.ExternalUserID,
			"matchLevel": result.MatchLevel,
		})
	}

	// Success can be false with wasProcessed true (a processed non-match);
	// the caller inspects the fields, so this is still a 200.
	shared.WriteJSON(w, http.StatusOK, matchResponse{
		Success:        result.Success,
		WasProcessed:   result.WasProcessed,
		Error:          result.Errored,
		ScanResultBlob: result.ScanResultBlob,
		LivenessDone:   result.LivenessDone,
		RetryScreen:    result.RetryScreen,
		MatchLevel:     result.MatchLevel,
	})
}
