// Package handler exposes identity resolution over HTTP. It is a thin
// translation layer: wire formats in, resolver outcomes out, no business
// logic.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"facesign/internal/platform/middleware"
	"facesign/internal/resolve"
	"facesign/internal/resolve/ports"
	"facesign/internal/transport/http/shared"
	dErrors "facesign/pkg/domain-errors"
)

// Service defines the resolution operation the handler fronts.
type Service interface {
	Resolve(ctx context.Context, sample ports.Sample, group string, opts resolve.Options) (resolve.Resolution, error)
}

// Handler handles the login endpoints.
type Handler struct {
	logger         *slog.Logger
	resolver       Service
	defaultGroup   string
	pinocchioGroup string

	// tieBreak maps group name to its configured mode. Unlisted groups
	// resolve strictly (ParseMode treats empty as strict).
	tieBreak map[string]string
}

// New creates a login Handler.
func New(resolver Service, logger *slog.Logger, defaultGroup, pinocchioGroup string, tieBreak map[string]string) *Handler {
	return &Handler{
		logger:         logger,
		resolver:       resolver,
		defaultGroup:   defaultGroup,
		pinocchioGroup: pinocchioGroup,
		tieBreak:       tieBreak,
	}
}

// Register registers the login routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/pinocchio-login", h.handlePinocchioLogin)
}

type loginRequest struct {
	FaceScan                  string `json:"faceScan"`
	AuditTrailImage           string `json:"auditTrailImage"`
	LowQualityAuditTrailImage string `json:"lowQualityAuditTrailImage"`
	SessionID                 string `json:"sessionId"`
	Key                       string `json:"key"`
	DeviceIdentifier          string `json:"deviceIdentifier"`
	// UserAgent is the legacy field name for the device identifier; older
	// clients still send it.
	UserAgent string `json:"userAgent"`
	GroupName string `json:"groupName"`
	// FaceVector defaults to true: enrollments are stored as face vectors
	// unless the caller opts out.
	FaceVector *bool `json:"faceVector"`
}

func (req loginRequest) sample(ctx context.Context) ports.Sample {
	deviceIdentifier := req.DeviceIdentifier
	if deviceIdentifier == "" {
		deviceIdentifier = req.UserAgent
	}
	if deviceIdentifier == "" {
		deviceIdentifier = middleware.GetUserAgent(ctx)
	}
	return ports.Sample{
		FaceScan:                  req.FaceScan,
		AuditTrailImage:           req.AuditTrailImage,
		LowQualityAuditTrailImage: req.LowQualityAuditTrailImage,
		SessionID:                 req.SessionID,
		DeviceKey:                 req.Key,
		DeviceIdentifier:          deviceIdentifier,
	}
}

type challengeResponse struct {
	ResponseBlob json.RawMessage `json:"responseBlob"`
}

type loginResponse struct {
	Success        bool   `json:"success"`
	Error          bool   `json:"error"`
	FaceSignUserID string `json:"faceSignUserId"`
	Token          string `json:"token,omitempty"`
	ScanResultBlob string `json:"scanResultBlob,omitempty"`
}

type livenessFailedResponse struct {
	Success      bool   `json:"success"`
	Error        bool   `json:"error"`
	ErrorMessage string `json:"errorMessage"`
}

// handleLogin resolves a sample against the caller's group (or the default).
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	group := req.GroupName
	if group == "" {
		group = h.defaultGroup
	}
	h.resolve(ctx, w, req, group)
}

// handlePinocchioLogin resolves against the pinocchio group; the group is
// fixed by deployment, never chosen by the caller.
func (h *Handler) handlePinocchioLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	h.resolve(r.Context(), w, req, h.pinocchioGroup)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (loginRequest, bool) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(r.Context(), "invalid login request",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return loginRequest{}, false
	}
	return req, true
}

func (h *Handler) resolve(ctx context.Context, w http.ResponseWriter, req loginRequest, group string) {
	requestID := middleware.GetRequestID(ctx)

	mode, err := resolve.ParseMode(h.tieBreak[group])
	if err != nil {
		h.logger.ErrorContext(ctx, "misconfigured tie-break mode",
			"request_id", requestID, "group", group, "error", err.Error())
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "resolution failed"))
		return
	}

	opts := resolve.Options{
		PreferVectorStorage: req.FaceVector == nil || *req.FaceVector,
		TieBreak:            mode,
	}

	result, err := h.resolver.Resolve(ctx, req.sample(ctx), group, opts)
	if err != nil {
		h.logger.ErrorContext(ctx, "resolution failed",
			"request_id", requestID, "group", group, "error", err.Error())
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "resolution failed, check server logs"))
		return
	}

	switch result.Outcome {
	case resolve.OutcomeLivenessFailed:
		if result.SessionInProgress {
			// Challenge round: hand the provider blob back verbatim.
			shared.WriteJSON(w, http.StatusOK, challengeResponse{ResponseBlob: result.Verdict.Raw})
			return
		}
		shared.WriteJSON(w, http.StatusBadRequest, livenessFailedResponse{
			Success:      false,
			Error:        true,
			ErrorMessage: "Liveness check or enrollment 3D failed and was not processed.",
		})

	case resolve.OutcomeConflict:
		shared.WriteError(w, dErrors.New(dErrors.CodeConflict,
			"multiple identities match the same face vector"))

	case resolve.OutcomeNew:
		shared.WriteJSON(w, http.StatusCreated, h.success(result))

	case resolve.OutcomeReused:
		shared.WriteJSON(w, http.StatusOK, h.success(result))

	default:
		h.logger.ErrorContext(ctx, "unexpected resolution outcome",
			"request_id", requestID, "outcome", string(result.Outcome))
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "resolution failed"))
	}
}

func (h *Handler) success(result resolve.Resolution) loginResponse {
	return loginResponse{
		Success:        true,
		FaceSignUserID: result.Identifier,
		Token:          result.Token,
		ScanResultBlob: scanResultBlob(result.Verdict),
	}
}

// scanResultBlob pulls the provider blob out of the verdict so client SDKs
// can finish their capture flow.
func scanResultBlob(verdict *ports.LivenessVerdict) string {
	if verdict == nil || len(verdict.Raw) == 0 {
		return ""
	}
	var envelope struct {
		ScanResultBlob string `json:"scanResultBlob"`
	}
	if err := json.Unmarshal(verdict.Raw, &envelope); err != nil {
		return ""
	}
	return envelope.ScanResultBlob
}
