// Package facetec is the HTTP adapter for the remote biometric provider. It
// implements the resolver's LivenessGate and DuplicateIndex ports on top of
// the provider's enrollment-3d and 3d-db endpoints.
package facetec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"facesign/internal/resolve/ports"
	dErrors "facesign/pkg/domain-errors"
	"facesign/pkg/platform/sentinel"
)

// groupMissingFragment appears in the provider's errorMessage when a search
// names a group that has never had an enrollment. The provider gives no
// structured code for this case, so string matching is the only signal.
const groupMissingFragment = "groupName when that groupName does not exist"

// EarliestLookup resolves which of a set of identifiers was enrolled first.
// The provider has no endpoint for this; the composition root injects a
// ledger-backed implementation.
type EarliestLookup interface {
	EarliestOf(ctx context.Context, identifiers []string) (string, error)
}

// Client talks to the provider server. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	earliest   EarliestLookup
	logger     *slog.Logger

	// Fallback device credentials used when the inbound request did not
	// carry its own (server-to-server calls, audit tooling).
	deviceKey        string
	deviceIdentifier string
}

// Option configures a Client instance.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithDevice sets the fallback device key and identifier.
func WithDevice(key, identifier string) Option {
	return func(c *Client) {
		c.deviceKey = key
		c.deviceIdentifier = identifier
	}
}

// WithEarliestLookup sets the collaborator backing EarliestOf.
func WithEarliestLookup(lookup EarliestLookup) Option {
	return func(c *Client) {
		c.earliest = lookup
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New constructs a provider client against the given base URL.
func New(baseURL string, opts ...Option) *Client {
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

type enrollment3DRequest struct {
	FaceScan                  string `json:"faceScan"`
	AuditTrailImage           string `json:"auditTrailImage"`
	LowQualityAuditTrailImage string `json:"lowQualityAuditTrailImage"`
	ExternalDatabaseRefID     string `json:"externalDatabaseRefID"`
	SessionID                 string `json:"sessionId"`
	StoreAsFaceVector         bool   `json:"storeAsFaceVector"`
}

type enrollment3DResponse struct {
	// Success is a pointer: a blob-only reply omits it entirely, and that
	// absence is what distinguishes a challenge round from a verdict.
	Success       *bool  `json:"success"`
	WasProcessed  bool   `json:"wasProcessed"`
	ScanResultBlob string `json:"scanResultBlob"`
	Error         bool   `json:"error"`
	ErrorMessage  string `json:"errorMessage"`
}

// Check runs the provider's liveness-checking enrollment under the
// provisional identifier and decodes the reply into the tagged union the
// resolver consumes.
func (c *Client) Check(ctx context.Context, provisionalID string, sample ports.Sample) (ports.LivenessReply, error) {
	request := enrollment3DRequest{
		FaceScan:                  sample.FaceScan,
		AuditTrailImage:           sample.AuditTrailImage,
		LowQualityAuditTrailImage: sample.LowQualityAuditTrailImage,
		ExternalDatabaseRefID:     provisionalID,
		SessionID:                 sample.SessionID,
	}

	raw, err := c.post(ctx, "/enrollment-3d", request, c.device(sample))
	if err != nil {
		return ports.LivenessReply{}, fmt.Errorf("liveness check: %w", err)
	}

	var response enrollment3DResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		return ports.LivenessReply{}, fmt.Errorf("decode liveness response: %w", err)
	}

	if response.Success == nil && response.ScanResultBlob != "" {
		return ports.LivenessReply{Challenge: raw}, nil
	}

	succeeded := response.Success != nil && *response.Success && response.WasProcessed
	return ports.LivenessReply{Verdict: &ports.LivenessVerdict{
		Succeeded: succeeded,
		Errored:   response.Error,
		Raw:       raw,
	}}, nil
}

type searchRequest struct {
	ExternalDatabaseRefID string `json:"externalDatabaseRefID"`
	GroupName             string `json:"groupName"`
	MinMatchLevel         int    `json:"minMatchLevel"`
}

type searchResponse struct {
	Success bool `json:"success"`
	Results []struct {
		Identifier string `json:"identifier"`
		MatchLevel int    `json:"matchLevel"`
	} `json:"results"`
	Error        bool   `json:"error"`
	ErrorMessage string `json:"errorMessage"`
}

// Search runs a similarity search against the group. A provider reply naming
// a nonexistent group maps to sentinel.ErrGroupMissing.
func (c *Client) Search(ctx context.Context, identifier, group string, minMatchScore int) ([]ports.Candidate, error) {
	request := searchRequest{
		ExternalDatabaseRefID: identifier,
		GroupName:             group,
		MinMatchLevel:         minMatchScore,
	}

	raw, err := c.post(ctx, "/3d-db/search", request, c.device(ports.Sample{}))
	if err != nil {
		return nil, fmt.Errorf("duplicate search: %w", err)
	}

	var response searchResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	if !response.Success {
		if response.Error && strings.Contains(response.ErrorMessage, groupMissingFragment) {
			return nil, fmt.Errorf("group %q: %w", group, sentinel.ErrGroupMissing)
		}
		return nil, dErrors.New(dErrors.CodeUnavailable,
			fmt.Sprintf("duplicate search rejected: %s", response.ErrorMessage))
	}

	candidates := make([]ports.Candidate, 0, len(response.Results))
	for _, result := range response.Results {
		candidates = append(candidates, ports.Candidate{
			Identifier: result.Identifier,
			MatchScore: result.MatchLevel,
		})
	}
	return candidates, nil
}

type enrollRequest struct {
	ExternalDatabaseRefID string `json:"externalDatabaseRefID"`
	GroupName             string `json:"groupName"`
}

type statusResponse struct {
	Success      bool   `json:"success"`
	Error        bool   `json:"error"`
	ErrorMessage string `json:"errorMessage"`
}

// Enroll adds the identifier's stored vector to the group index. Enrolling
// into a group the provider has never seen creates it.
func (c *Client) Enroll(ctx context.Context, identifier, group string) error {
	request := enrollRequest{ExternalDatabaseRefID: identifier, GroupName: group}

	raw, err := c.post(ctx, "/3d-db/enroll", request, c.device(ports.Sample{}))
	if err != nil {
		return fmt.Errorf("index enroll: %w", err)
	}

	var response statusResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		return fmt.Errorf("decode enroll response: %w", err)
	}
	if !response.Success {
		return dErrors.New(dErrors.CodeUnavailable,
			fmt.Sprintf("index enroll rejected: %s", response.ErrorMessage))
	}
	return nil
}

// ConvertToVector asks the provider to store the identifier's latest scan as
// a face vector ahead of enrollment.
func (c *Client) ConvertToVector(ctx context.Context, identifier string) error {
	request := struct {
		ExternalDatabaseRefID string `json:"externalDatabaseRefID"`
	}{ExternalDatabaseRefID: identifier}

	raw, err := c.post(ctx, "/3d-db/convert", request, c.device(ports.Sample{}))
	if err != nil {
		return fmt.Errorf("vector conversion: %w", err)
	}

	var response statusResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		return fmt.Errorf("decode convert response: %w", err)
	}
	if !response.Success {
		return dErrors.New(dErrors.CodeUnavailable,
			fmt.Sprintf("vector conversion rejected: %s", response.ErrorMessage))
	}
	return nil
}

// EarliestOf delegates to the injected enrollment-time lookup.
func (c *Client) EarliestOf(ctx context.Context, identifiers []string) (string, error) {
	if c.earliest == nil {
		return "", dErrors.New(dErrors.CodeInternal, "earliest lookup is not configured")
	}
	return c.earliest.EarliestOf(ctx, identifiers)
}

type sessionTokenResponse struct {
	SessionToken string `json:"sessionToken"`
}

// SessionToken fetches a provider session token for the given device.
func (c *Client) SessionToken(ctx context.Context, deviceKey, deviceIdentifier string) (string, error) {
	raw, err := c.do(ctx, http.MethodGet, "/session-token", nil, device{key: deviceKey, identifier: deviceIdentifier})
	if err != nil {
		return "", fmt.Errorf("session token: %w", err)
	}

	var response sessionTokenResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		return "", fmt.Errorf("decode session token response: %w", err)
	}
	if response.SessionToken == "" {
		return "", dErrors.New(dErrors.CodeUnavailable, "provider returned an empty session token")
	}
	return response.SessionToken, nil
}

type matchRequest struct {
	FaceScan                  string `json:"faceScan"`
	AuditTrailImage           string `json:"auditTrailImage"`
	LowQualityAuditTrailImage string `json:"lowQualityAuditTrailImage"`
	ExternalDatabaseRefID     string `json:"externalDatabaseRefID"`
	SessionID                 string `json:"sessionId"`
}

// MatchResult is the decoded outcome of a 1:1 verification against a stored
// enrollment. Success and liveness are reported separately so callers can
// tell a failed match from a failed liveness check.
type MatchResult struct {
	Success        bool
	WasProcessed   bool
	MatchLevel     int
	RetryScreen    int
	ScanResultBlob string
	LivenessDone   bool
	Errored        bool
	Raw            json.RawMessage
}

type matchResponse struct {
	Success           bool   `json:"success"`
	WasProcessed      bool   `json:"wasProcessed"`
	MatchLevel        int    `json:"matchLevel"`
	RetryScreenEnumInt int   `json:"retryScreenEnumInt"`
	ScanResultBlob    string `json:"scanResultBlob"`
	Error             bool   `json:"error"`
	FaceScanSecurityChecks struct {
		FaceScanLivenessCheckSucceeded bool `json:"faceScanLivenessCheckSucceeded"`
	} `json:"faceScanSecurityChecks"`
}

// Match verifies a live sample against the stored enrollment for the given
// identifier.
func (c *Client) Match(ctx context.Context, identifier string, sample ports.Sample) (MatchResult, error) {
	request := matchRequest{
		FaceScan:                  sample.FaceScan,
		AuditTrailImage:           sample.AuditTrailImage,
		LowQualityAuditTrailImage: sample.LowQualityAuditTrailImage,
		ExternalDatabaseRefID:     identifier,
		SessionID:                 sample.SessionID,
	}

	raw, err := c.post(ctx, "/match-3d-3d", request, c.device(sample))
	if err != nil {
		return MatchResult{}, fmt.Errorf("match: %w", err)
	}

	var response matchResponse
	if err := json.Unmarshal(raw, &response); err != nil {
		return MatchResult{}, fmt.Errorf("decode match response: %w", err)
	}

	return MatchResult{
		Success:        response.Success,
		WasProcessed:   response.WasProcessed,
		MatchLevel:     response.MatchLevel,
		RetryScreen:    response.RetryScreenEnumInt,
		ScanResultBlob: response.ScanResultBlob,
		LivenessDone:   response.FaceScanSecurityChecks.FaceScanLivenessCheckSucceeded,
		Errored:        response.Error,
		Raw:            raw,
	}, nil
}

type device struct {
	key        string
	identifier string
}

func (c *Client) device(sample ports.Sample) device {
	d := device{key: sample.DeviceKey, identifier: sample.DeviceIdentifier}
	if d.key == "" {
		d.key = c.deviceKey
	}
	if d.identifier == "" {
		d.identifier = c.deviceIdentifier
	}
	return d
}

func (c *Client) post(ctx context.Context, path string, body any, dev device) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, path, body, dev)
}

func (c *Client) do(ctx context.Context, method, path string, body any, dev device) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if dev.key != "" {
		request.Header.Set("X-Device-Key", dev.key)
	}
	if dev.identifier != "" {
		request.Header.Set("X-Device-Identifier", dev.identifier)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "provider request failed")
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("read provider response: %w", err)
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		c.logger.WarnContext(ctx, "provider returned non-2xx",
			"path", path, "status", response.StatusCode)
		return nil, dErrors.New(dErrors.CodeUnavailable,
			fmt.Sprintf("provider %s returned status %d", path, response.StatusCode))
	}
	return raw, nil
}
