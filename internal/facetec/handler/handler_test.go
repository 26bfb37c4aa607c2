package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"facesign/internal/facetec"
	"facesign/internal/resolve/ports"
)

type fakeProvider struct {
	sessionToken string
	sessionErr   error
	matchResult  facetec.MatchResult
	matchErr     error

	gotIdentifier string
}

func (f *fakeProvider) SessionToken(context.Context, string, string) (string, error) {
	return f.sessionToken, f.sessionErr
}

func (f *fakeProvider) Match(_ context.Context, identifier string, _ ports.Sample) (facetec.MatchResult, error) {
	f.gotIdentifier = identifier
	return f.matchResult, f.matchErr
}

type recordingTelemetry struct {
	mu     sync.Mutex
	events []string
}

func (t *recordingTelemetry) Log(_ context.Context, event string, _ map[string]any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, event)
}

type HandlerSuite struct {
	suite.Suite
	router    http.Handler
	provider  *fakeProvider
	telemetry *recordingTelemetry
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.provider = &fakeProvider{}
	s.telemetry = &recordingTelemetry{}
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	handler := New(s.provider, logger, s.telemetry)

	r := chi.NewRouter()
	handler.Register(r)
	s.router = r
}

func (s *HandlerSuite) post(path string, body any) *httptest.ResponseRecorder {
	encoded, err := json.Marshal(body)
	s.Require().NoError(err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(encoded))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *HandlerSuite) TestSessionToken() {
	s.provider.sessionToken = "st-123"

	rec := s.post("/session-token", map[string]any{
		"key":              "device-key",
		"deviceIdentifier": "device-id",
	})

	s.Equal(http.StatusOK, rec.Code)
	var body map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal(true, body["success"])
	s.Equal("st-123", body["sessionToken"])
	s.Equal([]string{"session-token"}, s.telemetry.events)
}

func (s *HandlerSuite) TestSessionTokenProviderDown() {
	s.provider.sessionErr = errors.New("connection refused")

	rec := s.post("/session-token", map[string]any{"key": "device-key"})

	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.Empty(s.telemetry.events)
}

func (s *HandlerSuite) TestMatch() {
	s.provider.matchResult = facetec.MatchResult{
		Success:      true,
		WasProcessed: true,
		MatchLevel:   12,
		LivenessDone: true,
	}

	rec := s.post("/match", map[string]any{
		"faceScan":       "scan",
		"externalUserId": "user-1",
	})

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("user-1", s.provider.gotIdentifier)
	var body map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal(true, body["success"])
	s.Equal(float64(12), body["matchLevel"])
	s.Equal(true, body["livenessDone"])
	s.Equal([]string{"match-done"}, s.telemetry.events)
}

func (s *HandlerSuite) TestMatchRequiresIdentifier() {
	rec := s.post("/match", map[string]any{"faceScan": "scan"})
	s.Equal(http.StatusBadRequest, rec.Code)
}

// A processed non-match is still a 200: the caller reads success=false and
// livenessDone to decide whether a retry makes sense.
func (s *HandlerSuite) TestMatchProcessedNonMatch() {
	s.provider.matchResult = facetec.MatchResult{
		Success:      false,
		WasProcessed: true,
		MatchLevel:   3,
		LivenessDone: true,
	}

	rec := s.post("/match", map[string]any{
		"faceScan":       "scan",
		"externalUserId": "user-1",
	})

	s.Equal(http.StatusOK, rec.Code)
	var body map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	s.Equal(false, body["success"])
	s.Equal([]string{"match-done"}, s.telemetry.events)
}

func (s *HandlerSuite) TestMatchUnprocessedLogsFailure() {
	s.provider.matchResult = facetec.MatchResult{WasProcessed: false}

	rec := s.post("/match", map[string]any{
		"faceScan":       "scan",
		"externalUserId": "user-1",
	})

	s.Equal(http.StatusOK, rec.Code)
	s.Equal([]string{"match-failed"}, s.telemetry.events)
}
