package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"facesign/internal/resolve"
	"facesign/internal/resolve/ports"
)

// fakeResolver records the last call and returns a canned resolution.
type fakeResolver struct {
	result resolve.Resolution
	err    error

	gotSample ports.Sample
	gotGroup  string
	gotOpts   resolve.Options
}

func (f *fakeResolver) Resolve(_ context.Context, sample ports.Sample, group string, opts resolve.Options) (resolve.Resolution, error) {
	f.gotSample = sample
	f.gotGroup = group
	f.gotOpts = opts
	return f.result, f.err
}

type HandlerSuite struct {
	suite.Suite
	router   http.Handler
	resolver *fakeResolver
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.resolver = &fakeResolver{}
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	handler := New(s.resolver, logger, "facesign-users", "pinocchio-users", map[string]string{
		"facesign-users":  "strict",
		"pinocchio-users": "oldest-wins",
	})

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

func (s *HandlerSuite) decode(rec *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func (s *HandlerSuite) TestLoginInvalidJSON() {
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestLoginNewUser() {
	s.resolver.result = resolve.Resolution{
		Identifier: "fresh-id",
		Outcome:    resolve.OutcomeNew,
		Token:      "signed-token",
		Verdict: &ports.LivenessVerdict{
			Succeeded: true,
			Raw:       json.RawMessage(`{"scanResultBlob":"blob-1"}`),
		},
	}

	rec := s.post("/login", map[string]any{
		"faceScan":  "scan",
		"sessionId": "session-1",
		"key":       "device-key",
	})

	s.Equal(http.StatusCreated, rec.Code)
	body := s.decode(rec)
	s.Equal(true, body["success"])
	s.Equal("fresh-id", body["faceSignUserId"])
	s.Equal("signed-token", body["token"])
	s.Equal("blob-1", body["scanResultBlob"])

	s.Equal("facesign-users", s.resolver.gotGroup)
	s.Equal(resolve.ModeStrict, s.resolver.gotOpts.TieBreak)
	s.True(s.resolver.gotOpts.PreferVectorStorage, "faceVector defaults to true")
	s.Equal("scan", s.resolver.gotSample.FaceScan)
	s.Equal("device-key", s.resolver.gotSample.DeviceKey)
}

func (s *HandlerSuite) TestLoginReusedIdentity() {
	s.resolver.result = resolve.Resolution{
		Identifier: "existing-id",
		Outcome:    resolve.OutcomeReused,
		Token:      "signed-token",
	}

	rec := s.post("/login", map[string]any{"faceScan": "scan"})

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("existing-id", s.decode(rec)["faceSignUserId"])
}

func (s *HandlerSuite) TestLoginHonorsGroupAndVectorOverrides() {
	s.resolver.result = resolve.Resolution{Outcome: resolve.OutcomeReused, Identifier: "x", Token: "t"}

	rec := s.post("/login", map[string]any{
		"faceScan":   "scan",
		"groupName":  "pinocchio-users",
		"faceVector": false,
	})

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("pinocchio-users", s.resolver.gotGroup)
	s.Equal(resolve.ModeOldestWins, s.resolver.gotOpts.TieBreak)
	s.False(s.resolver.gotOpts.PreferVectorStorage)
}

func (s *HandlerSuite) TestLoginChallengeRound() {
	blob := json.RawMessage(`{"scanResultBlob":"round-two"}`)
	s.resolver.result = resolve.Resolution{
		Outcome:           resolve.OutcomeLivenessFailed,
		SessionInProgress: true,
		Verdict:           &ports.LivenessVerdict{Raw: blob},
	}

	rec := s.post("/login", map[string]any{"faceScan": "scan"})

	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"responseBlob":{"scanResultBlob":"round-two"}}`, rec.Body.String())
}

func (s *HandlerSuite) TestLoginLivenessFailed() {
	s.resolver.result = resolve.Resolution{
		Outcome: resolve.OutcomeLivenessFailed,
		Verdict: &ports.LivenessVerdict{Succeeded: false},
	}

	rec := s.post("/login", map[string]any{"faceScan": "scan"})

	s.Equal(http.StatusBadRequest, rec.Code)
	body := s.decode(rec)
	s.Equal(false, body["success"])
	s.Equal(true, body["error"])
}

func (s *HandlerSuite) TestLoginConflict() {
	s.resolver.result = resolve.Resolution{Outcome: resolve.OutcomeConflict}

	rec := s.post("/login", map[string]any{"faceScan": "scan"})

	s.Equal(http.StatusConflict, rec.Code)
}

func (s *HandlerSuite) TestLoginInconsistencyIsGeneric500() {
	s.resolver.result = resolve.Resolution{Outcome: resolve.OutcomeInconsistent}
	s.resolver.err = errors.New("ledger insert failed: connection reset")

	rec := s.post("/login", map[string]any{"faceScan": "scan"})

	s.Equal(http.StatusInternalServerError, rec.Code)
	body := s.decode(rec)
	s.NotContains(body["errorMessage"], "connection reset", "internal detail must not leak")
}

func (s *HandlerSuite) TestPinocchioLoginPinsGroup() {
	s.resolver.result = resolve.Resolution{Outcome: resolve.OutcomeReused, Identifier: "old", Token: "t"}

	rec := s.post("/pinocchio-login", map[string]any{
		"faceScan":  "scan",
		"groupName": "attacker-chosen",
	})

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("pinocchio-users", s.resolver.gotGroup, "caller cannot choose the pinocchio group")
	s.Equal(resolve.ModeOldestWins, s.resolver.gotOpts.TieBreak)
}
