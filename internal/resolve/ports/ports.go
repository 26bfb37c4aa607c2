// Package ports defines the collaborator interfaces the identity resolver
// depends on. The resolver never talks to HTTP, SQL, or Kafka directly; it
// sees only these ports so tests can substitute fakes independently.
package ports

import (
	"context"
	"encoding/json"
	"time"
)

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

// Sample is one live biometric capture plus the device context the provider
// wants echoed back. It is ephemeral and never persisted by the core.
type Sample struct {
	FaceScan                  string
	AuditTrailImage           string
	LowQualityAuditTrailImage string
	SessionID                 string
	DeviceKey                 string
	DeviceIdentifier          string
}

// LivenessVerdict is the outcome of a liveness check. Succeeded=false is a
// normal terminal outcome, not a system error. Raw is the provider blob that
// must be forwarded to the original caller verbatim; it is part of a
// multi-round challenge dialogue the core does not interpret.
type LivenessVerdict struct {
	Succeeded bool
	Errored   bool
	Raw       json.RawMessage
}

// LivenessReply is a tagged result from the gate: exactly one of Challenge
// or Verdict is set. Challenge carries a blob-only response used when the
// provider wants another round with the end caller before giving a verdict.
type LivenessReply struct {
	Challenge json.RawMessage
	Verdict   *LivenessVerdict
}

// LivenessGate converts a raw sample into a liveness verdict and, on
// success, stores a biometric vector under the provisional identifier.
type LivenessGate interface {
	Check(ctx context.Context, provisionalID string, sample Sample) (LivenessReply, error)
}

// Candidate is a potential pre-existing identity returned by similarity
// search, with a match confidence score.
type Candidate struct {
	Identifier string
	MatchScore int
}

// DuplicateIndex is the remote similarity-search and enrollment provider.
// Search returns sentinel.ErrGroupMissing (wrapped) when the group does not
// exist remotely; any other error is an unexpected remote failure.
type DuplicateIndex interface {
	Search(ctx context.Context, identifier, group string, minMatchScore int) ([]Candidate, error)
	Enroll(ctx context.Context, identifier, group string) error

	// EarliestOf resolves oldest-wins ties: it returns the identifier with
	// the earliest provider-side creation time among the given set.
	EarliestOf(ctx context.Context, identifiers []string) (string, error)

	// ConvertToVector stores the sample's face vector under the identifier.
	// Called before enrollment when the caller prefers vector storage.
	ConvertToVector(ctx context.Context, identifier string) error
}

// MembershipRecord maps an identifier into a group. (Group, Identifier) is
// unique; records are created once and never mutated by this core.
type MembershipRecord struct {
	Group      string
	Identifier string
	EnrolledAt time.Time
}

// MembershipLedger is the durable local store of group memberships. Insert
// reports inserted=false when the record already exists; that is membership,
// not an error. ListMembers exists for repair tooling only.
type MembershipLedger interface {
	CountInGroup(ctx context.Context, group string) (int, error)
	Insert(ctx context.Context, group, identifier string) (inserted bool, err error)
	ListMembers(ctx context.Context, group string) ([]string, error)
}

// Telemetry is a fire-and-forget event sink. Implementations must never
// block the caller or surface failures into the resolution outcome.
type Telemetry interface {
	Log(ctx context.Context, event string, payload map[string]any)
}

// TokenIssuer signs a short-lived capability bearing the resolved identifier.
type TokenIssuer interface {
	Issue(identifier string) (string, error)
}

// EnrollmentLock serializes first-enrollment for a group so two concurrent
// resolutions for the same physical person cannot both pass the empty-search
// check. Release must always be called; implementations carry a TTL so a
// crashed holder cannot wedge the group.
type EnrollmentLock interface {
	Acquire(ctx context.Context, group string) (release func(), err error)
}
