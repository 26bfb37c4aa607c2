// Package resolve implements the identity resolution orchestrator: one
// incoming biometric sample becomes a liveness verdict, a duplicate-search
// decision, a tie-break, and a consistency verdict between the remote index
// and the local ledger.
package resolve

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"facesign/internal/resolve/lock"
	resolvemetrics "facesign/internal/resolve/metrics"
	"facesign/internal/resolve/ports"
	dErrors "facesign/pkg/domain-errors"
	"facesign/pkg/platform/sentinel"
)

// Resolver sequences LivenessGate -> DuplicateIndex -> TieBreakPolicy ->
// MembershipLedger for one sample and produces a Resolution. All collaborator
// calls within one resolution are strictly sequential; concurrency control
// across resolutions lives in the ledger's unique key and the enrollment lock.
type Resolver struct {
	gate   ports.LivenessGate
	index  ports.DuplicateIndex
	ledger ports.MembershipLedger

	telemetry ports.Telemetry
	issuer    ports.TokenIssuer
	lock      ports.EnrollmentLock

	minMatchScore int
	logger        *slog.Logger
	metrics       *resolvemetrics.Metrics
	tracer        trace.Tracer
}

// Option configures optional resolver dependencies.
type Option func(*Resolver)

// WithTelemetry sets the fire-and-forget event sink.
func WithTelemetry(t ports.Telemetry) Option {
	return func(r *Resolver) {
		if t != nil {
			r.telemetry = t
		}
	}
}

// WithTokenIssuer sets the capability token issuer, consulted on New and
// Reused outcomes.
func WithTokenIssuer(i ports.TokenIssuer) Option {
	return func(r *Resolver) { r.issuer = i }
}

// WithEnrollmentLock sets the per-group first-enrollment lock. Defaults to
// an in-process lock suitable for single-instance deployments.
func WithEnrollmentLock(l ports.EnrollmentLock) Option {
	return func(r *Resolver) {
		if l != nil {
			r.lock = l
		}
	}
}

// WithMinMatchScore overrides the duplicate-search similarity threshold.
func WithMinMatchScore(score int) Option {
	return func(r *Resolver) { r.minMatchScore = score }
}

// WithMetrics attaches prometheus metrics.
func WithMetrics(m *resolvemetrics.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

// WithLogger attaches a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// DefaultMinMatchScore matches the provider's recommended duplicate
// threshold for 3D face vectors.
const DefaultMinMatchScore = 15

// New constructs a Resolver around the three required collaborators.
func New(gate ports.LivenessGate, index ports.DuplicateIndex, ledger ports.MembershipLedger, opts ...Option) *Resolver {
	r := &Resolver{
		gate:          gate,
		index:         index,
		ledger:        ledger,
		telemetry:     nopTelemetry{},
		lock:          lock.NewLocal(),
		minMatchScore: DefaultMinMatchScore,
		logger:        slog.Default(),
		tracer:        otel.Tracer("facesign/resolve"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve turns one sample into a Resolution. The returned error is non-nil
// only for unrecoverable outcomes (OutcomeInconsistent); expected negatives
// (liveness failed, policy conflict) come back as outcomes with a nil error
// so transports can map them without unwrapping.
func (r *Resolver) Resolve(ctx context.Context, sample ports.Sample, group string, opts Options) (Resolution, error) {
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "resolve.Resolve",
		trace.WithAttributes(attribute.String("facesign.group", group)))
	defer span.End()

	resolution, err := r.resolve(ctx, sample, group, opts)

	span.SetAttributes(attribute.String("facesign.outcome", string(resolution.Outcome)))
	r.metrics.IncrementOutcome(string(resolution.Outcome), group)
	r.metrics.ObserveResolve(time.Since(start))
	return resolution, err
}

func (r *Resolver) resolve(ctx context.Context, sample ports.Sample, group string, opts Options) (Resolution, error) {
	// A fresh provisional identifier per call makes whole-resolution retries
	// safe: the ledger and the remote index are idempotent per identifier.
	provisionalID := uuid.NewString()

	reply, err := r.checkLiveness(ctx, provisionalID, sample)
	if err != nil {
		return r.inconsistent(ctx, group, provisionalID, nil, err)
	}

	if reply.Challenge != nil {
		// Blob-only response: the liveness dialogue needs another round with
		// the end caller. The blob goes back verbatim.
		r.telemetry.Log(ctx, "resolve-challenge", map[string]any{
			"group": group,
		})
		return Resolution{
			Outcome:           OutcomeLivenessFailed,
			SessionInProgress: true,
			Verdict:           &ports.LivenessVerdict{Raw: reply.Challenge},
		}, nil
	}

	verdict := reply.Verdict
	if verdict == nil || !verdict.Succeeded || verdict.Errored {
		r.telemetry.Log(ctx, "resolve-liveness-failed", map[string]any{
			"group":     group,
			"succeeded": verdict != nil && verdict.Succeeded,
			"errored":   verdict != nil && verdict.Errored,
		})
		return Resolution{Outcome: OutcomeLivenessFailed, Verdict: verdict}, nil
	}

	candidates, groupMissing, err := r.search(ctx, provisionalID, group)
	if err != nil {
		return r.inconsistent(ctx, group, provisionalID, verdict, err)
	}

	if groupMissing {
		if err := r.checkBootstrap(ctx, group); err != nil {
			return r.inconsistent(ctx, group, provisionalID, verdict, err)
		}
		r.logger.InfoContext(ctx, "group missing remotely and empty locally, bootstrapping",
			"group", group)
		candidates = nil
	}

	if len(candidates) == 0 {
		return r.enrollNew(ctx, provisionalID, group, verdict, opts)
	}
	return r.reuse(ctx, group, verdict, candidates, opts)
}

// checkLiveness calls the gate and times it. A transport-level failure is an
// unexpected remote error, distinct from a negative verdict.
func (r *Resolver) checkLiveness(ctx context.Context, provisionalID string, sample ports.Sample) (ports.LivenessReply, error) {
	start := time.Now()
	reply, err := r.gate.Check(ctx, provisionalID, sample)
	r.metrics.ObserveCollaborator("liveness", time.Since(start))
	if err != nil {
		return ports.LivenessReply{}, dErrors.Wrap(err, dErrors.CodeInternal, "liveness gate call failed")
	}
	return reply, nil
}

func (r *Resolver) search(ctx context.Context, identifier, group string) ([]ports.Candidate, bool, error) {
	start := time.Now()
	candidates, err := r.index.Search(ctx, identifier, group, r.minMatchScore)
	r.metrics.ObserveCollaborator("search", time.Since(start))
	if errors.Is(err, sentinel.ErrGroupMissing) {
		return nil, true, nil
	}
	if err != nil {
		return nil, false, dErrors.Wrap(err, dErrors.CodeInternal, "duplicate search failed")
	}
	return candidates, false, nil
}

// checkBootstrap decides whether a remotely missing group is a legitimate
// first-ever enrollment or corruption. A group with local members but no
// remote counterpart signals data loss on one side; it must never be
// silently repaired.
func (r *Resolver) checkBootstrap(ctx context.Context, group string) error {
	start := time.Now()
	count, err := r.ledger.CountInGroup(ctx, group)
	r.metrics.ObserveCollaborator("count", time.Since(start))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "ledger count failed")
	}
	if count > 0 {
		return dErrors.Newf(dErrors.CodeInvariantViolation,
			"group %q has %d local members but does not exist in the remote index", group, count)
	}
	return nil
}

// enrollNew handles the zero-candidate path. The whole
// confirm-search/enroll/insert window runs under the per-group enrollment
// lock so two concurrent resolutions for the same new person cannot both
// enroll under different provisional identifiers.
func (r *Resolver) enrollNew(ctx context.Context, provisionalID, group string, verdict *ports.LivenessVerdict, opts Options) (Resolution, error) {
	release, err := r.lock.Acquire(ctx, group)
	if err != nil {
		return r.inconsistent(ctx, group, provisionalID, verdict,
			dErrors.Wrap(err, dErrors.CodeInternal, "enrollment lock acquire failed"))
	}
	defer release()

	// Confirm the search result under the lock: a concurrent resolution may
	// have enrolled this person between our search and our lock acquisition.
	candidates, groupMissing, err := r.search(ctx, provisionalID, group)
	if err != nil {
		return r.inconsistent(ctx, group, provisionalID, verdict, err)
	}
	if !groupMissing && len(candidates) > 0 {
		return r.reuse(ctx, group, verdict, candidates, opts)
	}

	if opts.PreferVectorStorage {
		start := time.Now()
		err := r.index.ConvertToVector(ctx, provisionalID)
		r.metrics.ObserveCollaborator("convert", time.Since(start))
		if err != nil {
			return r.inconsistent(ctx, group, provisionalID, verdict,
				dErrors.Wrap(err, dErrors.CodeInternal, "face vector conversion failed"))
		}
	}

	start := time.Now()
	err = r.index.Enroll(ctx, provisionalID, group)
	r.metrics.ObserveCollaborator("enroll", time.Since(start))
	if err != nil {
		return r.inconsistent(ctx, group, provisionalID, verdict,
			dErrors.Wrap(err, dErrors.CodeInternal, "remote enroll failed"))
	}

	start = time.Now()
	inserted, err := r.ledger.Insert(ctx, group, provisionalID)
	r.metrics.ObserveCollaborator("insert", time.Since(start))
	if err != nil {
		// The remote enroll already succeeded, so this leaves the stores
		// unreconciled. Surface it loudly; repair tooling owns the cleanup.
		r.logger.ErrorContext(ctx, "ledger insert failed after successful remote enroll",
			"group", group, "identifier", provisionalID, "error", err)
		return r.inconsistent(ctx, group, provisionalID, verdict,
			dErrors.Wrap(err, dErrors.CodeInternal, "ledger insert failed after remote enroll"))
	}
	if !inserted {
		r.logger.InfoContext(ctx, "identifier already in ledger, treating as member",
			"group", group, "identifier", provisionalID)
	}

	token, err := r.issueToken(ctx, provisionalID)
	if err != nil {
		return r.inconsistent(ctx, group, provisionalID, verdict, err)
	}

	r.telemetry.Log(ctx, "resolve-new-user", map[string]any{
		"identifier": provisionalID,
		"group":      group,
	})

	return Resolution{
		Identifier: provisionalID,
		Outcome:    OutcomeNew,
		Verdict:    verdict,
		Token:      token,
	}, nil
}

// reuse handles the one-or-more candidate paths. The ledger is not touched:
// membership is assumed present for any identifier the index already knows.
func (r *Resolver) reuse(ctx context.Context, group string, verdict *ports.LivenessVerdict, candidates []ports.Candidate, opts Options) (Resolution, error) {
	identifiers := make([]string, len(candidates))
	for i, c := range candidates {
		identifiers[i] = c.Identifier
	}

	if len(candidates) == 1 {
		token, err := r.issueToken(ctx, candidates[0].Identifier)
		if err != nil {
			return r.inconsistent(ctx, group, candidates[0].Identifier, verdict, err)
		}
		r.telemetry.Log(ctx, "resolve-duplicate", map[string]any{
			"identifiers": identifiers,
			"count":       1,
			"group":       group,
		})
		return Resolution{
			Identifier: candidates[0].Identifier,
			Outcome:    OutcomeReused,
			Verdict:    verdict,
			Candidates: candidates,
			Token:      token,
		}, nil
	}

	start := time.Now()
	chosen, err := breakTie(ctx, r.index, opts.TieBreak, candidates)
	r.metrics.ObserveCollaborator("earliest_of", time.Since(start))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			r.telemetry.Log(ctx, "resolve-duplicate-error", map[string]any{
				"identifiers": identifiers,
				"count":       len(candidates),
				"group":       group,
			})
			return Resolution{
				Outcome:    OutcomeConflict,
				Verdict:    verdict,
				Candidates: candidates,
			}, nil
		}
		return r.inconsistent(ctx, group, "", verdict, err)
	}

	token, err := r.issueToken(ctx, chosen)
	if err != nil {
		return r.inconsistent(ctx, group, chosen, verdict, err)
	}
	r.telemetry.Log(ctx, "resolve-duplicate", map[string]any{
		"identifiers": identifiers,
		"count":       len(candidates),
		"group":       group,
		"chosen":      chosen,
	})
	return Resolution{
		Identifier: chosen,
		Outcome:    OutcomeReused,
		Verdict:    verdict,
		Candidates: candidates,
		Token:      token,
	}, nil
}

func (r *Resolver) issueToken(ctx context.Context, identifier string) (string, error) {
	if r.issuer == nil {
		return "", nil
	}
	token, err := r.issuer.Issue(identifier)
	if err != nil {
		r.logger.ErrorContext(ctx, "token issuance failed", "identifier", identifier, "error", err)
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "token issuance failed")
	}
	return token, nil
}

// inconsistent is the single unrecoverable exit. It logs with full context,
// emits the inconsistency telemetry event, and surfaces a generic failure.
func (r *Resolver) inconsistent(ctx context.Context, group, identifier string, verdict *ports.LivenessVerdict, err error) (Resolution, error) {
	r.logger.ErrorContext(ctx, "resolution inconsistency",
		"group", group, "identifier", identifier, "error", err)
	r.telemetry.Log(ctx, "resolve-inconsistency", map[string]any{
		"group":      group,
		"identifier": identifier,
		"error":      err.Error(),
	})
	return Resolution{Outcome: OutcomeInconsistent, Verdict: verdict}, err
}

type nopTelemetry struct{}

func (nopTelemetry) Log(context.Context, string, map[string]any) {}
