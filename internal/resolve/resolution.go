package resolve

import (
	"facesign/internal/resolve/ports"
)

// Outcome tags the terminal state of one resolution.
type Outcome string

const (
	// OutcomeNew means the sample belongs to a person never seen in the
	// group; the provisional identifier became permanent.
	OutcomeNew Outcome = "new"

	// OutcomeReused means exactly one enrolled identity matched (or a
	// tolerated tie resolved to one); its identifier is returned.
	OutcomeReused Outcome = "reused"

	// OutcomeConflict means multiple identities matched under strict
	// tie-break policy. Callers special-case this ("contact support").
	OutcomeConflict Outcome = "conflict"

	// OutcomeInconsistent means the two stores disagree or the remote
	// failed unexpectedly. Fatal for this resolution, never auto-repaired.
	OutcomeInconsistent Outcome = "inconsistent"

	// OutcomeLivenessFailed means liveness was not proven. An expected
	// negative, not a system error.
	OutcomeLivenessFailed Outcome = "liveness_failed"
)

// Resolution is the orchestrator's output for one sample.
type Resolution struct {
	Identifier string
	Outcome    Outcome

	// Verdict carries the gate's raw detail; on the liveness-failed path the
	// blob inside must reach the original caller verbatim.
	Verdict *ports.LivenessVerdict

	// SessionInProgress is set when the gate returned a challenge blob
	// instead of a verdict: the liveness dialogue needs another round. The
	// blob is in Verdict.Raw and the outcome is OutcomeLivenessFailed.
	SessionInProgress bool

	Candidates []ports.Candidate

	// Token is the signed capability, present only on New and Reused.
	Token string
}

// Options select per-request behavior. Tie-break mode is deployment
// configuration chosen per group by the caller, never inferred from data.
type Options struct {
	PreferVectorStorage bool
	TieBreak            Mode
}
