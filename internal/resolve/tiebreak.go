package resolve

import (
	"context"

	dErrors "facesign/pkg/domain-errors"

	"facesign/internal/resolve/ports"
)

// Mode selects how a multi-candidate search result is resolved.
type Mode string

const (
	// ModeStrict rejects any tie outright: more than one identity matching
	// the same face must never happen in groups using this mode.
	ModeStrict Mode = "strict"

	// ModeOldestWins tolerates soft duplicates and deterministically picks
	// the candidate with the earliest provider-side creation time.
	ModeOldestWins Mode = "oldest-wins"
)

// ParseMode validates a configured tie-break mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeStrict, ModeOldestWins:
		return Mode(s), nil
	case "":
		return ModeStrict, nil
	default:
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown tie-break mode %q", s)
	}
}

// breakTie resolves a candidate set of size > 1 down to one identifier.
// Strict mode returns a conflict error. Oldest-wins asks the index for the
// earliest record; a failed lookup propagates as an invariant violation
// because the tie can then not be resolved deterministically.
func breakTie(ctx context.Context, index ports.DuplicateIndex, mode Mode, candidates []ports.Candidate) (string, error) {
	switch mode {
	case ModeOldestWins:
		identifiers := make([]string, len(candidates))
		for i, c := range candidates {
			identifiers[i] = c.Identifier
		}
		oldest, err := index.EarliestOf(ctx, identifiers)
		if err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInvariantViolation, "earliest-record lookup failed")
		}
		return oldest, nil
	default:
		return "", dErrors.New(dErrors.CodeConflict, "multiple identities match the same face vector")
	}
}
