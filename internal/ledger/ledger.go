// Package ledger provides the durable group-membership store: the local
// source of truth for which identifiers belong to which enrollment group.
// It backs the resolver's MembershipLedger port and the dupescan audit tool.
package ledger

import (
	"context"

	"facesign/internal/resolve/ports"
)

// Store is the full ledger surface. The resolver consumes the narrower
// ports.MembershipLedger view; ListRecords exists for audit tooling and
// EarliestOf backs the oldest-wins tie-break.
type Store interface {
	ports.MembershipLedger
	EarliestOf(ctx context.Context, identifiers []string) (string, error)
	ListRecords(ctx context.Context, group string) ([]ports.MembershipRecord, error)
}
