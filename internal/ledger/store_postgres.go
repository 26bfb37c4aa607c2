package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"facesign/internal/resolve/ports"
)

// PostgresStore persists group memberships in PostgreSQL.
type PostgresStore struct {
	db    *sql.DB
	clock func() time.Time
}

// PostgresOption configures a PostgresStore instance.
type PostgresOption func(*PostgresStore)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) PostgresOption {
	return func(s *PostgresStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewPostgres constructs a PostgreSQL-backed membership ledger.
func NewPostgres(db *sql.DB, opts ...PostgresOption) *PostgresStore {
	store := &PostgresStore{
		db:    db,
		clock: time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store
}

// EnsureSchema creates the memberships table if it does not exist. Called
// once at startup; concurrent callers are safe because CREATE IF NOT EXISTS
// is idempotent.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS group_memberships (
			group_name  TEXT        NOT NULL,
			identifier  TEXT        NOT NULL,
			enrolled_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (group_name, identifier)
		)
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensure ledger schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) CountInGroup(ctx context.Context, group string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM group_memberships WHERE group_name = $1`, group,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count group members: %w", err)
	}
	return count, nil
}

// Insert records a membership. A unique-violation on (group_name, identifier)
// means the record already exists and reports inserted=false with no error.
func (s *PostgresStore) Insert(ctx context.Context, group, identifier string) (bool, error) {
	query := `
		INSERT INTO group_memberships (group_name, identifier, enrolled_at)
		VALUES ($1, $2, $3)
	`
	_, err := s.db.ExecContext(ctx, query, group, identifier, s.clock().UTC())
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return false, nil
		}
		return false, fmt.Errorf("insert membership: %w", err)
	}
	return true, nil
}

// EarliestOf returns the identifier with the oldest enrollment time among
// the given set. Used by the oldest-wins tie-break.
func (s *PostgresStore) EarliestOf(ctx context.Context, identifiers []string) (string, error) {
	if len(identifiers) == 0 {
		return "", fmt.Errorf("earliest-of requires a non-empty identifier set")
	}
	var identifier string
	err := s.db.QueryRowContext(ctx, `
		SELECT identifier FROM group_memberships
		WHERE identifier = ANY($1)
		ORDER BY enrolled_at
		LIMIT 1
	`, pq.Array(identifiers)).Scan(&identifier)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("no enrollment records found for provided identifiers")
		}
		return "", fmt.Errorf("earliest-of lookup: %w", err)
	}
	return identifier, nil
}

func (s *PostgresStore) ListMembers(ctx context.Context, group string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT identifier FROM group_memberships WHERE group_name = $1 ORDER BY enrolled_at`, group)
	if err != nil {
		return nil, fmt.Errorf("list group members: %w", err)
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var identifier string
		if err := rows.Scan(&identifier); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, identifier)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}
	return members, nil
}

func (s *PostgresStore) ListRecords(ctx context.Context, group string) ([]ports.MembershipRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT group_name, identifier, enrolled_at FROM group_memberships WHERE group_name = $1 ORDER BY enrolled_at`, group)
	if err != nil {
		return nil, fmt.Errorf("list membership records: %w", err)
	}
	defer rows.Close()

	var records []ports.MembershipRecord
	for rows.Next() {
		var record ports.MembershipRecord
		if err := rows.Scan(&record.Group, &record.Identifier, &record.EnrolledAt); err != nil {
			return nil, fmt.Errorf("scan membership record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate membership records: %w", err)
	}
	return records, nil
}
