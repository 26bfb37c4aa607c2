package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"facesign/internal/resolve/ports"
)

// InMemoryStore is a ledger for tests and local development. It enforces the
// same (group, identifier) uniqueness the PostgreSQL store gets from its
// unique index.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string][]ports.MembershipRecord
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string][]ports.MembershipRecord)}
}

func (s *InMemoryStore) CountInGroup(_ context.Context, group string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records[group]), nil
}

func (s *InMemoryStore) Insert(_ context.Context, group, identifier string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range s.records[group] {
		if record.Identifier == identifier {
			return false, nil
		}
	}
	s.records[group] = append(s.records[group], ports.MembershipRecord{
		Group:      group,
		Identifier: identifier,
		EnrolledAt: time.Now().UTC(),
	})
	return true, nil
}

// EarliestOf returns the identifier with the oldest enrollment time among
// the given set, across all groups.
func (s *InMemoryStore) EarliestOf(_ context.Context, identifiers []string) (string, error) {
	if len(identifiers) == 0 {
		return "", fmt.Errorf("earliest-of requires a non-empty identifier set")
	}
	wanted := make(map[string]bool, len(identifiers))
	for _, id := range identifiers {
		wanted[id] = true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var (
		earliest   string
		earliestAt time.Time
	)
	for _, records := range s.records {
		for _, record := range records {
			if !wanted[record.Identifier] {
				continue
			}
			if earliest == "" || record.EnrolledAt.Before(earliestAt) {
				earliest = record.Identifier
				earliestAt = record.EnrolledAt
			}
		}
	}
	if earliest == "" {
		return "", fmt.Errorf("no enrollment records found for provided identifiers")
	}
	return earliest, nil
}

func (s *InMemoryStore) ListMembers(_ context.Context, group string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	members := make([]string, 0, len(s.records[group]))
	for _, record := range s.records[group] {
		members = append(members, record.Identifier)
	}
	return members, nil
}

func (s *InMemoryStore) ListRecords(_ context.Context, group string) ([]ports.MembershipRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ports.MembershipRecord{}, s.records[group]...), nil
}
