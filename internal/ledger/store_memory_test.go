package ledger

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
}

func (s *InMemoryStoreSuite) TestInsertAndCount() {
	ctx := context.Background()

	count, err := s.store.CountInGroup(ctx, "alpha")
	s.Require().NoError(err)
	s.Zero(count)

	inserted, err := s.store.Insert(ctx, "alpha", "user-1")
	s.Require().NoError(err)
	s.True(inserted)

	inserted, err = s.store.Insert(ctx, "alpha", "user-2")
	s.Require().NoError(err)
	s.True(inserted)

	count, err = s.store.CountInGroup(ctx, "alpha")
	s.Require().NoError(err)
	s.Equal(2, count)
}

func (s *InMemoryStoreSuite) TestDuplicateInsertIsNotAnError() {
	ctx := context.Background()

	inserted, err := s.store.Insert(ctx, "alpha", "user-1")
	s.Require().NoError(err)
	s.True(inserted)

	inserted, err = s.store.Insert(ctx, "alpha", "user-1")
	s.Require().NoError(err)
	s.False(inserted)

	count, err := s.store.CountInGroup(ctx, "alpha")
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *InMemoryStoreSuite) TestGroupsAreIsolated() {
	ctx := context.Background()

	_, err := s.store.Insert(ctx, "alpha", "user-1")
	s.Require().NoError(err)

	inserted, err := s.store.Insert(ctx, "beta", "user-1")
	s.Require().NoError(err)
	s.True(inserted, "same identifier in another group is a distinct record")

	count, err := s.store.CountInGroup(ctx, "beta")
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *InMemoryStoreSuite) TestListMembers() {
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		_, err := s.store.Insert(ctx, "alpha", id)
		s.Require().NoError(err)
	}

	members, err := s.store.ListMembers(ctx, "alpha")
	s.Require().NoError(err)
	s.Equal([]string{"a", "b", "c"}, members)

	members, err = s.store.ListMembers(ctx, "empty")
	s.Require().NoError(err)
	s.Empty(members)
}

func (s *InMemoryStoreSuite) TestConcurrentInsertsKeepUniqueness() {
	ctx := context.Background()
	const workers = 16

	var wg sync.WaitGroup
	insertions := make([]bool, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			inserted, err := s.store.Insert(ctx, "alpha", "contended")
			s.NoError(err)
			insertions[i] = inserted
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, inserted := range insertions {
		if inserted {
			wins++
		}
	}
	s.Equal(1, wins, "exactly one insert may report inserted=true")

	count, err := s.store.CountInGroup(ctx, "alpha")
	s.Require().NoError(err)
	s.Equal(1, count)
}

func (s *InMemoryStoreSuite) TestEarliestOf() {
	ctx := context.Background()

	for _, id := range []string{"oldest", "middle", "newest"} {
		_, err := s.store.Insert(ctx, "alpha", id)
		s.Require().NoError(err)
	}

	earliest, err := s.store.EarliestOf(ctx, []string{"newest", "oldest", "middle"})
	s.Require().NoError(err)
	s.Equal("oldest", earliest)
}

func (s *InMemoryStoreSuite) TestEarliestOfUnknownIdentifiers() {
	ctx := context.Background()

	_, err := s.store.EarliestOf(ctx, []string{"ghost"})
	s.Require().Error(err)

	_, err = s.store.EarliestOf(ctx, nil)
	s.Require().Error(err)
}

func (s *InMemoryStoreSuite) TestListRecords() {
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.store.Insert(ctx, "alpha", fmt.Sprintf("user-%d", i))
		s.Require().NoError(err)
	}

	records, err := s.store.ListRecords(ctx, "alpha")
	s.Require().NoError(err)
	s.Len(records, 3)
	for _, record := range records {
		s.Equal("alpha", record.Group)
		s.False(record.EnrolledAt.IsZero())
	}
}
