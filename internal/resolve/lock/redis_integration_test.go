//go:build integration

package lock_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"facesign/internal/resolve/lock"
	"facesign/pkg/testutil/containers"
)

type RedisLockSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	lock  *lock.Redis
}

func TestRedisLockSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisLockSuite))
}

func (s *RedisLockSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.lock = lock.NewRedis(s.redis.Client)
}

func (s *RedisLockSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisLockSuite) TestAcquireAndRelease() {
	ctx := context.Background()

	release, err := s.lock.Acquire(ctx, "facesign-users")
	s.Require().NoError(err)
	release()

	release, err = s.lock.Acquire(ctx, "facesign-users")
	s.Require().NoError(err)
	release()
}

func (s *RedisLockSuite) TestSecondAcquireWaitsForRelease() {
	ctx := context.Background()

	release, err := s.lock.Acquire(ctx, "facesign-users")
	s.Require().NoError(err)

	acquired := make(chan struct{})
	go func() {
		r, err := s.lock.Acquire(ctx, "facesign-users")
		s.Require().NoError(err)
		r()
		close(acquired)
	}()

	select {
	case <-acquired:
		s.Fail("second acquire succeeded while the lock was held")
	case <-time.After(200 * time.Millisecond):
	}

	release()

	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		s.Fail("second acquire never completed after release")
	}
}

func (s *RedisLockSuite) TestAcquireHonoursContextCancellation() {
	ctx := context.Background()

	release, err := s.lock.Acquire(ctx, "facesign-users")
	s.Require().NoError(err)
	defer release()

	waitCtx, cancel := context.WithTimeout(ctx, 150*time.Millisecond)
	defer cancel()

	_, err = s.lock.Acquire(waitCtx, "facesign-users")
	s.Require().Error(err)
	s.ErrorIs(err, context.DeadlineExceeded)
}

func (s *RedisLockSuite) TestGroupsAreIndependent() {
	ctx := context.Background()

	releaseA, err := s.lock.Acquire(ctx, "group-a")
	s.Require().NoError(err)
	defer releaseA()

	acquireCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	releaseB, err := s.lock.Acquire(acquireCtx, "group-b")
	s.Require().NoError(err)
	releaseB()
}

func (s *RedisLockSuite) TestMutualExclusionUnderContention() {
	ctx := context.Background()

	const workers = 8
	var inside, maxInside int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := s.lock.Acquire(ctx, "facesign-users")
			s.Require().NoError(err)
			defer release()

			mu.Lock()
			inside++
			if inside > maxInside {
				maxInside = inside
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	s.Equal(1, maxInside, "at most one holder per group at a time")
}
