package lock_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"facesign/internal/resolve/lock"
)

func TestLocalSerializesSameGroup(t *testing.T) {
	l := lock.NewLocal()
	ctx := context.Background()

	const workers = 16
	var inside, maxInside int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(ctx, "facesign-users")
			require.NoError(t, err)
			defer release()

			mu.Lock()
			inside++
			if inside > maxInside {
				maxInside = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Equal(t, 1, maxInside, "at most one holder per group at a time")
}

func TestLocalGroupsAreIndependent(t *testing.T) {
	l := lock.NewLocal()
	ctx := context.Background()

	releaseA, err := l.Acquire(ctx, "group-a")
	require.NoError(t, err)
	defer releaseA()

	// A held lock on one group must not block another group.
	done := make(chan struct{})
	go func() {
		releaseB, err := l.Acquire(ctx, "group-b")
		require.NoError(t, err)
		releaseB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("acquire on independent group blocked")
	}
}

func TestLocalReleaseAllowsReacquire(t *testing.T) {
	l := lock.NewLocal()
	ctx := context.Background()

	release, err := l.Acquire(ctx, "facesign-users")
	require.NoError(t, err)
	release()

	release, err = l.Acquire(ctx, "facesign-users")
	require.NoError(t, err)
	release()
}
