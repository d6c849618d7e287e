package ctxsync

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type MutexTestSuite struct {
	suite.Suite
	mu *Mutex
}

func (s *MutexTestSuite) SetupTest() {
	s.mu = NewMutex()
}

func (s *MutexTestSuite) TestExclusive() {
	const workers = 100
	n := 0
	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			if err := s.mu.Lock(context.Background()); err != nil {
				return
			}
			defer s.mu.Unlock()
			n++
		}()
	}
	wg.Wait()
	s.Equal(workers, n)
}

func (s *MutexTestSuite) TestCanceledWhileWaiting() {
	s.Require().NoError(s.mu.Lock(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	s.ErrorIs(s.mu.Lock(ctx), context.DeadlineExceeded)

	s.mu.Unlock()
	s.True(s.mu.TryLock())
}

func (s *MutexTestSuite) TestAlreadyCanceled() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.ErrorIs(s.mu.Lock(ctx), context.Canceled)
	s.True(s.mu.TryLock())
}

func (s *MutexTestSuite) TestTryLock() {
	s.True(s.mu.TryLock())
	s.False(s.mu.TryLock())
	s.mu.Unlock()
	s.True(s.mu.TryLock())
}

func (s *MutexTestSuite) TestUnlockUnlocked() {
	s.PanicsWithValue("ctxsync: unlock of unlocked mutex", s.mu.Unlock)
}

func TestMutexTestSuite(t *testing.T) {
	suite.Run(t, new(MutexTestSuite))
}
