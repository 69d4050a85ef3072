package service

import (
	"context"
	"sync"
)

type studentLock struct {
	sem  chan struct{}
	refs int
}

// studentLocks serialises plan evaluation per student. Entries are dropped
// once no caller holds or waits for them.
type studentLocks struct {
	mu    sync.Mutex
	locks map[string]*studentLock
}

func newStudentLocks() *studentLocks {
	return &studentLocks{locks: make(map[string]*studentLock)}
}

// acquire blocks until the student's lock is free or ctx is done.
func (l *studentLocks) acquire(ctx context.Context, studentID string) (func(), error) {
	l.mu.Lock()
	lock, ok := l.locks[studentID]
	if !ok {
		lock = &studentLock{sem: make(chan struct{}, 1)}
		l.locks[studentID] = lock
	}
	lock.refs++
	l.mu.Unlock()

	select {
	case lock.sem <- struct{}{}:
		return func() {
			<-lock.sem
			l.release(studentID, lock)
		}, nil
	case <-ctx.Done():
		l.release(studentID, lock)
		return nil, ctx.Err()
	}
}

func (l *studentLocks) release(studentID string, lock *studentLock) {
	l.mu.Lock()
	lock.refs--
	if lock.refs == 0 {
		delete(l.locks, studentID)
	}
	l.mu.Unlock()
}

func (l *studentLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
