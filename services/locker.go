package services

import (
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserLocker serializes mutations of one member's savings state. Concurrent
// requests for different members proceed in parallel; two mutations of the
// same member queue behind each other.
type UserLocker struct {
	mu    sync.Mutex
	locks map[primitive.ObjectID]*sync.Mutex
}

func NewUserLocker() *UserLocker {
	return &UserLocker{locks: make(map[primitive.ObjectID]*sync.Mutex)}
}

// Lock acquires the member's mutex, creating it on first use, and returns
// the unlock function. Locks are never evicted; the map grows with the
// number of members ever touched, which stays small for this service.
func (l *UserLocker) Lock(id primitive.ObjectID) func() {
	l.mu.Lock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
