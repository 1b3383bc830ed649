package services

import (
	"sync"
)

// doctorLocks hands out one mutex per doctor so every read-modify-write of
// a doctor's token set is a critical section scoped to that doctor.
// Operations on different doctors proceed in parallel.
type doctorLocks struct {
	locks sync.Map // doctor ID -> *sync.Mutex
}

// lock acquires the mutex for doctorID and returns its unlock function
func (l *doctorLocks) lock(doctorID string) func() {
	v, _ := l.locks.LoadOrStore(doctorID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
