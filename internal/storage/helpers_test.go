package storage

import (
	"fmt"
	"strconv"
)

func itoa(n int) string {
	return strconv.Itoa(n)
}

func wrapPID(pid int) error {
	return fmt.Errorf("%w: PID %d", ErrLockAlreadyHeld, pid)
}

// seqRand returns the queued values in order, modulo n.
type seqRand struct {
	values []int
	calls  int
}

func (r *seqRand) IntN(n int) int {
	v := r.values[r.calls%len(r.values)]
	r.calls++
	return v % n
}
