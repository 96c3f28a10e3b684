package memory

import (
	"fmt"
	"time"
)

// LockTimeoutError reports that a save could not acquire the user's lock
// within the configured timeout.
type LockTimeoutError struct {
	UserID  string
	Timeout time.Duration
}

func (e *LockTimeoutError) Error() string {
	return fmt.Sprintf("memory lock for user %s not acquired within %s", e.UserID, e.Timeout)
}

// ErrorCode implements the error code contract for stream error events.
func (e *LockTimeoutError) ErrorCode() string { return "LOCK_TIMEOUT" }

// StoreError wraps a persistence failure. It is always non-fatal for the
// query that triggered the save.
type StoreError struct {
	UserID string
	Op     string
	Err    error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("memory store %s failed for user %s: %v", e.Op, e.UserID, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// ErrorCode implements the error code contract for stream error events.
func (e *StoreError) ErrorCode() string { return "MEMORY_STORE_ERROR" }
