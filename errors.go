package gosched

import (
	"errors"
	"fmt"
)

// ErrChannelClosed is returned by Channel.Send on a closed channel, and
// delivered to a sender that was parked when the channel was closed out
// from under it.
var ErrChannelClosed = errors.New("gosched: send on closed channel")

// SchedulerMisuseError is raised (as a panic, not a returned error) when
// YieldNow, a Channel operation, or EnterSyscall is invoked without a
// currently running task — i.e. from outside any goroutine the scheduler
// itself resumed. This mirrors the real Go runtime's treatment of similar
// misuse (e.g. closing an already-closed channel): a programmer error, not
// a condition callers are expected to branch on.
type SchedulerMisuseError struct {
	Op string
}

func (e *SchedulerMisuseError) Error() string {
	return fmt.Sprintf("gosched: %s called outside a running task", e.Op)
}

// TaskFailure records a task entry function's panic. It is captured on the
// Task handle rather than propagated into the scheduler, and is inspectable
// via Task.Err after the task reaches TaskDead.
type TaskFailure struct {
	TaskID int64
	Err    error
}

func (e *TaskFailure) Error() string {
	return fmt.Sprintf("gosched: task %d failed: %v", e.TaskID, e.Err)
}

func (e *TaskFailure) Unwrap() error { return e.Err }

// BridgeError wraps the error returned (or panic recovered) by a callable
// run on a SyscallBridge worker, re-raised in the requesting task's
// EnterSyscall call.
type BridgeError struct {
	Err error
}

func (e *BridgeError) Error() string {
	return fmt.Sprintf("gosched: syscall bridge: %v", e.Err)
}

func (e *BridgeError) Unwrap() error { return e.Err }

// normalizePanic turns a recovered panic value into an error, preserving it
// as-is when it already is one.
func normalizePanic(v any) error {
	if v == nil {
		return nil
	}
	if err, ok := v.(error); ok {
		return err
	}
	return fmt.Errorf("%v", v)
}
