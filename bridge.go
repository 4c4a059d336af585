package gosched

import (
	"sync"

	"go.uber.org/zap"
)

// DefaultBridgeCap is the worker pool size used when a Runtime isn't given
// an explicit WithBridgeCap option.
const DefaultBridgeCap = 64

// SyscallFunc is a blocking callable handed to EnterSyscall. It is run on
// a bridge worker goroutine, off the scheduler's single logical thread, so
// that a slow or blocking call never stalls other tasks.
type SyscallFunc func() (any, error)

type syscallRequest struct {
	fn     SyscallFunc
	task   *Task
	result any
	err    error
}

// bridgeResult is the wrapper stored in a task's result slot when it
// resumes after EnterSyscall, keeping the delivered value distinguishable
// from a legitimate nil/zero syscall result.
type bridgeResult struct {
	value any
	err   error
}

// SyscallBridge is a bounded pool of worker goroutines plus a completion
// queue, letting a cooperative task delegate a blocking call to a real OS
// thread without stalling the scheduler. Workers are grown on demand up to
// cap and then live for the process's lifetime; requests beyond the
// currently-running worker count simply wait in pending.
//
// The pending and completed queues are the two places work crosses from
// the scheduler's single logical thread to worker goroutines and back, so
// both are protected by a mutex (pending additionally uses a condition
// variable to let idle workers block instead of spin).
type SyscallBridge struct {
	logger *zap.Logger

	mu          sync.Mutex
	notEmpty    *sync.Cond
	pending     []*syscallRequest
	completed   []*syscallRequest
	numWorkers  int
	capWorkers  int
	outstanding int

	wake chan struct{} // buffered(1) doorbell: non-blocking from workers
}

// NewSyscallBridge creates a bridge with the given worker cap. cap <= 0
// falls back to DefaultBridgeCap.
func NewSyscallBridge(cap int, logger *zap.Logger) *SyscallBridge {
	if cap <= 0 {
		cap = DefaultBridgeCap
	}
	if logger == nil {
		logger = noopLogger()
	}
	b := &SyscallBridge{
		logger:     logger,
		capWorkers: cap,
		wake:       make(chan struct{}, 1),
	}
	b.notEmpty = sync.NewCond(&b.mu)
	return b
}

// submit hands a request to the bridge. It never blocks the caller: if
// every worker is busy and the pool is at cap, the request simply waits in
// pending for the next worker to free up.
func (b *SyscallBridge) submit(req *syscallRequest) {
	b.mu.Lock()
	b.outstanding++
	b.pending = append(b.pending, req)
	spawn := b.numWorkers < b.capWorkers
	if spawn {
		b.numWorkers++
	}
	b.notEmpty.Signal()
	b.mu.Unlock()

	if spawn {
		b.logger.Debug("syscall bridge: spawning worker", zap.Int("worker_count", b.numWorkers))
		go b.workerLoop()
	}
}

// workerLoop runs for the process's lifetime, draining pending requests
// and publishing each completion.
func (b *SyscallBridge) workerLoop() {
	for {
		b.mu.Lock()
		for len(b.pending) == 0 {
			b.notEmpty.Wait()
		}
		req := b.pending[0]
		b.pending = b.pending[1:]
		b.mu.Unlock()

		req.result, req.err = b.invoke(req.fn)

		b.mu.Lock()
		b.completed = append(b.completed, req)
		b.mu.Unlock()

		select {
		case b.wake <- struct{}{}:
		default:
		}
	}
}

// invoke runs fn, converting a panic into a BridgeError-shaped error in
// the same way a worker thread's raised exception would re-surface in the
// requesting task.
func (b *SyscallBridge) invoke(fn SyscallFunc) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = normalizePanic(r)
		}
	}()
	return fn()
}

// drainCompleted returns and clears all requests finished since the last
// drain. Called only from the scheduler's own thread, between task steps.
func (b *SyscallBridge) drainCompleted() []*syscallRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.completed) == 0 {
		return nil
	}
	out := b.completed
	b.completed = nil
	b.outstanding -= len(out)
	return out
}

// hasOutstanding reports whether any request is pending, in flight, or
// completed-but-not-yet-drained.
func (b *SyscallBridge) hasOutstanding() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.outstanding > 0
}

// waitForCompletion blocks until at least one request finishes. Used by
// the scheduler loop only when the run queue is empty but bridge work is
// still outstanding.
func (b *SyscallBridge) waitForCompletion() {
	<-b.wake
}

// NumWorkers returns the number of worker goroutines spawned so far
// (diagnostic only).
func (b *SyscallBridge) NumWorkers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.numWorkers
}
