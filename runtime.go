package gosched

import "go.uber.org/zap"

// Runtime owns one scheduler's worth of state: its run queue, the task
// currently executing, its syscall bridge, and the main task registered
// via MainTask. It is not a package-wide singleton — nothing here is
// stored in a global beyond the convenience wrappers at the bottom of this
// file, so embedding code can run multiple independent runtimes in one
// process.
//
// Runtime's methods are not safe for concurrent use by multiple OS
// threads: by design, exactly one logical flow touches a Runtime's
// scheduler state at a time — either the goroutine driving Run(), or
// whichever task it has currently resumed — so none of that state needs
// its own lock (see SyscallBridge for the one place real
// cross-thread synchronization is required).
type Runtime struct {
	logger *zap.Logger
	bridge *SyscallBridge

	queue   runQueue
	current *Task
	nextID  int64
	mainFn  func()
}

// Option configures a Runtime constructed via NewRuntime.
type Option func(*runtimeConfig)

type runtimeConfig struct {
	logger    *zap.Logger
	bridgeCap int
}

// WithLogger injects a *zap.Logger for task lifecycle and error logging.
// Omitting this leaves logging a no-op.
func WithLogger(l *zap.Logger) Option {
	return func(c *runtimeConfig) { c.logger = l }
}

// WithBridgeCap sets the SyscallBridge's worker pool cap. Omitting this
// uses DefaultBridgeCap.
func WithBridgeCap(n int) Option {
	return func(c *runtimeConfig) { c.bridgeCap = n }
}

// NewRuntime constructs an independent Runtime.
func NewRuntime(opts ...Option) *Runtime {
	cfg := runtimeConfig{logger: noopLogger(), bridgeCap: DefaultBridgeCap}
	for _, opt := range opts {
		opt(&cfg)
	}

	rt := &Runtime{logger: cfg.logger}
	rt.bridge = NewSyscallBridge(cfg.bridgeCap, cfg.logger)
	return rt
}

// Go creates a Task running fn, appends it to the run queue tail, and
// returns its handle. It never runs fn inline — fn only executes once the
// scheduler resumes this task from within Run().
func (rt *Runtime) Go(fn func()) *Task {
	id := rt.nextID
	rt.nextID++

	t := newTask(id, rt, fn)
	t.start()
	rt.queue.enqueue(t)

	rt.logger.Debug("spawned task", taskField(t))
	return t
}

// MainTask registers fn as the runtime's main task: a Go call deferred
// until the next Run(). Calling MainTask again before that Run()
// replaces the previous registration — last call wins, matching the
// Python original's behavior when a decorator-wrapped function is
// reassigned before the kernel starts (see DESIGN.md).
func (rt *Runtime) MainTask(fn func()) {
	rt.mainFn = fn
}

// EnterSyscall hands fn to the SyscallBridge's worker pool and parks the
// calling task until a worker finishes it, returning fn's result or a
// *BridgeError wrapping whatever fn returned/panicked with.
func (rt *Runtime) EnterSyscall(fn SyscallFunc) (any, error) {
	t := rt.requireCurrent("EnterSyscall")

	rt.bridge.submit(&syscallRequest{fn: fn, task: t})
	rt.Park("syscall")

	res, _ := t.resultSlot.(bridgeResult)
	t.resultSlot = nil
	if res.err != nil {
		return nil, &BridgeError{Err: res.err}
	}
	return res.value, nil
}

// drainBridge unparks every task whose syscall has completed since the
// last drain. Called once per Run() loop iteration, before picking the
// next runnable task.
func (rt *Runtime) drainBridge() {
	for _, req := range rt.bridge.drainCompleted() {
		if req.err != nil {
			rt.logger.Warn("syscall failed", taskField(req.task), errField(req.err))
		}
		rt.Unpark(req.task, bridgeResult{value: req.result, err: req.err})
	}
}

// Run pumps the scheduler until quiescent: the run queue is empty and no
// bridge request is outstanding. If a main task was registered via
// MainTask, it is spawned first, before the loop starts.
func (rt *Runtime) Run() {
	if rt.mainFn != nil {
		fn := rt.mainFn
		rt.mainFn = nil
		rt.Go(fn)
	}

	for {
		rt.drainBridge()

		t := rt.queue.dequeue()
		if t == nil {
			if !rt.bridge.hasOutstanding() {
				return
			}
			rt.bridge.waitForCompletion()
			continue
		}

		rt.runOnce(t)
	}
}

// --- package-level convenience surface, backed by a default Runtime ---
//
// This mirrors the flat `go`/`yield_now`/`run` functions of the source
// system for callers that only ever need one runtime per process. Anyone
// running more than one concurrently scoped scheduler should construct
// their own Runtime instances instead.

var defaultRuntime = NewRuntime()

// Go spawns fn on the default Runtime. See Runtime.Go.
func Go(fn func()) *Task { return defaultRuntime.Go(fn) }

// YieldNow yields the calling task on the default Runtime. See Runtime.YieldNow.
func YieldNow() { defaultRuntime.YieldNow() }

// EnterSyscall runs fn on the default Runtime's bridge. See Runtime.EnterSyscall.
func EnterSyscall(fn SyscallFunc) (any, error) { return defaultRuntime.EnterSyscall(fn) }

// MakeChannel creates a channel on the default Runtime. See Runtime.MakeChannel.
func MakeChannel() *Channel { return defaultRuntime.MakeChannel() }

// MainTask registers fn as the default Runtime's main task. See Runtime.MainTask.
func MainTask(fn func()) { defaultRuntime.MainTask(fn) }

// Run pumps the default Runtime. See Runtime.Run.
func Run() { defaultRuntime.Run() }
