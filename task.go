package gosched

// TaskState is one of the four states a Task moves through over its
// lifetime: RUNNABLE -> RUNNING -> (PARKED <-> RUNNABLE)* -> DEAD.
type TaskState int32

const (
	TaskRunnable TaskState = iota
	TaskRunning
	TaskParked
	TaskDead
)

func (s TaskState) String() string {
	switch s {
	case TaskRunnable:
		return "runnable"
	case TaskRunning:
		return "running"
	case TaskParked:
		return "parked"
	case TaskDead:
		return "dead"
	default:
		return "unknown"
	}
}

// taskSignal is what a task's goroutine sends back to the scheduler loop
// each time it reaches a suspension point.
type taskSignal int

const (
	sigYield taskSignal = iota
	sigPark
	sigDone
)

// Task is the unit of scheduling — a goroutine gated by a pair of
// unbuffered channels so that, at any instant, at most one Task's entry
// function is actually executing. The gate gives the task an arbitrary,
// stackful suspension point (any call depth), which is what lets YieldNow,
// Channel.Send/Recv, and EnterSyscall suspend the task from deep inside
// ordinary function calls rather than only at the top level.
type Task struct {
	id    int64
	rt    *Runtime
	entry func()

	state      TaskState
	parkReason string

	// resultSlot carries the value an unparking party hands back: one of
	// sendWake/recvWake/bridgeResult depending on what parked the task.
	resultSlot any
	err        error

	resume  chan struct{}  // scheduler -> task: proceed
	suspend chan taskSignal // task -> scheduler: I've suspended, here's why
}

func newTask(id int64, rt *Runtime, entry func()) *Task {
	return &Task{
		id:      id,
		rt:      rt,
		entry:   entry,
		state:   TaskRunnable,
		resume:  make(chan struct{}),
		suspend: make(chan taskSignal),
	}
}

// ID returns the task's monotonically increasing identifier. A debug aid
// only — never used for scheduling decisions.
func (t *Task) ID() int64 { return t.id }

// State returns the task's current lifecycle state.
func (t *Task) State() TaskState { return t.state }

// Err returns the captured TaskFailure if the task's entry function
// panicked, or nil if it returned normally (or hasn't finished yet).
func (t *Task) Err() error { return t.err }

// start launches the task's backing goroutine. It blocks immediately on
// resume, so the task does not begin executing its entry function until
// the scheduler explicitly resumes it for the first time — spawning never
// runs a task inline.
func (t *Task) start() {
	go func() {
		<-t.resume

		var panicVal any
		func() {
			defer func() { panicVal = recover() }()
			t.entry()
		}()

		if panicVal != nil {
			t.err = &TaskFailure{TaskID: t.id, Err: normalizePanic(panicVal)}
		}
		t.state = TaskDead
		t.suspend <- sigDone
	}()
}
