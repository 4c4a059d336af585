package gosched

// runQueue is a strict FIFO of RUNNABLE tasks. It never holds a task twice:
// a task only ever sits in one place at a time — the run queue, a channel's
// wait queue, or "currently running" — and callers are responsible for
// that invariant (enforced structurally by only ever moving a task between
// those places, never copying it into two).
type runQueue struct {
	tasks []*Task
}

func (q *runQueue) enqueue(t *Task) {
	q.tasks = append(q.tasks, t)
}

func (q *runQueue) dequeue() *Task {
	if len(q.tasks) == 0 {
		return nil
	}
	t := q.tasks[0]
	q.tasks = q.tasks[1:]
	return t
}

func (q *runQueue) len() int { return len(q.tasks) }

// runOnce resumes t, blocks until it next suspends, and handles the
// resulting signal. Only ever called from the single logical flow driving
// Run() — never concurrently with itself.
func (rt *Runtime) runOnce(t *Task) {
	prev := rt.current
	rt.current = t
	t.state = TaskRunning

	t.resume <- struct{}{}
	sig := <-t.suspend

	rt.current = prev

	switch sig {
	case sigYield:
		rt.queue.enqueue(t)
	case sigPark:
		// t recorded its own park reason and parked itself (Park); it
		// stays off the run queue until some Unpark call re-enqueues it.
	case sigDone:
		if t.err != nil {
			rt.logger.Warn("task finished with error", taskField(t), errField(t.err))
		} else {
			rt.logger.Debug("task finished", taskField(t))
		}
	}
}

// requireCurrent returns the task driving the calling goroutine, panicking
// with SchedulerMisuseError if there isn't one — i.e. op was called other
// than from within a task the scheduler itself resumed.
func (rt *Runtime) requireCurrent(op string) *Task {
	if rt.current == nil {
		panic(&SchedulerMisuseError{Op: op})
	}
	return rt.current
}

// YieldNow moves the calling task from RUNNING to RUNNABLE, appends it to
// the run queue tail, and switches to the head of the run queue. It
// returns once the scheduler resumes this task again — after every task
// already runnable at the time of the yield has had its turn.
func (rt *Runtime) YieldNow() {
	t := rt.requireCurrent("YieldNow")
	t.state = TaskRunnable
	t.suspend <- sigYield
	<-t.resume
}

// Park suspends the calling task, recording reason for diagnostics. It
// returns only once some other party calls Unpark on this task.
func (rt *Runtime) Park(reason string) {
	t := rt.requireCurrent("Park")
	t.state = TaskParked
	t.parkReason = reason
	t.suspend <- sigPark
	<-t.resume
}

// Unpark makes a parked task runnable again, delivering value through its
// result slot. Safe to call from the currently running task (e.g. a
// sender unparking a waiting receiver) or from the scheduler's own
// bridge-drain step — never from a second, concurrently active task,
// because the cooperative model guarantees there isn't one.
func (rt *Runtime) Unpark(t *Task, value any) {
	if t.state != TaskParked {
		return
	}
	t.resultSlot = value
	t.parkReason = ""
	t.state = TaskRunnable
	rt.queue.enqueue(t)
}
