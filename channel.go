package gosched

// sendWaiter is a parked sender: the value it's offering, waiting to be
// claimed by a receiver.
type sendWaiter struct {
	task  *Task
	value any
}

// sendWake is what a parked sender's result slot holds on resume.
type sendWake struct {
	closed bool
}

// recvWake is what a parked receiver's result slot holds on resume.
type recvWake struct {
	value  any
	closed bool
}

// Channel is an unbuffered rendezvous point: a send only completes once a
// receiver claims the value (directly, if one is already waiting, or
// later, once one parks). sendQ and recvQ are never both non-empty at
// once — whenever a send and a receive are both pending, the head of
// whichever queue is non-empty immediately satisfies the other side, so
// the two queues can never both be populated simultaneously.
type Channel struct {
	rt *Runtime

	sendQ []*sendWaiter
	recvQ []*Task

	closed bool
}

// MakeChannel creates a new unbuffered channel on rt.
func (rt *Runtime) MakeChannel() *Channel {
	return &Channel{rt: rt}
}

// Send blocks until some task receives value (or the channel is closed
// out from under a parked send). Returns ErrChannelClosed if the channel
// is already closed, or was closed while this send was parked.
func (c *Channel) Send(value any) error {
	t := c.rt.requireCurrent("Channel.Send")

	if c.closed {
		return ErrChannelClosed
	}

	if len(c.recvQ) > 0 {
		r := c.recvQ[0]
		c.recvQ = c.recvQ[1:]
		c.rt.Unpark(r, recvWake{value: value})
		return nil
	}

	c.sendQ = append(c.sendQ, &sendWaiter{task: t, value: value})
	c.rt.Park("chan-send")

	wake, _ := t.resultSlot.(sendWake)
	t.resultSlot = nil
	if wake.closed {
		return ErrChannelClosed
	}
	return nil
}

// Recv blocks until some task sends a value, or the channel is closed —
// in which case it returns the zero value and ok=false, mirroring a plain
// Go `v, ok := <-ch` on a closed channel.
func (c *Channel) Recv() (value any, ok bool) {
	t := c.rt.requireCurrent("Channel.Recv")

	if len(c.sendQ) > 0 {
		s := c.sendQ[0]
		c.sendQ = c.sendQ[1:]
		c.rt.Unpark(s.task, sendWake{})
		return s.value, true
	}

	if c.closed {
		return nil, false
	}

	c.recvQ = append(c.recvQ, t)
	c.rt.Park("chan-recv")

	wake, _ := t.resultSlot.(recvWake)
	t.resultSlot = nil
	if wake.closed {
		return nil, false
	}
	return wake.value, true
}

// Close marks the channel closed. Every parked receiver wakes with
// ok=false; every parked sender wakes with ErrChannelClosed. A second
// Close fails with ErrChannelClosed — close is idempotent-forbidden, not
// idempotent.
func (c *Channel) Close() error {
	c.rt.requireCurrent("Channel.Close")

	if c.closed {
		return ErrChannelClosed
	}
	c.closed = true

	for _, r := range c.recvQ {
		c.rt.Unpark(r, recvWake{closed: true})
	}
	c.recvQ = nil

	for _, s := range c.sendQ {
		c.rt.Unpark(s.task, sendWake{closed: true})
	}
	c.sendQ = nil

	return nil
}
