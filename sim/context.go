package sim

// A Context is the per-process view of the simulation. It exposes the
// current clock and the suspension-request constructors; it holds no state
// of its own beyond hold bookkeeping. Process code never touches the
// scheduler or the event queue directly, which is what makes the kernel
// race-free by construction: nothing executes concurrently with the
// drive loop.
type Context struct {
	scheduler *Scheduler
	proc      *Process

	// pendingHold is the most recently built hold that has not been
	// suspended on yet. Building a second hold while one is pending is a
	// protocol violation, caught on the next resume attempt.
	pendingHold   *Event
	holdViolation bool
}

// Now returns the current simulated time.
func (c *Context) Now() VTime {
	return c.scheduler.readNow()
}

// Process returns the process this context is bound to.
func (c *Context) Process() *Process {
	return c.proc
}

// Hold builds a timed suspension request: an event scheduled delta after the
// current time. Building the event has no scheduling effect; the process
// must suspend on it with Wait. A negative delta only fails once the
// simulation actually drives the hold.
func (c *Context) Hold(delta VTime) *Event {
	return c.HoldWithValue(delta, nil)
}

// HoldWithValue is Hold with a value that is carried back into the
// suspending process when it resumes.
func (c *Context) HoldWithValue(delta VTime, value any) *Event {
	ev := c.scheduler.newEvent("hold", c.scheduler.readNow()+delta)
	ev.value = value
	ev.isHold = true
	ev.holdDelta = delta

	if c.pendingHold != nil {
		c.holdViolation = true
	}
	c.pendingHold = ev

	return ev
}

// Wait suspends the calling process on the given request until the
// scheduler resumes it, returning the value or failure the resumption
// carries. The request must be an *Event, typically built by Hold, or a
// *Process to wait on that process's termination. Anything else fails the
// simulation with a validation error.
func (c *Context) Wait(request any) (any, error) {
	return c.proc.suspend(request)
}

// Interrupt schedules an out-of-band resumption of the target process at
// the current time, delivering an *Interrupt failure instead of the value
// the target was waiting for. The target may treat the failure as data and
// keep running. Interrupting a process that is no longer alive is a
// validation error.
func (c *Context) Interrupt(target *Process) error {
	if target == nil || !target.IsAlive() {
		return ErrNotAlive
	}

	ev := c.scheduler.newEvent("interrupt", c.scheduler.readNow())
	ev.err = &Interrupt{By: c.proc}
	ev.Register(target)
	c.scheduler.push(ev)

	return nil
}

// Start launches another process from inside a running one. It accepts the
// same forms and options as Scheduler.Start.
func (c *Context) Start(pem any, opts ...StartOption) (*Process, error) {
	return c.scheduler.Start(pem, opts...)
}
