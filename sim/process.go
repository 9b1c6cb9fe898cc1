package sim

import "fmt"

// ProcessState is the life-cycle state of a process.
type ProcessState int

// The life-cycle states of a process. A process is alive until it enters
// StateTerminated or StateFailed.
const (
	// StateScheduled marks a process that is created but has not run yet.
	StateScheduled ProcessState = iota

	// StateActive marks the process currently executing. At most one
	// process is active at any instant.
	StateActive

	// StateSuspended marks a process parked on an event.
	StateSuspended

	// StateTerminated marks a process whose computation completed.
	StateTerminated

	// StateFailed marks a process whose computation ended with a failure.
	StateFailed
)

func (s ProcessState) String() string {
	switch s {
	case StateScheduled:
		return "Scheduled"
	case StateActive:
		return "Active"
	case StateSuspended:
		return "Suspended"
	case StateTerminated:
		return "Terminated"
	case StateFailed:
		return "Failed"
	}
	return "Unknown"
}

// ProcessFunc is the canonical form of a process-executing function. It runs
// as a resumable computation: every call to Context.Wait suspends it until
// the scheduler resumes it with the awaited value or failure. The returned
// value becomes the payload of the process's termination event; a returned
// error moves the process to StateFailed and is delivered as the
// termination failure.
type ProcessFunc func(ctx *Context, args ...any) (any, error)

// A Runner is the interface form of a resumable computation accepted by
// Start, for process logic that carries its own state.
type Runner interface {
	Run(ctx *Context, args ...any) (any, error)
}

// A Process is one simulated actor: a sequential computation multiplexed by
// the scheduler's event queue. Processes are created by Scheduler.Start and
// owned by the scheduler for life-cycle purposes; other code may hold
// references for IsAlive queries or interrupts.
type Process struct {
	id    string
	name  string
	state ProcessState

	fn   ProcessFunc
	args []any

	ctx       *Context
	scheduler *Scheduler

	// termination fires when the computation completes, carrying the final
	// value or failure to every process waiting on this one.
	termination *Event

	// waitingOn is the event whose delivery this process is parked on.
	// A resumption coming from any other event, an interrupt for example,
	// leaves a stale entry in the old event's resume list; delivery skips
	// entries whose waitingOn no longer matches.
	waitingOn *Event

	started bool
	resume  chan resumeSignal
	yield   chan yieldSignal
}

// resumeSignal carries a resumption from the scheduler into the process
// goroutine. kill tears the goroutine down without resuming the
// computation.
type resumeSignal struct {
	value any
	err   error
	kill  bool
}

// yieldSignal carries a suspension request, or the final result, from the
// process goroutine back to the scheduler.
type yieldSignal struct {
	request any

	done  bool
	value any
	err   error
}

// killSignal is panicked inside the process goroutine to unwind it when the
// simulation becomes non-resumable.
type killSignal struct{}

// ID returns the identifier assigned to the process at creation.
func (p *Process) ID() string {
	return p.id
}

// Name returns the process name, for logs and traces.
func (p *Process) Name() string {
	return p.name
}

// State returns the current life-cycle state.
func (p *Process) State() ProcessState {
	return p.state
}

// IsAlive returns true until the process's computation has fully completed,
// either by terminating or by failing.
func (p *Process) IsAlive() bool {
	return p.state != StateTerminated && p.state != StateFailed
}

// TerminationEvent returns the event that fires when the process completes.
func (p *Process) TerminationEvent() *Event {
	return p.termination
}

// run is the body of the process goroutine. It executes the computation to
// completion and reports the result to the scheduler. The goroutine only
// ever runs while the scheduler is blocked waiting on the yield channel, so
// kernel execution stays strictly non-preemptive.
func (p *Process) run() {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if _, isKill := r.(killSignal); isKill {
			return
		}
		p.yield <- yieldSignal{done: true, err: &panicError{p.name, r}}
	}()

	value, err := p.fn(p.ctx, p.args...)
	p.yield <- yieldSignal{done: true, value: value, err: err}
}

// suspend parks the computation on the scheduler until the next resumption.
// Called from inside the process goroutine, via Context.Wait.
func (p *Process) suspend(request any) (any, error) {
	p.yield <- yieldSignal{request: request}
	r := <-p.resume
	if r.kill {
		panic(killSignal{})
	}
	return r.value, r.err
}

// kill tears down the process goroutine after a fatal kernel error. The
// goroutine is parked in suspend, so the send below unblocks it into the
// killSignal panic.
func (p *Process) kill() {
	p.state = StateFailed
	if p.started {
		p.resume <- resumeSignal{kill: true}
	}
}

// panicError wraps a panic recovered from process code so it can be
// delivered as the process's failure.
type panicError struct {
	process string
	value   any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic in process %s: %v", e.process, e.value)
}
