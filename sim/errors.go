package sim

import (
	"errors"
	"fmt"
)

// Validation errors are caller-correctable and are detected eagerly where
// possible. They propagate uncaught out of Start and Simulate; the kernel
// never retries internally because the queue and the clock are not safely
// resumable after a violation.
var (
	// ErrNegativeDelay reports a negative delay passed to Start.
	ErrNegativeDelay = errors.New("negative delay")

	// ErrStartInPast reports a start time earlier than the current clock.
	ErrStartInPast = errors.New("start time in the past")

	// ErrNegativeHold reports a hold with a negative delta. It is raised
	// when the simulation drives the hold, not when the hold is built.
	ErrNegativeHold = errors.New("negative hold")

	// ErrUntilInPast reports a simulation bound earlier than the clock.
	ErrUntilInPast = errors.New("until in the past")

	// ErrNotAProcess reports that the value passed to Start is not a
	// recognized resumable computation.
	ErrNotAProcess = errors.New("not a resumable computation")

	// ErrIllegalYield reports a suspension request that is neither an Event
	// nor a Process.
	ErrIllegalYield = errors.New("illegal yield")

	// ErrEmptyYield reports a suspension with no request at all.
	ErrEmptyYield = errors.New("process suspended with no request")

	// ErrNotAlive reports an interrupt aimed at a terminated process.
	ErrNotAlive = errors.New("process is not alive")
)

// A ProtocolError reports a logic defect in process code, such as building a
// hold without suspending on it. Protocol errors are always fatal to the
// simulation.
type ProtocolError struct {
	Process string
	Reason  string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol violation in %s: %s", e.Process, e.Reason)
}

// An Interrupt is the failure delivered to a process that is resumed early
// by Context.Interrupt, in place of the value it was waiting for. It is
// handed to the target as data: the target may inspect it with errors.As and
// keep running. This is the single recoverable failure path in the kernel.
type Interrupt struct {
	// By is the process that issued the interrupt.
	By *Process
}

func (i *Interrupt) Error() string {
	if i.By == nil {
		return "interrupted"
	}
	return "interrupted by " + i.By.Name()
}
