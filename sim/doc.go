// Package sim implements a discrete-event simulation kernel. A Scheduler
// advances an abstract simulated clock by firing events in (time, sequence)
// order and resuming the processes registered on them. Processes are
// cooperative resumable computations: they suspend by producing a timed hold
// or a reference to another process, and resume carrying a value or failure
// back into their logic. Execution is deterministic for a fixed program,
// which makes simulation output reproducible byte for byte.
package sim
