// Package simulation assembles the pieces of a simulation: the scheduler,
// the optional trace recorder, and the optional monitoring server.
package simulation

import (
	"github.com/simlab-dev/desmat/monitoring"
	"github.com/simlab-dev/desmat/record"
	"github.com/simlab-dev/desmat/sim"
)

// A Simulation provides the services required to define and run a
// simulation.
type Simulation struct {
	id string

	scheduler    *sim.Scheduler
	dataRecorder record.DataRecorder
	monitor      *monitoring.Monitor
}

// ID returns the ID of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// GetScheduler returns the scheduler that drives the simulation.
func (s *Simulation) GetScheduler() *sim.Scheduler {
	return s.scheduler
}

// GetDataRecorder returns the data recorder used in the simulation, nil if
// tracing is off.
func (s *Simulation) GetDataRecorder() record.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor used in the simulation, nil if monitoring
// is off.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// Start launches a process, forwarding to the scheduler.
func (s *Simulation) Start(
	pem any,
	opts ...sim.StartOption,
) (*sim.Process, error) {
	return s.scheduler.Start(pem, opts...)
}

// Simulate drives the simulation up to the given time ceiling.
func (s *Simulation) Simulate(until sim.VTime) error {
	return s.scheduler.Simulate(until)
}

// SimulateAll drives the simulation until the event queue is exhausted.
func (s *Simulation) SimulateAll() error {
	return s.scheduler.SimulateAll()
}

// Terminate tears down the scheduler, releasing any process goroutines
// still parked on suspension points, and flushes the recorder. Call it when
// the simulation is done.
func (s *Simulation) Terminate() {
	s.scheduler.Teardown()

	if s.dataRecorder != nil {
		s.dataRecorder.Flush()
	}
}
