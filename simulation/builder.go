package simulation

import (
	"github.com/rs/xid"

	"github.com/simlab-dev/desmat/monitoring"
	"github.com/simlab-dev/desmat/record"
	"github.com/simlab-dev/desmat/sim"
)

// Builder can be used to build a simulation.
type Builder struct {
	traceOn        bool
	monitorOn      bool
	monitorPort    int
	outputFileName string
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithTracing records every fired event into a SQLite database.
func (b Builder) WithTracing() Builder {
	b.traceOn = true
	return b
}

// WithMonitoring serves the simulation state over HTTP.
func (b Builder) WithMonitoring() Builder {
	b.monitorOn = true
	return b
}

// WithOutputFileName sets the custom output file name for the trace
// database.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}
	if !b.traceOn && b.outputFileName != "" {
		panic("output file name cannot be set when tracing is disabled")
	}
}

// Build builds the simulation.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{
		id:        xid.New().String(),
		scheduler: sim.NewScheduler(),
	}

	if b.traceOn {
		outputPath := b.outputFileName
		if outputPath == "" {
			outputPath = "desmat_sim_" + s.id
		}

		recorder := record.NewRecorder(outputPath)
		s.dataRecorder = recorder
		s.scheduler.AcceptHook(record.NewTraceHook(recorder))
	}

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}
		s.monitor.RegisterScheduler(s.scheduler)
		s.monitor.StartServer()
	}

	return s
}
