package record

import (
	"strings"

	"github.com/simlab-dev/desmat/sim"
)

// EventTraceEntry is one row of the event trace: one event fired by the
// scheduler, with the processes it resumed.
type EventTraceEntry struct {
	EventID   string
	Kind      string
	Time      float64
	Seq       uint64
	Processes string
}

// EventTraceTable is the table trace entries are recorded into.
const EventTraceTable = "event_trace"

// A TraceHook records every event the scheduler fires into a DataRecorder.
// Attach it to a Scheduler with AcceptHook.
type TraceHook struct {
	recorder DataRecorder
}

// NewTraceHook creates a TraceHook writing into the given recorder.
func NewTraceHook(recorder DataRecorder) *TraceHook {
	recorder.CreateTable(EventTraceTable, EventTraceEntry{})
	return &TraceHook{recorder: recorder}
}

// Func records the event at the before-event position.
func (h *TraceHook) Func(ctx sim.HookCtx) {
	if ctx.Pos != sim.HookPosBeforeEvent {
		return
	}

	evt, ok := ctx.Item.(*sim.Event)
	if !ok {
		return
	}

	h.recorder.InsertData(EventTraceTable, EventTraceEntry{
		EventID:   evt.ID(),
		Kind:      evt.Kind(),
		Time:      float64(evt.Time()),
		Seq:       evt.Seq(),
		Processes: strings.Join(evt.Targets(), ","),
	})
}
