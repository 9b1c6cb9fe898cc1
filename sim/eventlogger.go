package sim

import (
	"log"
	"strings"
)

// EventLogger is a hook that prints every event the scheduler fires.
type EventLogger struct {
	LogHookBase
}

// NewEventLogger returns a new EventLogger which will write into the
// logger.
func NewEventLogger(logger *log.Logger) *EventLogger {
	h := new(EventLogger)
	h.Logger = logger
	return h
}

// Func writes the event information into the logger.
func (h *EventLogger) Func(ctx HookCtx) {
	if ctx.Pos != HookPosBeforeEvent {
		return
	}

	evt, ok := ctx.Item.(*Event)
	if !ok {
		return
	}

	targets := evt.Targets()
	if len(targets) == 0 {
		h.Logger.Printf("%.10f, %s", evt.Time(), evt.Kind())
		return
	}

	h.Logger.Printf("%.10f, %s -> %s",
		evt.Time(), evt.Kind(), strings.Join(targets, ", "))
}
