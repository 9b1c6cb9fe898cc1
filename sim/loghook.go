package sim

import (
	"log"
)

// A LogHook is a hook that records what the scheduler does, for a human or
// a trace store rather than for control flow.
type LogHook interface {
	Hook
}

// LogHookBase carries the destination logger shared by LogHook
// implementations.
type LogHookBase struct {
	*log.Logger
}
