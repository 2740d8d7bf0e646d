package machine

import (
	"log"
)

// A LogHook is a hook that is responsible for recording information from the
// running machine.
type LogHook interface {
	Hook
}

// LogHookBase provides the common logic for all LogHooks
type LogHookBase struct {
	*log.Logger
}

// TransitionLogger is a hook that prints state changes and fired commands.
type TransitionLogger struct {
	LogHookBase
}

// NewTransitionLogger returns a TransitionLogger which will write into the
// logger.
func NewTransitionLogger(logger *log.Logger) *TransitionLogger {
	h := new(TransitionLogger)
	h.Logger = logger
	return h
}

// Func writes the state change or command information into the logger.
func (h *TransitionLogger) Func(ctx HookCtx) {
	switch ctx.Pos {
	case HookPosTransition:
		info := ctx.Item.(TransitionInfo)
		h.Printf("[%s] Transitioned to state: %d", info.At, info.To.ID)
	case HookPosAbort:
		info := ctx.Item.(TransitionInfo)
		h.Printf("[%s] Aborted to state: %d", info.At, info.To.ID)
	case HookPosCommand:
		info := ctx.Item.(CommandInfo)
		h.Printf("[%s] %s was set in state %d",
			info.At, info.Command.Value, info.State.ID)
	}
}
