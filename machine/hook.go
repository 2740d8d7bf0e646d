package machine

// HookPos defines the enum of possible hooking positions
type HookPos struct {
	Name string
}

// HookPosCommand is a hook position that triggers when a command fires.
var HookPosCommand = &HookPos{Name: "Command"}

// HookPosTransition is a hook position that triggers on a normal phase
// advance.
var HookPosTransition = &HookPos{Name: "Transition"}

// HookPosAbort is a hook position that triggers on a safety-fallback
// transition.
var HookPosAbort = &HookPos{Name: "Abort"}

// HookCtx is the context that holds all the information about the site that a
// hook is triggered
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   interface{}
	Detail interface{}
}

// Hookable defines an object that accept Hooks
type Hookable interface {
	// AcceptHook registers a hook
	AcceptHook(hook Hook)
}

// Hook is a short piece of program that can be invoked by a hookable object.
type Hook interface {
	// Func determines what to do if hook is invoked.
	Func(ctx HookCtx)
}

// A HookableBase provides some utility function for other type that implement
// the Hookable interface.
type HookableBase struct {
	Hooks []Hook
}

// AcceptHook register a hook
func (h *HookableBase) AcceptHook(hook Hook) {
	h.Hooks = append(h.Hooks, hook)
}

// NumHooks returns the number of hooks registered.
func (h *HookableBase) NumHooks() int {
	return len(h.Hooks)
}

// InvokeHook triggers the register Hooks
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.Hooks {
		hook.Func(ctx)
	}
}
