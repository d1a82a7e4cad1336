package estimation

// HookPos names a point in the estimation flow where hooks are invoked.
type HookPos struct {
	Name string
}

// HookCtx describes one invocation of the hooks.
//
// Domain is the estimator that invokes the hooks. Item is what the estimator
// was working on, usually the Request or a cache key. Detail carries the
// result, such as an Estimate.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   any
	Detail any
}

// Hookable is an estimator that hooks can be attached to.
type Hookable interface {
	AcceptHook(hook Hook)
	NumHooks() int
	Hooks() []Hook
}

// Hook observes the estimators, for example to record the estimates.
type Hook interface {
	Func(ctx HookCtx)
}

// HookableBase implements Hookable. Estimators embed it and call InvokeHook.
type HookableBase struct {
	hookList []Hook
}

// NumHooks returns the number of attached hooks.
func (h *HookableBase) NumHooks() int {
	return len(h.hookList)
}

// Hooks returns the attached hooks in attach order.
func (h *HookableBase) Hooks() []Hook {
	return h.hookList
}

// AcceptHook attaches a hook. Attaching the same hook twice panics.
func (h *HookableBase) AcceptHook(hook Hook) {
	for _, existing := range h.hookList {
		if existing == hook {
			panic("duplicated hook")
		}
	}

	h.hookList = append(h.hookList, hook)
}

// InvokeHook calls the hooks in attach order.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hookList {
		hook.Func(ctx)
	}
}
