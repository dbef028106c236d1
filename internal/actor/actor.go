package actor

import (
	"sort"

	"github.com/lumen2d/lumen/internal/core/ecs"
	"go.uber.org/zap"
)

// cacheSlot indexes the per-hook memoized component lists.
type cacheSlot int

const (
	cacheStart cacheSlot = iota
	cacheUpdate
	cacheTriggerEnter
	cacheTriggerExit
	cacheCollisionEnter
	cacheCollisionExit
	numCaches
)

// Actor owns a set of components keyed by string. Hooks dispatched over the
// full map visit components in lexicographic key order.
//
// Structural changes requested while a phase iterates (AddComponent,
// RemoveComponent) are staged here and applied by the scheduler between
// phases. Game-loop goroutine only.
type Actor struct {
	id     int
	handle ecs.Handle
	name   string

	// FromAnotherScene is set on kept actors once a new scene loads; their
	// components do not receive OnStart or Ready again.
	FromAnotherScene bool
	// DontDestroyOnLoad keeps the actor across scene transitions.
	DontDestroyOnLoad bool

	components map[string]Component
	keys       []string // sorted view of components; nil when stale

	// caches memoize which components implement a hook. Each is filled the
	// first time its hook is dispatched while it is empty, then reused as is.
	caches [numCaches][]Component

	pendingAdd    map[string]Component
	pendingRemove []string
	ready         []Component
	notified      map[Component]struct{} // removed components already sent OnDestroy

	destroyed bool
	log       *zap.Logger
}

func newActor(id int, name string, log *zap.Logger) *Actor {
	return &Actor{
		id:         id,
		name:       name,
		components: make(map[string]Component, 4),
		pendingAdd: make(map[string]Component),
		notified:   make(map[Component]struct{}),
		log:        log,
	}
}

func (a *Actor) ID() int            { return a.id }
func (a *Actor) Handle() ecs.Handle { return a.handle }
func (a *Actor) Name() string       { return a.name }
func (a *Actor) SetName(n string)   { a.name = n }

// Destroyed reports whether the actor has been staged for destruction.
func (a *Actor) Destroyed() bool { return a.destroyed }

// Keys returns the live component keys in lexicographic order.
func (a *Actor) Keys() []string {
	if a.keys == nil {
		a.keys = make([]string, 0, len(a.components))
		for k := range a.components {
			a.keys = append(a.keys, k)
		}
		sort.Strings(a.keys)
	}
	return a.keys
}

// Len returns the number of live components.
func (a *Actor) Len() int { return len(a.components) }

// Component returns the live component stored under key, or nil.
func (a *Actor) Component(key string) Component {
	return a.components[key]
}

// ComponentByType returns the first live, not removed component of typ in
// key order, or nil.
func (a *Actor) ComponentByType(typ string) Component {
	for _, k := range a.Keys() {
		c := a.components[k]
		if c.Type() == typ && !c.Removed() {
			return c
		}
	}
	return nil
}

// ComponentsByType returns every live component of typ in key order.
func (a *Actor) ComponentsByType(typ string) []Component {
	var out []Component
	for _, k := range a.Keys() {
		if c := a.components[k]; c.Type() == typ {
			out = append(out, c)
		}
	}
	return out
}

// Attach inserts c into the live map immediately. Only loaders building an
// actor that no phase is iterating yet may call it.
func (a *Actor) Attach(c Component) {
	a.components[c.Key()] = c
	a.keys = nil
}

// Stage records c for insertion at the next merge phase.
func (a *Actor) Stage(c Component) {
	a.pendingAdd[c.Key()] = c
}

// Pending returns the component staged under key, or nil.
func (a *Actor) Pending(key string) Component {
	return a.pendingAdd[key]
}

// StageRemoval records key for erasure at the next component cleanup phase.
func (a *Actor) StageRemoval(key string) {
	a.pendingRemove = append(a.pendingRemove, key)
}

// QueueReady schedules c's Ready hook for the next ready phase.
func (a *Actor) QueueReady(c Component) {
	a.ready = append(a.ready, c)
}

// PrimeCaches fills the start and update caches from the current map, the
// way freshly instantiated actors are prepared before admission.
func (a *Actor) PrimeCaches() {
	for _, k := range a.Keys() {
		c := a.components[k]
		if !c.Enabled() || c.Removed() {
			continue
		}
		if c.HasHook(HookStart) {
			a.caches[cacheStart] = append(a.caches[cacheStart], c)
		}
		if c.HasHook(HookUpdate) {
			a.caches[cacheUpdate] = append(a.caches[cacheUpdate], c)
		}
	}
}

// InvalidateCaches drops every memoized hook list; the next dispatch of each
// hook rescans the full map.
func (a *Actor) InvalidateCaches() {
	for i := range a.caches {
		a.caches[i] = nil
	}
}

// MergePending moves staged components into the live map and reports how
// many were merged.
func (a *Actor) MergePending() int {
	n := len(a.pendingAdd)
	if n == 0 {
		return 0
	}
	for k, c := range a.pendingAdd {
		a.components[k] = c
		delete(a.pendingAdd, k)
	}
	a.keys = nil
	return n
}

// EraseRemoved deletes staged keys from the live map and returns the erased
// components. A key whose component is still waiting to be merged stays
// staged so it is erased after it has been merged and notified. Hook caches
// keep erased entries; their removed flag keeps them silent.
func (a *Actor) EraseRemoved() []Component {
	if len(a.pendingRemove) == 0 {
		return nil
	}
	var carry []string
	var erased []Component
	for _, k := range a.pendingRemove {
		if c, ok := a.components[k]; ok {
			delete(a.components, k)
			delete(a.notified, c)
			erased = append(erased, c)
			a.keys = nil
			continue
		}
		if _, ok := a.pendingAdd[k]; ok {
			carry = append(carry, k)
		}
	}
	a.pendingRemove = carry
	return erased
}

// markRemoved flags every live and staged component as removed.
func (a *Actor) markRemoved() {
	for _, c := range a.components {
		c.MarkRemoved()
	}
	for _, c := range a.pendingAdd {
		c.MarkRemoved()
	}
}

// OnDestroy releases the actor's components. Called once, at the actor
// cleanup phase.
func (a *Actor) OnDestroy() {
	a.components = make(map[string]Component)
	a.keys = nil
	a.pendingAdd = make(map[string]Component)
	a.pendingRemove = nil
	a.ready = nil
	a.notified = make(map[Component]struct{})
	a.InvalidateCaches()
}

// Each calls fn for every live component in key order.
func (a *Actor) Each(fn func(Component)) {
	for _, k := range a.Keys() {
		fn(a.components[k])
	}
}

// EachPending calls fn for every staged component.
func (a *Actor) EachPending(fn func(Component)) {
	for _, c := range a.pendingAdd {
		fn(c)
	}
}

// --- hook dispatch ---

// Start runs OnStart through the start cache. Actors carried over from a
// previous scene are skipped.
func (a *Actor) Start() {
	if a.FromAnotherScene {
		return
	}
	a.dispatchCached(cacheStart, HookStart, nil)
}

// Update runs OnUpdate through the update cache.
func (a *Actor) Update() {
	a.dispatchCached(cacheUpdate, HookUpdate, nil)
}

// LateUpdate scans the full map in key order: OnLateUpdate for active
// components, OnDestroy once for each component flagged removed.
func (a *Actor) LateUpdate() {
	for _, k := range a.Keys() {
		c := a.components[k]
		if c.HasHook(HookLateUpdate) {
			a.call(c, HookLateUpdate, nil)
		}
		if !c.Removed() {
			continue
		}
		if _, done := a.notified[c]; done {
			continue
		}
		a.notified[c] = struct{}{}
		if c.HasHook(HookDestroy) {
			a.report(c, HookDestroy, c.Invoke(HookDestroy, nil))
		}
	}
}

// RunReady invokes Ready on queued native components and clears the queue.
func (a *Actor) RunReady() {
	if len(a.ready) == 0 {
		return
	}
	queue := a.ready
	a.ready = nil
	if a.FromAnotherScene {
		return
	}
	for _, c := range queue {
		if c.HasHook(HookReady) {
			a.call(c, HookReady, nil)
		}
	}
}

// ReadyLen returns how many native components are waiting for Ready.
func (a *Actor) ReadyLen() int { return len(a.ready) }

func (a *Actor) OnTriggerEnter(col *Collision) {
	a.dispatchCached(cacheTriggerEnter, HookTriggerEnter, col)
}

func (a *Actor) OnTriggerExit(col *Collision) {
	a.dispatchCached(cacheTriggerExit, HookTriggerExit, col)
}

func (a *Actor) OnCollisionEnter(col *Collision) {
	a.dispatchCached(cacheCollisionEnter, HookCollisionEnter, col)
}

func (a *Actor) OnCollisionExit(col *Collision) {
	a.dispatchCached(cacheCollisionExit, HookCollisionExit, col)
}

// dispatchCached runs hook over the memoized subset. An empty cache is filled
// from the full map, in key order, while dispatching.
func (a *Actor) dispatchCached(slot cacheSlot, hook Hook, col *Collision) {
	if cache := a.caches[slot]; len(cache) > 0 {
		for _, c := range cache {
			a.call(c, hook, col)
		}
		return
	}
	for _, k := range a.Keys() {
		c := a.components[k]
		if !c.HasHook(hook) {
			continue
		}
		// OnStart and OnUpdate caches only admit components active right now.
		if (slot == cacheStart || slot == cacheUpdate) && (!c.Enabled() || c.Removed()) {
			continue
		}
		a.caches[slot] = append(a.caches[slot], c)
		a.call(c, hook, col)
	}
}

// Run invokes hook on c when c is enabled and not removed, logging a script
// error against this actor. The global start queue dispatches through it.
func (a *Actor) Run(c Component, hook Hook) {
	a.call(c, hook, nil)
}

// call invokes hook on an enabled, not removed component.
func (a *Actor) call(c Component, hook Hook, col *Collision) {
	if !c.Enabled() || c.Removed() {
		return
	}
	a.report(c, hook, c.Invoke(hook, col))
}

func (a *Actor) report(c Component, hook Hook, err error) {
	if err == nil {
		return
	}
	a.log.Error("script error",
		zap.String("actor", a.name),
		zap.String("component", c.Key()),
		zap.String("hook", hook.String()),
		zap.Error(err),
	)
}

// CacheLen returns the size of the memoized list for hook, for diagnostics.
func (a *Actor) CacheLen(hook Hook) int {
	switch hook {
	case HookStart:
		return len(a.caches[cacheStart])
	case HookUpdate:
		return len(a.caches[cacheUpdate])
	case HookTriggerEnter:
		return len(a.caches[cacheTriggerEnter])
	case HookTriggerExit:
		return len(a.caches[cacheTriggerExit])
	case HookCollisionEnter:
		return len(a.caches[cacheCollisionEnter])
	case HookCollisionExit:
		return len(a.caches[cacheCollisionExit])
	}
	return 0
}
