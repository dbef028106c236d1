package actor

import (
	"github.com/lumen2d/lumen/internal/core/ecs"
	"go.uber.org/zap"
)

// Registry is the engine's list of live actors plus the staged add, remove
// and keep-across-scene lists. Actors are visited in admission order.
//
// Every actor created through the registry also gets a generational handle;
// components and physics fixtures refer to their actor by handle only.
type Registry struct {
	pool *ecs.Pool[*Actor]
	ids  *ecs.Counter

	live     []*Actor
	toAdd    []*Actor
	toRemove []*Actor
	keep     []*Actor

	// lookup holds every created, not destroyed actor (staged or live) so
	// name lookups see actors instantiated earlier in the same frame.
	lookup []*Actor

	log *zap.Logger
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		pool:  ecs.NewPool[*Actor](),
		ids:   ecs.NewCounter(1),
		live:  make([]*Actor, 0, 64),
		toAdd: make([]*Actor, 0, 16),
		log:   log,
	}
}

// Create allocates an actor with the next id. It is neither live nor staged
// until Stage is called.
func (r *Registry) Create(name string) *Actor {
	a := newActor(r.ids.Next(), name, r.log)
	a.handle = r.pool.Insert(a)
	r.lookup = append(r.lookup, a)
	return a
}

// Stage queues a for admission at the next admit phase.
func (r *Registry) Stage(a *Actor) {
	r.toAdd = append(r.toAdd, a)
}

// Admit appends staged actors to the live list and returns them in staging
// order. The staging list is cleared.
func (r *Registry) Admit() []*Actor {
	if len(r.toAdd) == 0 {
		return nil
	}
	admitted := r.toAdd
	r.live = append(r.live, admitted...)
	r.toAdd = make([]*Actor, 0, cap(admitted))
	return admitted
}

// Destroy stages a for removal. Its components are flagged removed at once
// so no further hook runs; the actor itself is freed by FlushDestroyed.
func (r *Registry) Destroy(a *Actor) {
	if a == nil || a.destroyed {
		return
	}
	a.destroyed = true
	r.toRemove = append(r.toRemove, a)
	r.toAdd = without(r.toAdd, a)
	r.lookup = without(r.lookup, a)
	a.markRemoved()
}

// FlushDestroyed frees every actor staged by Destroy. release, if non-nil,
// is called for each component before the actor drops them.
func (r *Registry) FlushDestroyed(release func(Component)) int {
	n := len(r.toRemove)
	for _, a := range r.toRemove {
		r.live = without(r.live, a)
		r.free(a, release)
	}
	r.toRemove = r.toRemove[:0]
	return n
}

func (r *Registry) free(a *Actor, release func(Component)) {
	if release != nil {
		a.Each(release)
		a.EachPending(release)
	}
	a.OnDestroy()
	r.keep = without(r.keep, a)
	r.pool.Release(a.handle)
}

// Keep marks a to survive the next scene transition.
func (r *Registry) Keep(a *Actor) {
	a.DontDestroyOnLoad = true
	for _, k := range r.keep {
		if k == a {
			return
		}
	}
	r.keep = append(r.keep, a)
}

// EndScene drops every live actor not flagged DontDestroyOnLoad and flags the
// survivors FromAnotherScene. Staged actors of the old scene are dropped too,
// unless kept, in which case they stay staged and start normally.
func (r *Registry) EndScene(release func(Component)) {
	var survivors []*Actor
	for _, a := range r.live {
		if a.DontDestroyOnLoad {
			a.FromAnotherScene = true
			survivors = append(survivors, a)
			continue
		}
		a.destroyed = true
		a.markRemoved()
		r.lookup = without(r.lookup, a)
		r.free(a, release)
	}
	var staged []*Actor
	for _, a := range r.toAdd {
		if a.DontDestroyOnLoad {
			staged = append(staged, a)
			continue
		}
		a.destroyed = true
		a.markRemoved()
		r.lookup = without(r.lookup, a)
		r.free(a, release)
	}
	r.live = survivors
	r.toAdd = append(r.toAdd[:0], staged...)
}

// Resolve maps a handle back to its actor. Freed actors do not resolve.
func (r *Registry) Resolve(h ecs.Handle) (*Actor, bool) {
	return r.pool.Get(h)
}

// Find returns the first created, not destroyed actor named name, or nil.
func (r *Registry) Find(name string) *Actor {
	for _, a := range r.lookup {
		if a.name == name {
			return a
		}
	}
	return nil
}

// FindAll returns every created, not destroyed actor named name.
func (r *Registry) FindAll(name string) []*Actor {
	var out []*Actor
	for _, a := range r.lookup {
		if a.name == name {
			out = append(out, a)
		}
	}
	return out
}

// Live returns the live actors in admission order. The slice must not be
// retained across phases.
func (r *Registry) Live() []*Actor { return r.live }

// Staged returns actors waiting for admission.
func (r *Registry) Staged() []*Actor { return r.toAdd }

// Doomed returns actors waiting to be freed.
func (r *Registry) Doomed() []*Actor { return r.toRemove }

// Kept returns actors flagged to survive scene transitions.
func (r *Registry) Kept() []*Actor { return r.keep }

// Allocated returns how many actors currently hold a handle.
func (r *Registry) Allocated() int { return r.pool.Len() }

func without(list []*Actor, a *Actor) []*Actor {
	for i, x := range list {
		if x == a {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
