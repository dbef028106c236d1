package system

import "time"

// Phase defines execution ordering within a single frame. Each phase runs to
// completion before the next begins; structural changes staged during one
// phase are applied by a later one.
type Phase int

const (
	PhaseStart            Phase = iota // 0: OnStart for components added at runtime
	PhaseAdmit                         // 1: staged actors join the registry, per-actor OnStart
	PhaseReady                         // 2: Ready for native (rigidbody) components
	PhaseMerge                         // 3: staged components join their actor's map
	PhaseUpdate                        // 4: OnUpdate
	PhaseLateUpdate                    // 5: OnLateUpdate + OnDestroy for removed components
	PhaseComponentCleanup              // 6: erase removed component keys
	PhaseActorCleanup                  // 7: free destroyed actors
	PhaseEvents                        // 8: apply deferred (un)subscriptions
	PhasePhysics                       // 9: physics step
	PhaseRender                        // 10: drain render and audio queues
	PhaseScene                         // 11: scene transition

	phaseCount
)

var phaseNames = [...]string{
	"start", "admit", "ready", "merge", "update", "late_update",
	"component_cleanup", "actor_cleanup", "events", "physics", "render", "scene",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// System is the interface every frame-phase system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
