package deploy

import (
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

type DesiredState string

const (
	Present DesiredState = "present"
	Absent  DesiredState = "absent"
)

// Policy is the operator's declared intent for a single pass. Recreate wins over Replace.
type Policy struct {
	State    DesiredState
	Recreate bool
	Replace  bool
	DryRun   bool
}

func DefaultPolicy() Policy {
	return Policy{State: Present, Replace: true}
}

func (policy Policy) Validate() error {
	switch policy.State {
	case Present, Absent:
		return nil
	default:
		return &ValidationError{Err: fmt.Errorf("state must be one of %s or %s: got %q", Present, Absent, policy.State)}
	}
}

// State is the situation a pass finds itself in. It is computed per pass and never stored.
type State int

const (
	StateAbsent State = iota
	StatePresentRecreate
	StatePresentReplace
	StatePresentNoAction
	StateRemovePresent
	StateRemoveAbsent
)

func (state State) String() string {
	switch state {
	case StateAbsent:
		return "Absent"
	case StatePresentRecreate:
		return "PresentRecreate"
	case StatePresentReplace:
		return "PresentReplace"
	case StatePresentNoAction:
		return "PresentNoAction"
	case StateRemovePresent:
		return "RemovePresent"
	case StateRemoveAbsent:
		return "RemoveAbsent"
	default:
		return fmt.Sprintf("State(%d)", int(state))
	}
}

type Decision struct {
	State   State
	Actions []Action
}

// Changed reports whether the decision mutates the cluster.
func (decision Decision) Changed() bool { return len(decision.Actions) > 0 }

// Decide selects the actions for a pass from the existence of the observed resource and the policy alone.
// The contents of the observed document are never inspected.
func Decide(spec DesiredSpec, policy Policy, observed *unstructured.Unstructured) Decision {
	if policy.State == Absent {
		if observed == nil {
			return Decision{State: StateRemoveAbsent}
		}
		return Decision{State: StateRemovePresent, Actions: []Action{Delete(spec.Name)}}
	}

	switch {
	case observed == nil:
		return Decision{
			State:   StateAbsent,
			Actions: []Action{Create(BuildTemplate(spec))},
		}
	case policy.Recreate:
		return Decision{
			State:   StatePresentRecreate,
			Actions: []Action{Delete(spec.Name), Create(BuildTemplate(spec))},
		}
	case policy.Replace:
		return Decision{
			State:   StatePresentReplace,
			Actions: []Action{Replace(BuildTemplate(spec))},
		}
	default:
		return Decision{State: StatePresentNoAction}
	}
}
