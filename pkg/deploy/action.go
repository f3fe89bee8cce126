package deploy

import (
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

type ActionKind int

const (
	ActionCreate ActionKind = iota + 1
	ActionDelete
	ActionReplace
)

func (kind ActionKind) String() string {
	switch kind {
	case ActionCreate:
		return "Create"
	case ActionDelete:
		return "Delete"
	case ActionReplace:
		return "Update"
	default:
		return fmt.Sprintf("ActionKind(%d)", int(kind))
	}
}

// Action is a single cluster mutation. Create and Replace carry the rendered template,
// Delete only the name. A no-op is represented by an empty action list.
type Action struct {
	Kind     ActionKind
	Name     string
	Template *unstructured.Unstructured
}

func Create(template *unstructured.Unstructured) Action {
	return Action{Kind: ActionCreate, Name: template.GetName(), Template: template}
}

func Replace(template *unstructured.Unstructured) Action {
	return Action{Kind: ActionReplace, Name: template.GetName(), Template: template}
}

func Delete(name string) Action {
	return Action{Kind: ActionDelete, Name: name}
}

// String is the human readable description recorded in dry runs, ie: "Create deployment web".
func (action Action) String() string {
	return fmt.Sprintf("%s deployment %s", action.Kind, action.Name)
}

func Describe(actions []Action) []string {
	result := make([]string, len(actions))
	for i, action := range actions {
		result[i] = action.String()
	}
	return result
}
