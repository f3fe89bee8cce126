package deploy

import (
	"encoding/json"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// Report is the result of a single reconciliation pass.
type Report struct {
	State   State
	Changed bool
	// Actions is only set for dry runs, and is empty when nothing would have changed.
	Actions []string
	// Resource is the deployment as it stands after the pass, nil if it is absent.
	// For dry runs it is the observed deployment.
	Resource *unstructured.Unstructured
	// Facts exposes the resulting deployment under FactKey for present passes.
	Facts map[string]any
}

// FactKey is the key under which a deployment is exposed in report facts, ie: "my_app_deployment".
func FactKey(name string) string {
	return strings.ReplaceAll(name, "-", "_") + "_deployment"
}

func (report Report) Document() map[string]any {
	doc := map[string]any{
		"changed":  report.Changed,
		"resource": objectOrNil(report.Resource),
	}
	if report.Actions != nil {
		doc["actions"] = report.Actions
	}
	if len(report.Facts) > 0 {
		doc["facts"] = report.Facts
	}
	return doc
}

func (report Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(report.Document())
}

func (report Report) MarshalYAML() (any, error) {
	return report.Document(), nil
}

func objectOrNil(resource *unstructured.Unstructured) any {
	if resource == nil {
		return nil
	}
	return resource.Object
}
