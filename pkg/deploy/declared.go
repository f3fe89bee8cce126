package deploy

import "k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

// Declared projects the observed document onto the fields present in the template, dropping
// everything the server adds on its own such as status, managedFields or defaulted values.
// Lists are projected element by element; surplus observed elements are kept whole.
func Declared(observed, template *unstructured.Unstructured) map[string]any {
	if observed == nil {
		return nil
	}
	if template == nil {
		return observed.Object
	}
	result, _ := project(observed.Object, template.Object).(map[string]any)
	return result
}

func project(observed, declared any) any {
	switch declared := declared.(type) {
	case map[string]any:
		values, ok := observed.(map[string]any)
		if !ok {
			return observed
		}
		result := make(map[string]any, len(declared))
		for key, value := range declared {
			if current, ok := values[key]; ok {
				result[key] = project(current, value)
			}
		}
		return result
	case []any:
		values, ok := observed.([]any)
		if !ok {
			return observed
		}
		result := make([]any, len(values))
		for i, value := range values {
			if i < len(declared) {
				result[i] = project(value, declared[i])
				continue
			}
			result[i] = value
		}
		return result
	default:
		return observed
	}
}
