// Package resource holds the typed wire documents rendered by the template builder.
// Fields are enumerated explicitly so that the rendered shape never depends on
// what the cluster happens to return.
package resource

type Metadata struct {
	Name        string            `json:"name"`
	Namespace   string            `json:"namespace,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
	Annotations map[string]string `json:"annotations,omitempty"`
}

type Resource[T any] struct {
	APIVersion string   `json:"apiVersion"`
	Kind       string   `json:"kind"`
	Metadata   Metadata `json:"metadata"`
	Spec       T        `json:"spec"`
}

type Selector struct {
	MatchLabels map[string]string `json:"matchLabels"`
}
