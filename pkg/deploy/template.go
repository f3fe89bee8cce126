package deploy

import (
	"cmp"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/davidmdm/kdeploy/pkg/deploy/resource"
)

// BuildTemplate renders the desired spec into the deployment document sent to the cluster.
// Identical specs always render to identical documents: env vars are sorted by name and
// ports in ascending order.
func BuildTemplate(spec DesiredSpec) *unstructured.Unstructured {
	deployment := Deployment(spec)

	data, err := json.Marshal(deployment)
	if err != nil {
		panic(fmt.Errorf("deployment document is not serializable: %w", err))
	}

	var template unstructured.Unstructured
	if err := template.UnmarshalJSON(data); err != nil {
		panic(fmt.Errorf("deployment document is not a valid object: %w", err))
	}

	return &template
}

// Deployment is the typed form of the document rendered by BuildTemplate.
func Deployment(spec DesiredSpec) resource.Deployment {
	selector := spec.Labels
	if len(selector) == 0 {
		selector = map[string]string{"app": spec.Name}
	}

	containers := make([]resource.Container, len(spec.Containers))
	for i, container := range spec.Containers {
		containers[i] = resource.Container{
			Name:            container.Name,
			Image:           container.Image,
			Command:         container.Command,
			Args:            container.Args,
			ImagePullPolicy: container.ImagePullPolicy,
			Env:             envVars(container.Env),
			Ports:           containerPorts(container.Ports),
			VolumeMounts:    container.VolumeMounts,
		}
	}

	return resource.Deployment{
		APIVersion: resource.DeploymentAPIVersion,
		Kind:       resource.DeploymentKind,
		Metadata: resource.Metadata{
			Name:   spec.Name,
			Labels: spec.Labels,
		},
		Spec: resource.DeploymentSpec{
			Replicas: spec.Replicas,
			Selector: resource.Selector{MatchLabels: selector},
			Strategy: resource.Strategy{Type: string(cmp.Or(spec.Strategy, StrategyRollingUpdate))},
			Template: resource.PodTemplateSpec{
				Metadata: resource.TemplateMetadata{Labels: selector},
				Spec: resource.PodSpec{
					Containers: containers,
					Volumes:    spec.Volumes,
				},
			},
		},
	}
}

func envVars(env map[string]string) []resource.EnvVar {
	if len(env) == 0 {
		return nil
	}
	result := make([]resource.EnvVar, 0, len(env))
	for _, name := range slices.Sorted(maps.Keys(env)) {
		result = append(result, resource.EnvVar{Name: name, Value: env[name]})
	}
	return result
}

func containerPorts(ports []int32) []resource.ContainerPort {
	if len(ports) == 0 {
		return nil
	}
	sorted := slices.Sorted(slices.Values(ports))
	result := make([]resource.ContainerPort, len(sorted))
	for i, port := range sorted {
		result[i] = resource.ContainerPort{ContainerPort: port}
	}
	return result
}
