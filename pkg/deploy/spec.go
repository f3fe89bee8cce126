package deploy

import (
	"fmt"
	"slices"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/util/validation"
	"sigs.k8s.io/yaml"

	"github.com/davidmdm/x/xerr"
)

type Strategy string

const (
	StrategyRollingUpdate Strategy = "RollingUpdate"
	StrategyRecreate      Strategy = "Recreate"
)

// VolumeSpec is attached verbatim under the pod template spec.
type VolumeSpec = corev1.Volume

type ContainerSpec struct {
	Name            string               `json:"name"`
	Image           string               `json:"image"`
	Env             map[string]string    `json:"env,omitempty"`
	Ports           []int32              `json:"ports,omitempty"`
	Command         []string             `json:"command,omitempty"`
	Args            []string             `json:"args,omitempty"`
	ImagePullPolicy string               `json:"imagePullPolicy,omitempty"`
	VolumeMounts    []corev1.VolumeMount `json:"volumeMounts,omitempty"`
}

// DesiredSpec is the declared target state of a single deployment.
type DesiredSpec struct {
	Name       string            `json:"name"`
	Labels     map[string]string `json:"labels,omitempty"`
	Replicas   int32             `json:"replicas"`
	Strategy   Strategy          `json:"strategy,omitempty"`
	Containers []ContainerSpec   `json:"containers"`
	Volumes    []VolumeSpec      `json:"volumes,omitempty"`
}

// ParseSpec decodes a yaml or json document into a DesiredSpec. Unknown fields are rejected.
// Replicas defaults to 1 and the strategy to RollingUpdate when omitted.
func ParseSpec(data []byte) (DesiredSpec, error) {
	spec := DesiredSpec{Replicas: 1, Strategy: StrategyRollingUpdate}
	if err := yaml.UnmarshalStrict(data, &spec); err != nil {
		return DesiredSpec{}, fmt.Errorf("failed to decode desired spec: %w", err)
	}
	return spec, nil
}

// Validate checks the desired spec for well-formedness and reports every problem found at once.
func (spec DesiredSpec) Validate() error {
	errs := validateName(spec.Name)

	if spec.Replicas < 0 {
		errs = append(errs, fmt.Errorf("replicas must be greater than or equal to zero: got %d", spec.Replicas))
	}

	if !slices.Contains([]Strategy{"", StrategyRollingUpdate, StrategyRecreate}, spec.Strategy) {
		errs = append(errs, fmt.Errorf("strategy must be one of %s or %s: got %q", StrategyRecreate, StrategyRollingUpdate, spec.Strategy))
	}

	if len(spec.Containers) == 0 {
		errs = append(errs, fmt.Errorf("at least one container is required"))
	}

	containers := map[string]struct{}{}
	for i, container := range spec.Containers {
		if _, ok := containers[container.Name]; ok && container.Name != "" {
			errs = append(errs, fmt.Errorf("containers[%d]: duplicate container name %q", i, container.Name))
		}
		containers[container.Name] = struct{}{}

		for _, err := range container.validate() {
			errs = append(errs, fmt.Errorf("containers[%d]: %w", i, err))
		}
	}

	volumes := map[string]struct{}{}
	for i, volume := range spec.Volumes {
		switch _, ok := volumes[volume.Name]; {
		case volume.Name == "":
			errs = append(errs, fmt.Errorf("volumes[%d]: name is required", i))
		case ok:
			errs = append(errs, fmt.Errorf("volumes[%d]: duplicate volume name %q", i, volume.Name))
		}
		volumes[volume.Name] = struct{}{}
	}

	if err := xerr.MultiErrOrderedFrom("", errs...); err != nil {
		return &ValidationError{Name: spec.Name, Err: err}
	}

	return nil
}

// ValidateName is the only check needed when the deployment is being removed.
func (spec DesiredSpec) ValidateName() error {
	if err := xerr.MultiErrOrderedFrom("", validateName(spec.Name)...); err != nil {
		return &ValidationError{Name: spec.Name, Err: err}
	}
	return nil
}

func validateName(name string) (errs []error) {
	if name == "" {
		return []error{fmt.Errorf("name is required")}
	}
	for _, msg := range validation.IsDNS1123Subdomain(name) {
		errs = append(errs, fmt.Errorf("invalid name %q: %s", name, msg))
	}
	return errs
}

func (container ContainerSpec) validate() (errs []error) {
	if container.Name == "" {
		errs = append(errs, fmt.Errorf("name is required"))
	} else {
		for _, msg := range validation.IsDNS1123Label(container.Name) {
			errs = append(errs, fmt.Errorf("invalid name %q: %s", container.Name, msg))
		}
	}

	if container.Image == "" {
		errs = append(errs, fmt.Errorf("image is required"))
	}

	ports := map[int32]struct{}{}
	for _, port := range container.Ports {
		for _, msg := range validation.IsValidPortNum(int(port)) {
			errs = append(errs, fmt.Errorf("invalid port %d: %s", port, msg))
		}
		if _, ok := ports[port]; ok {
			errs = append(errs, fmt.Errorf("duplicate port %d", port))
		}
		ports[port] = struct{}{}
	}

	return errs
}
