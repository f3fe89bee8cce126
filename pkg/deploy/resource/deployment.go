package resource

import corev1 "k8s.io/api/core/v1"

const (
	DeploymentAPIVersion = "apps/v1"
	DeploymentKind       = "Deployment"
)

type Deployment Resource[DeploymentSpec]

type DeploymentSpec struct {
	Replicas int32           `json:"replicas"`
	Selector Selector        `json:"selector"`
	Strategy Strategy        `json:"strategy"`
	Template PodTemplateSpec `json:"template"`
}

type Strategy struct {
	Type string `json:"type"`
}

type PodTemplateSpec struct {
	Metadata TemplateMetadata `json:"metadata"`
	Spec     PodSpec          `json:"spec"`
}

type TemplateMetadata struct {
	Labels map[string]string `json:"labels,omitempty"`
}

// PodSpec never carries an empty volumes field.
type PodSpec struct {
	Containers []Container     `json:"containers"`
	Volumes    []corev1.Volume `json:"volumes,omitempty"`
}

type EnvVar struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type ContainerPort struct {
	ContainerPort int32 `json:"containerPort"`
}

type Container struct {
	Name            string               `json:"name"`
	Image           string               `json:"image"`
	Command         []string             `json:"command,omitempty"`
	Args            []string             `json:"args,omitempty"`
	ImagePullPolicy string               `json:"imagePullPolicy,omitempty"`
	Env             []EnvVar             `json:"env,omitempty"`
	Ports           []ContainerPort      `json:"ports,omitempty"`
	VolumeMounts    []corev1.VolumeMount `json:"volumeMounts,omitempty"`
}
