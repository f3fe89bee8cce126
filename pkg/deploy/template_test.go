package deploy

import (
	"testing"

	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

func webSpec() DesiredSpec {
	return DesiredSpec{
		Name:     "web",
		Replicas: 3,
		Containers: []ContainerSpec{
			{Name: "app", Image: "nginx", Ports: []int32{80}},
		},
	}
}

func TestBuildTemplateShape(t *testing.T) {
	template := BuildTemplate(webSpec())

	require.Equal(t, "apps/v1", template.GetAPIVersion())
	require.Equal(t, "Deployment", template.GetKind())
	require.Equal(t, "web", template.GetName())

	replicas, _, _ := unstructured.NestedInt64(template.Object, "spec", "replicas")
	require.EqualValues(t, 3, replicas)

	strategy, _, _ := unstructured.NestedString(template.Object, "spec", "strategy", "type")
	require.Equal(t, string(StrategyRollingUpdate), strategy)

	containers, _, _ := unstructured.NestedSlice(template.Object, "spec", "template", "spec", "containers")
	require.Equal(
		t,
		[]any{
			map[string]any{
				"name":  "app",
				"image": "nginx",
				"ports": []any{map[string]any{"containerPort": int64(80)}},
			},
		},
		containers,
	)
}

func TestBuildTemplateDeterministic(t *testing.T) {
	spec := DesiredSpec{
		Name:     "api",
		Replicas: 1,
		Containers: []ContainerSpec{
			{
				Name:  "api",
				Image: "api:v1",
				Env: map[string]string{
					"ZONE":      "b",
					"ADDRESS":   ":8080",
					"LOG_LEVEL": "debug",
					"DB_URL":    "postgres://db",
				},
				Ports: []int32{9090, 443, 8080},
			},
		},
	}

	first, err := BuildTemplate(spec).MarshalJSON()
	require.NoError(t, err)

	for range 20 {
		next, err := BuildTemplate(spec).MarshalJSON()
		require.NoError(t, err)
		require.Equal(t, string(first), string(next))
	}

	template := BuildTemplate(spec)
	containers, _, _ := unstructured.NestedSlice(template.Object, "spec", "template", "spec", "containers")
	container := containers[0].(map[string]any)

	require.Equal(
		t,
		[]any{
			map[string]any{"name": "ADDRESS", "value": ":8080"},
			map[string]any{"name": "DB_URL", "value": "postgres://db"},
			map[string]any{"name": "LOG_LEVEL", "value": "debug"},
			map[string]any{"name": "ZONE", "value": "b"},
		},
		container["env"],
	)
	require.Equal(
		t,
		[]any{
			map[string]any{"containerPort": int64(443)},
			map[string]any{"containerPort": int64(8080)},
			map[string]any{"containerPort": int64(9090)},
		},
		container["ports"],
	)
}

func TestBuildTemplateDoesNotMutateSpec(t *testing.T) {
	spec := webSpec()
	spec.Containers[0].Ports = []int32{443, 80}

	BuildTemplate(spec)

	require.Equal(t, []int32{443, 80}, spec.Containers[0].Ports)
}

func TestBuildTemplateVolumes(t *testing.T) {
	t.Run("absent when empty", func(t *testing.T) {
		for _, volumes := range [][]VolumeSpec{nil, {}} {
			spec := webSpec()
			spec.Volumes = volumes

			_, found, err := unstructured.NestedFieldNoCopy(BuildTemplate(spec).Object, "spec", "template", "spec", "volumes")
			require.NoError(t, err)
			require.False(t, found)
		}
	})

	t.Run("attached under pod spec", func(t *testing.T) {
		spec := webSpec()
		spec.Volumes = []VolumeSpec{
			{Name: "cache", VolumeSource: corev1.VolumeSource{EmptyDir: &corev1.EmptyDirVolumeSource{}}},
		}

		volumes, found, err := unstructured.NestedSlice(BuildTemplate(spec).Object, "spec", "template", "spec", "volumes")
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, []any{map[string]any{"name": "cache", "emptyDir": map[string]any{}}}, volumes)
	})
}

func TestBuildTemplateLabels(t *testing.T) {
	t.Run("labels on resource and pod template", func(t *testing.T) {
		spec := webSpec()
		spec.Labels = map[string]string{"a": "b"}

		template := BuildTemplate(spec)

		labels, _, _ := unstructured.NestedStringMap(template.Object, "metadata", "labels")
		podLabels, _, _ := unstructured.NestedStringMap(template.Object, "spec", "template", "metadata", "labels")
		selector, _, _ := unstructured.NestedStringMap(template.Object, "spec", "selector", "matchLabels")

		require.Equal(t, map[string]string{"a": "b"}, labels)
		require.Equal(t, labels, podLabels)
		require.Equal(t, labels, selector)
	})

	t.Run("default selector without labels", func(t *testing.T) {
		template := BuildTemplate(webSpec())

		_, found, _ := unstructured.NestedFieldNoCopy(template.Object, "metadata", "labels")
		require.False(t, found)

		podLabels, _, _ := unstructured.NestedStringMap(template.Object, "spec", "template", "metadata", "labels")
		selector, _, _ := unstructured.NestedStringMap(template.Object, "spec", "selector", "matchLabels")

		require.Equal(t, map[string]string{"app": "web"}, podLabels)
		require.Equal(t, podLabels, selector)
	})
}

func TestBuildTemplateContainerExtras(t *testing.T) {
	spec := webSpec()
	spec.Strategy = StrategyRecreate
	spec.Containers[0].Command = []string{"nginx"}
	spec.Containers[0].Args = []string{"-g", "daemon off;"}
	spec.Containers[0].ImagePullPolicy = "Always"
	spec.Containers[0].VolumeMounts = []corev1.VolumeMount{{Name: "cache", MountPath: "/cache"}}

	template := BuildTemplate(spec)

	strategy, _, _ := unstructured.NestedString(template.Object, "spec", "strategy", "type")
	require.Equal(t, "Recreate", strategy)

	containers, _, _ := unstructured.NestedSlice(template.Object, "spec", "template", "spec", "containers")
	container := containers[0].(map[string]any)

	require.Equal(t, []any{"nginx"}, container["command"])
	require.Equal(t, []any{"-g", "daemon off;"}, container["args"])
	require.Equal(t, "Always", container["imagePullPolicy"])
	require.Equal(t, []any{map[string]any{"name": "cache", "mountPath": "/cache"}}, container["volumeMounts"])
}
