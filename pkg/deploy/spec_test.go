package deploy

import (
	"testing"

	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
)

func TestParseSpec(t *testing.T) {
	cases := []struct {
		Name     string
		Input    string
		Expected DesiredSpec
		Error    string
	}{
		{
			Name: "defaults",
			Input: `
name: web
containers:
  - name: app
    image: nginx
`,
			Expected: DesiredSpec{
				Name:       "web",
				Replicas:   1,
				Strategy:   StrategyRollingUpdate,
				Containers: []ContainerSpec{{Name: "app", Image: "nginx"}},
			},
		},
		{
			Name: "full",
			Input: `
name: web
labels: {tier: frontend}
replicas: 0
strategy: Recreate
containers:
  - name: app
    image: nginx
    env: {A: "1"}
    ports: [80, 443]
    volumeMounts:
      - name: cache
        mountPath: /cache
volumes:
  - name: cache
    emptyDir: {}
`,
			Expected: DesiredSpec{
				Name:     "web",
				Labels:   map[string]string{"tier": "frontend"},
				Replicas: 0,
				Strategy: StrategyRecreate,
				Containers: []ContainerSpec{
					{
						Name:         "app",
						Image:        "nginx",
						Env:          map[string]string{"A": "1"},
						Ports:        []int32{80, 443},
						VolumeMounts: []corev1.VolumeMount{{Name: "cache", MountPath: "/cache"}},
					},
				},
				Volumes: []VolumeSpec{
					{Name: "cache", VolumeSource: corev1.VolumeSource{EmptyDir: &corev1.EmptyDirVolumeSource{}}},
				},
			},
		},
		{
			Name:  "json",
			Input: `{"name": "web", "containers": [{"name": "app", "image": "nginx"}], "replicas": 2}`,
			Expected: DesiredSpec{
				Name:       "web",
				Replicas:   2,
				Strategy:   StrategyRollingUpdate,
				Containers: []ContainerSpec{{Name: "app", Image: "nginx"}},
			},
		},
		{
			Name:  "unknown field",
			Input: "name: web\nreplica: 2\n",
			Error: "failed to decode desired spec",
		},
	}

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			spec, err := ParseSpec([]byte(tc.Input))
			if tc.Error != "" {
				require.ErrorContains(t, err, tc.Error)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.Expected, spec)
		})
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		Name   string
		Spec   func(*DesiredSpec)
		Errors []string
	}{
		{
			Name: "valid",
			Spec: func(*DesiredSpec) {},
		},
		{
			Name:   "missing name",
			Spec:   func(spec *DesiredSpec) { spec.Name = "" },
			Errors: []string{"name is required"},
		},
		{
			Name:   "invalid name",
			Spec:   func(spec *DesiredSpec) { spec.Name = "Web_App" },
			Errors: []string{`invalid name "Web_App"`},
		},
		{
			Name:   "negative replicas",
			Spec:   func(spec *DesiredSpec) { spec.Replicas = -1 },
			Errors: []string{"replicas must be greater than or equal to zero: got -1"},
		},
		{
			Name:   "unknown strategy",
			Spec:   func(spec *DesiredSpec) { spec.Strategy = "BlueGreen" },
			Errors: []string{`strategy must be one of Recreate or RollingUpdate: got "BlueGreen"`},
		},
		{
			Name:   "no containers",
			Spec:   func(spec *DesiredSpec) { spec.Containers = nil },
			Errors: []string{"at least one container is required"},
		},
		{
			Name: "duplicate containers",
			Spec: func(spec *DesiredSpec) {
				spec.Containers = append(spec.Containers, ContainerSpec{Name: "app", Image: "busybox"})
			},
			Errors: []string{`containers[1]: duplicate container name "app"`},
		},
		{
			Name: "container problems are all reported",
			Spec: func(spec *DesiredSpec) {
				spec.Containers = []ContainerSpec{{Ports: []int32{0, 80, 80}}}
			},
			Errors: []string{
				"containers[0]: name is required",
				"containers[0]: image is required",
				"containers[0]: invalid port 0",
				"containers[0]: duplicate port 80",
			},
		},
		{
			Name: "volumes",
			Spec: func(spec *DesiredSpec) {
				spec.Volumes = []VolumeSpec{{Name: "data"}, {Name: "data"}, {}}
			},
			Errors: []string{
				`volumes[1]: duplicate volume name "data"`,
				"volumes[2]: name is required",
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			spec := webSpec()
			tc.Spec(&spec)

			err := spec.Validate()
			if len(tc.Errors) == 0 {
				require.NoError(t, err)
				return
			}

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			require.Equal(t, spec.Name, validationErr.Name)

			for _, msg := range tc.Errors {
				require.ErrorContains(t, err, msg)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	require.NoError(t, DesiredSpec{Name: "web"}.ValidateName())
	require.Error(t, DesiredSpec{}.ValidateName())
	require.Error(t, DesiredSpec{Name: "-web"}.ValidateName())
}
