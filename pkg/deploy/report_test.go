package deploy

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

func TestFactKey(t *testing.T) {
	require.Equal(t, "web_deployment", FactKey("web"))
	require.Equal(t, "my_app_v2_deployment", FactKey("my-app-v2"))
}

func TestReportDocument(t *testing.T) {
	resource := BuildTemplate(webSpec())

	cases := []struct {
		Name     string
		Report   Report
		Expected string
	}{
		{
			Name:     "absent without actions",
			Report:   Report{Changed: false},
			Expected: `{"changed":false,"resource":null}`,
		},
		{
			Name:     "dry run without changes keeps empty actions",
			Report:   Report{Changed: false, Actions: []string{}},
			Expected: `{"actions":[],"changed":false,"resource":null}`,
		},
		{
			Name: "present with facts",
			Report: Report{
				Changed:  true,
				Resource: resource,
				Facts:    map[string]any{FactKey("web"): resource.Object},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			data, err := json.Marshal(tc.Report)
			require.NoError(t, err)

			if tc.Expected != "" {
				require.JSONEq(t, tc.Expected, string(data))
				return
			}

			var doc map[string]any
			require.NoError(t, json.Unmarshal(data, &doc))
			require.Equal(t, true, doc["changed"])
			require.Equal(t, doc["resource"], doc["facts"].(map[string]any)["web_deployment"])
			require.NotContains(t, doc, "actions")
		})
	}
}

func TestReportYAML(t *testing.T) {
	data, err := yaml.Marshal(Report{Changed: true, Actions: []string{"Create deployment web"}})
	require.NoError(t, err)
	require.Equal(t, "actions:\n    - Create deployment web\nchanged: true\nresource: null\n", string(data))
}

func TestDeclared(t *testing.T) {
	template := BuildTemplate(webSpec())

	observed := template.DeepCopy()
	observed.SetNamespace("default")
	observed.SetUID("1234")
	observed.Object["status"] = map[string]any{"readyReplicas": int64(3)}
	require.NoError(t, unstructured.SetNestedField(observed.Object, int64(25), "spec", "progressDeadlineSeconds"))

	containers, _, _ := unstructured.NestedSlice(observed.Object, "spec", "template", "spec", "containers")
	containers[0].(map[string]any)["terminationMessagePath"] = "/dev/termination-log"
	containers = append(containers, map[string]any{"name": "sidecar", "image": "envoy"})
	require.NoError(t, unstructured.SetNestedSlice(observed.Object, containers, "spec", "template", "spec", "containers"))

	declared := Declared(observed, template)

	expected := template.DeepCopy()
	expectedContainers, _, _ := unstructured.NestedSlice(expected.Object, "spec", "template", "spec", "containers")
	expectedContainers = append(expectedContainers, map[string]any{"name": "sidecar", "image": "envoy"})
	require.NoError(t, unstructured.SetNestedSlice(expected.Object, expectedContainers, "spec", "template", "spec", "containers"))

	require.Equal(t, expected.Object, declared)

	require.Nil(t, Declared(nil, template))
	require.Equal(t, observed.Object, Declared(observed, nil))
}

func TestClusterError(t *testing.T) {
	t.Run("carries output", func(t *testing.T) {
		err := clusterError("Create deployment web", outputError{"stderr: boom"})

		var opErr *ClusterOperationError
		require.ErrorAs(t, err, &opErr)
		require.Equal(t, "stderr: boom", opErr.Output)
		require.EqualError(t, err, "Create deployment web: exit status 1: output: stderr: boom")
	})

	t.Run("decode errors pass through", func(t *testing.T) {
		decodeErr := &ResponseDecodeError{Name: "web", Err: errors.New("unexpected EOF")}
		require.Same(t, decodeErr, clusterError("Get deployment web", decodeErr))
	})
}

type outputError struct{ output string }

func (err outputError) Error() string  { return "exit status 1" }
func (err outputError) Output() string { return err.output }
