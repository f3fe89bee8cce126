package text

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	current, err := ToYamlFile("current", map[string]any{"image": "nginx:1.27", "replicas": 1})
	require.NoError(t, err)

	next, err := ToYamlFile("next", map[string]any{"image": "nginx:1.28", "replicas": 1})
	require.NoError(t, err)

	require.Equal(
		t,
		strings.Join([]string{
			"--- current",
			"+++ next",
			"@@ -1,2 +1,2 @@",
			"-image: nginx:1.27",
			"+image: nginx:1.28",
			" replicas: 1",
			"",
		}, "\n"),
		Diff(current, next, 4),
	)

	require.Empty(t, Diff(current, current, 4))
}

func TestDiffColorized(t *testing.T) {
	diff := DiffColorized(File{Name: "a", Content: "x\n"}, File{Name: "b", Content: "y\n"}, 1)

	lines := strings.Split(diff, "\n")
	require.Equal(t, "--- a", lines[0])
	require.Equal(t, "+++ b", lines[1])
	require.Equal(t, red.Sprint("-x"), lines[3])
	require.Equal(t, green.Sprint("+y"), lines[4])
}
