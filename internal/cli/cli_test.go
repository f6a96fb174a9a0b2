package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/flowcore/internal/xjson"
	"github.com/viant/flowcore/model/run"
	"github.com/viant/flowcore/model/snapshot"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(append([]string{"--env", "", "--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestValidate(t *testing.T) {
	var testCases = []struct {
		description string
		file        string
		expectErr   string
		expectOut   string
	}{
		{description: "valid", file: "order.yaml", expectOut: `definition "Order" is valid: 4 nodes, 4 edges`},
		{description: "unreachable", file: "unreachable.yaml", expectErr: "not reachable from START"},
		{description: "missing file", file: "none.yaml", expectErr: "failed to load definition"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			out, err := runCommand(t, "validate", filepath.Join("testdata", testCase.file))
			if testCase.expectErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), testCase.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out, testCase.expectOut)
		})
	}
}

func TestPlan(t *testing.T) {
	out, err := runCommand(t, "plan", filepath.Join("testdata", "order.yaml"))
	require.NoError(t, err)
	doc, err := snapshot.Decode([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, []string{"START", "reserve", "charge", "END"}, doc.ExecutionPlan)
	assert.Equal(t, []string{"reserve", "charge"}, doc.Dependencies("END"))
	assert.Equal(t, 1, doc.Version)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	location := filepath.Join("testdata", "order.yaml")
	for i := 0; i < 2; i++ {
		out, err := runCommand(t, "--store", "fs", "--store-url", dir, "run", location, "--input", `{"orderId":7}`, "--timeout", "5s")
		require.NoError(t, err)
		result := &run.Result{}
		require.NoError(t, xjson.Unmarshal([]byte(out), result))
		assert.Equal(t, run.StatusSuccess, result.Status)
		assert.Equal(t, i+1, result.Version)
		assert.Len(t, result.ExecutedNodes, 4)
	}

	_, err := runCommand(t, "run", location, "--input", "[1")
	assert.Error(t, err)
}
