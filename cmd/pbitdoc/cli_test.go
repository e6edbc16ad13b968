package main

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const schemaJSON = `{"model":{"tables":[
  {"name":"Sales","columns":[{"name":"CustomerID","dataType":"int64"}]},
  {"name":"Customers","columns":[{"name":"CustomerID","dataType":"int64"},{"name":"Name","dataType":"string"}]}
 ],"relationships":[
  {"fromTable":"Sales","fromColumn":"CustomerID","toTable":"Customers","toColumn":"CustomerID"}
 ]}}`

func writePBIT(t *testing.T, name string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("DataModelSchema")
	require.NoError(t, err)
	_, err = w.Write([]byte(schemaJSON))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("PBITDOC_LETTERHEAD", "")
	t.Setenv("LOG_LEVEL", "error")

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "none.env")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "pbitdoc version dev (commit: none)\n", out)
}

func TestRender_DefaultOutput(t *testing.T) {
	in := writePBIT(t, "Sales.pbit")

	out, err := runCLI(t, "render", in)
	require.NoError(t, err)

	want := filepath.Join(filepath.Dir(in), "Sales_erd_final.pdf")
	assert.True(t, strings.HasPrefix(out, want+": "))
	assert.Contains(t, out, "2 tables, 1 relationships")

	pdf, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF-")))
}

func TestRender_ExplicitOutputAndFlags(t *testing.T) {
	in := writePBIT(t, "Sales.pbit")
	outPath := filepath.Join(t.TempDir(), "docs.pdf")

	_, err := runCLI(t, "render", in, "-o", outPath, "--author", "BI Team", "--compress=false")
	require.NoError(t, err)

	pdf, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(pdf), "(Sales)")
	assert.Contains(t, string(pdf), "/Author (")
}

func TestRender_Errors(t *testing.T) {
	_, err := runCLI(t, "render", filepath.Join(t.TempDir(), "missing.pbit"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.pbit")
	require.NoError(t, os.WriteFile(bad, []byte("not a zip"), 0o600))
	_, err = runCLI(t, "render", bad)
	assert.ErrorContains(t, err, "not a valid archive")

	_, err = runCLI(t, "render")
	assert.Error(t, err)
}

func TestInspect_JSON(t *testing.T) {
	in := writePBIT(t, "Sales.pbit")

	out, err := runCLI(t, "inspect", in)
	require.NoError(t, err)

	var body struct {
		Stats struct {
			Tables  int `json:"tables"`
			Columns int `json:"columns"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.Equal(t, 2, body.Stats.Tables)
	assert.Equal(t, 3, body.Stats.Columns)
}

func TestInspect_Summary(t *testing.T) {
	in := writePBIT(t, "Sales.pbit")

	out, err := runCLI(t, "inspect", "--summary", in)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "TABLE"))
	assert.Equal(t, []string{"Customers", "2", "0", "1"}, strings.Fields(lines[2]))
}

func TestMCP_ToolsList(t *testing.T) {
	t.Setenv("PBITDOC_LETTERHEAD", "")
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}` + "\n"))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--env-file", "", "mcp"})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), `"render_pbit"`)
	assert.Contains(t, out.String(), `"inspect_pbit"`)
}

func TestDefaultOutputPath(t *testing.T) {
	tests := map[string]string{
		filepath.Join("dir", "Sales.pbit"): filepath.Join("dir", "Sales_erd_final.pdf"),
		"model.zip":                        "model.pdf",
		"model":                            "model.pdf",
		"model.pdf":                        "model.pdf.pdf",
	}
	for in, want := range tests {
		assert.Equal(t, want, defaultOutputPath(in), in)
	}
}
