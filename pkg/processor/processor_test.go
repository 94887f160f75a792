package processor

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glesirok/treemapper/pkg/engine"
	"github.com/glesirok/treemapper/pkg/loader"
)

const mapYAML = `
map:
  "[name]": "[basics][name]"
  "[work][*][company]": "[jobs][*][employer]"
layout:
  default: VALUE
  paths:
    "[jobs]": TABLE
`

const resumeJSON = `{"name": "Ada", "work": [{"company": "A"}, {"company": "B"}]}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	file := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(file), 0755))
	require.NoError(t, os.WriteFile(file, []byte(content), 0644))
	return file
}

func newProcessor(t *testing.T, mapContent string, opts Options) *Processor {
	t.Helper()
	mapFile := writeFile(t, t.TempDir(), "map.yaml", mapContent)
	proc, err := NewProcessor(mapFile, engine.NewEngine(), opts)
	require.NoError(t, err)
	return proc
}

func TestProcessFileTranslate(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "resume.json", resumeJSON)
	output := filepath.Join(dir, "out", "resume.json")

	proc := newProcessor(t, mapYAML, Options{})
	require.NoError(t, proc.ProcessFile(context.Background(), ActionTranslate, input, output))

	got, err := loader.LoadFile(output)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"basics": map[string]any{"name": "Ada"},
		"jobs": []any{
			map[string]any{"employer": "A"},
			map[string]any{"employer": "B"},
		},
	}, got)
}

func TestProcessFileNormalizeToStdout(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "resume.yaml", "name: Ada\nwork:\n  - company: A\n  - company: B\n")

	var stdout bytes.Buffer
	proc := newProcessor(t, mapYAML, Options{Format: loader.FormatJSON, Stdout: &stdout})
	require.NoError(t, proc.ProcessFile(context.Background(), ActionNormalize, input, ""))

	assert.Equal(t, `{
  "[name]": "[basics][name]",
  "[work][0][company]": "[jobs][0][employer]",
  "[work][1][company]": "[jobs][1][employer]"
}
`, stdout.String())
}

func TestProcessFileDryRun(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "resume.json", resumeJSON)
	output := filepath.Join(dir, "out.json")

	var stdout bytes.Buffer
	proc := newProcessor(t, mapYAML, Options{DryRun: true, Stdout: &stdout})
	require.NoError(t, proc.ProcessFile(context.Background(), ActionTranslate, input, output))

	assert.Contains(t, stdout.String(), "=== Dry-run: "+input+" ===")
	assert.Contains(t, stdout.String(), `"employer": "B"`)
	assert.NoFileExists(t, output)
}

func TestProcessFileLayout(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "resume.json", resumeJSON)

	var stdout bytes.Buffer
	proc := newProcessor(t, mapYAML, Options{Format: loader.FormatYAML, Stdout: &stdout})
	require.NoError(t, proc.ProcessFile(context.Background(), ActionLayout, input, ""))

	out := stdout.String()
	assert.Contains(t, out, "tag: TABLE")
	assert.Contains(t, out, "tag: TABLE_ROW")
	assert.Contains(t, out, `"[work][1][company]": "[jobs][1][employer]"`)
}

func TestProcessFileErrors(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	t.Run("validate reports unreadable source", func(t *testing.T) {
		input := writeFile(t, dir, "no-name.json", `{"work": []}`)
		proc := newProcessor(t, mapYAML, Options{})

		err := proc.ProcessFile(ctx, ActionValidate, input, "")
		require.Error(t, err)
		assert.ErrorIs(t, err, engine.ErrUnableToMap)
	})

	t.Run("validate passes", func(t *testing.T) {
		input := writeFile(t, dir, "ok.json", resumeJSON)
		proc := newProcessor(t, mapYAML, Options{})
		assert.NoError(t, proc.ProcessFile(ctx, ActionValidate, input, ""))
	})

	t.Run("layout without layout section", func(t *testing.T) {
		input := writeFile(t, dir, "resume.json", resumeJSON)
		proc := newProcessor(t, "map:\n  \"[name]\": \"[n]\"\n", Options{})

		err := proc.ProcessFile(ctx, ActionLayout, input, "")
		assert.ErrorContains(t, err, "layout section is required")
	})

	t.Run("unknown action", func(t *testing.T) {
		input := writeFile(t, dir, "resume.json", resumeJSON)
		proc := newProcessor(t, mapYAML, Options{})
		assert.Error(t, proc.ProcessFile(ctx, Action("delete"), input, ""))
	})

	t.Run("missing map file", func(t *testing.T) {
		_, err := NewProcessor(filepath.Join(dir, "missing.yaml"), engine.NewEngine(), Options{})
		assert.Error(t, err)
	})
}

func TestProcessDirectory(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := filepath.Join(t.TempDir(), "out")

	writeFile(t, inputDir, "a.json", resumeJSON)
	writeFile(t, inputDir, "nested/b.yaml", "name: Bob\nwork: []\n")
	writeFile(t, inputDir, "notes.txt", "ignored")

	proc := newProcessor(t, mapYAML, Options{Format: loader.FormatYAML, Jobs: 2})
	require.NoError(t, proc.ProcessDirectory(context.Background(), ActionTranslate, inputDir, outputDir))

	a, err := loader.LoadFile(filepath.Join(outputDir, "a.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Ada", a.(map[string]any)["basics"].(map[string]any)["name"])

	b, err := loader.LoadFile(filepath.Join(outputDir, "nested", "b.yaml"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"basics": map[string]any{"name": "Bob"}}, b)

	assert.NoFileExists(t, filepath.Join(outputDir, "notes.yaml"))
}

func TestProcessDirectoryKeepGoing(t *testing.T) {
	inputDir := t.TempDir()
	writeFile(t, inputDir, "a.json", resumeJSON)
	writeFile(t, inputDir, "b.json", `{"name": "Bob"}`)
	writeFile(t, inputDir, "c.json", `{"name": "Cy", "work": "none"}`)

	t.Run("stops on first error", func(t *testing.T) {
		outputDir := t.TempDir()
		proc := newProcessor(t, mapYAML, Options{})
		err := proc.ProcessDirectory(context.Background(), ActionTranslate, inputDir, outputDir)
		require.Error(t, err)
	})

	t.Run("collects every error", func(t *testing.T) {
		outputDir := t.TempDir()
		proc := newProcessor(t, mapYAML, Options{KeepGoing: true, Jobs: 3})
		err := proc.ProcessDirectory(context.Background(), ActionTranslate, inputDir, outputDir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "b.json")
		assert.Contains(t, err.Error(), "c.json")
		assert.FileExists(t, filepath.Join(outputDir, "a.json"))
	})
}
