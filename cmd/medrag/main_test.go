package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medrag/internal/config"
	"medrag/internal/dataset"
)

func writeFixture(t *testing.T) (cfgPath, outDir string) {
	t.Helper()
	dir := t.TempDir()
	tocPath := filepath.Join(dir, "toc.txt")
	textPath := filepath.Join(dir, "text.txt")
	outDir = filepath.Join(dir, "out")
	cfgPath = filepath.Join(dir, "medrag.yaml")

	require.NoError(t, os.WriteFile(tocPath, []byte("CHAPTER: Electrolyte Disorders (Page: 1)\n"), 0o644))

	var text strings.Builder
	text.WriteString(">> CHAPTER: Electrolyte Disorders\n")
	for _, term := range []string{"sodium", "potassium", "calcium"} {
		for i := 0; i < 25; i++ {
			fmt.Fprintf(&text, "Children with %s disorders need careful monitoring of %s levels during illness and recovery.\n", term, term)
		}
	}
	require.NoError(t, os.WriteFile(textPath, []byte(text.String()), 0o644))

	cfg := fmt.Sprintf(`book:
  title: Test Book
  toc_path: %s
  text_path: %s
  source_mode: markers
profile:
  name: compact
output:
  dir: %s
  formats: [json, csv]
  identifiers: true
log_level: error
`, tocPath, textPath, outDir)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))
	return cfgPath, outDir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRunAndVerify(t *testing.T) {
	cfgPath, outDir := writeFixture(t)

	out, err := execute(t, "run", "--config", cfgPath)
	require.NoError(t, err, out)
	assert.Contains(t, out, "records:  3")

	records, err := dataset.ReadFile(filepath.Join(outDir, "dataset.json"))
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Test Book", records[0].BookTitle)
	assert.Equal(t, "CH-0001", records[0].ChapterID)

	fromCSV, err := dataset.ReadFile(filepath.Join(outDir, "dataset.csv"))
	require.NoError(t, err)
	assert.Len(t, fromCSV, 3)

	out, err = execute(t, "verify", "--config", cfgPath, filepath.Join(outDir, "dataset.csv"))
	require.NoError(t, err, out)
	assert.Contains(t, out, "rows: 3")
}

func TestRunMissingTOCFails(t *testing.T) {
	cfgPath, _ := writeFixture(t)
	_, err := execute(t, "run", "--config", cfgPath, "--toc", filepath.Join(t.TempDir(), "absent.txt"))
	runTOC = ""
	assert.ErrorContains(t, err, "missing input")
}

func TestApplyRunFlags(t *testing.T) {
	defer func() { runProfile, runOut = "", "" }()
	cfg := &config.AppConfig{Profile: config.Profiles()["fine"]}

	runProfile, runOut = "compact", "build"
	require.NoError(t, applyRunFlags(cfg))
	assert.Equal(t, 3, cfg.Profile.ChunkCount)
	assert.Equal(t, "build", cfg.Output.Dir)

	runProfile = "huge"
	assert.Error(t, applyRunFlags(cfg))
}

func TestSplitterConfigCopiesProfile(t *testing.T) {
	sc := splitterConfig(config.Profiles()["compact"])
	assert.Equal(t, 3, sc.ChunkCount)
	assert.True(t, sc.HeadingAware)
	assert.InDelta(t, 1.4, sc.Tolerance, 1e-9)
}
