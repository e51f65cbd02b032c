package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"surrobench/pkg/bench"
	"surrobench/pkg/norm"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeTrainFixtures(t *testing.T) (configPath, outputDir string) {
	t.Helper()
	dataDir := t.TempDir()
	outputDir = t.TempDir()

	split := map[string]any{
		"data": [][][]float64{
			{{1}, {2}, {3}, {4}},
			{{2}, {3}, {4}, {5}},
		},
		"timesteps":     []float64{0, 1, 2, 3},
		"normalization": norm.Disabled(),
	}
	payload, err := json.Marshal(split)
	require.NoError(t, err)
	dir := filepath.Join(dataDir, "osu2008")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, name := range []string{"train.json", "test.json"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), payload, 0o600))
	}

	configPath = filepath.Join(t.TempDir(), "config.yaml")
	config := fmt.Sprintf(`dataset: osu2008
data_dir: %s
output_dir: %s
training_id: CLIRun
surrogates: [LatentPoly]
devices: [cpu]
seed: 42
epochs: 1
batch_size: 8
accuracy: true
`, dataDir, outputDir)
	require.NoError(t, os.WriteFile(configPath, []byte(config), 0o600))
	return configPath, outputDir
}

func runTrain(t *testing.T, args ...string) {
	t.Helper()
	root := NewRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	require.NoError(t, root.Execute())
}

func snapshotConfig(t *testing.T, outputDir string) bench.Config {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(outputDir, "CLIRun", "config.yaml"))
	require.NoError(t, err)
	var cfg bench.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	return cfg
}

func TestTrainSeedFlagOverridesConfig(t *testing.T) {
	configPath, outputDir := writeTrainFixtures(t)
	reportPath := filepath.Join(t.TempDir(), "report.json")

	// An explicit zero must win over the config-file seed.
	runTrain(t, "train", "--config", configPath, "--seed", "0",
		"--format", "json", "--output", reportPath)

	cfg := snapshotConfig(t, outputDir)
	require.Equal(t, int64(0), cfg.Seed)
}

func TestTrainSeedDefaultsToConfig(t *testing.T) {
	configPath, outputDir := writeTrainFixtures(t)
	reportPath := filepath.Join(t.TempDir(), "report.json")

	runTrain(t, "train", "--config", configPath,
		"--format", "json", "--output", reportPath)

	cfg := snapshotConfig(t, outputDir)
	require.Equal(t, int64(42), cfg.Seed)

	var report bench.Report
	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &report))
	require.Equal(t, "CLIRun", report.TrainingID)
	require.Equal(t, 1, report.Succeeded())
}

func TestLoadConfigExplicitMissingPath(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadConfigDefaultSearchToleratesMiss(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Empty(t, cfg.Dataset)
}
