package main

import (
	"bytes"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/imu-heading/internal/config"
	"github.com/banshee-data/imu-heading/internal/fsutil"
	"github.com/banshee-data/imu-heading/internal/heading"
	"github.com/banshee-data/imu-heading/internal/monitoring"
	"github.com/banshee-data/imu-heading/internal/nodes"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("imu-heading", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func muteLogs(t *testing.T) {
	t.Helper()
	original := monitoring.Logf
	t.Cleanup(func() { monitoring.Logf = original })
	monitoring.SetLogger(nil)
}

func TestParseFlagsDefaults(t *testing.T) {
	cfg, err := parseFlags(newFlagSet(), nil)
	require.NoError(t, err)

	assert.Nil(t, cfg.InputDir)
	assert.Equal(t, 100, cfg.GetSamples())
	assert.Equal(t, 0.01, cfg.GetReconstructionThreshold())
	assert.Equal(t, 3, cfg.GetCombinedMinNode())
	assert.Equal(t, 12, cfg.GetCombinedMaxNode())
	assert.False(t, cfg.GetOpenBrowser())
	assert.Equal(t, filepath.Join("bin", config.DefaultInputSubdir), cfg.GetInputDir("bin"))
}

func TestParseFlagsOverrides(t *testing.T) {
	cfg, err := parseFlags(newFlagSet(), []string{
		"-input", "/data/in", "-output", "/data/out", "-samples", "20",
		"-min-node", "1", "-max-node", "4", "-open",
	})
	require.NoError(t, err)

	assert.Equal(t, "/data/in", cfg.GetInputDir("bin"))
	assert.Equal(t, "/data/out", cfg.GetOutputDir("bin"))
	assert.Equal(t, 20, cfg.GetSamples())
	assert.Equal(t, 1, cfg.GetCombinedMinNode())
	assert.Equal(t, 4, cfg.GetCombinedMaxNode())
	assert.True(t, cfg.GetOpenBrowser())
}

func TestParseFlagsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heading.yaml")
	require.NoError(t, os.WriteFile(path, []byte("samples: 40\ncombined_max_node: 9\n"), 0644))

	cfg, err := parseFlags(newFlagSet(), []string{"-config", path, "-samples", "7"})
	require.NoError(t, err)

	// Explicit flag wins, file value kept otherwise.
	assert.Equal(t, 7, cfg.GetSamples())
	assert.Equal(t, 9, cfg.GetCombinedMaxNode())
}

func TestParseFlagsVersion(t *testing.T) {
	_, err := parseFlags(newFlagSet(), []string{"-version", "-samples", "0"})
	assert.ErrorIs(t, err, errShowVersion)
}

func TestParseFlagsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"inverted range", []string{"-min-node", "8", "-max-node", "2"}},
		{"zero samples", []string{"-samples", "0"}},
		{"positional", []string{"extra"}},
		{"unknown flag", []string{"-bogus"}},
		{"missing config", []string{"-config", filepath.Join(t.TempDir(), "absent.json")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFlags(newFlagSet(), tt.args)
			assert.Error(t, err)
		})
	}
}

const quatHeader = "timestamp,qw,qx,qy,qz\n"

// yaw 30 degrees
const yaw30Row = "0,0.9659258262890683,0,0,0.25881904510252074\n"

func writeNode(t *testing.T, fsys *fsutil.MemoryFileSystem, name, body string) {
	t.Helper()
	require.NoError(t, fsys.WriteFile(filepath.Join("in", name), []byte(body), 0644))
}

func testConfig() *config.AnalysisConfig {
	cfg := config.EmptyAnalysisConfig()
	in, out := "in", "out"
	cfg.InputDir = &in
	cfg.OutputDir = &out
	return cfg
}

func TestRun(t *testing.T) {
	muteLogs(t)
	fsys := fsutil.NewMemoryFileSystem()
	writeNode(t, fsys, "node3.csv", quatHeader+strings.Repeat(yaw30Row, 3))
	writeNode(t, fsys, "node10_1.csv", quatHeader+yaw30Row)
	writeNode(t, fsys, "node20.csv", quatHeader+yaw30Row)
	writeNode(t, fsys, "node4.csv", "timestamp,qw,qx,qy\n0,1,0,0\n")
	writeNode(t, fsys, "notes.txt", "ignored")

	var out bytes.Buffer
	require.NoError(t, run(testConfig(), "bin", fsys, &out))

	report := out.String()
	assert.Contains(t, report, "Found 4 files:")
	assert.Contains(t, report, "3 samples extracted (of 3 total)")
	assert.Contains(t, report, "node4:\n    x quaternions not found")
	assert.Contains(t, report, "Yaw   (Z):   30.000°")
	assert.Contains(t, report, "INTRINSIC ROTATION PROCEDURE")
	assert.Contains(t, report, "Processing complete!")

	for _, name := range []string{
		"mean_headings_3d_node3.png",
		"mean_headings_3d_node10.png",
		"mean_headings_3d_node20.png",
		"mean_headings_3d_grouped.html",
		"mean_headings_3d_combined_node3_to_12.png",
		"mean_headings_3d_combined_node3_to_12.html",
	} {
		assert.True(t, fsys.Exists(filepath.Join("out", name)), "missing %s", name)
	}
	assert.False(t, fsys.Exists(filepath.Join("out", "mean_headings_3d_node4.png")))

	html, err := fsys.ReadFile(filepath.Join("out", "mean_headings_3d_combined_node3_to_12.html"))
	require.NoError(t, err)
	assert.NotContains(t, string(html), "node20 -")
}

func TestRunDefaultInputDir(t *testing.T) {
	muteLogs(t)
	fsys := fsutil.NewMemoryFileSystem()
	require.NoError(t, fsys.WriteFile(filepath.Join("bin", config.DefaultInputSubdir, "node5.csv"),
		[]byte(quatHeader+yaw30Row), 0644))

	var out bytes.Buffer
	require.NoError(t, run(config.EmptyAnalysisConfig(), "bin", fsys, &out))
	assert.True(t, fsys.Exists(filepath.Join("bin", "mean_headings_3d_combined_node3_to_12.png")))
}

func TestRunNoInputFiles(t *testing.T) {
	muteLogs(t)
	fsys := fsutil.NewMemoryFileSystem()
	writeNode(t, fsys, "sensor1.csv", quatHeader+yaw30Row)

	var out bytes.Buffer
	err := run(testConfig(), "bin", fsys, &out)
	require.ErrorIs(t, err, nodes.ErrNoInputFiles)
	assert.Contains(t, out.String(), "Error:")
	assert.NotContains(t, out.String(), "Processing complete!")
	assert.Equal(t, []string{filepath.Join("in", "sensor1.csv")}, fsys.Files())
}

func TestRunNoHeadings(t *testing.T) {
	muteLogs(t)
	fsys := fsutil.NewMemoryFileSystem()
	writeNode(t, fsys, "node3.csv", "timestamp,qx,qy,qz\n0,0,0,0\n")

	var out bytes.Buffer
	err := run(testConfig(), "bin", fsys, &out)
	require.ErrorIs(t, err, heading.ErrNoHeadings)
	assert.Contains(t, out.String(), "no heading computed")
	for _, f := range fsys.Files() {
		assert.False(t, strings.HasPrefix(f, "out"), "unexpected output %s", f)
	}
}

func TestRunOpensHTML(t *testing.T) {
	muteLogs(t)
	original := openBrowser
	t.Cleanup(func() { openBrowser = original })

	var opened []string
	openBrowser = func(path string) error {
		opened = append(opened, filepath.Base(path))
		if len(opened) == 1 {
			return errors.New("no display")
		}
		return nil
	}

	fsys := fsutil.NewMemoryFileSystem()
	writeNode(t, fsys, "node3.csv", quatHeader+yaw30Row)
	cfg := testConfig()
	yes := true
	cfg.OpenBrowser = &yes

	var out bytes.Buffer
	require.NoError(t, run(cfg, "bin", fsys, &out))
	assert.Equal(t, []string{
		"mean_headings_3d_grouped.html",
		"mean_headings_3d_combined_node3_to_12.html",
	}, opened)
}
