package visualiser

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/imu-heading/internal/fsutil"
	"github.com/banshee-data/imu-heading/internal/monitoring"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func captureLogs(t *testing.T) *[]string {
	t.Helper()
	original := monitoring.Logf
	t.Cleanup(func() { monitoring.Logf = original })

	var lines []string
	monitoring.SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})
	return &lines
}

func smallRenderer(fsys fsutil.FileSystem) *Renderer {
	r := NewRenderer(fsys, "out")
	r.Width, r.Height = 4*vg.Inch, 3*vg.Inch
	r.RunID = "run-1234"
	return r
}

func TestFileNames(t *testing.T) {
	assert.Equal(t, "mean_headings_3d_node10.png", GroupedPNGName("node10"))
	assert.Equal(t, "mean_headings_3d_grouped.html", GroupedHTMLName())
	assert.Equal(t, "mean_headings_3d_combined_node3_to_12.png", CombinedName(3, 12, ".png"))
	assert.Equal(t, "mean_headings_3d_combined_node3_to_12.html", CombinedName(3, 12, ".html"))
}

func TestNewRendererDefaults(t *testing.T) {
	r := NewRenderer(fsutil.NewMemoryFileSystem(), "out")
	assert.Equal(t, DefaultCamera(), r.Camera)
	assert.Equal(t, 3, r.MinNode)
	assert.Equal(t, 12, r.MaxNode)
	assert.Equal(t, 14*vg.Inch, r.Width)
	assert.Equal(t, 11*vg.Inch, r.Height)
}

func TestRenderGrouped(t *testing.T) {
	captureLogs(t)
	fsys := fsutil.NewMemoryFileSystem()
	r := smallRenderer(fsys)

	written, err := r.RenderGrouped(sampleRotations("node10_1", "node10_2", "node3"))
	require.NoError(t, err)

	want := []string{
		filepath.Join("out", "mean_headings_3d_node10.png"),
		filepath.Join("out", "mean_headings_3d_node3.png"),
		filepath.Join("out", "mean_headings_3d_grouped.html"),
	}
	assert.Equal(t, want, written)
	assert.Equal(t, []string{want[2], want[0], want[1]}, fsys.Files())

	for _, p := range want[:2] {
		data, err := fsys.ReadFile(p)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, pngMagic), "%s is not a PNG", p)
	}

	html, err := fsys.ReadFile(want[2])
	require.NoError(t, err)
	page := string(html)
	assert.Contains(t, page, "node10_2 - Y")
	assert.Contains(t, page, "node3 - Z")
	assert.Contains(t, page, "run-1234")
	assert.Contains(t, page, "dashed")
}

func TestRenderGroupedEmpty(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	written, err := smallRenderer(fsys).RenderGrouped(nil)
	require.NoError(t, err)
	assert.Empty(t, written)
	assert.Empty(t, fsys.Files())
}

func TestRenderCombined(t *testing.T) {
	logs := captureLogs(t)
	fsys := fsutil.NewMemoryFileSystem()
	r := smallRenderer(fsys)

	written, err := r.RenderCombined(sampleRotations("node2", "node3", "node12_1", "node13"))
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join("out", "mean_headings_3d_combined_node3_to_12.png"),
		filepath.Join("out", "mean_headings_3d_combined_node3_to_12.html"),
	}, written)

	data, err := fsys.ReadFile(written[0])
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))

	html, err := fsys.ReadFile(written[1])
	require.NoError(t, err)
	page := string(html)
	assert.Contains(t, page, "ENU - X (East)")
	assert.Contains(t, page, "node12_1 - X")
	assert.NotContains(t, page, "node13")
	assert.NotContains(t, page, "node2 -")

	for _, l := range *logs {
		assert.False(t, strings.HasPrefix(l, "warning:"), "unexpected warning %q", l)
	}
}

func TestRenderCombinedEmptyRange(t *testing.T) {
	logs := captureLogs(t)
	fsys := fsutil.NewMemoryFileSystem()

	written, err := smallRenderer(fsys).RenderCombined(sampleRotations("node1", "node20_3"))
	require.NoError(t, err)
	assert.Empty(t, written)
	assert.Empty(t, fsys.Files())
	require.Len(t, *logs, 1)
	assert.Contains(t, (*logs)[0], "no nodes found in range node3-node12")
}

func TestRenderCombinedCustomRange(t *testing.T) {
	captureLogs(t)
	fsys := fsutil.NewMemoryFileSystem()
	r := smallRenderer(fsys)
	r.MinNode, r.MaxNode = 1, 2

	written, err := r.RenderCombined(sampleRotations("node1", "node3"))
	require.NoError(t, err)
	require.Len(t, written, 2)
	assert.Equal(t, "mean_headings_3d_combined_node1_to_2.png", filepath.Base(written[0]))
}
