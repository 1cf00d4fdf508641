package visualiser

import (
	"fmt"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/imu-heading/internal/fsutil"
	"github.com/banshee-data/imu-heading/internal/monitoring"
)

const filePrefix = "mean_headings_3d_"

// Renderer writes grouped and combined orientation figures to OutputDir.
type Renderer struct {
	FS        fsutil.FileSystem
	OutputDir string
	Camera    Camera

	Width, Height vg.Length

	// Samples is the per-node sample budget, shown in titles.
	Samples int
	// MinNode and MaxNode bound the combined figure (inclusive).
	MinNode, MaxNode int
	// RunID, when set, is shown as the HTML subtitle.
	RunID string
}

// NewRenderer returns a Renderer with the default camera, a 14x11 inch
// figure and the node range 3 to 12.
func NewRenderer(fsys fsutil.FileSystem, outputDir string) *Renderer {
	return &Renderer{
		FS:        fsys,
		OutputDir: outputDir,
		Camera:    DefaultCamera(),
		Width:     14 * vg.Inch,
		Height:    11 * vg.Inch,
		Samples:   100,
		MinNode:   3,
		MaxNode:   12,
	}
}

// GroupedPNGName is the file name of a group's figure.
func GroupedPNGName(group string) string {
	return filePrefix + group + ".png"
}

// GroupedHTMLName is the file name of the page holding every group.
func GroupedHTMLName() string {
	return filePrefix + "grouped.html"
}

// CombinedName is the file name of the combined figure with the given
// extension (".png" or ".html").
func CombinedName(lo, hi int, ext string) string {
	return fmt.Sprintf("%scombined_node%d_to_%d%s", filePrefix, lo, hi, ext)
}

// RenderGrouped writes one PNG per name prefix plus a single HTML page with
// a chart per group. It returns the written paths.
func (r *Renderer) RenderGrouped(rotations map[string]*mat.Dense) ([]string, error) {
	if len(rotations) == 0 {
		return nil, nil
	}
	if err := r.FS.MkdirAll(r.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	groups := GroupByPrefix(rotations)
	var (
		written []string
		figs    []figure
	)
	for _, name := range GroupNames(groups) {
		fig := figure{
			Title:    fmt.Sprintf("Mean heading - %s (first %d samples)", strings.ToUpper(name), r.Samples),
			Subtitle: r.subtitle("Overlaid 3D frames"),
			Frames:   groups[name],
		}
		path := filepath.Join(r.OutputDir, GroupedPNGName(name))
		if err := writePNG(r.FS, path, fig, r.Camera, r.Width, r.Height); err != nil {
			return written, fmt.Errorf("group %s: %w", name, err)
		}
		monitoring.Logf("plot saved: %s (%d nodes)", path, len(fig.Frames))
		written = append(written, path)
		figs = append(figs, fig)
	}

	path := filepath.Join(r.OutputDir, GroupedHTMLName())
	if err := writeHTML(r.FS, path, figs); err != nil {
		return written, err
	}
	return append(written, path), nil
}

// RenderCombined writes one figure holding every node in [MinNode, MaxNode]
// over the world ENU frame. An empty range is logged and writes nothing.
func (r *Renderer) RenderCombined(rotations map[string]*mat.Dense) ([]string, error) {
	frames := FilterRange(rotations, r.MinNode, r.MaxNode)
	if len(frames) == 0 {
		monitoring.Warnf("no nodes found in range node%d-node%d", r.MinNode, r.MaxNode)
		return nil, nil
	}
	if err := r.FS.MkdirAll(r.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	fig := figure{
		Title:     fmt.Sprintf("Mean heading - NODE %d-%d (first %d samples)", r.MinNode, r.MaxNode, r.Samples),
		Subtitle:  r.subtitle("Overlaid 3D frames - ENU reference"),
		Frames:    frames,
		Reference: true,
	}

	png := filepath.Join(r.OutputDir, CombinedName(r.MinNode, r.MaxNode, ".png"))
	if err := writePNG(r.FS, png, fig, r.Camera, r.Width, r.Height); err != nil {
		return nil, fmt.Errorf("combined: %w", err)
	}
	monitoring.Logf("plot saved: %s (%d nodes)", png, len(frames))

	html := filepath.Join(r.OutputDir, CombinedName(r.MinNode, r.MaxNode, ".html"))
	if err := writeHTML(r.FS, html, []figure{fig}); err != nil {
		return []string{png}, err
	}
	return []string{png, html}, nil
}

func (r *Renderer) subtitle(s string) string {
	if r.RunID == "" {
		return s
	}
	return s + " - run " + r.RunID
}
