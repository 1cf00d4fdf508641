// Package report prints the human-readable console summary of a heading run.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/banshee-data/imu-heading/internal/heading"
	"github.com/banshee-data/imu-heading/internal/nodes"
	"github.com/banshee-data/imu-heading/internal/rotation"
)

const (
	title     = "imu-heading - mean heading and 3D frame visualisation"
	ruleWidth = 60
)

// Reporter writes the run summary to an io.Writer. Write errors are sticky:
// after the first one every call is a no-op and Err reports it.
type Reporter struct {
	w     io.Writer
	runID string
	err   error
}

// New returns a Reporter writing to w. runID may be empty.
func New(w io.Writer, runID string) *Reporter {
	return &Reporter{w: w, runID: runID}
}

// Err returns the first write error, if any.
func (r *Reporter) Err() error { return r.err }

func (r *Reporter) printf(format string, v ...interface{}) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format, v...)
}

func (r *Reporter) rule(width int) {
	r.printf("%s\n", strings.Repeat("=", width))
}

// Banner prints the run header.
func (r *Reporter) Banner() {
	r.rule(ruleWidth)
	r.printf("  %s\n", title)
	if r.runID != "" {
		r.printf("  run %s\n", r.runID)
	}
	r.rule(ruleWidth)
}

// Files lists the discovered input files by base name.
func (r *Reporter) Files(paths []string) {
	r.printf("\nFound %d files:\n", len(paths))
	for _, p := range paths {
		r.printf("   - %s\n", filepath.Base(p))
	}
}

// Headings prints one section per loaded node, in load order, for the
// aggregation in res.
func (r *Reporter) Headings(ns []*nodes.Node, res *heading.Result) {
	r.printf("\nComputing mean heading (first %d samples):\n", res.Options.Samples)

	skipped := make(map[string]error, len(res.Skipped))
	for _, s := range res.Skipped {
		skipped[s.Name] = s.Reason
	}

	for _, n := range ns {
		r.printf("\n  * %s:\n", n.Name)
		if reason, ok := skipped[n.Name]; ok {
			r.printf("    x quaternions not found, skipping node (%v)\n", reason)
			continue
		}
		h, ok := res.Nodes[n.Name]
		if !ok {
			continue
		}
		r.node(h, res.Options.ReconstructionThreshold)
	}
}

func (r *Reporter) node(h *heading.NodeHeading, threshold float64) {
	r.printf("    ok %d samples extracted (of %d total)\n", h.Used, h.Total)
	r.printf("    ok mean heading computed\n")

	r.printf("\n    EXTRINSIC angles (fixed global axes):\n")
	r.angles(h.Extrinsic)
	r.printf("\n    INTRINSIC angles (moving axes):\n")
	r.angles(h.Intrinsic)

	if h.Gimbal != rotation.Regular {
		r.printf("\n    gimbal lock (%s): roll fixed at 0, yaw carries the combined rotation\n", h.Gimbal)
	}

	r.printf("\n    Matrix reconstruction check:\n")
	r.printf("       Frobenius error: %.6f\n", h.ExtrinsicError)
	if h.Exceeded {
		r.printf("       WARNING: significant conversion error (> %g)\n", threshold)
	}
	r.printf("       Intrinsic Frobenius error: %.6f\n", h.IntrinsicError)
}

func (r *Reporter) angles(a rotation.Angles) {
	r.printf("       Roll  (X): %8.3f°\n", a.Roll)
	r.printf("       Pitch (Y): %8.3f°\n", a.Pitch)
	r.printf("       Yaw   (Z): %8.3f°\n", a.Yaw)
}

// Procedure prints, for every node in sorted order, the intrinsic rotation
// sequence that reproduces its mean orientation.
func (r *Reporter) Procedure(res *heading.Result) {
	r.printf("\n")
	r.rule(80)
	r.printf("  INTRINSIC ROTATION PROCEDURE (moving axes)\n")
	r.rule(80)

	for _, name := range res.Names() {
		a := res.Nodes[name].Intrinsic
		r.printf("\n  %s:\n", name)
		r.printf("     1. Start from the reference frame (identity)\n")
		r.printf("     2. Rotate %8.3f° about the current X axis\n", a.Roll)
		r.printf("        -> Y and Z move with the frame\n")
		r.printf("     3. Rotate %8.3f° about the NEW Y axis (already rotated)\n", a.Pitch)
		r.printf("        -> X and Z move again\n")
		r.printf("     4. Rotate %8.3f° about the NEW Z axis (after the first two rotations)\n", a.Yaw)
		r.printf("        -> final orientation reached\n")
	}
}

// Outputs lists the figures written during the run.
func (r *Reporter) Outputs(paths []string) {
	if len(paths) == 0 {
		return
	}
	r.printf("\nFigures written:\n")
	for _, p := range paths {
		r.printf("   - %s\n", p)
	}
}

// Done prints the completion banner.
func (r *Reporter) Done() {
	r.printf("\n")
	r.rule(ruleWidth)
	r.printf("  Processing complete!\n")
	r.rule(ruleWidth)
}

// Failure prints a terminal error.
func (r *Reporter) Failure(err error) {
	r.printf("\nError: %v\n", err)
}
