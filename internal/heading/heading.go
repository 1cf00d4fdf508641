// Package heading turns loaded nodes into mean orientations and the angle
// triples reported for them.
package heading

import (
	"errors"
	"sort"

	"github.com/banshee-data/imu-heading/internal/monitoring"
	"github.com/banshee-data/imu-heading/internal/nodes"
	"github.com/banshee-data/imu-heading/internal/rotation"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

const (
	// DefaultSamples is how many leading samples of each node are averaged.
	DefaultSamples = 100
	// DefaultReconstructionThreshold is the Frobenius error above which the
	// angle round trip is flagged.
	DefaultReconstructionThreshold = 0.01
)

// ErrNoHeadings is returned when no node produced a mean rotation.
var ErrNoHeadings = errors.New("no heading computed")

// Options controls the aggregation.
type Options struct {
	Samples                 int
	ReconstructionThreshold float64
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Samples:                 DefaultSamples,
		ReconstructionThreshold: DefaultReconstructionThreshold,
	}
}

func (o Options) withDefaults() Options {
	if o.Samples <= 0 {
		o.Samples = DefaultSamples
	}
	if o.ReconstructionThreshold <= 0 {
		o.ReconstructionThreshold = DefaultReconstructionThreshold
	}
	return o
}

// NodeHeading is the mean orientation of one node and its derived angles.
type NodeHeading struct {
	Name string
	// Used is the number of samples averaged, Total the number available.
	Used  int
	Total int

	Rotation *mat.Dense
	// Extrinsic and Intrinsic are in degrees.
	Extrinsic rotation.Angles
	Intrinsic rotation.Angles
	// Gimbal is the decomposition branch the extrinsic angles came from.
	Gimbal rotation.GimbalCase

	// ExtrinsicError is ‖R − RPYToMatrix(extrinsic)‖_F; Exceeded is set when
	// it is above the configured threshold.
	ExtrinsicError float64
	Exceeded       bool
	// IntrinsicError is the same check for the intrinsic decomposition.
	IntrinsicError float64
}

// SkippedNode records a node left out of the aggregation.
type SkippedNode struct {
	Name   string
	Reason error
}

// Result holds the per-node headings of a run.
type Result struct {
	Nodes   map[string]*NodeHeading
	Skipped []SkippedNode
	Options Options
}

// Names returns the node names in lexicographic order.
func (r *Result) Names() []string {
	names := make([]string, 0, len(r.Nodes))
	for name := range r.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Rotations maps each node name to its mean rotation matrix.
func (r *Result) Rotations() map[string]*mat.Dense {
	out := make(map[string]*mat.Dense, len(r.Nodes))
	for name, h := range r.Nodes {
		out[name] = h.Rotation
	}
	return out
}

// Aggregate computes the heading of every usable node. Nodes missing
// quaternion columns are skipped with a diagnostic. If no node is usable the
// partial result is returned together with ErrNoHeadings.
func Aggregate(ns []*nodes.Node, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	res := &Result{
		Nodes:   make(map[string]*NodeHeading, len(ns)),
		Options: opts,
	}

	for _, n := range ns {
		if err := n.Err(); err != nil {
			monitoring.Warnf("skipping node %s: %v", n.Name, err)
			res.Skipped = append(res.Skipped, SkippedNode{Name: n.Name, Reason: err})
			continue
		}
		res.Nodes[n.Name] = Compute(n.Name, n.Quaternions(opts.Samples), len(n.Samples), opts)
	}

	if len(res.Nodes) == 0 {
		return res, ErrNoHeadings
	}
	return res, nil
}

// Compute derives the heading of one node from the samples to average.
// total is the number of samples the node had before truncation.
func Compute(name string, qs []quat.Number, total int, opts Options) *NodeHeading {
	h := FromRotation(name, rotation.MeanRotation(qs), opts)
	h.Used = len(qs)
	h.Total = total
	return h
}

// FromRotation decomposes r in both conventions and runs the reconstruction
// checks.
func FromRotation(name string, r *mat.Dense, opts Options) *NodeHeading {
	opts = opts.withDefaults()

	ext := rotation.MatrixToRPYExtrinsic(r)
	in := rotation.MatrixToRPYIntrinsic(r)

	h := &NodeHeading{
		Name:      name,
		Rotation:  r,
		Extrinsic: ext.Degrees(),
		Intrinsic: in.Degrees(),
		Gimbal:    rotation.ClassifyGimbal(-r.At(2, 0)),

		ExtrinsicError: rotation.FrobeniusDistance(r, rotation.RPYToMatrix(ext.Roll, ext.Pitch, ext.Yaw)),
		IntrinsicError: rotation.FrobeniusDistance(r, rotation.RPYToMatrixIntrinsic(in.Roll, in.Pitch, in.Yaw)),
	}

	if h.ExtrinsicError > opts.ReconstructionThreshold {
		h.Exceeded = true
		monitoring.Warnf("node %s: extrinsic reconstruction error %.6f exceeds %.4f",
			name, h.ExtrinsicError, opts.ReconstructionThreshold)
	}
	return h
}
