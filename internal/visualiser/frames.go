package visualiser

import (
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/imu-heading/internal/nodes"
	"github.com/banshee-data/imu-heading/internal/rotation"
)

const (
	// AxisLength is the drawn length of each node axis.
	AxisLength = 1.0
	// ReferenceLength is the drawn length of the world ENU axes.
	ReferenceLength = 1.2
	// Limit bounds every plotted coordinate to [-Limit, Limit].
	Limit = 1.5
)

// Axis identifies one axis of a frame.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	default:
		return "?"
	}
}

// LineType is the echarts line type used for the axis.
func (a Axis) LineType() string {
	switch a {
	case AxisY:
		return "dashed"
	case AxisZ:
		return "dotted"
	default:
		return "solid"
	}
}

// Segment is one drawn axis, from the origin to the rotated tip.
type Segment struct {
	Axis     Axis
	From, To r3.Vec
}

// Frame is a named orientation to draw.
type Frame struct {
	Name     string
	Rotation mat.Matrix
}

// AxisSegments returns the columns of r scaled to length, i.e. the body
// X, Y and Z axes expressed in world coordinates.
func AxisSegments(r mat.Matrix, length float64) [3]Segment {
	var segs [3]Segment
	units := [3]r3.Vec{{X: length}, {Y: length}, {Z: length}}
	for i, u := range units {
		x, y, z := rotation.Apply(r, u.X, u.Y, u.Z)
		segs[i] = Segment{Axis: Axis(i), To: r3.Vec{X: x, Y: y, Z: z}}
	}
	return segs
}

// ReferenceSegments returns the fixed world East/North/Up axes.
func ReferenceSegments() [3]Segment {
	return AxisSegments(rotation.Identity(), ReferenceLength)
}

// GroupByPrefix buckets rotations by the node name prefix before the first
// underscore. Frames within a group are sorted by name.
func GroupByPrefix(rotations map[string]*mat.Dense) map[string][]Frame {
	groups := make(map[string][]Frame)
	for name, r := range rotations {
		key := nodes.GroupKey(name)
		groups[key] = append(groups[key], Frame{Name: name, Rotation: r})
	}
	for _, fs := range groups {
		sortFrames(fs)
	}
	return groups
}

// GroupNames returns the keys of groups in lexicographic order.
func GroupNames(groups map[string][]Frame) []string {
	names := make([]string, 0, len(groups))
	for k := range groups {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// FilterRange keeps rotations whose node index lies in [lo, hi]. Names
// without a parseable index are dropped.
func FilterRange(rotations map[string]*mat.Dense, lo, hi int) []Frame {
	var out []Frame
	for name, r := range rotations {
		idx, ok := nodes.NodeIndex(name)
		if !ok || idx < lo || idx > hi {
			continue
		}
		out = append(out, Frame{Name: name, Rotation: r})
	}
	sortFrames(out)
	return out
}

func sortFrames(fs []Frame) {
	sort.Slice(fs, func(i, j int) bool { return fs[i].Name < fs[j].Name })
}
