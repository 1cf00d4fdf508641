package report

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/num/quat"

	"github.com/banshee-data/imu-heading/internal/heading"
	"github.com/banshee-data/imu-heading/internal/monitoring"
	"github.com/banshee-data/imu-heading/internal/nodes"
)

func yawNode(name string, deg float64, count int) *nodes.Node {
	half := deg * math.Pi / 360
	q := quat.Number{Real: math.Cos(half), Kmag: math.Sin(half)}
	n := &nodes.Node{Name: name, Columns: []string{"qw", "qx", "qy", "qz"}, Rows: count}
	for i := 0; i < count; i++ {
		n.Samples = append(n.Samples, nodes.Sample{Q: q})
	}
	return n
}

func aggregate(t *testing.T, ns ...*nodes.Node) *heading.Result {
	t.Helper()
	original := monitoring.Logf
	t.Cleanup(func() { monitoring.Logf = original })
	monitoring.SetLogger(nil)

	res, err := heading.Aggregate(ns, heading.DefaultOptions())
	require.NoError(t, err)
	return res
}

func TestBannerAndDone(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, "abc-123")
	r.Banner()
	r.Done()
	require.NoError(t, r.Err())

	out := buf.String()
	assert.Contains(t, out, title)
	assert.Contains(t, out, "run abc-123")
	assert.Contains(t, out, "Processing complete!")
	assert.Equal(t, 4, strings.Count(out, strings.Repeat("=", ruleWidth)+"\n"))
}

func TestBannerWithoutRunID(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "").Banner()
	assert.NotContains(t, buf.String(), "run ")
}

func TestFiles(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "").Files([]string{"/data/node3.csv", "/data/node10_1.csv"})

	assert.Equal(t, "\nFound 2 files:\n   - node3.csv\n   - node10_1.csv\n", buf.String())
}

func TestHeadings(t *testing.T) {
	good := yawNode("node3", 30, 150)
	bad := &nodes.Node{Name: "node4", Missing: []string{"qz"}}
	res := aggregate(t, good, bad)

	var buf bytes.Buffer
	New(&buf, "").Headings([]*nodes.Node{good, bad}, res)
	out := buf.String()

	assert.Contains(t, out, "first 100 samples")
	assert.Contains(t, out, "100 samples extracted (of 150 total)")
	assert.Contains(t, out, "Yaw   (Z):   30.000°")
	assert.Contains(t, out, "Yaw   (Z):  -30.000°")
	assert.Contains(t, out, "Frobenius error: 0.000000")
	assert.NotContains(t, out, "WARNING")
	assert.Contains(t, out, "node4:\n    x quaternions not found")

	// Load order is kept.
	assert.Less(t, strings.Index(out, "node3:"), strings.Index(out, "node4:"))
}

func TestHeadingsWarnsOnReconstructionError(t *testing.T) {
	res := aggregate(t, yawNode("node3", 10, 1))
	h := res.Nodes["node3"]
	h.ExtrinsicError = 0.5
	h.Exceeded = true

	var buf bytes.Buffer
	New(&buf, "").Headings([]*nodes.Node{yawNode("node3", 10, 1)}, res)
	assert.Contains(t, buf.String(), "Frobenius error: 0.500000")
	assert.Contains(t, buf.String(), "WARNING: significant conversion error (> 0.01)")
}

func TestProcedureSorted(t *testing.T) {
	res := aggregate(t, yawNode("node3", 10, 5), yawNode("node10_1", 20, 5))

	var buf bytes.Buffer
	New(&buf, "").Procedure(res)
	out := buf.String()

	assert.Contains(t, out, "INTRINSIC ROTATION PROCEDURE")
	assert.Less(t, strings.Index(out, "node10_1:"), strings.Index(out, "node3:"))
	assert.Contains(t, out, "4. Rotate  -20.000° about the NEW Z axis")
	assert.Equal(t, 2, strings.Count(out, "1. Start from the reference frame"))
}

func TestOutputs(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, "")
	r.Outputs(nil)
	assert.Empty(t, buf.String())

	r.Outputs([]string{"out/a.png"})
	assert.Equal(t, "\nFigures written:\n   - out/a.png\n", buf.String())
}

func TestFailure(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, "").Failure(errors.New("no input"))
	assert.Equal(t, "\nError: no input\n", buf.String())
}

type failingWriter struct{ calls int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.calls++
	return 0, errors.New("closed")
}

func TestStickyWriteError(t *testing.T) {
	w := &failingWriter{}
	r := New(w, "")
	r.Banner()
	r.Done()

	require.EqualError(t, r.Err(), "closed")
	assert.Equal(t, 1, w.calls)
}
