package nodes

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/num/quat"
)

const (
	// FilePrefix is the marker every input file name starts with.
	FilePrefix = "node"
	// FileExt is the extension of input files.
	FileExt = ".csv"
)

// QuaternionColumns are the required headers, in w, x, y, z order.
var QuaternionColumns = [4]string{"qw", "qx", "qy", "qz"}

var (
	// ErrNoInputFiles is returned when the input directory holds no node files.
	ErrNoInputFiles = errors.New("no input files found")
	// ErrMissingField marks a node whose file lacks a quaternion column.
	ErrMissingField = errors.New("missing required field")
)

// Sample is one CSV row: the quaternion plus the remaining columns.
type Sample struct {
	Q     quat.Number
	Extra map[string]string
}

// Node is the parsed content of one input file.
type Node struct {
	Name    string
	Path    string
	Columns []string
	// Rows is the number of data rows in the file, parsed or not.
	Rows    int
	Samples []Sample
	// Missing lists the quaternion columns absent from the header. Samples
	// is empty when Missing is not.
	Missing []string
}

// Err reports why the node cannot be used, wrapping ErrMissingField.
func (n *Node) Err() error {
	if len(n.Missing) == 0 {
		return nil
	}
	return fmt.Errorf("%s: %w: %s", n.Name, ErrMissingField, strings.Join(n.Missing, ", "))
}

// Quaternions returns the quaternions of the first min(limit, len(Samples))
// samples. A non-positive limit returns all of them.
func (n *Node) Quaternions(limit int) []quat.Number {
	count := len(n.Samples)
	if limit > 0 && limit < count {
		count = limit
	}
	qs := make([]quat.Number, count)
	for i := range qs {
		qs[i] = n.Samples[i].Q
	}
	return qs
}

// GroupKey returns the part of a node name before the first underscore:
// "node10_1" and "node10_2" share "node10", "node3" is its own group.
func GroupKey(name string) string {
	key, _, _ := strings.Cut(name, "_")
	return key
}

// NodeIndex parses the integer between the file marker and the first
// underscore ("node7_2" → 7). ok is false for names that don't start with
// the marker or whose index is not an integer.
func NodeIndex(name string) (index int, ok bool) {
	rest, found := strings.CutPrefix(name, FilePrefix)
	if !found {
		return 0, false
	}
	digits, _, _ := strings.Cut(rest, "_")
	index, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return index, true
}
