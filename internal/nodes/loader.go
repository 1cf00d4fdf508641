package nodes

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/banshee-data/imu-heading/internal/fsutil"
	"gonum.org/v1/gonum/num/quat"
)

// Discover returns the paths of node files directly inside dir, sorted by
// name. It fails with ErrNoInputFiles when nothing matches.
func Discover(fsys fsutil.FileSystem, dir string) ([]string, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, FilePrefix) || filepath.Ext(name) != FileExt {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s (expected %s*%s)", ErrNoInputFiles, dir, FilePrefix, FileExt)
	}

	sort.Strings(paths)
	return paths, nil
}

// Load discovers and parses every node file in dir. Nodes missing
// quaternion columns are returned with Missing set; a file that cannot be
// read or holds a non-numeric quaternion value fails the whole load.
func Load(fsys fsutil.FileSystem, dir string) ([]*Node, error) {
	paths, err := Discover(fsys, dir)
	if err != nil {
		return nil, err
	}

	nodes := make([]*Node, 0, len(paths))
	for _, path := range paths {
		n, err := loadFile(fsys, path)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func loadFile(fsys fsutil.FileSystem, path string) (*Node, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	base := filepath.Base(path)
	n, err := Parse(strings.TrimSuffix(base, filepath.Ext(base)), f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	n.Path = path
	return n, nil
}

// Parse reads one node's CSV from r. Header names are trimmed of
// surrounding whitespace (and a leading byte order mark).
func Parse(name string, r io.Reader) (*Node, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	n := &Node{Name: name}

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		n.Missing = append(n.Missing, QuaternionColumns[:]...)
		return n, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	n.Columns = header

	index := make(map[string]int, len(header))
	for i, col := range header {
		if _, dup := index[col]; !dup {
			index[col] = i
		}
	}

	var qIdx [4]int
	for i, col := range QuaternionColumns {
		idx, ok := index[col]
		if !ok {
			n.Missing = append(n.Missing, col)
		}
		qIdx[i] = idx
	}

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", n.Rows+1, err)
		}
		n.Rows++
		if len(n.Missing) > 0 {
			continue
		}

		s, err := parseSample(header, record, qIdx)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", n.Rows, err)
		}
		n.Samples = append(n.Samples, s)
	}

	return n, nil
}

func parseSample(header, record []string, qIdx [4]int) (Sample, error) {
	var comps [4]float64
	for i, idx := range qIdx {
		if idx >= len(record) {
			return Sample{}, fmt.Errorf("column %s: %w", QuaternionColumns[i], ErrMissingField)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(record[idx]), 64)
		if err != nil {
			return Sample{}, fmt.Errorf("column %s: %w", QuaternionColumns[i], err)
		}
		comps[i] = v
	}

	s := Sample{
		Q:     quat.Number{Real: comps[0], Imag: comps[1], Jmag: comps[2], Kmag: comps[3]},
		Extra: make(map[string]string, len(header)),
	}
	for i, col := range header {
		if isQuaternionIndex(i, qIdx) {
			continue
		}
		if i < len(record) {
			s.Extra[col] = record[i]
		} else {
			s.Extra[col] = ""
		}
	}
	return s, nil
}

func isQuaternionIndex(i int, qIdx [4]int) bool {
	for _, idx := range qIdx {
		if i == idx {
			return true
		}
	}
	return false
}
