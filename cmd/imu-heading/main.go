// Command imu-heading computes the mean orientation of each IMU node from
// its quaternion CSV log and draws the resulting frames.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/imu-heading/internal/config"
	"github.com/banshee-data/imu-heading/internal/fsutil"
	"github.com/banshee-data/imu-heading/internal/heading"
	"github.com/banshee-data/imu-heading/internal/monitoring"
	"github.com/banshee-data/imu-heading/internal/nodes"
	"github.com/banshee-data/imu-heading/internal/report"
	"github.com/banshee-data/imu-heading/internal/version"
	"github.com/banshee-data/imu-heading/internal/visualiser"
)

// openBrowser is replaced in tests.
var openBrowser = visualiser.Open

// errShowVersion is returned by parseFlags when -version is given.
var errShowVersion = errors.New("version requested")

const usageHeader = `Usage: imu-heading [flags]

Reads node*.csv quaternion logs, prints the mean roll/pitch/yaw of every node
and writes grouped and combined 3D frame figures (PNG and HTML).

Flags override values from -config.

Flags:
`

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if errors.Is(err, errShowVersion) {
		fmt.Println(version.String())
		return
	}
	if err != nil {
		log.Fatalf("%v", err)
	}

	baseDir := "."
	if exe, err := os.Executable(); err == nil {
		baseDir = filepath.Dir(exe)
	}

	if err := run(cfg, baseDir, fsutil.OSFileSystem{}, os.Stdout); err != nil {
		os.Exit(1)
	}
}

// parseFlags builds the run configuration from an optional -config file and
// the command line. Only flags that were explicitly set override the file.
func parseFlags(fs *flag.FlagSet, args []string) (*config.AnalysisConfig, error) {
	var (
		configPath = fs.String("config", "", "Path to a JSON or YAML analysis config")
		inputDir   = fs.String("input", "", "Directory holding node*.csv files (default: "+config.DefaultInputSubdir+" next to the executable)")
		outputDir  = fs.String("output", "", "Directory for figures (default: the executable's directory)")
		samples    = fs.Int("samples", 100, "Number of leading samples averaged per node")
		threshold  = fs.Float64("threshold", 0.01, "Frobenius reconstruction error above which a warning is printed")
		minNode    = fs.Int("min-node", 3, "Lowest node index in the combined figure")
		maxNode    = fs.Int("max-node", 12, "Highest node index in the combined figure")
		width      = fs.Float64("width", 14, "Figure width in inches")
		height     = fs.Float64("height", 11, "Figure height in inches")
		open       = fs.Bool("open", false, "Open the HTML figures in the default browser")
		showVer    = fs.Bool("version", false, "Print version and exit")
	)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usageHeader)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *showVer {
		return nil, errShowVersion
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	cfg := config.EmptyAnalysisConfig()
	if *configPath != "" {
		loaded, err := config.LoadAnalysisConfig(*configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.InputDir = inputDir
		case "output":
			cfg.OutputDir = outputDir
		case "samples":
			cfg.Samples = samples
		case "threshold":
			cfg.ReconstructionThreshold = threshold
		case "min-node":
			cfg.CombinedMinNode = minNode
		case "max-node":
			cfg.CombinedMaxNode = maxNode
		case "width":
			cfg.ImageWidthInches = width
		case "height":
			cfg.ImageHeightInches = height
		case "open":
			cfg.OpenBrowser = open
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

// run executes one analysis. Relative defaults resolve against baseDir.
// Terminal errors are reported to out and returned.
func run(cfg *config.AnalysisConfig, baseDir string, fsys fsutil.FileSystem, out io.Writer) (err error) {
	runID := uuid.NewString()
	rep := report.New(out, runID)
	defer func() {
		if err != nil {
			rep.Failure(err)
		}
	}()

	rep.Banner()

	ns, err := nodes.Load(fsys, cfg.GetInputDir(baseDir))
	if err != nil {
		return err
	}
	paths := make([]string, len(ns))
	for i, n := range ns {
		paths[i] = n.Path
	}
	rep.Files(paths)

	res, err := heading.Aggregate(ns, heading.Options{
		Samples:                 cfg.GetSamples(),
		ReconstructionThreshold: cfg.GetReconstructionThreshold(),
	})
	rep.Headings(ns, res)
	if err != nil {
		if errors.Is(err, heading.ErrNoHeadings) {
			return fmt.Errorf("no heading computed: %w", err)
		}
		return err
	}

	rep.Procedure(res)

	r := visualiser.NewRenderer(fsys, cfg.GetOutputDir(baseDir))
	r.Width = vg.Length(cfg.GetImageWidthInches()) * vg.Inch
	r.Height = vg.Length(cfg.GetImageHeightInches()) * vg.Inch
	r.Samples = cfg.GetSamples()
	r.MinNode, r.MaxNode = cfg.GetCombinedMinNode(), cfg.GetCombinedMaxNode()
	r.RunID = runID

	rotations := res.Rotations()
	grouped, err := r.RenderGrouped(rotations)
	if err != nil {
		return fmt.Errorf("grouped figures: %w", err)
	}
	combined, err := r.RenderCombined(rotations)
	if err != nil {
		return fmt.Errorf("combined figure: %w", err)
	}
	written := append(grouped, combined...)
	rep.Outputs(written)

	if cfg.GetOpenBrowser() {
		for _, p := range written {
			if filepath.Ext(p) != ".html" {
				continue
			}
			if err := openBrowser(p); err != nil {
				monitoring.Warnf("%v", err)
			}
		}
	}

	rep.Done()
	return rep.Err()
}
