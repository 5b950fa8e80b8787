// Package resample implements the resample command: echo the three arguments,
// then hand them to flirt for isotropic resampling with sinc interpolation.
package resample

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"isoresample/internal/models"
	"isoresample/pkg/config"
	"isoresample/pkg/flirt"
	"isoresample/pkg/geometry"
	"isoresample/pkg/logging"
	"isoresample/pkg/nifti"
	"isoresample/pkg/runner"
)

// Usage is printed when fewer than three arguments are given
const Usage = "USAGE : resample <original image> <resampled image> <isotropic resolution mm>"

// ExitNotStarted is returned when the tool could not be launched, the same
// status a shell reports for a command it cannot find
const ExitNotStarted = 127

// Params holds everything a Wrapper needs
type Params struct {
	// Config supplies the FSL location and exit status policy
	Config *config.Config

	// Runner executes the constructed command; nil means an ExecRunner
	// forwarding to Stdout and Stderr
	Runner runner.Runner

	// Stdout receives the usage line, the echo lines and dry-run output
	Stdout io.Writer

	// Stderr receives launch failures
	Stderr io.Writer

	// Logger receives diagnostics; nil discards them
	Logger *slog.Logger

	// DryRun prints the command line instead of running it
	DryRun bool
}

// Wrapper validates arguments and delegates to the external tool
type Wrapper struct {
	params *Params
	logger *slog.Logger
}

// NewWrapper creates a wrapper. A nil Config means DefaultConfig.
func NewWrapper(params *Params) *Wrapper {
	if params.Config == nil {
		params.Config = config.DefaultConfig()
	}
	if params.Stdout == nil {
		params.Stdout = io.Discard
	}
	if params.Stderr == nil {
		params.Stderr = io.Discard
	}

	if params.Runner == nil {
		params.Runner = runner.NewExecRunner(params.Stdout, params.Stderr)
	}

	logger := params.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Wrapper{params: params, logger: logger}
}

// ParseArgs extracts the request from positional arguments. Arguments past
// the third are ignored. ok is false when fewer than three are present.
func ParseArgs(args []string) (req models.Request, ok bool) {
	if len(args) < 3 {
		return models.Request{}, false
	}
	return models.Request{Input: args[0], Output: args[1], Resolution: args[2]}, true
}

// Command returns the invocation Run would execute for req
func (w *Wrapper) Command(req models.Request) models.Invocation {
	return flirt.BuildIsoResample(w.params.Config.FSL, req)
}

// Run executes one resample and returns the process exit status
func (w *Wrapper) Run(ctx context.Context, args []string) int {
	cfg := w.params.Config
	out := w.params.Stdout

	req, ok := ParseArgs(args)
	if !ok {
		fmt.Fprintln(out, Usage)
		return cfg.Exit.UsageStatus
	}

	fmt.Fprintf(out, "Original image       : %s\n", req.Input)
	fmt.Fprintf(out, "Resampled image      : %s\n", req.Output)
	fmt.Fprintf(out, "Isotropic resolution : %s mm\n", req.Resolution)

	logger := w.logger.With("run", uuid.NewString())
	ctx = logging.WithLogger(ctx, logger)

	if cfg.FSL.Dir == "" {
		logger.Warn("FSL installation root is not set", "tool", cfg.FSL.ToolPath())
	}

	if cfg.Preview.Enabled {
		w.preview(ctx, req)
	}

	inv := w.Command(req)
	logger.Info("invoking flirt", "command", inv.String())

	if w.params.DryRun {
		fmt.Fprintln(out, inv.String())
		return 0
	}

	start := time.Now()
	res, err := w.params.Runner.Run(ctx, inv)
	if err != nil {
		fmt.Fprintf(w.params.Stderr, "resample: %v\n", err)
		if errors.Is(err, runner.ErrStart) {
			return ExitNotStarted
		}
		return 1
	}

	if res.Success() {
		logger.Info("flirt finished", "exit", res.ExitCode, "elapsed", time.Since(start))
	} else {
		logger.Warn("flirt failed", "exit", res.ExitCode, "elapsed", time.Since(start),
			"stderr", lastLine(res.Stderr))
	}

	return w.exitStatus(res)
}

func (w *Wrapper) exitStatus(res *models.Result) int {
	if !w.params.Config.Exit.Propagate {
		return 0
	}
	if res.ExitCode < 0 || res.ExitCode > 255 {
		return 1
	}
	return res.ExitCode
}

// lastLine returns the last line of out, ignoring trailing newlines
func lastLine(out []byte) string {
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// preview logs the input grid and the grid flirt is expected to produce.
// It never blocks the run.
func (w *Wrapper) preview(ctx context.Context, req models.Request) {
	logger := logging.FromContext(ctx)

	hdr, err := nifti.ReadHeader(req.Input)
	if err != nil {
		logger.Warn("preview: cannot read input header", "error", err)
		return
	}
	in := hdr.Volume()

	iso, err := geometry.ParseResolution(req.Resolution)
	if err != nil {
		logger.Warn("preview: cannot interpret resolution", "error", err)
		return
	}

	outVol, err := geometry.Isotropic(in, iso)
	if err != nil {
		logger.Warn("preview: cannot predict output grid", "error", err)
		return
	}

	logger.Info("preview",
		"input_dims", fmt.Sprintf("%dx%dx%d", in.Width, in.Height, in.Depth),
		"input_voxel", fmt.Sprintf("%gx%gx%g", in.VoxelSize.X, in.VoxelSize.Y, in.VoxelSize.Z),
		"output_dims", fmt.Sprintf("%dx%dx%d", outVol.Width, outVol.Height, outVol.Depth),
		"output_voxel", iso,
		"already_isotropic", in.IsIsotropic() && in.VoxelSize.X == iso,
	)
}

// Check verifies the FSL installation, printing one OK line per verified
// path to Stdout, or the failure to Stderr. It returns 0 or 1.
func (w *Wrapper) Check() int {
	report, err := flirt.Check(w.params.Config.FSL)
	if err != nil {
		fmt.Fprintf(w.params.Stderr, "resample: check failed: %v\n", err)
		return 1
	}

	fmt.Fprintf(w.params.Stdout, "OK %s\n", report.ToolPath)
	fmt.Fprintf(w.params.Stdout, "OK %s\n", report.IdentityPath)
	return 0
}
