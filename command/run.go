// =======================
// command/run.go
// =======================

// Package command implements the hashviz subcommands.
package command

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-hclog"
	multierror "github.com/hashicorp/go-multierror"
	"github.com/mitchellh/cli"

	"hashviz/config"
	"hashviz/engine"
	"hashviz/hashmod"
	"hashviz/render"
	"hashviz/tui"
)

const (
	hashImageFile   = "hash.png"
	bucketImageFile = "buckets.png"
	defaultLogFile  = "hashviz.log"
)

type RunCommand struct {
	Ctx context.Context
	Ui  cli.Ui

	graphics bool
}

func (c *RunCommand) Help() string {
	helpText := `
Usage: hashviz run [options]

  Hashes a set of generated inputs into a table, then renders the hash
  image and the bucket image. An interrupt cancels the run.

  Preferences come from the config files used; a subset may also be passed
  directly as CLI arguments, listed below.

Options:

  -config=<path>
    The path to either a single config file or a directory of config
    files. May be repeated; later paths take precedence.

  -log-level=<level>
    Specify the verbosity level of logs. Valid values include DEBUG, INFO,
    and WARN, in decreasing order of verbosity. The default is INFO.

  -log-json
    Output logs in a JSON format. The default is false.

  -log-file=<path>
    Write logs to the given file instead of stderr. With -graphics the
    default is hashviz.log in the output directory.

  -out=<dir>
    Directory the hash.png and buckets.png images are saved to. The default
    is the current directory.

  -graphics
    Show the run in the terminal. Tab toggles the image, Q cancels the run
    or quits once it has ended.

Run Options:

  -mechanism=<name>
    Input generation mechanism: lottery or dictionary.

  -algorithm=<name>
    Hash algorithm, see "hashviz algorithms".

  -dictionary=<path>
    Word list used by the dictionary mechanism instead of the built-in one.

  -inputs=<n>
    Number of inputs to hash. Zero reads the whole dictionary.

  -table-length=<n>
    Number of buckets in the hash table.

  -queue-size=<n>
    Number of concurrent hashing workers.

  -ticket-max=<n>
    Exclusive upper bound of lottery tickets.

  -seed=<n>
    Seed of the lottery ticket sampler.

  -image-width=<n>, -image-height=<n>
    Canvas size of the hash image, in points.

  -resolution=<n>
    Pixels per point.

  -point-size=<n>
    Side of a plotted mark, in points.

  -bucket-height=<pct>
    Height of the bucket image as a percentage of the image height.

Telemetry Options:

  -telemetry-statsite-address=<addr>
    Address of a statsite server to send metrics to.

  -telemetry-statsd-address=<addr>
    Address of a statsd server to send metrics to.
`
	return strings.TrimSpace(helpText)
}

func (c *RunCommand) Synopsis() string {
	return "Hashes generated inputs and renders the result"
}

func (c *RunCommand) Run(args []string) int {
	cfg, err := c.readConfig(args)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			c.Ui.Error(err.Error())
		}
		c.Ui.Error("Run 'hashviz run -help' for more information.")
		return 1
	}

	runConfig, err := cfg.RunConfiguration()
	if err != nil {
		c.Ui.Error(err.Error())
		return 1
	}

	outDir, err := cfg.ResolvedOutputDir()
	if err != nil {
		c.Ui.Error(fmt.Sprintf("Failed to resolve output directory: %v", err))
		return 1
	}

	logger, closeLog, err := c.setupLogger(cfg, outDir)
	if err != nil {
		c.Ui.Error(err.Error())
		return 1
	}
	defer closeLog()

	if _, err := setupTelemetry(cfg.Telemetry); err != nil {
		logger.Error("failed to setup telemetry", "error", err)
		return 1
	}

	strategy, err := hashmod.New(runConfig.Algorithm, max(runConfig.HashTableLength, 1))
	if err != nil {
		c.Ui.Error(err.Error())
		return 1
	}

	logger.Info("starting run",
		"algorithm", runConfig.Algorithm,
		"mechanism", runConfig.Mechanism,
		"inputs", runConfig.NumberOfInputs,
		"table_length", runConfig.HashTableLength,
		"queue_size", runConfig.QueueSize)

	eng := engine.New(logger)
	defer eng.Close()

	if err := eng.PerformComputations(context.Background(), runConfig); err != nil {
		c.Ui.Error(fmt.Sprintf("Failed to start run: %v", err))
		return 1
	}

	ctx := c.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	var out outcome
	if c.graphics {
		out, err = c.runGraphics(ctx, eng, strategy.Title())
	} else {
		out, err = c.follow(ctx, eng, logger)
	}
	eng.Wait()
	if err != nil {
		c.Ui.Error(err.Error())
		return 1
	}

	switch eng.State() {
	case engine.StateCancelled:
		c.Ui.Warn(fmt.Sprintf("Run cancelled after %s inputs", humanize.Comma(int64(eng.Processed()))))
		return 1
	case engine.StateFailed:
		c.Ui.Error(out.summary)
		return 1
	}

	if !c.graphics {
		c.Ui.Output(out.summary)
	}

	if err := saveImages(outDir, out.hashImg, out.bucketImg); err != nil {
		logger.Error("failed to save images", "error", err)
		c.Ui.Error(err.Error())
		return 1
	}
	logger.Info("images saved", "dir", outDir)
	return 0
}

func (c *RunCommand) readConfig(args []string) (*config.Agent, error) {
	var configPath []string

	cmdConfig := &config.Agent{
		Run:       &config.Run{},
		Telemetry: &config.Telemetry{},
	}

	flags := flag.NewFlagSet("run", flag.ContinueOnError)
	flags.Usage = func() { c.Ui.Output(c.Help()) }
	flags.SetOutput(io.Discard)

	flags.Var((*stringFlag)(&configPath), "config", "")
	flags.StringVar(&cmdConfig.LogLevel, "log-level", "", "")
	flags.BoolVar(&cmdConfig.LogJson, "log-json", false, "")
	flags.StringVar(&cmdConfig.LogFile, "log-file", "", "")
	flags.StringVar(&cmdConfig.OutputDir, "out", "", "")
	flags.BoolVar(&c.graphics, "graphics", false, "")

	// Specify our run flags.
	flags.StringVar(&cmdConfig.Run.Mechanism, "mechanism", "", "")
	flags.StringVar(&cmdConfig.Run.Algorithm, "algorithm", "", "")
	flags.StringVar(&cmdConfig.Run.DictionaryPath, "dictionary", "", "")
	flags.IntVar(&cmdConfig.Run.NumberOfInputs, "inputs", 0, "")
	flags.IntVar(&cmdConfig.Run.HashTableLength, "table-length", 0, "")
	flags.IntVar(&cmdConfig.Run.QueueSize, "queue-size", 0, "")
	flags.IntVar(&cmdConfig.Run.TicketCellMax, "ticket-max", 0, "")
	flags.IntVar(&cmdConfig.Run.Seed, "seed", 0, "")
	flags.IntVar(&cmdConfig.Run.ImageWidth, "image-width", 0, "")
	flags.IntVar(&cmdConfig.Run.ImageHeight, "image-height", 0, "")
	flags.IntVar(&cmdConfig.Run.Resolution, "resolution", 0, "")
	flags.Float64Var(&cmdConfig.Run.PointSize, "point-size", 0, "")
	flags.Float64Var(&cmdConfig.Run.BucketHeight, "bucket-height", 0, "")

	// Specify our telemetry flags.
	flags.StringVar(&cmdConfig.Telemetry.StatsiteAddr, "telemetry-statsite-address", "", "")
	flags.StringVar(&cmdConfig.Telemetry.StatsdAddr, "telemetry-statsd-address", "", "")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if flags.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(flags.Args(), " "))
	}

	if cmdConfig.Run.DictionaryPath != "" {
		cmdConfig.Run.CustomDictionary = true
	}

	if err := cmdConfig.Validate(); err != nil {
		return nil, multierror.Prefix(err, "flags:")
	}

	fileConfig, err := config.LoadPaths(configPath)
	if err != nil {
		return nil, err
	}

	return fileConfig.Merge(cmdConfig), nil
}

// setupLogger builds the run logger. The returned func closes the log file,
// if one was opened.
func (c *RunCommand) setupLogger(cfg *config.Agent, outDir string) (hclog.Logger, func(), error) {
	var output io.Writer = os.Stderr
	closer := func() {}

	logFile := cfg.LogFile
	if logFile == "" && c.graphics {
		logFile = filepath.Join(outDir, defaultLogFile)
	}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file %s: %w", logFile, err)
		}
		output = f
		closer = func() { f.Close() }
	}

	logger := hclog.NewInterceptLogger(&hclog.LoggerOptions{
		Name:       "hashviz",
		Level:      hclog.LevelFromString(cfg.LogLevel),
		JSONFormat: cfg.LogJson,
		Output:     output,
	})
	return logger, closer, nil
}

// outcome is what the run command keeps from the event stream.
type outcome struct {
	hashImg   *image.RGBA
	bucketImg *image.RGBA
	summary   string
}

// progressLogger is the delegate of a run without graphics.
type progressLogger struct {
	logger   hclog.Logger
	interval time.Duration
	last     time.Time
	out      outcome
}

var _ engine.Delegate = (*progressLogger)(nil)

func (p *progressLogger) UpdateHashImageData(img *image.RGBA)   { p.out.hashImg = img }
func (p *progressLogger) UpdateBucketImageData(img *image.RGBA) { p.out.bucketImg = img }
func (p *progressLogger) IncrementHashCount()                   {}
func (p *progressLogger) TasksDidEnd(summary string)            { p.out.summary = summary }
func (p *progressLogger) TasksDidCancel()                       { p.logger.Warn("run cancelled") }

func (p *progressLogger) NumberOfInputsChanged(n uint64) {
	if now := time.Now(); now.Sub(p.last) >= p.interval {
		p.last = now
		p.logger.Info("hashing", "inputs", n)
	}
}

// follow consumes the engine events until the run ends. Cancelling ctx
// cancels the run.
func (c *RunCommand) follow(ctx context.Context, eng *engine.Engine, logger hclog.Logger) (outcome, error) {
	p := &progressLogger{logger: logger, interval: time.Second}

	finished := make(chan struct{})
	defer close(finished)
	go func() {
		select {
		case <-ctx.Done():
			logger.Info("interrupt received, cancelling run")
			if err := eng.CancelComputations(); err != nil && !errors.Is(err, engine.ErrInvalidState) {
				logger.Error("failed to cancel run", "error", err)
			}
		case <-finished:
		}
	}()

	ev, err := engine.Dispatch(context.Background(), eng.Events(), p)
	if err != nil {
		return p.out, fmt.Errorf("event stream ended early: %w", err)
	}
	if ev.Err != nil {
		logger.Error("run failed", "error", ev.Err)
	}
	return p.out, nil
}

func (c *RunCommand) runGraphics(ctx context.Context, eng *engine.Engine, title string) (outcome, error) {
	v := tui.NewViewer(title)
	if err := tui.Run(ctx, eng, eng.Events(), v); err != nil {
		_ = eng.CancelComputations()
		return outcome{}, err
	}

	// The viewer may be closed before the run ends.
	if !v.Finished() {
		if err := eng.CancelComputations(); err != nil && !errors.Is(err, engine.ErrInvalidState) {
			return outcome{}, err
		}
		if _, err := engine.Dispatch(context.Background(), eng.Events(), v); err != nil {
			return outcome{}, err
		}
	}

	hashImg, bucketImg := v.Images()
	return outcome{hashImg: hashImg, bucketImg: bucketImg, summary: v.Summary()}, nil
}

func saveImages(dir string, hashImg, bucketImg *image.RGBA) error {
	if hashImg == nil || bucketImg == nil {
		return errors.New("no images were rendered")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	var mErr *multierror.Error
	if err := render.WritePNG(filepath.Join(dir, hashImageFile), hashImg); err != nil {
		mErr = multierror.Append(mErr, err)
	}
	if err := render.WritePNG(filepath.Join(dir, bucketImageFile), bucketImg); err != nil {
		mErr = multierror.Append(mErr, err)
	}
	return mErr.ErrorOrNil()
}
