// =======================
// config/config.go
// =======================

// Package config loads hashviz preferences from HCL or JSON files and
// command line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/mitchellh/go-homedir"

	"hashviz/engine"
	"hashviz/generator"
	"hashviz/hashmod"
)

// Agent is the complete set of hashviz preferences.
type Agent struct {

	// LogLevel is the level of the logs to emit.
	LogLevel string `hcl:"log_level,optional"`

	// LogJson enables log output in JSON format.
	LogJson bool `hcl:"log_json,optional"`

	// LogFile receives log output instead of stderr when set.
	LogFile string `hcl:"log_file,optional"`

	// OutputDir is where rendered images are saved.
	OutputDir string `hcl:"output_dir,optional"`

	// Run holds the preferences of a computation run.
	Run *Run `hcl:"run,block"`

	// Telemetry is the configuration used to setup metrics collection.
	Telemetry *Telemetry `hcl:"telemetry,block"`
}

// Run mirrors engine.RunConfiguration in a form suited to config files.
// Zero values mean "not set" so files and flags can be layered.
type Run struct {
	Mechanism        string  `hcl:"mechanism,optional"`
	Algorithm        string  `hcl:"algorithm,optional"`
	PointSize        float64 `hcl:"point_size,optional"`
	ImageWidth       int     `hcl:"image_width,optional"`
	ImageHeight      int     `hcl:"image_height,optional"`
	Resolution       int     `hcl:"resolution,optional"`
	BucketHeight     float64 `hcl:"bucket_height,optional"`
	HashTableLength  int     `hcl:"hash_table_length,optional"`
	QueueSize        int     `hcl:"queue_size,optional"`
	TicketCellMax    int     `hcl:"ticket_cell_max,optional"`
	NumberOfInputs   int     `hcl:"number_of_inputs,optional"`
	DictionaryPath   string  `hcl:"dictionary_path,optional"`
	CustomDictionary bool    `hcl:"custom_dictionary,optional"`
	Seed             int     `hcl:"seed,optional"`
}

// Telemetry configures where metrics are sent.
type Telemetry struct {
	StatsiteAddr    string `hcl:"statsite_address,optional"`
	StatsdAddr      string `hcl:"statsd_address,optional"`
	DisableHostname bool   `hcl:"disable_hostname,optional"`
}

// Default returns the stock preferences.
func Default() *Agent {
	def := engine.DefaultRunConfiguration()

	return &Agent{
		LogLevel:  "info",
		OutputDir: ".",
		Run: &Run{
			Mechanism:       def.Mechanism.String(),
			Algorithm:       def.Algorithm.String(),
			PointSize:       def.PointSize,
			ImageWidth:      def.ImageWidth,
			ImageHeight:     def.ImageHeight,
			Resolution:      def.Resolution,
			BucketHeight:    def.BucketHeight,
			HashTableLength: int(def.HashTableLength),
			QueueSize:       def.QueueSize,
			TicketCellMax:   int(def.TicketCellMax),
			NumberOfInputs:  int(def.NumberOfInputs),
		},
		Telemetry: &Telemetry{},
	}
}

// Merge returns a new Agent with the set values of b layered over a.
func (a *Agent) Merge(b *Agent) *Agent {
	if b == nil {
		return a
	}

	result := *a

	if b.LogLevel != "" {
		result.LogLevel = b.LogLevel
	}
	if b.LogJson {
		result.LogJson = true
	}
	if b.LogFile != "" {
		result.LogFile = b.LogFile
	}
	if b.OutputDir != "" {
		result.OutputDir = b.OutputDir
	}
	if b.Run != nil {
		result.Run = result.Run.merge(b.Run)
	}
	if b.Telemetry != nil {
		result.Telemetry = result.Telemetry.merge(b.Telemetry)
	}

	return &result
}

func (r *Run) merge(b *Run) *Run {
	if r == nil {
		return b
	}

	result := *r

	if b.Mechanism != "" {
		result.Mechanism = b.Mechanism
	}
	if b.Algorithm != "" {
		result.Algorithm = b.Algorithm
	}
	if b.PointSize != 0 {
		result.PointSize = b.PointSize
	}
	if b.ImageWidth != 0 {
		result.ImageWidth = b.ImageWidth
	}
	if b.ImageHeight != 0 {
		result.ImageHeight = b.ImageHeight
	}
	if b.Resolution != 0 {
		result.Resolution = b.Resolution
	}
	if b.BucketHeight != 0 {
		result.BucketHeight = b.BucketHeight
	}
	if b.HashTableLength != 0 {
		result.HashTableLength = b.HashTableLength
	}
	if b.QueueSize != 0 {
		result.QueueSize = b.QueueSize
	}
	if b.TicketCellMax != 0 {
		result.TicketCellMax = b.TicketCellMax
	}
	if b.NumberOfInputs != 0 {
		result.NumberOfInputs = b.NumberOfInputs
	}
	if b.DictionaryPath != "" {
		result.DictionaryPath = b.DictionaryPath
	}
	if b.CustomDictionary {
		result.CustomDictionary = true
	}
	if b.Seed != 0 {
		result.Seed = b.Seed
	}

	return &result
}

func (t *Telemetry) merge(b *Telemetry) *Telemetry {
	if t == nil {
		return b
	}

	result := *t

	if b.StatsiteAddr != "" {
		result.StatsiteAddr = b.StatsiteAddr
	}
	if b.StatsdAddr != "" {
		result.StatsdAddr = b.StatsdAddr
	}
	if b.DisableHostname {
		result.DisableHostname = true
	}

	return &result
}

// Validate checks the values that are set. Unset values are left to the
// defaults they will be merged over.
func (a *Agent) Validate() error {
	var mErr *multierror.Error

	if a.LogLevel != "" {
		switch strings.ToLower(a.LogLevel) {
		case "trace", "debug", "info", "warn", "error", "off":
		default:
			mErr = multierror.Append(mErr, fmt.Errorf("invalid log_level %q", a.LogLevel))
		}
	}

	if a.Run != nil {
		if err := a.Run.validate(); err != nil {
			mErr = multierror.Append(mErr, err)
		}
	}

	return mErr.ErrorOrNil()
}

func (r *Run) validate() *multierror.Error {
	var result *multierror.Error
	prefix := "run ->"

	if r.Mechanism != "" {
		if _, err := generator.ParseMechanism(r.Mechanism); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s %v", prefix, err))
		}
	}
	if r.Algorithm != "" {
		if _, err := hashmod.ParseAlgorithm(r.Algorithm); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s %v", prefix, err))
		}
	}

	for name, v := range map[string]int{
		"image_width":       r.ImageWidth,
		"image_height":      r.ImageHeight,
		"resolution":        r.Resolution,
		"hash_table_length": r.HashTableLength,
		"queue_size":        r.QueueSize,
		"ticket_cell_max":   r.TicketCellMax,
		"number_of_inputs":  r.NumberOfInputs,
	} {
		if v < 0 {
			result = multierror.Append(result, fmt.Errorf("%s %s can't be negative", prefix, name))
		}
	}

	if r.PointSize < 0 {
		result = multierror.Append(result, fmt.Errorf("%s point_size can't be negative", prefix))
	}
	if r.BucketHeight < 0 || r.BucketHeight > 100 {
		result = multierror.Append(result, fmt.Errorf("%s bucket_height must be between 0 and 100", prefix))
	}
	if r.CustomDictionary && r.DictionaryPath == "" {
		result = multierror.Append(result, fmt.Errorf("%s custom_dictionary requires dictionary_path", prefix))
	}

	return result
}

// RunConfiguration converts the run preferences into the value handed to
// the engine. A dictionary_path selects that word list even when
// custom_dictionary is not set.
func (a *Agent) RunConfiguration() (engine.RunConfiguration, error) {
	r := a.Run
	if r == nil {
		r = Default().Run
	}

	mechanism, err := generator.ParseMechanism(r.Mechanism)
	if err != nil {
		return engine.RunConfiguration{}, err
	}
	algorithm, err := hashmod.ParseAlgorithm(r.Algorithm)
	if err != nil {
		return engine.RunConfiguration{}, err
	}

	return engine.RunConfiguration{
		Mechanism:        mechanism,
		Algorithm:        algorithm,
		PointSize:        r.PointSize,
		ImageWidth:       r.ImageWidth,
		ImageHeight:      r.ImageHeight,
		Resolution:       r.Resolution,
		BucketHeight:     r.BucketHeight,
		HashTableLength:  uint64(r.HashTableLength),
		QueueSize:        r.QueueSize,
		TicketCellMax:    uint64(r.TicketCellMax),
		NumberOfInputs:   uint64(r.NumberOfInputs),
		DictionaryPath:   r.DictionaryPath,
		CustomDictionary: r.CustomDictionary || r.DictionaryPath != "",
		Seed:             uint64(r.Seed),
	}, nil
}

// ResolvedOutputDir returns OutputDir with a leading ~ expanded.
func (a *Agent) ResolvedOutputDir() (string, error) {
	return homedir.Expand(a.OutputDir)
}

func parseFile(file string, cfg *Agent) error {
	return hclsimple.DecodeFile(file, nil, cfg)
}

// LoadPaths layers every path over the defaults, in order.
func LoadPaths(paths []string) (*Agent, error) {
	cfg := Default()

	var validationErr *multierror.Error

	for _, path := range paths {
		current, err := Load(path)
		if err != nil {
			return nil, fmt.Errorf("error loading configuration from %s: %s", path, err)
		}

		if err := current.Validate(); err != nil {
			errPrefix := fmt.Sprintf("%s:", path)
			validationErr = multierror.Append(validationErr, multierror.Prefix(err, errPrefix))

			// Continue looping so we can validate other files.
			continue
		}

		cfg = cfg.Merge(current)
	}

	if validationErr != nil {
		return nil, fmt.Errorf("invalid configuration. %v", validationErr)
	}

	return cfg, nil
}

// Load loads the configuration at the given path, regardless if its a file or
// directory.
func Load(path string) (*Agent, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if fi.IsDir() {
		return loadDir(path)
	}

	cleaned := filepath.Clean(path)

	cfg := &Agent{}
	if err := parseFile(cleaned, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file %s: %v", cleaned, err)
	}
	return cfg, nil
}

// loadDir loads all the configurations in the given directory in alphabetical
// order.
func loadDir(dir string) (*Agent, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config directory: %v", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".hcl", ".json":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}

	// Fast-path if we have no files
	if len(files) == 0 {
		return &Agent{}, nil
	}

	sort.Strings(files)

	var result *Agent
	for _, f := range files {
		cfg := &Agent{}

		if err := parseFile(f, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file %s: %v", f, err)
		}

		if result == nil {
			result = cfg
		} else {
			result = result.Merge(cfg)
		}
	}

	return result, nil
}
