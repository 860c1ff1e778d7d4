// =======================
// engine/config.go
// =======================

package engine

import (
	"fmt"

	multierror "github.com/hashicorp/go-multierror"

	"hashviz/generator"
	"hashviz/hashmod"
	"hashviz/render"
)

// RunConfiguration holds everything one run needs. It is copied into the
// engine when a run starts and never changes during it.
type RunConfiguration struct {
	Mechanism generator.Mechanism
	Algorithm hashmod.Algorithm

	PointSize   float64
	ImageWidth  int
	ImageHeight int
	Resolution  int

	// BucketHeight is the bucket image height as a percentage of
	// ImageHeight.
	BucketHeight float64

	HashTableLength uint64

	// QueueSize bounds the number of inputs in flight and the number of
	// workers hashing them.
	QueueSize int

	TicketCellMax  uint64
	NumberOfInputs uint64

	DictionaryPath   string
	CustomDictionary bool

	// Seed drives lottery sampling. Equal seeds draw equal tickets.
	Seed uint64
}

// DefaultRunConfiguration returns the stock preferences.
func DefaultRunConfiguration() RunConfiguration {
	return RunConfiguration{
		Mechanism:       generator.MechanismLottery,
		Algorithm:       hashmod.AlgorithmPolynomial,
		PointSize:       1,
		ImageWidth:      512,
		ImageHeight:     512,
		Resolution:      1,
		BucketHeight:    100,
		HashTableLength: 1000,
		QueueSize:       8,
		TicketCellMax:   1000000,
		NumberOfInputs:  100000,
	}
}

// Validate reports every problem with c.
func (c RunConfiguration) Validate() error {
	var mErr *multierror.Error

	if c.Mechanism == generator.MechanismNone {
		mErr = multierror.Append(mErr, generator.ErrNoMechanism)
	}
	if c.HashTableLength == 0 {
		mErr = multierror.Append(mErr, fmt.Errorf("hash table length must be positive"))
	}
	if c.QueueSize < 1 {
		mErr = multierror.Append(mErr, fmt.Errorf("queue size must be at least 1, got %d", c.QueueSize))
	}
	if c.ImageWidth < 1 || c.ImageHeight < 1 {
		mErr = multierror.Append(mErr, fmt.Errorf("image size must be positive, got %dx%d", c.ImageWidth, c.ImageHeight))
	}
	if c.Resolution < 1 {
		mErr = multierror.Append(mErr, fmt.Errorf("resolution must be at least 1, got %d", c.Resolution))
	}
	if c.PointSize <= 0 {
		mErr = multierror.Append(mErr, fmt.Errorf("point size must be positive, got %v", c.PointSize))
	}
	if c.BucketHeight <= 0 || c.BucketHeight > 100 {
		mErr = multierror.Append(mErr, fmt.Errorf("bucket height must be in (0, 100], got %v", c.BucketHeight))
	}
	if c.Mechanism == generator.MechanismLottery {
		if c.TicketCellMax == 0 {
			mErr = multierror.Append(mErr, fmt.Errorf("ticket cell max must be positive"))
		}
		if c.NumberOfInputs == 0 {
			mErr = multierror.Append(mErr, fmt.Errorf("number of inputs must be positive in lottery mode"))
		}
	}

	return mErr.ErrorOrNil()
}

func (c RunConfiguration) renderOptions() render.Options {
	return render.Options{
		ImageWidth:   c.ImageWidth,
		ImageHeight:  c.ImageHeight,
		Resolution:   c.Resolution,
		PointSize:    c.PointSize,
		BucketHeight: c.BucketHeight,
	}
}

func (c RunConfiguration) generatorConfig() generator.Config {
	return generator.Config{
		Mechanism:        c.Mechanism,
		NumberOfInputs:   c.NumberOfInputs,
		BatchSize:        uint64(c.QueueSize),
		TicketCellMax:    c.TicketCellMax,
		Seed:             c.Seed,
		DictionaryPath:   c.DictionaryPath,
		CustomDictionary: c.CustomDictionary,
	}
}
