package region

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/arloliu/region/errs"
	"github.com/arloliu/region/format"
)

// config holds the settings shared by FileRegion and MemoryRegion.
type config struct {
	fs          afero.Fs
	compression format.CompressionType
	logger      zerolog.Logger
	metrics     *Metrics
}

func newConfig(opts []Option) (*config, error) {
	c := &config{
		fs:          afero.NewOsFs(),
		compression: format.CompressionGzip,
		logger:      zerolog.Nop(),
	}

	for _, opt := range opts {
		if err := opt.apply(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Option configures a region at construction time.
type Option interface {
	apply(*config) error
}

type optionFunc func(*config) error

func (f optionFunc) apply(c *config) error {
	return f(c)
}

// WithFs sets the filesystem region files are opened on. Defaults to the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return optionFunc(func(c *config) error {
		if fs == nil {
			return fmt.Errorf("%w: nil filesystem", errs.ErrInvalidArgument)
		}
		c.fs = fs

		return nil
	})
}

// WithCompression sets the scheme FileRegion compresses new payloads with.
// It must be a scheme with an on-disk id (gzip or zlib). Defaults to gzip.
//
// MemoryRegion ignores this option; its working scheme is a constructor argument.
func WithCompression(compression format.CompressionType) Option {
	return optionFunc(func(c *config) error {
		if !compression.Persistable() {
			return fmt.Errorf("%w: compression %s cannot be stored on disk", errs.ErrInvalidArgument, compression)
		}
		c.compression = compression

		return nil
	})
}

// WithLogger sets the logger for debug events. Defaults to zerolog.Nop().
func WithLogger(logger zerolog.Logger) Option {
	return optionFunc(func(c *config) error {
		c.logger = logger
		return nil
	})
}

// WithMetrics enables metrics collection.
func WithMetrics(m *Metrics) Option {
	return optionFunc(func(c *config) error {
		c.metrics = m
		return nil
	})
}
