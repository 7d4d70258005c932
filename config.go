package mmapbuf

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"

	"github.com/hupe1980/mmapbuf/internal/conv"
)

// Config is the declarative form of the constructor options. It is what the
// mmapctl CLI loads from files and the environment.
//
// Sizes accept human-readable values such as "4KiB", "64MB" or plain byte
// counts.
type Config struct {
	// Mode is "r", "w", "rw", "wr" or "a".
	Mode string `mapstructure:"mode" validate:"omitempty,oneof=r w rw wr a" yaml:"mode"`

	// Perm is the octal permission used when a file is created, e.g. "0644".
	Perm string `mapstructure:"perm" validate:"omitempty,numeric,max=4" yaml:"perm"`

	// Scope is "shared" or "private".
	Scope string `mapstructure:"scope" validate:"omitempty,oneof=shared private" yaml:"scope"`

	// Length maps a fixed-size window of this many bytes.
	Length string `mapstructure:"length" yaml:"length"`

	// Offset is the window start in the backing file.
	Offset string `mapstructure:"offset" yaml:"offset"`

	// Advice is the initial access hint.
	Advice string `mapstructure:"advice" validate:"omitempty,oneof=normal sequential random willneed dontneed" yaml:"advice"`

	// Increment is the minimum grow step.
	Increment string `mapstructure:"increment" yaml:"increment"`

	// Initialize is the fill byte for fresh anonymous regions, -1 to leave zeroed.
	Initialize int `mapstructure:"initialize" validate:"min=-1,max=255" yaml:"initialize"`

	// MemoryLimit caps mapped bytes. Empty means unlimited.
	MemoryLimit string `mapstructure:"memory_limit" yaml:"memory_limit"`

	// SyncRate caps Flush throughput in bytes per second. Empty means unlimited.
	SyncRate string `mapstructure:"sync_rate" yaml:"sync_rate"`

	// LockRetry paces blocking IPC acquisition.
	LockRetry time.Duration `mapstructure:"lock_retry" validate:"min=0" yaml:"lock_retry"`

	// IPC enables System V shared memory backing.
	IPC *IPCSection `mapstructure:"ipc" yaml:"ipc,omitempty"`

	// LogLevel is the minimum level of the text logger. Empty disables logging.
	LogLevel string `mapstructure:"log_level" validate:"omitempty,oneof=debug info warn error DEBUG INFO WARN ERROR" yaml:"log_level"`
}

// IPCSection configures shared-memory backing.
type IPCSection struct {
	Key       int    `mapstructure:"key" validate:"min=0" yaml:"key"`
	Permanent bool   `mapstructure:"permanent" yaml:"permanent"`
	Perm      string `mapstructure:"perm" validate:"omitempty,numeric,max=4" yaml:"perm"`
}

// DefaultConfig returns the configuration equivalent to calling a
// constructor without options.
func DefaultConfig() *Config {
	return &Config{
		Mode:       "r",
		Scope:      "shared",
		Advice:     "normal",
		Increment:  humanize.IBytes(DefaultIncrement),
		Initialize: -1,
	}
}

var validate = validator.New()

// Validate checks the configuration. Size fields are parsed as part of the
// check.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	_, err := c.sizes()
	return err
}

// sizes holds the parsed size fields of a validated Config.
type sizes struct {
	length, increment   int
	offset, limit, rate int64
}

func (c *Config) sizes() (sizes, error) {
	var s sizes
	for _, f := range []struct {
		name string
		in   string
		out  any
	}{
		{"length", c.Length, &s.length},
		{"increment", c.Increment, &s.increment},
		{"offset", c.Offset, &s.offset},
		{"memory_limit", c.MemoryLimit, &s.limit},
		{"sync_rate", c.SyncRate, &s.rate},
	} {
		v, err := parseSize(f.in)
		if err != nil {
			return s, fmt.Errorf("%w: %s: %w", ErrInvalidArgument, f.name, err)
		}
		switch out := f.out.(type) {
		case *int:
			*out, err = conv.Uint64ToInt(v)
		case *int64:
			*out, err = conv.Uint64ToInt64(v)
		}
		if err != nil {
			return s, fmt.Errorf("%w: %s: %w", ErrInvalidArgument, f.name, err)
		}
	}
	return s, nil
}

// Options converts the configuration into constructor options. The result
// is validated first.
func (c *Config) Options() ([]Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var opts []Option

	if c.Mode != "" {
		m, err := ParseMode(c.Mode)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithMode(m))
	}
	if c.Perm != "" {
		perm, err := parsePerm(c.Perm)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithPerm(perm))
	}
	if c.Scope != "" {
		s, err := ParseScope(c.Scope)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithScope(s))
	}
	if c.Advice != "" {
		a, err := ParseAdvice(c.Advice)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithAdvice(a))
	}

	sz, err := c.sizes()
	if err != nil {
		return nil, err
	}
	if c.Length != "" {
		opts = append(opts, WithLength(sz.length))
	}
	if c.Offset != "" {
		opts = append(opts, WithOffset(sz.offset))
	}
	if sz.increment > 0 {
		opts = append(opts, WithIncrement(sz.increment))
	}
	if c.Initialize >= 0 {
		opts = append(opts, WithInitialize(byte(c.Initialize)))
	}

	if sz.limit > 0 || sz.rate > 0 {
		opts = append(opts, WithResourceController(NewResourceController(ResourceConfig{
			MappedLimitBytes: sz.limit,
			SyncBytesPerSec:  sz.rate,
		})))
	}

	if c.LockRetry > 0 {
		opts = append(opts, WithLockRetryInterval(c.LockRetry))
	}

	if c.IPC != nil {
		ipc := IPCConfig{Key: c.IPC.Key, Permanent: c.IPC.Permanent}
		if c.IPC.Perm != "" {
			perm, err := parsePerm(c.IPC.Perm)
			if err != nil {
				return nil, err
			}
			ipc.Perm = perm
		}
		opts = append(opts, WithIPC(ipc))
	}

	if c.LogLevel != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
			return nil, fmt.Errorf("%w: log level: %w", ErrInvalidArgument, err)
		}
		opts = append(opts, WithLogLevel(level))
	}

	return opts, nil
}

func parseSize(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	return humanize.ParseBytes(s)
}

func parsePerm(s string) (os.FileMode, error) {
	var perm uint32
	if _, err := fmt.Sscanf(s, "%o", &perm); err != nil {
		return 0, fmt.Errorf("%w: perm %q: %w", ErrInvalidArgument, s, err)
	}
	return os.FileMode(perm), nil
}
