package mmapbuf

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/mmapbuf/internal/fs"
	"github.com/hupe1980/mmapbuf/internal/mmap"
	"github.com/hupe1980/mmapbuf/internal/resource"
	"github.com/hupe1980/mmapbuf/internal/semlock"
)

// DefaultIncrement is the minimum number of bytes added by one grow.
const DefaultIncrement = 4096

// Mode selects how Open accesses the backing file.
type Mode int

const (
	// ModeRead opens read-only and freezes the buffer.
	ModeRead Mode = iota
	// ModeWrite opens read-write and truncates the file.
	ModeWrite
	// ModeReadWrite opens an existing file read-write.
	ModeReadWrite
	// ModeAppend opens read-write and creates the file if needed.
	ModeAppend
)

// ParseMode parses "r", "w", "rw", "wr" or "a".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "r":
		return ModeRead, nil
	case "w":
		return ModeWrite, nil
	case "rw", "wr":
		return ModeReadWrite, nil
	case "a":
		return ModeAppend, nil
	}
	return 0, fmt.Errorf("%w: mode %q", ErrInvalidArgument, s)
}

func (m Mode) String() string {
	switch m {
	case ModeWrite:
		return "w"
	case ModeReadWrite:
		return "rw"
	case ModeAppend:
		return "a"
	default:
		return "r"
	}
}

// Writable reports whether the mode allows modification.
func (m Mode) Writable() bool { return m != ModeRead }

func (m Mode) openFlags() int {
	switch m {
	case ModeWrite:
		return os.O_RDWR | os.O_TRUNC
	case ModeReadWrite:
		return os.O_RDWR
	case ModeAppend:
		return os.O_RDWR | os.O_CREATE
	default:
		return os.O_RDONLY
	}
}

// Prot is the page protection of a buffer.
type Prot = mmap.Prot

const (
	ProtNone      = mmap.ProtNone
	ProtRead      = mmap.ProtRead
	ProtWrite     = mmap.ProtWrite
	ProtReadWrite = mmap.ProtReadWrite
)

// ParseProt parses "r", "w", "rw"/"wr" or "none".
func ParseProt(s string) (Prot, error) {
	switch s {
	case "r":
		return ProtRead, nil
	case "w":
		return ProtWrite, nil
	case "rw", "wr":
		return ProtReadWrite, nil
	case "none", "":
		return ProtNone, nil
	}
	return 0, fmt.Errorf("%w: protection %q", ErrInvalidArgument, s)
}

// Scope selects shared or private (copy-on-write) mappings.
type Scope = mmap.Scope

const (
	ScopeShared  = mmap.ScopeShared
	ScopePrivate = mmap.ScopePrivate
)

// ParseScope parses "shared" or "private".
func ParseScope(s string) (Scope, error) {
	switch s {
	case "", "shared":
		return ScopeShared, nil
	case "private":
		return ScopePrivate, nil
	}
	return 0, fmt.Errorf("%w: scope %q", ErrInvalidArgument, s)
}

// Advice is an access-pattern hint for the kernel.
type Advice = mmap.AccessPattern

const (
	AdviceNormal     = mmap.AccessDefault
	AdviceSequential = mmap.AccessSequential
	AdviceRandom     = mmap.AccessRandom
	AdviceWillNeed   = mmap.AccessWillNeed
	AdviceDontNeed   = mmap.AccessDontNeed
)

// ParseAdvice parses "normal", "sequential", "random", "willneed" or "dontneed".
func ParseAdvice(s string) (Advice, error) {
	switch s {
	case "", "normal":
		return AdviceNormal, nil
	case "sequential":
		return AdviceSequential, nil
	case "random":
		return AdviceRandom, nil
	case "willneed":
		return AdviceWillNeed, nil
	case "dontneed":
		return AdviceDontNeed, nil
	}
	return 0, fmt.Errorf("%w: advice %q", ErrInvalidArgument, s)
}

// SyncMode selects how Flush writes pages back.
type SyncMode = mmap.SyncMode

const (
	SyncSync       = mmap.SyncSync
	SyncAsync      = mmap.SyncAsync
	SyncInvalidate = mmap.SyncInvalidate
)

// IPCConfig enables System V shared-memory backing.
type IPCConfig struct {
	// Key identifies the segment and semaphore. A non-positive key creates
	// a new pair under a generated key.
	Key int
	// Permanent keeps the segment after the last process detaches.
	Permanent bool
	// Perm is the permission of newly created objects. Zero means 0600.
	Perm os.FileMode
}

// ResourceController shares a mapped-bytes budget and a flush rate between buffers.
type ResourceController = resource.Controller

// ResourceConfig configures a ResourceController.
type ResourceConfig = resource.Config

// ErrMemoryLimitExceeded is returned when a grow would exceed the mapped-bytes limit.
var ErrMemoryLimitExceeded = resource.ErrMemoryLimitExceeded

// NewResourceController creates a controller that can be passed to several buffers.
func NewResourceController(cfg ResourceConfig) *ResourceController {
	return resource.NewController(cfg)
}

type options struct {
	mode       Mode
	modeSet    bool
	perm       os.FileMode
	scope      Scope
	length     int
	hasLength  bool
	offset     int64
	hasOffset  bool
	advice     Advice
	increment  int
	ipc        *IPCConfig
	fill       byte
	hasFill    bool
	logger     *Logger
	metrics    MetricsCollector
	resources  *resource.Controller
	lockRetry  time.Duration
	fileSystem fs.FileSystem
}

// Option configures a buffer constructor.
type Option func(*options)

// WithMode sets the open mode. Defaults to ModeRead.
func WithMode(m Mode) Option {
	return func(o *options) {
		o.mode = m
		o.modeSet = true
	}
}

// WithPerm sets the permission used when Open creates a file. Defaults to 0666.
func WithPerm(perm os.FileMode) Option {
	return func(o *options) {
		o.perm = perm
	}
}

// WithScope selects shared or private mapping. Private buffers never grow.
func WithScope(s Scope) Option {
	return func(o *options) {
		o.scope = s
	}
}

// WithLength maps exactly n bytes and makes the buffer fixed-size.
// For anonymous buffers it is the region size.
func WithLength(n int) Option {
	return func(o *options) {
		o.length = n
		o.hasLength = true
	}
}

// WithOffset maps the file starting at off and makes the buffer fixed-size.
// The offset does not need to be page aligned.
func WithOffset(off int64) Option {
	return func(o *options) {
		o.offset = off
		o.hasOffset = true
	}
}

// WithAdvice sets the initial access hint. It is reapplied after every remap.
func WithAdvice(a Advice) Option {
	return func(o *options) {
		o.advice = a
	}
}

// WithIncrement sets the minimum grow step. Defaults to DefaultIncrement.
func WithIncrement(n int) Option {
	return func(o *options) {
		o.increment = n
	}
}

// WithIPC backs the buffer with System V shared memory coordinated by a
// semaphore.
func WithIPC(cfg IPCConfig) Option {
	return func(o *options) {
		o.ipc = &cfg
	}
}

// WithInitialize fills a freshly created anonymous region with b.
func WithInitialize(b byte) Option {
	return func(o *options) {
		o.fill = b
		o.hasFill = true
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &mmapbuf.BasicMetricsCollector{}
//	buf, _ := mmapbuf.Open(path, mmapbuf.WithMetricsCollector(metrics))
//	// ... edit buf ...
//	stats := metrics.GetStats()
//	fmt.Printf("Splices: %d, remaps: %d\n", stats.SpliceCount, stats.RemapCount)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metrics = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithResourceController shares a mapped-bytes budget between buffers.
func WithResourceController(rc *ResourceController) Option {
	return func(o *options) {
		o.resources = rc
	}
}

// WithMemoryLimit caps the bytes this buffer may map.
// Convenience wrapper for WithResourceController with a private controller.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.resources = resource.NewController(resource.Config{MappedLimitBytes: bytes})
	}
}

// WithLockRetryInterval sets how often a blocking acquire retries the
// semaphore. Defaults to 10ms.
func WithLockRetryInterval(d time.Duration) Option {
	return func(o *options) {
		o.lockRetry = d
	}
}

// WithFileSystem replaces the file system used to open and resize backing
// files. Intended for tests.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		o.fileSystem = fsys
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		mode:      ModeRead,
		perm:      0o666,
		scope:     ScopeShared,
		increment: DefaultIncrement,
		lockRetry: semlock.DefaultRetryInterval,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.metrics == nil {
		o.metrics = NoopMetricsCollector{}
	}
	if o.fileSystem == nil {
		o.fileSystem = fs.Default
	}
	if o.increment <= 0 {
		o.increment = DefaultIncrement
	}
	return o
}
