package logger

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lazy-eggplant/vs.logger/internal/entry"
	logpkg "github.com/lazy-eggplant/vs.logger/pkg/log"
)

// Options configures a Logger. FilePath and RelayAddress are independent;
// either, both, or neither may be set.
type Options struct {
	// FilePath enables the append-only file sink when non-empty.
	FilePath string
	// RelayAddress enables the datagram publish sink when non-empty.
	RelayAddress string
	// ProducerID is carried in relay payloads as producer_uuid when set.
	// See NewProducerID.
	ProducerID string
	// Diag receives sink failure reports. Defaults to a console logger.
	Diag logpkg.Logger
}

// NewProducerID mints a producer instance identifier for deployments where
// several producers share one broker and seq_id alone cannot deduplicate.
func NewProducerID() string { return uuid.NewString() }

var processStart = time.Now()

// nowMicros reads the process monotonic clock in microseconds. Readings are
// comparable only within one process run.
var nowMicros = func() uint64 { return uint64(time.Since(processStart).Microseconds()) }

// Logger assigns timestamps and sequence numbers under a single ordering
// lock and drives both sinks inside the same critical section.
type Logger struct {
	mu     sync.Mutex
	seq    uint64
	closed bool

	file *fileSink
	pub  *publisher

	producerID string
	diag       logpkg.Logger
	clock      func() uint64
}

// New builds a Logger. Construction never fails: a sink that cannot be set
// up is reported once to Diag and stays disabled for the instance lifetime,
// while the other sink (if any) keeps working.
func New(opts Options) *Logger {
	diag := opts.Diag
	if diag == nil {
		diag = logpkg.NewLogger()
	}
	diag = diag.With(logpkg.Component("logger"))

	l := &Logger{
		producerID: opts.ProducerID,
		diag:       diag,
		clock:      nowMicros,
	}

	if opts.FilePath != "" {
		sink, err := openFileSink(opts.FilePath)
		if err != nil {
			diag.Error("failed to open log file, file sink disabled",
				logpkg.Str("path", opts.FilePath), logpkg.Err(err))
		} else {
			l.file = sink
		}
	}

	if opts.RelayAddress != "" {
		pub, err := openPublisher(opts.RelayAddress)
		if err != nil {
			diag.Error("failed to create relay channel, publish sink disabled",
				logpkg.Str("address", opts.RelayAddress), logpkg.Err(err))
		} else {
			l.pub = pub
		}
	}

	return l
}

// Log emits one entry. It blocks only for the ordering lock and sink I/O and
// never returns or panics on sink failure. After Close it is a no-op.
func (l *Logger) Log(kind entry.Kind, severity entry.Severity, message string, activityID, parentID uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	l.seq++
	e := entry.Entry{
		Kind:       kind,
		Severity:   severity,
		Timestamp:  l.clock(),
		ActivityID: activityID,
		Seq:        l.seq,
		ParentID:   parentID,
		Message:    message,
	}

	if l.file != nil {
		if err := l.file.write(e); err != nil {
			l.diag.Error("file sink write failed, entry dropped for file sink",
				logpkg.Uint64("seq", e.Seq), logpkg.Err(err))
		}
	}

	if l.pub != nil {
		payload, err := entry.EncodePayload(e, l.producerID)
		if err != nil {
			l.diag.Error("payload encode failed, entry dropped for publish sink",
				logpkg.Uint64("seq", e.Seq), logpkg.Err(err))
			return
		}
		if err := l.pub.send(payload); err != nil {
			l.diag.Warn("relay send failed, entry dropped for publish sink",
				logpkg.Uint64("seq", e.Seq), logpkg.Err(err))
		}
	}
}

// Close waits for any in-flight Log call, then releases both sinks.
// Subsequent Log calls are silently ignored.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true

	var errs []error
	if l.file != nil {
		if err := l.file.close(); err != nil {
			errs = append(errs, err)
		}
		l.file = nil
	}
	if l.pub != nil {
		if err := l.pub.close(); err != nil {
			errs = append(errs, err)
		}
		l.pub = nil
	}
	return errors.Join(errs...)
}
