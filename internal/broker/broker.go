package broker

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sync"

	logpkg "github.com/lazy-eggplant/vs.logger/pkg/log"
)

// ErrStopped is returned by Register after the broker has shut down.
var ErrStopped = errors.New("broker: stopped")

// defaultBufferSize bounds one datagram. Payloads are single log lines, so
// 64 KiB leaves generous headroom.
const defaultBufferSize = 64 << 10

// Options configures a Broker.
type Options struct {
	// Address is the filesystem path of the rendezvous unixgram socket.
	Address string
	// History, when non-nil, records every received payload for replay.
	// The broker takes ownership and closes it on Stop.
	History *History
	// Diag receives relay failure reports. Defaults to a console logger.
	Diag logpkg.Logger
	// BufferSize overrides the receive buffer size.
	BufferSize int
}

// Broker relays datagrams arriving on the rendezvous address to every live
// subscriber. It owns the subscriber set and the bound socket exclusively.
type Broker struct {
	addr    string
	bufSize int
	history *History
	diag    logpkg.Logger

	conn *net.UnixConn
	reg  *registry

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopped  chan struct{}
}

// New builds a Broker. Call Start to bind and begin relaying.
func New(opts Options) *Broker {
	diag := opts.Diag
	if diag == nil {
		diag = logpkg.NewLogger()
	}
	bufSize := opts.BufferSize
	if bufSize <= 0 {
		bufSize = defaultBufferSize
	}
	return &Broker{
		addr:    opts.Address,
		bufSize: bufSize,
		history: opts.History,
		diag:    diag.With(logpkg.Component("broker")),
		reg:     newRegistry(),
		stopped: make(chan struct{}),
	}
}

// Start claims the rendezvous address and spawns the receive worker. A stale
// socket file from a previous run is removed first; an address that cannot
// be bound is fatal and returned to the caller.
func (b *Broker) Start() error {
	if b.addr == "" {
		return errors.New("broker: no rendezvous address configured")
	}
	if err := os.Remove(b.addr); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("broker: remove stale socket: %w", err)
	}
	conn, err := net.ListenUnixgram("unixgram", &net.UnixAddr{Name: b.addr, Net: "unixgram"})
	if err != nil {
		return fmt.Errorf("broker: bind %s: %w", b.addr, err)
	}
	b.conn = conn
	b.diag.Info("listening", logpkg.Str("address", b.addr))

	b.wg.Add(1)
	go b.receiveLoop()
	return nil
}

// Stop shuts the broker down cooperatively: the socket is closed (which
// unblocks the receive worker deterministically), the worker is joined, all
// live subscribers are closed, and the socket file is released.
func (b *Broker) Stop() {
	b.stopOnce.Do(func() {
		close(b.stopped)
		if b.conn != nil {
			_ = b.conn.Close()
		}
		b.wg.Wait()
		for _, s := range b.reg.drain() {
			_ = s.sub.Close()
		}
		if b.addr != "" {
			_ = os.Remove(b.addr)
		}
		if err := b.history.Close(); err != nil {
			b.diag.Warn("history close failed", logpkg.Err(err))
		}
	})
}

// Register adds a subscriber whose transport handshake has completed and
// returns its stable id. A filter expression that fails to compile rejects
// the registration.
func (b *Broker) Register(sub Subscriber, opts ...SubscribeOption) (uint64, error) {
	select {
	case <-b.stopped:
		return 0, ErrStopped
	default:
	}
	var so subscribeOptions
	for _, opt := range opts {
		if err := opt(&so); err != nil {
			return 0, err
		}
	}
	s := b.reg.add(sub, so.filter)
	b.diag.Debug("subscriber registered", logpkg.Uint64("id", s.id), logpkg.Int("live", b.reg.size()))
	return s.id, nil
}

// Unregister removes and closes a subscriber. Unknown ids are ignored, so
// transport-side disconnects racing a broadcast-side removal are harmless.
func (b *Broker) Unregister(id uint64) {
	if s := b.reg.detach(id); s != nil {
		_ = s.sub.Close()
		b.diag.Debug("subscriber removed", logpkg.Uint64("id", id), logpkg.Int("live", b.reg.size()))
	}
}

// Subscribers reports the current live subscriber count.
func (b *Broker) Subscribers() int { return b.reg.size() }

// History exposes the replay store, nil when disabled.
func (b *Broker) History() *History { return b.history }

// SubscribeOption customizes one registration.
type SubscribeOption func(*subscribeOptions) error

type subscribeOptions struct {
	filter Filter
}

// WithFilter attaches a CEL filter expression to the subscription; only
// payloads the expression matches are delivered.
func WithFilter(expr string) SubscribeOption {
	return func(o *subscribeOptions) error {
		f, err := NewFilter(expr)
		if err != nil {
			return fmt.Errorf("broker: compile filter: %w", err)
		}
		o.filter = f
		return nil
	}
}

func (b *Broker) receiveLoop() {
	defer b.wg.Done()
	buf := make([]byte, b.bufSize)
	for {
		n, _, err := b.conn.ReadFromUnix(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			select {
			case <-b.stopped:
				return
			default:
			}
			b.diag.Warn("receive failed", logpkg.Err(err))
			continue
		}
		if n == 0 {
			continue
		}
		payload := make([]byte, n)
		copy(payload, buf[:n])

		if b.history != nil {
			if err := b.history.Append(payload); err != nil {
				b.diag.Warn("history append failed, payload not retained", logpkg.Err(err))
			}
		}
		b.broadcast(payload)
	}
}

// broadcast relays one payload to the membership as of this instant. Sends
// happen outside the registry lock; a failed subscriber is detached and
// closed before the broadcast returns, and can never block the others.
func (b *Broker) broadcast(payload []byte) {
	subs := b.reg.snapshot()
	if len(subs) == 0 {
		return
	}

	var parsed *payloadFields
	var failed []uint64
	for _, s := range subs {
		if s.filter.enabled {
			if parsed == nil {
				parsed = parsePayload(payload)
			}
			if !s.filter.Eval(parsed) {
				continue
			}
		}
		if err := s.sub.Send(payload); err != nil {
			b.diag.Warn("subscriber send failed, removing",
				logpkg.Uint64("id", s.id), logpkg.Err(err))
			failed = append(failed, s.id)
		}
	}
	for _, id := range failed {
		b.Unregister(id)
	}
}
