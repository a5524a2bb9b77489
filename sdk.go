package tapsdk

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"unicode/utf8"
	"unsafe"

	"go.uber.org/zap"

	"github.com/roach88/tapsdk/sys"
)

// SDK is the context object for one native library. It owns the
// initialization flag and the event queue; there are no package globals.
//
// The vendor library itself is process-global, so a process should hold a
// single SDK per loaded library.
type SDK struct {
	lib      sys.Library
	logger   *zap.Logger
	observer Observer

	mu          sync.Mutex
	initialized bool

	cbOnce   sync.Once
	callback sys.Callback

	queue atomic.Pointer[eventQueue]
}

// Option configures an SDK.
type Option func(*SDK)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *SDK) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver installs an Observer for dispatch and request counters.
func WithObserver(o Observer) Option {
	return func(s *SDK) {
		if o != nil {
			s.observer = o
		}
	}
}

// New wraps an already loaded library.
func New(lib sys.Library, opts ...Option) *SDK {
	s := &SDK{
		lib:      lib,
		logger:   zap.NewNop(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open loads the native library at path (sys.DefaultLibrary when empty)
// and wraps it. Off Windows it fails with ErrUnsupportedPlatform.
func Open(path string, opts ...Option) (*SDK, error) {
	lib, err := sys.Open(path)
	if errors.Is(err, sys.ErrUnsupportedPlatform) {
		return nil, ErrUnsupportedPlatform
	}
	if err != nil {
		return nil, fmt.Errorf("open native library: %w", err)
	}
	return New(lib, opts...), nil
}

// RestartAppIfNecessary asks the SDK whether the game was started outside
// TapTap. When it returns true the client is relaunching the game and the
// caller should exit immediately. Call it before Init.
func (s *SDK) RestartAppIfNecessary(clientID string) (bool, error) {
	p, err := cstring("client id", clientID)
	if err != nil {
		return false, err
	}
	restart := s.lib.RestartAppIfNecessary(p)
	s.logger.Debug("restart check", zap.Bool("restart", restart))
	return restart, nil
}

// Init initializes the native SDK and registers the event dispatcher.
// The returned Handle must be closed to shut the SDK down; until then
// IsInitialized reports true and a second Init fails with
// ALREADY_INITIALIZED.
func (s *SDK) Init(pubKey string) (*Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil, &Error{Code: ErrCodeAlreadyInitialized, Message: "SDK already initialized"}
	}

	key, err := cstring("public key", pubKey)
	if err != nil {
		return nil, err
	}

	var msg sys.ErrMsg
	result := s.lib.Init(&msg, key)
	if result != sys.InitOK {
		text := fixedString(msg[:])
		s.logger.Warn("init failed", zap.Stringer("result", result), zap.String("message", text))
		return nil, &Error{Code: ErrCodeInitFailed, Message: text, InitResult: result}
	}

	q := newEventQueue()
	s.queue.Store(q)
	cb := s.trampoline()
	for _, id := range sys.Events {
		s.lib.RegisterCallback(id, cb)
	}
	s.initialized = true
	s.logger.Debug("sdk initialized", zap.Int("callbacks", len(sys.Events)))

	return &Handle{sdk: s, queue: q, done: make(chan struct{})}, nil
}

// IsInitialized reports whether a Handle is live.
func (s *SDK) IsInitialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// trampoline returns the native function pointer bound to this SDK. It is
// created once: native callback slots are never reclaimed.
func (s *SDK) trampoline() sys.Callback {
	s.cbOnce.Do(func() {
		s.callback = s.lib.NewCallback(s.dispatch)
	})
	return s.callback
}

// dispatch runs on the native callback path. It must not panic and must
// not retain data.
func (s *SDK) dispatch(id sys.EventID, data unsafe.Pointer) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("dispatch panicked", zap.Stringer("event", id), zap.Any("panic", r))
		}
	}()

	ev, err := convert(id, data)
	if err != nil {
		s.logger.Warn("unreadable payload", zap.Stringer("event", id), zap.Error(err))
	}

	q := s.queue.Load()
	if q == nil || !q.Enqueue(ev) {
		s.logger.Debug("event dropped", zap.Stringer("event", id))
		s.observer.EventDropped(id)
		return
	}
	s.observer.EventDispatched(id)
}

func (s *SDK) ready() error {
	if !s.IsInitialized() {
		return errNotInitialized()
	}
	return nil
}

// cstring converts s for the C boundary. Text must be valid UTF-8 without
// NUL bytes.
func cstring(field, s string) (*byte, error) {
	if !utf8.ValidString(s) {
		return nil, malformed(field, nil)
	}
	p, err := sys.CString(s)
	if err != nil {
		return nil, malformed(field, err)
	}
	return p, nil
}

// Handle is a live initialization. Close it exactly once, usually with
// defer; further calls are no-ops.
type Handle struct {
	sdk   *SDK
	queue *eventQueue

	pollMu sync.Mutex
	once   sync.Once
	done   chan struct{}
}

// Poll runs pending native callbacks and returns every event queued since
// the previous Poll, oldest first. It never blocks waiting for events and
// returns nil after Close.
func (h *Handle) Poll() []Event {
	h.pollMu.Lock()
	defer h.pollMu.Unlock()

	select {
	case <-h.done:
		return nil
	default:
	}

	h.sdk.lib.RunCallbacks()
	events := h.queue.Drain()
	h.sdk.observer.Polled(len(events))
	if len(events) > 0 {
		h.sdk.logger.Debug("polled", zap.Int("events", len(events)))
	}
	return events
}

// ClientID returns the client id the SDK was initialized for. ok is false
// when the SDK reports none or the Handle is closed.
func (h *Handle) ClientID() (id string, ok bool) {
	select {
	case <-h.done:
		return "", false
	default:
	}
	if h.sdk.ready() != nil {
		return "", false
	}
	var buf sys.IDBuffer
	if !h.sdk.lib.GetClientID(&buf) {
		return "", false
	}
	id = fixedString(buf[:])
	return id, id != ""
}

// Done is closed when the Handle is closed.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Close unregisters the dispatcher, shuts the native SDK down and clears
// the initialization flag, in that order. Events arriving afterwards are
// dropped. Close always returns nil; the signature lets it satisfy
// io.Closer.
func (h *Handle) Close() error {
	h.once.Do(func() {
		h.pollMu.Lock()
		defer h.pollMu.Unlock()

		s := h.sdk
		s.mu.Lock()
		defer s.mu.Unlock()

		for _, id := range sys.Events {
			s.lib.UnregisterCallback(id, s.callback)
		}
		s.lib.Shutdown()
		h.queue.Close()
		s.initialized = false
		close(h.done)

		if n := h.queue.Len(); n > 0 {
			s.logger.Debug("discarding undelivered events", zap.Int("events", n))
		}
		s.logger.Debug("sdk shut down")
	})
	return nil
}
