// Package jsbind exposes the SDK to JavaScript running in an embedded
// goja runtime.
//
// Scripts see the same surface as the Node.js addon shipped with the
// TapTap SDK:
//
//	if (TapSdk.restartAppIfNecessary("client-id")) { throw "relaunching" }
//	const sdk = new TapSdk(pubKey, (err, ev) => {
//	    if (ev.event_id === EventId.CLOUD_SAVE_LIST) {
//	        console.log(ev.saves.length)
//	        sdk.shutdown()
//	    }
//	})
//	CloudSave.get().list(1)
//
// Scripts run on a goja_nodejs event loop, so setTimeout and friends work.
// Events are polled on a background goroutine and handed to the callback
// on the loop. RunScript returns once every TapSdk instance is shut down.
package jsbind

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"
	"github.com/dop251/goja_nodejs/eventloop"
	"github.com/dop251/goja_nodejs/require"
	"go.uber.org/zap"

	"github.com/roach88/tapsdk"
)

// Host owns one goja event loop bound to an SDK. A Host runs one script.
type Host struct {
	loop     *eventloop.EventLoop
	vm       *goja.Runtime
	sdk      *tapsdk.SDK
	logger   *zap.Logger
	out      io.Writer
	interval time.Duration

	// loop goroutine only
	ctx       context.Context
	err       error
	instances map[*instance]struct{}
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the host logger. console.warn and console.error go to it.
func WithLogger(l *zap.Logger) Option {
	return func(h *Host) { h.logger = l }
}

// WithOutput redirects console.log. The default is stdout.
func WithOutput(w io.Writer) Option {
	return func(h *Host) { h.out = w }
}

// WithPollInterval sets how often TapSdk instances poll for events.
func WithPollInterval(d time.Duration) Option {
	return func(h *Host) { h.interval = d }
}

// NewHost creates an event loop with the TapSdk, CloudSave, EventId,
// SystemState and console globals installed.
func NewHost(sdk *tapsdk.SDK, opts ...Option) (*Host, error) {
	h := &Host{
		sdk:       sdk,
		logger:    zap.NewNop(),
		out:       os.Stdout,
		interval:  tapsdk.DefaultPollInterval,
		ctx:       context.Background(),
		instances: make(map[*instance]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}

	registry := require.NewRegistry()
	registry.RegisterNativeModule(console.ModuleName, console.RequireWithPrinter(printer{h}))
	h.loop = eventloop.NewEventLoop(eventloop.WithRegistry(registry), eventloop.EnableConsole(true))

	var err error
	h.loop.Run(func(vm *goja.Runtime) {
		h.vm = vm
		err = h.install()
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

// RunScript evaluates src, then runs the event loop until every TapSdk
// instance is shut down. Cancelling ctx shuts them all down.
func (h *Host) RunScript(ctx context.Context, name, src string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			h.vm.Interrupt(ctx.Err())
			h.loop.RunOnLoop(func(*goja.Runtime) { h.fail(ctx.Err()) })
		case <-stop:
		}
	}()

	// Each instance holds a keep-alive interval, so Run returns only once
	// all of them are shut down.
	h.loop.Run(func(vm *goja.Runtime) {
		h.ctx = ctx
		h.err = nil
		if _, err := vm.RunScript(name, src); err != nil {
			h.fail(err)
		}
	})

	var interrupted *goja.InterruptedError
	switch {
	case h.err == nil:
		return nil
	case ctx.Err() != nil && (errors.Is(h.err, ctx.Err()) || errors.As(h.err, &interrupted)):
		return ctx.Err()
	default:
		return fmt.Errorf("script %s: %w", name, h.err)
	}
}

// fail records the first script error and shuts every instance down,
// which lets the loop exit.
func (h *Host) fail(err error) {
	if h.err == nil {
		h.err = err
	}
	if serr := h.shutdownAll(); serr != nil {
		h.logger.Warn("shutdown after script error", zap.Error(serr))
	}
}

func (h *Host) shutdownAll() error {
	var errs []error
	for inst := range h.instances {
		errs = append(errs, h.stop(inst))
	}
	return errors.Join(errs...)
}

// throw raises err in the script as an Error whose message is err's text.
func (h *Host) throw(err error) {
	panic(h.vm.NewGoError(err))
}

// rangeError raises a RangeError in the script.
func (h *Host) rangeError(format string, args ...any) {
	obj, err := h.vm.New(h.vm.Get("RangeError"), h.vm.ToValue(fmt.Sprintf(format, args...)))
	if err != nil {
		h.throw(err)
	}
	panic(obj)
}

// printer routes console output: log and info to the host output, warn and
// error to the logger.
type printer struct{ h *Host }

func (p printer) Log(s string)   { fmt.Fprintln(p.h.out, s) }
func (p printer) Warn(s string)  { p.h.logger.Warn(s, zap.String("source", "console")) }
func (p printer) Error(s string) { p.h.logger.Error(s, zap.String("source", "console")) }
