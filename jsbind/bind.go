package jsbind

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/eventloop"
	"go.uber.org/zap"

	"github.com/roach88/tapsdk"
)

// keepAlivePeriod is the period of the no-op interval that holds the event loop
// open while an instance lives.
const keepAlivePeriod = time.Hour

// instance is one `new TapSdk(...)`: an initialized handle plus the
// goroutine polling it.
type instance struct {
	handle    *tapsdk.Handle
	cancel    context.CancelFunc
	done      chan struct{}
	keepAlive *eventloop.Interval
	stopped   bool
}

func (h *Host) install() error {
	ctor := h.vm.ToValue(h.newTapSdk).(*goja.Object)
	statics := map[string]any{
		"restartAppIfNecessary": func(clientID string) bool {
			restart, err := h.sdk.RestartAppIfNecessary(clientID)
			if err != nil {
				h.throw(err)
			}
			return restart
		},
		"isInitialized": h.sdk.IsInitialized,
	}
	for name, fn := range statics {
		if err := ctor.Set(name, fn); err != nil {
			return err
		}
	}

	cloudSave := h.vm.NewObject()
	if err := cloudSave.Set("get", h.getCloudSave); err != nil {
		return err
	}

	globals := map[string]any{
		"TapSdk":      ctor,
		"CloudSave":   cloudSave,
		"EventId":     eventIDs(),
		"SystemState": systemStates(),
	}
	for name, v := range globals {
		if err := h.vm.Set(name, v); err != nil {
			return fmt.Errorf("install %s: %w", name, err)
		}
	}
	return nil
}

// newTapSdk implements `new TapSdk(pubKey, callback)`.
func (h *Host) newTapSdk(call goja.ConstructorCall) *goja.Object {
	pubKey := call.Argument(0).String()
	callback, ok := goja.AssertFunction(call.Argument(1))
	if !ok {
		h.throw(errors.New("TapSdk: callback must be a function"))
	}

	handle, err := h.sdk.Init(pubKey)
	if err != nil {
		h.throw(err)
	}

	ctx, cancel := context.WithCancel(h.ctx)
	inst := &instance{
		handle:    handle,
		cancel:    cancel,
		done:      make(chan struct{}),
		keepAlive: h.loop.SetInterval(func(*goja.Runtime) {}, keepAlivePeriod),
	}
	h.instances[inst] = struct{}{}

	go func() {
		defer close(inst.done)
		err := handle.Run(ctx, h.interval, func(ev tapsdk.Event) {
			h.loop.RunOnLoop(func(*goja.Runtime) {
				if inst.stopped {
					return
				}
				if _, err := callback(goja.Undefined(), goja.Null(), h.eventValue(ev)); err != nil {
					h.fail(err)
				}
			})
		})
		h.logger.Debug("event loop stopped", zap.Error(err))
	}()

	this := call.This
	methods := map[string]any{
		"getClientId": func() goja.Value {
			if id, ok := handle.ClientID(); ok {
				return h.vm.ToValue(id)
			}
			return goja.Null()
		},
		"authorize": func(call goja.FunctionCall) goja.Value {
			scopes := tapsdk.DefaultScopes
			if arg := call.Argument(0); !goja.IsUndefined(arg) && !goja.IsNull(arg) {
				scopes = arg.String()
			}
			if err := h.sdk.Authorize(scopes); err != nil {
				h.throw(err)
			}
			return goja.Undefined()
		},
		"getOpenId": func() goja.Value {
			if id, ok := h.sdk.OpenID(); ok {
				return h.vm.ToValue(id)
			}
			return goja.Null()
		},
		"isGameOwned": h.sdk.IsGameOwned,
		"isDlcOwned":  h.sdk.IsDLCOwned,
		"showDlcStore": func(dlcID string) bool {
			shown, err := h.sdk.ShowDLCStore(dlcID)
			if err != nil {
				h.throw(err)
			}
			return shown
		},
		"shutdown": func() {
			if err := h.stop(inst); err != nil {
				h.throw(err)
			}
		},
	}
	for name, fn := range methods {
		if err := this.Set(name, fn); err != nil {
			h.throw(err)
		}
	}
	return this
}

// stop joins the poll goroutine, releases the loop and closes the handle.
// Events still queued for the instance are dropped. Safe to call twice.
func (h *Host) stop(inst *instance) error {
	if inst.stopped {
		return nil
	}
	inst.stopped = true
	delete(h.instances, inst)

	inst.cancel()
	<-inst.done
	h.loop.ClearInterval(inst.keepAlive)
	return inst.handle.Close()
}

// getCloudSave implements CloudSave.get().
func (h *Host) getCloudSave() *goja.Object {
	cs, err := h.sdk.CloudSave()
	if err != nil {
		h.throw(err)
	}

	check := func(err error) {
		if err != nil {
			h.throw(err)
		}
	}

	obj := h.vm.NewObject()
	methods := map[string]any{
		"list": func(requestID int64) {
			check(cs.List(requestID))
		},
		"create": func(requestID int64, req goja.Value) {
			check(cs.Create(requestID, h.createRequest(h.object(req))))
		},
		"update": func(requestID int64, req goja.Value) {
			obj := h.object(req)
			check(cs.Update(requestID, tapsdk.UpdateRequest{
				UUID:          h.field(obj, "uuid"),
				CreateRequest: h.createRequest(obj),
			}))
		},
		"delete": func(requestID int64, uuid string) {
			check(cs.Delete(requestID, uuid))
		},
		"getData": func(requestID int64, uuid, fileID string) {
			check(cs.GetData(requestID, uuid, fileID))
		},
		"getCover": func(requestID int64, uuid, fileID string) {
			check(cs.GetCover(requestID, uuid, fileID))
		},
	}
	for name, fn := range methods {
		check(obj.Set(name, fn))
	}
	return obj
}

// createRequest reads the camelCase request object used by the Node.js
// addon. Missing optional fields are empty.
func (h *Host) createRequest(req *goja.Object) tapsdk.CreateRequest {
	var playtime uint32
	if v := req.Get("playtime"); v != nil && !goja.IsUndefined(v) && !goja.IsNull(v) {
		f := v.ToFloat()
		if math.IsNaN(f) || f < 0 || f > math.MaxUint32 {
			h.rangeError("playtime %v is outside [0, %d]", v, uint32(math.MaxUint32))
		}
		playtime = uint32(f)
	}
	return tapsdk.CreateRequest{
		Name:          h.field(req, "name"),
		Summary:       h.field(req, "summary"),
		Extra:         h.field(req, "extra"),
		Playtime:      playtime,
		DataFilePath:  h.field(req, "dataFilePath"),
		CoverFilePath: h.field(req, "coverFilePath"),
	}
}

func (h *Host) object(v goja.Value) *goja.Object {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		h.throw(errors.New("request object is required"))
	}
	return v.ToObject(h.vm)
}

func (h *Host) field(obj *goja.Object, key string) string {
	v := obj.Get(key)
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return ""
	}
	return v.String()
}
