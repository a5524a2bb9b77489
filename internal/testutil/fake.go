// Package testutil provides a scripted stand-in for the native TapTap
// library so the wrapper can be tested on any platform.
package testutil

import (
	"sync"
	"unsafe"

	"github.com/roach88/tapsdk/sys"
)

// CreateCall records the strings of a TapCloudSave_AsyncCreate or
// TapCloudSave_AsyncUpdate request, decoded while the call was live.
// Absent optional pointers decode as Missing.
type CreateCall struct {
	RequestID     int64
	UUID          string
	Name          string
	Summary       string
	Extra         string
	Playtime      uint32
	DataFilePath  string
	CoverFilePath string
}

// Missing is recorded for a NULL optional pointer.
const Missing = "<nil>"

type pending struct {
	id   sys.EventID
	data unsafe.Pointer
}

// FakeLibrary implements sys.Library. Exported fields script results and
// may be set before the library is handed to tapsdk.New; the Last* fields
// capture arguments of the most recent call.
//
// Events queued with Emit are delivered, in order, to registered callbacks
// during the next RunCallbacks, mirroring the native SDK.
//
// Thread-safety: all methods are safe for concurrent use. Callbacks are
// invoked without the lock held.
type FakeLibrary struct {
	mu sync.Mutex

	Restart         bool
	InitResult      sys.InitResult
	InitMessage     string
	ClientID        string
	OpenID          string
	GameOwned       bool
	OwnedDLCs       map[string]bool
	StoreShown      bool
	AuthorizeResult sys.AuthorizeResult
	Handle          sys.CloudSaveHandle
	CloudSaveResult sys.CloudSaveResult

	LastPubKey    string
	LastClientID  string
	LastScopes    string
	LastDLC       string
	LastRequestID int64
	LastCreate    *CreateCall
	LastUpdate    *CreateCall
	LastDelete    string
	LastFile      [2]string

	calls      []string
	funcs      map[sys.Callback]sys.CallbackFunc
	registered map[sys.EventID][]sys.Callback
	queue      []pending
}

// NewFakeLibrary returns a library whose every request succeeds.
func NewFakeLibrary() *FakeLibrary {
	return &FakeLibrary{
		InitResult:      sys.InitOK,
		AuthorizeResult: sys.AuthorizeOK,
		Handle:          1,
		CloudSaveResult: sys.CloudSaveOK,
		OwnedDLCs:       map[string]bool{},
		funcs:           map[sys.Callback]sys.CallbackFunc{},
		registered:      map[sys.EventID][]sys.Callback{},
	}
}

func (f *FakeLibrary) record(name string) {
	f.calls = append(f.calls, name)
}

// Calls returns the entry points invoked so far, in order.
func (f *FakeLibrary) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CallCount returns how many times name was invoked.
func (f *FakeLibrary) CallCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

// Registered returns the callbacks currently registered for id.
func (f *FakeLibrary) Registered(id sys.EventID) []sys.Callback {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sys.Callback(nil), f.registered[id]...)
}

// Emit queues a payload for delivery on the next RunCallbacks. data must
// stay reachable until then; the builders in this package guarantee that.
func (f *FakeLibrary) Emit(id sys.EventID, data unsafe.Pointer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, pending{id: id, data: data})
}

// Pending returns the number of emitted events not yet delivered.
func (f *FakeLibrary) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Deliver invokes the registered callbacks for id immediately, as an SDK
// thread would.
func (f *FakeLibrary) Deliver(id sys.EventID, data unsafe.Pointer) {
	f.mu.Lock()
	var fns []sys.CallbackFunc
	for _, cb := range f.registered[id] {
		fns = append(fns, f.funcs[cb])
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(id, data)
	}
}

func (f *FakeLibrary) RestartAppIfNecessary(clientID *byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("RestartAppIfNecessary")
	f.LastClientID = sys.GoString(clientID)
	return f.Restart
}

func (f *FakeLibrary) Init(errMsg *sys.ErrMsg, pubKey *byte) sys.InitResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Init")
	f.LastPubKey = sys.GoString(pubKey)
	if f.InitResult != sys.InitOK {
		copy(errMsg[:len(errMsg)-1], f.InitMessage)
	}
	return f.InitResult
}

func (f *FakeLibrary) Shutdown() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("Shutdown")
}

func (f *FakeLibrary) GetClientID(buf *sys.IDBuffer) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetClientID")
	if f.ClientID == "" {
		return false
	}
	copy(buf[:len(buf)-1], f.ClientID)
	return true
}

func (f *FakeLibrary) AppsIsOwned() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("AppsIsOwned")
	return f.GameOwned
}

func (f *FakeLibrary) NewCallback(fn sys.CallbackFunc) sys.Callback {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("NewCallback")
	cb := sys.Callback(len(f.funcs) + 1)
	f.funcs[cb] = fn
	return cb
}

func (f *FakeLibrary) RegisterCallback(id sys.EventID, cb sys.Callback) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("RegisterCallback")
	f.registered[id] = append(f.registered[id], cb)
}

func (f *FakeLibrary) UnregisterCallback(id sys.EventID, cb sys.Callback) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UnregisterCallback")
	cbs := f.registered[id]
	for i, c := range cbs {
		if c == cb {
			f.registered[id] = append(cbs[:i:i], cbs[i+1:]...)
			break
		}
	}
}

func (f *FakeLibrary) RunCallbacks() {
	f.mu.Lock()
	f.record("RunCallbacks")
	queued := f.queue
	f.queue = nil
	f.mu.Unlock()

	for _, p := range queued {
		f.Deliver(p.id, p.data)
	}
}

func (f *FakeLibrary) UserAsyncAuthorize(scopes *byte) sys.AuthorizeResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UserAsyncAuthorize")
	f.LastScopes = sys.GoString(scopes)
	return f.AuthorizeResult
}

func (f *FakeLibrary) UserGetOpenID(buf *sys.IDBuffer) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UserGetOpenID")
	if f.OpenID == "" {
		return false
	}
	copy(buf[:len(buf)-1], f.OpenID)
	return true
}

func (f *FakeLibrary) DLCShowStore(dlcID *byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DLCShowStore")
	f.LastDLC = sys.GoString(dlcID)
	return f.StoreShown
}

func (f *FakeLibrary) DLCIsOwned(dlcID *byte) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DLCIsOwned")
	f.LastDLC = sys.GoString(dlcID)
	return f.OwnedDLCs[f.LastDLC]
}

func (f *FakeLibrary) CloudSave() sys.CloudSaveHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CloudSave")
	return f.Handle
}

func (f *FakeLibrary) CloudSaveAsyncList(h sys.CloudSaveHandle, requestID int64) sys.CloudSaveResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CloudSaveAsyncList")
	f.LastRequestID = requestID
	return f.CloudSaveResult
}

func (f *FakeLibrary) CloudSaveAsyncCreate(h sys.CloudSaveHandle, requestID int64, req *sys.CloudSaveCreateRequest) sys.CloudSaveResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CloudSaveAsyncCreate")
	f.LastRequestID = requestID
	f.LastCreate = &CreateCall{
		RequestID:     requestID,
		Name:          optString(req.Name),
		Summary:       optString(req.Summary),
		Extra:         optString(req.Extra),
		Playtime:      req.Playtime,
		DataFilePath:  optString(req.DataFilePath),
		CoverFilePath: optString(req.CoverFilePath),
	}
	return f.CloudSaveResult
}

func (f *FakeLibrary) CloudSaveAsyncUpdate(h sys.CloudSaveHandle, requestID int64, req *sys.CloudSaveUpdateRequest) sys.CloudSaveResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CloudSaveAsyncUpdate")
	f.LastRequestID = requestID
	f.LastUpdate = &CreateCall{
		RequestID:     requestID,
		UUID:          optString(req.UUID),
		Name:          optString(req.Name),
		Summary:       optString(req.Summary),
		Extra:         optString(req.Extra),
		Playtime:      req.Playtime,
		DataFilePath:  optString(req.DataFilePath),
		CoverFilePath: optString(req.CoverFilePath),
	}
	return f.CloudSaveResult
}

func (f *FakeLibrary) CloudSaveAsyncDelete(h sys.CloudSaveHandle, requestID int64, uuid *byte) sys.CloudSaveResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CloudSaveAsyncDelete")
	f.LastRequestID = requestID
	f.LastDelete = sys.GoString(uuid)
	return f.CloudSaveResult
}

func (f *FakeLibrary) CloudSaveAsyncGetData(h sys.CloudSaveHandle, requestID int64, req *sys.CloudSaveGetFileRequest) sys.CloudSaveResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CloudSaveAsyncGetData")
	f.LastRequestID = requestID
	f.LastFile = [2]string{sys.GoString(req.UUID), sys.GoString(req.FileID)}
	return f.CloudSaveResult
}

func (f *FakeLibrary) CloudSaveAsyncGetCover(h sys.CloudSaveHandle, requestID int64, req *sys.CloudSaveGetFileRequest) sys.CloudSaveResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CloudSaveAsyncGetCover")
	f.LastRequestID = requestID
	f.LastFile = [2]string{sys.GoString(req.UUID), sys.GoString(req.FileID)}
	return f.CloudSaveResult
}

func optString(p *byte) string {
	if p == nil {
		return Missing
	}
	return sys.GoString(p)
}

var _ sys.Library = (*FakeLibrary)(nil)
