//go:build windows

package sys

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

const ptrSize = unsafe.Sizeof(uintptr(0))

type dll struct {
	lib *windows.LazyDLL

	restartAppIfNecessary *windows.LazyProc
	initSDK               *windows.LazyProc
	shutdown              *windows.LazyProc
	getClientID           *windows.LazyProc
	appsIsOwned           *windows.LazyProc
	registerCallback      *windows.LazyProc
	unregisterCallback    *windows.LazyProc
	runCallbacks          *windows.LazyProc
	userAsyncAuthorize    *windows.LazyProc
	userGetOpenID         *windows.LazyProc
	dlcShowStore          *windows.LazyProc
	dlcIsOwned            *windows.LazyProc
	cloudSave             *windows.LazyProc
	cloudSaveList         *windows.LazyProc
	cloudSaveCreate       *windows.LazyProc
	cloudSaveUpdate       *windows.LazyProc
	cloudSaveDelete       *windows.LazyProc
	cloudSaveGetData      *windows.LazyProc
	cloudSaveGetCover     *windows.LazyProc
}

// Open loads the SDK DLL at path (DefaultLibrary when empty) and resolves
// every entry point. A missing symbol fails the whole load.
func Open(path string) (Library, error) {
	if path == "" {
		path = DefaultLibrary
	}
	lib := windows.NewLazyDLL(path)
	if err := lib.Load(); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}

	d := &dll{lib: lib}
	procs := []struct {
		dst  **windows.LazyProc
		name string
	}{
		{&d.restartAppIfNecessary, "TapSDK_RestartAppIfNecessary"},
		{&d.initSDK, "TapSDK_Init"},
		{&d.shutdown, "TapSDK_Shutdown"},
		{&d.getClientID, "TapSDK_GetClientID"},
		{&d.appsIsOwned, "TapApps_IsOwned"},
		{&d.registerCallback, "TapSDK_RegisterCallback"},
		{&d.unregisterCallback, "TapSDK_UnregisterCallback"},
		{&d.runCallbacks, "TapSDK_RunCallbacks"},
		{&d.userAsyncAuthorize, "TapUser_AsyncAuthorize"},
		{&d.userGetOpenID, "TapUser_GetOpenID"},
		{&d.dlcShowStore, "TapDLC_ShowStore"},
		{&d.dlcIsOwned, "TapDLC_IsOwned"},
		{&d.cloudSave, "TapCloudSave"},
		{&d.cloudSaveList, "TapCloudSave_AsyncList"},
		{&d.cloudSaveCreate, "TapCloudSave_AsyncCreate"},
		{&d.cloudSaveUpdate, "TapCloudSave_AsyncUpdate"},
		{&d.cloudSaveDelete, "TapCloudSave_AsyncDelete"},
		{&d.cloudSaveGetData, "TapCloudSave_AsyncGetData"},
		{&d.cloudSaveGetCover, "TapCloudSave_AsyncGetCover"},
	}
	for _, p := range procs {
		proc := lib.NewProc(p.name)
		if err := proc.Find(); err != nil {
			return nil, fmt.Errorf("resolve %s: %w", p.name, err)
		}
		*p.dst = proc
	}
	return d, nil
}

// C bool comes back in AL; the upper bits of the register are garbage.
func cbool(r uintptr) bool { return r&0xff != 0 }

func (d *dll) RestartAppIfNecessary(clientID *byte) bool {
	r, _, _ := d.restartAppIfNecessary.Call(uintptr(unsafe.Pointer(clientID)))
	return cbool(r)
}

func (d *dll) Init(errMsg *ErrMsg, pubKey *byte) InitResult {
	r, _, _ := d.initSDK.Call(uintptr(unsafe.Pointer(errMsg)), uintptr(unsafe.Pointer(pubKey)))
	return InitResult(uint32(r))
}

func (d *dll) Shutdown() {
	d.shutdown.Call()
}

func (d *dll) GetClientID(buf *IDBuffer) bool {
	r, _, _ := d.getClientID.Call(uintptr(unsafe.Pointer(buf)))
	return cbool(r)
}

func (d *dll) AppsIsOwned() bool {
	r, _, _ := d.appsIsOwned.Call()
	return cbool(r)
}

func (d *dll) NewCallback(fn CallbackFunc) Callback {
	return Callback(windows.NewCallbackCDecl(func(id uint32, data uintptr) uintptr {
		fn(EventID(id), unsafe.Pointer(data))
		return 0
	}))
}

func (d *dll) RegisterCallback(id EventID, cb Callback) {
	d.registerCallback.Call(uintptr(id), uintptr(cb))
}

func (d *dll) UnregisterCallback(id EventID, cb Callback) {
	d.unregisterCallback.Call(uintptr(id), uintptr(cb))
}

func (d *dll) RunCallbacks() {
	d.runCallbacks.Call()
}

func (d *dll) UserAsyncAuthorize(scopes *byte) AuthorizeResult {
	r, _, _ := d.userAsyncAuthorize.Call(uintptr(unsafe.Pointer(scopes)))
	return AuthorizeResult(uint32(r))
}

func (d *dll) UserGetOpenID(buf *IDBuffer) bool {
	r, _, _ := d.userGetOpenID.Call(uintptr(unsafe.Pointer(buf)))
	return cbool(r)
}

func (d *dll) DLCShowStore(dlcID *byte) bool {
	r, _, _ := d.dlcShowStore.Call(uintptr(unsafe.Pointer(dlcID)))
	return cbool(r)
}

func (d *dll) DLCIsOwned(dlcID *byte) bool {
	r, _, _ := d.dlcIsOwned.Call(uintptr(unsafe.Pointer(dlcID)))
	return cbool(r)
}

func (d *dll) CloudSave() CloudSaveHandle {
	r, _, _ := d.cloudSave.Call()
	return CloudSaveHandle(r)
}

func (d *dll) CloudSaveAsyncList(h CloudSaveHandle, requestID int64) CloudSaveResult {
	var r uintptr
	if ptrSize == 8 {
		r, _, _ = d.cloudSaveList.Call(uintptr(h), uintptr(requestID))
	} else {
		lo, hi := split64(requestID)
		r, _, _ = d.cloudSaveList.Call(uintptr(h), lo, hi)
	}
	return CloudSaveResult(uint32(r))
}

func (d *dll) CloudSaveAsyncCreate(h CloudSaveHandle, requestID int64, req *CloudSaveCreateRequest) CloudSaveResult {
	return d.cloudCall(d.cloudSaveCreate, h, requestID, unsafe.Pointer(req))
}

func (d *dll) CloudSaveAsyncUpdate(h CloudSaveHandle, requestID int64, req *CloudSaveUpdateRequest) CloudSaveResult {
	return d.cloudCall(d.cloudSaveUpdate, h, requestID, unsafe.Pointer(req))
}

func (d *dll) CloudSaveAsyncDelete(h CloudSaveHandle, requestID int64, uuid *byte) CloudSaveResult {
	return d.cloudCall(d.cloudSaveDelete, h, requestID, unsafe.Pointer(uuid))
}

func (d *dll) CloudSaveAsyncGetData(h CloudSaveHandle, requestID int64, req *CloudSaveGetFileRequest) CloudSaveResult {
	return d.cloudCall(d.cloudSaveGetData, h, requestID, unsafe.Pointer(req))
}

func (d *dll) CloudSaveAsyncGetCover(h CloudSaveHandle, requestID int64, req *CloudSaveGetFileRequest) CloudSaveResult {
	return d.cloudCall(d.cloudSaveGetCover, h, requestID, unsafe.Pointer(req))
}

// cloudCall invokes an entry point shaped (handle, int64 request id, ptr).
// On 386 the int64 occupies two stack slots, low word first.
func (d *dll) cloudCall(p *windows.LazyProc, h CloudSaveHandle, requestID int64, arg unsafe.Pointer) CloudSaveResult {
	var r uintptr
	if ptrSize == 8 {
		r, _, _ = p.Call(uintptr(h), uintptr(requestID), uintptr(arg))
	} else {
		lo, hi := split64(requestID)
		r, _, _ = p.Call(uintptr(h), lo, hi, uintptr(arg))
	}
	return CloudSaveResult(uint32(r))
}

func split64(v int64) (lo, hi uintptr) {
	u := uint64(v)
	return uintptr(uint32(u)), uintptr(uint32(u >> 32))
}
