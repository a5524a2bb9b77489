package sys

import "errors"

// DefaultLibrary is the file name of the vendor DLL.
const DefaultLibrary = "taptap_api.dll"

// ErrUnsupportedPlatform is returned by Open everywhere except Windows.
var ErrUnsupportedPlatform = errors.New("TapTap PC SDK is only supported on Windows")

// Library is the set of exported SDK entry points. Method names follow the
// C symbols with the module prefix folded in (TapDLC_IsOwned → DLCIsOwned).
//
// String arguments are NUL-terminated byte pointers; callers own them and
// must keep them alive for the duration of the call. No method retains a
// pointer after returning.
type Library interface {
	RestartAppIfNecessary(clientID *byte) bool
	Init(errMsg *ErrMsg, pubKey *byte) InitResult
	Shutdown()
	GetClientID(buf *IDBuffer) bool
	AppsIsOwned() bool

	// NewCallback turns fn into a native function pointer. Pointers are
	// never released, so callers create one per process-lifetime object.
	NewCallback(fn CallbackFunc) Callback
	RegisterCallback(id EventID, cb Callback)
	UnregisterCallback(id EventID, cb Callback)
	RunCallbacks()

	UserAsyncAuthorize(scopes *byte) AuthorizeResult
	UserGetOpenID(buf *IDBuffer) bool

	DLCShowStore(dlcID *byte) bool
	DLCIsOwned(dlcID *byte) bool

	CloudSave() CloudSaveHandle
	CloudSaveAsyncList(h CloudSaveHandle, requestID int64) CloudSaveResult
	CloudSaveAsyncCreate(h CloudSaveHandle, requestID int64, req *CloudSaveCreateRequest) CloudSaveResult
	CloudSaveAsyncUpdate(h CloudSaveHandle, requestID int64, req *CloudSaveUpdateRequest) CloudSaveResult
	CloudSaveAsyncDelete(h CloudSaveHandle, requestID int64, uuid *byte) CloudSaveResult
	CloudSaveAsyncGetData(h CloudSaveHandle, requestID int64, req *CloudSaveGetFileRequest) CloudSaveResult
	CloudSaveAsyncGetCover(h CloudSaveHandle, requestID int64, req *CloudSaveGetFileRequest) CloudSaveResult
}
