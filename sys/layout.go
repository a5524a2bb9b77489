package sys

import "unsafe"

// ErrMsg is the buffer TapSDK_Init writes its failure reason into.
type ErrMsg [1024]byte

// IDBuffer receives a NUL-terminated client id or open id.
type IDBuffer [256]byte

// Bool is a one-byte C bool. Native code may write any non-zero value.
type Bool uint8

// Go reports whether b is set.
func (b Bool) Go() bool { return b != 0 }

// BoolOf converts a Go bool.
func BoolOf(v bool) Bool {
	if v {
		return 1
	}
	return 0
}

// CallbackFunc receives one native event. data is only valid until the
// function returns.
type CallbackFunc func(id EventID, data unsafe.Pointer)

// Callback is a native function pointer created by Library.NewCallback.
type Callback uintptr

// CloudSaveHandle is the ITapCloudSave* returned by TapCloudSave().
type CloudSaveHandle uintptr

// Error mirrors TapSDK_Error.
type Error struct {
	Code    ErrorCode
	Message *byte
}

// SystemStateNotification mirrors TapSystemStateNotification.
type SystemStateNotification struct {
	State SystemState
}

// AuthorizeFinishedResponse mirrors struct AuthorizeFinishedResponse.
type AuthorizeFinishedResponse struct {
	IsCancel     Bool
	Error        [1024]byte
	TokenType    [32]byte
	Kid          [8 * 1024]byte
	MacKey       [8 * 1024]byte
	MacAlgorithm [32]byte
	Scope        [1024]byte
}

// GamePlayableStatusChangedResponse mirrors the header struct of the same name.
type GamePlayableStatusChangedResponse struct {
	IsPlayable Bool
}

// DLCPlayableStatusChangedResponse mirrors the header struct of the same name.
type DLCPlayableStatusChangedResponse struct {
	DLCID      [32]byte
	IsPlayable Bool
}

// CloudSaveInfo mirrors TapCloudSaveInfo. Summary and Extra are NULL when
// the save has none.
type CloudSaveInfo struct {
	UUID         *byte
	FileID       *byte
	Name         *byte
	SaveSize     uint32
	CoverSize    uint32
	Summary      *byte
	Extra        *byte
	Playtime     uint32
	CreatedTime  uint32
	ModifiedTime uint32
}

// CloudSaveListResponse mirrors TapCloudSaveListResponse.
type CloudSaveListResponse struct {
	RequestID int64
	Error     *Error
	SaveCount int32
	Saves     *CloudSaveInfo
}

// CloudSaveCreateRequest mirrors TapCloudSaveCreateRequest.
type CloudSaveCreateRequest struct {
	Name          *byte
	Summary       *byte
	Extra         *byte
	Playtime      uint32
	DataFilePath  *byte
	CoverFilePath *byte
}

// CloudSaveCreateResponse mirrors TapCloudSaveCreateResponse, which the
// header also uses for updates.
type CloudSaveCreateResponse struct {
	RequestID int64
	Error     *Error
	Save      *CloudSaveInfo
}

// CloudSaveUpdateRequest mirrors TapCloudSaveUpdateRequest.
type CloudSaveUpdateRequest struct {
	UUID          *byte
	Name          *byte
	Summary       *byte
	Extra         *byte
	Playtime      uint32
	DataFilePath  *byte
	CoverFilePath *byte
}

// CloudSaveDeleteResponse mirrors TapCloudSaveDeleteResponse.
type CloudSaveDeleteResponse struct {
	RequestID int64
	Error     *Error
	UUID      *byte
}

// CloudSaveGetFileRequest mirrors TapCloudSaveGetFileRequest.
type CloudSaveGetFileRequest struct {
	UUID   *byte
	FileID *byte
}

// CloudSaveGetFileResponse mirrors TapCloudSaveGetFileResponse.
type CloudSaveGetFileResponse struct {
	RequestID int64
	Error     *Error
	Size      uint32
	Data      unsafe.Pointer
}
