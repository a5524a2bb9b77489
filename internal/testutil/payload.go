package testutil

import (
	"unsafe"

	"github.com/roach88/tapsdk/sys"
)

// CStr returns a NUL-terminated copy of s. It panics on embedded NUL.
func CStr(s string) *byte {
	p, err := sys.CString(s)
	if err != nil {
		panic(err)
	}
	return p
}

// OptStr returns nil for a nil s, otherwise CStr(*s).
func OptStr(s *string) *byte {
	if s == nil {
		return nil
	}
	return CStr(*s)
}

// Str returns a pointer to s.
func Str(s string) *string { return &s }

// SystemStatePayload builds a TapSystemStateNotification.
func SystemStatePayload(state sys.SystemState) unsafe.Pointer {
	return unsafe.Pointer(&sys.SystemStateNotification{State: state})
}

// AuthorizePayload describes an AuthorizeFinishedResponse.
type AuthorizePayload struct {
	IsCancel     bool
	Error        string
	TokenType    string
	Kid          string
	MacKey       string
	MacAlgorithm string
	Scope        string
}

// Pointer lays the payload out in native form.
func (a AuthorizePayload) Pointer() unsafe.Pointer {
	r := &sys.AuthorizeFinishedResponse{IsCancel: sys.BoolOf(a.IsCancel)}
	copy(r.Error[:len(r.Error)-1], a.Error)
	copy(r.TokenType[:len(r.TokenType)-1], a.TokenType)
	copy(r.Kid[:len(r.Kid)-1], a.Kid)
	copy(r.MacKey[:len(r.MacKey)-1], a.MacKey)
	copy(r.MacAlgorithm[:len(r.MacAlgorithm)-1], a.MacAlgorithm)
	copy(r.Scope[:len(r.Scope)-1], a.Scope)
	return unsafe.Pointer(r)
}

// GamePlayablePayload builds a GamePlayableStatusChangedResponse.
func GamePlayablePayload(playable bool) unsafe.Pointer {
	return unsafe.Pointer(&sys.GamePlayableStatusChangedResponse{IsPlayable: sys.BoolOf(playable)})
}

// DLCPlayablePayload builds a DLCPlayableStatusChangedResponse.
func DLCPlayablePayload(dlcID string, playable bool) unsafe.Pointer {
	r := &sys.DLCPlayableStatusChangedResponse{IsPlayable: sys.BoolOf(playable)}
	copy(r.DLCID[:len(r.DLCID)-1], dlcID)
	return unsafe.Pointer(r)
}

// SaveInfo describes a TapCloudSaveInfo. A nil Summary or Extra becomes a
// NULL pointer; a pointer to "" becomes an empty C string.
type SaveInfo struct {
	UUID         string
	FileID       string
	Name         string
	SaveSize     uint32
	CoverSize    uint32
	Summary      *string
	Extra        *string
	Playtime     uint32
	CreatedTime  uint32
	ModifiedTime uint32
}

// Raw lays the record out in native form.
func (s SaveInfo) Raw() sys.CloudSaveInfo {
	return sys.CloudSaveInfo{
		UUID:         CStr(s.UUID),
		FileID:       CStr(s.FileID),
		Name:         CStr(s.Name),
		SaveSize:     s.SaveSize,
		CoverSize:    s.CoverSize,
		Summary:      OptStr(s.Summary),
		Extra:        OptStr(s.Extra),
		Playtime:     s.Playtime,
		CreatedTime:  s.CreatedTime,
		ModifiedTime: s.ModifiedTime,
	}
}

// APIErr builds a TapSDK_Error.
func APIErr(code sys.ErrorCode, message string) *sys.Error {
	return &sys.Error{Code: code, Message: CStr(message)}
}

// ListPayload builds a TapCloudSaveListResponse.
func ListPayload(requestID int64, apiErr *sys.Error, saves ...SaveInfo) unsafe.Pointer {
	r := &sys.CloudSaveListResponse{RequestID: requestID, Error: apiErr, SaveCount: int32(len(saves))}
	if len(saves) > 0 {
		raw := make([]sys.CloudSaveInfo, len(saves))
		for i, s := range saves {
			raw[i] = s.Raw()
		}
		r.Saves = &raw[0]
	}
	return unsafe.Pointer(r)
}

// CreatePayload builds a TapCloudSaveCreateResponse, also used for updates.
func CreatePayload(requestID int64, apiErr *sys.Error, save *SaveInfo) unsafe.Pointer {
	r := &sys.CloudSaveCreateResponse{RequestID: requestID, Error: apiErr}
	if save != nil {
		raw := save.Raw()
		r.Save = &raw
	}
	return unsafe.Pointer(r)
}

// DeletePayload builds a TapCloudSaveDeleteResponse.
func DeletePayload(requestID int64, apiErr *sys.Error, uuid string) unsafe.Pointer {
	return unsafe.Pointer(&sys.CloudSaveDeleteResponse{RequestID: requestID, Error: apiErr, UUID: CStr(uuid)})
}

// FilePayload builds a TapCloudSaveGetFileResponse.
func FilePayload(requestID int64, apiErr *sys.Error, data []byte) unsafe.Pointer {
	r := &sys.CloudSaveGetFileResponse{RequestID: requestID, Error: apiErr, Size: uint32(len(data))}
	if len(data) > 0 {
		r.Data = unsafe.Pointer(&data[0])
	}
	return unsafe.Pointer(r)
}
