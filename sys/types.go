package sys

import "fmt"

// EventID identifies a callback category (TapEventID).
type EventID uint32

const (
	EventUnknown                   EventID = 0
	EventSystemStateChanged        EventID = 1
	EventAuthorizeFinished         EventID = 2002
	EventGamePlayableStatusChanged EventID = 4001
	EventDLCPlayableStatusChanged  EventID = 4002
	EventCloudSaveList             EventID = 6001
	EventCloudSaveCreate           EventID = 6002
	EventCloudSaveUpdate           EventID = 6003
	EventCloudSaveDelete           EventID = 6004
	EventCloudSaveGetData          EventID = 6005
	EventCloudSaveGetCover         EventID = 6006
)

// Events lists every category a dispatcher is registered for, in header order.
var Events = []EventID{
	EventSystemStateChanged,
	EventAuthorizeFinished,
	EventGamePlayableStatusChanged,
	EventDLCPlayableStatusChanged,
	EventCloudSaveList,
	EventCloudSaveCreate,
	EventCloudSaveUpdate,
	EventCloudSaveDelete,
	EventCloudSaveGetData,
	EventCloudSaveGetCover,
}

var eventNames = map[EventID]string{
	EventUnknown:                   "Unknown",
	EventSystemStateChanged:        "SystemStateChanged",
	EventAuthorizeFinished:         "AuthorizeFinished",
	EventGamePlayableStatusChanged: "GamePlayableStatusChanged",
	EventDLCPlayableStatusChanged:  "DLCPlayableStatusChanged",
	EventCloudSaveList:             "CloudSaveList",
	EventCloudSaveCreate:           "CloudSaveCreate",
	EventCloudSaveUpdate:           "CloudSaveUpdate",
	EventCloudSaveDelete:           "CloudSaveDelete",
	EventCloudSaveGetData:          "CloudSaveGetData",
	EventCloudSaveGetCover:         "CloudSaveGetCover",
}

func (id EventID) String() string {
	if name, ok := eventNames[id]; ok {
		return name
	}
	return fmt.Sprintf("EventID(%d)", uint32(id))
}

// InitResult is returned by TapSDK_Init.
type InitResult uint32

const (
	InitOK                      InitResult = 0
	InitFailedGeneric           InitResult = 1
	InitNoPlatform              InitResult = 2
	InitNotLaunchedByPlatform   InitResult = 3
	InitPlatformVersionMismatch InitResult = 4
)

func (r InitResult) String() string {
	switch r {
	case InitOK:
		return "OK"
	case InitFailedGeneric:
		return "FailedGeneric"
	case InitNoPlatform:
		return "NoPlatform"
	case InitNotLaunchedByPlatform:
		return "NotLaunchedByPlatform"
	case InitPlatformVersionMismatch:
		return "PlatformVersionMismatch"
	}
	return fmt.Sprintf("Unknown(%d)", uint32(r))
}

// AuthorizeResult is returned by TapUser_AsyncAuthorize.
// Note that OK is 1, not 0.
type AuthorizeResult uint32

const (
	AuthorizeUnknown  AuthorizeResult = 0
	AuthorizeOK       AuthorizeResult = 1
	AuthorizeFailed   AuthorizeResult = 2
	AuthorizeInFlight AuthorizeResult = 3
)

func (r AuthorizeResult) String() string {
	switch r {
	case AuthorizeOK:
		return "OK"
	case AuthorizeFailed:
		return "Failed"
	case AuthorizeInFlight:
		return "InFlight"
	}
	return "Unknown"
}

// CloudSaveResult is returned by every TapCloudSave_Async* entry point.
type CloudSaveResult uint32

const (
	CloudSaveOK                    CloudSaveResult = 0
	CloudSaveUninitialized         CloudSaveResult = 1
	CloudSaveNoTapTapClient        CloudSaveResult = 2
	CloudSaveTapTapClientOutdated  CloudSaveResult = 3
	CloudSaveInvalidArgument       CloudSaveResult = 4
	CloudSaveSdkFailed             CloudSaveResult = 5
	CloudSaveFailedToReadSaveFile  CloudSaveResult = 6
	CloudSaveSaveFileTooLarge      CloudSaveResult = 7
	CloudSaveFailedToReadCoverFile CloudSaveResult = 8
	CloudSaveCoverFileTooLarge     CloudSaveResult = 9
)

var cloudSaveResultNames = [...]string{
	"OK",
	"Uninitialized",
	"NoTapTapClient",
	"TapTapClientOutdated",
	"InvalidArgument",
	"SdkFailed",
	"FailedToReadSaveFile",
	"SaveFileTooLarge",
	"FailedToReadCoverFile",
	"CoverFileTooLarge",
}

func (r CloudSaveResult) String() string {
	if int(r) < len(cloudSaveResultNames) {
		return cloudSaveResultNames[r]
	}
	return fmt.Sprintf("Unknown(%d)", uint32(r))
}

// SystemState is carried by TapSystemStateNotification.
type SystemState uint32

const (
	SystemStateUnknown          SystemState = 0
	SystemStatePlatformOnline   SystemState = 1
	SystemStatePlatformOffline  SystemState = 2
	SystemStatePlatformShutdown SystemState = 3
)

func (s SystemState) String() string {
	switch s {
	case SystemStatePlatformOnline:
		return "PlatformOnline"
	case SystemStatePlatformOffline:
		return "PlatformOffline"
	case SystemStatePlatformShutdown:
		return "PlatformShutdown"
	}
	return "Unknown"
}

// ErrorCode is the code field of TapSDK_Error.
type ErrorCode int64

const (
	ErrorSuccess             ErrorCode = 0
	ErrorUnknown             ErrorCode = 1
	ErrorUnauthorized        ErrorCode = 2
	ErrorMethodNotAllowed    ErrorCode = 3
	ErrorUnimplemented       ErrorCode = 4
	ErrorInvalidArguments    ErrorCode = 5
	ErrorForbidden           ErrorCode = 6
	ErrorUserIsDeactivated   ErrorCode = 7
	ErrorInternalServerError ErrorCode = 8
	ErrorInternalSdkError    ErrorCode = 9
	ErrorNetworkError        ErrorCode = 10

	// 400000-499999 are reserved for cloud save.
	ErrorCloudSaveInvalidFileSize           ErrorCode = 400000
	ErrorCloudSaveUploadRateLimit           ErrorCode = 400001
	ErrorCloudSaveFileNotFound              ErrorCode = 400002
	ErrorCloudSaveFileCountLimitPerClient   ErrorCode = 400003
	ErrorCloudSaveStorageSizeLimitPerClient ErrorCode = 400004
	ErrorCloudSaveTotalStorageSizeLimit     ErrorCode = 400005
	ErrorCloudSaveTimeout                   ErrorCode = 400006
	ErrorCloudSaveConcurrentCallDisallowed  ErrorCode = 400007
	ErrorCloudSaveStorageServerError        ErrorCode = 400008
	ErrorCloudSaveInvalidName               ErrorCode = 400009
)

var errorCodeNames = map[ErrorCode]string{
	ErrorSuccess:                            "Success",
	ErrorUnknown:                            "Unknown",
	ErrorUnauthorized:                       "Unauthorized",
	ErrorMethodNotAllowed:                   "MethodNotAllowed",
	ErrorUnimplemented:                      "Unimplemented",
	ErrorInvalidArguments:                   "InvalidArguments",
	ErrorForbidden:                          "Forbidden",
	ErrorUserIsDeactivated:                  "UserIsDeactivated",
	ErrorInternalServerError:                "InternalServerError",
	ErrorInternalSdkError:                   "InternalSdkError",
	ErrorNetworkError:                       "NetworkError",
	ErrorCloudSaveInvalidFileSize:           "CloudSave_InvalidFileSize",
	ErrorCloudSaveUploadRateLimit:           "CloudSave_UploadRateLimit",
	ErrorCloudSaveFileNotFound:              "CloudSave_FileNotFound",
	ErrorCloudSaveFileCountLimitPerClient:   "CloudSave_FileCountLimitPerClient",
	ErrorCloudSaveStorageSizeLimitPerClient: "CloudSave_StorageSizeLimitPerClient",
	ErrorCloudSaveTotalStorageSizeLimit:     "CloudSave_TotalStorageSizeLimit",
	ErrorCloudSaveTimeout:                   "CloudSave_Timeout",
	ErrorCloudSaveConcurrentCallDisallowed:  "CloudSave_ConcurrentCallDisallowed",
	ErrorCloudSaveStorageServerError:        "CloudSave_StorageServerError",
	ErrorCloudSaveInvalidName:               "CloudSave_InvalidName",
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ErrorCode(%d)", int64(c))
}
