package tapsdk

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/roach88/tapsdk/sys"
)

// convert copies a native payload into an owned Event. A null payload or
// an id outside sys.Events yields Unknown. A panic while reading native
// memory also yields Unknown, reported through err.
func convert(id sys.EventID, data unsafe.Pointer) (ev Event, err error) {
	if data == nil {
		return Unknown{ID: id}, nil
	}
	defer func() {
		if r := recover(); r != nil {
			ev = Unknown{ID: id}
			err = fmt.Errorf("convert %s payload: %v", id, r)
		}
	}()

	switch id {
	case sys.EventSystemStateChanged:
		n := (*sys.SystemStateNotification)(data)
		return SystemStateChanged{State: n.State}, nil

	case sys.EventAuthorizeFinished:
		return convertAuthorize((*sys.AuthorizeFinishedResponse)(data)), nil

	case sys.EventGamePlayableStatusChanged:
		r := (*sys.GamePlayableStatusChangedResponse)(data)
		return GamePlayableStatusChanged{IsPlayable: r.IsPlayable.Go()}, nil

	case sys.EventDLCPlayableStatusChanged:
		r := (*sys.DLCPlayableStatusChangedResponse)(data)
		return DLCPlayableStatusChanged{
			DLCID:      fixedString(r.DLCID[:]),
			IsPlayable: r.IsPlayable.Go(),
		}, nil

	case sys.EventCloudSaveList:
		r := (*sys.CloudSaveListResponse)(data)
		saves := []CloudSaveInfo{}
		if r.Saves != nil && r.SaveCount > 0 {
			for _, info := range unsafe.Slice(r.Saves, int(r.SaveCount)) {
				saves = append(saves, convertInfo(&info))
			}
		}
		return CloudSaveList{RequestID: r.RequestID, Error: convertAPIError(r.Error), Saves: saves}, nil

	case sys.EventCloudSaveCreate, sys.EventCloudSaveUpdate:
		r := (*sys.CloudSaveCreateResponse)(data)
		var save *CloudSaveInfo
		if r.Save != nil {
			info := convertInfo(r.Save)
			save = &info
		}
		if id == sys.EventCloudSaveCreate {
			return CloudSaveCreate{RequestID: r.RequestID, Error: convertAPIError(r.Error), Save: save}, nil
		}
		return CloudSaveUpdate{RequestID: r.RequestID, Error: convertAPIError(r.Error), Save: save}, nil

	case sys.EventCloudSaveDelete:
		r := (*sys.CloudSaveDeleteResponse)(data)
		return CloudSaveDelete{RequestID: r.RequestID, Error: convertAPIError(r.Error), UUID: cString(r.UUID)}, nil

	case sys.EventCloudSaveGetData, sys.EventCloudSaveGetCover:
		r := (*sys.CloudSaveGetFileResponse)(data)
		buf := []byte{}
		if r.Data != nil && r.Size > 0 {
			buf = append(buf, unsafe.Slice((*byte)(r.Data), int(r.Size))...)
		}
		if id == sys.EventCloudSaveGetData {
			return CloudSaveGetData{RequestID: r.RequestID, Error: convertAPIError(r.Error), Data: buf}, nil
		}
		return CloudSaveGetCover{RequestID: r.RequestID, Error: convertAPIError(r.Error), Data: buf}, nil
	}

	return Unknown{ID: id}, nil
}

func convertAuthorize(r *sys.AuthorizeFinishedResponse) AuthorizeFinished {
	ev := AuthorizeFinished{
		IsCancel: r.IsCancel.Go(),
		Error:    optional(fixedString(r.Error[:])),
	}
	if !ev.IsCancel && ev.Error == nil {
		ev.Token = &AuthToken{
			TokenType:    fixedString(r.TokenType[:]),
			Kid:          fixedString(r.Kid[:]),
			MacKey:       fixedString(r.MacKey[:]),
			MacAlgorithm: fixedString(r.MacAlgorithm[:]),
			Scope:        fixedString(r.Scope[:]),
		}
	}
	return ev
}

func convertInfo(info *sys.CloudSaveInfo) CloudSaveInfo {
	return CloudSaveInfo{
		UUID:         cString(info.UUID),
		FileID:       cString(info.FileID),
		Name:         cString(info.Name),
		SaveSize:     info.SaveSize,
		CoverSize:    info.CoverSize,
		Summary:      optional(cString(info.Summary)),
		Extra:        optional(cString(info.Extra)),
		Playtime:     info.Playtime,
		CreatedTime:  info.CreatedTime,
		ModifiedTime: info.ModifiedTime,
	}
}

func convertAPIError(e *sys.Error) *APIError {
	if e == nil {
		return nil
	}
	return &APIError{Code: e.Code, Message: cString(e.Message)}
}

// cString copies a NUL-terminated string; null reads as "". Invalid UTF-8
// is replaced so every Event holds valid text.
func cString(p *byte) string {
	return strings.ToValidUTF8(sys.GoString(p), "\uFFFD")
}

func fixedString(b []byte) string {
	return strings.ToValidUTF8(sys.GoStringN(b), "\uFFFD")
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
