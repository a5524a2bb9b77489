package jsbind

import (
	"github.com/dop251/goja"

	"github.com/roach88/tapsdk"
	"github.com/roach88/tapsdk/sys"
)

// eventFields flattens an event into the object handed to script
// callbacks. Keys are snake_case; absent optionals are nil. File contents
// stay []byte here and become an ArrayBuffer in eventValue.
func eventFields(ev tapsdk.Event) map[string]any {
	m := map[string]any{"event_id": uint32(ev.EventID())}

	switch e := ev.(type) {
	case tapsdk.SystemStateChanged:
		m["state"] = uint32(e.State)
	case tapsdk.AuthorizeFinished:
		m["is_cancel"] = e.IsCancel
		m["error"] = optional(e.Error)
		m["token"] = nil
		if t := e.Token; t != nil {
			m["token"] = map[string]any{
				"token_type":    t.TokenType,
				"kid":           t.Kid,
				"mac_key":       t.MacKey,
				"mac_algorithm": t.MacAlgorithm,
				"scope":         t.Scope,
			}
		}
	case tapsdk.GamePlayableStatusChanged:
		m["is_playable"] = e.IsPlayable
	case tapsdk.DLCPlayableStatusChanged:
		m["dlc_id"] = e.DLCID
		m["is_playable"] = e.IsPlayable
	case tapsdk.CloudSaveList:
		response(m, e.RequestID, e.Error)
		saves := make([]any, len(e.Saves))
		for i := range e.Saves {
			saves[i] = saveFields(&e.Saves[i])
		}
		m["saves"] = saves
	case tapsdk.CloudSaveCreate:
		response(m, e.RequestID, e.Error)
		m["save"] = saveFields(e.Save)
	case tapsdk.CloudSaveUpdate:
		response(m, e.RequestID, e.Error)
		m["save"] = saveFields(e.Save)
	case tapsdk.CloudSaveDelete:
		response(m, e.RequestID, e.Error)
		m["uuid"] = e.UUID
	case tapsdk.CloudSaveGetData:
		response(m, e.RequestID, e.Error)
		m["data"] = e.Data
	case tapsdk.CloudSaveGetCover:
		response(m, e.RequestID, e.Error)
		m["data"] = e.Data
	}
	return m
}

func response(m map[string]any, requestID int64, apiErr *tapsdk.APIError) {
	m["request_id"] = requestID
	m["error"] = nil
	if apiErr != nil {
		m["error"] = map[string]any{
			"code":    int64(apiErr.Code),
			"message": apiErr.Message,
		}
	}
}

func saveFields(s *tapsdk.CloudSaveInfo) any {
	if s == nil {
		return nil
	}
	return map[string]any{
		"uuid":          s.UUID,
		"file_id":       s.FileID,
		"name":          s.Name,
		"save_size":     s.SaveSize,
		"cover_size":    s.CoverSize,
		"summary":       optional(s.Summary),
		"extra":         optional(s.Extra),
		"playtime":      s.Playtime,
		"created_time":  s.CreatedTime,
		"modified_time": s.ModifiedTime,
	}
}

func optional(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

// eventValue builds the script object for ev. Must run on the loop
// goroutine.
func (h *Host) eventValue(ev tapsdk.Event) goja.Value {
	fields := eventFields(ev)
	obj := h.vm.NewObject()
	for k, v := range fields {
		if data, ok := v.([]byte); ok {
			_ = obj.Set(k, h.vm.NewArrayBuffer(data))
			continue
		}
		_ = obj.Set(k, h.vm.ToValue(v))
	}
	return obj
}

// eventIDs and systemStates are the EventId and SystemState globals.
func eventIDs() map[string]any {
	return map[string]any{
		"UNKNOWN":                      uint32(sys.EventUnknown),
		"SYSTEM_STATE_CHANGED":         uint32(sys.EventSystemStateChanged),
		"AUTHORIZE_FINISHED":           uint32(sys.EventAuthorizeFinished),
		"GAME_PLAYABLE_STATUS_CHANGED": uint32(sys.EventGamePlayableStatusChanged),
		"DLC_PLAYABLE_STATUS_CHANGED":  uint32(sys.EventDLCPlayableStatusChanged),
		"CLOUD_SAVE_LIST":              uint32(sys.EventCloudSaveList),
		"CLOUD_SAVE_CREATE":            uint32(sys.EventCloudSaveCreate),
		"CLOUD_SAVE_UPDATE":            uint32(sys.EventCloudSaveUpdate),
		"CLOUD_SAVE_DELETE":            uint32(sys.EventCloudSaveDelete),
		"CLOUD_SAVE_GET_DATA":          uint32(sys.EventCloudSaveGetData),
		"CLOUD_SAVE_GET_COVER":         uint32(sys.EventCloudSaveGetCover),
	}
}

func systemStates() map[string]any {
	return map[string]any{
		"UNKNOWN":           uint32(sys.SystemStateUnknown),
		"PLATFORM_ONLINE":   uint32(sys.SystemStatePlatformOnline),
		"PLATFORM_OFFLINE":  uint32(sys.SystemStatePlatformOffline),
		"PLATFORM_SHUTDOWN": uint32(sys.SystemStatePlatformShutdown),
	}
}
