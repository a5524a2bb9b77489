package tapsdk

import "github.com/roach88/tapsdk/sys"

// Event is one notification delivered by the native SDK. Every concrete
// type owns its data; nothing refers back into native memory.
type Event interface {
	EventID() sys.EventID
	isEvent()
}

// AuthToken is issued by a successful authorization.
type AuthToken struct {
	TokenType    string `json:"token_type"`
	Kid          string `json:"kid"`
	MacKey       string `json:"mac_key"`
	MacAlgorithm string `json:"mac_algorithm"`
	Scope        string `json:"scope"`
}

// CloudSaveInfo describes one cloud save. Summary and Extra are nil when
// the save has none.
type CloudSaveInfo struct {
	UUID         string  `json:"uuid"`
	FileID       string  `json:"file_id"`
	Name         string  `json:"name"`
	SaveSize     uint32  `json:"save_size"`
	CoverSize    uint32  `json:"cover_size"`
	Summary      *string `json:"summary"`
	Extra        *string `json:"extra"`
	Playtime     uint32  `json:"playtime"`
	CreatedTime  uint32  `json:"created_time"`
	ModifiedTime uint32  `json:"modified_time"`
}

// SystemStateChanged reports a platform connectivity change.
type SystemStateChanged struct {
	State sys.SystemState `json:"state"`
}

// AuthorizeFinished reports the end of an authorization flow. Token is
// set only when the flow was neither cancelled nor failed.
type AuthorizeFinished struct {
	IsCancel bool       `json:"is_cancel"`
	Error    *string    `json:"error"`
	Token    *AuthToken `json:"token"`
}

// GamePlayableStatusChanged reports whether the game may currently be played.
type GamePlayableStatusChanged struct {
	IsPlayable bool `json:"is_playable"`
}

// DLCPlayableStatusChanged reports whether one DLC may currently be used.
type DLCPlayableStatusChanged struct {
	DLCID      string `json:"dlc_id"`
	IsPlayable bool   `json:"is_playable"`
}

// CloudSaveList answers CloudSave.List with every save of the player.
type CloudSaveList struct {
	RequestID int64           `json:"request_id"`
	Error     *APIError       `json:"error"`
	Saves     []CloudSaveInfo `json:"saves"`
}

// CloudSaveCreate answers CloudSave.Create with the new save.
type CloudSaveCreate struct {
	RequestID int64          `json:"request_id"`
	Error     *APIError      `json:"error"`
	Save      *CloudSaveInfo `json:"save"`
}

// CloudSaveUpdate answers CloudSave.Update with the updated save.
type CloudSaveUpdate struct {
	RequestID int64          `json:"request_id"`
	Error     *APIError      `json:"error"`
	Save      *CloudSaveInfo `json:"save"`
}

// CloudSaveDelete answers CloudSave.Delete with the removed save's UUID.
type CloudSaveDelete struct {
	RequestID int64     `json:"request_id"`
	Error     *APIError `json:"error"`
	UUID      string    `json:"uuid"`
}

// CloudSaveGetData answers CloudSave.GetData with the save file contents.
type CloudSaveGetData struct {
	RequestID int64     `json:"request_id"`
	Error     *APIError `json:"error"`
	Data      []byte    `json:"data"`
}

// CloudSaveGetCover answers CloudSave.GetCover with the cover image bytes.
type CloudSaveGetCover struct {
	RequestID int64     `json:"request_id"`
	Error     *APIError `json:"error"`
	Data      []byte    `json:"data"`
}

// Unknown stands in for a category this package does not decode, or for a
// known category whose payload was null or unreadable.
type Unknown struct {
	ID sys.EventID `json:"event_id"`
}

func (SystemStateChanged) EventID() sys.EventID        { return sys.EventSystemStateChanged }
func (AuthorizeFinished) EventID() sys.EventID         { return sys.EventAuthorizeFinished }
func (GamePlayableStatusChanged) EventID() sys.EventID { return sys.EventGamePlayableStatusChanged }
func (DLCPlayableStatusChanged) EventID() sys.EventID  { return sys.EventDLCPlayableStatusChanged }
func (CloudSaveList) EventID() sys.EventID             { return sys.EventCloudSaveList }
func (CloudSaveCreate) EventID() sys.EventID           { return sys.EventCloudSaveCreate }
func (CloudSaveUpdate) EventID() sys.EventID           { return sys.EventCloudSaveUpdate }
func (CloudSaveDelete) EventID() sys.EventID           { return sys.EventCloudSaveDelete }
func (CloudSaveGetData) EventID() sys.EventID          { return sys.EventCloudSaveGetData }
func (CloudSaveGetCover) EventID() sys.EventID         { return sys.EventCloudSaveGetCover }
func (u Unknown) EventID() sys.EventID                 { return u.ID }

func (SystemStateChanged) isEvent()        {}
func (AuthorizeFinished) isEvent()         {}
func (GamePlayableStatusChanged) isEvent() {}
func (DLCPlayableStatusChanged) isEvent()  {}
func (CloudSaveList) isEvent()             {}
func (CloudSaveCreate) isEvent()           {}
func (CloudSaveUpdate) isEvent()           {}
func (CloudSaveDelete) isEvent()           {}
func (CloudSaveGetData) isEvent()          {}
func (CloudSaveGetCover) isEvent()         {}
func (Unknown) isEvent()                   {}

// RequestOf returns the request id and API error of a cloud-save response.
// ok is false for every other event.
func RequestOf(ev Event) (requestID int64, apiErr *APIError, ok bool) {
	switch e := ev.(type) {
	case CloudSaveList:
		return e.RequestID, e.Error, true
	case CloudSaveCreate:
		return e.RequestID, e.Error, true
	case CloudSaveUpdate:
		return e.RequestID, e.Error, true
	case CloudSaveDelete:
		return e.RequestID, e.Error, true
	case CloudSaveGetData:
		return e.RequestID, e.Error, true
	case CloudSaveGetCover:
		return e.RequestID, e.Error, true
	}
	return 0, nil, false
}
