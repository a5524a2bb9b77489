package journal

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/roach88/tapsdk"
	"github.com/roach88/tapsdk/sys"
)

// Payloads use Core Deterministic Encoding so identical events always
// produce identical bytes. Field names come from the events' json tags.
var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("journal: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("journal: CBOR decoder initialization failed: " + err.Error())
	}
}

// kindUnknown is stored for tapsdk.Unknown, whose event id may collide
// with a decodable category.
const kindUnknown = "Unknown"

// Kind names the variant of ev: the category name, or "Unknown" for
// tapsdk.Unknown regardless of its id.
func Kind(ev tapsdk.Event) string {
	if _, ok := ev.(tapsdk.Unknown); ok {
		return kindUnknown
	}
	return ev.EventID().String()
}

func encodeEvent(ev tapsdk.Event) ([]byte, error) {
	b, err := encMode.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", Kind(ev), err)
	}
	return b, nil
}

type decoder func([]byte) (tapsdk.Event, error)

func decodeAs[T tapsdk.Event](data []byte) (tapsdk.Event, error) {
	var v T
	if err := decMode.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

var decoders = map[string]decoder{
	sys.EventSystemStateChanged.String():        decodeAs[tapsdk.SystemStateChanged],
	sys.EventAuthorizeFinished.String():         decodeAs[tapsdk.AuthorizeFinished],
	sys.EventGamePlayableStatusChanged.String(): decodeAs[tapsdk.GamePlayableStatusChanged],
	sys.EventDLCPlayableStatusChanged.String():  decodeAs[tapsdk.DLCPlayableStatusChanged],
	sys.EventCloudSaveList.String():             decodeAs[tapsdk.CloudSaveList],
	sys.EventCloudSaveCreate.String():           decodeAs[tapsdk.CloudSaveCreate],
	sys.EventCloudSaveUpdate.String():           decodeAs[tapsdk.CloudSaveUpdate],
	sys.EventCloudSaveDelete.String():           decodeAs[tapsdk.CloudSaveDelete],
	sys.EventCloudSaveGetData.String():          decodeAs[tapsdk.CloudSaveGetData],
	sys.EventCloudSaveGetCover.String():         decodeAs[tapsdk.CloudSaveGetCover],

	kindUnknown: decodeAs[tapsdk.Unknown],
}

func decodeEvent(kind string, data []byte) (tapsdk.Event, error) {
	dec, ok := decoders[kind]
	if !ok {
		return nil, fmt.Errorf("unknown event kind %q", kind)
	}
	ev, err := dec(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	return ev, nil
}
