package feed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"tableflip.dev/nodewatch/pkg/device"
)

// KindDeviceUpdate is the only message kind the backend currently pushes.
const KindDeviceUpdate = "device_update"

// ErrMalformed marks frames that cannot be decoded into a known message.
var ErrMalformed = errors.New("feed: malformed message")

// Message is a decoded push frame. Switch on the concrete type:
//
//	switch m := msg.(type) {
//	case feed.DeviceUpdate:
//	case feed.Unrecognized:
//	}
type Message interface {
	isMessage()
}

// DeviceUpdate carries a full device snapshot.
type DeviceUpdate struct {
	device.Update
}

func (DeviceUpdate) isMessage() {}

// Unrecognized is a well-formed frame of a kind this client does not handle.
type Unrecognized struct {
	Type string
}

func (Unrecognized) isMessage() {}

type envelope struct {
	Type        string          `json:"type"`
	Devices     json.RawMessage `json:"devices"`
	GlobalStats json.RawMessage `json:"global_stats"`
}

var null = []byte("null")

// Parse decodes one frame. Frames of kind device_update must carry both
// devices and global_stats and must pass device.Update validation.
func Parse(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	switch env.Type {
	case "":
		return nil, fmt.Errorf("%w: missing type", ErrMalformed)
	case KindDeviceUpdate:
		if len(env.Devices) == 0 || bytes.Equal(env.Devices, null) {
			return nil, fmt.Errorf("%w: device_update without devices", ErrMalformed)
		}
		if len(env.GlobalStats) == 0 || bytes.Equal(env.GlobalStats, null) {
			return nil, fmt.Errorf("%w: device_update without global_stats", ErrMalformed)
		}
		var u device.Update
		if err := json.Unmarshal(env.Devices, &u.Devices); err != nil {
			return nil, fmt.Errorf("%w: devices: %v", ErrMalformed, err)
		}
		if err := json.Unmarshal(env.GlobalStats, &u.Stats); err != nil {
			return nil, fmt.Errorf("%w: global_stats: %v", ErrMalformed, err)
		}
		if err := u.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return DeviceUpdate{Update: u}, nil
	default:
		return Unrecognized{Type: env.Type}, nil
	}
}
