package sensors

import "encoding/json"

// DeviceState is the lifecycle phase of one physical peripheral's driver.
type DeviceState int

const (
	Uninitialized DeviceState = iota
	Probing
	Configuring
	Ready
	Faulted
)

func (s DeviceState) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Probing:
		return "probing"
	case Configuring:
		return "configuring"
	case Ready:
		return "ready"
	case Faulted:
		return "faulted"
	default:
		return "unknown"
	}
}

func (s DeviceState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}
