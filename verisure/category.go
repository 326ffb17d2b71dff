package verisure

import (
	"fmt"
	"strings"
)

type DeviceCategory int

const (
	DeviceAlarm DeviceCategory = iota
	DeviceClimate
	DeviceSmartPlug
)

// Categories lists every category in the order they are fetched.
var Categories = []DeviceCategory{DeviceAlarm, DeviceClimate, DeviceSmartPlug}

func (c DeviceCategory) String() string {
	switch c {
	case DeviceAlarm:
		return "alarm"
	case DeviceClimate:
		return "climate"
	case DeviceSmartPlug:
		return "smartplug"
	default:
		return fmt.Sprintf("unknown(%d)", int(c))
	}
}

func (c DeviceCategory) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *DeviceCategory) UnmarshalText(b []byte) error {
	p, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = p
	return nil
}

func ParseCategory(s string) (DeviceCategory, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "alarm":
		return DeviceAlarm, nil
	case "climate":
		return DeviceClimate, nil
	case "smartplug", "smart_plug":
		return DeviceSmartPlug, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}
