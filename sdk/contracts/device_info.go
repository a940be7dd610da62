package contracts

// DeviceInfo contains information about a MIDI input device.
type DeviceInfo struct {
	Name         string // Device name.
	Manufacturer string // Device manufacturer.
	EntityName   string // Name of the entity to which the device belongs.
}

// String returns the name followed by the manufacturer, when known.
func (d DeviceInfo) String() string {
	if d.Manufacturer == "" {
		return d.Name
	}
	return d.Name + " (" + d.Manufacturer + ")"
}
