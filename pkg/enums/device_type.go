package enums

import "fmt"

// DeviceType classifies the hardware a customer brings in.
type DeviceType string

const (
	DeviceTypeLaptop     DeviceType = "Laptop"
	DeviceTypeDesktop    DeviceType = "Desktop"
	DeviceTypeTablet     DeviceType = "Tablet"
	DeviceTypeSmartphone DeviceType = "Smartphone"
	DeviceTypeMonitor    DeviceType = "Monitor"
	DeviceTypePrinter    DeviceType = "Printer"
	DeviceTypeOther      DeviceType = "Other"
)

var validDeviceTypes = []DeviceType{
	DeviceTypeLaptop,
	DeviceTypeDesktop,
	DeviceTypeTablet,
	DeviceTypeSmartphone,
	DeviceTypeMonitor,
	DeviceTypePrinter,
	DeviceTypeOther,
}

func (d DeviceType) String() string {
	return string(d)
}

func (d DeviceType) IsValid() bool {
	for _, candidate := range validDeviceTypes {
		if candidate == d {
			return true
		}
	}
	return false
}

func ParseDeviceType(value string) (DeviceType, error) {
	for _, candidate := range validDeviceTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid device type %q", value)
}
