package tuning

import "errors"

var (
	ErrUnknownOption    = errors.New("unknown option")
	ErrInstanceNotFound = errors.New("instance not found")
	ErrUnknownDevice    = errors.New("unknown device")
	ErrDeviceAssigned   = errors.New("device already assigned")
)

// DevicePlugin is the capability a hardware specific module offers to the
// host. The host never looks past this interface.
type DevicePlugin interface {
	Name() string
	// Discover enumerates devices; called once when the host starts and
	// again on Rescan.
	Discover() []string
	// DeclareOptions returns every accepted option with its default value.
	DeclareOptions() map[string]string
	Assign(device string) error
	Release(device string) error
	// Apply sets option on device and returns the value in effect. With
	// simulate set it only validates, and must accept devices that are not
	// assigned yet.
	Apply(device, option, value string, simulate bool) (string, error)
	// Query reads option back; present is false when the device does not
	// expose it and tolerateMissing was set.
	Query(device, option string, tolerateMissing bool) (value string, present bool, err error)
}
