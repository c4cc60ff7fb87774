package tuning

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"sync"

	"github.com/go-logr/logr"
)

// Instance binds a set of devices to the options a profile requests for them.
type Instance struct {
	Name    string
	Devices []string
	Options map[string]string

	applied bool
	// values keyed by device and option
	originals map[string]map[string]string
	effective map[string]map[string]string
}

// Applied reports whether the instance options were written to hardware.
func (i *Instance) Applied() bool {
	return i.applied
}

// Effective returns the value the plugin reported for the last successful
// apply of option on device.
func (i *Instance) Effective(device, option string) (string, bool) {
	value, ok := i.effective[device][option]
	return value, ok
}

func setNested(m map[string]map[string]string, device, option, value string) {
	if m[device] == nil {
		m[device] = make(map[string]string)
	}
	m[device][option] = value
}

// Host drives a DevicePlugin on behalf of profiles. It serializes every call
// into the plugin, so a device never sees overlapping apply and query calls.
type Host struct {
	plugin DevicePlugin
	log    logr.Logger

	mu        sync.Mutex
	devices   []string
	instances map[string]*Instance
}

func NewHost(plugin DevicePlugin, log logr.Logger) *Host {
	nodeName := os.Getenv("NODE_NAME")

	h := &Host{
		plugin:    plugin,
		log:       log.WithName(plugin.Name()).WithName(nodeName),
		instances: make(map[string]*Instance),
	}
	h.devices = plugin.Discover()
	h.log.V(4).Info("devices discovered", "devices", h.devices)

	return h
}

// Devices returns the devices found by the last discovery.
func (h *Host) Devices() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.devices)
}

// Supported is false when the plugin found no devices on this machine.
func (h *Host) Supported() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.devices) > 0
}

// Rescan re-runs discovery and returns the devices found.
func (h *Host) Rescan() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.devices = h.plugin.Discover()
	h.log.V(4).Info("devices re-scanned", "devices", h.devices)
	return slices.Clone(h.devices)
}

func (h *Host) Instances() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	names := slices.Collect(maps.Keys(h.instances))
	slices.Sort(names)
	return names
}

func (h *Host) Instance(name string) (*Instance, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	inst, ok := h.instances[name]
	return inst, ok
}

// ReplaceInstance binds devices to the instance called name and applies
// options to them. An empty device list takes every device that is not bound
// to another instance. Options are merged over the plugin defaults.
//
// Every option is first tried on every device with a simulated apply. When
// any of them is rejected nothing changes, including a previous instance of
// the same name. Otherwise the previous instance is replaced: devices it no
// longer covers are rolled back, devices it keeps retain the values recorded
// before its first write.
func (h *Host) ReplaceInstance(name string, devices []string, options map[string]string, simulate bool) (*Instance, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	logger := h.log.WithValues("instance", name)

	merged, err := h.mergeOptions(options)
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		devices = h.unboundDevicesLocked(name)
	}
	devices = slices.Compact(slices.Sorted(slices.Values(devices)))
	if err := h.checkBindingLocked(name, devices); err != nil {
		return nil, err
	}
	if err := h.validateLocked(devices, merged); err != nil {
		return nil, err
	}

	originals := make(map[string]map[string]string)
	if prev, exists := h.instances[name]; exists {
		var carried []string
		if prev.applied && !simulate {
			for _, device := range prev.Devices {
				if slices.Contains(devices, device) {
					carried = append(carried, device)
					if recorded := prev.originals[device]; recorded != nil {
						originals[device] = recorded
					}
				}
			}
		}
		if err := h.destroyLocked(name, true, carried); err != nil {
			logger.Error(err, "previous instance not fully rolled back")
		}
	}

	inst, err := h.createLocked(name, devices, merged, originals)
	if err != nil {
		return nil, err
	}
	return inst, h.applyLocked(inst, simulate)
}

func (h *Host) mergeOptions(options map[string]string) (map[string]string, error) {
	merged := maps.Clone(h.plugin.DeclareOptions())
	if merged == nil {
		merged = make(map[string]string)
	}
	for option, value := range options {
		if _, known := merged[option]; !known {
			return nil, fmt.Errorf("%w: %s for plugin %s", ErrUnknownOption, option, h.plugin.Name())
		}
		merged[option] = value
	}
	return merged, nil
}

// checkBindingLocked rejects devices that were not discovered or that belong
// to an instance other than name.
func (h *Host) checkBindingLocked(name string, devices []string) error {
	for _, device := range devices {
		if !slices.Contains(h.devices, device) {
			return fmt.Errorf("%w: %s", ErrUnknownDevice, device)
		}
		for other, inst := range h.instances {
			if other != name && slices.Contains(inst.Devices, device) {
				return fmt.Errorf("%w: %s is bound to instance %s", ErrDeviceAssigned, device, other)
			}
		}
	}
	return nil
}

func (h *Host) validateLocked(devices []string, options map[string]string) error {
	var errs []error
	for _, device := range devices {
		for _, option := range sortedKeys(options) {
			if _, err := h.plugin.Apply(device, option, options[option], true); err != nil {
				errs = append(errs, fmt.Errorf("device %s option %s: %w", device, option, err))
			}
		}
	}
	return errors.Join(errs...)
}

func (h *Host) createLocked(name string, devices []string, options map[string]string,
	originals map[string]map[string]string) (*Instance, error) {
	logger := h.log.WithValues("instance", name)

	assigned := make([]string, 0, len(devices))
	for _, device := range devices {
		if err := h.plugin.Assign(device); err != nil {
			for _, d := range assigned {
				if releaseErr := h.plugin.Release(d); releaseErr != nil {
					logger.Error(releaseErr, "failed to release device", "device", d)
				}
			}
			return nil, fmt.Errorf("failed to assign device %s to instance %s: %w", device, name, err)
		}
		assigned = append(assigned, device)
	}

	inst := &Instance{
		Name:      name,
		Devices:   assigned,
		Options:   options,
		originals: originals,
		effective: make(map[string]map[string]string),
	}
	h.instances[name] = inst
	logger.V(4).Info("instance created", "devices", assigned, "options", options)

	return inst, nil
}

// applyLocked writes every option of the instance to each of its devices.
// The value in effect before the first write is recorded for rollback. A
// failing device does not stop the others; all failures are joined.
func (h *Host) applyLocked(inst *Instance, simulate bool) error {
	logger := h.log.WithValues("instance", inst.Name)

	var errs []error
	for _, device := range inst.Devices {
		for _, option := range sortedKeys(inst.Options) {
			value := inst.Options[option]
			devLogger := logger.WithValues("device", device, "option", option)

			if !simulate {
				h.recordOriginalLocked(inst, device, option, devLogger)
			}

			newValue, err := h.plugin.Apply(device, option, value, simulate)
			if err != nil {
				devLogger.Error(err, "option not applied", "value", value)
				errs = append(errs, fmt.Errorf("device %s option %s: %w", device, option, err))
				continue
			}
			setNested(inst.effective, device, option, newValue)
			devLogger.V(5).Info("option applied", "value", newValue, "simulate", simulate)
		}
	}
	if !simulate {
		inst.applied = true
	}

	return errors.Join(errs...)
}

func (h *Host) recordOriginalLocked(inst *Instance, device, option string, logger logr.Logger) {
	if _, recorded := inst.originals[device][option]; recorded {
		return
	}
	original, present, err := h.plugin.Query(device, option, true)
	if err != nil {
		logger.Error(err, "failed to read original value, rollback will skip it")
		return
	}
	if !present {
		return
	}
	setNested(inst.originals, device, option, original)
}

// VerifyInstance reports whether the hardware still holds the values the
// instance requested.
func (h *Host) VerifyInstance(name string) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	inst, ok := h.instances[name]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrInstanceNotFound, name)
	}
	logger := h.log.WithValues("instance", name)

	verified := true
	var errs []error
	for _, device := range inst.Devices {
		for _, option := range sortedKeys(inst.Options) {
			expected, ok := inst.Effective(device, option)
			if !ok {
				expected = inst.Options[option]
			}
			current, present, err := h.plugin.Query(device, option, false)
			if err != nil {
				errs = append(errs, fmt.Errorf("device %s option %s: %w", device, option, err))
				verified = false
				continue
			}
			if !present || current != expected {
				logger.Info("verify failed", "device", device, "option", option,
					"expected", expected, "current", current)
				verified = false
			}
		}
	}

	return verified, errors.Join(errs...)
}

// DestroyInstance forgets an instance and releases its devices. With
// rollback set, recorded original values are written back first.
func (h *Host) DestroyInstance(name string, rollback bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.destroyLocked(name, rollback, nil)
}

// Shutdown destroys every instance with rollback.
func (h *Host) Shutdown() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var errs []error
	for _, name := range sortedKeys(h.instances) {
		if err := h.destroyLocked(name, true, nil); err != nil {
			errs = append(errs, err)
		}
	}
	h.log.V(4).Info("all instances destroyed")
	return errors.Join(errs...)
}

// destroyLocked forgets an instance. Devices listed in keep are released
// without rollback.
func (h *Host) destroyLocked(name string, rollback bool, keep []string) error {
	inst, ok := h.instances[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrInstanceNotFound, name)
	}
	logger := h.log.WithValues("instance", name)

	var errs []error
	for _, device := range inst.Devices {
		if rollback && inst.applied && !slices.Contains(keep, device) {
			for _, option := range sortedKeys(inst.originals[device]) {
				original := inst.originals[device][option]
				if _, err := h.plugin.Apply(device, option, original, false); err != nil {
					errs = append(errs, fmt.Errorf("rollback of device %s option %s: %w", device, option, err))
					continue
				}
				logger.V(5).Info("option rolled back", "device", device, "option", option, "value", original)
			}
		}
		if err := h.plugin.Release(device); err != nil {
			errs = append(errs, fmt.Errorf("release of device %s: %w", device, err))
		}
	}
	delete(h.instances, name)
	logger.V(4).Info("instance destroyed", "rollback", rollback)

	return errors.Join(errs...)
}

// unboundDevicesLocked returns the devices not bound to any instance other
// than name.
func (h *Host) unboundDevicesLocked(name string) []string {
	bound := make(map[string]struct{})
	for other, inst := range h.instances {
		if other == name {
			continue
		}
		for _, d := range inst.Devices {
			bound[d] = struct{}{}
		}
	}
	free := make([]string, 0, len(h.devices))
	for _, d := range h.devices {
		if _, taken := bound[d]; !taken {
			free = append(free, d)
		}
	}
	return free
}

func sortedKeys[V any](m map[string]V) []string {
	keys := slices.Collect(maps.Keys(m))
	slices.Sort(keys)
	return keys
}
