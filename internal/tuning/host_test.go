package tuning

import (
	"fmt"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
)

const deltaOption = "max_freq_khz_delta"

type pluginMock struct {
	mock.Mock
}

func (p *pluginMock) Name() string {
	return "mock"
}

func (p *pluginMock) Discover() []string {
	return p.Called().Get(0).([]string)
}

func (p *pluginMock) DeclareOptions() map[string]string {
	return map[string]string{deltaOption: "0"}
}

func (p *pluginMock) Assign(device string) error {
	return p.Called(device).Error(0)
}

func (p *pluginMock) Release(device string) error {
	return p.Called(device).Error(0)
}

func (p *pluginMock) Apply(device, option, value string, simulate bool) (string, error) {
	args := p.Called(device, option, value, simulate)
	return args.String(0), args.Error(1)
}

func (p *pluginMock) Query(device, option string, tolerateMissing bool) (string, bool, error) {
	args := p.Called(device, option, tolerateMissing)
	return args.String(0), args.Bool(1), args.Error(2)
}

func testLogger() logr.Logger {
	log.SetLogger(zap.New(
		zap.UseDevMode(true),
		func(opts *zap.Options) {
			opts.TimeEncoder = zapcore.ISO8601TimeEncoder
		},
	))
	return ctrl.Log.WithName("testing")
}

func newTestHost(devices ...string) (*Host, *pluginMock) {
	plugin := &pluginMock{}
	plugin.On("Discover").Return(devices)
	return NewHost(plugin, testLogger()), plugin
}

func TestHost_Discovery(t *testing.T) {
	host, _ := newTestHost("uncore00", "uncore01")
	assert.True(t, host.Supported())
	assert.Equal(t, []string{"uncore00", "uncore01"}, host.Devices())

	empty, _ := newTestHost()
	assert.False(t, empty.Supported())
	assert.Empty(t, empty.Devices())
}

// allowDryRun accepts every simulated apply of value.
func allowDryRun(plugin *pluginMock, value string) {
	plugin.On("Apply", mock.Anything, deltaOption, value, true).Return(value, nil)
}

func TestHost_ReplaceInstanceCreates(t *testing.T) {
	host, plugin := newTestHost("uncore00", "uncore01", "uncore02")
	plugin.On("Assign", mock.Anything).Return(nil)
	plugin.On("Query", mock.Anything, deltaOption, true).Return("0", true, nil)
	plugin.On("Apply", mock.Anything, deltaOption, mock.Anything, mock.Anything).Return("0", nil)

	inst, err := host.ReplaceInstance("balanced", []string{"uncore00", "uncore00"}, map[string]string{deltaOption: "200000"}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"uncore00"}, inst.Devices)
	assert.Equal(t, map[string]string{deltaOption: "200000"}, inst.Options)

	// no explicit devices takes the ones not bound yet
	rest, err := host.ReplaceInstance("default", nil, nil, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"uncore01", "uncore02"}, rest.Devices)
	assert.Equal(t, map[string]string{deltaOption: "0"}, rest.Options)

	assert.Equal(t, []string{"balanced", "default"}, host.Instances())
}

func TestHost_ReplaceInstanceRejections(t *testing.T) {
	host, plugin := newTestHost("uncore00", "uncore01")
	plugin.On("Assign", mock.Anything).Return(nil)
	plugin.On("Query", mock.Anything, deltaOption, true).Return("0", true, nil)
	plugin.On("Apply", mock.Anything, deltaOption, mock.Anything, mock.Anything).Return("100000", nil)

	_, err := host.ReplaceInstance("first", []string{"uncore00"}, map[string]string{deltaOption: "100000"}, false)
	require.NoError(t, err)

	for _, tc := range []struct {
		testCase string
		devices  []string
		options  map[string]string
		expected error
	}{
		{
			testCase: "Test Case 1 - absolute form is not an option",
			options:  map[string]string{"uncore_max_freq_khz": "2000000"},
			expected: ErrUnknownOption,
		},
		{
			testCase: "Test Case 2 - device was never discovered",
			devices:  []string{"bogus"},
			expected: ErrUnknownDevice,
		},
		{
			testCase: "Test Case 3 - device bound to another instance",
			devices:  []string{"uncore00"},
			expected: ErrDeviceAssigned,
		},
	} {
		t.Log(tc.testCase)
		_, err := host.ReplaceInstance("second", tc.devices, tc.options, false)
		assert.ErrorIs(t, err, tc.expected)
	}
	assert.Equal(t, []string{"first"}, host.Instances())
}

func TestHost_ReplaceInstanceAssignFailure(t *testing.T) {
	host, plugin := newTestHost("uncore00", "uncore01")
	allowDryRun(plugin, "0")
	plugin.On("Assign", "uncore00").Return(nil)
	plugin.On("Assign", "uncore01").Return(fmt.Errorf("already assigned"))
	plugin.On("Release", "uncore00").Return(nil)

	_, err := host.ReplaceInstance("balanced", nil, nil, false)
	assert.Error(t, err)
	plugin.AssertCalled(t, "Release", "uncore00")
	assert.Empty(t, host.Instances())
}

func TestHost_ApplyAndRollback(t *testing.T) {
	host, plugin := newTestHost("uncore00", "uncore01")
	allowDryRun(plugin, "200000")
	plugin.On("Assign", mock.Anything).Return(nil)
	plugin.On("Release", mock.Anything).Return(nil)
	plugin.On("Query", "uncore00", deltaOption, true).Return("0", true, nil)
	plugin.On("Query", "uncore01", deltaOption, true).Return("", false, nil)
	plugin.On("Apply", mock.Anything, deltaOption, "200000", false).Return("200000", nil)
	plugin.On("Apply", "uncore00", deltaOption, "0", false).Return("0", nil)

	_, err := host.ReplaceInstance("balanced", nil, map[string]string{deltaOption: "200000"}, false)
	require.NoError(t, err)

	inst, ok := host.Instance("balanced")
	require.True(t, ok)
	assert.True(t, inst.Applied())
	value, ok := inst.Effective("uncore01", deltaOption)
	assert.True(t, ok)
	assert.Equal(t, "200000", value)

	require.NoError(t, host.DestroyInstance("balanced", true))
	plugin.AssertCalled(t, "Apply", "uncore00", deltaOption, "0", false)
	// nothing was recorded for uncore01, so nothing is rolled back there
	plugin.AssertNotCalled(t, "Apply", "uncore01", deltaOption, "0", false)
	plugin.AssertCalled(t, "Release", "uncore00")
	plugin.AssertCalled(t, "Release", "uncore01")
	assert.Empty(t, host.Instances())

	assert.ErrorIs(t, host.DestroyInstance("balanced", true), ErrInstanceNotFound)
}

func TestHost_RejectedReplaceKeepsPrevious(t *testing.T) {
	host, plugin := newTestHost("uncore00")
	allowDryRun(plugin, "200000")
	plugin.On("Apply", "uncore00", deltaOption, "1700000", true).Return("", fmt.Errorf("out of range"))
	plugin.On("Assign", mock.Anything).Return(nil)
	plugin.On("Query", "uncore00", deltaOption, true).Return("0", true, nil)
	plugin.On("Apply", "uncore00", deltaOption, "200000", false).Return("200000", nil)

	_, err := host.ReplaceInstance("balanced", nil, map[string]string{deltaOption: "200000"}, false)
	require.NoError(t, err)

	_, err = host.ReplaceInstance("balanced", nil, map[string]string{deltaOption: "1700000"}, false)
	assert.ErrorContains(t, err, "out of range")

	inst, ok := host.Instance("balanced")
	require.True(t, ok)
	assert.Equal(t, "200000", inst.Options[deltaOption])
	plugin.AssertNotCalled(t, "Release", mock.Anything)
	plugin.AssertNotCalled(t, "Apply", "uncore00", deltaOption, "0", false)
	plugin.AssertNotCalled(t, "Apply", "uncore00", deltaOption, "1700000", false)
}

func TestHost_ReplaceCarriesOriginals(t *testing.T) {
	host, plugin := newTestHost("uncore00", "uncore01")
	allowDryRun(plugin, "200000")
	allowDryRun(plugin, "400000")
	plugin.On("Assign", mock.Anything).Return(nil)
	plugin.On("Release", mock.Anything).Return(nil)
	plugin.On("Query", "uncore00", deltaOption, true).Return("0", true, nil).Once()
	plugin.On("Query", "uncore01", deltaOption, true).Return("0", true, nil).Once()
	plugin.On("Apply", mock.Anything, deltaOption, mock.Anything, false).Return("0", nil)

	_, err := host.ReplaceInstance("balanced", []string{"uncore00", "uncore01"}, map[string]string{deltaOption: "200000"}, false)
	require.NoError(t, err)

	// uncore01 leaves the instance and is rolled back, uncore00 stays
	_, err = host.ReplaceInstance("balanced", []string{"uncore00"}, map[string]string{deltaOption: "400000"}, false)
	require.NoError(t, err)
	plugin.AssertCalled(t, "Apply", "uncore01", deltaOption, "0", false)
	plugin.AssertNotCalled(t, "Apply", "uncore00", deltaOption, "0", false)
	plugin.AssertNumberOfCalls(t, "Query", 2)

	// the value recorded before the very first write is what gets restored
	require.NoError(t, host.DestroyInstance("balanced", true))
	plugin.AssertCalled(t, "Apply", "uncore00", deltaOption, "0", false)
}

func TestHost_ApplyWriteFailure(t *testing.T) {
	host, plugin := newTestHost("uncore00", "uncore01")
	allowDryRun(plugin, "200000")
	plugin.On("Assign", mock.Anything).Return(nil)
	plugin.On("Query", mock.Anything, deltaOption, true).Return("0", true, nil)
	plugin.On("Apply", "uncore00", deltaOption, "200000", false).Return("", fmt.Errorf("write failed"))
	plugin.On("Apply", "uncore01", deltaOption, "200000", false).Return("200000", nil)

	_, err := host.ReplaceInstance("balanced", nil, map[string]string{deltaOption: "200000"}, false)
	assert.ErrorContains(t, err, "uncore00")
	assert.NotContains(t, err.Error(), "device uncore01")
	plugin.AssertCalled(t, "Apply", "uncore01", deltaOption, "200000", false)

	inst, ok := host.Instance("balanced")
	require.True(t, ok)
	_, ok = inst.Effective("uncore00", deltaOption)
	assert.False(t, ok)
}

func TestHost_ApplySimulate(t *testing.T) {
	host, plugin := newTestHost("uncore00")
	plugin.On("Assign", mock.Anything).Return(nil)
	plugin.On("Release", mock.Anything).Return(nil)
	plugin.On("Apply", "uncore00", deltaOption, "200000", true).Return("200000", nil)

	_, err := host.ReplaceInstance("preview", nil, map[string]string{deltaOption: "200000"}, true)
	require.NoError(t, err)

	inst, _ := host.Instance("preview")
	assert.False(t, inst.Applied())
	plugin.AssertNotCalled(t, "Query", mock.Anything, mock.Anything, mock.Anything)

	require.NoError(t, host.DestroyInstance("preview", true))
	plugin.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything, mock.Anything, false)
}

func TestHost_VerifyInstance(t *testing.T) {
	host, plugin := newTestHost("uncore00")
	allowDryRun(plugin, "+200000")
	plugin.On("Assign", mock.Anything).Return(nil)
	plugin.On("Query", "uncore00", deltaOption, true).Return("0", true, nil)
	plugin.On("Apply", "uncore00", deltaOption, "+200000", false).Return("200000", nil)
	plugin.On("Query", "uncore00", deltaOption, false).Return("200000", true, nil).Once()
	plugin.On("Query", "uncore00", deltaOption, false).Return("100000", true, nil).Once()

	_, err := host.ReplaceInstance("balanced", nil, map[string]string{deltaOption: "+200000"}, false)
	require.NoError(t, err)

	verified, err := host.VerifyInstance("balanced")
	require.NoError(t, err)
	assert.True(t, verified)

	// another tool changed the ceiling
	verified, err = host.VerifyInstance("balanced")
	require.NoError(t, err)
	assert.False(t, verified)

	_, err = host.VerifyInstance("missing")
	assert.ErrorIs(t, err, ErrInstanceNotFound)
}

func TestHost_Shutdown(t *testing.T) {
	host, plugin := newTestHost("uncore00", "uncore01")
	plugin.On("Assign", mock.Anything).Return(nil)
	plugin.On("Release", mock.Anything).Return(nil)
	plugin.On("Query", mock.Anything, deltaOption, true).Return("0", true, nil)
	plugin.On("Apply", mock.Anything, deltaOption, mock.Anything, mock.Anything).Return("0", nil)

	_, err := host.ReplaceInstance("a", []string{"uncore00"}, map[string]string{deltaOption: "100000"}, false)
	require.NoError(t, err)
	_, err = host.ReplaceInstance("b", []string{"uncore01"}, map[string]string{deltaOption: "200000"}, false)
	require.NoError(t, err)

	require.NoError(t, host.Shutdown())
	assert.Empty(t, host.Instances())
	plugin.AssertCalled(t, "Apply", "uncore00", deltaOption, "0", false)
	plugin.AssertCalled(t, "Apply", "uncore01", deltaOption, "0", false)
}

func TestHost_Rescan(t *testing.T) {
	plugin := &pluginMock{}
	plugin.On("Discover").Return([]string{}).Once()
	plugin.On("Discover").Return([]string{"uncore00", "uncore01"}).Once()
	host := NewHost(plugin, testLogger())
	assert.False(t, host.Supported())

	assert.Equal(t, []string{"uncore00", "uncore01"}, host.Rescan())
	assert.Equal(t, []string{"uncore00", "uncore01"}, host.Devices())
	assert.True(t, host.Supported())
}
