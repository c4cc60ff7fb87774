package uncore

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
)

func testLogger() logr.Logger {
	log.SetLogger(zap.New(
		zap.UseDevMode(true),
		func(opts *zap.Options) {
			opts.TimeEncoder = zapcore.ISO8601TimeEncoder
		},
	))
	return ctrl.Log.WithName("testing")
}

type domainFiles struct {
	initialMin string
	initialMax string
	current    string
}

func khz(v int) string {
	return strconv.Itoa(v) + "\n"
}

// createSysfsTree builds a fake intel_uncore_frequency directory. Empty
// attribute values are not written at all.
func createSysfsTree(t *testing.T, domains map[string]domainFiles) string {
	root := filepath.Join(t.TempDir(), "intel_uncore_frequency")
	require.NoError(t, os.MkdirAll(root, 0755))

	for name, files := range domains {
		dir := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(dir, 0755))
		for attr, content := range map[string]string{
			InitialMinFreqAttr: files.initialMin,
			InitialMaxFreqAttr: files.initialMax,
			MaxFreqAttr:        files.current,
		} {
			if content == "" {
				continue
			}
			require.NoError(t, os.WriteFile(filepath.Join(dir, attr), []byte(content), 0644))
		}
	}
	return root
}

func readAttr(t *testing.T, root, domain, attr string) string {
	data, err := os.ReadFile(filepath.Join(root, domain, attr))
	require.NoError(t, err)
	return string(data)
}

type storeMock struct {
	mock.Mock
}

func (s *storeMock) ReadBound(domainID, attribute string, tolerateMissing bool) (int, bool, error) {
	args := s.Called(domainID, attribute, tolerateMissing)
	return args.Int(0), args.Bool(1), args.Error(2)
}

func (s *storeMock) WriteMax(domainID string, khz int) error {
	return s.Called(domainID, khz).Error(0)
}

func (s *storeMock) RootExists() bool {
	return s.Called().Bool(0)
}

type listerMock struct {
	mock.Mock
}

func (l *listerMock) ListDomains() ([]string, error) {
	args := l.Called()
	names, _ := args.Get(0).([]string)
	return names, args.Error(1)
}
