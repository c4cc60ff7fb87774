package uncore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// FrequencyStore is the only component touching per-domain attribute files.
// Every call goes to the hardware interface, nothing is cached.
type FrequencyStore interface {
	// ReadBound reads one integer attribute of a domain. When tolerateMissing
	// is set, a missing or empty file yields present=false and no error.
	ReadBound(domainID, attribute string, tolerateMissing bool) (value int, present bool, err error)
	WriteMax(domainID string, khz int) error
	RootExists() bool
}

// DomainLister lists the raw entries of the hardware interface root.
type DomainLister interface {
	ListDomains() ([]string, error)
}

// SysfsStore implements FrequencyStore and DomainLister on top of the
// intel_uncore_frequency sysfs tree.
type SysfsStore struct {
	root string
}

func NewSysfsStore(root string) *SysfsStore {
	if root == "" {
		root = DefaultSysfsRoot
	}
	return &SysfsStore{root: root}
}

func (s *SysfsStore) Root() string {
	return s.root
}

func (s *SysfsStore) attrPath(domainID, attribute string) string {
	return filepath.Join(s.root, domainID, attribute)
}

func (s *SysfsStore) RootExists() bool {
	info, err := os.Stat(s.root)
	return err == nil && info.IsDir()
}

// ListDomains returns the names of all entries under the root. The returned
// error wraps os.ErrNotExist when the root is absent.
func (s *SysfsStore) ListDomains() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to list uncore domains in %s: %w", s.root, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names, nil
}

func (s *SysfsStore) ReadBound(domainID, attribute string, tolerateMissing bool) (int, bool, error) {
	path := s.attrPath(domainID, attribute)

	data, err := os.ReadFile(path)
	if err != nil {
		if tolerateMissing && errors.Is(err, os.ErrNotExist) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("%w: %s for domain %s: %w", ErrReadFailure, attribute, domainID, err)
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		if tolerateMissing {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("%w: %s for domain %s is empty", ErrReadFailure, attribute, domainID)
	}

	value, err := strconv.Atoi(content)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %s for domain %s: %w", ErrReadFailure, attribute, domainID, err)
	}
	return value, true, nil
}

func (s *SysfsStore) WriteMax(domainID string, khz int) error {
	path := s.attrPath(domainID, MaxFreqAttr)

	// a missing attribute must never be created
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return fmt.Errorf("failed to open %s for domain %s: %w", MaxFreqAttr, domainID, err)
	}
	if _, err := file.WriteString(strconv.Itoa(khz)); err != nil {
		file.Close()
		return fmt.Errorf("failed to write %s for domain %s: %w", MaxFreqAttr, domainID, err)
	}
	return file.Close()
}

// Writable reports whether the current process may change the ceiling of a
// domain.
func (s *SysfsStore) Writable(domainID string) bool {
	return unix.Access(s.attrPath(domainID, MaxFreqAttr), unix.W_OK) == nil
}
