package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	errs "redditgrab/pkg/errors"
	"redditgrab/pkg/logger"
)

// Manager writes downloaded files into one directory and detects duplicates by path
type Manager struct {
	outputDir string
	written   map[string]int64
	mu        sync.RWMutex
	logger    logger.Logger
}

// NewManager creates a new storage manager, creating outputDir if needed
func NewManager(outputDir string, log logger.Logger) (*Manager, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	return &Manager{
		outputDir: outputDir,
		written:   make(map[string]int64),
		logger:    log,
	}, nil
}

// Path returns the destination path of filename
func (m *Manager) Path(filename string) string {
	return filepath.Join(m.outputDir, filename)
}

// Exists reports whether filename is already present on disk
func (m *Manager) Exists(filename string) bool {
	m.mu.RLock()
	_, ok := m.written[filename]
	m.mu.RUnlock()
	if ok {
		return true
	}

	_, err := os.Stat(m.Path(filename))
	return err == nil
}

// Check returns an AlreadyExistsError when filename is already present
func (m *Manager) Check(url, filename string) error {
	if m.Exists(filename) {
		return &errs.AlreadyExistsError{URL: url, Path: m.Path(filename)}
	}
	return nil
}

// Save copies r into filename. The bytes go to a uniquely named temporary
// file first, which is renamed into place once complete. Failures on the
// disk side are returned as *errors.StorageError; read failures from r are
// passed through.
func (m *Manager) Save(r io.Reader, filename string) (int64, error) {
	dest := m.Path(filename)
	tempFile := filepath.Join(m.outputDir, fmt.Sprintf(".%s.part", uuid.NewString()))

	out, err := os.Create(tempFile)
	if err != nil {
		return 0, &errs.StorageError{Op: "create", Path: tempFile, Err: err}
	}

	w := &recordingWriter{w: out}
	n, err := io.Copy(w, r)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		if w.err != nil {
			return 0, &errs.StorageError{Op: "write", Path: tempFile, Err: w.err}
		}
		return 0, fmt.Errorf("failed to read file data: %w", err)
	}

	if closeErr != nil {
		os.Remove(tempFile)
		return 0, &errs.StorageError{Op: "close", Path: tempFile, Err: closeErr}
	}

	if err := os.Rename(tempFile, dest); err != nil {
		os.Remove(tempFile)
		return 0, &errs.StorageError{Op: "rename", Path: dest, Err: err}
	}

	m.mu.Lock()
	m.written[filename] = n
	m.mu.Unlock()

	m.logger.DebugWithFields("File saved", map[string]interface{}{
		"path":  dest,
		"bytes": n,
	})

	return n, nil
}

// OutputDir returns the output directory path
func (m *Manager) OutputDir() string {
	return m.outputDir
}

// WrittenCount returns the number of files saved by this manager
func (m *Manager) WrittenCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.written)
}

// WrittenBytes returns the total size of the files saved by this manager
func (m *Manager) WrittenBytes() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var total int64
	for _, n := range m.written {
		total += n
	}
	return total
}

// recordingWriter remembers the error of the underlying writer so a failed
// copy can be blamed on the right side
type recordingWriter struct {
	w   io.Writer
	err error
}

func (rw *recordingWriter) Write(p []byte) (int, error) {
	n, err := rw.w.Write(p)
	if err != nil {
		rw.err = err
	}
	return n, err
}
