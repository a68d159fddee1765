package repository

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Shivanand-hulikatti/fitness-class-booking/internal/model"
	"go.uber.org/zap"
)

// maxLogLine bounds a single registration line.
const maxLogLine = 1 << 20

// FileScheduleBackend keeps the schedule as a JSON array in one file.
type FileScheduleBackend struct {
	path string
}

// NewFileScheduleBackend constructs a FileScheduleBackend for path.
func NewFileScheduleBackend(path string) *FileScheduleBackend {
	return &FileScheduleBackend{path: path}
}

// LoadSchedule reads and parses the schedule document.
func (b *FileScheduleBackend) LoadSchedule(_ context.Context) ([]model.FitnessClass, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrDocumentMissing
		}
		return nil, fmt.Errorf("read %s: %w", b.path, err)
	}

	var classes []model.FitnessClass
	if err := json.Unmarshal(data, &classes); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDocumentCorrupt, b.path, err)
	}
	if classes == nil {
		classes = []model.FitnessClass{}
	}
	return classes, nil
}

// SaveSchedule writes the document to a temporary file in the same directory,
// syncs it and renames it over the previous document.
func (b *FileScheduleBackend) SaveSchedule(_ context.Context, classes []model.FitnessClass) error {
	if classes == nil {
		classes = []model.FitnessClass{}
	}
	data, err := json.MarshalIndent(classes, "", "    ")
	if err != nil {
		return fmt.Errorf("encode schedule: %w", err)
	}

	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(b.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, b.path); err != nil {
		cleanup()
		return fmt.Errorf("replace %s: %w", b.path, err)
	}
	return nil
}

// FileRegistrationBackend keeps registrations as one JSON object per line.
type FileRegistrationBackend struct {
	path   string
	logger *zap.Logger
}

// NewFileRegistrationBackend constructs a FileRegistrationBackend for path.
func NewFileRegistrationBackend(path string, logger *zap.Logger) *FileRegistrationBackend {
	return &FileRegistrationBackend{path: path, logger: logger}
}

// LoadRegistrations parses the log line by line. Blank lines are ignored and
// malformed lines are logged and skipped; they never abort the load.
func (b *FileRegistrationBackend) LoadRegistrations(_ context.Context) ([]model.Registration, error) {
	f, err := os.Open(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			b.logger.Info("registration log does not exist yet", zap.String("path", b.path))
			return []model.Registration{}, nil
		}
		return nil, fmt.Errorf("open %s: %w", b.path, err)
	}
	defer f.Close()

	records := []model.Registration{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLogLine)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var reg model.Registration
		if err := json.Unmarshal(line, &reg); err != nil {
			b.logger.Warn("skipping malformed registration line",
				zap.String("path", b.path), zap.Int("line", lineNum), zap.Error(err))
			continue
		}
		if reg.ID <= 0 || reg.ClassID <= 0 {
			b.logger.Warn("skipping registration line without ids",
				zap.String("path", b.path), zap.Int("line", lineNum))
			continue
		}
		records = append(records, reg)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", b.path, err)
	}
	return records, nil
}

// AppendRegistration writes reg as a new line and syncs the file.
//
// A failed write is truncated away so the next append starts on a clean line.
// A fragment left by a crash is closed off with a newline before writing.
func (b *FileRegistrationBackend) AppendRegistration(_ context.Context, reg model.Registration) error {
	line, err := json.Marshal(reg)
	if err != nil {
		return fmt.Errorf("encode registration: %w", err)
	}
	line = append(line, '\n')

	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(b.path), err)
	}
	f, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", b.path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", b.path, err)
	}
	size := info.Size()
	if size > 0 {
		last := make([]byte, 1)
		if _, err := f.ReadAt(last, size-1); err != nil {
			return fmt.Errorf("read %s: %w", b.path, err)
		}
		if last[0] != '\n' {
			b.logger.Warn("closing off unterminated registration line", zap.String("path", b.path))
			line = append([]byte{'\n'}, line...)
		}
	}

	if _, err := f.Write(line); err != nil {
		b.discardTail(f, size)
		return fmt.Errorf("write %s: %w", b.path, err)
	}
	if err := f.Sync(); err != nil {
		b.discardTail(f, size)
		return fmt.Errorf("sync %s: %w", b.path, err)
	}
	return f.Close()
}

// discardTail cuts f back to size after a failed append.
func (b *FileRegistrationBackend) discardTail(f *os.File, size int64) {
	if err := f.Truncate(size); err != nil {
		b.logger.Error("failed to truncate partial registration line",
			zap.String("path", b.path), zap.Int64("size", size), zap.Error(err))
	}
}
