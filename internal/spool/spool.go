// Package spool stages uploaded attachments on local disk for the duration
// of one relay request. Staged files are scoped resources: the caller must
// remove them on every exit path, and Remove is idempotent to make that easy
// to do with defer.
package spool

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._\-]`)

// Spool writes attachment bodies into a temp directory.
type Spool struct {
	dir    string
	logger *zap.Logger
}

// New creates a spool rooted at dir; an empty dir means the system temp
// directory. The directory is created when missing.
func New(dir string, logger *zap.Logger) (*Spool, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create spool directory: %w", err)
	}

	return &Spool{dir: dir, logger: logger}, nil
}

// StagedFile is one attachment copied to local disk.
type StagedFile struct {
	// Path is the temp file location on disk
	Path string
	// Filename is the sanitized original name, used for the upstream upload
	Filename string
	// Field is the form field the attachment arrived under
	Field string

	size    int64
	removed bool
	logger  *zap.Logger
}

// Stage copies r to a uniquely named temp file. The caller owns the returned
// file and must call Remove when done with it.
func (s *Spool) Stage(field, filename string, r io.Reader) (*StagedFile, error) {
	safeName := SanitizeFilename(filename)
	path := filepath.Join(s.dir, uuid.New().String()+"_"+safeName)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create spool file: %w", err)
	}

	size, err := io.Copy(f, r)
	closeErr := f.Close()
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to write spool file: %w", err)
	}
	if closeErr != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to close spool file: %w", closeErr)
	}

	s.logger.Debug("staged attachment",
		zap.String("field", field),
		zap.String("path", path),
		zap.Int64("size", size),
	)

	return &StagedFile{
		Path:     path,
		Filename: safeName,
		Field:    field,
		size:     size,
		logger:   s.logger,
	}, nil
}

// Size returns the number of bytes staged.
func (f *StagedFile) Size() int64 {
	return f.size
}

// Remove deletes the staged file. Safe to call more than once.
func (f *StagedFile) Remove() {
	if f == nil || f.removed {
		return
	}
	f.removed = true

	if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
		f.logger.Warn("failed to remove spooled attachment",
			zap.String("path", f.Path),
			zap.Error(err),
		)
		return
	}

	f.logger.Debug("removed spooled attachment", zap.String("path", f.Path))
}

// SanitizeFilename strips path separators and unsafe characters so a staged
// name can never traverse outside the spool directory.
func SanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "")
	name = unsafeChars.ReplaceAllString(name, "_")
	if name == "" || name == "." {
		name = "attachment"
	}
	return name
}
