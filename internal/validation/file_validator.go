package validation

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "salesreport/internal/errors"
)

// FileValidator checks sales sources and export directories before use
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateSourceFile checks that path is an existing, readable file in a
// format the loader understands. A missing path is an ErrTypeNotFound error;
// directories and unreadable files are ErrTypeStorage; legacy .xls workbooks
// and Excel lock files are ErrTypeParsing.
func (v *FileValidator) ValidateSourceFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Debug("Sales source does not exist", slog.String("file", path))
		return apperrors.NewNotFoundError("sales source", err).WithContext("path", path)
	}
	if err != nil {
		return apperrors.NewStorageError("failed to stat sales source", err).WithContext("path", path)
	}
	if info.IsDir() {
		return apperrors.NewStorageError("sales source is a directory", fs.ErrInvalid).WithContext("path", path)
	}

	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") {
		return apperrors.NewParsingError("sales source is a temporary Excel file", nil).WithContext("path", path)
	}
	if strings.EqualFold(filepath.Ext(path), ".xls") {
		return apperrors.NewParsingError("legacy .xls workbooks are not supported, save as .xlsx", nil).
			WithContext("path", path)
	}

	file, err := os.Open(path)
	if err != nil {
		return apperrors.NewStorageError("sales source is not readable", err).WithContext("path", path)
	}
	file.Close()

	v.logger.Debug("Sales source validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory ensures the export directory exists and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	file, err := os.CreateTemp(dir, ".write_test*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	name := file.Name()
	file.Close()
	os.Remove(name)

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}
