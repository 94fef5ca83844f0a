// Package molfile reads and writes structure files on disk and finds them
// in directory trees.
package molfile

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidPath is returned for missing files and unsupported extensions
	ErrInvalidPath = errors.New("invalid file path")
	// ErrInvalidContent is returned when refusing to write empty content
	ErrInvalidContent = errors.New("invalid file content")
	// ErrTooLarge is returned when a file exceeds the configured size limit
	ErrTooLarge = errors.New("file too large")
)

// StructureExtensions are the extensions accepted by ReadFile and WriteFile
var StructureExtensions = []string{"mol", "sdf", "sd"}

// FileInfo describes a file found by FindFiles
type FileInfo struct {
	Path      string    `json:"path"`
	Name      string    `json:"name"`
	Extension string    `json:"extension"`
	Size      int64     `json:"size"`
	ReadOnly  bool      `json:"is_readonly"`
	Modified  time.Time `json:"modified"`
}

func hasExtension(path string, exts []string) bool {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	for _, e := range exts {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

// ReadFile returns the text of a .mol, .sdf or .sd file. A maxSize above zero
// rejects bigger files before reading them.
func ReadFile(path string, maxSize int64) (string, error) {
	fi, err := os.Stat(path)
	if os.IsNotExist(err) {
		return "", errors.Wrapf(ErrInvalidPath, "file not found: %s", path)
	}
	if err != nil {
		return "", errors.Wrapf(err, "stat %s", path)
	}
	if !fi.Mode().IsRegular() {
		return "", errors.Wrapf(ErrInvalidPath, "not a file: %s", path)
	}
	if !hasExtension(path, StructureExtensions) {
		return "", errors.Wrapf(ErrInvalidPath, "invalid file type: %s", filepath.Ext(path))
	}
	if maxSize > 0 && fi.Size() > maxSize {
		return "", errors.Wrapf(ErrTooLarge, "%s is %d bytes, limit %d", path, fi.Size(), maxSize)
	}

	data, err := ioutil.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "read %s", path)
	}
	return string(data), nil
}

// WriteFile stores content into a .mol, .sdf or .sd file, creating the parent
// directories when needed
func WriteFile(path, content string) error {
	if content == "" {
		return errors.Wrapf(ErrInvalidContent, "nothing to write to %s", path)
	}
	if !hasExtension(path, StructureExtensions) {
		return errors.Wrapf(ErrInvalidPath, "invalid file type: %s", filepath.Ext(path))
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "create directory %s", dir)
		}
	}

	if err := ioutil.WriteFile(path, []byte(content), 0644); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return nil
}

// ValidateMolBlock is a basic check of a MOL block: the fourth line must be a
// counts line starting with the atom and bond numbers
func ValidateMolBlock(content string) bool {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	if len(lines) < 4 {
		return false
	}

	parts := strings.Fields(lines[3])
	if len(parts) < 2 {
		return false
	}
	_, errAtoms := strconv.Atoi(parts[0])
	_, errBonds := strconv.Atoi(parts[1])
	return errAtoms == nil && errBonds == nil
}

// FindFiles walks dir and returns the files whose extension is in exts
func FindFiles(dir string, exts []string) ([]FileInfo, error) {
	fi, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, errors.Wrapf(ErrInvalidPath, "directory not found: %s", dir)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", dir)
	}
	if !fi.IsDir() {
		return nil, errors.Wrapf(ErrInvalidPath, "not a directory: %s", dir)
	}
	if len(exts) == 0 {
		exts = StructureExtensions
	}

	var files []FileInfo
	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !info.Mode().IsRegular() || !hasExtension(path, exts) {
			return nil
		}
		files = append(files, FileInfo{
			Path:      path,
			Name:      info.Name(),
			Extension: strings.TrimPrefix(filepath.Ext(path), "."),
			Size:      info.Size(),
			ReadOnly:  info.Mode().Perm()&0200 == 0,
			Modified:  info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "walk %s", dir)
	}
	return files, nil
}
