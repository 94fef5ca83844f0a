package molfile

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const methane = "methane\n  RDKit\n\n  1  0  0  0  0  0  0  0  0  0999 V2000\n" +
	"    0.0000    0.0000    0.0000 C   0  0  0  0  0  0\nM  END\n"

func TestWriteAndReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "methane.MOL")

	require.NoError(t, WriteFile(path, methane))

	got, err := ReadFile(path, 0)
	require.NoError(t, err)
	assert.Equal(t, methane, got)
}

func TestReadFile_Errors(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, ioutil.WriteFile(txt, []byte("x"), 0644))

	_, err := ReadFile(filepath.Join(dir, "missing.sdf"), 0)
	assert.True(t, errors.Is(err, ErrInvalidPath))

	_, err = ReadFile(dir, 0)
	assert.True(t, errors.Is(err, ErrInvalidPath))

	_, err = ReadFile(txt, 0)
	assert.True(t, errors.Is(err, ErrInvalidPath))
	assert.Contains(t, err.Error(), ".txt")
}

func TestReadFile_SizeLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.sdf")
	require.NoError(t, WriteFile(path, methane))

	_, err := ReadFile(path, 10)
	assert.True(t, errors.Is(err, ErrTooLarge))

	_, err = ReadFile(path, int64(len(methane)))
	assert.NoError(t, err)
}

func TestWriteFile_Errors(t *testing.T) {
	dir := t.TempDir()

	err := WriteFile(filepath.Join(dir, "empty.sdf"), "")
	assert.True(t, errors.Is(err, ErrInvalidContent))

	err = WriteFile(filepath.Join(dir, "out.json"), methane)
	assert.True(t, errors.Is(err, ErrInvalidPath))

	_, statErr := os.Stat(filepath.Join(dir, "out.json"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestValidateMolBlock(t *testing.T) {
	assert.True(t, ValidateMolBlock(methane))
	assert.False(t, ValidateMolBlock("too\nshort\n"))
	assert.False(t, ValidateMolBlock("a\nb\nc\nnot counts\nM  END"))
	assert.False(t, ValidateMolBlock("a\nb\nc\n3\nM  END"))
}

func TestFindFiles(t *testing.T) {
	dir := t.TempDir()
	for _, p := range []string{"a.sdf", "sub/b.SD", "sub/deeper/c.mol", "sub/readme.md"} {
		full := filepath.Join(dir, p)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, ioutil.WriteFile(full, []byte(methane), 0644))
	}

	files, err := FindFiles(dir, nil)
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		names = append(names, f.Name)
		assert.Equal(t, int64(len(methane)), f.Size)
		assert.False(t, f.ReadOnly)
	}
	sort.Strings(names)
	assert.Equal(t, []string{"a.sdf", "b.SD", "c.mol"}, names)

	files, err = FindFiles(dir, []string{"md"})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "md", files[0].Extension)
}

func TestFindFiles_NotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.sdf")
	require.NoError(t, WriteFile(path, methane))

	_, err := FindFiles(path, nil)
	assert.True(t, errors.Is(err, ErrInvalidPath))

	_, err = FindFiles(filepath.Join(path, "nope"), nil)
	assert.Error(t, err)
}
