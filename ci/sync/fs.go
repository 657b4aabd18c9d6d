package sync

import (
	"io/ioutil"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sidkik/fss/pkg/errors"
)

type file struct {
	path     string
	contents string
	mode     os.FileMode
	modTime  time.Time
}

func (f file) WithContents(contents string) file {
	f.contents = contents
	return f
}

func (f file) WithMode(mode os.FileMode) file {
	f.mode = mode
	return f
}

func (f file) WithModTime(modTime time.Time) file {
	f.modTime = modTime
	return f
}

func randomFile(path string) file {
	randomTime := time.Date(2019, 11, 10, rand.Intn(23), rand.Intn(59), rand.Intn(59), 0, time.UTC)
	return file{
		path:     path,
		contents: strconv.Itoa(rand.Int()),
		mode:     os.FileMode(0640 | rand.Intn(8)),
		modTime:  randomTime,
	}
}

// mockFs creates files in a monitored source directory, and reads back what
// was synced into the target directory.
type mockFs struct {
	source string
	target string
}

func (fs mockFs) createFile(f file) error {
	path := filepath.Join(fs.source, f.path)
	if err := ioutil.WriteFile(path, []byte(f.contents), 0644); err != nil {
		return errors.WithContext(err, "write")
	}

	if err := os.Chmod(path, f.mode); err != nil {
		return errors.WithContext(err, "chmod")
	}

	if err := os.Chtimes(path, time.Now(), f.modTime); err != nil {
		return errors.WithContext(err, "chtimes")
	}
	return nil
}

func (fs mockFs) writeContents(f file) error {
	return ioutil.WriteFile(filepath.Join(fs.source, f.path), []byte(f.contents), f.mode)
}

func (fs mockFs) chmod(f file) error {
	return os.Chmod(filepath.Join(fs.source, f.path), f.mode)
}

func (fs mockFs) removeFile(path string) error {
	return os.Remove(filepath.Join(fs.source, path))
}

func (fs mockFs) getSyncedFile(path string) (file, error) {
	fullPath := filepath.Join(fs.target, path)
	contents, err := ioutil.ReadFile(fullPath)
	if err != nil {
		return file{}, err
	}

	fi, err := os.Stat(fullPath)
	if err != nil {
		return file{}, errors.WithContext(err, "stat")
	}

	return file{
		path:     path,
		contents: string(contents),
		mode:     fi.Mode(),
		modTime:  fi.ModTime().UTC(),
	}, nil
}
