// Package worker implements a single synchronization unit. The manager runs
// each unit in its own `fss worker` process and reads the report that's
// printed to standard output.
package worker

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/sidkik/fss/pkg/errors"
	"github.com/sidkik/fss/pkg/protocol"
)

// Variables mocked for unit testing.
var (
	fs       = afero.NewOsFs()
	copyFile = copyFileImpl
)

// Run performs the operation and writes its report to out. Failures of the
// operation itself are described in the report, so the returned error is
// only non-nil if the report couldn't be written.
func Run(out io.Writer, source, target, file string, op protocol.Operation) error {
	switch {
	case op == protocol.Full && file == protocol.AllFiles:
		return fullSync(out, source, target)
	case op == protocol.Added || op == protocol.Modified:
		return copyOne(out, source, target, file, op)
	case op == protocol.Deleted:
		return deleteOne(out, target, file)
	default:
		return protocol.WriteFileReport(out, protocol.StatusError,
			fmt.Sprintf("Unsupported operation: %s", op), nil)
	}
}

func fullSync(out io.Writer, source, target string) error {
	entries, err := afero.ReadDir(fs, source)
	if err != nil {
		return protocol.WriteFullReport(out, protocol.StatusError,
			fmt.Sprintf("Cannot open source dir %s (%s)", source, err), nil)
	}

	var copied int
	var failures []string
	for _, entry := range entries {
		src := filepath.Join(source, entry.Name())

		// Stat rather than use the directory entry so that symlinks to
		// regular files are followed.
		fi, err := fs.Stat(src)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}

		if err := copyFile(src, filepath.Join(target, entry.Name())); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %s", entry.Name(), err))
			continue
		}
		copied++
	}

	status := protocol.StatusSuccess
	switch {
	case len(failures) == 0:
	case copied > 0:
		status = protocol.StatusPartial
	default:
		status = protocol.StatusError
	}

	details := fmt.Sprintf("%d files copied, %d failed", copied, len(failures))
	return protocol.WriteFullReport(out, status, details, failures)
}

func copyOne(out io.Writer, source, target, file string, op protocol.Operation) error {
	verb := "added"
	if op == protocol.Modified {
		verb = "modified"
	}

	err := copyFile(filepath.Join(source, file), filepath.Join(target, file))
	if err != nil {
		return protocol.WriteFileReport(out, protocol.StatusError,
			fmt.Sprintf("File: %s failed to sync %s file", file, verb),
			[]string{err.Error()})
	}
	return protocol.WriteFileReport(out, protocol.StatusSuccess,
		fmt.Sprintf("File: %s %s", file, verb), nil)
}

func deleteOne(out io.Writer, target, file string) error {
	if err := fs.Remove(filepath.Join(target, file)); err != nil {
		return protocol.WriteFileReport(out, protocol.StatusError,
			fmt.Sprintf("File: %s failed to delete (%s)", file, err), nil)
	}
	return protocol.WriteFileReport(out, protocol.StatusSuccess,
		fmt.Sprintf("File: %s deleted", file), nil)
}

// copyFileImpl writes the source's contents to a temporary file next to dst,
// applies the source's permissions and modification time, and then renames
// it over dst. dst is replaced rather than rewritten, so read-only targets
// can be resynced.
func copyFileImpl(src, dst string) error {
	srcFile, err := fs.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.FileNotFound{Path: src}
		}
		return errors.WithContext(err, "open source")
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return errors.WithContext(err, "stat")
	}

	dstDir := filepath.Dir(dst)
	if err := fs.MkdirAll(dstDir, 0755); err != nil {
		return errors.WithContext(err, "make parent")
	}

	staged, err := afero.TempFile(fs, dstDir, stagingPrefix+filepath.Base(dst)+"-")
	if err != nil {
		return errors.WithContext(err, "create staging file")
	}
	stagedPath := staged.Name()

	if err := stage(staged, srcFile, srcInfo); err != nil {
		fs.Remove(stagedPath)
		return err
	}

	if err := fs.Rename(stagedPath, dst); err != nil {
		fs.Remove(stagedPath)
		return errors.WithContext(err, "replace destination")
	}
	return nil
}

// stagingPrefix marks the temporary files that copies are written to before
// they're moved into place.
const stagingPrefix = ".fss-"

func stage(staged afero.File, src io.Reader, srcInfo os.FileInfo) error {
	if _, err := io.Copy(staged, src); err != nil {
		staged.Close()
		return errors.WithContext(err, "copy")
	}

	if err := staged.Close(); err != nil {
		return errors.WithContext(err, "close staging file")
	}

	name := staged.Name()
	if err := fs.Chmod(name, srcInfo.Mode().Perm()); err != nil {
		return errors.WithContext(err, "set file mode")
	}

	// The modification time is set last, once nothing else will write to
	// the file.
	if err := fs.Chtimes(name, time.Now(), srcInfo.ModTime()); err != nil {
		return errors.WithContext(err, "set file modtime")
	}
	return nil
}
