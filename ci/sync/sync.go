package sync

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidkik/fss/ci/util"
)

// Test checks that files in a monitored directory are mirrored into its
// target, both by the initial sync and as they change.
func Test(t *testing.T, helper *util.TestHelper) {
	fs := mockFs{source: helper.Source, target: helper.Target}

	// Files that exist before the manager starts are copied by the initial
	// full sync, including their mode and modification time.
	initialFiles := []file{randomFile("a"), randomFile("b"), randomFile("c")}
	for _, f := range initialFiles {
		require.NoError(t, fs.createFile(f))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pairs := fmt.Sprintf("%s %s\n", helper.Source, helper.Target)
	errChan, err := helper.Manager(ctx, pairs)
	require.NoError(t, err)
	go func() {
		if err := <-errChan; err != nil {
			log.WithError(err).Error("Manager exited unexpectedly")
		}
	}()

	t.Run("InitialSync", func(t *testing.T) {
		for _, f := range initialFiles {
			shouldExist(t, fs, f, true)
		}
	})

	t.Run("ChangeContents", func(t *testing.T) {
		f := initialFiles[0].WithContents("changed")
		require.NoError(t, fs.writeContents(f))
		shouldHaveContents(t, fs, f)
	})

	t.Run("AddFile", func(t *testing.T) {
		f := randomFile("new")
		require.NoError(t, fs.writeContents(f))
		shouldHaveContents(t, fs, f)
	})

	t.Run("RemoveFile", func(t *testing.T) {
		require.NoError(t, fs.removeFile(initialFiles[1].path))
		shouldNotExist(t, fs, initialFiles[1].path)
	})

	// Permission changes alone don't trigger a sync, so they're only picked
	// up by a manual sync.
	t.Run("ManualSync", func(t *testing.T) {
		f := initialFiles[2].WithMode(0600)
		require.NoError(t, fs.chmod(f))

		out, err := helper.Console(ctx, "sync "+helper.Source)
		require.NoError(t, err)
		assert.Contains(t, out, "Syncing directory: "+helper.Source)

		shouldExist(t, fs, f, true)
	})

	t.Run("Status", func(t *testing.T) {
		out, err := helper.Console(ctx, "status "+helper.Source)
		require.NoError(t, err)
		assert.Contains(t, out, "Directory: "+helper.Source)
		assert.Contains(t, out, "Status: Active")
	})
}

func shouldHaveContents(t *testing.T, fs mockFs, exp file) {
	shouldExist(t, fs, exp, false)
}

func shouldExist(t *testing.T, fs mockFs, exp file, checkMetadata bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var actual file
	var err error
	synced := func() bool {
		actual, err = fs.getSyncedFile(exp.path)
		if err != nil || actual.contents != exp.contents {
			return false
		}
		return !checkMetadata ||
			(actual.mode == exp.mode && actual.modTime.Equal(exp.modTime))
	}
	if !util.TestWithRetry(ctx, synced) {
		t.Errorf("%s wasn't synced: expected %+v, got %+v (err: %v)",
			exp.path, exp, actual, err)
	}
}

func shouldNotExist(t *testing.T, fs mockFs, path string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed := func() bool {
		_, err := fs.getSyncedFile(path)
		return os.IsNotExist(err)
	}
	if !util.TestWithRetry(ctx, removed) {
		t.Errorf("%s should have been removed from the target", path)
	}
}
