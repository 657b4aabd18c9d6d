package commands

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidkik/fss/ci/util"
)

// Test drives the manager through the console, and checks its responses and
// their effect on syncing.
func Test(t *testing.T, helper *util.TestHelper) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan, err := helper.Manager(ctx, "")
	require.NoError(t, err)

	console := func(t *testing.T, cmd string) string {
		out, err := helper.Console(ctx, cmd)
		require.NoError(t, err)
		return out
	}

	t.Run("AddMissing", func(t *testing.T) {
		missing := filepath.Join(helper.Dir, "missing")
		out := console(t, "add "+missing+" "+helper.Target)
		assert.Contains(t, out, "[ERROR] Source directory does not exist: "+missing)
	})

	t.Run("StatusUnmonitored", func(t *testing.T) {
		out := console(t, "status "+helper.Source)
		assert.Contains(t, out, "Directory not monitored: "+helper.Source)
	})

	t.Run("Add", func(t *testing.T) {
		out := console(t, "add "+helper.Source+" "+helper.Target)
		assert.Contains(t, out, "Added directory: "+helper.Source+" -> "+helper.Target)

		out = console(t, "add "+helper.Source+" "+helper.Target)
		assert.Contains(t, out, "Already monitored: "+helper.Source)

		require.NoError(t, ioutil.WriteFile(
			filepath.Join(helper.Source, "added"), []byte("added"), 0644))
		waitCtx, cancelWait := context.WithTimeout(ctx, 30*time.Second)
		defer cancelWait()
		assert.True(t, util.TestWithRetry(waitCtx, func() bool {
			contents, err := ioutil.ReadFile(filepath.Join(helper.Target, "added"))
			return err == nil && string(contents) == "added"
		}), "file should be synced after add")
	})

	t.Run("Cancel", func(t *testing.T) {
		out := console(t, "cancel "+helper.Source)
		assert.Contains(t, out, "Monitoring stopped for "+helper.Source)

		out = console(t, "status "+helper.Source)
		assert.Contains(t, out, "Status: Inactive")

		require.NoError(t, ioutil.WriteFile(
			filepath.Join(helper.Source, "cancelled"), []byte("cancelled"), 0644))
		time.Sleep(2 * time.Second)
		_, err := os.Stat(filepath.Join(helper.Target, "cancelled"))
		assert.True(t, os.IsNotExist(err), "file should not be synced after cancel")
	})

	t.Run("InvalidCommand", func(t *testing.T) {
		out := console(t, "rename a b")
		assert.Contains(t, out, "Invalid or unsupported command.")
	})

	t.Run("Shutdown", func(t *testing.T) {
		out := console(t, "shutdown")
		assert.Contains(t, out, "Shutting down manager...")

		select {
		case err := <-errChan:
			assert.NoError(t, err)
		case <-time.After(30 * time.Second):
			t.Error("manager didn't exit after shutdown")
		}
	})
}
