package util

import (
	"bytes"
	"context"
	"io/ioutil"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sidkik/fss/pkg/config"
	"github.com/sidkik/fss/pkg/errors"
)

// TestHelper contains methods commonly used during integration tests. Each
// helper runs fss in its own working directory, so the control pipes and log
// files of different tests don't collide.
type TestHelper struct {
	Binary string
	Dir    string

	// Source and Target are empty directories that tests can sync between.
	Source string
	Target string
}

// NewTestHelper creates a new TestHelper that runs the given fss binary.
func NewTestHelper(binary string) (*TestHelper, error) {
	dir, err := ioutil.TempDir("", "fss-ci")
	if err != nil {
		return nil, errors.WithContext(err, "make working dir")
	}

	helper := &TestHelper{
		Binary: binary,
		Dir:    dir,
		Source: filepath.Join(dir, "source"),
		Target: filepath.Join(dir, "target"),
	}
	for _, path := range []string{helper.Source, helper.Target} {
		if err := os.Mkdir(path, 0755); err != nil {
			return nil, errors.WithContext(err, "make directory")
		}
	}
	return helper, nil
}

// Cleanup removes the working directory.
func (helper *TestHelper) Cleanup() error {
	return os.RemoveAll(helper.Dir)
}

// ManagerLogPath is the path of the log written by Manager.
func (helper *TestHelper) ManagerLogPath() string {
	return filepath.Join(helper.Dir, config.DefaultLogPath)
}

// Start starts the given fss command. It returns a channel that receives the
// result of the command once it exits. The command is sent SIGTERM when ctx
// is cancelled.
func (helper *TestHelper) Start(ctx context.Context, args ...string) (chan error, error) {
	cmd := exec.Command(helper.Binary, args...)
	cmd.Dir = helper.Dir

	stderr := bytes.NewBuffer(nil)
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	errChan := make(chan error, 1)
	go func() {
		waitErr := make(chan error)
		go func() {
			waitErr <- cmd.Wait()
			close(waitErr)
		}()

		defer close(errChan)
		select {
		case <-ctx.Done():
			if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
				errChan <- errors.WithContext(err, "kill")
				return
			}
			<-waitErr
		case err := <-waitErr:
			if err != nil {
				errChan <- errors.Errorf("crashed (%s): stderr: %s", err, stderr)
			}
		}
	}()
	return errChan, nil
}

// Run runs the given fss command with stdin as its input, and returns its
// stdout.
func (helper *TestHelper) Run(ctx context.Context, stdin string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, helper.Binary, args...)
	cmd.Dir = helper.Dir
	cmd.Stdin = strings.NewReader(stdin)
	return cmd.Output()
}

// Manager runs `fss manager` with the given pair file contents, and waits
// until it's accepting commands.
func (helper *TestHelper) Manager(ctx context.Context, pairs string) (chan error, error) {
	pairsPath := filepath.Join(helper.Dir, config.DefaultPairsPath)
	if err := ioutil.WriteFile(pairsPath, []byte(pairs), 0644); err != nil {
		return nil, errors.WithContext(err, "write pairs")
	}

	log.Info("Starting fss manager")
	errChan, err := helper.Start(ctx, "manager",
		"--settings", filepath.Join(helper.Dir, "settings.yaml"))
	if err != nil {
		return nil, errors.WithContext(err, "start")
	}

	waitCtx, cancelWait := context.WithTimeout(ctx, time.Minute)
	defer cancelWait()

	pipesExist := func() bool {
		for _, pipe := range []string{config.DefaultPipeIn, config.DefaultPipeOut} {
			if _, err := os.Stat(filepath.Join(helper.Dir, pipe)); err != nil {
				return false
			}
		}
		return true
	}
	if !TestWithRetry(waitCtx, pipesExist) {
		return nil, errors.New("control pipes weren't created")
	}
	return errChan, nil
}

// Console sends the commands to the manager through `fss console`, and
// returns everything the console printed.
func (helper *TestHelper) Console(ctx context.Context, commands ...string) (string, error) {
	stdin := strings.Join(commands, "\n") + "\n"
	out, err := helper.Run(ctx, stdin, "console", "-l", "console_log.txt")
	if err != nil {
		return string(out), errors.WithContext(err, "run console")
	}
	return string(out), nil
}

// TestWithRetry runs test with an exponential backoff until it passes or ctx
// expires. It returns whether test passed.
func TestWithRetry(ctx context.Context, test func() bool) bool {
	maxSleepTime := 5 * time.Second
	sleepTime := 50 * time.Millisecond
	for {
		if test() {
			return true
		}

		select {
		case <-ctx.Done():
			return test()
		case <-time.After(sleepTime):
			sleepTime *= 2
			if sleepTime > maxSleepTime {
				sleepTime = maxSleepTime
			}
		}
	}
}
