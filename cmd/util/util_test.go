package util

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sidkik/fss/pkg/errors"
)

func TestHandleFatalError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		exp  string
	}{
		{
			name: "Plain",
			err:  errors.WithContext(errors.New("boom"), "load pairs"),
			exp:  "Error: load pairs: boom\n",
		},
		{
			name: "Friendly",
			err: errors.WithContext(
				errors.NewFriendlyError("The pair file %q doesn't exist.", "config.txt"),
				"load pairs"),
			exp: "The pair file \"config.txt\" doesn't exist.\n",
		},
	}

	defer func(origExit func(int), origStderr io.Writer) {
		exit = origExit
		stderr = origStderr
	}(exit, stderr)
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			var out bytes.Buffer
			var exitCode int
			stderr = &out
			exit = func(code int) { exitCode = code }

			HandleFatalError(test.err)
			assert.Equal(t, test.exp, out.String())
			assert.Equal(t, 1, exitCode)
		})
	}
}

func TestHandlePanic(t *testing.T) {
	assert.PanicsWithValue(t, "boom", func() {
		defer HandlePanic()
		panic("boom")
	})
}
