package config

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidkik/fss/pkg/errors"
)

func TestParseSettings(t *testing.T) {
	out := ".fss.yaml"

	withWorkers := DefaultSettings()
	withWorkers.Workers = 8

	withPaths := DefaultSettings()
	withPaths.Version = SupportedSettingsVersion
	withPaths.LogPath = "/var/log/fss.log"
	withPaths.PairsPath = "/etc/fss/pairs.txt"

	tests := []struct {
		name      string
		input     []byte
		expConfig Settings
		expError  error
	}{
		{
			name:      "EmptyVersion",
			input:     []byte("workers: 8"),
			expConfig: withWorkers,
		},
		{
			name: "CorrectVersion",
			input: []byte("version: v1alpha1\n" +
				"logPath: /var/log/fss.log\n" +
				"pairsPath: /etc/fss/pairs.txt\n"),
			expConfig: withPaths,
		},
		{
			name:  "IncorrectVersion",
			input: []byte("version: incorrect_version\nextra: fields"),
			expError: errors.WithContext(incompatibleVersionError{
				path:   out,
				exp:    SupportedSettingsVersion,
				actual: "incorrect_version",
			}, "parse"),
		},
		{
			name:     "InvalidWorkers",
			input:    []byte("workers: -1"),
			expError: errors.NewFriendlyError("The worker limit must be at least 1, but it's set to -1."),
		},
		{
			name:     "InvalidQueueCapacity",
			input:    []byte("queueCapacity: 1"),
			expError: errors.NewFriendlyError("The queue capacity must be at least 2, but it's set to 1."),
		},
	}

	homedirExpand = func(_ string) (string, error) {
		return out, nil
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			fs = afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, out, test.input, 0644))

			config, err := ParseSettings("")
			assert.Equal(t, test.expConfig, config)
			assert.Equal(t, test.expError, err)
		})
	}
}

func TestParseSettingsExtraFields(t *testing.T) {
	fs = afero.NewMemMapFs()
	homedirExpand = func(_ string) (string, error) {
		return ".fss.yaml", nil
	}
	require.NoError(t, afero.WriteFile(fs, ".fss.yaml",
		[]byte("version: v1alpha1\nextra: fields"), 0644))

	_, err := ParseSettings("")
	require.Error(t, err)

	friendlyErr, ok := errors.RootCause(err).(errors.FriendlyError)
	require.True(t, ok)
	assert.Contains(t, friendlyErr.FriendlyMessage(), `unknown field "extra"`)
}

func TestParseSettingsMissing(t *testing.T) {
	fs = afero.NewMemMapFs()
	homedirExpand = func(_ string) (string, error) {
		return ".fss.yaml", nil
	}

	config, err := ParseSettings("")
	assert.NoError(t, err)
	assert.Equal(t, DefaultSettings(), config)
}

func TestParseWrittenSettings(t *testing.T) {
	fs = afero.NewMemMapFs()
	homedirExpand = func(_ string) (string, error) {
		return ".fss.yaml", nil
	}

	settings := DefaultSettings()
	settings.Workers = 2
	settings.PipeIn = "/tmp/in"

	// Write the settings to disk, and assert that we get the same settings
	// when we parse them.
	assert.NoError(t, WriteSettings(SettingsPath, settings))

	parsed, err := ParseSettings(SettingsPath)
	assert.NoError(t, err)

	settings.Version = SupportedSettingsVersion
	assert.Equal(t, settings, parsed)
}
