package manager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidkik/fss/pkg/config"
	"github.com/sidkik/fss/pkg/errors"
)

func TestLoadSettings(t *testing.T) {
	missingSettings := t.TempDir() + "/fss.yaml"

	tests := []struct {
		name     string
		args     []string
		exp      func(config.Settings) config.Settings
		expError error
	}{
		{
			name: "Defaults",
			args: []string{"--settings", missingSettings},
			exp:  func(s config.Settings) config.Settings { return s },
		},
		{
			name: "Flags",
			args: []string{"--settings", missingSettings, "-l", "custom.log", "-c", "pairs.txt", "-n", "2"},
			exp: func(s config.Settings) config.Settings {
				s.LogPath = "custom.log"
				s.PairsPath = "pairs.txt"
				s.Workers = 2
				return s
			},
		},
		{
			name:     "InvalidWorkers",
			args:     []string{"--settings", missingSettings, "-n", "0"},
			expError: errors.NewFriendlyError("The worker limit must be at least 1, but it's set to 0."),
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			cmd := New()
			require.NoError(t, cmd.ParseFlags(test.args))

			var f flags
			f.settingsPath, _ = cmd.Flags().GetString("settings")
			f.logPath, _ = cmd.Flags().GetString("log")
			f.pairsPath, _ = cmd.Flags().GetString("config")
			f.workers, _ = cmd.Flags().GetInt("workers")

			settings, err := loadSettings(cmd, f)
			assert.Equal(t, test.expError, err)
			if test.exp != nil {
				assert.Equal(t, test.exp(config.DefaultSettings()), settings)
			}
		})
	}
}

func TestSaveSettings(t *testing.T) {
	settingsPath := t.TempDir() + "/fss.yaml"

	cmd := New()
	require.NoError(t, cmd.ParseFlags([]string{"-n", "3"}))

	f := flags{settingsPath: settingsPath, workers: 3, save: true}
	settings, err := loadSettings(cmd, f)
	require.NoError(t, err)
	assert.Equal(t, 3, settings.Workers)

	saved, err := config.ParseSettings(settingsPath)
	require.NoError(t, err)
	assert.Equal(t, settings, saved)

	// Later runs pick up the saved value without the flag.
	settings, err = loadSettings(New(), flags{settingsPath: settingsPath})
	require.NoError(t, err)
	assert.Equal(t, 3, settings.Workers)
}

func TestRunMissingPairs(t *testing.T) {
	settings := config.DefaultSettings()
	settings.PairsPath = t.TempDir() + "/config.txt"

	err := run(settings)
	_, ok := err.(errors.FriendlyError)
	assert.True(t, ok)
}
