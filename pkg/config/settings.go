package config

import (
	"github.com/ghodss/yaml"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"

	"github.com/sidkik/fss/pkg/errors"
)

const (
	// SettingsPath is the default path to the manager settings.
	SettingsPath = "~/.fss.yaml"

	// InitialSettingsVersion is the first version of the settings file.
	// Settings files that do not specify a version will default to this
	// version.
	InitialSettingsVersion = "v1alpha1"

	// SupportedSettingsVersion is the settings version understood by the
	// current fss binary.
	SupportedSettingsVersion = "v1alpha1"
)

// Defaults used when neither the settings file nor a flag sets a value.
const (
	DefaultLogPath       = "manager_log.txt"
	DefaultPairsPath     = "config.txt"
	DefaultWorkers       = 5
	DefaultQueueCapacity = 100
	DefaultWatchLimit    = 100
	DefaultPipeIn        = "fss_in"
	DefaultPipeOut       = "fss_out"
	DefaultLogMaxSizeMB  = 100
)

// Settings configures the manager daemon.
type Settings struct {
	Version string `json:"version,omitempty"`

	// LogPath is the file that manager events and worker reports are
	// appended to.
	LogPath string `json:"logPath,omitempty"`

	// PairsPath is the file listing the source and target directories that
	// are synced at startup.
	PairsPath string `json:"pairsPath,omitempty"`

	Workers       int `json:"workers,omitempty"`
	QueueCapacity int `json:"queueCapacity,omitempty"`
	WatchLimit    int `json:"watchLimit,omitempty"`

	PipeIn  string `json:"pipeIn,omitempty"`
	PipeOut string `json:"pipeOut,omitempty"`

	// LogMaxSizeMB is the size at which the log file is rotated.
	LogMaxSizeMB int `json:"logMaxSizeMB,omitempty"`
}

func (s Settings) getVersion() string {
	return s.Version
}

// DefaultSettings returns the settings used when no settings file exists.
func DefaultSettings() Settings {
	return Settings{
		Version:       InitialSettingsVersion,
		LogPath:       DefaultLogPath,
		PairsPath:     DefaultPairsPath,
		Workers:       DefaultWorkers,
		QueueCapacity: DefaultQueueCapacity,
		WatchLimit:    DefaultWatchLimit,
		PipeIn:        DefaultPipeIn,
		PipeOut:       DefaultPipeOut,
		LogMaxSizeMB:  DefaultLogMaxSizeMB,
	}
}

// homedirExpand will be overridden in mock tests
var homedirExpand = homedir.Expand

// ParseSettings parses the settings file at path, or at SettingsPath if path
// is empty. A missing file isn't an error: the defaults are returned
// instead. Fields that are omitted from the file keep their default values.
func ParseSettings(path string) (Settings, error) {
	if path == "" {
		path = SettingsPath
	}

	path, err := homedirExpand(path)
	if err != nil {
		return Settings{}, errors.WithContext(err, "expand settings path")
	}

	settings := DefaultSettings()
	if err := parseConfig(path, &settings, SupportedSettingsVersion); err != nil {
		if _, ok := err.(errors.FileNotFound); ok {
			return DefaultSettings(), nil
		}
		return Settings{}, errors.WithContext(err, "parse")
	}

	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// Validate checks that the limits are usable.
func (s Settings) Validate() error {
	switch {
	case s.Workers < 1:
		return errors.NewFriendlyError(
			"The worker limit must be at least 1, but it's set to %d.", s.Workers)
	case s.QueueCapacity < 2:
		return errors.NewFriendlyError(
			"The queue capacity must be at least 2, but it's set to %d.", s.QueueCapacity)
	case s.WatchLimit < 1:
		return errors.NewFriendlyError(
			"The watch limit must be at least 1, but it's set to %d.", s.WatchLimit)
	}
	return nil
}

// WriteSettings writes the given settings to path.
func WriteSettings(path string, settings Settings) error {
	settings.Version = SupportedSettingsVersion
	path, err := homedirExpand(path)
	if err != nil {
		return errors.WithContext(err, "expand settings path")
	}

	yamlBytes, err := yaml.Marshal(settings)
	if err != nil {
		return errors.WithContext(err, "marshal")
	}

	if err := afero.WriteFile(fs, path, yamlBytes, 0644); err != nil {
		return errors.WithContext(err, "write")
	}
	return nil
}
