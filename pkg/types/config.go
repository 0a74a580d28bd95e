// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DefaultPattern is the file name pattern used when none is configured.
const DefaultPattern = "[bibtexkey]"

// RenameConfig holds settings for the rename stage.
type RenameConfig struct {
	// Library is the path of the YAML library file.
	Library string `json:"library" yaml:"library" mapstructure:"library"`

	// Pattern is the file name pattern handed to the pattern formatter
	// (default "[bibtexkey]").
	Pattern string `json:"pattern" yaml:"pattern" mapstructure:"pattern"`

	// OnlyRelativePaths leaves attachments with absolute links untouched.
	OnlyRelativePaths bool `json:"only_relative_paths" yaml:"only_relative_paths" mapstructure:"only_relative_paths"`

	// Directories lists candidate directories for resolving relative links,
	// searched in order after the library's own file_directories.
	Directories []string `json:"directories" yaml:"directories" mapstructure:"directories"`

	// UseLibraryDir appends the library file's directory as the last
	// candidate directory (default true).
	UseLibraryDir bool `json:"use_library_dir" yaml:"use_library_dir" mapstructure:"use_library_dir"`

	// History is the path of the SQLite change journal. Empty selects
	// .bibrename/history.db next to the library file.
	History string `json:"history" yaml:"history" mapstructure:"history"`
}

// LogFormat selects the log handler.
type LogFormat string

const (
	LogFormatAuto LogFormat = "auto"
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is debug, info, warn (or warning), error, or a numeric slog level.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is auto, text, or json. Auto picks text on a terminal.
	Format LogFormat `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all settings.
type Config struct {
	Rename RenameConfig `json:"rename" yaml:"rename" mapstructure:",squash"`
	Log    LogConfig    `json:"log" yaml:"log" mapstructure:"log"`
}
