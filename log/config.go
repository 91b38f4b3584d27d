// SPDX-License-Identifier: MIT

package log

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/pwt/go-utils/expression"
)

// Output targets for Settings.Output. Any other value is treated as a file
// path opened in append mode.
const (
	OutputStd    = "std" // stdout for info and below, stderr for warnings up
	OutputStdout = "stdout"
	OutputStderr = "stderr"
)

// Formats for Settings.Format.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Filter policies for Settings.FilterPolicy.
const (
	PolicyAllow = "allow" // only events matching a filter rule pass
	PolicyDeny  = "deny"  // events matching a filter rule are dropped
)

const defaultTimeFormat = "2006-01-02 15:04:05"

// Settings is the file-shaped logger configuration.
type Settings struct {
	Service      string   `yaml:"service"`
	Level        string   `yaml:"level"`
	Output       string   `yaml:"output"`
	Format       string   `yaml:"format"`
	TimeFormat   string   `yaml:"time_format"`
	Filters      []string `yaml:"filters"`
	FilterPolicy string   `yaml:"filter_policy"`
}

// DefaultSettings returns the settings used when a field is left empty.
func DefaultSettings() Settings {
	return Settings{
		Level:        "info",
		Output:       OutputStd,
		Format:       FormatJSON,
		TimeFormat:   defaultTimeFormat,
		FilterPolicy: PolicyAllow,
	}
}

// LoadSettings reads and validates a YAML settings file.
func LoadSettings(path string) (Settings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("log: read settings: %w", err)
	}
	s := DefaultSettings()
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return Settings{}, fmt.Errorf("log: parse settings: %w", err)
	}
	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s *Settings) applyDefaults() {
	def := DefaultSettings()
	if s.Level == "" {
		s.Level = def.Level
	}
	if s.Output == "" {
		s.Output = def.Output
	}
	if s.Format == "" {
		s.Format = def.Format
	}
	if s.TimeFormat == "" {
		s.TimeFormat = def.TimeFormat
	}
	if s.FilterPolicy == "" {
		s.FilterPolicy = def.FilterPolicy
	}
}

// Validate checks levels, enums and filter expressions.
func (s Settings) Validate() error {
	if _, err := zerolog.ParseLevel(s.Level); err != nil {
		return fmt.Errorf("log: invalid level %q: %w", s.Level, err)
	}
	if s.Format != FormatJSON && s.Format != FormatConsole {
		return fmt.Errorf("log: invalid format %q", s.Format)
	}
	if s.FilterPolicy != PolicyAllow && s.FilterPolicy != PolicyDeny {
		return fmt.Errorf("log: invalid filter policy %q", s.FilterPolicy)
	}
	for _, src := range s.Filters {
		if _, err := expression.Compile(src); err != nil {
			return fmt.Errorf("log: invalid filter: %w", err)
		}
	}
	return nil
}

// NewLogger builds a zerolog.Logger from the settings. The returned logger is
// independent of the package global. Writers for file outputs stay open for
// the lifetime of the logger.
func NewLogger(s Settings) (zerolog.Logger, error) {
	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return zerolog.Logger{}, err
	}

	var out io.Writer
	switch s.Output {
	case OutputStd:
		out = stdWriter{stdout: os.Stdout, stderr: os.Stderr}
	case OutputStdout:
		out = os.Stdout
	case OutputStderr:
		out = os.Stderr
	default:
		f, err := os.OpenFile(s.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Logger{}, fmt.Errorf("log: open output: %w", err)
		}
		out = f
	}
	return NewLoggerTo(s, out)
}

// NewLoggerTo is NewLogger writing to an explicit writer, ignoring
// Settings.Output. Useful for tests and custom sinks.
func NewLoggerTo(s Settings, out io.Writer) (zerolog.Logger, error) {
	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return zerolog.Logger{}, err
	}

	if s.Format == FormatConsole {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: s.TimeFormat}
	}
	if len(s.Filters) > 0 {
		fw, err := NewFilterWriter(out, s.FilterPolicy, s.Filters...)
		if err != nil {
			return zerolog.Logger{}, err
		}
		out = fw
	}

	level, _ := zerolog.ParseLevel(s.Level)
	builder := zerolog.New(out).Level(level).With().Timestamp()
	if s.Service != "" {
		builder = builder.Str("service", s.Service)
	}
	return builder.Logger(), nil
}

// stdWriter splits events between stdout and stderr by level, the
// conventional behaviour for command line tools: warnings and errors go to
// stderr, everything else to stdout.
type stdWriter struct {
	stdout io.Writer
	stderr io.Writer
}

func (w stdWriter) Write(p []byte) (int, error) {
	return w.stdout.Write(p)
}

func (w stdWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level >= zerolog.WarnLevel {
		return w.stderr.Write(p)
	}
	return w.stdout.Write(p)
}
