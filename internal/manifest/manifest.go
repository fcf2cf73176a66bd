// Package manifest describes the demo program's commands in YAML: which
// bindings to register, which built-in action each one runs, and the PWM
// channels the pwm action drives.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"embeddedcli/internal/data/embedded"
	"embeddedcli/internal/version"
)

// Actions lists the action names a command may use.
var Actions = []string{"echo", "tokens", "pwm", "sub", "raw", "exit"}

var (
	// ErrInvalidManifest is returned for manifests that parse but are unusable.
	ErrInvalidManifest = errors.New("invalid manifest")
	// ErrUnknownAction is returned for a command naming an action not in Actions.
	ErrUnknownAction = errors.New("unknown action")
)

// Manifest is the root of a manifest file. Requires is an optional version
// constraint on ecli, such as ">= 0.1.0".
type Manifest struct {
	Name     string    `yaml:"name"`
	Requires string    `yaml:"requires,omitempty"`
	Commands []Command `yaml:"commands"`
	PWM      PWM       `yaml:"pwm"`
}

// Command becomes one binding.
type Command struct {
	Name   string `yaml:"name"`
	Action string `yaml:"action"`
	Usage  string `yaml:"usage,omitempty"`
	Help   string `yaml:"help,omitempty"`
	// Tokenize forces argument tokenization; the tokens action always
	// tokenizes.
	Tokenize bool `yaml:"tokenize,omitempty"`
	// Invitation is the prompt of the sub action's sub-interpreter.
	Invitation string `yaml:"invitation,omitempty"`
}

// PWM configures the software PWM runner.
type PWM struct {
	// RunnerFreq is how many times per second the runner ticks.
	RunnerFreq int       `yaml:"runner_freq"`
	Channels   []Channel `yaml:"channels"`
}

// Channel is one PWM output.
type Channel struct {
	Name      string `yaml:"name"`
	Freq      int    `yaml:"freq"`
	Duty      int    `yaml:"duty"`
	Invert    bool   `yaml:"invert,omitempty"`
	DownCount bool   `yaml:"down_count,omitempty"`
}

// Parse decodes and validates a manifest.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Load reads the manifest at path, or the built-in one when path is empty.
func Load(path string) (*Manifest, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Default returns the built-in demo manifest.
func Default() (*Manifest, error) {
	return Parse(embedded.DefaultManifestData)
}

// Validate checks the version constraint, names, actions and PWM settings.
func (m *Manifest) Validate() error {
	ok, err := version.Satisfies(m.Requires)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	if !ok {
		return fmt.Errorf("%w: requires ecli %s, running %s", ErrInvalidManifest, m.Requires, version.Version)
	}

	seen := make(map[string]bool, len(m.Commands))
	for i, cmd := range m.Commands {
		if cmd.Name == "" {
			return fmt.Errorf("%w: command %d has no name", ErrInvalidManifest, i+1)
		}
		if seen[cmd.Name] {
			return fmt.Errorf("%w: command %q defined twice", ErrInvalidManifest, cmd.Name)
		}
		seen[cmd.Name] = true
		if !slices.Contains(Actions, cmd.Action) {
			return fmt.Errorf("%w %q for command %q", ErrUnknownAction, cmd.Action, cmd.Name)
		}
	}

	if len(m.PWM.Channels) > 0 && m.PWM.RunnerFreq <= 0 {
		return fmt.Errorf("%w: pwm runner_freq must be positive", ErrInvalidManifest)
	}
	for _, ch := range m.PWM.Channels {
		switch {
		case ch.Name == "":
			return fmt.Errorf("%w: pwm channel without a name", ErrInvalidManifest)
		case ch.Freq <= 0 || ch.Freq > m.PWM.RunnerFreq:
			return fmt.Errorf("%w: pwm channel %q freq must be in 1..%d", ErrInvalidManifest, ch.Name, m.PWM.RunnerFreq)
		case ch.Duty < 0 || ch.Duty > 100:
			return fmt.Errorf("%w: pwm channel %q duty must be in 0..100", ErrInvalidManifest, ch.Name)
		}
	}
	return nil
}

// Command returns the command with the given name.
func (m *Manifest) Command(name string) (Command, bool) {
	for _, cmd := range m.Commands {
		if cmd.Name == name {
			return cmd, true
		}
	}
	return Command{}, false
}
