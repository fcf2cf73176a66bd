// Package replay runs recorded keystroke transcripts through a fresh engine
// and compares the rendered terminal output with the expected text.
package replay

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"embeddedcli/pkg/embeddedcli"
)

// ErrInvalidTranscript is returned for transcripts without usable cases.
var ErrInvalidTranscript = errors.New("invalid transcript")

// Transcript is a named list of cases sharing engine overrides.
type Transcript struct {
	Name   string    `yaml:"name"`
	Config Overrides `yaml:"config"`
	Cases  []Case    `yaml:"cases"`
}

// Case is one keystroke sequence and the screen it should produce. Input is
// usually a double-quoted YAML string so escapes like "\r" and "\x1b[A" work.
type Case struct {
	Name   string `yaml:"name"`
	Input  string `yaml:"input"`
	Expect string `yaml:"expect"`
}

// Overrides replace fields of the base engine configuration; unset fields
// keep the base value.
type Overrides struct {
	Invitation        *string `yaml:"invitation"`
	CmdBufferSize     *int    `yaml:"cmd_buffer_size"`
	HistoryBufferSize *int    `yaml:"history_buffer_size"`
	AutoComplete      *bool   `yaml:"auto_complete"`
}

// Apply returns base with the overrides applied. Colors are always off so
// the rendered screen is plain text.
func (o Overrides) Apply(base embeddedcli.Config) embeddedcli.Config {
	cfg := base
	cfg.Buffer = nil
	cfg.ColorOutput = false
	if o.Invitation != nil {
		cfg.Invitation = *o.Invitation
	}
	if o.CmdBufferSize != nil {
		cfg.CmdBufferSize = *o.CmdBufferSize
	}
	if o.HistoryBufferSize != nil {
		cfg.HistoryBufferSize = *o.HistoryBufferSize
	}
	if o.AutoComplete != nil {
		cfg.AutoComplete = *o.AutoComplete
	}
	return cfg
}

// ParseTranscript decodes a transcript.
func ParseTranscript(data []byte) (*Transcript, error) {
	var tr Transcript
	if err := yaml.Unmarshal(data, &tr); err != nil {
		return nil, fmt.Errorf("failed to parse transcript: %w", err)
	}
	if len(tr.Cases) == 0 {
		return nil, fmt.Errorf("%w: no cases", ErrInvalidTranscript)
	}
	for i := range tr.Cases {
		if tr.Cases[i].Name == "" {
			tr.Cases[i].Name = fmt.Sprintf("case %d", i+1)
		}
	}
	return &tr, nil
}

// LoadTranscript reads and decodes the transcript at path.
func LoadTranscript(path string) (*Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript %s: %w", path, err)
	}
	tr, err := ParseTranscript(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if tr.Name == "" {
		tr.Name = path
	}
	return tr, nil
}
