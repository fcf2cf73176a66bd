package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"embeddedcli/internal/testutils"
)

func TestDefault(t *testing.T) {
	m, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "demo", m.Name)
	for _, action := range Actions {
		found := false
		for _, cmd := range m.Commands {
			if cmd.Action == action {
				found = true
			}
		}
		assert.True(t, found, "default manifest uses action %q", action)
	}

	sub, ok := m.Command("sub")
	require.True(t, ok)
	assert.Equal(t, "sub> ", sub.Invitation)

	tokens, ok := m.Command("tokens")
	require.True(t, ok)
	assert.Contains(t, tokens.Help, "\n", "block scalars keep line breaks")

	assert.Equal(t, 100, m.PWM.RunnerFreq)
	require.Len(t, m.PWM.Channels, 2)
	assert.True(t, m.PWM.Channels[1].Invert)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{
			name:    "unknown action",
			yaml:    "commands:\n  - name: led\n    action: blink\n",
			wantErr: ErrUnknownAction,
		},
		{
			name:    "missing name",
			yaml:    "commands:\n  - action: echo\n",
			wantErr: ErrInvalidManifest,
		},
		{
			name:    "duplicate",
			yaml:    "commands:\n  - {name: a, action: echo}\n  - {name: a, action: exit}\n",
			wantErr: ErrInvalidManifest,
		},
		{
			name:    "newer ecli required",
			yaml:    "requires: \">= 99.0.0\"\ncommands:\n  - {name: a, action: echo}\n",
			wantErr: ErrInvalidManifest,
		},
		{
			name:    "bad constraint",
			yaml:    "requires: \"soon\"\n",
			wantErr: ErrInvalidManifest,
		},
		{
			name:    "channels without runner",
			yaml:    "pwm:\n  channels:\n    - {name: led, freq: 1, duty: 10}\n",
			wantErr: ErrInvalidManifest,
		},
		{
			name:    "freq above runner",
			yaml:    "pwm:\n  runner_freq: 10\n  channels:\n    - {name: led, freq: 20, duty: 10}\n",
			wantErr: ErrInvalidManifest,
		},
		{
			name:    "duty out of range",
			yaml:    "pwm:\n  runner_freq: 10\n  channels:\n    - {name: led, freq: 1, duty: 101}\n",
			wantErr: ErrInvalidManifest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("commands: [unterminated"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := testutils.CreateTempFile(t, "cmds.yaml", `
name: tiny
commands:
  - name: say
    action: echo
    tokenize: true
`)
	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "tiny", m.Name)
	require.Len(t, m.Commands, 1)
	assert.True(t, m.Commands[0].Tokenize)

	def, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "demo", def.Name)

	_, err = Load("/nonexistent/cmds.yaml")
	assert.Error(t, err)
}
