package main

import (
	"bytes"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"embeddedcli/internal/testutils"
	"embeddedcli/internal/version"
	"embeddedcli/pkg/embeddedcli"
)

// execute runs the command tree with args and input, returning its output.
func execute(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetArgs(append([]string{"--log-file", "ecli.log"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "ecli v"+version.Version)
}

func TestSizeCommand(t *testing.T) {
	out, err := execute(t, "", "size")
	require.NoError(t, err)
	want := embeddedcli.RequiredSize(embeddedcli.DefaultConfig())
	assert.Equal(t, strconv.Itoa(want)+"\n", out)

	out, err = execute(t, "", "size", "--history-buffer-size", "0", "--rx-buffer-size", "16")
	require.NoError(t, err)
	cfg := embeddedcli.DefaultConfig()
	cfg.HistoryBufferSize = 0
	cfg.RxBufferSize = 16
	assert.Equal(t, strconv.Itoa(embeddedcli.RequiredSize(cfg))+"\n", out)
}

func TestSizeCommand_EnvOverride(t *testing.T) {
	t.Setenv("ECLI_CMD_BUFFER_SIZE", "200")
	out, err := execute(t, "", "size")
	require.NoError(t, err)

	cfg := embeddedcli.DefaultConfig()
	cfg.CmdBufferSize = 200
	assert.Equal(t, strconv.Itoa(embeddedcli.RequiredSize(cfg))+"\n", out)
}

func TestShellCommand_RunsUntilInputEnds(t *testing.T) {
	out, err := execute(t, "echo hi\rpwm\r", "shell", "--auto-complete=false")
	require.NoError(t, err)

	plain := strings.Split(ansi.Strip(out), "\r\n")
	require.Len(t, plain, 6)
	assert.Equal(t, []string{"> echo hi", "hi", "> pwm"}, plain[:3])
	assert.True(t, strings.HasPrefix(plain[3], "led0: duty 50%, 1 Hz, "), plain[3])
	assert.True(t, strings.HasPrefix(plain[4], "led1: duty 24%, 2 Hz, "), plain[4])
	assert.Equal(t, "> ", plain[5])
}

func TestShellCommand_Exit(t *testing.T) {
	out, err := execute(t, "exit\recho never\r", "--auto-complete=false", "--invitation", "$ ")
	require.NoError(t, err)
	assert.Contains(t, ansi.Strip(out), "$ exit\r\nBye\r\n")
}

func TestShellCommand_BadManifest(t *testing.T) {
	path := testutils.CreateTempFile(t, "bad.yaml", "commands:\n  - {name: x, action: blink}\n")
	_, err := execute(t, "", "shell", "--manifest", path)
	assert.ErrorContains(t, err, "unknown action")
}

func TestReplayCommand(t *testing.T) {
	transcript, err := filepath.Abs("testdata/demo.yaml")
	require.NoError(t, err)

	out, err := execute(t, "", "replay", transcript)
	require.NoError(t, err, out)
	assert.Contains(t, out, "5/5 cases passed")
}

func TestReplayCommand_Mismatch(t *testing.T) {
	path := testutils.CreateTempFile(t, "bad.yaml", `
config:
  auto_complete: false
cases:
  - name: wrong output
    input: "echo a\r"
    expect: "> echo a\nb\n>"
`)
	out, err := execute(t, "", "replay", path)
	assert.ErrorIs(t, err, errReplayFailed)
	assert.Contains(t, out, "wrong output")
	assert.Contains(t, out, "- ")
	assert.Contains(t, out, "0/1 cases passed")
}
