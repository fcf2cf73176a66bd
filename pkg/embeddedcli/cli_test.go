package embeddedcli

import (
	"bytes"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"embeddedcli/internal/arena"
	"embeddedcli/internal/testutils"
)

// newTestCLI creates an engine writing to a fake terminal. Autocompletion is
// off unless mutate turns it on, so echo stays predictable.
func newTestCLI(t *testing.T, mutate func(cfg *Config)) (*CLI, *testutils.Terminal) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.AutoComplete = false
	if mutate != nil {
		mutate(&cfg)
	}
	cli, err := New(cfg)
	require.NoError(t, err)

	term := testutils.NewTerminal()
	cli.SetWriter(term)
	t.Cleanup(cli.Close)
	return cli, term
}

// captureCommands routes unbound commands into the returned slice.
func captureCommands(cli *CLI) *[]Command {
	var got []Command
	cli.SetOnCommand(func(_ *CLI, cmd *Command) {
		got = append(got, Command{Name: cmd.Name, Args: bytes.Clone(cmd.Args)})
	})
	return &got
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *Config)
	}{
		{"zero rx buffer", func(cfg *Config) { cfg.RxBufferSize = 0 }},
		{"cmd buffer without room for a byte", func(cfg *Config) { cfg.CmdBufferSize = 2 }},
		{"negative history", func(cfg *Config) { cfg.HistoryBufferSize = -1 }},
		{"negative binding count", func(cfg *Config) { cfg.MaxBindingCount = -1 }},
		{"negative depth", func(cfg *Config) { cfg.SubInterpreterDepth = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			cli, err := New(cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Nil(t, cli)
		})
	}
}

func TestRequiredSize(t *testing.T) {
	cfg := DefaultConfig()
	size := RequiredSize(cfg)

	assert.Zero(t, size%arena.WordSize, "size is word aligned")
	assert.GreaterOrEqual(t, size, cfg.RxBufferSize+cfg.CmdBufferSize+cfg.HistoryBufferSize+cfg.MaxBindingCount+1)

	cfg.HistoryBufferSize += 100
	assert.Greater(t, RequiredSize(cfg), size, "size grows with the configuration")
}

func TestNew_StaticBuffer(t *testing.T) {
	cfg := DefaultConfig()

	cfg.Buffer = make([]byte, RequiredSize(cfg)-1)
	_, err := New(cfg)
	assert.ErrorIs(t, err, ErrBufferTooSmall)

	cfg.Buffer = make([]byte, RequiredSize(cfg))
	cli, err := New(cfg)
	require.NoError(t, err)

	testutils.Type(cli, "abc")
	assert.Equal(t, "abc", cli.Line())
	assert.True(t, bytes.Contains(cfg.Buffer, []byte("abc")), "input lives in the supplied region")

	cli.Close()
	cli.ReceiveChar('x')
	cli.Process()
	assert.ErrorIs(t, cli.AddBinding(Binding{Name: "late"}), ErrClosed)
}

func TestNewDefault(t *testing.T) {
	cli, err := NewDefault()
	require.NoError(t, err)
	defer cli.Close()

	assert.Equal(t, "> ", cli.Invitation())
	require.Len(t, cli.Bindings(), 1)
	assert.Equal(t, "help", cli.Bindings()[0].Name)

	other, err := NewDefault()
	require.NoError(t, err)
	defer other.Close()

	_, err = uuid.Parse(cli.ID())
	assert.NoError(t, err)
	assert.NotEqual(t, cli.ID(), other.ID())
}

func TestProcess_PrintsInvitationOnce(t *testing.T) {
	cli, term := newTestCLI(t, nil)

	cli.Process()
	cli.Process()
	assert.Equal(t, "> ", term.String())
}

func TestProcess_NoWriter(t *testing.T) {
	cli, _ := newTestCLI(t, nil)
	cli.SetWriter(nil)
	got := captureCommands(cli)

	testutils.Type(cli, "silent\r")
	require.Len(t, *got, 1)
	assert.Equal(t, "silent", (*got)[0].Name)
}

func TestReceiveBuffer_DropsWhenFull(t *testing.T) {
	cli, _ := newTestCLI(t, func(cfg *Config) { cfg.RxBufferSize = 4 })

	assert.Equal(t, 4, cli.ReceiveBuffer([]byte("abcdef")))
	cli.ReceiveChar('g')
	cli.Process()
	assert.Equal(t, "abcd", cli.Line())
}

func TestReceive_ConcurrentProducer(t *testing.T) {
	cli, _ := newTestCLI(t, func(cfg *Config) { cfg.RxBufferSize = 8 })
	count := 0
	require.NoError(t, cli.AddBinding(Binding{
		Name: "x",
		Func: func(*CLI, []byte, any) { count++ },
	}))

	const commands = 200
	done := make(chan struct{})
	go func() {
		defer close(done)
		payload := bytes.Repeat([]byte("x\r"), commands)
		for len(payload) > 0 {
			n := cli.ReceiveBuffer(payload)
			payload = payload[n:]
			if n == 0 {
				runtime.Gosched()
			}
		}
	}()

	deadline := time.Now().Add(5 * time.Second)
	for count < commands && time.Now().Before(deadline) {
		cli.Process()
	}
	<-done
	assert.Equal(t, commands, count)
}

func TestClose_WhileProducerRuns(t *testing.T) {
	cli, _ := newTestCLI(t, nil)

	start := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-start
		for range 1000 {
			cli.ReceiveChar('a')
			cli.ReceiveBuffer([]byte("bc"))
		}
	}()

	close(start)
	cli.Process()
	cli.Close()
	<-done

	assert.Zero(t, cli.ReceiveBuffer([]byte("late")), "input after Close is refused")
	cli.Close()
}

func TestPrint_OutsideCommandRedrawsLine(t *testing.T) {
	cli, term := newTestCLI(t, nil)

	testutils.Type(cli, "ab")
	cli.Print("message")
	assert.Equal(t, "> ab\rmessage\r\n> ab", term.Plain())
	assert.Equal(t, "ab", cli.Line())
}

func TestPrint_RestoresCursorPosition(t *testing.T) {
	cli, term := newTestCLI(t, nil)

	testutils.Type(cli, "abc\x1b[D\x1b[D")
	term.Reset()
	cli.Printf("value=%d", 7)
	assert.Equal(t, "\rvalue=7\r\n> abc", term.Plain())

	testutils.Type(cli, "X\r")
	assert.Equal(t, []string{"aXbc"}, cli.History())
}

func TestPrint_BeforeFirstProcess(t *testing.T) {
	cli, term := newTestCLI(t, nil)

	cli.Print("boot")
	cli.Process()
	assert.Equal(t, "boot\r\n> ", term.Plain())
}

func TestColorOutput(t *testing.T) {
	cli, term := newTestCLI(t, func(cfg *Config) { cfg.ColorOutput = true })

	cli.Process()
	assert.Contains(t, term.String(), "\x1b[")
	assert.Equal(t, "> ", term.Plain())
}
