// Package app turns a command manifest into engine bindings and owns the
// state those commands act on: the PWM bank and the quit signal.
package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"embeddedcli/internal/logger"
	"embeddedcli/internal/manifest"
	"embeddedcli/internal/softpwm"
	"embeddedcli/pkg/embeddedcli"
	"embeddedcli/pkg/tokens"
)

// rawExitKey leaves raw mode (Ctrl-]).
const rawExitKey = 0x1d

// App holds the demo program state shared by all bindings.
type App struct {
	manifest *manifest.Manifest
	bank     *softpwm.Bank
	log      *log.Logger

	done     chan struct{}
	quitOnce sync.Once
}

// New builds the PWM bank described by m. Channels drive virtual pins whose
// level can be read back with the pwm command.
func New(m *manifest.Manifest) (*App, error) {
	a := &App{
		manifest: m,
		bank:     softpwm.NewBank(m.PWM.RunnerFreq),
		log:      logger.NewStyledLogger("app"),
		done:     make(chan struct{}),
	}
	for _, ch := range m.PWM.Channels {
		if _, err := a.bank.Add(ch.Name, nil, float64(ch.Freq), float64(ch.Duty), ch.Invert, ch.DownCount); err != nil {
			return nil, fmt.Errorf("failed to create pwm channel: %w", err)
		}
	}
	return a, nil
}

// Setup registers one binding per manifest command on cli.
func (a *App) Setup(cli *embeddedcli.CLI) error {
	for _, cmd := range a.manifest.Commands {
		b := embeddedcli.Binding{
			Name:         cmd.Name,
			Usage:        cmd.Usage,
			Help:         cmd.Help,
			AutoTokenize: cmd.Tokenize,
			Context:      cmd,
		}
		switch cmd.Action {
		case "echo":
			b.Func = a.onEcho
		case "tokens":
			b.Func = a.onTokens
			b.AutoTokenize = true
		case "pwm":
			b.Func = a.onPWM
			b.AutoTokenize = true
		case "sub":
			b.Func = a.onSub
		case "raw":
			b.Func = a.onRaw
		case "exit":
			b.Func = a.onExit
		default:
			return fmt.Errorf("%w %q for command %q", manifest.ErrUnknownAction, cmd.Action, cmd.Name)
		}
		if err := cli.AddBinding(b); err != nil {
			return err
		}
		a.log.Debug("binding registered", "binding", cmd.Name, "action", cmd.Action)
	}
	return nil
}

// Bank returns the PWM channels driven by Tick.
func (a *App) Bank() *softpwm.Bank {
	return a.bank
}

// Tick advances every PWM channel by one runner tick.
func (a *App) Tick() {
	a.bank.Run()
}

// Done is closed once an exit command ran.
func (a *App) Done() <-chan struct{} {
	return a.done
}

// Quit closes Done. It is safe to call more than once.
func (a *App) Quit() {
	a.quitOnce.Do(func() { close(a.done) })
}

func (a *App) onEcho(cli *embeddedcli.CLI, args []byte, ctx any) {
	if cmd, _ := ctx.(manifest.Command); cmd.Tokenize {
		cli.Print(strings.Join(tokens.Tokens(args).Strings(), " "))
		return
	}
	cli.Print(string(args))
}

func (a *App) onTokens(cli *embeddedcli.CLI, args []byte, _ any) {
	toks := tokens.Tokens(args)
	if toks.Count() == 0 {
		cli.Print("no tokens")
		return
	}
	for _, tok := range toks.Strings() {
		cli.Print(tok)
	}
}

func (a *App) onPWM(cli *embeddedcli.CLI, args []byte, ctx any) {
	toks := tokens.Tokens(args)
	switch toks.Count() {
	case 0:
		a.listChannels(cli)
		return
	case 2, 3:
	default:
		a.printUsage(cli, ctx)
		return
	}

	name, _ := toks.Get(1)
	dutyArg, _ := toks.Get(2)
	duty, err := strconv.ParseFloat(dutyArg, 64)
	if err != nil {
		cli.Printf("Invalid duty %q", dutyArg)
		return
	}
	var freq float64
	if freqArg, ok := toks.Get(3); ok {
		if freq, err = strconv.ParseFloat(freqArg, 64); err != nil || freq <= 0 {
			cli.Printf("Invalid frequency %q", freqArg)
			return
		}
	}

	if err := a.bank.Set(name, duty, freq); err != nil {
		if errors.Is(err, softpwm.ErrNoChannel) {
			cli.Printf("Unknown channel %q", name)
		} else {
			cli.Print(err.Error())
		}
		return
	}
	ch, _ := a.bank.Channel(name)
	cli.Print(a.describe(ch))
}

func (a *App) listChannels(cli *embeddedcli.CLI) {
	if len(a.bank.Channels()) == 0 {
		cli.Print("No PWM channels")
		return
	}
	for _, ch := range a.bank.Channels() {
		cli.Print(a.describe(ch))
	}
}

func (a *App) describe(ch *softpwm.Channel) string {
	freq := 0.0
	if ch.Reload > 0 {
		freq = float64(a.bank.RunnerFreq()) / float64(ch.Reload)
	}
	level := "low"
	if ch.Level() {
		level = "high"
	}
	return fmt.Sprintf("%s: duty %g%%, %g Hz, %s", ch.Name, ch.Duty(), freq, level)
}

func (a *App) printUsage(cli *embeddedcli.CLI, ctx any) {
	if cmd, ok := ctx.(manifest.Command); ok && cmd.Usage != "" {
		cli.Print("Usage: " + cmd.Usage)
		return
	}
	cli.Print("Invalid arguments")
}

func (a *App) onSub(cli *embeddedcli.CLI, _ []byte, ctx any) {
	cmd, _ := ctx.(manifest.Command)
	invitation := cmd.Invitation
	if invitation == "" {
		invitation = cmd.Name + "> "
	}
	err := cli.EnterSubInterpreter(onSubCommand, func(c *embeddedcli.CLI) {
		c.Printf("Left %s", cmd.Name)
	}, invitation)
	if err != nil {
		cli.Print(err.Error())
		return
	}
	cli.Print("Ctrl-D to leave")
}

func onSubCommand(cli *embeddedcli.CLI, cmd *embeddedcli.Command) {
	if len(cmd.Args) == 0 {
		cli.Print(cmd.Name)
		return
	}
	cli.Print(cmd.Name + " " + string(cmd.Args))
}

func (a *App) onRaw(cli *embeddedcli.CLI, _ []byte, _ any) {
	cli.Print("Raw mode, Ctrl-] to leave")
	cli.SetRawHandler(func(c *embeddedcli.CLI, b byte) byte {
		if b == rawExitKey {
			c.ResetRawHandler()
			return 0
		}
		if b >= 'a' && b <= 'z' {
			return b - 'a' + 'A'
		}
		return b
	})
}

func (a *App) onExit(cli *embeddedcli.CLI, _ []byte, _ any) {
	cli.Print("Bye")
	a.Quit()
}
