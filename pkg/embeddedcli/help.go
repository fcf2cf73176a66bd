package embeddedcli

import (
	"fmt"
	"strings"

	"embeddedcli/internal/bindings"
	"embeddedcli/pkg/tokens"
)

const helpName = "help"

func (c *CLI) addBuiltins() error {
	help := Binding{
		Name:         helpName,
		Usage:        "help [command]",
		Help:         "Print list of commands or help for the given command",
		Func:         onHelp,
		AutoTokenize: true,
	}
	if err := c.bindings.AddBuiltin(help.Name, help, bindings.FlagTokenize); err != nil {
		return fmt.Errorf("adding built-in %q: %w", help.Name, err)
	}
	return nil
}

func onHelp(cli *CLI, args []byte, _ any) {
	toks := tokens.Tokens(args)
	switch toks.Count() {
	case 0:
		for _, name := range cli.bindings.Names("") {
			b, _, _ := cli.bindings.Lookup(name)
			cli.printBindingSummary(b)
		}
	case 1:
		name, _ := toks.Get(1)
		b, _, ok := cli.bindings.Lookup(name)
		if !ok {
			cli.printUnknown(name)
			return
		}
		cli.printBindingHelp(b)
	default:
		cli.Print(`Command "help" receives one or zero arguments`)
	}
}

func (c *CLI) printBindingSummary(b Binding) {
	c.Print(" * " + c.styled(styleName, b.Name))
	c.printBindingDetails(b)
}

func (c *CLI) printBindingHelp(b Binding) {
	c.Print(c.styled(styleName, b.Name))
	if b.Usage == "" && b.Help == "" {
		c.Print("\tHelp is not available")
		return
	}
	c.printBindingDetails(b)
}

func (c *CLI) printBindingDetails(b Binding) {
	if b.Usage != "" {
		c.Print("\tUsage: " + c.styled(styleUsage, b.Usage))
	}
	if b.Help == "" {
		return
	}
	for _, line := range strings.Split(b.Help, "\n") {
		c.Print("\t" + strings.TrimSuffix(line, "\r"))
	}
}

// PrintCurrentHelp prints the help of the binding whose callback is running.
// Outside of a binding callback it prints nothing.
func (c *CLI) PrintCurrentHelp() {
	if c.current == nil {
		return
	}
	c.printBindingHelp(*c.current)
}

// SwitchToCommandEntry makes the named binding the current one, so a
// following PrintCurrentHelp describes it, and returns its callback for the
// caller to invoke. It reports false when the name is unbound.
func (c *CLI) SwitchToCommandEntry(name string) (BindingFunc, bool) {
	b, _, ok := c.bindings.Lookup(name)
	if !ok || b.Func == nil {
		return nil, false
	}
	c.current = &b
	return b.Func, true
}
