package embeddedcli

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// palette holds the styles used when Config.ColorOutput is set. Output goes to
// arbitrary transports, so the profile is pinned to basic ANSI instead of
// being detected from the local terminal.
type palette struct {
	invitation lipgloss.Style
	name       lipgloss.Style
	usage      lipgloss.Style
	live       lipgloss.Style
	errorText  lipgloss.Style
}

func newPalette() *palette {
	r := lipgloss.NewRenderer(io.Discard, termenv.WithProfile(termenv.ANSI))
	r.SetColorProfile(termenv.ANSI)

	return &palette{
		invitation: r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		name:       r.NewStyle().Foreground(lipgloss.Color("6")).Bold(true),
		usage:      r.NewStyle().Foreground(lipgloss.Color("3")),
		live:       r.NewStyle().Foreground(lipgloss.Color("8")),
		errorText:  r.NewStyle().Foreground(lipgloss.Color("1")),
	}
}

type styleKind int

const (
	styleInvitation styleKind = iota
	styleName
	styleUsage
	styleLive
	styleError
)

// styled renders s with the given style, or returns it unchanged when color
// output is off.
func (c *CLI) styled(kind styleKind, s string) string {
	if c.palette == nil || s == "" {
		return s
	}
	switch kind {
	case styleInvitation:
		return c.palette.invitation.Render(s)
	case styleName:
		return c.palette.name.Render(s)
	case styleUsage:
		return c.palette.usage.Render(s)
	case styleLive:
		return c.palette.live.Render(s)
	case styleError:
		return c.palette.errorText.Render(s)
	}
	return s
}
