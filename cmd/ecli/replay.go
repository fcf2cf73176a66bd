package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"embeddedcli/internal/app"
	"embeddedcli/internal/manifest"
	"embeddedcli/internal/replay"
	"embeddedcli/pkg/embeddedcli"
)

// errReplayFailed is returned when at least one case did not match.
var errReplayFailed = errors.New("replay failed")

var (
	passStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

func runReplay(cmd *cobra.Command, v *viper.Viper, opts *options, path string) error {
	settings, m, err := loadSettings(v, opts)
	if err != nil {
		return err
	}
	tr, err := replay.LoadTranscript(path)
	if err != nil {
		return err
	}

	results, err := replay.NewRunner(settings.EngineConfig(), demoSetup(m)).Run(tr)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, res := range results {
		if res.Passed {
			fmt.Fprintf(out, "%s %s\n", passStyle.Render("PASS"), res.Name)
			continue
		}
		failed++
		fmt.Fprintf(out, "%s %s\n%s", failStyle.Render("FAIL"), res.Name, replay.Diff(res.Expected, res.Actual))
	}
	fmt.Fprintf(out, "%d/%d cases passed\n", len(results)-failed, len(results))
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d cases in %s", errReplayFailed, failed, len(results), tr.Name)
	}
	return nil
}

// demoSetup gives every replayed case its own application state, so PWM
// changes made by one case do not leak into the next.
func demoSetup(m *manifest.Manifest) replay.SetupFunc {
	return func(cli *embeddedcli.CLI) error {
		a, err := app.New(m)
		if err != nil {
			return err
		}
		return a.Setup(cli)
	}
}
