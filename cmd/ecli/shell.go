package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"embeddedcli/internal/app"
	"embeddedcli/internal/logger"
	"embeddedcli/internal/transport"
	"embeddedcli/internal/version"
	"embeddedcli/pkg/embeddedcli"
)

// txQueueSize is the output batch flushed to the terminal on every tick.
const txQueueSize = 256

func runShell(cmd *cobra.Command, v *viper.Viper, opts *options) error {
	settings, m, err := loadSettings(v, opts)
	if err != nil {
		return err
	}
	a, err := app.New(m)
	if err != nil {
		return err
	}

	cli, err := embeddedcli.New(settings.EngineConfig())
	if err != nil {
		return err
	}
	defer cli.Close()

	tx := transport.NewTxQueue(cmd.OutOrStdout(), txQueueSize)
	cli.SetWriter(tx)
	if err := a.Setup(cli); err != nil {
		return err
	}

	logger.Info("Starting ecli", "version", version.Version, "instance", cli.ID(), "manifest", m.Name)

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		state, err := term.MakeRaw(int(f.Fd()))
		if err != nil {
			return err
		}
		defer func() {
			if err := term.Restore(int(f.Fd()), state); err != nil {
				logger.Error("Failed to restore terminal", "error", err)
			}
		}()
	}

	return serve(cmd.Context(), in, cli, tx, a, settings.Tick)
}

// serve runs the consumer loop: the pump goroutine is the only producer,
// and Process, the PWM runner and the output flush all happen here.
func serve(ctx context.Context, in io.Reader, cli *embeddedcli.CLI, tx *transport.TxQueue, a *app.App, tick time.Duration) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pumpDone := make(chan error, 1)
	go func() {
		pumpDone <- transport.Pump(ctx, in, cli, 0)
	}()

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	var pwm <-chan time.Time
	if rf := a.Bank().RunnerFreq(); rf > 0 && len(a.Bank().Channels()) > 0 {
		pwmTicker := time.NewTicker(time.Second / time.Duration(rf))
		defer pwmTicker.Stop()
		pwm = pwmTicker.C
	}

	step := func() error {
		cli.Process()
		return tx.Flush()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-a.Done():
			return step()
		case err := <-pumpDone:
			// Input ended: handle what is still queued, then stop.
			if flushErr := step(); flushErr != nil {
				return flushErr
			}
			logger.Debug("Input closed", "error", err)
			return err
		case <-pwm:
			a.Tick()
		case <-ticker.C:
			if err := step(); err != nil {
				return err
			}
		}
	}
}
