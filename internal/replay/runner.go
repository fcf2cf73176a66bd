package replay

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"embeddedcli/internal/logger"
	"embeddedcli/pkg/embeddedcli"
)

// SetupFunc prepares a fresh engine before a case runs, typically by
// registering bindings.
type SetupFunc func(cli *embeddedcli.CLI) error

// Result is the outcome of one case.
type Result struct {
	Name     string
	Expected string
	Actual   string
	Passed   bool
}

// Runner replays transcripts.
type Runner struct {
	Base  embeddedcli.Config
	Setup SetupFunc
}

// NewRunner creates a runner that builds engines from base and prepares them
// with setup, which may be nil.
func NewRunner(base embeddedcli.Config, setup SetupFunc) *Runner {
	return &Runner{Base: base, Setup: setup}
}

// Run replays every case of tr on its own engine.
func (r *Runner) Run(tr *Transcript) ([]Result, error) {
	cfg := tr.Config.Apply(r.Base)
	results := make([]Result, 0, len(tr.Cases))
	for _, c := range tr.Cases {
		res, err := r.runCase(cfg, c)
		if err != nil {
			return results, fmt.Errorf("case %q: %w", c.Name, err)
		}
		logger.Debug("Replay case finished", "transcript", tr.Name, "case", c.Name, "passed", res.Passed)
		results = append(results, res)
	}
	return results, nil
}

func (r *Runner) runCase(cfg embeddedcli.Config, c Case) (Result, error) {
	cli, err := embeddedcli.New(cfg)
	if err != nil {
		return Result{}, err
	}
	defer cli.Close()

	var screen bytes.Buffer
	cli.SetWriter(&screen)
	if r.Setup != nil {
		if err := r.Setup(cli); err != nil {
			return Result{}, fmt.Errorf("setup failed: %w", err)
		}
	}

	feed(cli, []byte(c.Input))
	actual := Render(screen.String())
	expected := normalize(c.Expect)
	return Result{
		Name:     c.Name,
		Expected: expected,
		Actual:   actual,
		Passed:   actual == expected,
	}, nil
}

// feed types input into the engine, processing whenever the receive queue
// is full.
func feed(cli *embeddedcli.CLI, input []byte) {
	cli.Process()
	for len(input) > 0 {
		n := cli.ReceiveBuffer(input)
		cli.Process()
		if n == 0 {
			return
		}
		input = input[n:]
	}
}

// Diff describes how actual differs from expected, one changed fragment per
// line. Unchanged fragments are shortened.
func Diff(expected, actual string) string {
	if expected == actual {
		return ""
	}

	var sb strings.Builder
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(expected, actual, false))
	for _, diff := range diffs {
		switch diff.Type {
		case diffmatchpatch.DiffDelete:
			fmt.Fprintf(&sb, "- %q\n", diff.Text)
		case diffmatchpatch.DiffInsert:
			fmt.Fprintf(&sb, "+ %q\n", diff.Text)
		case diffmatchpatch.DiffEqual:
			if len(diff.Text) > 50 {
				fmt.Fprintf(&sb, "  %q...\n", diff.Text[:47])
			} else {
				fmt.Fprintf(&sb, "  %q\n", diff.Text)
			}
		}
	}
	return sb.String()
}
