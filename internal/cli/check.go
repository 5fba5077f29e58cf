package cli

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmalbrecht/histvet/pkg/errors"
	"github.com/jmalbrecht/histvet/pkg/pipeline"
	"github.com/jmalbrecht/histvet/pkg/store"
)

// ErrCyclic is returned by the check command when the history fails the
// DAG invariant. The verdict has already been printed; main maps this to
// exit code 1 without a second message.
var ErrCyclic = stderrors.New("history contains a cycle")

// checkOpts holds the command-line flags for the check command.
type checkOpts struct {
	policy  string // dangling-parent policy: implicit or strict
	noCache bool   // disable the verdict cache
	refresh bool   // bypass cache reads, still write fresh verdicts
	report  bool   // print a validation report as JSON
	quiet   bool   // suppress styled output, rely on exit code only
}

// checkCommand creates the check command: validate that a commit log
// forms a DAG.
//
// Exit codes: 0 for an acyclic history, 1 for a cyclic history or any
// error (malformed input, strict-policy dangling parent).
func (c *CLI) checkCommand() *cobra.Command {
	opts := checkOpts{policy: "implicit"}

	cmd := &cobra.Command{
		Use:   "check <commit-log>",
		Short: "Validate that a commit log forms a DAG",
		Long: `Validate that a commit log forms a directed acyclic graph.

The input is a JSON file ({"commits": [{"id": ..., "parents": [...]}]})
or an NDJSON file (one commit object per line; .ndjson or .jsonl
extension). Duplicate declarations are resolved last-write-wins before
the check.

Parent references to commits absent from the file are allowed by default
(they become boundary nodes, as after a shallow clone). Pass
--policy strict to reject such references instead.

Examples:
  histvet check history.json
  histvet check --policy strict ingest.ndjson
  histvet check --report --quiet history.json | jq .acyclic`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCheck(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.policy, "policy", opts.policy, "dangling-parent policy: implicit or strict")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the verdict cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if a cached verdict exists")
	cmd.Flags().BoolVar(&opts.report, "report", false, "print a validation report as JSON")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "no styled output, exit code only")

	return cmd
}

func (c *CLI) runCheck(cmd *cobra.Command, path string, opts checkOpts) error {
	var st store.Store
	if opts.report {
		st = store.NewMemoryStore()
	}
	runner := c.newRunner(opts.noCache, st)

	var spin *spinner
	if !opts.quiet && isTerminal(os.Stderr) {
		spin = newSpinner(cmd.Context(), "checking history")
		spin.start()
	}

	prog := newProgress(c.Logger)
	result, err := runner.Execute(cmd.Context(), pipeline.Options{
		Path:    path,
		Policy:  opts.policy,
		Refresh: opts.refresh,
		Persist: opts.report,
	})
	if spin != nil {
		spin.stop()
	}
	if err != nil {
		if !opts.quiet {
			printError("%s", errors.UserMessage(err))
		}
		return err
	}
	prog.done(fmt.Sprintf("Checked %d commits", result.Stats.Nodes))

	if opts.report && result.Report != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result.Report); err != nil {
			return err
		}
	} else if !opts.quiet {
		printVerdict(result)
	}

	if !result.Acyclic {
		return ErrCyclic
	}
	return nil
}

// printVerdict renders the final verdict line plus a stats line.
func printVerdict(result *pipeline.Result) {
	if result.Acyclic {
		fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + StyleValid.Render("ACYCLIC") + StyleDim.Render(" - history is a valid DAG"))
	} else {
		fmt.Println(styleIconError.Render(iconError) + " " + StyleInvalid.Render("CYCLIC") + StyleDim.Render(" - parent links loop back on themselves"))
	}
	printStats(result.Stats.Nodes, result.Stats.Edges, result.CacheInfo.CheckHit)
}

// isTerminal reports whether f is attached to a terminal, so spinners do
// not corrupt redirected output.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
