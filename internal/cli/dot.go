package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmalbrecht/histvet/pkg/commit"
	"github.com/jmalbrecht/histvet/pkg/dag"
	"github.com/jmalbrecht/histvet/pkg/errors"
	histio "github.com/jmalbrecht/histvet/pkg/io"
	"github.com/jmalbrecht/histvet/pkg/render"
)

// dotOpts holds the command-line flags for the dot command.
type dotOpts struct {
	output string // output path; stdout if empty
	policy string // dangling-parent policy
	rankLR bool   // left-to-right layout
}

// dotCommand creates the dot command: export a commit graph as Graphviz
// DOT, or as SVG when the output path ends in .svg. Useful for eyeballing
// a rejected history.
func (c *CLI) dotCommand() *cobra.Command {
	opts := dotOpts{policy: "implicit"}

	cmd := &cobra.Command{
		Use:   "dot <commit-log>",
		Short: "Export a commit graph as DOT or SVG",
		Long: `Export a commit graph in Graphviz DOT format.

With -o graph.svg the DOT is rendered to SVG directly. Implicit nodes
(parents referenced but never declared) are drawn dashed.

Examples:
  histvet dot history.json
  histvet dot history.json -o history.svg
  histvet dot --rank-lr history.ndjson -o wide.dot`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDot(args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&opts.policy, "policy", opts.policy, "dangling-parent policy: implicit or strict")
	cmd.Flags().BoolVar(&opts.rankLR, "rank-lr", false, "lay the graph out left-to-right")

	return cmd
}

func (c *CLI) runDot(path string, opts dotOpts) error {
	policy, err := dag.ParsePolicy(opts.policy)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPolicy, err, "policy")
	}

	decls, err := histio.ImportFile(path)
	if err != nil {
		return err
	}
	g, err := dag.FromHistory(commit.FromDeclarations(decls), policy)
	if err != nil {
		return err
	}
	c.Logger.Debug("built graph", "nodes", g.NodeCount(), "edges", g.EdgeCount())

	dot := render.ToDOT(g, render.Options{RankLR: opts.rankLR})

	if opts.output == "" {
		fmt.Print(dot)
		return nil
	}

	out := []byte(dot)
	switch ext := strings.ToLower(filepath.Ext(opts.output)); ext {
	case ".dot", ".gv":
	case ".svg":
		out, err = render.RenderSVG(dot)
		if err != nil {
			return err
		}
	default:
		return errors.New(errors.ErrCodeUnsupported, "unsupported output format %q (use .dot, .gv, or .svg)", ext)
	}
	if err := os.WriteFile(opts.output, out, 0644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printFile(opts.output)
	return nil
}
