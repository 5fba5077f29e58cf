package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for histvet.

To load completions:

Bash:
  $ source <(histvet completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ histvet completion bash > /etc/bash_completion.d/histvet
  # macOS:
  $ histvet completion bash > $(brew --prefix)/etc/bash_completion.d/histvet

Zsh:
  $ histvet completion zsh > "${fpath[1]}/_histvet"

Fish:
  $ histvet completion fish > ~/.config/fish/completions/histvet.fish

PowerShell:
  PS> histvet completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return fmt.Errorf("unsupported shell: %s", args[0])
		},
	}
}
