package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for wip.

To load completions:

Bash:
  $ source <(wip completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ wip completion bash > /etc/bash_completion.d/wip
  # macOS:
  $ wip completion bash > $(brew --prefix)/etc/bash_completion.d/wip

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ wip completion zsh > "${fpath[1]}/_wip"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ wip completion fish | source

  # To load completions for each session, execute once:
  $ wip completion fish > ~/.config/fish/completions/wip.fish

PowerShell:
  PS> wip completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> wip completion powershell > wip.ps1
  # and source this file from your PowerShell profile.
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
