package cmd

import (
	"github.com/spf13/cobra"
)

// completionCmd represents the completion command.
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for remindly.

To load completions:

Bash:
  $ source <(remindly completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ remindly completion bash > /etc/bash_completion.d/remindly
  # macOS:
  $ remindly completion bash > $(brew --prefix)/etc/bash_completion.d/remindly

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ remindly completion zsh > "${fpath[1]}/_remindly"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ remindly completion fish | source

  # To load completions for each session, execute once:
  $ remindly completion fish > ~/.config/fish/completions/remindly.fish

PowerShell:
  PS> remindly completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletionV2(out, true)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
