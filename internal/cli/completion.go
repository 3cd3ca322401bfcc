package cli

import "github.com/spf13/cobra"

// completionCommand creates the completion command.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for seamless.

To load completions:

Bash:
  $ source <(seamless completion bash)

  # Load for every session (Linux):
  $ seamless completion bash > /etc/bash_completion.d/seamless

Zsh:
  $ seamless completion zsh > "${fpath[1]}/_seamless"
  # compinit must be enabled in ~/.zshrc; start a new shell afterwards.

Fish:
  $ seamless completion fish | source

  # To load completions for each session, execute once:
  $ seamless completion fish > ~/.config/fish/completions/seamless.fish

PowerShell:
  PS> seamless completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> seamless completion powershell > seamless.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}
