package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ziadkadry99/flinsight/internal/config"
)

var (
	initForce    bool
	initDefaults bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a flinsight configuration file",
	Long: `Asks for the model providers, index and storage backends and the priority aircraft,
then writes flinsight.yml (or the --config path). With --defaults, or when stdin is not a
terminal, the default settings are written without prompting. API keys are read from the
environment and are never written.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(cfgFile); err == nil && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", cfgFile)
		}

		var prompter config.Prompter
		if !initDefaults && term.IsTerminal(int(os.Stdin.Fd())) {
			prompter = config.TerminalPrompter{}
		}
		return writeInitConfig(cmd.OutOrStdout(), cfgFile, prompter)
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
	initCmd.Flags().BoolVar(&initDefaults, "defaults", false, "write the default settings without prompting")
	rootCmd.AddCommand(initCmd)
}

// writeInitConfig saves the wizard's answers, or the defaults when p is nil,
// and names the environment variables still to be set.
func writeInitConfig(w io.Writer, path string, p config.Prompter) error {
	cfg := config.DefaultConfig()
	if p != nil {
		var err error
		if cfg, err = config.RunWizard(p); err != nil {
			return err
		}
	}
	if err := cfg.Save(path); err != nil {
		return err
	}
	fmt.Fprintf(w, "Wrote %s\n", path)

	seen := map[string]bool{}
	for _, provider := range []config.ProviderType{cfg.LLM.Provider, cfg.Embedding.Provider} {
		env := config.APIKeyEnvVar(provider)
		if env != "" && !seen[env] && os.Getenv(env) == "" {
			seen[env] = true
			fmt.Fprintf(w, "Set %s before running `flinsight serve`.\n", env)
		}
	}
	if config.WeatherAPIKey() == "" {
		fmt.Fprintln(w, "Set METAR_API_KEY for live weather.")
	}
	return nil
}
