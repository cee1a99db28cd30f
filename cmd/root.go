package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/abhisek/proctor/internal/config"
)

// v collects flag overrides; config.Load layers env, file and defaults under it.
var v = config.NewViper()

var rootCmd = &cobra.Command{
	Use:   "proctor",
	Short: "Timed answer-sheet tests with instant grading",
	Long: "Proctor runs timed tests against a bank of answer keys. Students take a test\n" +
		"in the terminal or through a Telegram bot and get graded results, history\n" +
		"and achievements.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTerminal(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to a config file (default ./proctor.yaml if present)")
	pf.String("data-dir", "", "Directory holding tests/, pdfs/ and stats/")
	pf.String("store", "", "History store driver: file, sqlite or postgres")
	pf.String("log-level", "", "Log level: debug, info, warn or error")

	bindFlag(v, "data_dir", "data-dir")
	bindFlag(v, "store.driver", "store")
	bindFlag(v, "log.level", "log-level")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(botCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(testsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}

func bindFlag(v *viper.Viper, key, flag string) {
	if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

// loadConfig resolves configuration for cmd, honoring --config.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(v, path)
}
