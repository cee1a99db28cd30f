package cmd

import (
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Take tests in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("user") {
			id, _ := cmd.Flags().GetInt64("user")
			v.Set("local_user_id", id)
		}
		return runTerminal(cmd)
	},
}

func init() {
	playCmd.Flags().Int64("user", 0, "User ID to record results under (default local_user_id)")
}
