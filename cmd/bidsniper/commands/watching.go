package commands

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(watchingCmd)
}

var watchingCmd = &cobra.Command{
	Use:   "watching",
	Short: "Lists the items on the watch list of the user.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Flags(), flags, "")
		if err != nil {
			return err
		}
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		items, err := a.sniper.Watching(cmd.Context())
		if err != nil {
			return err
		}
		renderWatching(cmd.OutOrStdout(), items)
		return nil
	},
}
