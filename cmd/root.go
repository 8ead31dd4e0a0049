package cmd

import (
	"github.com/jsphweid/topliner/config"
	"github.com/jsphweid/topliner/constants"
	"github.com/jsphweid/topliner/logging"
	"github.com/spf13/cobra"
)

var (
	configPath string
	cfg        = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "topliner",
	Short: "Keeps the top note of whatever you play",
	Long: `topliner collapses overlapping notes into a single monophonic line.
Chords are held back for a short window so the highest note of a rolled
chord wins, and afterwards only a higher note can take over.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath, cmd.Flags().Changed("config"))
		if err != nil {
			return err
		}
		cfg = loaded
		logging.Init("topliner", cfg.LogLevel)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", constants.GetConfigPath(), "path to a TOML config file")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
