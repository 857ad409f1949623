package main

import (
	"os"

	"boxlink/internal/config"
	"boxlink/internal/logger"

	"github.com/spf13/cobra"
)

var publishParams map[string]string

var publishCmd = &cobra.Command{
	Use:   "publish NAME [publisher_names...]",
	Short: "Publish a saved config",
	Long:  `Run all publishers or specific ones on a saved config. Use --param to override publisher configuration.`,
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			logger.Log.Fatalf("Error loading config: %v", err)
		}

		name := args[0]
		if len(args) > 1 {
			cfg.FilterPublishers(args[1:])
		}
		if len(cfg.Publishers) == 0 {
			logger.Log.Warn("No publishers matched.")
			return
		}
		applyParams(cfg, publishParams)

		st, closeDB := openStore(cfg)
		doc, err := st.Load(name)
		closeDB()
		if err != nil {
			exitStoreErr(err)
		}

		if failed := runPublishers(cfg, name, doc); failed > 0 {
			logger.Log.Errorf("%d publisher(s) failed", failed)
			logger.Sync()
			os.Exit(1)
		}
	},
}

func init() {
	publishCmd.Flags().StringToStringVarP(&publishParams, "param", "p", nil, "Override publisher params (e.g. -p dir=./out)")
	rootCmd.AddCommand(publishCmd)
}
