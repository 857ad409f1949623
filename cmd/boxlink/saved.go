package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"boxlink/internal/config"
	"boxlink/internal/logger"
	"boxlink/internal/store"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var savedCmd = &cobra.Command{
	Use:   "saved",
	Short: "Manage saved configs",
}

var savedListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved configs, newest first",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		st, closeDB := loadStore()
		defer closeDB()

		rows, err := st.List()
		if err != nil {
			logger.Log.Fatalf("Error listing configs: %v", err)
		}
		if len(rows) == 0 {
			fmt.Println("(No saved configs)")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tPROXIES\tFINAL\tUPDATED")
		for _, r := range rows {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", r.Name, r.ProxyCount, r.FinalTag, r.UpdatedAt.Format("2006-01-02 15:04"))
		}
		w.Flush()
	},
}

var savedShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Print a saved config",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		st, closeDB := loadStore()
		defer closeDB()

		doc, err := st.Load(args[0])
		if err != nil {
			exitStoreErr(err)
		}
		os.Stdout.Write(doc)
		fmt.Println()
	},
}

var savedDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a saved config",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		st, closeDB := loadStore()
		defer closeDB()

		if err := st.Delete(args[0]); err != nil {
			exitStoreErr(err)
		}
		logger.Log.Infof("🗑️  Deleted %q", args[0])
	},
}

var savedSaveCmd = &cobra.Command{
	Use:   "save [NAME] FILE",
	Short: "Store an existing config file, prompting for a name when omitted",
	Args:  cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		var name, path string
		if len(args) == 2 {
			name, path = args[0], args[1]
		} else {
			path = args[0]
			name = promptName()
		}

		doc, err := os.ReadFile(path)
		if err != nil {
			logger.Log.Fatalf("Error reading %s: %v", path, err)
		}

		st, closeDB := loadStore()
		defer closeDB()

		saved, err := st.Save(name, doc)
		if err != nil {
			logger.Log.Fatalf("Error saving config: %v", err)
		}
		logger.Log.Infof("💾 Saved as %q", saved)
	},
}

func loadStore() (*store.GormStore, func()) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		logger.Log.Fatalf("Error loading config: %v", err)
	}
	return openStore(cfg)
}

func exitStoreErr(err error) {
	if errors.Is(err, store.ErrNotFound) {
		logger.Log.Errorf("%v", err)
		logger.Sync()
		os.Exit(1)
	}
	logger.Log.Fatalf("Store error: %v", err)
}

// promptName asks for a config name, defaulting to a timestamped one. When
// stdin is not interactive the default is used as is.
func promptName() string {
	def := store.DefaultName(time.Now())
	prompt := promptui.Prompt{
		Label:   "Config name",
		Default: def,
		Validate: func(input string) error {
			_, err := store.SanitizeName(input)
			return err
		},
	}
	result, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) {
			logger.Log.Fatal("Save cancelled.")
		}
		logger.Log.Debugf("Prompt unavailable (%v), using %s", err, def)
		return def
	}
	return result
}

func init() {
	savedCmd.AddCommand(savedListCmd, savedShowCmd, savedDeleteCmd, savedSaveCmd)
	rootCmd.AddCommand(savedCmd)
}
