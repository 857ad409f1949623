package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"boxlink/internal/config"
	"boxlink/internal/db"
	"boxlink/internal/logger"
	"boxlink/internal/publishers"
	"boxlink/internal/store"
)

// readInput concatenates the named files, or stdin when none (or "-") is given.
func readInput(args []string) (string, error) {
	if len(args) == 0 {
		args = []string{"-"}
	}
	var sb strings.Builder
	for _, name := range args {
		var data []byte
		var err error
		if name == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(name)
		}
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", name, err)
		}
		sb.Write(data)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

// openStore connects and migrates the database. The returned func closes it.
func openStore(cfg *config.Config) (*store.GormStore, func()) {
	database, err := db.Connect(cfg.Database.Path)
	if err != nil {
		logger.Log.Fatalf("Error connecting to DB: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		logger.Log.Fatalf("Error migrating DB: %v", err)
	}
	return store.NewGormStore(database), func() { db.Close(database) }
}

// applyParams merges -p overrides into every publisher, numbers as ints.
func applyParams(cfg *config.Config, overrides map[string]string) {
	for i := range cfg.Publishers {
		if cfg.Publishers[i].Params == nil {
			cfg.Publishers[i].Params = make(map[string]interface{})
		}
		for k, v := range overrides {
			if intVal, err := strconv.Atoi(v); err == nil {
				cfg.Publishers[i].Params[k] = intVal
			} else {
				cfg.Publishers[i].Params[k] = v
			}
		}
	}
}

// runPublishers sends doc to every configured publisher and returns how many
// of them failed.
func runPublishers(cfg *config.Config, name string, doc []byte) int {
	failed := 0
	for _, pubCfg := range cfg.Publishers {
		logger.Log.Infof("📨 Running Publisher: %s (%s)...", pubCfg.Name, pubCfg.Type)

		plugin, err := publishers.Get(pubCfg.Type)
		if err != nil {
			logger.Log.Warnf("Plugin not found: %v", err)
			failed++
			continue
		}
		if pubCfg.Params == nil {
			pubCfg.Params = make(map[string]interface{})
		}
		if cfg.Subscription.Proxy != "" {
			pubCfg.Params["_proxy_url"] = cfg.Subscription.Proxy
		}

		if err := plugin.Publish(name, doc, pubCfg.Params); err != nil {
			logger.Log.Errorf("Publish failed: %v", err)
			failed++
		} else {
			logger.Log.Info("✅ Published successfully.")
		}
	}
	return failed
}
