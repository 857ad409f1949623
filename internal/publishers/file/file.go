package file

import (
	"fmt"
	"os"
	"path/filepath"

	"boxlink/internal/logger"
	"boxlink/internal/publishers"
)

// Publisher writes the document to <dir>/<sanitized name>.json. A "path"
// param overrides the generated file name.
type Publisher struct{}

func (p *Publisher) Publish(name string, doc []byte, config map[string]interface{}) error {
	payload, err := publishers.Payload(doc, config)
	if err != nil {
		return err
	}

	target, _ := config["path"].(string)
	if target == "" {
		dir, _ := config["dir"].(string)
		if dir == "" {
			dir = "."
		}
		target = filepath.Join(dir, publishers.ExportFileName(name))
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	if err := os.WriteFile(target, payload, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	logger.Log.Debugf("Wrote %d bytes to %s", len(payload), target)
	return nil
}

func init() {
	publishers.Register("file", func() publishers.Publisher { return &Publisher{} })
}
