package publishers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"

	"boxlink/internal/store"
)

const DefaultExportName = "NotePadVPN_SingBox_Config"

// ExportFileName returns the file name a document is exported under.
func ExportFileName(name string) string {
	clean, err := store.SanitizeName(name)
	if err != nil {
		clean = DefaultExportName
	}
	return clean + ".json"
}

// Payload renders doc for a publisher. "compact" strips indentation and
// "base64" encodes the result, for clients that import remote profiles.
func Payload(doc []byte, config map[string]interface{}) ([]byte, error) {
	out := doc
	if BoolParam(config, "compact") {
		var buf bytes.Buffer
		if err := json.Compact(&buf, doc); err != nil {
			return nil, fmt.Errorf("document is not valid json: %w", err)
		}
		out = buf.Bytes()
	}

	if BoolParam(config, "base64") {
		return []byte(base64.StdEncoding.EncodeToString(out)), nil
	}
	return out, nil
}

// BoolParam accepts a yaml bool or a string flag passed with --param.
func BoolParam(config map[string]interface{}, key string) bool {
	switch v := config[key].(type) {
	case bool:
		return v
	case int:
		return v != 0
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}
