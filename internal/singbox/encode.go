package singbox

import (
	"encoding/json"

	"boxlink/internal/singbox/option"
)

// Encode renders cfg as the indented JSON document the runtime loads.
func Encode(cfg *option.Config) ([]byte, error) {
	return json.MarshalIndent(cfg, "", "  ")
}
