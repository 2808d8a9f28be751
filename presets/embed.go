package presets

import (
	"embed"
)

// FS provides embedded default session presets for external usage.
//
//go:embed *.yaml
var FS embed.FS
