// Package wallfade holds the build metadata and default configuration shared
// by the wallfade commands.
package wallfade

import _ "embed"

//go:embed VERSION
var Version string

//go:embed wallfade.toml
var DefaultConfig string
