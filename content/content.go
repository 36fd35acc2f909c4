// Package content embeds the default game catalogs.
package content

import "embed"

// FS holds the default catalog YAML files. A configured content directory
// with the same file names replaces it.
//
//go:embed *.yaml
var FS embed.FS
