// Package appfs embeds runtime assets so binaries ship self-contained.
package appfs

import "embed"

//go:embed migrations
var FS embed.FS
