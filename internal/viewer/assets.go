package viewer

import "embed"

// assets embeds the page shell served at /.
//
//go:embed assets/index.html
var assets embed.FS
