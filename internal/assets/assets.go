// Package assets embeds loom's built-in prompt descriptors, mirroring
// the teacher's internal/assets embed-FS pattern (referenced from
// internal/cli/init.go's assets.Skills).
package assets

import "embed"

//go:embed prompts
var Prompts embed.FS
