package workspace

import (
	ignore "github.com/sabhiram/go-gitignore"
)

// ScratchIgnore compiles the patterns that mark a path as workspace
// bookkeeping rather than repository content: the scratch subdirectory
// and any nested state directory. Nothing in loom calls it;
// Commit keeps the same two directories out of every commit with
// ":(exclude)" pathspecs (see excludePathspecs), not with this matcher.
func ScratchIgnore() *ignore.GitIgnore {
	return ignore.CompileIgnoreLines(
		ScratchDirName,
		ScratchDirName+"/**",
		StateDirName,
		StateDirName+"/**",
	)
}
