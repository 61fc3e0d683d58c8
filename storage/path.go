package storage

import (
	"strings"

	"github.com/creativeprojects/folderfix/mailbox"
)

// PathSeparator joins display names in diagnostic folder paths.
const PathSeparator = "\\"

// maximum folder depth considered when walking up to the store root
const maxPathDepth = 64

// ResolvePath walks the parent links up to the store root and returns the
// display names joined from the root down to the folder. The ascent stops
// when a folder is its own parent, which is the store's signal for the top
// of the hierarchy. Diagnostics only.
func ResolvePath(dir Directory, folder mailbox.Folder) string {
	names := make([]string, 0, 8)
	current := folder
	for depth := 0; depth < maxPathDepth; depth++ {
		if current.Name != "" {
			names = append(names, current.Name)
		}
		if current.IsRoot() {
			break
		}
		parent, err := dir.BindID(current.ParentID)
		if err != nil {
			break
		}
		current = parent
	}
	// reverse: the walk collected names from the folder up
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return PathSeparator + strings.Join(names, PathSeparator)
}
