package repo

import (
	"os"

	"grit/pkg/object"
)

// modeFromFileInfo maps filesystem metadata to a tree mode. Platforms
// without executable or symlink bits degrade everything to a regular file.
func modeFromFileInfo(info os.FileInfo) object.FileMode {
	if info.Mode()&os.ModeSymlink != 0 {
		return object.ModeSymlink
	}
	if info.Mode().IsRegular() && info.Mode()&0o111 != 0 {
		return object.ModeExecutable
	}
	return object.ModeRegular
}

// filePermFromMode chooses on-disk permissions when materializing a tree
// entry during checkout.
func filePermFromMode(mode object.FileMode) os.FileMode {
	if mode.IsExecutable() {
		return 0o755
	}
	return 0o644
}
