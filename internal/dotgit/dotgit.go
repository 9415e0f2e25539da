// Package dotgit finds the root of the git repository enclosing a directory.
package dotgit

import (
	"fmt"
	"os"
	"path/filepath"

	laberrors "lab/internal/errors"
)

// Name is the entry that marks a repository root. It may be a directory
// (regular checkout) or a file (worktrees, submodules).
const Name = ".git"

// NotFoundMessage is reported when no repository encloses the start directory.
const NotFoundMessage = "current directory is not a git repository"

// Locate walks upward from startDir and returns the first directory that
// directly contains a .git entry.
//
// Parents are computed lexically from the absolute path, so the walk always
// ends at the filesystem root and never follows a symlink upward.
func Locate(startDir string) (string, error) {
	const op laberrors.Op = "dotgit.Locate"

	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", laberrors.E(op, laberrors.KindDiscovery, NotFoundMessage,
			fmt.Errorf("resolve %s: %w", startDir, err))
	}

	for {
		found, err := hasDotGit(dir)
		if err != nil {
			return "", laberrors.E(op, laberrors.KindDiscovery, NotFoundMessage, err)
		}
		if found {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", laberrors.E(op, laberrors.KindDiscovery, NotFoundMessage)
		}
		dir = parent
	}
}

// LocateCwd runs Locate from the process working directory.
func LocateCwd() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", laberrors.E(laberrors.Op("dotgit.LocateCwd"), laberrors.KindDiscovery, NotFoundMessage, err)
	}
	return Locate(cwd)
}

func hasDotGit(dir string) (bool, error) {
	_, err := os.Lstat(filepath.Join(dir, Name))
	switch {
	case err == nil:
		return true, nil
	case os.IsNotExist(err):
		return false, nil
	case os.IsPermission(err):
		// An unreadable directory cannot be the root; keep walking.
		return false, nil
	default:
		return false, fmt.Errorf("inspect %s: %w", dir, err)
	}
}
