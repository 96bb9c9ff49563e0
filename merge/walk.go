package merge

import (
	"os"
	"path/filepath"
)

// WalkOptions controls Walk.
type WalkOptions struct {
	// SkipDirs holds directory base names that are not entered.
	SkipDirs map[string]bool
	// SkipPaths holds directories that are not entered, whatever their name.
	SkipPaths []string
	// OnWarn receives unreadable directories and skipped symlink cycles.
	OnWarn func(format string, args ...any)
	// Visited holds the real paths of directories already entered. Sharing
	// one set between calls keeps overlapping roots from being walked twice.
	Visited map[string]bool
}

func (o WalkOptions) warn(format string, args ...any) {
	if o.OnWarn != nil {
		o.OnWarn(format, args...)
	}
}

// DefaultSkipDirs are never entered.
var DefaultSkipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
}

// Walk visits every regular file below root, depth first, calling visit
// with its path. Pending directories are kept on an explicit stack.
// Symlinked directories are followed, but each real directory is entered
// only once. An unreadable directory counts as empty.
func Walk(root string, opts WalkOptions, visit func(path string)) {
	visited := opts.Visited
	if visited == nil {
		visited = make(map[string]bool)
	}
	skipped := make(map[string]bool, len(opts.SkipPaths))
	for _, p := range opts.SkipPaths {
		if real, err := realPath(p); err == nil {
			skipped[real] = true
		}
	}
	stack := []string{root}

	for len(stack) > 0 {
		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		real, err := realPath(dir)
		if err != nil {
			opts.warn("cannot resolve %s: %v", dir, err)
			continue
		}
		if skipped[real] {
			continue
		}
		if visited[real] {
			opts.warn("skipping %s: already visited as %s", dir, real)
			continue
		}
		visited[real] = true

		entries, err := os.ReadDir(dir)
		if err != nil {
			opts.warn("cannot read directory %s: %v", dir, err)
			continue
		}

		var subdirs []string
		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())

			// DirEntry does not follow symlinks; Stat does.
			info, err := os.Stat(path)
			if err != nil {
				opts.warn("cannot stat %s: %v", path, err)
				continue
			}

			switch {
			case info.IsDir():
				if opts.SkipDirs[entry.Name()] {
					continue
				}
				subdirs = append(subdirs, path)
			case info.Mode().IsRegular():
				visit(path)
			}
		}

		// Push in reverse so subdirectories pop in name order.
		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, subdirs[i])
		}
	}
}

// realPath resolves symlinks and returns an absolute path.
func realPath(p string) (string, error) {
	r, err := filepath.EvalSymlinks(p)
	if err != nil {
		return "", err
	}
	return filepath.Abs(r)
}
