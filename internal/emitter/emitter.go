// Package emitter writes rendered target files under an output directory.
package emitter

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Options controls where and how files are written.
type Options struct {
	OutDir string // required; target directory
	Force  bool   // write into a non-empty directory
	DryRun bool   // don't write, only plan
}

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	RelPath string
	Size    int
	Mode    os.FileMode
}

// Result returns the resolved output directory and the planned files in
// path order.
type Result struct {
	OutDir  string
	Planned []PlannedFile
}

const fileMode os.FileMode = 0o644

// Emit plans files, keyed by slash-separated relative path, and writes them
// under opts.OutDir unless opts.DryRun is set.
func Emit(ctx context.Context, files map[string]string, opts Options) (*Result, error) {
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("emitter: OutDir is required")
	}
	abs, err := filepath.Abs(opts.OutDir)
	if err != nil {
		return nil, fmt.Errorf("resolve out dir: %w", err)
	}

	rels := make([]string, 0, len(files))
	for rel := range files {
		if err := checkRelPath(rel); err != nil {
			return nil, err
		}
		rels = append(rels, rel)
	}
	sort.Strings(rels)

	planned := make([]PlannedFile, 0, len(rels))
	for _, rel := range rels {
		planned = append(planned, PlannedFile{RelPath: rel, Size: len(files[rel]), Mode: fileMode})
	}
	res := &Result{OutDir: abs, Planned: planned}
	if opts.DryRun {
		return res, nil
	}

	if st, err := os.Stat(abs); err == nil && st.IsDir() && !opts.Force {
		entries, rerr := os.ReadDir(abs)
		if rerr == nil && len(entries) > 0 {
			return nil, fmt.Errorf("emitter: output directory %q is not empty (use --force to overwrite)", abs)
		}
	}
	for _, rel := range rels {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := writeAtomic(filepath.Join(abs, filepath.FromSlash(rel)), []byte(files[rel])); err != nil {
			return nil, fmt.Errorf("write %s: %w", rel, err)
		}
	}
	return res, nil
}

func checkRelPath(rel string) error {
	clean := path.Clean(rel)
	if rel == "" || path.IsAbs(rel) || filepath.IsAbs(rel) || clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("emitter: invalid relative path %q", rel)
	}
	return nil
}

// writeAtomic writes content to a temp file next to p and renames it into
// place.
func writeAtomic(p string, content []byte) error {
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(p)+".tmp-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Chmod(name, fileMode); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, p); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}
