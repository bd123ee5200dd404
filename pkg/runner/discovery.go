package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// vcsDirs are never walked. Other dot-directories are, since .github and
// .gitlab hold analyzable files.
//
//nolint:gochecknoglobals // Read-only lookup table.
var vcsDirs = []string{".git", ".hg", ".svn"}

// Candidate is a discovered file.
type Candidate struct {
	// AbsPath is the cleaned absolute path.
	AbsPath string

	// RelPath is AbsPath relative to the working directory, slash-separated.
	RelPath string
}

// Recognizer reports whether a file found during a directory walk should be
// analyzed. relPath is slash-separated.
type Recognizer func(relPath string) bool

// Discover finds the files matching opts. Files named explicitly in
// opts.Paths are always kept unless excluded; files found by walking a
// directory must match opts.Extensions, or satisfy recognize when no
// extensions are set. The result is sorted by relative path.
func Discover(ctx context.Context, opts Options, recognize Recognizer) ([]Candidate, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	d := &discoverer{
		opts:      opts,
		workDir:   workDir,
		recognize: recognize,
		seen:      make(map[string]struct{}),
	}

	for _, inputPath := range opts.effectivePaths() {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("discovery cancelled: %w", ctx.Err())
		default:
		}

		absPath := inputPath
		if !filepath.IsAbs(inputPath) {
			absPath = filepath.Join(workDir, inputPath)
		}
		absPath = filepath.Clean(absPath)

		info, err := os.Stat(absPath)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", inputPath, err)
		}

		if info.IsDir() {
			if err := d.walk(ctx, absPath); err != nil {
				return nil, err
			}
			continue
		}
		if rel := d.rel(absPath); !d.excluded(rel) {
			d.add(absPath, rel)
		}
	}

	slices.SortFunc(d.files, func(a, b Candidate) int { return strings.Compare(a.RelPath, b.RelPath) })
	return d.files, nil
}

type discoverer struct {
	opts      Options
	workDir   string
	recognize Recognizer
	seen      map[string]struct{}
	files     []Candidate
}

func (d *discoverer) add(absPath, rel string) {
	if _, ok := d.seen[absPath]; ok {
		return
	}
	d.seen[absPath] = struct{}{}
	d.files = append(d.files, Candidate{AbsPath: absPath, RelPath: rel})
}

// rel returns path relative to the working directory, or the slash form of
// path itself when it lies outside.
func (d *discoverer) rel(path string) string {
	rel, err := filepath.Rel(d.workDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (d *discoverer) walk(ctx context.Context, root string) error {
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrPermission) {
				return nil
			}
			return walkErr
		}

		rel := d.rel(path)

		if entry.IsDir() {
			if path != root && (slices.Contains(vcsDirs, entry.Name()) || d.excluded(rel)) {
				return filepath.SkipDir
			}
			return nil
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			info, statErr := os.Stat(path)
			if statErr != nil {
				return nil //nolint:nilerr // broken symlinks are skipped
			}
			if info.IsDir() {
				if !d.opts.FollowSymlinks {
					return nil
				}
				target, evalErr := filepath.EvalSymlinks(path)
				if evalErr != nil {
					return nil //nolint:nilerr // unresolvable targets are skipped
				}
				// Walk the target: WalkDir uses Lstat on its root.
				return d.walk(ctx, target)
			}
		}

		if d.matches(path, rel) {
			d.add(path, rel)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk directory %s: %w", root, err)
	}
	return nil
}

// matches checks a walked file against the inclusion criteria.
func (d *discoverer) matches(path, rel string) bool {
	if d.excluded(rel) {
		return false
	}
	if len(d.opts.IncludeGlobs) > 0 && !matchAny(d.opts.IncludeGlobs, rel) {
		return false
	}
	if len(d.opts.Extensions) > 0 {
		return hasExtension(path, d.opts.Extensions)
	}
	return d.recognize == nil || d.recognize(rel)
}

func (d *discoverer) excluded(rel string) bool {
	return matchAny(d.opts.ExcludeGlobs, rel)
}

// matchAny matches rel and its base name against doublestar patterns.
func matchAny(patterns []string, rel string) bool {
	base := rel[strings.LastIndex(rel, "/")+1:]
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

func hasExtension(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// resolveWorkDir resolves the working directory, defaulting to os.Getwd().
func resolveWorkDir(workDir string) (string, error) {
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}
	absPath, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return absPath, nil
}
