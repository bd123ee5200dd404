package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func relPaths(files []Candidate) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.RelPath)
	}
	return out
}

func TestDiscover_Symlinks(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	target := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(target, "linked.sh"), []byte("ls\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "own.sh"), []byte("ls\n"), 0o644))
	if err := os.Symlink(target, filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(root, "gone"), filepath.Join(root, "broken.sh")))

	files, err := Discover(context.Background(), Options{WorkingDir: root}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"own.sh"}, relPaths(files), "directory links are not followed by default")

	files, err = Discover(context.Background(), Options{WorkingDir: root, FollowSymlinks: true}, nil)
	require.NoError(t, err)
	abs := make([]string, 0, len(files))
	for _, f := range files {
		abs = append(abs, f.AbsPath)
	}
	assert.ElementsMatch(t, []string{filepath.Join(root, "own.sh"), filepath.Join(target, "linked.sh")}, abs)
}

func TestDiscover_Recognizer(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, name := range []string{"a.keep", "b.drop"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), nil, 0o644))
	}

	files, err := Discover(context.Background(), Options{WorkingDir: root}, func(rel string) bool {
		return filepath.Ext(rel) == ".keep"
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.keep"}, relPaths(files))
}

func TestMatchAny(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{pattern: "**/vendor/**", path: "vendor/x.sh", want: true},
		{pattern: "**/vendor/**", path: "a/vendor/b.sh", want: true},
		{pattern: "*.sh", path: "deep/dir/x.sh", want: true},
		{pattern: "deploy/*.yml", path: "deploy/a.yml", want: true},
		{pattern: "deploy/*.yml", path: "deploy/sub/a.yml", want: false},
		{pattern: "[", path: "x", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.path, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, matchAny([]string{tt.pattern}, tt.path))
		})
	}
}
