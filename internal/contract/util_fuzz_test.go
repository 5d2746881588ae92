package contract

import (
	"strings"
	"testing"
)

// FuzzShouldIgnore checks ShouldIgnore against glob, directory and suffix
// excludes. Matching never panics, an empty exclude list ignores nothing and
// adding a pattern never un-ignores a path.
func FuzzShouldIgnore(f *testing.F) {
	seeds := []struct {
		path     string
		excludes string // comma-separated
	}{
		{"src/app.js", "*.min.js"},
		{"dist/app.min.js", "*.min.js"},
		{"src/x.spec.ts", "**/*.{spec,test}.ts"},
		{"src/deep/gen/gen_types.go", "src/**/gen_*.go"},
		{"build/a.py", "[ab]*/"},
		{"lib/util.py", "[!l]*/**"},
		{"vendor/github.com/pkg/errors/errors.go", "vendor/"},
		{"web/node_modules/lodash/index.js", "node_modules/"},
		{".venv/lib/site.py", ".venv/"},
		{"third_party/zlib/inflate.c", "third_party/,*.h"},
		{"Program.cs", ".cs"},
		{"src/broken.ts", "**/[.ts"},
		{`src\win\main.cpp`, "win/"},
		{"", ""},
	}
	for _, seed := range seeds {
		f.Add(seed.path, seed.excludes)
	}

	f.Fuzz(func(t *testing.T, path string, excludesStr string) {
		excludes := []string{}
		if excludesStr != "" {
			for ex := range strings.SplitSeq(excludesStr, ",") {
				if trimmed := strings.TrimSpace(ex); trimmed != "" {
					excludes = append(excludes, trimmed)
				}
			}
		}

		if ShouldIgnore(path, nil) {
			t.Fatalf("path %q ignored with no excludes", path)
		}

		ignored := ShouldIgnore(path, excludes)
		widened := append(append([]string{}, excludes...), "**/*.codepulse-never")
		if ignored && !ShouldIgnore(path, widened) {
			t.Fatalf("adding a pattern un-ignored %q (excludes %q)", path, excludes)
		}
	})
}
