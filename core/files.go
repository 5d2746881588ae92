package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/src-d/enry/v2"
	"github.com/zeyadhassan/codepulse/internal/contract"
	"github.com/zeyadhassan/codepulse/schema"
)

// ErrNoFiles is returned when the given paths contain no analyzable files.
var ErrNoFiles = errors.New("no supported files found")

// CollectFiles expands the given paths into a sorted, de-duplicated list of
// files. Directories are walked recursively, skipping excluded and vendored
// paths and files without a supported extension. Explicit file paths are
// always kept.
func CollectFiles(cfg *contract.Config, paths []string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{cfg.WorkspacePath}
	}

	seen := make(map[string]struct{})
	var files []string
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		files = append(files, p)
	}

	for _, p := range paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(cfg.WorkspacePath, p)
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", p, err)
		}
		if !info.IsDir() {
			add(p)
			continue
		}

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				contract.LogWarn("Skipping unreadable path "+path, err)
				return nil
			}
			rel, relErr := filepath.Rel(cfg.WorkspacePath, path)
			if relErr != nil {
				rel = path
			}
			rel = filepath.ToSlash(rel)
			if d.IsDir() {
				if path == p {
					return nil
				}
				if contract.ShouldIgnore(rel+"/", cfg.Excludes) || enry.IsVendor(rel+"/") {
					return filepath.SkipDir
				}
				return nil
			}
			if !schema.IsSupportedPath(path) {
				return nil
			}
			if contract.ShouldIgnore(rel, cfg.Excludes) || enry.IsVendor(rel) {
				return nil
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	sort.Strings(files)
	return files, nil
}

// AnalyzeFile reads one file and runs the analyzer over it.
func AnalyzeFile(ctx context.Context, analyzer *CodeAnalyzer, path string) schema.FileAnalysis {
	start := time.Now()
	out := schema.FileAnalysis{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		out.Err = err
		out.Language = schema.LanguageFromPath(path)
		out.Result = schema.EmptyAnalysisResult()
		out.Elapsed = time.Since(start)
		return out
	}

	out.Language = DetectLanguage(path, data)
	out.Result = analyzer.Analyze(ctx, string(data), path, out.Language)
	out.Elapsed = time.Since(start)
	return out
}

// AnalyzeFiles processes all files in parallel using a worker pool of
// cfg.Workers goroutines. Results keep the order of the input slice.
func AnalyzeFiles(ctx context.Context, cfg *contract.Config, analyzer *CodeAnalyzer, files []string) []schema.FileAnalysis {
	results := make([]schema.FileAnalysis, len(files))
	if len(files) == 0 {
		return results
	}

	var bar *progressbar.ProgressBar
	if !shouldSuppressProgress(ctx) && len(files) > 1 {
		bar = newProgressBar("Analyzing files", len(files))
	}

	idxCh := make(chan int, len(files))
	var wg sync.WaitGroup
	for range max(1, cfg.Workers) {
		wg.Go(func() {
			for i := range idxCh {
				// Each worker writes to a unique index.
				results[i] = AnalyzeFile(ctx, analyzer, files[i])
				if bar != nil {
					_ = bar.Add(1)
				}
			}
		})
	}

	for i := range files {
		idxCh <- i
	}
	close(idxCh)
	wg.Wait()

	if bar != nil {
		_ = bar.Finish()
	}
	return results
}

func newProgressBar(description string, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(50),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
	)
}
