// Package main provides a performance benchmarking tool for the codepulse CLI.
// It measures analyze and project execution times across source trees of
// different sizes, running each command several times with the in-memory
// store and with SQLite, treating the first SQLite run as cold and averaging
// the rest as warm. Results are written as CSV for documentation.
//
// Prerequisites:
// - codepulse binary installed and available in PATH
// - Source trees cloned to the specified base directory: csv-parser, fd, git, kubernetes
//
// Usage: go run benchmark/main.go [repo-base-dir]
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the timings of one command on one source tree.
type BenchmarkResult struct {
	Repository string
	Command    string
	MemoryTime string
	ColdTime   string
	WarmTime   string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	RepoBase   string
	Timeout    time.Duration
	Workers    int
	MemoryRuns int
	StoreRuns  int
	TestRepos  []string
	RepoDirs   map[string]string
}

// benchCommand is one codepulse invocation under test.
type benchCommand struct {
	name       string
	args       []string
	completion string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [repo-base-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		RepoBase:   os.Args[1],
		Timeout:    5 * time.Minute,
		Workers:    14,
		MemoryRuns: 3,
		StoreRuns:  4,
		TestRepos:  []string{"csv-parser", "fd", "git", "kubernetes"},
		RepoDirs: map[string]string{
			"git":        "builtin",
			"kubernetes": "pkg/kubelet",
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the codepulse binary and source trees exist.
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("codepulse"); err != nil {
		return fmt.Errorf("codepulse binary not found in PATH")
	}
	for _, repo := range config.TestRepos {
		repoPath := filepath.Join(config.RepoBase, repo)
		if _, err := os.Stat(repoPath); os.IsNotExist(err) {
			return fmt.Errorf("repository %s not found at %s", repo, repoPath)
		}
	}
	return nil
}

// runBenchmarks executes all benchmark commands across configured source trees.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d repos, %v timeout, %d workers, memory: %d runs, sqlite: %d runs\n",
		len(config.TestRepos), config.Timeout, config.Workers, config.MemoryRuns, config.StoreRuns)

	for _, repo := range config.TestRepos {
		fmt.Printf("Benchmarking %s\n", repo)
		repoPath := filepath.Join(config.RepoBase, repo)
		dbPath := filepath.Join(os.TempDir(), fmt.Sprintf("codepulse_bench_%s.db", repo))

		commands := []benchCommand{
			{name: "analyze", args: []string{"analyze", "--output", "csv", "--output-file", os.DevNull}, completion: "Wrote"},
			{name: "project", args: []string{"project", "--limit", "10"}, completion: "Project Health"},
		}
		if dir, ok := config.RepoDirs[repo]; ok {
			commands = append(commands, benchCommand{
				name:       "analyze-dir",
				args:       []string{"analyze", dir, "--output", "csv", "--output-file", os.DevNull},
				completion: "Wrote",
			})
		}

		_ = os.Remove(dbPath)
		for _, c := range commands {
			results = append(results, runBenchmarkSuite(config, repo, repoPath, dbPath, c))
		}
		_ = os.Remove(dbPath)
	}

	return results
}

// runBenchmarkSuite runs the in-memory and SQLite phases for one command.
func runBenchmarkSuite(config BenchmarkConfig, repo, repoPath, dbPath string, c benchCommand) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", c.name, repo)

	runPhase := func(backend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, repoPath, dbPath, c, backend, numRuns)
		if len(times) == 0 {
			return cold, "TIMEOUT"
		}
		var sum float64
		for _, t := range times {
			sum += t
		}
		return cold, fmt.Sprintf("%.3fs", sum/float64(len(times)))
	}

	_, memoryAvg := runPhase("none", config.MemoryRuns, "Memory")
	coldTime, warmAvg := runPhase("sqlite", config.StoreRuns, "SQLite")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  Memory average: %s, Cold time: %s, Warm average: %s\n", memoryAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Repository: repo,
		Command:    c.name,
		MemoryTime: memoryAvg,
		ColdTime:   coldTimeStr,
		WarmTime:   warmAvg,
	}
}

// runBenchmark executes a codepulse command multiple times with the given
// store backend and returns the cold time and the warm times.
func runBenchmark(config BenchmarkConfig, repoPath, dbPath string, c benchCommand, backend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := append([]string{}, c.args...)
	args = append(args, "--store-backend", backend, "--workers", fmt.Sprint(config.Workers))
	if backend == "sqlite" {
		args = append(args, "--store-db-connect", dbPath)
	}

	var times []float64
	for run := 1; run <= numRuns; run++ {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()

		cmd := exec.CommandContext(ctx, "codepulse", args...)
		cmd.Dir = repoPath
		output, err := cmd.CombinedOutput()
		if err == nil && isSuccess(output, c) {
			times = append(times, time.Since(start).Seconds())
		}
		cancel()
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion.
func isSuccess(output []byte, c benchCommand) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, c.completion) || strings.Contains(outputStr, "No metrics recorded yet")
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("codepulse_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"repo", "cmd", "memory_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Repository, result.Command, result.MemoryTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary.
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, command := range []string{"analyze", "analyze-dir", "project"} {
		fmt.Printf("%s:\n", command)
		for _, result := range results {
			if result.Command == command {
				fmt.Printf("  %-12s: Memory: %s, Cold: %s, Warm: %s\n", result.Repository, result.MemoryTime, result.ColdTime, result.WarmTime)
			}
		}
	}
}
