// Package duplication finds repeated runs of identical lines within a single file.
package duplication

import (
	"fmt"
	"strings"

	"github.com/zeyadhassan/codepulse/schema"
)

// match is an accepted pair of equal line ranges.
type match struct {
	first  int
	second int
	length int
}

// overlaps reports whether a candidate starts inside an accepted range.
// Ranges include the line just past their end.
func (m match) overlaps(first, second int) bool {
	return (first >= m.first && first <= m.first+m.length) ||
		(second >= m.second && second <= m.second+m.length)
}

var skippedPrefixes = []string{"//", "#", "/*", "*", "import ", "using ", "#include "}

// insignificant reports whether a line is too trivial to seed a match.
func insignificant(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 5 || trimmed == "{" || trimmed == "}" {
		return true
	}
	for _, prefix := range skippedPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

// Detect returns duplicated blocks of exactly minLines lines. The location of
// each issue points at the later copy within the same file.
func Detect(text, filePath string, minLines int) (issues []schema.DuplicationIssue) {
	defer func() {
		if r := recover(); r != nil {
			issues = []schema.DuplicationIssue{}
		}
	}()

	issues = []schema.DuplicationIssue{}
	if minLines < 1 {
		return issues
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	n := len(lines)
	if n < 2*minLines {
		return issues
	}

	var accepted []match
	for i := 0; i < n-minLines; i++ {
		if insignificant(lines[i]) {
			continue
		}
		for j := i + minLines; j < n-minLines+1; j++ {
			if lines[i] != lines[j] {
				continue
			}
			length := 1
			for length < minLines && i+length < n && j+length < n && lines[i+length] == lines[j+length] {
				length++
			}
			if length < minLines {
				continue
			}

			overlap := false
			for _, m := range accepted {
				if m.overlaps(i, j) {
					overlap = true
					break
				}
			}
			if !overlap {
				accepted = append(accepted, match{first: i, second: j, length: length})
			}
			i += length - 1
			break
		}
	}

	for _, m := range accepted {
		issues = append(issues, schema.DuplicationIssue{
			StartLine: m.first,
			EndLine:   m.first + m.length - 1,
			Message:   fmt.Sprintf("Duplicated block of %d lines", m.length),
			DuplicateLocations: []schema.DuplicateLocation{{
				File:      filePath,
				StartLine: m.second,
				EndLine:   m.second + m.length - 1,
			}},
		})
	}
	return issues
}
