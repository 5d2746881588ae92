// Package style reports indentation, spacing, naming and line length issues.
package style

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/zeyadhassan/codepulse/schema"
)

// MaxLineLength is the longest line, in characters, that is not flagged.
const MaxLineLength = 100

// Indentation is the dominant indentation style of a text.
type Indentation struct {
	Tabs bool
	Size int // 2 or 4 when Tabs is false; 0 when undetermined
}

// Determined reports whether any indented line was seen.
func (in Indentation) Determined() bool {
	return in.Tabs || in.Size > 0
}

var (
	operatorNoSpace = regexp.MustCompile(`[a-zA-Z0-9]=[a-zA-Z0-9]`)
	commaNoSpace    = regexp.MustCompile(`,[a-zA-Z0-9]`)
)

// Analyze returns style issues in check order: indentation and spacing per line,
// then naming, then line length. A panic yields an empty list.
func Analyze(text string, lang schema.Language) (issues []schema.StyleIssue) {
	defer func() {
		if r := recover(); r != nil {
			issues = []schema.StyleIssue{}
		}
	}()

	issues = []schema.StyleIssue{}
	if text == "" {
		return issues
	}
	lines := strings.Split(text, "\n")

	issues = append(issues, checkIndentationAndSpacing(lines)...)
	issues = append(issues, checkNaming(lines, schema.FamilyOf(lang))...)
	issues = append(issues, checkLineLength(lines)...)
	return issues
}

// leading returns the number of leading spaces and leading tabs of a line.
// Only the run of the first whitespace character counts.
func leading(line string) (spaces, tabs int) {
	if line == "" {
		return 0, 0
	}
	switch line[0] {
	case ' ':
		return len(line) - len(strings.TrimLeft(line, " ")), 0
	case '\t':
		return 0, len(line) - len(strings.TrimLeft(line, "\t"))
	}
	return 0, 0
}

// DetectIndentation tallies indentation units over the non-blank lines.
// A space run of length n adds n/2 to the 2-space tally when even and n/4 to
// the 4-space tally when divisible by 4. Ties favor 2 spaces, then 4, then tabs.
func DetectIndentation(lines []string) Indentation {
	var spaces2, spaces4, tabs int
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		sp, tb := leading(line)
		switch {
		case sp > 0:
			if sp%2 == 0 {
				spaces2 += sp / 2
			}
			if sp%4 == 0 {
				spaces4 += sp / 4
			}
		case tb > 0:
			tabs += tb
		}
	}

	switch {
	case spaces2 == 0 && spaces4 == 0 && tabs == 0:
		return Indentation{}
	case spaces2 >= spaces4 && spaces2 >= tabs:
		return Indentation{Size: 2}
	case spaces4 >= tabs:
		return Indentation{Size: 4}
	default:
		return Indentation{Tabs: true}
	}
}

func checkIndentationAndSpacing(lines []string) []schema.StyleIssue {
	var issues []schema.StyleIssue
	indent := DetectIndentation(lines)

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		sp, tb := leading(line)

		switch {
		case indent.Tabs:
			if sp > 0 {
				issues = append(issues, schema.StyleIssue{
					Line:    i,
					Message: "Line uses spaces for indentation, but project uses tabs",
					Rule:    schema.RuleIndentation,
				})
			}
		case indent.Size > 0:
			if tb > 0 {
				issues = append(issues, schema.StyleIssue{
					Line:    i,
					Message: fmt.Sprintf("Line uses tabs for indentation, but project uses %d spaces", indent.Size),
					Rule:    schema.RuleIndentation,
				})
			} else if sp%indent.Size != 0 {
				issues = append(issues, schema.StyleIssue{
					Line:    i,
					Message: fmt.Sprintf("Line has inconsistent indentation (should be multiple of %d spaces)", indent.Size),
					Rule:    schema.RuleIndentation,
				})
			}
		}

		if operatorNoSpace.MatchString(line) {
			issues = append(issues, schema.StyleIssue{
				Line:    i,
				Message: "Missing spaces around equals operator",
				Rule:    schema.RuleOperatorSpace,
			})
		}
		if commaNoSpace.MatchString(line) {
			issues = append(issues, schema.StyleIssue{
				Line:    i,
				Message: "Missing space after comma",
				Rule:    schema.RuleCommaSpace,
			})
		}
	}
	return issues
}

func checkLineLength(lines []string) []schema.StyleIssue {
	var issues []schema.StyleIssue
	for i, line := range lines {
		if utf8.RuneCountInString(line) > MaxLineLength {
			issues = append(issues, schema.StyleIssue{
				Line:    i,
				Message: fmt.Sprintf("Line exceeds maximum length of %d characters", MaxLineLength),
				Rule:    schema.RuleLineLength,
			})
		}
	}
	return issues
}
