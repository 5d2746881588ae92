// Package suggest turns analysis issues into fix suggestions, with line edits
// for the style rules that can be repaired mechanically.
package suggest

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"

	"github.com/zeyadhassan/codepulse/core/style"
	"github.com/zeyadhassan/codepulse/schema"
)

const (
	splitThreshold    = 20
	simplifyThreshold = 10
	previewLen        = 30
	defaultTabSize    = 4
)

var (
	callPattern = regexp.MustCompile(`\w+\s*\(`)
	loopPattern = regexp.MustCompile(`for|while|forEach|map|filter|reduce`)

	operatorFixes = []struct {
		pattern     *regexp.Regexp
		replacement string
	}{
		{regexp.MustCompile(`(\w+)=(\w+)`), "$1 = $2"},
		{regexp.MustCompile(`(\w+)\+=(\w+)`), "$1 += $2"},
		{regexp.MustCompile(`(\w+)-=(\w+)`), "$1 -= $2"},
		{regexp.MustCompile(`(\w+)\*=(\w+)`), "$1 *= $2"},
		{regexp.MustCompile(`(\w+)/=(\w+)`), "$1 /= $2"},
	}
	commaFix = regexp.MustCompile(`,(\w)`)
)

// Suggest returns one suggestion per actionable issue, ordered by category:
// complexity, duplication, then style. Issues that point outside the text are skipped.
func Suggest(text string, result schema.AnalysisResult) []schema.Suggestion {
	lines := strings.Split(text, "\n")
	indent := style.DetectIndentation(lines)
	suggestions := []schema.Suggestion{}

	for _, is := range result.ComplexityIssues {
		if s, ok := forComplexity(lines, is); ok {
			suggestions = append(suggestions, s)
		}
	}
	for _, is := range result.DuplicationIssues {
		if s, ok := forDuplication(lines, is); ok {
			suggestions = append(suggestions, s)
		}
	}
	for _, is := range result.StyleIssues {
		if s, ok := forStyle(lines, indent, is); ok {
			suggestions = append(suggestions, s)
		}
	}
	return suggestions
}

func inRange(lines []string, line int) bool {
	return line >= 0 && line < len(lines)
}

func forComplexity(lines []string, is schema.ComplexityIssue) (schema.Suggestion, bool) {
	if !inRange(lines, is.Line) {
		slog.Debug("complexity issue out of range", "line", is.Line)
		return schema.Suggestion{}, false
	}

	s := schema.Suggestion{
		Kind:      schema.ComplexitySuggestion,
		StartLine: is.Line,
		EndLine:   blockEnd(lines, is.Line),
	}
	switch {
	case is.Complexity > splitThreshold:
		s.Title = fmt.Sprintf("Split function %q into smaller functions", is.FunctionName)
		s.Description = fmt.Sprintf("This function has very high complexity (%d). Consider splitting it into smaller, more focused functions.", is.Complexity)
	case is.Complexity > simplifyThreshold:
		s.Title = fmt.Sprintf("Simplify function %q", is.FunctionName)
		s.Description = fmt.Sprintf("This function has high complexity (%d). Look for repeated logic or nested conditions that could be extracted.", is.Complexity)
	default:
		return schema.Suggestion{}, false
	}
	return s, true
}

// blockEnd follows brace balance from a function header to its closing line.
// Without a brace-delimited body the header line is returned.
func blockEnd(lines []string, start int) int {
	header := lines[start]
	if !strings.Contains(header, "function") && !callPattern.MatchString(header) {
		return start
	}

	found := false
	balance := 0
	for i := start; i < len(lines); i++ {
		if !found && strings.Contains(lines[i], "{") {
			found = true
		}
		if found {
			balance += strings.Count(lines[i], "{") - strings.Count(lines[i], "}")
			if balance == 0 {
				return i
			}
		}
	}
	return start
}

func forDuplication(lines []string, is schema.DuplicationIssue) (schema.Suggestion, bool) {
	if !inRange(lines, is.StartLine) || !inRange(lines, is.EndLine) || is.EndLine < is.StartLine {
		slog.Debug("duplication issue out of range", "start", is.StartLine, "end", is.EndLine)
		return schema.Suggestion{}, false
	}

	block := strings.Join(lines[is.StartLine:is.EndLine+1], "\n")
	s := schema.Suggestion{
		Kind:      schema.DuplicationSuggestion,
		StartLine: is.StartLine,
		EndLine:   is.EndLine,
	}
	switch {
	case strings.Contains(block, "if") || strings.Contains(block, "switch"):
		s.Title = "Extract duplicated conditional logic into a helper function"
		s.Description = "This code block appears multiple times. Extract it into a reusable function."
	case loopPattern.MatchString(block):
		s.Title = "Extract duplicated loop into a utility function"
		s.Description = "This loop logic appears multiple times. Extract it into a reusable function."
	default:
		first := []rune(strings.TrimSpace(lines[is.StartLine]))
		if len(first) > previewLen {
			first = first[:previewLen]
		}
		s.Title = fmt.Sprintf("Extract duplicated code starting with %q...", string(first))
		s.Description = fmt.Sprintf("This code block of %d lines appears multiple times. Extract it into a reusable function.", is.Span())
	}
	return s, true
}

func forStyle(lines []string, indent style.Indentation, is schema.StyleIssue) (schema.Suggestion, bool) {
	if !inRange(lines, is.Line) {
		slog.Debug("style issue out of range", "line", is.Line)
		return schema.Suggestion{}, false
	}

	line := lines[is.Line]
	s := schema.Suggestion{
		Kind:        schema.StyleSuggestion,
		StartLine:   is.Line,
		EndLine:     is.Line,
		Description: is.Message,
	}

	var fixed string
	switch is.Rule {
	case schema.RuleIndentation:
		var ok bool
		if fixed, ok = reindent(line, indent); !ok {
			return schema.Suggestion{}, false
		}
		s.Title = "Fix indentation to match project style"
	case schema.RuleOperatorSpace:
		fixed = line
		for _, f := range operatorFixes {
			fixed = f.pattern.ReplaceAllString(fixed, f.replacement)
		}
		s.Title = "Add spaces around operators"
	case schema.RuleCommaSpace:
		fixed = commaFix.ReplaceAllString(line, ", $1")
		s.Title = "Add spaces after commas"
	case schema.RuleNaming:
		s.Title = "Review naming convention"
		return s, true
	case schema.RuleLineLength:
		s.Title = "Consider breaking long line into multiple lines"
		return s, true
	default:
		return schema.Suggestion{}, false
	}

	s.Edit = &schema.TextEdit{Line: is.Line, Original: line, Replacement: fixed}
	return s, true
}

// reindent rewrites the leading whitespace of a line in the project's style.
// Tabs count as four columns. Lines without indentation are left alone.
func reindent(line string, indent style.Indentation) (string, bool) {
	body := strings.TrimLeft(line, " \t")
	ws := line[:len(line)-len(body)]
	if ws == "" {
		return "", false
	}

	width := len(strings.ReplaceAll(ws, "\t", strings.Repeat(" ", defaultTabSize)))
	if indent.Tabs {
		tabs := int(math.Round(float64(width) / defaultTabSize))
		return strings.Repeat("\t", tabs) + body, true
	}

	unit := indent.Size
	if unit == 0 {
		unit = defaultTabSize
	}
	spaces := int(math.Round(float64(width)/float64(unit))) * unit
	return strings.Repeat(" ", spaces) + body, true
}
