// Package complexity estimates cyclomatic complexity per function or block
// with line-oriented heuristics. It never parses an AST.
package complexity

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/zeyadhassan/codepulse/schema"
)

// block is a candidate function region tracked while scanning.
type block struct {
	name       string
	start      int
	end        int // -1 while open
	complexity int
	indent     int
}

// strategy scans text and returns every block with its estimated complexity.
type strategy func(lines []string) []block

var strategies = map[schema.LanguageFamily]strategy{
	schema.ScriptFamily: scanScript,
	schema.IndentFamily: scanIndent,
}

// Calculate returns the functions or blocks whose complexity is at or above threshold.
// A panic while scanning yields an empty list.
func Calculate(text string, lang schema.Language, threshold int) (issues []schema.ComplexityIssue) {
	defer func() {
		if r := recover(); r != nil {
			issues = []schema.ComplexityIssue{}
		}
	}()

	family := schema.FamilyOf(lang)
	scan, ok := strategies[family]
	if !ok {
		scan = scanBrace
	}

	issues = []schema.ComplexityIssue{}
	if text == "" {
		return issues
	}
	for _, b := range scan(strings.Split(text, "\n")) {
		if b.complexity < threshold {
			continue
		}
		issues = append(issues, schema.ComplexityIssue{
			Line:         b.start,
			Complexity:   b.complexity,
			FunctionName: b.name,
			Message:      messageFor(family, b),
		})
	}
	return issues
}

func messageFor(family schema.LanguageFamily, b block) string {
	if _, ok := strategies[family]; ok {
		return fmt.Sprintf("Function '%s' has high cyclomatic complexity (%d)", b.name, b.complexity)
	}
	return fmt.Sprintf("Block '%s' has high cyclomatic complexity (%d)", b.name, b.complexity)
}

// --- script family (JavaScript / TypeScript) ---

var (
	scriptFunctionDecl = regexp.MustCompile(`function\s+(\w+)\s*\(`)
	scriptMethodDecl   = regexp.MustCompile(`(\w+)\s*\([^)]*\)\s*\{`)
	scriptArrowDecl    = regexp.MustCompile(`(const|let|var)?\s*(\w+)\s*=\s*(?:\([^)]*\)|[^=]+)=>`)

	scriptMarkers = []string{
		"if ", "else ", "for(", "for (", "while(", "while (",
		"switch(", "switch (", "case ", "&&", "||", "?",
	}
)

// scanScript finds every function-like construct first, then attributes
// decision markers to all blocks active on each line.
func scanScript(lines []string) []block {
	var blocks []*block
	for i, line := range lines {
		for _, m := range scriptFunctionDecl.FindAllStringSubmatch(line, -1) {
			blocks = append(blocks, &block{name: m[1], start: i, end: -1, complexity: 1})
		}
		for _, m := range scriptMethodDecl.FindAllStringSubmatch(line, -1) {
			blocks = append(blocks, &block{name: m[1], start: i, end: -1, complexity: 1})
		}
		for _, m := range scriptArrowDecl.FindAllStringSubmatch(line, -1) {
			name := m[2]
			if name == "" {
				name = "anonymous"
			}
			blocks = append(blocks, &block{name: name, start: i, end: -1, complexity: 1})
		}
	}

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if strings.HasPrefix(line, "//") || strings.HasPrefix(line, "/*") || strings.HasPrefix(line, "*") {
			continue
		}

		var active []*block
		for _, b := range blocks {
			if b.start <= i && (b.end < 0 || b.end >= i) {
				active = append(active, b)
			}
		}

		for _, b := range active {
			for _, marker := range scriptMarkers {
				if strings.Contains(line, marker) {
					b.complexity++
				}
			}
		}

		if strings.Contains(line, "}") && len(active) > 0 {
			if last := active[len(active)-1]; last.end < 0 {
				last.end = i
			}
		}
	}

	out := make([]block, len(blocks))
	for i, b := range blocks {
		out[i] = *b
	}
	return out
}

// --- indent family (Python) ---

var (
	pythonDef     = regexp.MustCompile(`def\s+(\w+)\s*\(`)
	pythonMarkers = []string{"if ", "elif ", "else:", "for ", "while ", "except:", "finally:", "and ", "or "}
)

// scanIndent tracks one function at a time; a function ends at the first
// non-blank line indented no deeper than its def.
func scanIndent(lines []string) []block {
	var (
		out     []block
		current *block
	)
	flush := func() {
		if current != nil {
			out = append(out, *current)
			current = nil
		}
	}

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		indent := len(raw) - len(strings.TrimLeft(raw, " \t"))

		if m := pythonDef.FindStringSubmatch(line); m != nil {
			flush()
			current = &block{name: m[1], start: i, end: -1, complexity: 1, indent: indent}
			continue
		}
		if current == nil {
			continue
		}
		if indent <= current.indent {
			flush()
			continue
		}
		for _, marker := range pythonMarkers {
			if strings.HasPrefix(line, marker) || strings.Contains(line, " "+marker) {
				current.complexity++
				break
			}
		}
	}
	flush()
	return out
}

// --- brace family (fallback) ---

var (
	braceBlockName = regexp.MustCompile(`\s*(\w+)\s*\([^)]*\)\s*\{`)
	braceMarkers   = []string{"if", "else", "for", "while", "switch", "case", "&&", "||", "?:"}
)

// scanBrace opens a block on the first brace at depth zero and emits it
// when the depth returns to zero. Unclosed blocks are dropped.
func scanBrace(lines []string) []block {
	var (
		out     []block
		current *block
		balance int
	)

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, "#") ||
			strings.HasPrefix(line, "/*") || strings.HasPrefix(line, "*") {
			continue
		}

		opens := strings.Count(line, "{")
		closes := strings.Count(line, "}")

		if balance == 0 && opens > 0 {
			name := "anonymous"
			if m := braceBlockName.FindStringSubmatch(line); m != nil {
				name = m[1]
			}
			current = &block{name: name, start: i, end: -1, complexity: 1}
		}

		balance += opens - closes

		if current == nil {
			continue
		}
		for _, marker := range braceMarkers {
			if strings.Contains(line, marker) {
				current.complexity++
				break
			}
		}
		if balance == 0 && closes > 0 {
			current.end = i
			out = append(out, *current)
			current = nil
		}
	}
	return out
}
