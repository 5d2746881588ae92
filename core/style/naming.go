package style

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/zeyadhassan/codepulse/schema"
)

// namingRule inspects one line and returns a message per violation found on it.
type namingRule func(line string) []string

var namingRules = map[schema.LanguageFamily][]namingRule{
	schema.ScriptFamily: {scriptConstant, scriptUpperVariable, scriptFunctionName, scriptClassName},
	schema.IndentFamily: {pythonFunctionName, pythonClassName, pythonConstant},
	schema.CSharpFamily: {csharpPrivateField, csharpPublicMethod, csharpPrivateMethod},
}

func checkNaming(lines []string, family schema.LanguageFamily) []schema.StyleIssue {
	rules, ok := namingRules[family]
	if !ok {
		return nil
	}
	var issues []schema.StyleIssue
	for i, line := range lines {
		for _, rule := range rules {
			for _, msg := range rule(line) {
				issues = append(issues, schema.StyleIssue{Line: i, Message: msg, Rule: schema.RuleNaming})
			}
		}
	}
	return issues
}

// patternRule builds a rule from a regexp and a check on its submatches.
// Every match on the line is checked.
func patternRule(re *regexp.Regexp, check func(m []string) (string, bool)) namingRule {
	return func(line string) []string {
		var msgs []string
		for _, m := range re.FindAllStringSubmatch(line, -1) {
			if msg, found := check(m); found {
				msgs = append(msgs, msg)
			}
		}
		return msgs
	}
}

// --- script family ---

var (
	scriptConstant = patternRule(regexp.MustCompile(`const\s+([A-Z_][A-Z0-9_]*)\s*=`), func(m []string) (string, bool) {
		name := m[1]
		if strings.ToUpper(name) == name && !strings.Contains(name, "_") {
			return fmt.Sprintf("Constant %s should use UPPER_SNAKE_CASE", name), true
		}
		return "", false
	})

	scriptUpperVariable = patternRule(regexp.MustCompile(`(let|var)\s+([A-Z_][A-Z0-9_]*)\s*=`), func(m []string) (string, bool) {
		return fmt.Sprintf("Variable %s should use camelCase, not UPPER_CASE", m[2]), true
	})

	scriptFunctionName = patternRule(regexp.MustCompile(`function\s+([a-z_][a-zA-Z0-9]*)([A-Z])`), func(m []string) (string, bool) {
		return fmt.Sprintf("Function name %s%s should use camelCase", m[1], m[2]), true
	})

	scriptClassName = patternRule(regexp.MustCompile(`class\s+([a-z][a-zA-Z0-9]*)\s`), func(m []string) (string, bool) {
		return fmt.Sprintf("Class name %s should use PascalCase", m[1]), true
	})
)

// --- indent family ---

var pythonModuleLevel = regexp.MustCompile(`^[A-Za-z]`)

var (
	pythonFunctionName = patternRule(regexp.MustCompile(`def\s+([A-Z][a-zA-Z0-9_]*)\s*\(`), func(m []string) (string, bool) {
		return fmt.Sprintf("Function name %s should use snake_case, not PascalCase", m[1]), true
	})

	pythonClassName = patternRule(regexp.MustCompile(`class\s+([a-z][a-zA-Z0-9_]*)\s*[:\(]`), func(m []string) (string, bool) {
		return fmt.Sprintf("Class name %s should use PascalCase, not snake_case", m[1]), true
	})

	// The name must start lowercase yet be all upper case, so this never fires.
	pythonAssignment = patternRule(regexp.MustCompile(`([a-z][a-zA-Z0-9_]*)\s*=\s*[^=]`), func(m []string) (string, bool) {
		name := m[1]
		if strings.ToUpper(name) == name && len(name) > 2 && !strings.Contains(name, "_") {
			return fmt.Sprintf("Constant %s should use UPPER_SNAKE_CASE", name), true
		}
		return "", false
	})
)

func pythonConstant(line string) []string {
	if !pythonModuleLevel.MatchString(line) {
		return nil
	}
	return pythonAssignment(line)
}

// --- csharp family ---

var (
	csharpPrivateField = patternRule(regexp.MustCompile(`private\s+[a-zA-Z0-9_<>]+\s+([a-zA-Z0-9_]+)\s*;`), func(m []string) (string, bool) {
		if strings.HasPrefix(m[1], "_") {
			return "", false
		}
		return fmt.Sprintf("Private field %s should start with underscore (_)", m[1]), true
	})

	csharpPublicMethod = patternRule(regexp.MustCompile(`public\s+[a-zA-Z0-9_<>]+\s+([a-z][a-zA-Z0-9_]*)\s*\(`), func(m []string) (string, bool) {
		return fmt.Sprintf("Public method %s should use PascalCase, not camelCase", m[1]), true
	})

	csharpPrivateMethod = patternRule(regexp.MustCompile(`private\s+[a-zA-Z0-9_<>]+\s+([A-Z][a-zA-Z0-9_]*)\s*\(`), func(m []string) (string, bool) {
		return fmt.Sprintf("Private method %s should use camelCase, not PascalCase", m[1]), true
	})
)
