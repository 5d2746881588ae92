package schema

import (
	"path/filepath"
	"strings"
)

// Custom string types for type safety.
type (
	// Language is the language identifier of an analyzed file.
	Language string

	// LanguageFamily groups languages that share complexity and naming heuristics.
	LanguageFamily string

	// StyleRule names the rule a StyleIssue violates.
	StyleRule string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for the metrics store.
	DatabaseBackend string

	// HealthBand is the coarse classification of a health score.
	HealthBand string

	// SuggestionKind categorizes the issue a Suggestion was derived from.
	SuggestionKind string
)

// All languages recognized by the analyzers.
const (
	JavaScript      Language = "javascript"
	TypeScript      Language = "typescript"
	JavaScriptReact Language = "javascriptreact"
	TypeScriptReact Language = "typescriptreact"
	Python          Language = "python"
	Java            Language = "java"
	C               Language = "c"
	CPP             Language = "cpp"
	CSharp          Language = "csharp"
	Unknown         Language = "unknown"
)

// Language families used for strategy dispatch.
const (
	ScriptFamily LanguageFamily = "script" // JS/TS and their JSX variants
	IndentFamily LanguageFamily = "indent" // Python
	CSharpFamily LanguageFamily = "csharp"
	BraceFamily  LanguageFamily = "brace" // fallback
)

// Style rules reported by the style analyzer.
const (
	RuleIndentation   StyleRule = "consistent-indentation"
	RuleOperatorSpace StyleRule = "operator-spacing"
	RuleCommaSpace    StyleRule = "comma-spacing"
	RuleNaming        StyleRule = "naming-convention"
	RuleLineLength    StyleRule = "max-line-length"
)

// All output modes supported.
const (
	CSVOut  OutputMode = "csv"
	TextOut OutputMode = "text" // default
	JSONOut OutputMode = "json"
)

// All store backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// Health bands.
const (
	GoodHealth HealthBand = "good"
	FairHealth HealthBand = "fair"
	PoorHealth HealthBand = "poor"
)

// Suggestion kinds.
const (
	ComplexitySuggestion  SuggestionKind = "complexity"
	DuplicationSuggestion SuggestionKind = "duplication"
	StyleSuggestion       SuggestionKind = "style"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:  {},
	TextOut: {},
	JSONOut: {},
}

// ValidDatabaseBackends lists all valid store backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// AllStyleRules lists every style rule in report order.
var AllStyleRules = []StyleRule{RuleIndentation, RuleOperatorSpace, RuleCommaSpace, RuleNaming, RuleLineLength}

// SupportedExtensions maps file extensions to the language they are analyzed as.
var SupportedExtensions = map[string]Language{
	".js":   JavaScript,
	".ts":   TypeScript,
	".jsx":  JavaScriptReact,
	".tsx":  TypeScriptReact,
	".py":   Python,
	".java": Java,
	".c":    C,
	".cpp":  CPP,
	".cs":   CSharp,
}

// FamilyOf returns the heuristic family for a language.
func FamilyOf(lang Language) LanguageFamily {
	switch lang {
	case JavaScript, TypeScript, JavaScriptReact, TypeScriptReact:
		return ScriptFamily
	case Python:
		return IndentFamily
	case CSharp:
		return CSharpFamily
	default:
		return BraceFamily
	}
}

// LanguageFromPath returns the language for a path based on its extension.
func LanguageFromPath(path string) Language {
	if lang, ok := SupportedExtensions[strings.ToLower(filepath.Ext(path))]; ok {
		return lang
	}
	return Unknown
}

// IsSupportedPath reports whether the path has an extension the analyzers know.
func IsSupportedPath(path string) bool {
	_, ok := SupportedExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}
