package core

import (
	"path/filepath"

	"github.com/src-d/enry/v2"
	"github.com/zeyadhassan/codepulse/schema"
)

// enryLanguages maps linguist names to analyzer languages.
var enryLanguages = map[string]schema.Language{
	"JavaScript": schema.JavaScript,
	"TypeScript": schema.TypeScript,
	"TSX":        schema.TypeScriptReact,
	"JSX":        schema.JavaScriptReact,
	"Python":     schema.Python,
	"Java":       schema.Java,
	"C":          schema.C,
	"C++":        schema.CPP,
	"C#":         schema.CSharp,
}

// DetectLanguage resolves the analyzer language of a file. JSX and TSX are
// taken from the extension since linguist folds them into their base language.
// Otherwise linguist detection wins, with the extension as fallback.
func DetectLanguage(path string, content []byte) schema.Language {
	byExt := schema.LanguageFromPath(path)
	if byExt == schema.JavaScriptReact || byExt == schema.TypeScriptReact {
		return byExt
	}
	if lang, ok := enryLanguages[enry.GetLanguage(filepath.Base(path), content)]; ok {
		return lang
	}
	return byExt
}
