package codegraph

import (
	"path/filepath"
	"strings"
)

// Language identifies a source language supplied by the caller per file.
type Language string

const (
	LangJava       Language = "java"
	LangKotlin     Language = "kotlin"
	LangCSharp     Language = "csharp"
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangJSX        Language = "javascriptreact"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "typescriptreact"
	LangGo         Language = "go"
	LangRust       Language = "rust"
)

// AllLanguages lists every language the default registry can resolve, in a
// stable order.
var AllLanguages = []Language{
	LangJava, LangKotlin, LangCSharp, LangPython,
	LangJavaScript, LangJSX, LangTypeScript, LangTSX,
	LangGo, LangRust,
}

var languageAliases = map[string]Language{
	"java":            LangJava,
	"kotlin":          LangKotlin,
	"kt":              LangKotlin,
	"csharp":          LangCSharp,
	"c_sharp":         LangCSharp,
	"c#":              LangCSharp,
	"cs":              LangCSharp,
	"python":          LangPython,
	"py":              LangPython,
	"javascript":      LangJavaScript,
	"js":              LangJavaScript,
	"javascriptreact": LangJSX,
	"jsx":             LangJSX,
	"typescript":      LangTypeScript,
	"ts":              LangTypeScript,
	"typescriptreact": LangTSX,
	"tsx":             LangTSX,
	"go":              LangGo,
	"golang":          LangGo,
	"rust":            LangRust,
	"rs":              LangRust,
}

// ParseLanguage maps a loosely spelled language name ("JAVA", "c_sharp",
// "c#", "tsx") to a Language.
func ParseLanguage(s string) (Language, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "-", "_")
	l, ok := languageAliases[key]
	return l, ok
}

var extensionLanguages = map[string]Language{
	".java": LangJava,
	".kt":   LangKotlin,
	".kts":  LangKotlin,
	".cs":   LangCSharp,
	".py":   LangPython,
	".pyi":  LangPython,
	".js":   LangJavaScript,
	".mjs":  LangJavaScript,
	".cjs":  LangJavaScript,
	".jsx":  LangJSX,
	".ts":   LangTypeScript,
	".mts":  LangTypeScript,
	".cts":  LangTypeScript,
	".tsx":  LangTSX,
	".go":   LangGo,
	".rs":   LangRust,
}

// LanguageForPath detects the language of a file from its extension.
func LanguageForPath(path string) (Language, bool) {
	if strings.HasSuffix(path, ".d.ts") {
		return LangTypeScript, true
	}
	l, ok := extensionLanguages[strings.ToLower(filepath.Ext(path))]
	return l, ok
}

// Extensions returns the file extensions mapped to lang.
func Extensions(lang Language) []string {
	var exts []string
	for ext, l := range extensionLanguages {
		if l == lang {
			exts = append(exts, ext)
		}
	}
	return exts
}
