package graph

import (
	"path/filepath"
	"strings"
)

// Language identifies a source language for extraction.
type Language string

const (
	LangPython     Language = "python"
	LangGo         Language = "go"
	LangTypeScript Language = "typescript"
	LangRust       Language = "rust"
)

// SupportedLanguages lists the languages with a registered grammar, Python
// first as the primary analysis target.
var SupportedLanguages = []Language{LangPython, LangGo, LangTypeScript, LangRust}

// DetectLanguage maps a file path to its language by extension. The second
// return is false for unrecognized extensions.
func DetectLanguage(path string) (Language, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py", ".pyi":
		return LangPython, true
	case ".go":
		return LangGo, true
	case ".ts", ".tsx":
		return LangTypeScript, true
	case ".rs":
		return LangRust, true
	default:
		return "", false
	}
}

// ModuleName derives a dotted module name from a unit path:
// "pkg/api/user.py" becomes "pkg.api.user". The module node of a unit
// anchors its import edges.
func ModuleName(path string) string {
	p := filepath.ToSlash(path)
	if ext := filepath.Ext(p); ext != "" {
		p = strings.TrimSuffix(p, ext)
	}
	p = strings.Trim(p, "/")
	return strings.ReplaceAll(p, "/", ".")
}
