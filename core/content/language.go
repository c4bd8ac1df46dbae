package content

import (
	"regexp"
	"strings"
)

// Syntax highlighting languages
const (
	LangJavaScript = "javascript"
	LangTypeScript = "typescript"
	LangPython     = "python"
	LangJava       = "java"
	LangCpp        = "cpp"
	LangGo         = "go"
	LangHTML       = "html"
	LangCSS        = "css"
	LangSQL        = "sql"
	LangBash       = "bash"
	LangMarkdown   = "markdown" // embedded image references: ![alt](url)

	DefaultLanguage = LangJavaScript
)

type languageRule struct {
	lang  string
	match func(code string) bool
}

var (
	mdImageRegex = regexp.MustCompile(`^!\[[^\]]*\]\([^)]+\)$`)

	htmlRegex = regexp.MustCompile(`(?is)^<(!doctype|html|head|body|div|span|p|section|ul|ol|table|form|h[1-6]|a|img|button|template)\b.*>`)

	pyDefRegex    = regexp.MustCompile(`(?m)^\s*(async\s+)?def\s+\w+\s*\(.*\)\s*(->\s*[^:]+)?:`)
	pyImportRegex = regexp.MustCompile(`(?m)^\s*(from\s+[\w.]+\s+import\s+[\w*]|import\s+[\w.]+\s*(as\s+\w+)?\s*$)`)
	pyClassRegex  = regexp.MustCompile(`(?m)^\s*class\s+\w+(\(.*\))?:\s*$`)
	pyMiscRegex   = regexp.MustCompile(`(?m)(^\s*elif\s.*:\s*$|\bself\.|^\s*print\(.*\)\s*$|__name__\s*==)`)

	jsModuleRegex = regexp.MustCompile(`\bimport\s+.+\s+from\s+['"]|\bexport\s+(default|const|function)\b`)

	tsRegex = regexp.MustCompile(`(?m)(^\s*(export\s+)?(interface|enum)\s+\w+|^\s*(export\s+)?type\s+\w+(<.*>)?\s*=|:\s*(string|number|boolean|any|void|unknown|never)(\[\])?\s*[,;)=|{]|\bas\s+(string|number|const)\b|\bReadonly<|\bimplements\s+\w+)`)

	javaRegex = regexp.MustCompile(`(\bpublic\s+(static\s+)?(final\s+)?(class|interface|enum|void|int|String)\b|\bSystem\.out\.print|\bprivate\s+(static\s+)?(final\s+)?[A-Z]\w*(<.*>)?\s+\w+\s*[;=])`)

	cppRegex = regexp.MustCompile(`(?m)(^\s*#include\s*[<"]|\bstd::|\bcout\s*<<|\bcin\s*>>|^\s*using\s+namespace\s+|^\s*template\s*<)`)

	goRegex = regexp.MustCompile(`(?m)(^package\s+\w+\s*$|^\s*func\s+(\(\w+\s+\*?\w+\)\s*)?\w+\s*\(|\bfmt\.(Print|Sprint|Errorf)|\bgo\s+func\s*\(|:=\s*make\(|\bchan\s+\w+)`)

	sqlRegex = regexp.MustCompile(`(?is)^\s*(select\s.+\sfrom\s|insert\s+into\s|update\s+\w+\s+set\s|delete\s+from\s|create\s+(table|index|view)\s|alter\s+table\s|drop\s+table\s|with\s+\w+\s+as\s*\()`)

	bashRegex = regexp.MustCompile(`(?m)(^#!\s*/(usr/)?bin/(env\s+)?(ba|z)?sh\b|^\s*\$\s+\w+|^\s*(sudo|apt(-get)?|brew|npm|npx|yarn|pip3?|cd|ls|mkdir|chmod|curl|git)\s+\S+)`)

	cssRegex = regexp.MustCompile(`(?m)(^\s*@(media|import|keyframes|font-face)\b|^\s*[.#:\[\w*][^{}()=;\n]*\{\s*[a-z-]+\s*:\s*[^;{}]+;)`)

	jsRegex = regexp.MustCompile(`(\bfunction\b|=>|\b(const|let|var)\s+\w+|\bconsole\.\w+\(|\bimport\s+.+\s+from\s+['"]|\brequire\(|\bexport\s+default\b|\bdocument\.|\bwindow\.)`)

	// ordered by priority: first match wins
	languageRules = []languageRule{
		{LangMarkdown, mdImageRegex.MatchString},
		{LangHTML, htmlRegex.MatchString},
		{LangPython, isPython},
		{LangTypeScript, tsRegex.MatchString},
		{LangJava, javaRegex.MatchString},
		{LangCpp, cppRegex.MatchString},
		{LangGo, goRegex.MatchString},
		{LangSQL, sqlRegex.MatchString},
		{LangBash, bashRegex.MatchString},
		{LangCSS, cssRegex.MatchString},
		{LangJavaScript, jsRegex.MatchString},
	}

	languages = []string{
		LangJavaScript, LangTypeScript, LangPython, LangJava, LangCpp,
		LangGo, LangHTML, LangCSS, LangSQL, LangBash, LangMarkdown,
	}
)

// InferLanguage guesses the syntax highlighting language of `code`.
// It is a heuristic over a fixed ordered rule list, not a parser: ambiguous code may be
// mis-classified, but the same input always yields the same tag. Falls back to DefaultLanguage.
func InferLanguage(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return DefaultLanguage
	}
	for _, rule := range languageRules {
		if rule.match(code) {
			return rule.lang
		}
	}
	return DefaultLanguage
}

// isPython rejects ES module syntax, which shares the `import` keyword with python.
func isPython(code string) bool {
	if strings.Contains(code, "require(") || jsModuleRegex.MatchString(code) {
		return false
	}
	return pyDefRegex.MatchString(code) ||
		pyImportRegex.MatchString(code) ||
		pyClassRegex.MatchString(code) ||
		pyMiscRegex.MatchString(code)
}

// Languages returns the supported language tags.
func Languages() []string {
	out := make([]string, len(languages))
	copy(out, languages)
	return out
}

// IsLanguage reports whether `lang` is a supported language tag.
func IsLanguage(lang string) bool {
	for _, l := range languages {
		if l == lang {
			return true
		}
	}
	return false
}
