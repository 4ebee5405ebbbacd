// Package lang classifies source files by language and carries the
// per-language lexical tables used by the metrics scanner.
//
// Classification is a pure function of the path string: the extension is
// consulted first, then a small set of well-known extension-less filenames,
// then enry's filename matchers. File contents are never read, which keeps
// classification O(1) and deterministic.
package lang

import (
	"path/filepath"
	"strings"

	"github.com/src-d/enry/v2"
)

// Tag identifies a programming language. TagOther is the sentinel for
// anything the classifier does not recognize.
type Tag string

// Known language tags.
const (
	TagC          Tag = "c"
	TagCPP        Tag = "c++"
	TagCSharp     Tag = "c#"
	TagGo         Tag = "go"
	TagJava       Tag = "java"
	TagJavaScript Tag = "javascript"
	TagMakefile   Tag = "makefile"
	TagPHP        Tag = "php"
	TagPython     Tag = "python"
	TagRuby       Tag = "ruby"
	TagRust       Tag = "rust"
	TagShell      Tag = "shell"
	TagSwift      Tag = "swift"
	TagTypeScript Tag = "typescript"
	TagOther      Tag = "other"
)

// extensionTags maps file extensions (with leading dot, lowercase) to tags.
var extensionTags = map[string]Tag{
	".c":     TagC,
	".h":     TagC,
	".cc":    TagCPP,
	".cpp":   TagCPP,
	".cxx":   TagCPP,
	".hpp":   TagCPP,
	".hh":    TagCPP,
	".cs":    TagCSharp,
	".go":    TagGo,
	".java":  TagJava,
	".js":    TagJavaScript,
	".jsx":   TagJavaScript,
	".mjs":   TagJavaScript,
	".php":   TagPHP,
	".py":    TagPython,
	".rb":    TagRuby,
	".rs":    TagRust,
	".sh":    TagShell,
	".bash":  TagShell,
	".swift": TagSwift,
	".ts":    TagTypeScript,
	".tsx":   TagTypeScript,
}

// filenameTags maps well-known extension-less filenames to tags.
var filenameTags = map[string]Tag{
	"Makefile":    TagMakefile,
	"makefile":    TagMakefile,
	"GNUmakefile": TagMakefile,
	"Rakefile":    TagRuby,
	"Gemfile":     TagRuby,
	"Dockerfile":  TagShell,
}

// Classify maps a file path to a language tag. It never fails; unknown
// paths yield TagOther.
func Classify(path string) Tag {
	base := filepath.Base(path)

	ext := strings.ToLower(filepath.Ext(base))
	if tag, ok := extensionTags[ext]; ok {
		return tag
	}

	if tag, ok := filenameTags[base]; ok {
		return tag
	}

	// Fall back to enry's filename strategies (path only, no content).
	// The result is normalized onto our tag set; languages without a
	// lexical table still classify but scan in unknown-language mode.
	if name := enry.GetLanguage(base, nil); name != "" {
		if tag, ok := enryTags[name]; ok {
			return tag
		}
	}

	return TagOther
}

// enryTags maps enry language names onto our tag set.
var enryTags = map[string]Tag{
	"C":          TagC,
	"C++":        TagCPP,
	"C#":         TagCSharp,
	"Go":         TagGo,
	"Java":       TagJava,
	"JavaScript": TagJavaScript,
	"Makefile":   TagMakefile,
	"PHP":        TagPHP,
	"Python":     TagPython,
	"Ruby":       TagRuby,
	"Rust":       TagRust,
	"Shell":      TagShell,
	"Swift":      TagSwift,
	"TypeScript": TagTypeScript,
}

// Spec holds the lexical tables for one language: comment markers and the
// decision tokens counted by the complexity heuristic.
type Spec struct {
	// LineComment starts a comment running to end of line. Empty if the
	// language has none.
	LineComment string
	// BlockStart and BlockEnd delimit block comments. Empty if the
	// language has none.
	BlockStart string
	BlockEnd   string
	// DecisionKeywords are word tokens counted as decision points.
	DecisionKeywords []string
	// DecisionOperators are operator tokens counted as decision points
	// (substring match on code text, e.g. "&&").
	DecisionOperators []string
}

// cKeywords is the decision keyword set shared by the C family.
var cKeywords = []string{"if", "else", "for", "while", "case", "catch", "switch"}

// cOperators is the decision operator set shared by the C family.
var cOperators = []string{"&&", "||", "?"}

// specs is the process-wide read-only table of language specs. Languages
// absent from this table scan in unknown-language mode (every non-blank
// line is code, complexity fixed at 1).
var specs = map[Tag]Spec{
	TagC:      {LineComment: "//", BlockStart: "/*", BlockEnd: "*/", DecisionKeywords: cKeywords, DecisionOperators: cOperators},
	TagCPP:    {LineComment: "//", BlockStart: "/*", BlockEnd: "*/", DecisionKeywords: cKeywords, DecisionOperators: cOperators},
	TagCSharp: {LineComment: "//", BlockStart: "/*", BlockEnd: "*/", DecisionKeywords: cKeywords, DecisionOperators: cOperators},
	TagGo: {
		LineComment:       "//",
		BlockStart:        "/*",
		BlockEnd:          "*/",
		DecisionKeywords:  []string{"if", "for", "case", "select"},
		DecisionOperators: []string{"&&", "||"},
	},
	TagJava: {LineComment: "//", BlockStart: "/*", BlockEnd: "*/", DecisionKeywords: cKeywords, DecisionOperators: cOperators},
	TagJavaScript: {
		LineComment:       "//",
		BlockStart:        "/*",
		BlockEnd:          "*/",
		DecisionKeywords:  cKeywords,
		DecisionOperators: cOperators,
	},
	TagTypeScript: {
		LineComment:       "//",
		BlockStart:        "/*",
		BlockEnd:          "*/",
		DecisionKeywords:  cKeywords,
		DecisionOperators: cOperators,
	},
	TagPHP: {
		LineComment:       "//",
		BlockStart:        "/*",
		BlockEnd:          "*/",
		DecisionKeywords:  []string{"if", "elseif", "else", "for", "foreach", "while", "case", "catch"},
		DecisionOperators: []string{"&&", "||", "?"},
	},
	TagPython: {
		LineComment:      "#",
		DecisionKeywords: []string{"if", "elif", "for", "while", "except", "and", "or"},
	},
	TagRuby: {
		LineComment:       "#",
		BlockStart:        "=begin",
		BlockEnd:          "=end",
		DecisionKeywords:  []string{"if", "elsif", "unless", "for", "while", "until", "when", "rescue", "and", "or"},
		DecisionOperators: []string{"&&", "||"},
	},
	TagRust: {
		LineComment:       "//",
		BlockStart:        "/*",
		BlockEnd:          "*/",
		DecisionKeywords:  []string{"if", "for", "while", "loop", "match"},
		DecisionOperators: []string{"&&", "||"},
	},
	TagSwift: {
		LineComment:       "//",
		BlockStart:        "/*",
		BlockEnd:          "*/",
		DecisionKeywords:  []string{"if", "guard", "for", "while", "case", "catch"},
		DecisionOperators: []string{"&&", "||", "?"},
	},
	TagShell: {
		LineComment:       "#",
		DecisionKeywords:  []string{"if", "elif", "for", "while", "until", "case"},
		DecisionOperators: []string{"&&", "||"},
	},
	TagMakefile: {
		LineComment:      "#",
		DecisionKeywords: []string{"ifeq", "ifneq", "ifdef", "ifndef"},
	},
}

// SpecFor returns the lexical spec for a tag. The second return is false
// for languages without a table (including TagOther).
func SpecFor(tag Tag) (Spec, bool) {
	spec, ok := specs[tag]

	return spec, ok
}

// IsVendored reports whether a path looks like vendored or generated
// third-party code that tree metrics should not count.
func IsVendored(path string) bool {
	return enry.IsVendor(path)
}
