package lang_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/maikgreubel/sourcetree/pkg/lang"
)

func TestClassifyByExtension(t *testing.T) {
	cases := map[string]lang.Tag{
		"main.py":          lang.TagPython,
		"src/app/main.go":  lang.TagGo,
		"lib/util.js":      lang.TagJavaScript,
		"Server.java":      lang.TagJava,
		"native/bridge.c":  lang.TagC,
		"native/bridge.h":  lang.TagC,
		"engine.cpp":       lang.TagCPP,
		"Program.cs":       lang.TagCSharp,
		"app/models.rb":    lang.TagRuby,
		"index.php":        lang.TagPHP,
		"mod.rs":           lang.TagRust,
		"App.swift":        lang.TagSwift,
		"component.tsx":    lang.TagTypeScript,
		"scripts/build.sh": lang.TagShell,
	}

	for path, want := range cases {
		require.Equal(t, want, lang.Classify(path), "path %q", path)
	}
}

func TestClassifyUppercaseExtension(t *testing.T) {
	require.Equal(t, lang.TagC, lang.Classify("LEGACY.C"))
}

func TestClassifyKnownFilenames(t *testing.T) {
	require.Equal(t, lang.TagMakefile, lang.Classify("Makefile"))
	require.Equal(t, lang.TagMakefile, lang.Classify("sub/dir/Makefile"))
	require.Equal(t, lang.TagRuby, lang.Classify("Rakefile"))
	require.Equal(t, lang.TagShell, lang.Classify("Dockerfile"))
}

func TestClassifyUnknown(t *testing.T) {
	require.Equal(t, lang.TagOther, lang.Classify("noext"))
	require.Equal(t, lang.TagOther, lang.Classify("archive.xyzzy"))
}

func TestClassifyIsDeterministic(t *testing.T) {
	first := lang.Classify("pkg/thing.go")
	for range 10 {
		require.Equal(t, first, lang.Classify("pkg/thing.go"))
	}
}

func TestSpecFor(t *testing.T) {
	spec, ok := lang.SpecFor(lang.TagGo)
	require.True(t, ok)
	require.Equal(t, "//", spec.LineComment)
	require.Equal(t, "/*", spec.BlockStart)
	require.Equal(t, "*/", spec.BlockEnd)
	require.Contains(t, spec.DecisionKeywords, "if")

	_, ok = lang.SpecFor(lang.TagOther)
	require.False(t, ok)
}

func TestPythonSpecHasNoBlockComment(t *testing.T) {
	spec, ok := lang.SpecFor(lang.TagPython)
	require.True(t, ok)
	require.Equal(t, "#", spec.LineComment)
	require.Empty(t, spec.BlockStart)
}
