package codegraph

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want Language
		ok   bool
	}{
		{"java", LangJava, true},
		{"JAVA", LangJava, true},
		{" Kotlin ", LangKotlin, true},
		{"c#", LangCSharp, true},
		{"c_sharp", LangCSharp, true},
		{"c-sharp", LangCSharp, true},
		{"tsx", LangTSX, true},
		{"typescriptreact", LangTSX, true},
		{"jsx", LangJSX, true},
		{"golang", LangGo, true},
		{"rs", LangRust, true},
		{"cobol", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLanguage(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLanguageForPath(t *testing.T) {
	tests := []struct {
		path string
		want Language
		ok   bool
	}{
		{"src/Main.java", LangJava, true},
		{"app/build.gradle.kts", LangKotlin, true},
		{"Program.cs", LangCSharp, true},
		{"pkg/mod.py", LangPython, true},
		{"index.mjs", LangJavaScript, true},
		{"App.jsx", LangJSX, true},
		{"types/index.d.ts", LangTypeScript, true},
		{"App.TSX", LangTSX, true},
		{"main.go", LangGo, true},
		{"lib.rs", LangRust, true},
		{"README.md", "", false},
		{"Makefile", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := LanguageForPath(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtensions(t *testing.T) {
	exts := Extensions(LangPython)
	sort.Strings(exts)
	assert.Equal(t, []string{".py", ".pyi"}, exts)
	assert.Empty(t, Extensions(Language("cobol")))
}

func TestEveryLanguageHasADescriptor(t *testing.T) {
	for _, l := range AllLanguages {
		_, ok := DescriptorFor(l)
		assert.True(t, ok, "%s", l)
	}
}

func TestSupportedLanguages(t *testing.T) {
	a := New(WithLogger(discardLogger()))
	t.Cleanup(func() { _ = a.Close() })

	got := a.SupportedLanguages()
	assert.ElementsMatch(t, AllLanguages, got)
	assert.True(t, sort.SliceIsSorted(got, func(i, j int) bool { return got[i] < got[j] }))
}
