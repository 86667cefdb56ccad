package codegraph

import (
	tree_sitter_kotlin "github.com/tree-sitter-grammars/tree-sitter-kotlin/bindings/go"
	tree_sitter_c_sharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

type builtinGrammar struct {
	lang Language
	loc  Location
	load LoaderFunc
}

var builtinGrammars = []builtinGrammar{
	{LangJava, Location{"github.com/tree-sitter/tree-sitter-java/bindings/go", "Language"}, tree_sitter_java.Language},
	{LangKotlin, Location{"github.com/tree-sitter-grammars/tree-sitter-kotlin/bindings/go", "Language"}, tree_sitter_kotlin.Language},
	{LangCSharp, Location{"github.com/tree-sitter/tree-sitter-c-sharp/bindings/go", "Language"}, tree_sitter_c_sharp.Language},
	{LangPython, Location{"github.com/tree-sitter/tree-sitter-python/bindings/go", "Language"}, tree_sitter_python.Language},
	{LangJavaScript, Location{"github.com/tree-sitter/tree-sitter-javascript/bindings/go", "Language"}, tree_sitter_javascript.Language},
	{LangTypeScript, Location{"github.com/tree-sitter/tree-sitter-typescript/bindings/go", "LanguageTypescript"}, tree_sitter_typescript.LanguageTypescript},
	{LangTSX, Location{"github.com/tree-sitter/tree-sitter-typescript/bindings/go", "LanguageTSX"}, tree_sitter_typescript.LanguageTSX},
	{LangGo, Location{"github.com/tree-sitter/tree-sitter-go/bindings/go", "Language"}, tree_sitter_go.Language},
	{LangRust, Location{"github.com/tree-sitter/tree-sitter-rust/bindings/go", "Language"}, tree_sitter_rust.Language},
}

// grammarAliases lists languages without a grammar of their own.
var grammarAliases = map[Language]Language{
	LangJSX: LangJavaScript,
}
