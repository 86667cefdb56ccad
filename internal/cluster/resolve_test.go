package cluster

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/codegraph/internal/codegraph"
)

func TestResolver_Resolve(t *testing.T) {
	files := []string{
		"web/src/app.ts",
		"web/src/util/index.ts",
		"web/src/logger.tsx",
		"py/pkg/__init__.py",
		"py/pkg/models.py",
		"py/pkg/sub/views.py",
		"py/pkg/sub/helpers.py",
		"rs/src/lib.rs",
		"rs/src/model.rs",
		"rs/src/net/mod.rs",
		"rs/src/net/tcp.rs",
		"java/src/com/acme/Shape.java",
		"java/src/com/acme/Circle.java",
		"java/src/com/acme/util/Strings.java",
		"cs/Acme/Shapes/Circle.cs",
		"cs/Acme/Shapes/Square.cs",
		"kt/com/example/util/Text.kt",
	}
	r := NewResolver("", files)

	tests := []struct {
		name string
		lang codegraph.Language
		imp  codegraph.ImportInfo
		want []string
	}{
		{"ts relative", codegraph.LangTypeScript,
			codegraph.ImportInfo{Path: "./logger", FilePath: "web/src/app.ts"}, []string{"web/src/logger.tsx"}},
		{"ts index", codegraph.LangTypeScript,
			codegraph.ImportInfo{Path: "./util", FilePath: "web/src/app.ts"}, []string{"web/src/util/index.ts"}},
		{"ts parent", codegraph.LangTypeScript,
			codegraph.ImportInfo{Path: "../app", FilePath: "web/src/util/index.ts"}, []string{"web/src/app.ts"}},
		{"ts package", codegraph.LangTypeScript,
			codegraph.ImportInfo{Path: "react", FilePath: "web/src/app.ts"}, nil},
		{"py relative", codegraph.LangPython,
			codegraph.ImportInfo{Path: ".helpers", FilePath: "py/pkg/sub/views.py"}, []string{"py/pkg/sub/helpers.py"}},
		{"py parent", codegraph.LangPython,
			codegraph.ImportInfo{Path: "..models", FilePath: "py/pkg/sub/views.py"}, []string{"py/pkg/models.py"}},
		{"py from dot", codegraph.LangPython,
			codegraph.ImportInfo{Path: ".", ImportedNames: []string{"helpers"}, FilePath: "py/pkg/sub/views.py"}, []string{"py/pkg/sub/helpers.py"}},
		{"py package init", codegraph.LangPython,
			codegraph.ImportInfo{Path: "..", FilePath: "py/pkg/sub/views.py"}, []string{"py/pkg/__init__.py"}},
		{"py absolute", codegraph.LangPython,
			codegraph.ImportInfo{Path: "pkg.models", FilePath: "py/pkg/sub/views.py"}, []string{"py/pkg/models.py"}},
		{"py stdlib", codegraph.LangPython,
			codegraph.ImportInfo{Path: "os", FilePath: "py/pkg/models.py"}, nil},
		{"rust crate", codegraph.LangRust,
			codegraph.ImportInfo{Path: "crate::model::User", FilePath: "rs/src/lib.rs"}, []string{"rs/src/model.rs"}},
		{"rust mod.rs", codegraph.LangRust,
			codegraph.ImportInfo{Path: "crate::net", FilePath: "rs/src/model.rs"}, []string{"rs/src/net/mod.rs"}},
		{"rust self", codegraph.LangRust,
			codegraph.ImportInfo{Path: "self::tcp", FilePath: "rs/src/net/mod.rs"}, []string{"rs/src/net/tcp.rs"}},
		{"rust super", codegraph.LangRust,
			codegraph.ImportInfo{Path: "super::model::{User, Repo}", FilePath: "rs/src/net/tcp.rs"}, []string{"rs/src/model.rs"}},
		{"rust external", codegraph.LangRust,
			codegraph.ImportInfo{Path: "std::io", FilePath: "rs/src/lib.rs"}, nil},
		{"java class", codegraph.LangJava,
			codegraph.ImportInfo{Path: "com.acme.Shape", FilePath: "java/src/com/acme/Circle.java"}, []string{"java/src/com/acme/Shape.java"}},
		{"java static", codegraph.LangJava,
			codegraph.ImportInfo{Path: "com.acme.util.Strings.join", IsStatic: true, FilePath: "java/src/com/acme/Circle.java"}, []string{"java/src/com/acme/util/Strings.java"}},
		{"java wildcard", codegraph.LangJava,
			codegraph.ImportInfo{Path: "com.acme.util", IsWildcard: true, FilePath: "java/src/com/acme/Circle.java"}, []string{"java/src/com/acme/util/Strings.java"}},
		{"java jdk", codegraph.LangJava,
			codegraph.ImportInfo{Path: "java.util.List", FilePath: "java/src/com/acme/Circle.java"}, nil},
		{"csharp namespace", codegraph.LangCSharp,
			codegraph.ImportInfo{Path: "Acme.Shapes", FilePath: "cs/Program.cs"}, []string{"cs/Acme/Shapes/Circle.cs", "cs/Acme/Shapes/Square.cs"}},
		{"kotlin class", codegraph.LangKotlin,
			codegraph.ImportInfo{Path: "com.example.util.Text", FilePath: "kt/Main.kt"}, []string{"kt/com/example/util/Text.kt"}},
		{"self import dropped", codegraph.LangJava,
			codegraph.ImportInfo{Path: "com.acme.Circle", FilePath: "java/src/com/acme/Circle.java"}, nil},
		{"unsupported language", codegraph.Language("cobol"),
			codegraph.ImportInfo{Path: "./x", FilePath: "a"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(tt.imp, tt.lang)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolver_GoModule(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/app\n\ngo 1.22\n"), 0o644))

	r := NewResolver(root, []string{
		"main.go",
		"internal/store/store.go",
		"internal/store/mem.go",
		"internal/store/store_test.go",
	})

	got := r.Resolve(codegraph.ImportInfo{Path: "example.com/app/internal/store", FilePath: "main.go"}, codegraph.LangGo)
	assert.Equal(t, []string{"internal/store/mem.go", "internal/store/store.go"}, got)

	assert.Empty(t, r.Resolve(codegraph.ImportInfo{Path: "fmt", FilePath: "main.go"}, codegraph.LangGo))
	assert.Empty(t, r.Resolve(codegraph.ImportInfo{Path: "example.com/application", FilePath: "main.go"}, codegraph.LangGo))
}

func TestResolver_NoGoMod(t *testing.T) {
	r := NewResolver(t.TempDir(), []string{"a/a.go"})
	assert.Empty(t, r.Resolve(codegraph.ImportInfo{Path: "example.com/app/a", FilePath: "main.go"}, codegraph.LangGo))
}

func TestReadModulePath(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "go.mod")
	require.NoError(t, os.WriteFile(p, []byte("// comment\nmodule \"quoted.dev/x\"\n"), 0o644))
	assert.Equal(t, "quoted.dev/x", readModulePath(p))
	assert.Equal(t, "", readModulePath(filepath.Join(dir, "missing.mod")))
}
