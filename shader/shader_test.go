package shader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/gogpu/gputypes"
)

func mapRegistry(files map[string]string) *Registry {
	m := fstest.MapFS{}
	for name, text := range files {
		m[name] = &fstest.MapFile{Data: []byte(text)}
	}
	return &Registry{Builtin: m}
}

func TestResolveBuiltin(t *testing.T) {
	reg := mapRegistry(map[string]string{"foo.glsl": "void foo();\n"})
	got, found, err := reg.Resolve("foo")
	if err != nil || !found {
		t.Fatalf("Resolve(foo) = %q, %v, %v", got, found, err)
	}
	if got != "void foo();\n" {
		t.Errorf("Resolve(foo) = %q", got)
	}
	if _, found, err := reg.Resolve("bar"); found || err != nil {
		t.Errorf("Resolve(bar) = found %v, err %v, want not found", found, err)
	}
}

func TestResolveOverrideWins(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "foo.glsl"), []byte("override"), 0o600); err != nil {
		t.Fatal(err)
	}
	reg := mapRegistry(map[string]string{"foo.glsl": "builtin", "bar.glsl": "builtin bar"})
	reg.OverrideDir = dir

	if got, _, _ := reg.Resolve("foo"); got != "override" {
		t.Errorf("Resolve(foo) = %q, want override", got)
	}
	if got, _, _ := reg.Resolve("bar"); got != "builtin bar" {
		t.Errorf("Resolve(bar) = %q, want builtin fallback", got)
	}
}

func TestResolveOverrideReadError(t *testing.T) {
	dir := t.TempDir()
	// A directory named like the file cannot be read as one.
	if err := os.Mkdir(filepath.Join(dir, "foo.glsl"), 0o700); err != nil {
		t.Fatal(err)
	}
	reg := mapRegistry(map[string]string{"foo.glsl": "builtin"})
	reg.OverrideDir = dir

	_, _, err := reg.Resolve("foo")
	var oe *OverrideError
	if !errors.As(err, &oe) {
		t.Fatalf("Resolve(foo) error = %v, want *OverrideError", err)
	}
	if oe.Name != "foo" {
		t.Errorf("OverrideError.Name = %q, want foo", oe.Name)
	}
}

func TestExpandLineMarkers(t *testing.T) {
	reg := mapRegistry(map[string]string{
		"main.glsl": "line one\n#include foo\nline three\n",
		"foo.glsl":  "foo body\n",
	})
	got, found, err := (&Expander{Registry: reg}).Expand("main")
	if err != nil || !found {
		t.Fatalf("Expand() = %v, %v", found, err)
	}
	want := "line one\n" +
		LineReset +
		"foo body\n" +
		"#line 3\n" +
		"line three\n"
	if got != want {
		t.Errorf("Expand() =\n%s\nwant\n%s", got, want)
	}
}

func TestExpandMultipleIncludes(t *testing.T) {
	reg := mapRegistry(map[string]string{
		"a.glsl": "A\n",
		"b.glsl": "B\n",
	})
	got, err := (&Expander{Registry: reg}).ExpandSource("main", "#include a, b\r\nend")
	if err != nil {
		t.Fatalf("ExpandSource() error = %v", err)
	}
	want := LineReset + "A\n" + LineReset + "B\n" + "#line 2\n" + "end\n"
	if got != want {
		t.Errorf("ExpandSource() = %q, want %q", got, want)
	}
}

func TestExpandNested(t *testing.T) {
	reg := mapRegistry(map[string]string{
		"a.glsl": "#include b\na2\n",
		"b.glsl": "b1\n",
	})
	got, err := (&Expander{Registry: reg}).ExpandSource("main", "m1\n#include a\n")
	if err != nil {
		t.Fatalf("ExpandSource() error = %v", err)
	}
	want := "m1\n" + LineReset + LineReset + "b1\n" + "#line 2\n" + "a2\n" + "#line 3\n"
	if got != want {
		t.Errorf("ExpandSource() = %q, want %q", got, want)
	}
}

func TestExpandMissingIncludeSkipped(t *testing.T) {
	reg := mapRegistry(nil)
	got, err := (&Expander{Registry: reg}).ExpandSource("main", "#include nope\nx\n")
	if err != nil {
		t.Fatalf("ExpandSource() error = %v", err)
	}
	if got != "#line 2\nx\n" {
		t.Errorf("ExpandSource() = %q", got)
	}
}

func TestExpandCycleHitsDepthLimit(t *testing.T) {
	reg := mapRegistry(map[string]string{
		"a.glsl": "#include b\n",
		"b.glsl": "#include a\n",
	})
	_, _, err := (&Expander{Registry: reg, MaxDepth: 8}).Expand("a")
	if !errors.Is(err, ErrIncludeDepth) {
		t.Fatalf("Expand() error = %v, want ErrIncludeDepth", err)
	}
	var ie *IncludeError
	if !errors.As(err, &ie) || len(ie.Chain) != 10 {
		t.Errorf("IncludeError chain = %v, want 10 entries", ie)
	}
}

func TestExpandDepthBoundary(t *testing.T) {
	reg := mapRegistry(map[string]string{
		"a.glsl": "#include b\n",
		"b.glsl": "leaf\n",
	})
	if _, _, err := (&Expander{Registry: reg, MaxDepth: 1}).Expand("a"); err != nil {
		t.Errorf("depth 1 with MaxDepth 1: error = %v", err)
	}
	reg = mapRegistry(map[string]string{
		"a.glsl": "#include b\n",
		"b.glsl": "#include c\n",
		"c.glsl": "leaf\n",
	})
	if _, _, err := (&Expander{Registry: reg, MaxDepth: 1}).Expand("a"); !errors.Is(err, ErrIncludeDepth) {
		t.Errorf("depth 2 with MaxDepth 1: error = %v, want ErrIncludeDepth", err)
	}
}

func TestBuildLayout(t *testing.T) {
	reg := mapRegistry(map[string]string{
		"prog.glsl": "shared\n",
		"prog.vs":   "vertex only\n",
	})
	features := Defines("alpha_pass")
	vs, fs, err := Build(reg, BuildOptions{Name: "prog", Flavor: gputypes.GLBackendGLES, Features: features})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	wantVS := VersionGLES + "// prog\n" + KindVertex + "#define WR_FEATURE_ALPHA_PASS\n" + "shared\n" + "vertex only\n"
	if vs != wantVS {
		t.Errorf("vs = %q, want %q", vs, wantVS)
	}
	wantFS := VersionGLES + "// prog\n" + KindFragment + "#define WR_FEATURE_ALPHA_PASS\n" + "shared\n"
	if fs != wantFS {
		t.Errorf("fs = %q, want %q", fs, wantFS)
	}
}

func TestBuildDeterministic(t *testing.T) {
	reg := NewRegistry("")
	opts := BuildOptions{Name: "ps_quad", Features: Defines("alpha_pass"), MaxDepth: DefaultMaxIncludeDepth}
	vs1, fs1, err := Build(reg, opts)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	vs2, fs2, err := Build(reg, opts)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if vs1 != vs2 || fs1 != fs2 {
		t.Error("Build() output differs between identical calls")
	}
	if !strings.HasPrefix(vs1, VersionGL) {
		t.Errorf("vs prefix = %q, want %q", vs1[:len(VersionGL)], VersionGL)
	}
	if !strings.Contains(fs1, "uniform sampler2DArray sColor0;") {
		t.Error("fs missing sampler declaration")
	}
	if strings.Contains(vs1, IncludePrefix) {
		t.Error("vs still contains an include directive")
	}
}

func TestBuildLegacyOnly(t *testing.T) {
	vs, fs, err := Build(NewRegistry(""), BuildOptions{Name: "ps_clear"})
	if err != nil {
		t.Fatalf("Build(ps_clear) error = %v", err)
	}
	if want := VersionGL + "// ps_clear\n" + KindVertex; !strings.HasPrefix(vs, want) {
		t.Errorf("vs prefix = %q, want %q", vs[:min(len(vs), len(want))], want)
	}
	if !strings.Contains(vs, "vColor = aColor;") || !strings.Contains(fs, "oFragColor = vColor;") {
		t.Error("legacy stage sources not appended")
	}
}

func TestBuildNotFound(t *testing.T) {
	_, _, err := Build(mapRegistry(nil), BuildOptions{Name: "missing"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Build(missing) error = %v, want ErrNotFound", err)
	}
}

func TestBuildOverrideErrorPropagates(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "shared.glsl"), 0o700); err != nil {
		t.Fatal(err)
	}
	_, _, err := Build(NewRegistry(dir), BuildOptions{Name: "ps_quad"})
	var oe *OverrideError
	if !errors.As(err, &oe) {
		t.Errorf("Build() error = %v, want *OverrideError", err)
	}
}

func TestVersion(t *testing.T) {
	if got := Version(gputypes.GLBackendGL); got != VersionGL {
		t.Errorf("Version(GL) = %q", got)
	}
	if got := Version(gputypes.GLBackendGLES); got != VersionGLES {
		t.Errorf("Version(GLES) = %q", got)
	}
}
