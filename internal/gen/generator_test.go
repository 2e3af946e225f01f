package gen

import (
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"typereflect/internal/analyze"
	"typereflect/internal/diagnostic"
)

const zooPath = "example.com/zoo"

// zooGraph builds a graph for a package example.com/zoo with a single file
// declaring Dog and Kennel.
func zooGraph(t *testing.T, dir string) *analyze.TypeGraph {
	t.Helper()

	zoo := types.NewPackage(zooPath, "zoo")
	timePkg := types.NewPackage("time", "time")
	otherTime := types.NewPackage("example.com/other/time", "time")

	duration := types.NewNamed(types.NewTypeName(token.NoPos, timePkg, "Duration", nil), types.Typ[types.Int64], nil)
	clock := types.NewNamed(types.NewTypeName(token.NoPos, otherTime, "Clock", nil), types.NewStruct(nil, nil), nil)

	animal := types.NewNamed(types.NewTypeName(token.NoPos, zoo, "Animal", nil), types.NewStruct(nil, nil), nil)
	dog := types.NewNamed(types.NewTypeName(token.NoPos, zoo, "Dog", nil), types.NewStruct(nil, nil), nil)
	kennel := types.NewNamed(types.NewTypeName(token.NoPos, zoo, "Kennel", nil), types.NewStruct(nil, nil), nil)

	sig := types.NewSignatureType(nil, nil, nil,
		types.NewTuple(types.NewParam(token.NoPos, zoo, "d", duration)),
		types.NewTuple(types.NewParam(token.NoPos, nil, "", types.Universe.Lookup("error").Type())),
		false)

	graph := analyze.NewTypeGraph()

	dogInfo := &analyze.TypeInfo{
		ID:        analyze.TypeID{PkgPath: zooPath, Name: "Dog"},
		ClassName: "Doggo",
		GoType:    dog,
		Attributes: []analyze.FieldInfo{
			{Name: "Name", Type: types.Typ[types.String], Exported: true, Metadata: []string{`"description"`, `"the name"`}},
			{Name: "ID", Type: types.Typ[types.Int], Exported: true, ReadOnly: true},
			{Name: "nap", Type: duration, Metadata: []string{`"max"`, `time.Hour`}},
			{Name: "Clock", Type: types.NewPointer(clock), Exported: true},
		},
		Methods: []analyze.MethodInfo{
			{Name: "Bark", Signature: sig},
			{Name: "Sleep", PointerReceiver: true, Signature: sig, Metadata: []string{`"mutates"`, `true`}},
		},
		Parents: []analyze.RelationInfo{
			{Name: "Animal", Type: animal, Embedded: true},
		},
		UsedTypes: []analyze.RelationInfo{
			{Name: "time.Duration", Type: duration},
			{Name: "[]string", Type: types.NewSlice(types.Typ[types.String])},
		},
		Imports: map[string]string{"time": "time"},
	}

	kennelInfo := &analyze.TypeInfo{
		ID:        analyze.TypeID{PkgPath: zooPath, Name: "Kennel"},
		ClassName: "Kennel",
		GoType:    kennel,
	}

	graph.Types[dogInfo.ID] = dogInfo
	graph.Types[kennelInfo.ID] = kennelInfo

	graph.Packages[zooPath] = &analyze.PackageInfo{
		Path: zooPath,
		Name: "zoo",
		Dir:  dir,
		Files: []*analyze.FileInfo{
			{Path: filepath.Join(dir, "dog.go"), Types: []analyze.TypeID{dogInfo.ID, kennelInfo.ID}},
		},
	}

	return graph
}

func TestGenerator_Generate(t *testing.T) {
	dir := t.TempDir()

	files, err := NewGenerator(DefaultGeneratorConfig(), nil).Generate(zooGraph(t, dir))
	require.NoError(t, err)
	require.Len(t, files, 1)

	file := files[0]
	assert.Equal(t, "dog_reflection.go", file.Filename)
	assert.Equal(t, filepath.Join(dir, "dog_reflection.go"), file.Path())
	assert.Equal(t, []string{"Dog", "Kennel"}, file.Types)

	content := string(file.Content)

	assert.True(t, strings.HasPrefix(content, analyze.GeneratedHeader+"\n"))
	assert.Contains(t, content, "package zoo")
	assert.Contains(t, content, `reflection.Register[Dog](reflection.Info{`)
	assert.Contains(t, content, `"Doggo"`)
	assert.Contains(t, content, `reflection.Field("Name", func(v *Dog) *string { return &v.Name }, "description", "the name")`)
	assert.Contains(t, content, `reflection.ReadOnlyField("ID", func(v *Dog) *int { return &v.ID })`)
	assert.Contains(t, content, `reflection.Field("nap", func(v *Dog) *time.Duration { return &v.nap }, "max", time.Hour)`)
	assert.Contains(t, content, `reflection.Field("Clock", func(v *Dog) **time2.Clock { return &v.Clock })`)
	assert.Contains(t, content, `reflection.Method[Dog]("Bark", Dog.Bark)`)
	assert.Contains(t, content, `reflection.Method[Dog]("Sleep", (*Dog).Sleep, "mutates", true)`)
	assert.Contains(t, content, `reflection.Parent[Animal]()`)
	assert.Contains(t, content, `reflection.Uses[time.Duration]()`)
	assert.Contains(t, content, `reflection.Uses[[]string]()`)
	assert.Contains(t, content, `reflection.Register[Kennel](reflection.Info{`)
	assert.NotContains(t, content, "Attributes: []reflection.AttributeDescriptor{}", "empty facets are left out")

	f, err := parser.ParseFile(token.NewFileSet(), file.Filename, file.Content, parser.ImportsOnly)
	require.NoError(t, err)

	imports := make(map[string]string)
	for _, spec := range f.Imports {
		p, _ := strconv.Unquote(spec.Path.Value)

		name := ""
		if spec.Name != nil {
			name = spec.Name.Name
		}

		imports[p] = name
	}

	assert.Equal(t, map[string]string{
		"time":                   "",
		"example.com/other/time": "time2",
		DefaultReflectionPath:    "",
	}, imports)
}

func TestGenerator_OutputIsParseable(t *testing.T) {
	files, err := NewGenerator(DefaultGeneratorConfig(), nil).Generate(zooGraph(t, t.TempDir()))
	require.NoError(t, err)

	_, err = parser.ParseFile(token.NewFileSet(), "", files[0].Content, parser.AllErrors)
	assert.NoError(t, err)
}

func TestGenerator_RefusesGraphWithErrors(t *testing.T) {
	graph := zooGraph(t, t.TempDir())
	graph.Diagnostics.AddError(diagnostic.CodeUnknownType, `unknown type "Anmal"`, "Dog", "")

	_, err := NewGenerator(DefaultGeneratorConfig(), nil).Generate(graph)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Anmal")
}

func TestGenerator_CustomSuffix(t *testing.T) {
	cfg := DefaultGeneratorConfig()
	cfg.Suffix = ".reflect.go"

	g := NewGenerator(cfg, nil)
	assert.Equal(t, "dog.reflect.go", g.OutputName("/src/zoo/dog.go"))

	assert.Equal(t, "dog_reflection.go", NewGenerator(GeneratorConfig{}, nil).OutputName("dog.go"), "zero config falls back to defaults")
}

func TestGenerator_Shapes(t *testing.T) {
	graph, err := analyze.NewAnalyzer().LoadPackages("typereflect/examples/shapes")
	require.NoError(t, err)

	files, err := NewGenerator(DefaultGeneratorConfig(), nil).Generate(graph)
	require.NoError(t, err)
	require.Len(t, files, 2)

	byName := make(map[string]string)
	for _, f := range files {
		byName[f.Filename] = string(f.Content)
	}

	base := byName["base_reflection.go"]
	assert.Contains(t, base, `reflection.ReadOnlyField("ID", func(v *Base) *int { return &v.ID })`)
	assert.Contains(t, base, `reflection.Method[Base]("Label", Base.Label, "description", "display label")`)
	assert.NotContains(t, base, "Layer")
	assert.NotContains(t, base, `"time"`)

	shapes := byName["shapes_reflection.go"]
	assert.Contains(t, shapes, `"time"`)
	assert.Contains(t, shapes, `reflection.Method[Rect]("Resize", (*Rect).Resize, "mutates", true)`)
	assert.Contains(t, shapes, `reflection.Method[Circle]("grow", (*Circle).grow)`)
	assert.Contains(t, shapes, `reflection.Method[Canvas]("Add", (*Canvas).Add)`)
	assert.Contains(t, shapes, `reflection.Field("rects", func(v *Canvas) *[]Rect { return &v.rects })`)
	assert.Contains(t, shapes, `reflection.Uses[time.Duration]()`)
	assert.NotContains(t, shapes, "Cache")

	// The checked in providers are what the generator produces.
	for name, content := range byName {
		onDisk, err := os.ReadFile(filepath.Join(graph.Packages["typereflect/examples/shapes"].Dir, name))
		require.NoError(t, err)
		assert.Equal(t, string(onDisk), content, name)
	}
}

func TestWriteFiles(t *testing.T) {
	dir := t.TempDir()
	files := []GeneratedFile{{Dir: dir, Filename: "a_reflection.go", Content: []byte("package a\n")}}

	written, err := WriteFiles(files)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a_reflection.go")}, written)

	written, err = WriteFiles(files)
	require.NoError(t, err)
	assert.Empty(t, written, "unchanged files are not rewritten")
}

func TestRemoveStale(t *testing.T) {
	dir := t.TempDir()

	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), filePerm))
	}

	write("keep_reflection.go", analyze.GeneratedHeader+"\n\npackage a\n")
	write("stale_reflection.go", analyze.GeneratedHeader+"\n\npackage a\n")
	write("manual_reflection.go", "package a\n")

	keep := []GeneratedFile{{Dir: dir, Filename: "keep_reflection.go"}}

	removed, err := RemoveStale([]string{dir}, analyze.DefaultSuffix, keep)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "stale_reflection.go")}, removed)

	assert.FileExists(t, filepath.Join(dir, "keep_reflection.go"))
	assert.FileExists(t, filepath.Join(dir, "manual_reflection.go"), "hand written files are never removed")
	assert.NoFileExists(t, filepath.Join(dir, "stale_reflection.go"))
}

func TestWriteDebugUnformatted(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, writeDebugUnformatted(dir, "a_reflection.go", []byte("package a\nfunc {")))
	assert.FileExists(t, filepath.Join(dir, "_a_reflection.unformatted.go"))

	assert.NoError(t, writeDebugUnformatted("", "a.go", nil))
}
