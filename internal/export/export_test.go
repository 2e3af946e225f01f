package export

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"typereflect/internal/analyze"
)

func shapesModel(t *testing.T) *Model {
	t.Helper()

	graph, err := analyze.NewAnalyzer().LoadPackages("typereflect/examples/shapes")
	require.NoError(t, err)

	return Build(graph)
}

func findType(t *testing.T, m *Model, name string) Type {
	t.Helper()

	for _, p := range m.Packages {
		for _, ty := range p.Types {
			if ty.Name == name {
				return ty
			}
		}
	}

	t.Fatalf("type %s not exported", name)

	return Type{}
}

func TestBuild(t *testing.T) {
	m := shapesModel(t)

	require.Len(t, m.Packages, 1)
	assert.Equal(t, "shapes", m.Packages[0].Name)
	assert.Empty(t, m.Diagnostics)

	var names []string
	for _, ty := range m.Packages[0].Types {
		names = append(names, ty.Name)
	}

	assert.Equal(t, []string{"Point", "Base", "Rect", "Circle", "Canvas"}, names, "types keep source order")

	base := findType(t, m, "Base")
	assert.Equal(t, "Shape", base.ClassName)
	assert.Equal(t, "all", base.Mode)
	require.Len(t, base.Attributes, 2)
	assert.Equal(t, []string{"readonly"}, base.Attributes[1].Qualifiers)

	rect := findType(t, m, "Rect")
	require.Len(t, rect.Methods, 3)
	assert.Equal(t, "func() float64", rect.Methods[0].Type)
	assert.Empty(t, rect.Methods[0].Qualifiers)
	assert.Equal(t, "func(p Point) bool", rect.Methods[1].Type, "types of the package are unqualified")
	assert.Equal(t, []string{"mutating", "fallible"}, rect.Methods[2].Qualifiers)
	assert.Equal(t, Metadata{{Key: `"mutates"`, Value: "true"}}, rect.Methods[2].Metadata)

	require.Len(t, rect.Parents, 1)
	assert.Equal(t, Relation{Type: "Base", Embedded: true}, rect.Parents[0])
	assert.Equal(t, []Relation{{Type: "Point"}, {Type: "time.Duration"}}, rect.UsedTypes)

	fade := rect.Attributes[2]
	assert.Equal(t, "time.Duration", fade.Type)
	assert.Equal(t, Metadata{
		{Key: `"description"`, Value: `"fade-in time"`},
		{Key: `"unit"`, Value: "time.Millisecond"},
	}, fade.Metadata)

	canvas := findType(t, m, "Canvas")
	assert.Equal(t, "methods", canvas.Mode)
	assert.Equal(t, "func(rs ...Rect) int", canvas.Methods[0].Type)
}

func TestRoundTrip(t *testing.T) {
	m := shapesModel(t)

	data, err := Marshal(m)
	require.NoError(t, err)

	back, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, m.Version, back.Version)
	require.Len(t, back.Packages, 1)

	for i, ty := range m.Packages[0].Types {
		assert.Equal(t, ty.Name, back.Packages[0].Types[i].Name)
		assert.Equal(t, ty.ClassName, back.Packages[0].Types[i].ClassName)
	}

	assert.Equal(t, findType(t, m, "Rect").Attributes[2].Metadata, findType(t, back, "Rect").Attributes[2].Metadata)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, WriteFile(&Model{Version: Version}, path))

	_, err := Parse([]byte("version: [1"))
	assert.Error(t, err)
}

func TestMetadata_YAML(t *testing.T) {
	md := Metadata{{Key: `"z"`, Value: "1"}, {Key: `"a"`, Value: `"x"`}}

	data, err := yaml.Marshal(struct {
		M Metadata `yaml:"m"`
	}{md})
	require.NoError(t, err)
	z, a := strings.Index(string(data), "z"), strings.Index(string(data), "a")
	assert.True(t, z >= 0 && a > z, "keys keep their order: %s", data)

	var back struct {
		M Metadata `yaml:"m"`
	}
	require.NoError(t, yaml.Unmarshal(data, &back))
	assert.Equal(t, md, back.M)

	assert.Error(t, yaml.Unmarshal([]byte("m: [1, 2]"), &back))
}

func TestNewMetadata(t *testing.T) {
	assert.Nil(t, NewMetadata(nil))
	assert.Equal(t, Metadata{{Key: "a", Value: "b"}}, NewMetadata([]string{"a", "b"}))
}
