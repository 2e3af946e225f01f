package directive

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const source = `package shapes

// Rect is a rectangle.
//
//reflect:generate all
//reflect:class_name Rectangle
//reflect:parents Shape, geo.Area
type Rect struct {
	//reflect:metadata "unit", "px"
	Width float64 //reflect:readonly

	// Height is documented.
	Height float64
}
`

func parseRect(t *testing.T) (*ast.GenDecl, *ast.StructType) {
	t.Helper()

	file, err := parser.ParseFile(token.NewFileSet(), "rect.go", source, parser.ParseComments)
	require.NoError(t, err)

	decl := file.Decls[0].(*ast.GenDecl)
	spec := decl.Specs[0].(*ast.TypeSpec)

	return decl, spec.Type.(*ast.StructType)
}

func TestParse_TypeDirectives(t *testing.T) {
	decl, _ := parseRect(t)

	set := Parse(decl.Doc)
	require.Len(t, set, 3)

	gen, ok := set.Lookup(Generate)
	require.True(t, ok)
	assert.Equal(t, "all", gen.Args)
	assert.True(t, gen.Pos.IsValid())

	name, ok := set.Lookup(ClassName)
	require.True(t, ok)
	assert.Equal(t, "Rectangle", name.Args)

	parents, ok := set.Lookup(Parents)
	require.True(t, ok)

	list, err := SplitList(parents.Args)
	require.NoError(t, err)
	assert.Equal(t, []string{"Shape", "geo.Area"}, list)

	assert.Empty(t, set.Unknown(TypeLevel))
	assert.Equal(t, "Rect is a rectangle.\n", decl.Doc.Text(), "directives are not documentation")
}

func TestParse_MemberDirectives(t *testing.T) {
	_, st := parseRect(t)

	width := st.Fields.List[0]
	set := Parse(width.Doc, width.Comment)

	assert.True(t, set.Has(ReadOnly))
	assert.True(t, set.Has(Metadata))
	assert.False(t, set.Has(Off))

	height := st.Fields.List[1]
	assert.Empty(t, Parse(height.Doc, height.Comment))
}

func TestSet_LookupLastWins(t *testing.T) {
	set := Set{
		{Name: Generate, Args: "methods"},
		{Name: Metadata, Args: `"a", 1`},
		{Name: Generate, Args: "attributes"},
		{Name: "clas_name", Args: "X"},
	}

	gen, ok := set.Lookup(Generate)
	require.True(t, ok)
	assert.Equal(t, "attributes", gen.Args)
	assert.Len(t, set.All(Generate), 2)

	unknown := set.Unknown(TypeLevel)
	require.Len(t, unknown, 2)
	assert.Equal(t, Metadata, unknown[0].Name)
	assert.Equal(t, "clas_name", unknown[1].Name)
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
		wantErr  bool
	}{
		{"A", []string{"A"}, false},
		{"A, pkg.B", []string{"A", "pkg.B"}, false},
		{" *pkg.T ,[]int, ", []string{"*pkg.T", "[]int"}, false},
		{"Pair[int, string], map[string]int", []string{"Pair[int, string]", "map[string]int"}, false},
		{"func(a, b int) error, chan int", []string{"func(a, b int) error", "chan int"}, false},
		{"", nil, false},
		{"Pair[int", nil, true},
		{"A]", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := SplitList(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseMetadata(t *testing.T) {
	exprs, err := ParseMetadata(`"unit", "px", "min", -1, "timeout", 2 * time.Second`)
	require.NoError(t, err)
	assert.Equal(t, []string{`"unit"`, `"px"`, `"min"`, `-1`, `"timeout"`, `2 * time.Second`}, exprs)

	exprs, err = ParseMetadata(`"nested", reflection.Metadata("a", []int{1, 2})`)
	require.NoError(t, err)
	assert.Equal(t, []string{`"nested"`, `reflection.Metadata("a", []int{1, 2})`}, exprs)
}

func TestParseMetadata_Errors(t *testing.T) {
	_, err := ParseMetadata(`"k"`)
	assert.ErrorIs(t, err, ErrOddMetadata)

	_, err = ParseMetadata(`"k", "v", "dangling"`)
	assert.ErrorIs(t, err, ErrOddMetadata)

	_, err = ParseMetadata(``)
	assert.Error(t, err)

	_, err = ParseMetadata(`"k": "v"`)
	assert.Error(t, err)

	_, err = ParseMetadata(`"k", (`)
	assert.Error(t, err)
}

func TestQualifiedIdents(t *testing.T) {
	got := QualifiedIdents([]string{`"timeout"`, `2 * time.Second`, `reflection.Metadata("d", time.Minute)`, `(`})
	assert.Equal(t, []string{"reflection", "time"}, got)
}
