package reflection

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBind_AttributesInOrder(t *testing.T) {
	obj := &child{parent: parent{A: 1, B: "b"}, C: 3, D: 4.5}

	var got []any

	ForEachAttributeOf(obj, func(a BoundAttribute) bool {
		require.True(t, a.Valid(), a.Name)
		got = append(got, a.Get())

		return false
	})

	assert.Equal(t, []any{3, 4.5, 1, "b"}, got)
}

func TestBind_SetWritesThrough(t *testing.T) {
	obj := &child{}
	b := Bind(obj)

	c, ok := b.Attribute("c")
	require.True(t, ok)
	require.NoError(t, c.Set(8))
	assert.Equal(t, 8, obj.C)

	bAttr, ok := b.Attribute("b")
	require.True(t, ok)
	require.NoError(t, bAttr.Set("inherited"))
	assert.Equal(t, "inherited", obj.B)

	ptr, ok := c.Addr().(*int)
	require.True(t, ok)
	assert.Same(t, &obj.C, ptr)

	assert.ErrorIs(t, c.Set("eight"), ErrTypeMismatch)
	assert.ErrorIs(t, c.Set(nil), ErrTypeMismatch)
}

func TestBind_ReadOnly(t *testing.T) {
	obj := &detached{F: 1}

	f, ok := Bind(obj).Attribute("f")
	require.True(t, ok)
	assert.True(t, f.ReadOnly)
	assert.Equal(t, 1, f.Get())
	assert.ErrorIs(t, f.Set(2), ErrReadOnly)
	assert.Equal(t, 1, obj.F)
}

func TestBind_UnreachableMembers(t *testing.T) {
	b := Bind(&pointerChild{})

	_, ok := b.Attribute("a")
	assert.False(t, ok)

	var invalid []string

	b.ForEachAttribute(func(a BoundAttribute) bool {
		if !a.Valid() {
			invalid = append(invalid, a.Name)
			assert.Nil(t, a.Get())
			assert.Nil(t, a.Addr())
			assert.ErrorIs(t, a.Set(1), ErrUnbound)
		}

		return false
	})

	assert.Equal(t, []string{"a", "b"}, invalid)

	var unbound []string

	b.ForEachMethod(func(m BoundMethod) bool {
		if !m.Valid() {
			unbound = append(unbound, m.Name)

			_, err := m.Call()
			assert.ErrorIs(t, err, ErrUnbound)
		}

		return false
	})

	assert.Equal(t, []string{"describe", "bump"}, unbound)
}

func genericRegistry(t *testing.T) *Registry {
	t.Helper()

	r := NewRegistry()
	box := Parent[gbox[int]]()

	require.NoError(t, r.Register(reflect.TypeFor[gbox[int]](), Info{
		Attributes: []AttributeDescriptor{Field("Val", func(b *gbox[int]) *int { return &b.Val })},
		Methods:    []MethodDescriptor{Method[gbox[int]]("Get", gbox[int].Get)},
	}))
	require.NoError(t, r.Register(reflect.TypeFor[gchild](), Info{
		Attributes: []AttributeDescriptor{Field("Own", func(c *gchild) *int { return &c.Own })},
		Parents:    []ParentDescriptor{box},
	}))
	require.NoError(t, r.Register(reflect.TypeFor[twoBoxes](), Info{Parents: []ParentDescriptor{box}}))
	require.NoError(t, r.Register(reflect.TypeFor[nearBox](), Info{Parents: []ParentDescriptor{box}}))

	return r
}

func TestBind_GenericEmbeddedParent(t *testing.T) {
	r := genericRegistry(t)

	obj := &gchild{gbox: gbox[int]{Val: 7}, Own: 1}
	b, ok := r.Describe(reflect.TypeFor[gchild]()).Bind(obj)
	require.True(t, ok)

	val, ok := b.Attribute("Val")
	require.True(t, ok)
	assert.Equal(t, 7, val.Get())

	require.NoError(t, val.Set(8))
	assert.Equal(t, 8, obj.Val)

	get, ok := b.Method("Get")
	require.True(t, ok)

	out, err := get.Call()
	require.NoError(t, err)
	assert.Equal(t, []any{8}, out)
}

func TestBind_EmbeddedParentDepth(t *testing.T) {
	r := genericRegistry(t)

	two, ok := r.Describe(reflect.TypeFor[twoBoxes]()).Bind(&twoBoxes{})
	require.True(t, ok)
	assert.True(t, two.Descriptor().HasParent(reflect.TypeFor[gbox[int]]()))

	_, ok = two.Attribute("Val")
	assert.False(t, ok, "two embeddings at the same depth are ambiguous")

	near := &nearBox{gbox: &gbox[int]{Val: 3}, leftBox: leftBox{gbox[int]{Val: 4}}}
	b, ok := r.Describe(reflect.TypeFor[nearBox]()).Bind(near)
	require.True(t, ok)

	val, ok := b.Attribute("Val")
	require.True(t, ok)
	assert.Equal(t, 3, val.Get(), "the shallowest embedding wins")
}

func TestBind_WrongInstance(t *testing.T) {
	td := Describe[child]()

	_, ok := td.Bind(&parent{})
	assert.False(t, ok)

	_, ok = td.Bind(child{})
	assert.False(t, ok)

	_, ok = td.Bind((*child)(nil))
	assert.False(t, ok)

	b, ok := td.Bind(&child{})
	require.True(t, ok)
	assert.Same(t, td, b.Descriptor())

	assert.False(t, Binding{}.ForEachAttribute(func(BoundAttribute) bool { return true }))
}

func TestBoundMethod_Call(t *testing.T) {
	obj := &calc{n: 6}
	b := Bind(obj)

	inc, ok := b.Method("inc")
	require.True(t, ok)

	out, err := inc.Call()
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, 7, obj.n)

	f, ok := b.Method("f")
	require.True(t, ok, "first method named f")

	out, err = f.Call(1.5)
	require.NoError(t, err)
	assert.Equal(t, []any{3}, out)

	_, err = f.Call()
	assert.ErrorIs(t, err, ErrArgument)

	_, err = f.Call("1.5")
	assert.ErrorIs(t, err, ErrArgument)
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestBoundMethod_CallFallible(t *testing.T) {
	div, ok := Bind(&calc{n: 9}).Method("div")
	require.True(t, ok)

	out, err := div.Call(3)
	require.NoError(t, err)
	assert.Equal(t, []any{3}, out)

	out, err = div.Call(0)
	assert.ErrorIs(t, err, errDivideByZero)
	assert.Equal(t, []any{0}, out)
}

func TestBoundMethod_CallVariadic(t *testing.T) {
	sum, ok := Bind(&calc{n: 1}).Method("sum")
	require.True(t, ok)

	out, err := sum.Call()
	require.NoError(t, err)
	assert.Equal(t, []any{1}, out)

	out, err = sum.Call(2, 3)
	require.NoError(t, err)
	assert.Equal(t, []any{6}, out)

	_, err = sum.Call(2, "3")
	assert.ErrorIs(t, err, ErrArgument)
}

func TestBoundMethod_Inherited(t *testing.T) {
	obj := &child{parent: parent{A: 2, B: "z"}}

	var results []any

	ForEachMethodOf(obj, func(m BoundMethod) bool {
		out, err := m.Call()
		require.NoError(t, err)
		results = append(results, out...)

		return false
	})

	assert.Equal(t, []any{"2/z"}, results)
	assert.Equal(t, 3, obj.A, "bump ran on the embedded parent")
}
