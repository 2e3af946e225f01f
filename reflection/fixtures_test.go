package reflection

import (
	"errors"
	"fmt"
)

// Types registered into Default for the package-level API tests.

type noProvider struct {
	Hidden int
}

type parent struct {
	A int
	B string
}

func (p parent) Describe() string { return fmt.Sprintf("%d/%s", p.A, p.B) }

func (p *parent) Bump() { p.A++ }

type child struct {
	parent
	C int
	D float64
}

type base struct {
	X int
}

type derived struct {
	base
	X int
}

type calc struct {
	n int
}

func (c calc) Scaled(x float64) int { return int(x * 2) }

func (c calc) Count() int { return c.n }

func (c *calc) Peek() int { return c.n * 10 }

func (c calc) Value() int { return c.n }

func (c *calc) Inc() { c.n++ }

var errDivideByZero = errors.New("divide by zero")

func (c calc) Div(d int) (int, error) {
	if d == 0 {
		return 0, errDivideByZero
	}

	return c.n / d, nil
}

func (c calc) Sum(xs ...int) int {
	total := c.n
	for _, x := range xs {
		total += x
	}

	return total
}

type diamondTop struct {
	A int
}

type diamondLeft struct {
	diamondTop
	L int
}

type diamondRight struct {
	diamondTop
	R int
}

type diamond struct {
	diamondLeft
	diamondRight
}

type pointerChild struct {
	*parent
	E int
}

type detached struct {
	F int
}

type holder struct {
	inner *parent
}

type selfDescribed struct {
	V int
}

func (s *selfDescribed) TypeInfo() Info {
	return Info{
		ClassName: "SelfDescribed",
		Attributes: []AttributeDescriptor{
			Field("v", func(s *selfDescribed) *int { return &s.V }),
		},
	}
}

type valueDescribed struct {
	N int
}

func (valueDescribed) TypeInfo() Info {
	return Info{
		Attributes: []AttributeDescriptor{
			Field("N", func(s *valueDescribed) *int { return &s.N }),
		},
	}
}

// misdescribed claims the members of another type.
type misdescribed struct{}

func (misdescribed) TypeInfo() Info {
	return Info{
		Attributes: []AttributeDescriptor{
			Field("N", func(s *valueDescribed) *int { return &s.N }),
		},
	}
}

type gbox[T any] struct {
	Val T
}

func (b gbox[T]) Get() T { return b.Val }

type gchild struct {
	gbox[int]
	Own int
}

type leftBox struct{ gbox[int] }

type rightBox struct{ gbox[int] }

// twoBoxes reaches gbox[int] twice at the same depth.
type twoBoxes struct {
	leftBox
	rightBox
}

// nearBox embeds gbox[int] directly and once more one level down.
type nearBox struct {
	*gbox[int]
	leftBox
}

type nested struct {
	Limits [2]int
}

func init() {
	Register[parent](Info{
		ClassName: "Parent",
		Attributes: []AttributeDescriptor{
			Field("a", func(p *parent) *int { return &p.A }, "k", "v", "min", 0),
			Field("b", func(p *parent) *string { return &p.B }),
		},
		Methods: []MethodDescriptor{
			Method[parent]("describe", parent.Describe, "doc", "renders a and b"),
			Method[parent]("bump", (*parent).Bump),
		},
		UsedTypes: []UsedTypeDescriptor{Uses[string]("role", "label")},
	})

	Register[child](Info{
		Attributes: []AttributeDescriptor{
			Field("c", func(c *child) *int { return &c.C }),
			Field("d", func(c *child) *float64 { return &c.D }),
		},
		Parents: []ParentDescriptor{Parent[parent]("access", "public")},
	})

	Register[base](Info{
		Attributes: []AttributeDescriptor{Field("x", func(b *base) *int { return &b.X })},
	})

	Register[derived](Info{
		Attributes: []AttributeDescriptor{Field("x", func(d *derived) *int { return &d.X })},
		Parents:    []ParentDescriptor{Parent[base]()},
	})

	Register[calc](Info{
		ClassName: "Calc",
		Methods: []MethodDescriptor{
			Method[calc]("f", calc.Scaled),
			Method[calc]("f", calc.Count),
			Method[calc]("get", (*calc).Peek),
			Method[calc]("get", calc.Value),
			Method[calc]("inc", (*calc).Inc, "mutates", true),
			Method[calc]("div", calc.Div),
			Method[calc]("sum", calc.Sum),
		},
	})

	Register[diamondTop](Info{
		Attributes: []AttributeDescriptor{Field("a", func(t *diamondTop) *int { return &t.A })},
	})

	Register[diamondLeft](Info{
		Attributes: []AttributeDescriptor{Field("l", func(l *diamondLeft) *int { return &l.L })},
		Parents:    []ParentDescriptor{Parent[diamondTop]()},
	})

	Register[diamondRight](Info{
		Attributes: []AttributeDescriptor{Field("r", func(r *diamondRight) *int { return &r.R })},
		Parents:    []ParentDescriptor{Parent[diamondTop]()},
	})

	Register[diamond](Info{
		Parents: []ParentDescriptor{Parent[diamondLeft](), Parent[diamondRight]()},
	})

	Register[pointerChild](Info{
		Attributes: []AttributeDescriptor{Field("e", func(p *pointerChild) *int { return &p.E })},
		Parents:    []ParentDescriptor{Parent[parent]()},
	})

	Register[detached](Info{
		Attributes: []AttributeDescriptor{ReadOnlyField("f", func(d *detached) *int { return &d.F })},
		Parents:    []ParentDescriptor{Parent[parent]()},
	})

	Register[holder](Info{
		Parents: []ParentDescriptor{ParentVia(func(h *holder) *parent { return h.inner })},
	})

	Register[nested](Info{
		Attributes: []AttributeDescriptor{
			Field("limits", func(n *nested) *[2]int { return &n.Limits },
				"bounds", Metadata("lo", 0, "hi", 10),
				[]string{"composite"}, "key",
			),
		},
	})
}
