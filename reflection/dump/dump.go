// Package dump prints live instances through their reflection descriptors,
// debugger style. Attributes are listed in aggregated order; values without
// a provider are rendered by go-spew.
package dump

import (
	"bytes"
	"io"
	"reflect"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"typereflect/reflection"
)

// Config controls dump output.
type Config struct {
	// Registry resolves descriptors; nil means reflection.Default.
	Registry *reflection.Registry
	// Indent is repeated once per nesting level.
	Indent string
	// Methods appends the method signatures of each reflected instance.
	Methods bool
	// MaxDepth limits how deep reflected attributes are expanded.
	MaxDepth int
}

// Default is the configuration used by Fdump and Sdump.
var Default = Config{Indent: "  ", MaxDepth: 4}

// Fdump writes obj to w using the Default configuration.
func Fdump(w io.Writer, obj any) error {
	return Default.Fdump(w, obj)
}

// Sdump returns obj rendered with the Default configuration.
func Sdump(obj any) string {
	return Default.Sdump(obj)
}

// Sdump returns obj rendered as a string.
func (c Config) Sdump(obj any) string {
	var buf bytes.Buffer
	_ = c.Fdump(&buf, obj)

	return buf.String()
}

// Fdump writes obj to w. A pointer to a reflected type is listed attribute
// by attribute; anything else is handed to go-spew.
func (c Config) Fdump(w io.Writer, obj any) error {
	if c.Registry == nil {
		c.Registry = reflection.Default
	}

	if c.Indent == "" {
		c.Indent = "  "
	}

	d := &dumper{
		cfg: c,
		spew: &spew.ConfigState{
			Indent:                  c.Indent,
			DisablePointerAddresses: true,
			DisableCapacities:       true,
			DisableMethods:          true,
			SortKeys:                true,
		},
		seen: make(map[uintptr]bool),
	}

	d.value(reflect.ValueOf(obj), 0)
	d.buf.WriteByte('\n')

	_, err := w.Write(d.buf.Bytes())

	return err
}

type dumper struct {
	cfg  Config
	spew *spew.ConfigState
	buf  bytes.Buffer
	seen map[uintptr]bool
}

// value renders v at the current position; nested lines are indented by
// depth.
func (d *dumper) value(v reflect.Value, depth int) {
	for v.Kind() == reflect.Pointer && !v.IsNil() && v.Elem().Kind() == reflect.Pointer {
		v = v.Elem()
	}

	td, ok := d.descriptor(v)
	if !ok || depth > d.cfg.MaxDepth {
		d.leaf(v, depth)
		return
	}

	addr := v.Pointer()
	if d.seen[addr] {
		d.buf.WriteString("<cycle>")
		return
	}

	d.seen[addr] = true
	defer delete(d.seen, addr)

	b, _ := td.Bind(v.Interface())
	inner := strings.Repeat(d.cfg.Indent, depth+1)

	d.buf.WriteString(header(td))
	d.buf.WriteString(" {\n")

	b.ForEachAttribute(func(a reflection.BoundAttribute) bool {
		d.buf.WriteString(inner)
		d.buf.WriteString(a.Name)
		d.buf.WriteString(": ")

		if !a.Valid() {
			d.buf.WriteString("<unbound>")
		} else {
			d.value(reflect.ValueOf(a.Addr()), depth+1)
		}

		d.buf.WriteByte('\n')

		return false
	})

	if d.cfg.Methods {
		td.ForEachMethod(func(m reflection.MethodDescriptor) bool {
			d.buf.WriteString(inner)
			d.buf.WriteString(m.String())
			d.buf.WriteString("\n")

			return false
		})
	}

	d.buf.WriteString(strings.Repeat(d.cfg.Indent, depth))
	d.buf.WriteString("}")
}

// descriptor returns the descriptor of a non-nil pointer to a reflected
// type.
func (d *dumper) descriptor(v reflect.Value) (*reflection.TypeDescriptor, bool) {
	if !v.IsValid() || v.Kind() != reflect.Pointer || v.IsNil() {
		return nil, false
	}

	td := d.cfg.Registry.Describe(v.Type().Elem())
	if !td.Reflectible() {
		return nil, false
	}

	return td, true
}

// leaf renders a value go-spew style. Pointers to plain values are shown by
// what they point to.
func (d *dumper) leaf(v reflect.Value, depth int) {
	if !v.IsValid() {
		d.buf.WriteString("<nil>")
		return
	}

	if v.Kind() == reflect.Pointer && !v.IsNil() {
		v = v.Elem()
	}

	if !v.CanInterface() {
		d.buf.WriteString(v.Type().String())
		return
	}

	out := strings.TrimSuffix(d.spew.Sdump(v.Interface()), "\n")
	out = strings.ReplaceAll(out, "\n", "\n"+strings.Repeat(d.cfg.Indent, depth))

	d.buf.WriteString(out)
}

func header(td *reflection.TypeDescriptor) string {
	if name, ok := td.ClassName(); ok {
		return name + " (" + td.Type().String() + ")"
	}

	return td.Type().String()
}
