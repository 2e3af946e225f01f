package reflection

import (
	"fmt"
	"reflect"
)

// Describe returns the aggregated descriptor of T from the Default registry.
func Describe[T any]() *TypeDescriptor {
	return Default.Describe(reflect.TypeFor[T]())
}

// IsReflectible reports whether T has a provider.
func IsReflectible[T any]() bool {
	return Default.IsReflectible(reflect.TypeFor[T]())
}

// ClassName returns the class name T declares for itself.
func ClassName[T any]() (string, bool) {
	return Describe[T]().ClassName()
}

// HasClassName reports whether T declares a class name.
func HasClassName[T any]() bool {
	_, ok := ClassName[T]()
	return ok
}

// HasAttributes reports whether T has any attribute, own or inherited.
func HasAttributes[T any]() bool {
	return len(Describe[T]().attributes) > 0
}

// HasMethods reports whether T has any method, own or inherited.
func HasMethods[T any]() bool {
	return len(Describe[T]().methods) > 0
}

// HasParents reports whether T declares any parent.
func HasParents[T any]() bool {
	return len(Describe[T]().parents) > 0
}

// HasUsedTypes reports whether T has any used type, own or inherited.
func HasUsedTypes[T any]() bool {
	return len(Describe[T]().usedTypes) > 0
}

// ForEachAttribute visits the attributes of T in aggregated order until visit returns true.
func ForEachAttribute[T any](visit func(AttributeDescriptor) bool) bool {
	return Describe[T]().ForEachAttribute(visit)
}

// ForEachMethod visits the methods of T in aggregated order until visit returns true.
func ForEachMethod[T any](visit func(MethodDescriptor) bool) bool {
	return Describe[T]().ForEachMethod(visit)
}

// ForEachParent visits the flattened parents of T.
func ForEachParent[T any](visit func(ParentDescriptor) bool) bool {
	return Describe[T]().ForEachParent(visit)
}

// ForEachUsedType visits the used types of T, own and inherited.
func ForEachUsedType[T any](visit func(UsedTypeDescriptor) bool) bool {
	return Describe[T]().ForEachUsedType(visit)
}

// ForEachAttributeOf visits the attributes of T bound to obj.
func ForEachAttributeOf[T any](obj *T, visit func(BoundAttribute) bool) bool {
	return Bind(obj).ForEachAttribute(visit)
}

// ForEachMethodOf visits the methods of T bound to obj.
func ForEachMethodOf[T any](obj *T, visit func(BoundMethod) bool) bool {
	return Bind(obj).ForEachMethod(visit)
}

// HasAttribute reports whether T has an attribute named name.
func HasAttribute[T any](name string) bool {
	return Describe[T]().HasAttribute(name)
}

// HasMethod reports whether T has at least one method named name.
func HasMethod[T any](name string) bool {
	return Describe[T]().HasMethod(name)
}

// HasParent reports whether P is among the flattened parents of T.
func HasParent[T, P any]() bool {
	return Describe[T]().HasParent(reflect.TypeFor[P]())
}

// HasUsedType reports whether U is among the used types of T.
func HasUsedType[T, U any]() bool {
	return Describe[T]().HasUsedType(reflect.TypeFor[U]())
}

// GetAttribute returns an accessor for the first attribute of T called name
// whose declared type is exactly V. The accessor returns nil for instances in
// which the attribute cannot be reached.
func GetAttribute[V, T any](name string) (func(*T) *V, bool) {
	a, ok := Describe[T]().AttributeOfType(name, reflect.TypeFor[V]())
	if !ok {
		return nil, false
	}

	return func(obj *T) *V {
		p, ok := a.pointer(reflect.ValueOf(obj))
		if !ok {
			return nil
		}

		return p.Interface().(*V)
	}, true
}

// GetAttributeOf returns a pointer to the storage of the attribute called name
// inside obj, or nil when there is no such attribute of type V.
func GetAttributeOf[V, T any](obj *T, name string) *V {
	get, ok := GetAttribute[V, T](name)
	if !ok {
		return nil
	}

	return get(obj)
}

// GetMethod resolves the method of T called name against the function type F,
// for example func(float64) int or func() (string, error). A trailing error
// result in F selects fallible methods; read-only methods are preferred over
// mutating ones. The returned function binds an instance.
func GetMethod[F, T any](name string) (func(*T) F, bool) {
	m, ok := methodFor[F](Describe[T](), name)
	if !ok {
		return nil, false
	}

	fn := reflect.TypeFor[F]()

	return func(obj *T) F {
		var zero F

		recv, ok := m.receiver(reflect.ValueOf(obj))
		if !ok {
			return zero
		}

		return m.bindAs(fn, recv).Interface().(F)
	}, true
}

// GetMethodOf is GetMethod bound to obj. It reports false when the method
// does not exist or cannot reach a receiver inside obj.
func GetMethodOf[F, T any](obj *T, name string) (F, bool) {
	var zero F

	m, ok := methodFor[F](Describe[T](), name)
	if !ok {
		return zero, false
	}

	recv, ok := m.receiver(reflect.ValueOf(obj))
	if !ok {
		return zero, false
	}

	return m.bindAs(reflect.TypeFor[F](), recv).Interface().(F), true
}

// GetMethodExpr resolves a method by its full signature, given as a method
// expression type M: func(*T, ...) for a mutating method, func(T, ...) for a
// read-only one. The result is callable like the method expression itself.
func GetMethodExpr[M any](name string) (M, bool) {
	var zero M

	mt := reflect.TypeFor[M]()
	if mt.Kind() != reflect.Func || mt.NumIn() == 0 {
		return zero, false
	}

	recvType := mt.In(0)
	base := recvType
	if base.Kind() == reflect.Pointer {
		base = base.Elem()
	}

	m, ok := Default.Describe(base).FindMethodExact(name, SignatureFor[M]())
	if !ok {
		return zero, false
	}

	if m.Owner == base && m.project == nil && m.expr.Type() == mt {
		return m.expr.Interface().(M), true
	}

	fn := reflect.MakeFunc(mt, func(args []reflect.Value) []reflect.Value {
		obj := args[0]
		if recvType.Kind() != reflect.Pointer {
			p := reflect.New(base)
			p.Elem().Set(obj)
			obj = p
		}

		recv, ok := m.receiver(obj)
		if !ok {
			panic(fmt.Sprintf("reflection: method %s of %s is not reachable from the instance", name, base))
		}

		in := append([]reflect.Value{recv}, args[1:]...)
		if mt.IsVariadic() {
			return m.expr.CallSlice(in)
		}

		return m.expr.Call(in)
	})

	return fn.Interface().(M), true
}

// HasAttributeMetadata reports whether the first attribute of T called name
// has key in its metadata.
func HasAttributeMetadata[T any](name string, key any) bool {
	return Describe[T]().HasAttributeMetadata(name, key)
}

// GetAttributeMetadata returns the value of type V stored under key on the
// first attribute of T called name.
func GetAttributeMetadata[V, T any](name string, key any) (V, bool) {
	meta, ok := Describe[T]().AttributeMetadata(name)
	if !ok {
		var zero V
		return zero, false
	}

	return GetMetadata[V](meta, key)
}

// HasMethodMetadata reports whether the first method of T called name has key
// in its metadata.
func HasMethodMetadata[T any](name string, key any) bool {
	return Describe[T]().HasMethodMetadata(name, key)
}

// GetMethodMetadata returns the value of type V stored under key on the first
// method of T called name.
func GetMethodMetadata[V, T any](name string, key any) (V, bool) {
	meta, ok := Describe[T]().MethodMetadata(name)
	if !ok {
		var zero V
		return zero, false
	}

	return GetMetadata[V](meta, key)
}

// methodFor resolves name against the function type F over the receiver
// tiers. Fallibility is part of F and is not searched for.
func methodFor[F any](td *TypeDescriptor, name string) (MethodDescriptor, bool) {
	fn := reflect.TypeFor[F]()
	if fn.Kind() != reflect.Func {
		return MethodDescriptor{}, false
	}

	shape, fallible := ShapeOf(fn).withoutError()

	tiers := []Qualifier{0, Mutating}
	if fallible {
		tiers = []Qualifier{Fallible, Mutating | Fallible}
	}

	return td.resolve(name, shape, tiers)
}
