package meta

import (
	"fmt"
	"reflect"
	"unicode"
	"unicode/utf8"

	"github.com/roach88/synth/internal/errors"
	"github.com/roach88/synth/internal/ir"
)

var errorType = reflect.TypeFor[error]()

// FromGo derives a Class from a Go type. sample is a T or *T; the class
// gets one method per exported method in the *T method set, named with a
// lower-case first letter. Variadic methods are skipped.
//
// ctors are constructor functions returning *T or (*T, error). Without
// any, the class gets a no-arg constructor producing a zero T.
func FromGo(name ir.TypeRef, sample any, ctors ...any) (*Class, error) {
	rt := reflect.TypeOf(sample)
	if rt == nil {
		return nil, errors.InvalidArgument(string(name), "", "nil sample")
	}
	if rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	ptr := reflect.PointerTo(rt)

	c := NewClass(name, nil)
	for n := 0; n < ptr.NumMethod(); n++ {
		m := ptr.Method(n)
		if m.Type.IsVariadic() {
			continue
		}
		params := make([]ir.TypeRef, 0, m.Type.NumIn()-1)
		for p := 1; p < m.Type.NumIn(); p++ {
			params = append(params, ir.TypeOf(m.Type.In(p)))
		}
		c.AddMethod(ir.Sig(lowerFirst(m.Name), params...), nativeMethod(name, m))
	}

	if len(ctors) == 0 {
		c.AddConstructor(nil, func(self *Instance, _ []any) error {
			self.SetNative(reflect.New(rt))
			return nil
		})
		return c, nil
	}
	for _, fn := range ctors {
		params, init, err := nativeConstructor(name, ptr, fn)
		if err != nil {
			return nil, err
		}
		c.AddConstructor(params, init)
	}
	return c, nil
}

// MustFromGo is FromGo for package-level class declarations.
func MustFromGo(name ir.TypeRef, sample any, ctors ...any) *Class {
	c, err := FromGo(name, sample, ctors...)
	if err != nil {
		panic(err)
	}
	return c
}

func nativeMethod(class ir.TypeRef, m reflect.Method) Func {
	return func(self *Instance, args []any) (any, error) {
		recv := self.Native()
		if !recv.IsValid() {
			return nil, errors.UnsupportedOperation(string(class), m.Name, "instance has no native value")
		}
		in := make([]reflect.Value, 0, len(args)+1)
		in = append(in, recv)
		for p, a := range args {
			v, err := convertArg(a, m.Type.In(p+1))
			if err != nil {
				return nil, errors.InvalidArgument(string(class), m.Name, err.Error())
			}
			in = append(in, v)
		}
		return unpackResults(m.Func.Call(in))
	}
}

func nativeConstructor(class ir.TypeRef, ptr reflect.Type, fn any) ([]ir.TypeRef, InitFunc, error) {
	fv := reflect.ValueOf(fn)
	ft := fv.Type()
	if ft.Kind() != reflect.Func || ft.IsVariadic() {
		return nil, nil, errors.InvalidArgument(string(class), "<init>",
			fmt.Sprintf("constructor must be a non-variadic func, got %s", ft))
	}
	switch {
	case ft.NumOut() == 1 && ft.Out(0) == ptr:
	case ft.NumOut() == 2 && ft.Out(0) == ptr && ft.Out(1) == errorType:
	default:
		return nil, nil, errors.InvalidArgument(string(class), "<init>",
			fmt.Sprintf("constructor must return %s or (%s, error), got %s", ptr, ptr, ft))
	}

	params := make([]ir.TypeRef, ft.NumIn())
	for p := range params {
		params[p] = ir.TypeOf(ft.In(p))
	}
	init := func(self *Instance, args []any) error {
		in := make([]reflect.Value, len(args))
		for p, a := range args {
			v, err := convertArg(a, ft.In(p))
			if err != nil {
				return errors.InvalidArgument(string(class), "<init>", err.Error())
			}
			in[p] = v
		}
		out := fv.Call(in)
		if len(out) == 2 && !out[1].IsNil() {
			return out[1].Interface().(error)
		}
		self.SetNative(out[0])
		return nil
	}
	return params, init, nil
}

// convertArg turns a dynamic argument into a value of type to.
func convertArg(a any, to reflect.Type) (reflect.Value, error) {
	if a == nil {
		switch to.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(to), nil
		}
		return reflect.Value{}, fmt.Errorf("nil is not a %s", to)
	}
	if inst, ok := a.(*Instance); ok && inst.native.IsValid() && inst.native.Type().AssignableTo(to) {
		return inst.native, nil
	}
	v := reflect.ValueOf(a)
	if v.Type().AssignableTo(to) {
		return v, nil
	}
	if isNumeric(v.Kind()) && isNumeric(to.Kind()) {
		return v.Convert(to), nil
	}
	return reflect.Value{}, fmt.Errorf("%s is not assignable to %s", v.Type(), to)
}

func unpackResults(out []reflect.Value) (any, error) {
	if n := len(out); n > 0 && out[n-1].Type() == errorType {
		if !out[n-1].IsNil() {
			return nil, out[n-1].Interface().(error)
		}
		out = out[:n-1]
	}
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		return out[0].Interface(), nil
	}
	vals := make([]any, len(out))
	for i, v := range out {
		vals[i] = v.Interface()
	}
	return vals, nil
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToLower(r)) + s[size:]
}
