// Package callback provides the callable adapter consumed by the binding
// engine: a value wrapping a free function or a (target, method selector)
// pair, exposing type introspection, partial application of fixed trailing
// arguments, and checked invocation with untyped argument slots.
package callback

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrInvocation is wrapped by every dispatch-time failure: an arity or
// type mismatch between the supplied arguments and the wrapped callable.
var ErrInvocation = errors.New("callback: invocation failed")

// Callback wraps a callable target. The zero value is invalid; construct
// with New or NewMethod. Bind returns derived callbacks; a Callback is
// otherwise immutable and safe to share.
type Callback struct {
	fn    reflect.Value
	name  string
	bound []reflect.Value
}

// New wraps a free function. Return values of fn are ignored at dispatch.
// Variadic functions are not supported: the binding engine needs a fixed
// declared arity to match against signal signatures.
func New(fn any) (*Callback, error) {
	if fn == nil {
		return nil, fmt.Errorf("callback: nil function")
	}
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return nil, fmt.Errorf("callback: %T is not a function", fn)
	}
	if v.Type().IsVariadic() {
		return nil, fmt.Errorf("callback: variadic functions are not supported")
	}
	return &Callback{fn: v, name: "func"}, nil
}

// NewMethod wraps a method selected by name on a target value. The method
// must be exported and part of the target's method set.
func NewMethod(target any, method string) (*Callback, error) {
	if target == nil {
		return nil, fmt.Errorf("callback: nil target for method %q", method)
	}
	v := reflect.ValueOf(target)
	m := v.MethodByName(method)
	if !m.IsValid() {
		return nil, fmt.Errorf("callback: %s has no method %q", v.Type(), method)
	}
	if m.Type().IsVariadic() {
		return nil, fmt.Errorf("callback: variadic method %s.%s is not supported", v.Type(), method)
	}
	return &Callback{fn: m, name: v.Type().String() + "." + method}, nil
}

// MustNew is New for statically known functions; it panics on error.
func MustNew(fn any) *Callback {
	c, err := New(fn)
	if err != nil {
		panic(err)
	}
	return c
}

// Bind returns a copy of the callback with fixed trailing arguments. At
// invocation, bound arguments are appended after the notification-supplied
// ones, in the order they were bound. Binding more values than the
// callable has remaining parameters makes every Invoke fail.
func (c *Callback) Bind(args ...any) *Callback {
	bound := make([]reflect.Value, 0, len(c.bound)+len(args))
	bound = append(bound, c.bound...)
	for _, a := range args {
		bound = append(bound, reflect.ValueOf(a))
	}
	return &Callback{fn: c.fn, name: c.name, bound: bound}
}

// Arity returns the number of arguments the callback expects to be
// supplied at dispatch time, i.e. the callable's parameter count minus the
// bound fixed arguments.
func (c *Callback) Arity() int {
	n := c.fn.Type().NumIn() - len(c.bound)
	if n < 0 {
		return 0
	}
	return n
}

// ParamTypes returns the ordered type names of the dispatch-supplied
// parameters, excluding bound fixed arguments.
func (c *Callback) ParamTypes() []string {
	t := c.fn.Type()
	n := c.Arity()
	types := make([]string, n)
	for i := 0; i < n; i++ {
		types[i] = t.In(i).String()
	}
	return types
}

// Name returns a diagnostic name for the wrapped callable.
func (c *Callback) Name() string { return c.name }

// Invoke calls the wrapped callable with the supplied arguments followed
// by the bound fixed arguments. The combined count must exactly match the
// callable's parameter count and every value must be assignable or
// convertible to its parameter type; otherwise an ErrInvocation-wrapped
// error is returned and the callable is not invoked.
func (c *Callback) Invoke(args ...any) error {
	t := c.fn.Type()
	total := len(args) + len(c.bound)
	if total != t.NumIn() {
		return fmt.Errorf("%w: %s expects %d args, got %d supplied + %d bound",
			ErrInvocation, c.name, t.NumIn(), len(args), len(c.bound))
	}
	in := make([]reflect.Value, 0, total)
	for i, a := range args {
		v, err := c.coerce(a, t.In(i), i)
		if err != nil {
			return err
		}
		in = append(in, v)
	}
	for i, v := range c.bound {
		pos := len(args) + i
		cv, err := c.coerceValue(v, t.In(pos), pos)
		if err != nil {
			return err
		}
		in = append(in, cv)
	}
	c.fn.Call(in)
	return nil
}

func (c *Callback) coerce(arg any, want reflect.Type, pos int) (reflect.Value, error) {
	if arg == nil {
		switch want.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
			return reflect.Zero(want), nil
		default:
			return reflect.Value{}, fmt.Errorf("%w: %s arg %d: nil for non-nilable %s",
				ErrInvocation, c.name, pos, want)
		}
	}
	return c.coerceValue(reflect.ValueOf(arg), want, pos)
}

func (c *Callback) coerceValue(v reflect.Value, want reflect.Type, pos int) (reflect.Value, error) {
	if !v.IsValid() {
		// A nil bound via Bind(nil) has no reflect type.
		switch want.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
			return reflect.Zero(want), nil
		default:
			return reflect.Value{}, fmt.Errorf("%w: %s arg %d: nil for non-nilable %s",
				ErrInvocation, c.name, pos, want)
		}
	}
	if v.Type().AssignableTo(want) {
		return v, nil
	}
	if v.Type().ConvertibleTo(want) && compatibleKinds(v.Type().Kind(), want.Kind()) {
		return v.Convert(want), nil
	}
	return reflect.Value{}, fmt.Errorf("%w: %s arg %d: have %s, want %s",
		ErrInvocation, c.name, pos, v.Type(), want)
}

// compatibleKinds limits conversions to same-family numerics so that e.g.
// an int literal bound to a float parameter works, while string<->int
// conversions (legal for reflect, surprising here) are rejected.
func compatibleKinds(have, want reflect.Kind) bool {
	return numericKind(have) && numericKind(want)
}

func numericKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
