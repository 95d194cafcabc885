package object

import (
	"fmt"
	"reflect"
	"strings"
)

// ParseSignature splits a signal signature of the form "name(type, type)"
// into its name and ordered parameter type names. Type names are
// normalized by stripping whitespace; "name()" and "name" both declare a
// zero-argument signal.
func ParseSignature(signature string) (name string, params []string, err error) {
	s := strings.TrimSpace(signature)
	if s == "" {
		return "", nil, fmt.Errorf("object: empty signal signature")
	}
	open := strings.IndexByte(s, '(')
	if open < 0 {
		if strings.ContainsAny(s, ") ,") {
			return "", nil, fmt.Errorf("object: malformed signal signature %q", signature)
		}
		return s, nil, nil
	}
	if !strings.HasSuffix(s, ")") {
		return "", nil, fmt.Errorf("object: malformed signal signature %q", signature)
	}
	name = strings.TrimSpace(s[:open])
	if name == "" {
		return "", nil, fmt.Errorf("object: signal signature %q has no name", signature)
	}
	inner := strings.TrimSpace(s[open+1 : len(s)-1])
	if inner == "" {
		return name, nil, nil
	}
	for _, part := range strings.Split(inner, ",") {
		p := normalizeType(part)
		if p == "" {
			return "", nil, fmt.Errorf("object: signal signature %q has an empty parameter type", signature)
		}
		params = append(params, p)
	}
	return name, params, nil
}

// NormalizeSignature renders a canonical signature string from a parsed
// name and parameter list, so that "clicked( bool )" and "clicked(bool)"
// resolve to the same signal.
func NormalizeSignature(name string, params []string) string {
	if len(params) == 0 {
		return name + "()"
	}
	return name + "(" + strings.Join(params, ",") + ")"
}

// normalizeType strips whitespace from a type name. "interface {}" keeps
// its single interior space so it matches reflect's rendering.
func normalizeType(t string) string {
	t = strings.TrimSpace(t)
	if t == "any" || t == "interface{}" {
		return "interface {}"
	}
	return strings.Join(strings.Fields(t), " ")
}

// TypeName returns the normalized type name of a runtime value, matching
// the names used in signal signatures. A nil value has no type and is
// reported as "nil".
func TypeName(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}

// PointerLike reports whether a type name refers to an object-pointer-like
// type. Signal parameters carrying object pointers are considered mutually
// compatible regardless of the concrete pointee.
func PointerLike(typeName string) bool {
	return strings.HasPrefix(typeName, "*")
}

// TypesCompatible reports whether a callback parameter type can accept a
// signal parameter type: identical normalized names, both pointer-like, or
// the callback side accepting anything.
func TypesCompatible(callbackType, signalType string) bool {
	ct := normalizeType(callbackType)
	st := normalizeType(signalType)
	if ct == st {
		return true
	}
	if ct == "interface {}" {
		return true
	}
	return PointerLike(ct) && PointerLike(st)
}
