package object

import (
	"reflect"
	"testing"
)

func TestParseSignature(t *testing.T) {
	tests := []struct {
		name      string
		signature string
		wantName  string
		wantParam []string
		wantErr   bool
	}{
		{"no params", "clicked()", "clicked", nil, false},
		{"bare name", "clicked", "clicked", nil, false},
		{"one param", "clicked(bool)", "clicked", []string{"bool"}, false},
		{"two params", "moved(int,int)", "moved", []string{"int", "int"}, false},
		{"spaces", " moved ( int , int ) ", "moved", []string{"int", "int"}, false},
		{"any param", "received(any)", "received", []string{"interface {}"}, false},
		{"pointer param", "destroyed(*object.Object)", "destroyed", []string{"*object.Object"}, false},
		{"empty", "", "", nil, true},
		{"unterminated", "clicked(bool", "", nil, true},
		{"no name", "(bool)", "", nil, true},
		{"empty param", "moved(int,)", "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, params, err := ParseSignature(tt.signature)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSignature(%q) error = %v, wantErr %v", tt.signature, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if name != tt.wantName {
				t.Errorf("name = %q, want %q", name, tt.wantName)
			}
			if !reflect.DeepEqual(params, tt.wantParam) {
				t.Errorf("params = %v, want %v", params, tt.wantParam)
			}
		})
	}
}

func TestNormalizeSignature(t *testing.T) {
	if got := NormalizeSignature("clicked", nil); got != "clicked()" {
		t.Errorf("got %q", got)
	}
	if got := NormalizeSignature("moved", []string{"int", "int"}); got != "moved(int,int)" {
		t.Errorf("got %q", got)
	}
}

func TestTypeName(t *testing.T) {
	tests := []struct {
		value any
		want  string
	}{
		{42, "int"},
		{true, "bool"},
		{"s", "string"},
		{New("o"), "*object.Object"},
		{nil, "nil"},
	}
	for _, tt := range tests {
		if got := TypeName(tt.value); got != tt.want {
			t.Errorf("TypeName(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestTypesCompatible(t *testing.T) {
	tests := []struct {
		callback string
		signal   string
		want     bool
	}{
		{"int", "int", true},
		{"int", "bool", false},
		{"interface {}", "int", true},
		{"any", "string", true},
		{"*object.Object", "*widget.Button", true},
		{"*object.Object", "int", false},
		{"int", "interface {}", false},
	}
	for _, tt := range tests {
		if got := TypesCompatible(tt.callback, tt.signal); got != tt.want {
			t.Errorf("TypesCompatible(%q, %q) = %v, want %v", tt.callback, tt.signal, got, tt.want)
		}
	}
}
