package tree

import (
	"errors"
	"testing"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"simple", "1.3.6.1", "1.3.6.1", false},
		{"leading dot", ".1.3.6.1", "1.3.6.1", false},
		{"single arc", "1", "1", false},
		{"zero arc", "0", "0", false},
		{"large arc", "4294967295", "4294967295", false},
		{"empty", "", "", true},
		{"dot only", ".", "", true},
		{"empty arc", "1..3", "", true},
		{"trailing dot", "1.3.", "", true},
		{"negative arc", "1.-3.6", "", true},
		{"letters", "1.3.x", "", true},
		{"overflow", "1.4294967296.1", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePath(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParsePath(%q) expected error, got %v", tt.input, got)
				}
				if !errors.Is(err, ErrMalformedPath) {
					t.Errorf("ParsePath(%q) error = %v, want ErrMalformedPath", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePath(%q) unexpected error: %v", tt.input, err)
			}
			if got.String() != tt.want {
				t.Errorf("ParsePath(%q) = %q, want %q", tt.input, got.String(), tt.want)
			}
		})
	}
}

func TestPathHasPrefix(t *testing.T) {
	p := Path{1, 3, 6, 1}
	if !p.HasPrefix(Path{1, 3}) {
		t.Error("1.3.6.1 should have prefix 1.3")
	}
	if !p.HasPrefix(p) {
		t.Error("a path is its own prefix")
	}
	if p.HasPrefix(Path{1, 3, 6, 1, 2}) {
		t.Error("a longer path is not a prefix")
	}
	if p.HasPrefix(Path{1, 4}) {
		t.Error("1.4 is not a prefix of 1.3.6.1")
	}
}

func TestPathCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.3", "1.3", 0},
		{"1.3", "1.3.6", -1},
		{"1.3.6", "1.3", 1},
		{"1.3.2", "1.3.10", -1},
		{"2.1", "1.9.9", 1},
	}
	for _, tt := range tests {
		a, _ := ParsePath(tt.a)
		b, _ := ParsePath(tt.b)
		if got := a.Compare(b); got != tt.want {
			t.Errorf("Compare(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
