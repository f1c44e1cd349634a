package tree

import (
	"fmt"
	"strings"
)

// Path is the numeric OID of a node, one arc per dotted component.
type Path []uint32

// ParsePath parses a dotted OID string such as "1.3.6.1.2.1" or ".1.3.6.1.2.1".
func ParsePath(s string) (Path, error) {
	s = strings.TrimPrefix(s, ".")
	if s == "" {
		return nil, fmt.Errorf("%w: empty OID", ErrMalformedPath)
	}

	var arcs Path
	var current uint64
	var hasDigit bool
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			current = current*10 + uint64(c-'0')
			if current > 0xFFFFFFFF {
				return nil, fmt.Errorf("%w: arc overflow in %q", ErrMalformedPath, s)
			}
			hasDigit = true
		case c == '.':
			if !hasDigit {
				return nil, fmt.Errorf("%w: empty arc in %q", ErrMalformedPath, s)
			}
			arcs = append(arcs, uint32(current))
			current = 0
			hasDigit = false
		default:
			return nil, fmt.Errorf("%w: invalid character %q in %q", ErrMalformedPath, c, s)
		}
	}
	if !hasDigit {
		return nil, fmt.Errorf("%w: trailing dot in %q", ErrMalformedPath, s)
	}
	return append(arcs, uint32(current)), nil
}

// String returns the dotted form without a leading dot.
func (p Path) String() string {
	if len(p) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d", p[0])
	for _, arc := range p[1:] {
		fmt.Fprintf(&b, ".%d", arc)
	}
	return b.String()
}

// HasPrefix reports whether p starts with prefix.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i, arc := range prefix {
		if p[i] != arc {
			return false
		}
	}
	return true
}

// Equal reports whether two paths are identical.
func (p Path) Equal(q Path) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// Compare orders paths arc by arc, shorter prefixes first.
func (p Path) Compare(q Path) int {
	for i := 0; i < len(p) && i < len(q); i++ {
		if p[i] != q[i] {
			if p[i] < q[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(p) < len(q):
		return -1
	case len(p) > len(q):
		return 1
	}
	return 0
}
