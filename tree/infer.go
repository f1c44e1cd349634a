package tree

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueType is the Zabbix value type of an item.
type ValueType int

const (
	ValueFloat ValueType = iota
	ValueUnsigned
	ValueText
)

func (v ValueType) String() string {
	switch v {
	case ValueUnsigned:
		return "UNSIGNED"
	case ValueText:
		return "TEXT"
	}
	return "FLOAT"
}

// Inference is the result of mapping one node to Zabbix item semantics.
type Inference struct {
	ValueType     ValueType
	Unit          string
	Delta         bool // counter: collect as per-second rate
	NoRender      bool // binary payload, not meaningful rendered as text
	LowConfidence bool
	Notes         []string // surfaced in the generated item description
}

// Infer maps a node's syntax hint to a Zabbix value type and unit. The hint
// takes priority; the sample value is the fallback when no hint exists.
// Pure and stateless per node.
func Infer(n *Node) Inference {
	switch n.Syntax {
	case SyntaxCounter:
		inf := Inference{ValueType: ValueUnsigned, Unit: n.Units, Delta: true}
		if inf.Unit == "" {
			inf.Unit = "/s"
		}
		return inf
	case SyntaxGauge, SyntaxUnsigned:
		return Inference{ValueType: ValueUnsigned, Unit: n.Units}
	case SyntaxInteger, SyntaxTimeTicks:
		return Inference{ValueType: ValueFloat, Unit: n.Units}
	case SyntaxEnum:
		return Inference{ValueType: ValueFloat, Notes: []string{enumNote(n.Enum)}}
	case SyntaxOctetString:
		if n.Binary {
			return Inference{ValueType: ValueText, NoRender: true}
		}
		return Inference{ValueType: ValueText}
	case SyntaxBits:
		return Inference{ValueType: ValueText, NoRender: true}
	case SyntaxIPAddress, SyntaxObjectIdentifier:
		return Inference{ValueType: ValueText}
	}
	return inferFromSample(n)
}

func inferFromSample(n *Node) Inference {
	if !n.HasSample {
		return Inference{
			ValueType:     ValueText,
			LowConfidence: true,
			Notes:         []string{"type could not be determined, defaulting to text; review before enabling"},
		}
	}
	if _, err := strconv.ParseInt(n.Sample, 10, 64); err == nil {
		return Inference{ValueType: ValueFloat}
	}
	if Printable(n.Sample) {
		return Inference{ValueType: ValueText}
	}
	return Inference{ValueType: ValueText, NoRender: true}
}

func enumNote(values []EnumValue) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, fmt.Sprintf("%d:%s", v.Value, v.Label))
	}
	return "values: " + strings.Join(parts, ", ")
}

// Printable reports whether a value renders as text. Tabs and line breaks
// pass; any other control byte marks the value as binary. Shared with the
// PDU decoder so both sides draw the text/binary line the same way.
func Printable(s string) bool {
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b == '\n' || b == '\r' || b == '\t' {
			continue
		}
		if b < 0x20 || b == 0x7f {
			return false
		}
	}
	return true
}
