package zabbix

import (
	"fmt"
	"strings"

	"github.com/thunderfinder/MIB2ZABBIXPY/config"
	"github.com/thunderfinder/MIB2ZABBIXPY/tree"
)

// Synthesize derives the template document from a classified OID tree.
// Output order follows the tree's discovery order, so the same input always
// yields the same document. Nodes are never dropped: unnamed and untyped
// leaves are emitted with placeholders and a note for the reviewer.
func Synthesize(t *tree.Tree, opts config.Options) *Export {
	templateName := opts.TemplateName
	if templateName == "" {
		templateName = "SNMP " + t.Base().String()
	}

	s := synthesizer{opts: opts}
	tpl := Template{
		UUID:        entityUUID("template", templateName),
		Template:    templateName,
		Name:        templateName,
		Description: "Generated SNMP template for " + t.Base().String(),
		Groups:      []GroupRef{{Name: opts.Group}},
		Tags:        []Tag{{Tag: "class", Value: "snmp"}},
	}

	t.Walk(func(n *tree.Node) bool {
		switch n.Role {
		case tree.RoleScalar:
			tpl.Items = append(tpl.Items, s.item(n))
		case tree.RoleTableRow:
			tpl.DiscoveryRules = append(tpl.DiscoveryRules, s.rule(n))
			return false
		}
		return true
	})

	return &Export{
		Version:   "6.0",
		Groups:    []Group{{UUID: entityUUID("group", opts.Group), Name: opts.Group}},
		Templates: []Template{tpl},
	}
}

type synthesizer struct {
	opts config.Options
}

func (s *synthesizer) item(n *tree.Node) Item {
	oid := n.Path().String()
	if n.Kind == tree.KindScalar && n.IsLeaf() && !n.HasSample {
		// MIB-declared scalar without live data: poll the .0 instance
		oid += ".0"
	}
	name := n.Name
	if name == "" {
		name = placeholderName(n)
	}
	item := s.baseItem(tree.Infer(n), n.Description)
	item.UUID = entityUUID("item", oid)
	item.Name = name
	item.SnmpOID = oid
	item.Key = oid
	return item
}

// rule emits one discovery rule per table row node. Index columns seed the
// discovery macros; a MIB-declared index column is consumed by the macro and
// not duplicated as a prototype, while an inferred one stays a regular
// prototype since nothing guarantees it is only an index.
func (s *synthesizer) rule(row *tree.Node) DiscoveryRule {
	rowOid := row.Path().String()
	indexDeclared := len(row.RowIndex) > 0

	var indexes, others []*tree.Node
	for _, col := range row.Children() {
		if col.Role == tree.RoleIndexColumn {
			indexes = append(indexes, col)
		} else {
			others = append(others, col)
		}
	}

	macros := make(map[*tree.Node]string, len(indexes))
	var macroList []string
	for i, col := range indexes {
		macro := "{#SNMPINDEX}"
		if len(indexes) > 1 {
			macro = fmt.Sprintf("{#SNMPINDEX%d}", i+1)
		}
		macros[col] = macro
		macroList = append(macroList, macro)
	}

	var discovery []string
	for _, col := range indexes {
		discovery = append(discovery, macros[col], col.Path().String())
	}

	name := ""
	if p := row.Parent(); p != nil && p.Name != "" {
		name = p.Name
	} else if row.Name != "" {
		name = row.Name
	} else {
		name = placeholderName(row)
	}

	rule := DiscoveryRule{
		UUID:        entityUUID("discovery", rowOid),
		Name:        name,
		Type:        "SNMP_AGENT",
		SnmpOID:     "discovery[" + strings.Join(discovery, ",") + "]",
		Key:         rowOid,
		Delay:       fmt.Sprintf("%d", s.opts.DiscDelay),
		Description: row.Description,
		Status:      s.status(),
	}

	// index columns first, then the remaining columns in discovery order
	columns := append(append([]*tree.Node{}, indexes...), others...)
	for _, col := range columns {
		if indexDeclared && col.Role == tree.RoleIndexColumn {
			continue
		}
		rule.ItemPrototypes = append(rule.ItemPrototypes, s.prototype(col, macroList))
	}
	return rule
}

func (s *synthesizer) prototype(col *tree.Node, macros []string) Item {
	oid := col.Path().String()
	name := col.Name
	if name == "" {
		name = placeholderName(col)
	}
	suffix := strings.Join(macros, ".")

	item := s.baseItem(tree.Infer(representative(col)), col.Description)
	item.UUID = entityUUID("prototype", oid)
	item.Name = name + "." + suffix
	item.SnmpOID = oid + "." + suffix
	item.Key = oid + "[" + strings.Join(macros, ",") + "]"
	return item
}

func (s *synthesizer) baseItem(inf tree.Inference, description string) Item {
	item := Item{
		Type:        "SNMP_AGENT",
		Delay:       fmt.Sprintf("%d", s.opts.CheckDelay),
		History:     fmt.Sprintf("%dd", s.opts.History),
		Trends:      fmt.Sprintf("%dd", s.opts.Trends),
		ValueType:   inf.ValueType.String(),
		Units:       inf.Unit,
		Description: description,
		Status:      s.status(),
	}
	if inf.ValueType == tree.ValueText {
		item.Trends = "0"
	}
	if inf.Delta {
		item.Preprocessing = []Step{{Type: "CHANGE_PER_SECOND", Parameters: []string{""}}}
	}

	notes := inf.Notes
	if inf.NoRender {
		notes = append(notes, "binary value, shown as hex")
	}
	if len(notes) > 0 {
		if item.Description != "" {
			item.Description += "\n"
		}
		item.Description += strings.Join(notes, "\n")
	}
	return item
}

func (s *synthesizer) status() string {
	if s.opts.EnableItems {
		return "ENABLED"
	}
	return "DISABLED"
}

func placeholderName(n *tree.Node) string {
	p := n.Path()
	return fmt.Sprintf("oid_%d", p[len(p)-1])
}

// representative picks the node whose syntax or sample drives inference for
// a column: the column itself when the MIB typed it, otherwise the first
// instance observed under it.
func representative(col *tree.Node) *tree.Node {
	if col.Syntax != tree.SyntaxUnknown || col.HasSample || col.IsLeaf() {
		return col
	}
	found := col
	col.Walk(func(n *tree.Node) bool {
		if found != col {
			return false
		}
		if n != col && n.IsLeaf() {
			found = n
			return false
		}
		return true
	})
	return found
}
