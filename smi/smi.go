package smi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sleepinggenius2/gosmi"
	"github.com/sleepinggenius2/gosmi/models"
	"github.com/sleepinggenius2/gosmi/types"

	"github.com/thunderfinder/MIB2ZABBIXPY/tree"
)

// ErrModuleNotFound is returned when the requested module cannot be resolved
// by the loaded MIB search path.
var ErrModuleNotFound = errors.New("MIB module not found")

type SMI struct {
	Modules []string
	Paths   []string
}

func New(modules, paths []string) *SMI {
	return &SMI{
		Modules: modules,
		Paths:   paths,
	}
}

func (s *SMI) Init() error {
	gosmi.Init()

	for _, path := range s.Paths {
		gosmi.AppendPath(path)
	}
	for i, module := range s.Modules {
		moduleName, err := gosmi.LoadModule(module)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrModuleNotFound, err)
		}
		s.Modules[i] = moduleName
	}
	return nil
}

func (s *SMI) Close() {
	gosmi.Exit()
}

// Lookup resolves a root reference into the base OID and the symbol records
// below it. The reference is a numeric OID (".1.3.6.1.2.1.2.2"), a qualified
// name ("IF-MIB::ifTable"), or a bare module name covering the whole module.
func (s *SMI) Lookup(ref string) (tree.Path, []tree.MibRecord, error) {
	nodes, err := s.subtree(ref)
	if err != nil {
		return nil, nil, err
	}

	var records []tree.MibRecord
	for _, node := range nodes {
		if rec, ok := record(node); ok {
			records = append(records, rec)
		}
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("no objects found below %s", ref)
	}
	return commonPrefix(records), records, nil
}

func (s *SMI) subtree(ref string) ([]gosmi.SmiNode, error) {
	if ref == "" {
		return nil, fmt.Errorf("empty root reference")
	}

	if (ref[0] >= '0' && ref[0] <= '9') || ref[0] == '.' { // eg. .1.3.6.1.2.1.2.2
		node, err := gosmi.GetNodeByOID(types.OidMustFromString(ref))
		if err != nil {
			return nil, err
		}
		return node.GetSubtree(), nil
	}

	if strings.Contains(ref, "::") { // eg. IF-MIB::ifTable
		params := strings.SplitN(ref, "::", 2)
		module, err := gosmi.GetModule(params[0])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrModuleNotFound, err)
		}
		node, err := gosmi.GetNode(params[1], module)
		if err != nil {
			return nil, err
		}
		return node.GetSubtree(), nil
	}

	module, err := gosmi.GetModule(ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModuleNotFound, err)
	}
	return module.GetNodes(), nil
}

// record converts one SMI node to a symbol record. Notifications, groups and
// compliance statements are not pollable and produce no record.
func record(node gosmi.SmiNode) (tree.MibRecord, bool) {
	var kind tree.Kind
	switch node.Kind {
	case types.NodeScalar:
		kind = tree.KindScalar
	case types.NodeTable:
		kind = tree.KindTable
	case types.NodeRow:
		kind = tree.KindRow
	case types.NodeColumn:
		kind = tree.KindColumn
	default:
		return tree.MibRecord{}, false
	}

	rec := tree.MibRecord{
		Path:        pathOf(node.Oid),
		Name:        node.Name,
		Access:      accessOf(node.Access),
		Description: node.Description,
		Kind:        kind,
	}
	if len(rec.Path) == 0 {
		return tree.MibRecord{}, false
	}

	if node.Type != nil {
		rec.Syntax, rec.Enum = syntaxOf(node.Type)
		rec.Units = node.Type.Units
		rec.Binary = rec.Syntax == tree.SyntaxOctetString && hexFormat(node.Type.Format)
	}

	if kind == tree.KindRow {
		for _, idx := range node.GetIndex() {
			rec.RowIndex = append(rec.RowIndex, pathOf(idx.Oid))
		}
	}
	return rec, true
}

func pathOf(oid types.Oid) tree.Path {
	path := make(tree.Path, 0, len(oid))
	for _, sub := range oid {
		path = append(path, uint32(sub))
	}
	return path
}

func accessOf(access types.Access) tree.Access {
	switch access {
	case types.AccessNotAccessible:
		return tree.AccessNotAccessible
	case types.AccessReadOnly:
		return tree.AccessReadOnly
	case types.AccessReadWrite:
		return tree.AccessReadWrite
	}
	return tree.AccessUnknown
}

func syntaxOf(t *models.Type) (tree.Syntax, []tree.EnumValue) {
	switch t.Name {
	case "Counter", "Counter32", "Counter64", "ZeroBasedCounter32", "ZeroBasedCounter64":
		return tree.SyntaxCounter, nil
	case "Gauge", "Gauge32":
		return tree.SyntaxGauge, nil
	case "TimeTicks", "TimeStamp", "TimeInterval":
		return tree.SyntaxTimeTicks, nil
	case "IpAddress", "InetAddress", "NetworkAddress":
		return tree.SyntaxIPAddress, nil
	}

	switch t.BaseType {
	case types.BaseTypeInteger32, types.BaseTypeInteger64:
		return tree.SyntaxInteger, nil
	case types.BaseTypeUnsigned32, types.BaseTypeUnsigned64:
		return tree.SyntaxUnsigned, nil
	case types.BaseTypeEnum:
		var values []tree.EnumValue
		if t.Enum != nil {
			for _, v := range t.Enum.Values {
				values = append(values, tree.EnumValue{Value: v.Value, Label: v.Name})
			}
		}
		return tree.SyntaxEnum, values
	case types.BaseTypeBits:
		return tree.SyntaxBits, nil
	case types.BaseTypeOctetString:
		return tree.SyntaxOctetString, nil
	case types.BaseTypeObjectIdentifier:
		return tree.SyntaxObjectIdentifier, nil
	}
	return tree.SyntaxUnknown, nil
}

// hexFormat reports whether a DISPLAY-HINT renders the value byte by byte,
// eg. "1x:" for MacAddress.
func hexFormat(format string) bool {
	return strings.Contains(format, "x")
}

func commonPrefix(records []tree.MibRecord) tree.Path {
	base := records[0].Path
	for _, rec := range records[1:] {
		i := 0
		for i < len(base) && i < len(rec.Path) && base[i] == rec.Path[i] {
			i++
		}
		base = base[:i]
	}
	return base
}
