package zabbix

import (
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thunderfinder/MIB2ZABBIXPY/config"
	"github.com/thunderfinder/MIB2ZABBIXPY/tree"
)

func mustPath(t *testing.T, s string) tree.Path {
	t.Helper()
	path, err := tree.ParsePath(s)
	require.NoError(t, err)
	return path
}

func classified(t *testing.T, base string, mib []tree.MibRecord, walk []tree.WalkRecord) *tree.Tree {
	t.Helper()
	tr, err := tree.Build(mustPath(t, base), mib, walk)
	require.NoError(t, err)
	return tree.Classify(tr)
}

func ifTableWalk(t *testing.T) []tree.WalkRecord {
	t.Helper()
	var records []tree.WalkRecord
	for _, col := range []string{"1", "2", "10"} {
		for _, row := range []string{"1", "2", "3"} {
			records = append(records, tree.WalkRecord{
				Path:   mustPath(t, "1.3.6.1.2.1.2.2.1."+col+"."+row),
				Value:  col + "-" + row,
				Syntax: tree.SyntaxInteger,
			})
		}
	}
	return records
}

// Scenario: two scalars from a plain system walk, no tables.
func TestSynthesizeScalars(t *testing.T) {
	tr := classified(t, "1.3.6.1.2.1", nil, []tree.WalkRecord{
		{Path: mustPath(t, "1.3.6.1.2.1.1.1.0"), Value: "desc", Syntax: tree.SyntaxOctetString},
		{Path: mustPath(t, "1.3.6.1.2.1.1.3.0"), Value: "12345", Syntax: tree.SyntaxTimeTicks},
	})
	doc := Synthesize(tr, config.Default())

	tpl := doc.Templates[0]
	require.Len(t, tpl.Items, 2)
	assert.Empty(t, tpl.DiscoveryRules)
	for _, item := range tpl.Items {
		assert.Equal(t, "DISABLED", item.Status, "items start disabled by default")
		assert.Equal(t, "SNMP_AGENT", item.Type)
	}
	assert.Equal(t, "1.3.6.1.2.1.1.1.0", tpl.Items[0].Key)
	assert.Equal(t, "TEXT", tpl.Items[0].ValueType)
	assert.Equal(t, "FLOAT", tpl.Items[1].ValueType)
}

// Scenario: ifIndex/ifDescr/ifInOctets × 3 rows becomes one discovery rule
// with three prototypes, the index macro bound to column .1.
func TestSynthesizeWalkTable(t *testing.T) {
	tr := classified(t, "1.3.6.1.2.1", nil, ifTableWalk(t))
	doc := Synthesize(tr, config.Default())

	tpl := doc.Templates[0]
	assert.Empty(t, tpl.Items)
	require.Len(t, tpl.DiscoveryRules, 1)

	rule := tpl.DiscoveryRules[0]
	assert.Equal(t, "1.3.6.1.2.1.2.2.1", rule.Key)
	assert.Equal(t, "discovery[{#SNMPINDEX},1.3.6.1.2.1.2.2.1.1]", rule.SnmpOID)
	require.Len(t, rule.ItemPrototypes, 3)

	proto := rule.ItemPrototypes[0]
	assert.Equal(t, "1.3.6.1.2.1.2.2.1.1[{#SNMPINDEX}]", proto.Key)
	assert.Equal(t, "1.3.6.1.2.1.2.2.1.1.{#SNMPINDEX}", proto.SnmpOID)
	for _, p := range rule.ItemPrototypes {
		assert.Equal(t, "DISABLED", p.Status)
	}
}

// A MIB-declared index column seeds the macro and is not duplicated as a
// regular prototype.
func TestSynthesizeDeclaredIndexNotDuplicated(t *testing.T) {
	mib := []tree.MibRecord{
		{Path: mustPath(t, "1.3.6.2"), Name: "ifTable", Kind: tree.KindTable},
		{Path: mustPath(t, "1.3.6.2.1"), Name: "ifEntry", Kind: tree.KindRow,
			RowIndex: []tree.Path{mustPath(t, "1.3.6.2.1.1")}},
		{Path: mustPath(t, "1.3.6.2.1.1"), Name: "ifIndex", Kind: tree.KindColumn, Syntax: tree.SyntaxInteger},
		{Path: mustPath(t, "1.3.6.2.1.2"), Name: "ifDescr", Kind: tree.KindColumn, Syntax: tree.SyntaxOctetString},
		{Path: mustPath(t, "1.3.6.2.1.10"), Name: "ifInOctets", Kind: tree.KindColumn, Syntax: tree.SyntaxCounter},
	}
	tr := classified(t, "1.3.6", mib, nil)
	doc := Synthesize(tr, config.Default())

	rules := doc.Templates[0].DiscoveryRules
	require.Len(t, rules, 1)
	assert.Equal(t, "ifTable", rules[0].Name)
	assert.Equal(t, "discovery[{#SNMPINDEX},1.3.6.2.1.1]", rules[0].SnmpOID)
	require.Len(t, rules[0].ItemPrototypes, 2)
	for _, p := range rules[0].ItemPrototypes {
		assert.NotContains(t, p.SnmpOID, "1.3.6.2.1.1.", "index column is macro-only")
	}
}

func TestSynthesizeCounterPreprocessing(t *testing.T) {
	mib := []tree.MibRecord{{
		Path: mustPath(t, "1.3.6.5.1"), Name: "totalOctets",
		Kind: tree.KindScalar, Syntax: tree.SyntaxCounter,
	}}
	tr := classified(t, "1.3.6.5", mib, nil)
	doc := Synthesize(tr, config.Default())

	item := doc.Templates[0].Items[0]
	assert.Equal(t, "UNSIGNED", item.ValueType)
	assert.Equal(t, "/s", item.Units)
	require.Len(t, item.Preprocessing, 1)
	assert.Equal(t, "CHANGE_PER_SECOND", item.Preprocessing[0].Type)
	assert.Equal(t, "1.3.6.5.1.0", item.SnmpOID, "MIB scalars poll the .0 instance")
}

// Scenario: a node with no name, no syntax and no sample is still emitted
// as a text item flagged for review, never dropped and never numeric.
func TestSynthesizeLowConfidenceNodeIsKept(t *testing.T) {
	tr := classified(t, "1.3.6", []tree.MibRecord{{Path: mustPath(t, "1.3.6.9")}}, nil)
	doc := Synthesize(tr, config.Default())

	items := doc.Templates[0].Items
	require.Len(t, items, 1)
	assert.Equal(t, "oid_9", items[0].Name)
	assert.Equal(t, "TEXT", items[0].ValueType)
	assert.Contains(t, items[0].Description, "review before enabling")
}

func TestSynthesizeEnableItems(t *testing.T) {
	opts := config.Default()
	opts.EnableItems = true

	tr := classified(t, "1.3.6.1.2.1", nil, ifTableWalk(t))
	doc := Synthesize(tr, opts)

	rule := doc.Templates[0].DiscoveryRules[0]
	assert.Equal(t, "ENABLED", rule.Status)
	for _, p := range rule.ItemPrototypes {
		assert.Equal(t, "ENABLED", p.Status)
	}
}

func TestSynthesizeOptionsAppear(t *testing.T) {
	opts := config.Default()
	opts.TemplateName = "Router"
	opts.Group = "Templates/Network"
	opts.CheckDelay = 120
	opts.History = 14

	tr := classified(t, "1.3.6", []tree.MibRecord{{
		Path: mustPath(t, "1.3.6.1"), Name: "x", Kind: tree.KindScalar, Syntax: tree.SyntaxGauge,
	}}, nil)
	doc := Synthesize(tr, opts)

	assert.Equal(t, "Templates/Network", doc.Groups[0].Name)
	tpl := doc.Templates[0]
	assert.Equal(t, "Router", tpl.Template)
	assert.Equal(t, "120", tpl.Items[0].Delay)
	assert.Equal(t, "14d", tpl.Items[0].History)
}

func TestSerializeDeterministic(t *testing.T) {
	render := func() []byte {
		tr := classified(t, "1.3.6.1.2.1", nil, ifTableWalk(t))
		doc := Synthesize(tr, config.Default())
		out, err := Serialize(doc)
		require.NoError(t, err)
		return out
	}
	assert.Equal(t, render(), render(), "identical input serializes byte-identically")
}

func TestSerializeRoundTrip(t *testing.T) {
	walk := append(ifTableWalk(t),
		tree.WalkRecord{Path: mustPath(t, "1.3.6.1.2.1.1.1.0"), Value: "desc", Syntax: tree.SyntaxOctetString},
		tree.WalkRecord{Path: mustPath(t, "1.3.6.1.2.1.1.3.0"), Value: "1", Syntax: tree.SyntaxTimeTicks},
	)
	tr := classified(t, "1.3.6.1.2.1", nil, walk)
	doc := Synthesize(tr, config.Default())

	out, err := Serialize(doc)
	require.NoError(t, err)

	var parsed Export
	require.NoError(t, xml.Unmarshal(out, &parsed))
	assert.Len(t, parsed.Groups, len(doc.Groups))
	require.Len(t, parsed.Templates, 1)
	assert.Len(t, parsed.Templates[0].Items, len(doc.Templates[0].Items))
	require.Len(t, parsed.Templates[0].DiscoveryRules, 1)
	assert.Len(t, parsed.Templates[0].DiscoveryRules[0].ItemPrototypes,
		len(doc.Templates[0].DiscoveryRules[0].ItemPrototypes))
}

func TestSerializeEscapesFreeText(t *testing.T) {
	tr := classified(t, "1.3.6", []tree.MibRecord{{
		Path: mustPath(t, "1.3.6.1"), Name: "alert<&>", Kind: tree.KindScalar,
		Syntax: tree.SyntaxOctetString, Description: `uses "<" and "&"`,
	}}, nil)
	out, err := Serialize(Synthesize(tr, config.Default()))
	require.NoError(t, err)

	assert.NotContains(t, string(out), "alert<&>")
	assert.Contains(t, string(out), "alert&lt;&amp;&gt;")
}
