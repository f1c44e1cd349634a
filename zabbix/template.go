// Package zabbix holds the template document model and its XML rendering,
// following the Zabbix 6.0 import grammar.
package zabbix

import (
	"encoding/xml"
	"strings"

	"github.com/google/uuid"
)

type Export struct {
	XMLName   xml.Name   `xml:"zabbix_export"`
	Version   string     `xml:"version"`
	Groups    []Group    `xml:"groups>group"`
	Templates []Template `xml:"templates>template"`
}

type Group struct {
	UUID string `xml:"uuid"`
	Name string `xml:"name"`
}

type Template struct {
	UUID           string          `xml:"uuid"`
	Template       string          `xml:"template"`
	Name           string          `xml:"name"`
	Description    string          `xml:"description,omitempty"`
	Groups         []GroupRef      `xml:"groups>group"`
	Tags           []Tag           `xml:"tags>tag,omitempty"`
	Items          []Item          `xml:"items>item,omitempty"`
	DiscoveryRules []DiscoveryRule `xml:"discovery_rules>discovery_rule,omitempty"`
}

type GroupRef struct {
	Name string `xml:"name"`
}

type Tag struct {
	Tag   string `xml:"tag"`
	Value string `xml:"value"`
}

// Item doubles as an item prototype; prototypes carry discovery macros in
// their name, key and OID.
type Item struct {
	UUID          string `xml:"uuid"`
	Name          string `xml:"name"`
	Type          string `xml:"type"`
	SnmpOID       string `xml:"snmp_oid"`
	Key           string `xml:"key"`
	Delay         string `xml:"delay"`
	History       string `xml:"history"`
	Trends        string `xml:"trends"`
	ValueType     string `xml:"value_type"`
	Units         string `xml:"units,omitempty"`
	Description   string `xml:"description,omitempty"`
	Preprocessing []Step `xml:"preprocessing>step,omitempty"`
	Status        string `xml:"status"`
}

type Step struct {
	Type       string   `xml:"type"`
	Parameters []string `xml:"parameters>parameter"`
}

type DiscoveryRule struct {
	UUID           string `xml:"uuid"`
	Name           string `xml:"name"`
	Type           string `xml:"type"`
	SnmpOID        string `xml:"snmp_oid"`
	Key            string `xml:"key"`
	Delay          string `xml:"delay"`
	Description    string `xml:"description,omitempty"`
	Status         string `xml:"status"`
	ItemPrototypes []Item `xml:"item_prototypes>item_prototype,omitempty"`
}

// Serialize renders the document. Output is byte-identical for identical
// documents: uuids are input-derived and element order follows the model.
func Serialize(doc *Export) ([]byte, error) {
	out, err := xml.MarshalIndent(doc, "", "    ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}

// entityUUID derives a stable uuid for one export entity, in the dashless
// form Zabbix uses.
func entityUUID(parts ...string) string {
	id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(strings.Join(parts, "\x00")))
	return strings.ReplaceAll(id.String(), "-", "")
}
