package snmp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"

	"github.com/thunderfinder/MIB2ZABBIXPY/config"
	"github.com/thunderfinder/MIB2ZABBIXPY/tree"
)

// ErrTransport covers connect, walk and authentication failures. Fatal for
// walk-mode runs; any retry policy lives in gosnmp, not here.
var ErrTransport = errors.New("snmp transport error")

type Handler interface {
	Walk(rootOid string, walkFn gosnmp.WalkFunc) error
	BulkWalk(rootOid string, walkFn gosnmp.WalkFunc) error

	Connect() error
	Close() error
}

type snmpHandler struct {
	gosnmp.GoSNMP
}

func NewHandler(ctx context.Context, target config.Target) (Handler, error) {
	g := gosnmp.GoSNMP{
		Context:            ctx,
		Target:             target.Host,
		Port:               161,
		Transport:          "udp",
		Timeout:            time.Duration(10) * time.Second,
		Retries:            3,
		ExponentialTimeout: true,
		MaxOids:            gosnmp.MaxOids,
	}
	if target.Port != 0 {
		g.Port = target.Port
	}

	community := target.Community
	if community == "" {
		community = "public"
	}

	switch target.Version {
	case "1":
		g.Version = gosnmp.Version1
		g.Community = community
	case "", "2", "2c":
		g.Version = gosnmp.Version2c
		g.Community = community
	case "3":
		g.Version = gosnmp.Version3
		g.SecurityModel = gosnmp.UserSecurityModel
		g.ContextName = target.Context
		flags, err := msgFlags(target.SecLevel)
		if err != nil {
			return nil, err
		}
		g.MsgFlags = flags
		usm, err := usmParams(target)
		if err != nil {
			return nil, err
		}
		g.SecurityParameters = usm
	default:
		return nil, fmt.Errorf("unsupported SNMP version %q", target.Version)
	}

	return &snmpHandler{g}, nil
}

func (x *snmpHandler) Close() error {
	return x.GoSNMP.Conn.Close()
}

func msgFlags(level string) (gosnmp.SnmpV3MsgFlags, error) {
	switch level {
	case "", "noAuthNoPriv":
		return gosnmp.NoAuthNoPriv, nil
	case "authNoPriv":
		return gosnmp.AuthNoPriv, nil
	case "authPriv":
		return gosnmp.AuthPriv, nil
	}
	return 0, fmt.Errorf("unsupported security level %q", level)
}

func usmParams(target config.Target) (*gosnmp.UsmSecurityParameters, error) {
	usm := &gosnmp.UsmSecurityParameters{
		UserName:                 target.Username,
		AuthenticationPassphrase: target.AuthPass,
		PrivacyPassphrase:        target.PrivPass,
	}
	switch strings.ToUpper(target.AuthProto) {
	case "":
		usm.AuthenticationProtocol = gosnmp.NoAuth
	case "MD5":
		usm.AuthenticationProtocol = gosnmp.MD5
	case "SHA":
		usm.AuthenticationProtocol = gosnmp.SHA
	default:
		return nil, fmt.Errorf("unsupported auth protocol %q", target.AuthProto)
	}
	switch strings.ToUpper(target.PrivProto) {
	case "":
		usm.PrivacyProtocol = gosnmp.NoPriv
	case "DES":
		usm.PrivacyProtocol = gosnmp.DES
	case "AES":
		usm.PrivacyProtocol = gosnmp.AES
	default:
		return nil, fmt.Errorf("unsupported privacy protocol %q", target.PrivProto)
	}
	return usm, nil
}

type SNMP struct {
	handler Handler
	version gosnmp.SnmpVersion
}

func Init(ctx context.Context, target config.Target) (*SNMP, error) {
	g, err := NewHandler(ctx, target)
	if err != nil {
		return nil, err
	}
	if err := g.Connect(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	version := gosnmp.Version2c
	if h, ok := g.(*snmpHandler); ok {
		version = h.Version
	}
	return &SNMP{handler: g, version: version}, nil
}

func (s *SNMP) Close() error {
	return s.handler.Close()
}

// Walk enumerates every OID below root and decodes each PDU into a walk
// record. GETBULK needs SNMPv2c or later, so v1 falls back to GETNEXT.
func (s *SNMP) Walk(root tree.Path) ([]tree.WalkRecord, error) {
	var records []tree.WalkRecord
	fn := func(pdu gosnmp.SnmpPDU) error {
		rec, err := Record(pdu)
		if err != nil {
			return err
		}
		records = append(records, rec)
		return nil
	}

	var err error
	if s.version == gosnmp.Version1 {
		err = s.handler.Walk("."+root.String(), fn)
	} else {
		err = s.handler.BulkWalk("."+root.String(), fn)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return records, nil
}

// Record decodes one PDU into a walk record. The syntax hint derived from
// the PDU type only fills nodes the MIB left untyped.
func Record(pdu gosnmp.SnmpPDU) (tree.WalkRecord, error) {
	path, err := tree.ParsePath(pdu.Name)
	if err != nil {
		return tree.WalkRecord{}, err
	}
	rec := tree.WalkRecord{Path: path}

	switch pdu.Type {
	case gosnmp.OctetString:
		value, ok := pdu.Value.([]byte)
		if !ok {
			return rec, fmt.Errorf("can not parse octet string at %s", pdu.Name)
		}
		rec.Syntax = tree.SyntaxOctetString
		if tree.Printable(string(value)) {
			rec.Value = string(value)
		} else {
			rec.Value = hexString(value)
			rec.Binary = true
		}
	case gosnmp.Counter32, gosnmp.Counter64:
		rec.Syntax = tree.SyntaxCounter
		rec.Value = gosnmp.ToBigInt(pdu.Value).String()
	case gosnmp.Gauge32:
		rec.Syntax = tree.SyntaxGauge
		rec.Value = gosnmp.ToBigInt(pdu.Value).String()
	case gosnmp.Uinteger32:
		rec.Syntax = tree.SyntaxUnsigned
		rec.Value = gosnmp.ToBigInt(pdu.Value).String()
	case gosnmp.Integer:
		rec.Syntax = tree.SyntaxInteger
		rec.Value = gosnmp.ToBigInt(pdu.Value).String()
	case gosnmp.TimeTicks:
		rec.Syntax = tree.SyntaxTimeTicks
		rec.Value = gosnmp.ToBigInt(pdu.Value).String()
	case gosnmp.IPAddress:
		rec.Syntax = tree.SyntaxIPAddress
		rec.Value = fmt.Sprintf("%v", pdu.Value)
	case gosnmp.ObjectIdentifier:
		rec.Syntax = tree.SyntaxObjectIdentifier
		rec.Value = strings.TrimPrefix(fmt.Sprintf("%v", pdu.Value), ".")
	default:
		rec.Value = gosnmp.ToBigInt(pdu.Value).String()
	}
	return rec, nil
}

func hexString(value []byte) string {
	var parts []string
	for _, i := range value {
		parts = append(parts, fmt.Sprintf("%02x", i))
	}
	return strings.Join(parts, ":")
}
