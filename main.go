package main

import (
	"cmp"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"

	"github.com/olekukonko/tablewriter"

	"github.com/thunderfinder/MIB2ZABBIXPY/config"
	"github.com/thunderfinder/MIB2ZABBIXPY/smi"
	"github.com/thunderfinder/MIB2ZABBIXPY/snmp"
	"github.com/thunderfinder/MIB2ZABBIXPY/tree"
	"github.com/thunderfinder/MIB2ZABBIXPY/zabbix"
)

var (
	configFilename string
	moduleName     string
	rootOid        string
	outputFilename string
	preview        bool

	host      string
	port      uint
	version   string
	community string
	secLevel  string
	contextN  string
	username  string
	authProto string
	authPass  string
	privProto string
	privPass  string

	templateName string
	groupName    string
	enableItems  bool
	checkDelay   int
	discDelay    int
	history      int
	trends       int
)

func init() {
	flag.StringVar(&configFilename, "conf", "", "config `filename` (optional)")
	flag.StringVar(&moduleName, "m", "", "MIB `module` to convert")
	flag.StringVar(&rootOid, "o", "", "root `OID` (numeric or MODULE::name)")
	flag.StringVar(&outputFilename, "f", "", "output `filename` (default: stdout)")
	flag.BoolVar(&preview, "preview", false, "show detected items and tables instead of XML")

	flag.StringVar(&host, "host", "", "walk this `host` instead of (or in addition to) the MIB")
	flag.UintVar(&port, "p", 161, "SNMP UDP `port`")
	flag.StringVar(&version, "v", "2c", "SNMP `version` (1, 2c, 3)")
	flag.StringVar(&community, "c", "public", "SNMP `community` (v1/v2c)")
	flag.StringVar(&secLevel, "L", "", "security `level` (noAuthNoPriv, authNoPriv, authPriv)")
	flag.StringVar(&contextN, "n", "", "context `name` (v3)")
	flag.StringVar(&username, "u", "", "security `name` (v3)")
	flag.StringVar(&authProto, "a", "", "authentication `protocol` (MD5, SHA)")
	flag.StringVar(&authPass, "A", "", "authentication `passphrase`")
	flag.StringVar(&privProto, "x", "", "privacy `protocol` (DES, AES)")
	flag.StringVar(&privPass, "X", "", "privacy `passphrase`")

	flag.StringVar(&templateName, "N", "", "template `name` (default: module, sysName or root OID)")
	flag.StringVar(&groupName, "G", "Templates", "template `group`")
	flag.BoolVar(&enableItems, "e", false, "enable all template items (default: disabled)")
	flag.IntVar(&checkDelay, "check-delay", 60, "check interval in `seconds`")
	flag.IntVar(&discDelay, "disc-delay", 3600, "discovery interval in `seconds`")
	flag.IntVar(&history, "history", 7, "history retention in `days`")
	flag.IntVar(&trends, "trends", 365, "trends retention in `days`")
}

var sysNameOid = tree.Path{1, 3, 6, 1, 2, 1, 1, 5, 0}

func main() {
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	conf := config.New()
	if configFilename != "" {
		var err error
		conf, err = config.Load(configFilename)
		if err != nil {
			log.Fatalln(err)
		}
	}
	applyFlags(conf)

	if conf.Module == "" && conf.Oid == "" {
		log.Fatalln("a MIB module (-m), an OID (-o), or both are required")
	}
	if conf.Module == "" && conf.Target.Host == "" {
		log.Fatalln("walk mode (-o without -m) needs a target host (-host)")
	}

	var base tree.Path
	var mibRecords []tree.MibRecord
	if conf.Module != "" {
		mibParser := smi.New([]string{conf.Module}, conf.MIB.Directory)
		if err := mibParser.Init(); err != nil {
			log.Fatalln(err)
		}
		defer mibParser.Close()

		var err error
		base, mibRecords, err = mibParser.Lookup(cmp.Or(conf.Oid, conf.Module))
		if err != nil {
			log.Fatalln(err)
		}
	} else {
		var err error
		base, err = tree.ParsePath(conf.Oid)
		if err != nil {
			log.Fatalln(err)
		}
	}

	var walkRecords []tree.WalkRecord
	if conf.Target.Host != "" {
		s, err := snmp.Init(ctx, conf.Target)
		if err != nil {
			log.Fatalln(err)
		}
		defer s.Close()

		walkRecords, err = s.Walk(base)
		if err != nil {
			log.Fatalln(err)
		}
	}

	t, err := tree.Build(base, mibRecords, walkRecords)
	if err != nil {
		log.Fatalln(err)
	}
	tree.Classify(t)

	if preview {
		renderPreview(t)
		return
	}

	opts := conf.Template
	if opts.TemplateName == "" {
		opts.TemplateName = cmp.Or(conf.Module, sysName(walkRecords), base.String())
	}

	doc := zabbix.Synthesize(t, opts)
	out, err := zabbix.Serialize(doc)
	if err != nil {
		log.Fatalln(err)
	}

	if conf.Output == "" || conf.Output == "stdout" {
		os.Stdout.Write(out)
		return
	}
	if err := os.WriteFile(conf.Output, out, 0644); err != nil {
		log.Fatalln(err)
	}
}

// applyFlags copies only the flags actually given on the command line over
// the config file values, so the file keeps its say for everything else.
func applyFlags(conf *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "m":
			conf.Module = moduleName
		case "o":
			conf.Oid = rootOid
		case "f":
			conf.Output = outputFilename
		case "host":
			conf.Target.Host = host
		case "p":
			conf.Target.Port = uint16(port)
		case "v":
			conf.Target.Version = version
		case "c":
			conf.Target.Community = community
		case "L":
			conf.Target.SecLevel = secLevel
		case "n":
			conf.Target.Context = contextN
		case "u":
			conf.Target.Username = username
		case "a":
			conf.Target.AuthProto = authProto
		case "A":
			conf.Target.AuthPass = authPass
		case "x":
			conf.Target.PrivProto = privProto
		case "X":
			conf.Target.PrivPass = privPass
		case "N":
			conf.Template.TemplateName = templateName
		case "G":
			conf.Template.Group = groupName
		case "e":
			conf.Template.EnableItems = enableItems
		case "check-delay":
			conf.Template.CheckDelay = checkDelay
		case "disc-delay":
			conf.Template.DiscDelay = discDelay
		case "history":
			conf.Template.History = history
		case "trends":
			conf.Template.Trends = trends
		}
	})
}

// sysName picks the walked sysName.0 value, the original tool's default
// template name for live devices.
func sysName(records []tree.WalkRecord) string {
	for _, rec := range records {
		if rec.Path.Equal(sysNameOid) {
			return rec.Value
		}
	}
	return ""
}

func renderPreview(t *tree.Tree) {
	var scalars [][]string
	var rows []*tree.Node
	t.Walk(func(n *tree.Node) bool {
		switch n.Role {
		case tree.RoleScalar:
			inf := tree.Infer(n)
			scalars = append(scalars, []string{n.Path().String(), n.Name, inf.ValueType.String(), n.Sample})
		case tree.RoleTableRow:
			rows = append(rows, n)
			return false
		}
		return true
	})

	if len(scalars) > 0 {
		table := newPreviewTable()
		table.SetHeader([]string{"OID", "NAME", "TYPE", "VALUE"})
		for _, line := range scalars {
			table.Append(line)
		}
		table.Render()
	}

	for _, row := range rows {
		fmt.Printf("\ntable %s\n", row.Path())
		renderRowPreview(row)
	}
}

func renderRowPreview(row *tree.Node) {
	columns := row.Children()

	table := newPreviewTable()
	var header []string
	for _, col := range columns {
		name := col.Name
		if name == "" {
			name = fmt.Sprintf(".%d", col.Arc())
		}
		header = append(header, name)
	}
	table.SetHeader(header)

	for _, instance := range instancesOf(row) {
		var line []string
		for _, col := range columns {
			line = append(line, valueAt(col, instance))
		}
		table.Append(line)
	}
	table.Render()
}

func newPreviewTable() *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetColumnSeparator("")
	table.SetAutoFormatHeaders(false)
	table.SetHeaderLine(false)
	return table
}

// instancesOf is the union of instance suffixes across all columns, sorted.
func instancesOf(row *tree.Node) []tree.Path {
	seen := make(map[string]tree.Path)
	for _, col := range row.Children() {
		depth := len(col.Path())
		col.Walk(func(n *tree.Node) bool {
			if n.IsLeaf() && n != col {
				rel := n.Path()[depth:]
				seen[rel.String()] = rel
			}
			return true
		})
	}
	instances := make([]tree.Path, 0, len(seen))
	for _, p := range seen {
		instances = append(instances, p)
	}
	sort.Slice(instances, func(i, j int) bool { return instances[i].Compare(instances[j]) < 0 })
	return instances
}

func valueAt(col *tree.Node, instance tree.Path) string {
	n := col
	for _, arc := range instance {
		if n = n.Child(arc); n == nil {
			return ""
		}
	}
	return n.Sample
}
