package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/specialistvlad/graphua/internal/config"
	"github.com/specialistvlad/graphua/internal/node"
	"github.com/specialistvlad/graphua/internal/nodeid"
	"github.com/specialistvlad/graphua/internal/session"
	"github.com/specialistvlad/graphua/internal/status"
	"github.com/specialistvlad/graphua/internal/transport/wire"
	"github.com/zclconf/go-cty/cty"
)

// DefaultServer is the socket.io endpoint client commands connect to.
const DefaultServer = "http://localhost:8080/socket.io/"

// Client subcommands.
const (
	CmdBrowse = "browse"
	CmdRead   = "read"
	CmdWrite  = "write"
	CmdCall   = "call"
)

// IsClientCommand reports whether name is a client subcommand.
func IsClientCommand(name string) bool {
	switch name {
	case CmdBrowse, CmdRead, CmdWrite, CmdCall:
		return true
	}
	return false
}

// ClientCommand is a parsed client subcommand.
type ClientCommand struct {
	Name     string
	Server   string
	Timeout  time.Duration
	Insecure bool

	Nodes     []nodeid.ID
	Attribute node.AttributeID

	Direction       node.Direction
	ReferenceType   nodeid.ID
	IncludeSubtypes bool
	NodeClassMask   uint32

	// Literals are the unparsed value of write or the arguments of call.
	Literals []string
}

var clientUsage = map[string]string{
	CmdBrowse: "graphua browse [options] NODE",
	CmdRead:   "graphua read [options] NODE...",
	CmdWrite:  "graphua write [options] NODE VALUE",
	CmdCall:   "graphua call [options] METHOD [ARG...]",
}

// ParseClient processes the arguments of a client subcommand. Node ids are
// either NodeId notation ("ns=1;s=pump") or a bare identifier in -namespace.
func ParseClient(name string, args []string, output io.Writer) (*ClientCommand, bool, error) {
	usage, ok := clientUsage[name]
	if !ok {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unknown command %q", name)}
	}
	flagSet := flag.NewFlagSet("graphua "+name, flag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.Usage = func() {
		fmt.Fprintf(output, "\nUsage:\n  %s\n\nOptions:\n", usage)
		flagSet.PrintDefaults()
	}

	cmd := &ClientCommand{Name: name}
	flagSet.StringVar(&cmd.Server, "server", DefaultServer, "URL of the graphua socket.io endpoint.")
	flagSet.DurationVar(&cmd.Timeout, "timeout", 10*time.Second, "Timeout of every request.")
	flagSet.BoolVar(&cmd.Insecure, "insecure", false, "Skip TLS certificate verification.")
	nsFlag := flagSet.Uint("namespace", 1, "Namespace of bare node identifiers.")
	attrFlag := flagSet.String("attr", "Value", "Attribute name or number to read or write.")
	dirFlag := flagSet.String("direction", "forward", "Browse direction: 'forward', 'inverse' or 'both'.")
	refFlag := flagSet.String("ref", "", "Browse only references of this type.")
	flagSet.BoolVar(&cmd.IncludeSubtypes, "subtypes", true, "Include subtypes of -ref.")
	maskFlag := flagSet.Uint("mask", 0, "Browse node class mask. 0 matches every class.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if *nsFlag > 0xFFFF {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("namespace %d out of range", *nsFlag)}
	}
	ns := uint16(*nsFlag)

	rest := flagSet.Args()
	var idArgs []string
	switch name {
	case CmdBrowse:
		if len(rest) != 1 {
			return nil, false, usageError(usage)
		}
		idArgs = rest
	case CmdRead:
		if len(rest) == 0 {
			return nil, false, usageError(usage)
		}
		idArgs = rest
	case CmdWrite:
		if len(rest) != 2 {
			return nil, false, usageError(usage)
		}
		idArgs, cmd.Literals = rest[:1], rest[1:]
	case CmdCall:
		if len(rest) == 0 {
			return nil, false, usageError(usage)
		}
		idArgs, cmd.Literals = rest[:1], rest[1:]
	}

	for _, raw := range idArgs {
		id, err := nodeid.ParseOrString(ns, raw)
		if err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		cmd.Nodes = append(cmd.Nodes, id)
	}

	attr, err := node.ParseAttributeID(*attrFlag)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	cmd.Attribute = attr

	switch *dirFlag {
	case "forward", "inverse", "both":
		cmd.Direction = node.ParseDirection(*dirFlag)
	default:
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("invalid direction %q: must be 'forward', 'inverse' or 'both'", *dirFlag)}
	}
	if *refFlag != "" {
		ref, err := nodeid.ParseOrString(ns, *refFlag)
		if err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
		cmd.ReferenceType = ref
	}
	cmd.NodeClassMask = uint32(*maskFlag)

	return cmd, false, nil
}

func usageError(usage string) error {
	return &ExitError{Code: 2, Message: "usage: " + usage}
}

// Run executes the command against sess and prints the result to out.
// Literals that do not parse are sent as strings. A bad status on any item is
// reported as an ExitError with code 1 after all results are printed.
func (c *ClientCommand) Run(ctx context.Context, sess session.Session, conv config.Converter, out io.Writer) error {
	values := make([]cty.Value, 0, len(c.Literals))
	for _, lit := range c.Literals {
		v, err := conv.ParseLiteral(lit)
		if err != nil {
			// Bare words such as `on` are taken as strings.
			v = cty.StringVal(lit)
		}
		values = append(values, v)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	var failed []string
	check := func(what string, code status.Code) {
		if code.IsBad() {
			failed = append(failed, fmt.Sprintf("%s: %s", what, code))
		}
	}

	switch c.Name {
	case CmdBrowse:
		res := sess.Browse(ctx, session.BrowseRequest{
			NodeID:          c.Nodes[0],
			Direction:       c.Direction,
			ReferenceType:   c.ReferenceType,
			IncludeSubtypes: c.IncludeSubtypes,
			NodeClassMask:   c.NodeClassMask,
		})
		check(c.Nodes[0].String(), res.Status)
		for _, ref := range res.References {
			arrow := "->"
			if !ref.IsForward {
				arrow = "<-"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", arrow, ref.ReferenceType, ref.NodeID, ref.NodeClass, ref.DisplayName)
		}

	case CmdRead:
		reads := make([]session.ReadValueID, len(c.Nodes))
		for i, id := range c.Nodes {
			reads[i] = session.ReadValueID{NodeID: id, Attribute: c.Attribute}
		}
		for i, dv := range sess.Read(ctx, reads) {
			check(c.Nodes[i].String(), dv.Status)
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Nodes[i], c.Attribute, FormatValue(dv.Value), dv.Status)
		}

	case CmdWrite:
		codes := sess.Write(ctx, []session.WriteValue{{NodeID: c.Nodes[0], Attribute: c.Attribute, Value: values[0]}})
		for _, code := range codes {
			check(c.Nodes[0].String(), code)
			fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Nodes[0], c.Attribute, code)
		}

	case CmdCall:
		results := sess.Call(ctx, []session.CallMethodRequest{{MethodID: c.Nodes[0], Arguments: values}})
		for _, res := range results {
			check(c.Nodes[0].String(), res.Status)
			outputs := make([]string, len(res.Outputs))
			for i, v := range res.Outputs {
				outputs[i] = FormatValue(v)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Nodes[0], res.Status, strings.Join(outputs, " "), res.Error)
		}
	}

	if err := tw.Flush(); err != nil {
		return err
	}
	if len(failed) > 0 {
		return &ExitError{Code: 1, Message: strings.Join(failed, "\n")}
	}
	return nil
}

// FormatValue renders v as JSON, e.g. `42`, `"on"` or `null`.
func FormatValue(v cty.Value) string {
	b, err := wire.NewValue(v).MarshalJSON()
	if err != nil {
		return v.GoString()
	}
	return string(b)
}
