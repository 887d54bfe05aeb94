package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/leodido/gpuctl"
	"github.com/leodido/gpuctl/interchange"
	"github.com/leodido/gpuctl/sim"
	"github.com/leodido/structcli"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thediveo/enumflag/v2"
)

// Build metadata injected via ldflags.
// When built without ldflags (e.g., plain `go build`), these remain
// at their zero values and the version command omits them gracefully.
var (
	version = ""
	commit  = ""
	date    = ""
)

func main() {
	root := &cobra.Command{
		Use:   "gpuctl",
		Short: "Capability discovery for GPU control libraries",
		Long: `gpuctl opens a session with the vendor GPU control library and reports what
each adapter and its sub-resources support.

Use it for operator diagnostics, fleet baselining, or CI/CD gating on the
telemetry and control records a host must expose.`,
		SilenceUsage: true,
	}

	root.AddCommand(probeCmd())
	root.AddCommand(checkCmd())
	root.AddCommand(baselineCmd())
	root.AddCommand(recordsCmd())
	root.AddCommand(versionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

type backendKind enumflag.Flag

const (
	backendNative backendKind = iota
	backendSim
)

var backendIdentifierMap = map[backendKind][]string{
	backendNative: {"native"},
	backendSim:    {"sim"},
}

type outputFormat enumflag.Flag

const (
	formatText outputFormat = iota
	formatJSON
	formatYAML
	formatCBOR
)

var formatIdentifierMap = map[outputFormat][]string{
	formatText: {"text"},
	formatJSON: {"json"},
	formatYAML: {"yaml", "yml"},
	formatCBOR: {"cbor"},
}

func (f outputFormat) interchange() interchange.Format {
	switch f {
	case formatYAML:
		return interchange.YAML
	case formatCBOR:
		return interchange.CBOR
	default:
		return interchange.JSON
	}
}

func decodeBackend(input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return input, nil
	}

	var b backendKind
	if err := enumflag.New(&b, "backend", backendIdentifierMap, enumflag.EnumCaseInsensitive).Set(s); err != nil {
		return nil, fmt.Errorf("unknown backend: %q (available: native, sim)", s)
	}
	return b, nil
}

func decodeFormat(input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return input, nil
	}

	var f outputFormat
	if err := enumflag.New(&f, "format", formatIdentifierMap, enumflag.EnumCaseInsensitive).Set(s); err != nil {
		return nil, fmt.Errorf("unknown format: %q (available: text, json, yaml, cbor)", s)
	}
	return f, nil
}

// host describes how to reach the control library.
type host struct {
	backend   backendKind
	fixture   string
	levelZero bool
	verbose   bool
}

func (h host) open() (*gpuctl.Session, error) {
	var b gpuctl.Backend
	switch h.backend {
	case backendSim:
		fx := sim.Default()
		if h.fixture != "" {
			var err error
			if fx, err = sim.LoadFile(h.fixture); err != nil {
				return nil, err
			}
		}
		sb, err := sim.New(fx)
		if err != nil {
			return nil, err
		}
		b = sb
	default:
		if h.fixture != "" {
			return nil, fmt.Errorf("--fixture requires --backend sim")
		}
		b = gpuctl.NewNativeBackend()
	}

	var opts []gpuctl.Option
	if h.verbose {
		opts = append(opts, gpuctl.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))))
	}
	var flags gpuctl.InitFlags
	if h.levelZero {
		flags |= gpuctl.InitUseLevelZero
	}
	return gpuctl.OpenSession(b, flags, opts...)
}

// ProbeOptions defines flags for the probe and baseline subcommands.
type ProbeOptions struct {
	Backend   backendKind  `flag:"backend" flagshort:"b" flagdescr:"Control library backend (native, sim)" flagcustom:"true"`
	Fixture   string       `flag:"fixture" flagshort:"f" flagdescr:"Simulated host description in YAML (sim backend only)"`
	LevelZero bool         `flag:"level-zero" flagdescr:"Route telemetry through the Level Zero loader"`
	Verbose   bool         `flag:"verbose" flagshort:"v" flagdescr:"Log library calls to stderr"`
	Format    outputFormat `flag:"format" flagshort:"o" flagdescr:"Output format (text, json, yaml, cbor)" flagcustom:"true"`
}

func (o *ProbeOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

func (o *ProbeOptions) DefineBackend(name, short, descr string, structField reflect.StructField, fieldValue reflect.Value) (pflag.Value, string) {
	fieldPtr := fieldValue.Addr().Interface().(*backendKind)
	return enumflag.New(fieldPtr, "backend", backendIdentifierMap, enumflag.EnumCaseInsensitive), descr
}

func (o *ProbeOptions) DecodeBackend(input any) (any, error) {
	return decodeBackend(input)
}

func (o *ProbeOptions) DefineFormat(name, short, descr string, structField reflect.StructField, fieldValue reflect.Value) (pflag.Value, string) {
	fieldPtr := fieldValue.Addr().Interface().(*outputFormat)
	return enumflag.New(fieldPtr, "format", formatIdentifierMap, enumflag.EnumCaseInsensitive), descr
}

func (o *ProbeOptions) DecodeFormat(input any) (any, error) {
	return decodeFormat(input)
}

func (o *ProbeOptions) host() host {
	return host{backend: o.Backend, fixture: o.Fixture, levelZero: o.LevelZero, verbose: o.Verbose}
}

func probeCmd() *cobra.Command {
	opts := &ProbeOptions{}

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Probe every adapter and resource and display results",
		PreRunE: func(c *cobra.Command, args []string) error {
			return structcli.Unmarshal(c, opts)
		},
		RunE: func(c *cobra.Command, args []string) error {
			return runProbe(c.OutOrStdout(), opts)
		},
	}

	if err := opts.Attach(cmd); err != nil {
		panic(err)
	}
	return cmd
}

func runProbe(w io.Writer, opts *ProbeOptions) error {
	s, err := opts.host().open()
	if err != nil {
		return err
	}
	defer s.Close()

	rep, err := gpuctl.Probe(s)
	if err != nil {
		return err
	}

	if opts.Format == formatText {
		_, err := fmt.Fprint(w, rep)
		return err
	}
	return interchange.Write(w, opts.Format.interchange(), rep)
}

func baselineCmd() *cobra.Command {
	opts := &ProbeOptions{}

	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Print the requirements this host satisfies",
		Long: `Probe this host and print the requirements it satisfies.

The text output is a --require value for the check subcommand, so a reference
host can gate the rest of a fleet:

  gpuctl check --require "$(gpuctl baseline)"`,
		PreRunE: func(c *cobra.Command, args []string) error {
			return structcli.Unmarshal(c, opts)
		},
		RunE: func(c *cobra.Command, args []string) error {
			return runBaseline(c.OutOrStdout(), opts)
		},
	}

	if err := opts.Attach(cmd); err != nil {
		panic(err)
	}
	return cmd
}

func runBaseline(w io.Writer, opts *ProbeOptions) error {
	s, err := opts.host().open()
	if err != nil {
		return err
	}
	defer s.Close()

	rep, err := gpuctl.Probe(s)
	if err != nil {
		return err
	}
	group, err := gpuctl.Baseline(rep)
	if err != nil {
		return err
	}

	reqs := requirements(group)
	if opts.Format == formatText {
		_, err := fmt.Fprintln(w, reqs.String())
		return err
	}
	return interchange.Write(w, opts.Format.interchange(), reqs.names())
}

// CheckOptions defines flags for the check subcommand.
type CheckOptions struct {
	Backend   backendKind  `flag:"backend" flagshort:"b" flagdescr:"Control library backend (native, sim)" flagcustom:"true"`
	Fixture   string       `flag:"fixture" flagshort:"f" flagdescr:"Simulated host description in YAML (sim backend only)"`
	LevelZero bool         `flag:"level-zero" flagdescr:"Route telemetry through the Level Zero loader"`
	Verbose   bool         `flag:"verbose" flagshort:"v" flagdescr:"Log library calls to stderr"`
	Require   requirements `flag:"require" flagshort:"r" flagdescr:"Required capabilities (see available records and resources above)" flagrequired:"true" flagcustom:"true"`
	JSON      bool         `flag:"json" flagshort:"j" flagdescr:"Output in JSON format"`
}

func (o *CheckOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

func (o *CheckOptions) DefineBackend(name, short, descr string, structField reflect.StructField, fieldValue reflect.Value) (pflag.Value, string) {
	fieldPtr := fieldValue.Addr().Interface().(*backendKind)
	return enumflag.New(fieldPtr, "backend", backendIdentifierMap, enumflag.EnumCaseInsensitive), descr
}

func (o *CheckOptions) DecodeBackend(input any) (any, error) {
	return decodeBackend(input)
}

func (o *CheckOptions) DefineRequire(name, short, descr string, structField reflect.StructField, fieldValue reflect.Value) (pflag.Value, string) {
	fieldPtr := fieldValue.Addr().Interface().(*requirements)
	*fieldPtr = nil
	return fieldPtr, descr
}

func (o *CheckOptions) DecodeRequire(input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return input, nil
	}

	return parseRequirements(s)
}

// CompleteRequire completes the comma-separated --require value.
func (o *CheckOptions) CompleteRequire(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	prefix, current := "", toComplete
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix, current = toComplete[:i+1], toComplete[i+1:]
	}

	selected := map[string]bool{}
	for _, s := range strings.Split(prefix, ",") {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			selected[s] = true
		}
	}

	current = strings.ToLower(strings.TrimSpace(current))
	var candidates []string
	for _, name := range requirementCandidates() {
		if selected[name] || !strings.HasPrefix(name, current) {
			continue
		}
		candidates = append(candidates, prefix+name)
	}
	return candidates, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

func (o *CheckOptions) host() host {
	return host{backend: o.Backend, fixture: o.Fixture, levelZero: o.LevelZero, verbose: o.Verbose}
}

func checkCmd() *cobra.Command {
	opts := &CheckOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check specific capability requirements",
		Long:  checkLongDescription(),
		PreRunE: func(c *cobra.Command, args []string) error {
			return structcli.Unmarshal(c, opts)
		},
		RunE: func(c *cobra.Command, args []string) error {
			if len(opts.Require) == 0 {
				return fmt.Errorf("no requirements specified")
			}

			s, err := opts.host().open()
			if err != nil {
				return err
			}

			err = gpuctl.Check(s, opts.Require...)
			s.Close()
			if err != nil {
				var ce *gpuctl.CapabilityError
				if errors.As(err, &ce) {
					if opts.JSON {
						if err := printJSON(c.OutOrStdout(), map[string]any{
							"ok":         false,
							"capability": ce.Capability,
							"reason":     ce.Reason,
						}); err != nil {
							return err
						}
					} else {
						fmt.Fprintf(os.Stderr, "FAIL: %s — %s\n", ce.Capability, ce.Reason)
					}
					os.Exit(1)
				}
				return err
			}

			if opts.JSON {
				return printJSON(c.OutOrStdout(), map[string]any{"ok": true})
			}
			fmt.Fprintln(c.OutOrStdout(), "OK: all requirements satisfied")
			return nil
		},
	}

	if err := opts.Attach(cmd); err != nil {
		panic(err)
	}
	_ = cmd.RegisterFlagCompletionFunc("require", opts.CompleteRequire)
	return cmd
}

// RecordsOptions defines flags for the records subcommand.
type RecordsOptions struct {
	JSON bool `flag:"json" flagshort:"j" flagdescr:"Output in JSON format"`
}

func (o *RecordsOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

type recordInfo struct {
	Name     string `json:"name"`
	Resource string `json:"resource"`
	Modes    string `json:"modes"`
	Size     uint32 `json:"size"`
	Version  uint8  `json:"version"`
}

func recordInfos() []recordInfo {
	infos := make([]recordInfo, 0, len(gpuctl.RecordKinds()))
	for _, k := range gpuctl.RecordKinds() {
		infos = append(infos, recordInfo{
			Name:     k.String(),
			Resource: k.Resource().String(),
			Modes:    k.Modes().String(),
			Size:     k.Size(),
			Version:  k.SchemaVersion(),
		})
	}
	return infos
}

func recordsCmd() *cobra.Command {
	opts := &RecordsOptions{}

	cmd := &cobra.Command{
		Use:   "records",
		Short: "List the record kinds this build knows",
		PreRunE: func(c *cobra.Command, args []string) error {
			return structcli.Unmarshal(c, opts)
		},
		RunE: func(c *cobra.Command, args []string) error {
			infos := recordInfos()
			if opts.JSON {
				return printJSON(c.OutOrStdout(), infos)
			}

			w := c.OutOrStdout()
			fmt.Fprintf(w, "%-30s %-12s %-8s %5s %s\n", "RECORD", "RESOURCE", "MODES", "SIZE", "VERSION")
			for _, r := range infos {
				fmt.Fprintf(w, "%-30s %-12s %-8s %5d %d\n", r.Name, r.Resource, r.Modes, r.Size, r.Version)
			}
			return nil
		},
	}

	if err := opts.Attach(cmd); err != nil {
		panic(err)
	}
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show tool and control library API version",
		RunE: func(c *cobra.Command, args []string) error {
			w := c.OutOrStdout()
			if version != "" {
				fmt.Fprintf(w, "gpuctl %s", version)
				if commit != "" {
					fmt.Fprintf(w, " (%s)", commit)
				}
				if date != "" {
					fmt.Fprintf(w, " built %s", date)
				}
				fmt.Fprintln(w)
			} else {
				fmt.Fprintln(w, "gpuctl (dev)")
			}

			fmt.Fprintf(w, "API: %s\n", gpuctl.CurrentAPIVersion)
			return nil
		},
	}
}

func printJSON(w io.Writer, v any) error {
	return interchange.Write(w, interchange.JSON, v)
}

func checkLongDescription() string {
	return fmt.Sprintf(`Check that the control library supports all required capabilities.
Exits with code 0 if all requirements are met, 1 if any are missing.

A requirement is a record kind, %s<kind> or %s<kind>/v<version>.

Available records:
%s

Available resources:
%s`, resourcePrefix, interfacePrefix,
		formatWrappedList(gpuctl.RecordKindNames(), "  ", 80),
		formatWrappedList(resourceNames(), "  ", 80))
}

func formatWrappedList(items []string, indent string, maxWidth int) string {
	if len(items) == 0 {
		return indent + "(none)"
	}

	lines := make([]string, 0, len(items))
	line := indent
	for i, item := range items {
		token := item
		if i < len(items)-1 {
			token += ", "
		}

		if len(line)+len(token) > maxWidth && line != indent {
			lines = append(lines, strings.TrimRight(line, " "))
			line = indent + token
			continue
		}

		line += token
	}

	lines = append(lines, strings.TrimRight(line, " "))
	return strings.Join(lines, "\n")
}

const (
	resourcePrefix  = "resource:"
	interfacePrefix = "interface:"
)

type requirements []gpuctl.Requirement

var recordIdentifierMap = func() map[gpuctl.RecordKind][]string {
	ids := make(map[gpuctl.RecordKind][]string, len(gpuctl.RecordKinds()))
	for _, k := range gpuctl.RecordKinds() {
		ids[k] = []string{k.String()}
	}
	return ids
}()

var resourceIdentifierMap = func() map[gpuctl.ResourceKind][]string {
	ids := make(map[gpuctl.ResourceKind][]string, len(gpuctl.ResourceKinds()))
	for _, k := range gpuctl.ResourceKinds() {
		ids[k] = []string{k.String()}
	}
	return ids
}()

func resourceNames() []string {
	names := make([]string, 0, len(gpuctl.ResourceKinds()))
	for _, k := range gpuctl.ResourceKinds() {
		names = append(names, k.String())
	}
	return names
}

func requirementCandidates() []string {
	candidates := gpuctl.RecordKindNames()
	for _, name := range resourceNames() {
		candidates = append(candidates, resourcePrefix+name)
	}
	return candidates
}

func requirementName(req gpuctl.Requirement) string {
	switch r := req.(type) {
	case gpuctl.RecordKind:
		return r.String()
	case gpuctl.ResourceRequirement:
		return resourcePrefix + r.Kind.String()
	case gpuctl.InterfaceRequirement:
		return interfacePrefix + r.ID.String()
	case gpuctl.RequirementGroup:
		return strings.Join(requirements(r).names(), ",")
	}
	return fmt.Sprintf("%v", req)
}

func (r requirements) names() []string {
	names := make([]string, 0, len(r))
	for _, req := range r {
		names = append(names, requirementName(req))
	}
	return names
}

func (r *requirements) String() string {
	return strings.Join(r.names(), ",")
}

func (r *requirements) Set(input string) error {
	reqs, err := parseRequirements(input)
	if err != nil {
		return err
	}

	*r = append(*r, reqs...)
	return nil
}

func (r *requirements) Type() string {
	return "requirement"
}

func parseRequirements(input string) (requirements, error) {
	if strings.TrimSpace(input) == "" {
		return requirements{}, nil
	}

	parts := strings.Split(input, ",")
	reqs := make(requirements, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}

		lower := strings.ToLower(name)
		switch {
		case strings.HasPrefix(lower, resourcePrefix):
			kind, err := parseResource(name[len(resourcePrefix):])
			if err != nil {
				return nil, err
			}
			reqs = append(reqs, gpuctl.RequireResource(kind))

		case strings.HasPrefix(lower, interfacePrefix):
			id, err := parseInterface(name[len(interfacePrefix):])
			if err != nil {
				return nil, err
			}
			reqs = append(reqs, gpuctl.RequireInterface(id))

		default:
			var kind gpuctl.RecordKind
			enumValue := enumflag.New(&kind, "gpuctl.RecordKind", recordIdentifierMap, enumflag.EnumCaseInsensitive)
			if err := enumValue.Set(name); err != nil {
				return nil, fmt.Errorf("unknown record: %q (available: %s)", name, strings.Join(gpuctl.RecordKindNames(), ", "))
			}
			reqs = append(reqs, kind)
		}
	}

	return reqs, nil
}

func parseResource(name string) (gpuctl.ResourceKind, error) {
	var kind gpuctl.ResourceKind
	enumValue := enumflag.New(&kind, "gpuctl.ResourceKind", resourceIdentifierMap, enumflag.EnumCaseInsensitive)
	if err := enumValue.Set(name); err != nil {
		return 0, fmt.Errorf("unknown resource: %q (available: %s)", name, strings.Join(resourceNames(), ", "))
	}
	return kind, nil
}

// parseInterface parses "<resource>/v<version>".
func parseInterface(text string) (gpuctl.InterfaceID, error) {
	name, ver, ok := strings.Cut(text, "/v")
	if !ok {
		return gpuctl.InterfaceID{}, fmt.Errorf("interface %q: want <resource>/v<version>", text)
	}
	kind, err := parseResource(name)
	if err != nil {
		return gpuctl.InterfaceID{}, err
	}
	n, err := strconv.ParseUint(ver, 10, 32)
	if err != nil || n == 0 {
		return gpuctl.InterfaceID{}, fmt.Errorf("interface %q: invalid version %q", text, ver)
	}
	return gpuctl.Interface(kind, uint32(n)), nil
}
