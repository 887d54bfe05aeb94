package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/leodido/gpuctl"
	"github.com/spf13/cobra"
)

func TestParseRequirements_CaseInsensitive(t *testing.T) {
	got, err := parseRequirements(" MEMORY-STATE, ecc-state, Resource:Fan, interface:Display/v2 ")
	if err != nil {
		t.Fatalf("parseRequirements() error = %v", err)
	}

	want := requirements{
		gpuctl.RecordMemoryState,
		gpuctl.RecordEccState,
		gpuctl.RequireResource(gpuctl.ResourceFan),
		gpuctl.RequireInterface(gpuctl.Interface(gpuctl.ResourceDisplay, 2)),
	}

	if len(got) != len(want) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestParseRequirements_Errors(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"ciao", `unknown record: "ciao"`},
		{"memory-state,resource:gpu", `unknown resource: "gpu"`},
		{"interface:display", "want <resource>/v<version>"},
		{"interface:display/v0", "invalid version"},
		{"interface:display/vx", "invalid version"},
		{"interface:gpu/v2", `unknown resource: "gpu"`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := parseRequirements(tt.input)
			if err == nil {
				t.Fatalf("parseRequirements(%s) expected error", tt.input)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q missing %q", err, tt.want)
			}
		})
	}

	_, err := parseRequirements("ciao")
	if !strings.Contains(err.Error(), "available:") {
		t.Fatalf("error %q missing available records", err)
	}
}

func TestParseRequirements_Empty(t *testing.T) {
	got, err := parseRequirements(" , ")
	if err != nil || len(got) != 0 {
		t.Fatalf("parseRequirements() = %v, %v", got, err)
	}
}

func TestRequirementsString(t *testing.T) {
	r := requirements{
		gpuctl.RecordEccState,
		gpuctl.RequireResource(gpuctl.ResourceFan),
		gpuctl.RequireInterface(gpuctl.Interface(gpuctl.ResourceDisplay, 2)),
		gpuctl.RequirementGroup{gpuctl.RecordMemoryState},
	}
	if got, want := r.String(), "ecc-state,resource:fan,interface:display/v2,memory-state"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}

	var set requirements
	if err := set.Set("ecc-state"); err != nil {
		t.Fatal(err)
	}
	if err := set.Set("resource:fan"); err != nil {
		t.Fatal(err)
	}
	if len(set) != 2 || set.Type() != "requirement" {
		t.Fatalf("Set() accumulated %v", set)
	}
}

func TestCheckLongDescription_UsesEnumNames(t *testing.T) {
	desc := checkLongDescription()
	for _, header := range []string{"Available records:", "Available resources:"} {
		if !strings.Contains(desc, header) {
			t.Fatalf("checkLongDescription() missing %q: %q", header, desc)
		}
	}

	for _, name := range gpuctl.RecordKindNames() {
		if !strings.Contains(desc, name) {
			t.Fatalf("checkLongDescription() missing record %q", name)
		}
	}
	for _, name := range resourceNames() {
		if !strings.Contains(desc, name) {
			t.Fatalf("checkLongDescription() missing resource %q", name)
		}
	}
}

func TestFormatWrappedList(t *testing.T) {
	if got := formatWrappedList(nil, "  ", 80); got != "  (none)" {
		t.Fatalf("formatWrappedList(nil) = %q", got)
	}

	got := formatWrappedList([]string{"aaaa", "bbbb", "cccc"}, "  ", 14)
	if want := "  aaaa, bbbb,\n  cccc"; got != want {
		t.Fatalf("formatWrappedList() = %q, want %q", got, want)
	}
}

func TestCheckOptionsCompleteRequire(t *testing.T) {
	opts := &CheckOptions{}

	t.Run("empty input returns record candidates", func(t *testing.T) {
		got, directive := opts.CompleteRequire(nil, nil, "")
		if len(got) == 0 {
			t.Fatal("expected non-empty candidates")
		}
		if got[0] != gpuctl.RecordKindNames()[0] {
			t.Fatalf("first candidate = %q, want %q", got[0], gpuctl.RecordKindNames()[0])
		}
		if directive != cobra.ShellCompDirectiveNoFileComp|cobra.ShellCompDirectiveNoSpace {
			t.Fatalf("directive = %v, want %v", directive, cobra.ShellCompDirectiveNoFileComp|cobra.ShellCompDirectiveNoSpace)
		}
	})

	t.Run("prefix filter is case-insensitive", func(t *testing.T) {
		got, _ := opts.CompleteRequire(nil, nil, "MEMORY-S")
		if len(got) == 0 {
			t.Fatal("expected filtered candidates")
		}
		for _, c := range got {
			if !strings.HasPrefix(c, "memory-s") {
				t.Fatalf("candidate %q does not match expected prefix", c)
			}
		}
	})

	t.Run("resource candidates", func(t *testing.T) {
		got, _ := opts.CompleteRequire(nil, nil, "resource:te")
		if len(got) != 1 || got[0] != "resource:temperature" {
			t.Fatalf("candidates = %v", got)
		}
	})

	t.Run("comma-separated completion prefixes and avoids duplicates", func(t *testing.T) {
		got, _ := opts.CompleteRequire(nil, nil, "ECC-STATE,e")
		if len(got) == 0 {
			t.Fatal("expected comma-separated candidates")
		}
		for _, c := range got {
			if !strings.HasPrefix(c, "ECC-STATE,") {
				t.Fatalf("candidate %q missing expected prefix", c)
			}
			if strings.EqualFold(c, "ECC-STATE,ecc-state") {
				t.Fatalf("duplicate selected record suggested: %q", c)
			}
		}
	})
}

func TestDecodeFlags(t *testing.T) {
	b, err := decodeBackend("SIM")
	if err != nil || b != backendSim {
		t.Fatalf("decodeBackend(SIM) = %v, %v", b, err)
	}
	if _, err := decodeBackend("gpu"); err == nil || !strings.Contains(err.Error(), `unknown backend: "gpu"`) {
		t.Fatalf("decodeBackend(gpu) error = %v", err)
	}

	f, err := decodeFormat("yml")
	if err != nil || f != formatYAML {
		t.Fatalf("decodeFormat(yml) = %v, %v", f, err)
	}
	if _, err := decodeFormat("xml"); err == nil {
		t.Fatal("decodeFormat(xml) expected error")
	}

	// Already decoded values pass through.
	if v, err := decodeFormat(formatCBOR); err != nil || v != formatCBOR {
		t.Fatalf("decodeFormat(formatCBOR) = %v, %v", v, err)
	}
}

func TestRunProbe(t *testing.T) {
	var buf bytes.Buffer
	if err := runProbe(&buf, &ProbeOptions{Backend: backendSim, LevelZero: true}); err != nil {
		t.Fatalf("runProbe() error = %v", err)
	}
	for _, want := range []string{"API version: 1.1", "Adapters: 1", "memory-state: yes"} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("text output missing %q:\n%s", want, buf.String())
		}
	}

	buf.Reset()
	if err := runProbe(&buf, &ProbeOptions{Backend: backendSim, Format: formatJSON}); err != nil {
		t.Fatalf("runProbe(json) error = %v", err)
	}
	var rep struct {
		Adapters []json.RawMessage `json:"adapters"`
	}
	if err := json.Unmarshal(buf.Bytes(), &rep); err != nil {
		t.Fatalf("json output: %v", err)
	}
	if len(rep.Adapters) != 1 {
		t.Fatalf("json adapters = %d, want 1", len(rep.Adapters))
	}
}

func TestRunProbe_Errors(t *testing.T) {
	if err := runProbe(&bytes.Buffer{}, &ProbeOptions{Backend: backendSim, Fixture: "does-not-exist.yaml"}); err == nil {
		t.Fatal("runProbe(missing fixture) expected error")
	}
	if err := runProbe(&bytes.Buffer{}, &ProbeOptions{Backend: backendNative, Fixture: "host.yaml"}); err == nil {
		t.Fatal("runProbe(native with fixture) expected error")
	}
}

func TestRunBaseline(t *testing.T) {
	var buf bytes.Buffer
	if err := runBaseline(&buf, &ProbeOptions{Backend: backendSim}); err != nil {
		t.Fatalf("runBaseline() error = %v", err)
	}

	out := strings.TrimSpace(buf.String())
	if !strings.HasPrefix(out, "resource:adapter,") || !strings.Contains(out, "memory-state") {
		t.Fatalf("baseline = %q", out)
	}

	// The text output feeds --require.
	reqs, err := parseRequirements(out)
	if err != nil {
		t.Fatalf("parseRequirements(baseline) error = %v", err)
	}
	if reqs.String() != out {
		t.Fatalf("round trip = %q, want %q", reqs.String(), out)
	}

	buf.Reset()
	if err := runBaseline(&buf, &ProbeOptions{Backend: backendSim, Format: formatJSON}); err != nil {
		t.Fatalf("runBaseline(json) error = %v", err)
	}
	var names []string
	if err := json.Unmarshal(buf.Bytes(), &names); err != nil {
		t.Fatalf("json output: %v", err)
	}
	if strings.Join(names, ",") != out {
		t.Fatalf("json baseline = %v, want %q", names, out)
	}
}

func TestRecordInfos(t *testing.T) {
	infos := recordInfos()
	if len(infos) != len(gpuctl.RecordKinds()) {
		t.Fatalf("len(recordInfos()) = %d", len(infos))
	}
	first := infos[0]
	if first.Name != "firmware-properties" || first.Resource != "adapter" || first.Size != 208 || first.Version != 1 {
		t.Fatalf("recordInfos()[0] = %+v", first)
	}
}
