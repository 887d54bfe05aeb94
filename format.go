package gpuctl

import (
	"fmt"
	"sort"
	"strings"
)

// String returns a human-readable summary of all probe results.
func (r *Report) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "API version: %s\n", r.APIVersion)
	fmt.Fprintf(&b, "Adapters: %d\n", len(r.Adapters))

	for _, a := range r.Adapters {
		b.WriteString("\n")
		fmt.Fprintf(&b, "Adapter %d:\n", a.Index)
		for _, res := range a.Records {
			writeResult(&b, "  ", res)
		}
		for _, rr := range a.Resources {
			fmt.Fprintf(&b, "  %s %d:\n", rr.Kind, rr.Index)
			for _, res := range rr.Records {
				writeResult(&b, "    ", res)
			}
		}
		if len(a.Errors) > 0 {
			kinds := make([]string, 0, len(a.Errors))
			for k := range a.Errors {
				kinds = append(kinds, k)
			}
			sort.Strings(kinds)
			b.WriteString("  Enumeration errors:\n")
			for _, k := range kinds {
				fmt.Fprintf(&b, "    %s: %s\n", k, a.Errors[k])
			}
		}
	}

	return b.String()
}

func writeResult(b *strings.Builder, indent string, r RecordResult) {
	switch {
	case r.Error != "":
		fmt.Fprintf(b, "%s%s: error (%s)\n", indent, r.Kind, r.Error)
	case r.Supported():
		fmt.Fprintf(b, "%s%s: yes\n", indent, r.Kind)
	case r.Status != StatusSuccess:
		fmt.Fprintf(b, "%s%s: no (%s, %s)\n", indent, r.Kind, r.Result, r.Status)
	default:
		fmt.Fprintf(b, "%s%s: no (%s)\n", indent, r.Kind, r.Result)
	}
	for _, v := range r.Violations {
		fmt.Fprintf(b, "%s  violation: %s\n", indent, v)
	}
}
