package gpuctl

import (
	"fmt"
	"slices"
)

// Baseline derives the requirements a reference host satisfies from its
// probe report, so other hosts can be checked against it with [Check].
//
// Contract:
//   - output is deterministic (deduplicated, stably ordered)
//   - resource kinds come first, then record kinds, each in declaration order
//   - only successful Get outcomes become record requirements
//   - results for unknown record kinds fail closed with an error
func Baseline(r *Report) (RequirementGroup, error) {
	if r == nil {
		return nil, fmt.Errorf("baseline: nil report")
	}

	seenResources := map[ResourceKind]struct{}{}
	seenRecords := map[RecordKind]struct{}{}

	if len(r.Adapters) > 0 {
		seenResources[ResourceAdapter] = struct{}{}
	}
	var invalid error
	collect := func(res RecordResult) {
		if !res.Kind.Valid() {
			if invalid == nil {
				invalid = fmt.Errorf("baseline: unknown record kind %d", int(res.Kind))
			}
			return
		}
		if res.Supported() {
			seenRecords[res.Kind] = struct{}{}
		}
	}
	for _, a := range r.Adapters {
		for _, res := range a.Records {
			collect(res)
		}
		for _, rr := range a.Resources {
			if _, ok := rr.Kind.Parent(); !ok {
				return nil, fmt.Errorf("baseline: resource %s is not an adapter sub-resource", rr.Kind)
			}
			seenResources[rr.Kind] = struct{}{}
			for _, res := range rr.Records {
				collect(res)
			}
		}
	}
	if invalid != nil {
		return nil, invalid
	}

	resources := make([]ResourceKind, 0, len(seenResources))
	for k := range seenResources {
		resources = append(resources, k)
	}
	slices.Sort(resources)

	records := make([]RecordKind, 0, len(seenRecords))
	for k := range seenRecords {
		records = append(records, k)
	}
	slices.Sort(records)

	reqs := make(RequirementGroup, 0, len(resources)+len(records))
	for _, k := range resources {
		reqs = append(reqs, RequireResource(k))
	}
	for _, k := range records {
		reqs = append(reqs, k)
	}
	return reqs, nil
}
