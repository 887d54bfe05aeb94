package gpuctl

// Requirement describes a gate condition consumable by [Check].
//
// Built-in implementations include:
//   - [RecordKind]: some resource answers a Get of the record
//   - [RequirementGroup]
//   - [ResourceRequirement]
//   - [InterfaceRequirement]
type Requirement interface {
	isRequirement()
}

// RequirementGroup is a reusable set of [Requirement] items.
type RequirementGroup []Requirement

// ResourceRequirement requires at least one resource of a kind on some adapter.
type ResourceRequirement struct {
	Kind ResourceKind
}

// InterfaceRequirement requires at least one resource that can be upgraded
// to an interface generation.
type InterfaceRequirement struct {
	ID InterfaceID
}

// RequireResource creates a requirement for a resource kind.
func RequireResource(kind ResourceKind) ResourceRequirement {
	return ResourceRequirement{Kind: kind}
}

// RequireInterface creates a requirement for an interface generation.
func RequireInterface(id InterfaceID) InterfaceRequirement {
	return InterfaceRequirement{ID: id}
}

func (RecordKind) isRequirement()           {}
func (RequirementGroup) isRequirement()     {}
func (ResourceRequirement) isRequirement()  {}
func (InterfaceRequirement) isRequirement() {}

type requirementSet struct {
	records    []RecordKind
	resources  []ResourceKind
	interfaces []InterfaceID

	seenRecords    map[RecordKind]struct{}
	seenResources  map[ResourceKind]struct{}
	seenInterfaces map[InterfaceID]struct{}
}

func normalizeRequirements(required []Requirement) requirementSet {
	rs := requirementSet{
		seenRecords:    map[RecordKind]struct{}{},
		seenResources:  map[ResourceKind]struct{}{},
		seenInterfaces: map[InterfaceID]struct{}{},
	}
	for _, req := range required {
		rs.add(req)
	}
	return rs
}

func (rs *requirementSet) add(req Requirement) {
	switch r := req.(type) {
	case RecordKind:
		if _, ok := rs.seenRecords[r]; ok {
			return
		}
		rs.seenRecords[r] = struct{}{}
		rs.records = append(rs.records, r)
	case RequirementGroup:
		for _, nested := range r {
			if nested == nil {
				continue
			}
			rs.add(nested)
		}
	case ResourceRequirement:
		if _, ok := rs.seenResources[r.Kind]; ok {
			return
		}
		rs.seenResources[r.Kind] = struct{}{}
		rs.resources = append(rs.resources, r.Kind)
	case InterfaceRequirement:
		if _, ok := rs.seenInterfaces[r.ID]; ok {
			return
		}
		rs.seenInterfaces[r.ID] = struct{}{}
		rs.interfaces = append(rs.interfaces, r.ID)
	}
}

// probeOptions returns the options that collect what rs needs.
func (rs requirementSet) probeOptions() []ProbeOption {
	resources := append([]ResourceKind(nil), rs.resources...)
	for _, id := range rs.interfaces {
		if id.Kind != ResourceAdapter {
			resources = append(resources, id.Kind)
		}
	}
	return []ProbeOption{
		WithResourceKinds(resources...),
		WithRecordKinds(rs.records...),
	}
}
