package domain

// ProvisionState is the lifecycle state of a logical index.
//
// Transitions: Absent -> Provisioning -> Live, Live -> Evolving -> Live.
// DimensionConflict is terminal and never auto-remediated.
type ProvisionState string

// Index lifecycle states.
const (
	// ProvisionAbsent means the index does not exist yet.
	ProvisionAbsent ProvisionState = "absent"

	// ProvisionProvisioning means index creation is in flight.
	ProvisionProvisioning ProvisionState = "provisioning"

	// ProvisionLive means the index exists with a compatible mapping.
	ProvisionLive ProvisionState = "live"

	// ProvisionEvolving means an additive mapping update is in flight.
	ProvisionEvolving ProvisionState = "evolving"

	// ProvisionDimensionConflict means the live index's vector dimension
	// disagrees with the embedding model. Terminal; requires manual
	// reindexing.
	ProvisionDimensionConflict ProvisionState = "dimension_conflict"
)

// IsValid returns true if the state is recognised.
func (s ProvisionState) IsValid() bool {
	switch s {
	case ProvisionAbsent, ProvisionProvisioning, ProvisionLive,
		ProvisionEvolving, ProvisionDimensionConflict:
		return true
	default:
		return false
	}
}

// Terminal returns true if no further transitions are possible.
func (s ProvisionState) Terminal() bool {
	return s == ProvisionDimensionConflict
}

// Ready returns true if the index accepts reads and writes.
func (s ProvisionState) Ready() bool {
	return s == ProvisionLive || s == ProvisionEvolving
}

// String returns the string representation.
func (s ProvisionState) String() string {
	return string(s)
}

// Description returns a human-readable description of the state.
func (s ProvisionState) Description() string {
	switch s {
	case ProvisionAbsent:
		return "Absent (index not created)"
	case ProvisionProvisioning:
		return "Provisioning (creating index)"
	case ProvisionLive:
		return "Live (mapping compatible)"
	case ProvisionEvolving:
		return "Evolving (additive mapping update)"
	case ProvisionDimensionConflict:
		return "Dimension conflict (manual reindex required)"
	default:
		return unknownDescription
	}
}
