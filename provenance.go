package veld

// Provenance is the per-field bit flag recorded during validation. It tells a
// caller whether a value came from the raw input or was filled from a default,
// which the serializer consults for ExcludeUnset.
type Provenance uint8

const (
	ProvenanceSeen           Provenance = 1 << iota // Field appeared in the input.
	ProvenanceWasNull                               // Field value was null.
	ProvenanceDefaultApplied                        // Default value was applied.
)

// ProvenanceMap maps JSON Pointers to Provenance flags. Nested record fields
// appear under their full path (e.g. /address/state).
type ProvenanceMap map[string]Provenance

// Explicit reports whether the field at path was supplied in the raw input.
func (pm ProvenanceMap) Explicit(path string) bool {
	return pm[path]&ProvenanceSeen != 0
}

// Defaulted reports whether the field at path was materialized only by a
// default, without appearing in the input.
func (pm ProvenanceMap) Defaulted(path string) bool {
	p := pm[path]
	return p&ProvenanceDefaultApplied != 0 && p&ProvenanceSeen == 0
}

func (pm ProvenanceMap) clone() ProvenanceMap {
	if pm == nil {
		return nil
	}
	out := make(ProvenanceMap, len(pm))
	for k, v := range pm {
		out[k] = v
	}
	return out
}

// mergeUnder copies child provenance entries into pm rebased beneath base.
// The child's root entry is dropped; base itself is flagged by the caller.
func (pm ProvenanceMap) mergeUnder(base string, child ProvenanceMap) {
	for k, v := range child {
		if k == "/" {
			continue
		}
		pm[base+k] |= v
	}
}
