package extraction

import "github.com/talentscout/hiring-assistant/internal/candidate"

// Origin tags which pass produced a field value. Diagnostics only, never
// persisted.
type Origin string

const (
	OriginPattern Origin = "pattern"
	OriginModel   Origin = "model"
)

// Result is the outcome of extracting one user turn: a partial profile patch
// plus per-field provenance and the values dropped by validation.
type Result struct {
	Patch   candidate.Patch
	Origins map[candidate.Field]Origin
	Dropped map[candidate.Field]string

	// ModelFailed is set when the model pass errored or returned unparsable
	// output and the result carries pattern-pass fields only.
	ModelFailed bool
}

func newResult() *Result {
	return &Result{
		Origins: make(map[candidate.Field]Origin),
		Dropped: make(map[candidate.Field]string),
	}
}

func (r *Result) drop(f candidate.Field, reason string) {
	if _, seen := r.Dropped[f]; !seen {
		r.Dropped[f] = reason
	}
}
