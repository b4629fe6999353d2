package candidate

import "strings"

// Field identifies a single collectable profile attribute.
type Field string

const (
	FieldFullName         Field = "full_name"
	FieldEmail            Field = "email"
	FieldPhone            Field = "phone"
	FieldYearsExperience  Field = "years_experience"
	FieldDesiredPositions Field = "desired_positions"
	FieldCurrentLocation  Field = "current_location"
	FieldTechStack        Field = "tech_stack"
)

// Required lists every field the screening must collect, in asking order.
var Required = []Field{
	FieldFullName,
	FieldEmail,
	FieldPhone,
	FieldYearsExperience,
	FieldDesiredPositions,
	FieldCurrentLocation,
	FieldTechStack,
}

// Profile accumulates candidate information over the conversation. A set
// value survives later turns; only an explicit correction may replace it.
type Profile struct {
	FullName         string   `json:"full_name,omitempty"`
	Email            string   `json:"email,omitempty"`
	Phone            string   `json:"phone,omitempty"`
	YearsExperience  *int     `json:"years_experience,omitempty"`
	DesiredPositions []string `json:"desired_positions,omitempty"`
	CurrentLocation  string   `json:"current_location,omitempty"`
	TechStack        []string `json:"tech_stack,omitempty"`
}

// IsSet reports whether the field already holds a value.
func (p *Profile) IsSet(f Field) bool {
	switch f {
	case FieldFullName:
		return p.FullName != ""
	case FieldEmail:
		return p.Email != ""
	case FieldPhone:
		return p.Phone != ""
	case FieldYearsExperience:
		return p.YearsExperience != nil
	case FieldDesiredPositions:
		return len(p.DesiredPositions) > 0
	case FieldCurrentLocation:
		return p.CurrentLocation != ""
	case FieldTechStack:
		return len(p.TechStack) > 0
	}
	return false
}

// Missing returns the required fields still unset, in asking order.
func (p *Profile) Missing() []Field {
	var missing []Field
	for _, f := range Required {
		if !p.IsSet(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

// Complete reports whether every required field is set.
func (p *Profile) Complete() bool {
	return len(p.Missing()) == 0
}

// Patch is a partial profile update carrying only newly extracted values.
// Empty fields mean "no information", never "clear".
type Patch struct {
	FullName         string
	Email            string
	Phone            string
	YearsExperience  *int
	DesiredPositions []string
	CurrentLocation  string
	TechStack        []string
}

// IsEmpty reports whether the patch carries no values at all.
func (p *Patch) IsEmpty() bool {
	return p.FullName == "" &&
		p.Email == "" &&
		p.Phone == "" &&
		p.YearsExperience == nil &&
		len(p.DesiredPositions) == 0 &&
		p.CurrentLocation == "" &&
		len(p.TechStack) == 0
}

// Apply merges the patch into the profile and returns the fields that
// changed. Scalar fields already set are kept unless listed in overwrite;
// list fields always grow by case-insensitive deduplicated append.
func (p *Profile) Apply(patch *Patch, overwrite ...Field) []Field {
	if patch == nil {
		return nil
	}

	allowed := make(map[Field]bool, len(overwrite))
	for _, f := range overwrite {
		allowed[f] = true
	}

	var changed []Field

	if patch.FullName != "" && (p.FullName == "" || allowed[FieldFullName]) {
		p.FullName = patch.FullName
		changed = append(changed, FieldFullName)
	}
	if patch.Email != "" && (p.Email == "" || allowed[FieldEmail]) {
		p.Email = patch.Email
		changed = append(changed, FieldEmail)
	}
	if patch.Phone != "" && (p.Phone == "" || allowed[FieldPhone]) {
		p.Phone = patch.Phone
		changed = append(changed, FieldPhone)
	}
	if patch.YearsExperience != nil && (p.YearsExperience == nil || allowed[FieldYearsExperience]) {
		years := *patch.YearsExperience
		p.YearsExperience = &years
		changed = append(changed, FieldYearsExperience)
	}
	if patch.CurrentLocation != "" && (p.CurrentLocation == "" || allowed[FieldCurrentLocation]) {
		p.CurrentLocation = patch.CurrentLocation
		changed = append(changed, FieldCurrentLocation)
	}

	if appendUnique(&p.DesiredPositions, patch.DesiredPositions) {
		changed = append(changed, FieldDesiredPositions)
	}
	if appendUnique(&p.TechStack, patch.TechStack) {
		changed = append(changed, FieldTechStack)
	}

	return changed
}

func appendUnique(dst *[]string, values []string) bool {
	existing := make(map[string]bool, len(*dst))
	for _, v := range *dst {
		existing[strings.ToLower(v)] = true
	}

	grown := false
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || existing[strings.ToLower(v)] {
			continue
		}
		*dst = append(*dst, v)
		existing[strings.ToLower(v)] = true
		grown = true
	}
	return grown
}
