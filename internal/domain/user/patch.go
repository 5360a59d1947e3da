package user

// Patch holds the fields of a partial update. A nil field was not supplied
// and must stay untouched in storage. City is the only nullable field:
// CitySet distinguishes "city supplied as null" (clear it) from "city not
// supplied" (leave it).
type Patch struct {
	Name    *string
	Email   *string
	Age     *int
	City    *string
	CitySet bool
}

// IsEmpty reports whether the patch supplies no recognized fields.
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Age == nil && !p.CitySet
}
