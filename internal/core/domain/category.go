package domain

// UncategorizedName is the category assigned when a source has no genre.
const UncategorizedName = "Other"

// Category is a level-two category under a level-one parent domain.
// It is unique per (CategoryKey(Name), CategoryKey(Parent)).
type Category struct {
	// ID is the generated identifier.
	ID string

	// Name keeps the casing of the first sighting.
	Name string

	// Parent is the level-one domain name (e.g. "MOVIE").
	Parent string
}

// Ref returns the reference stored on canonical records.
func (c Category) Ref() CategoryRef {
	return CategoryRef{ID: c.ID, Name: c.Name}
}

// IsZero reports whether the category is unset.
func (c Category) IsZero() bool {
	return c.ID == "" && c.Name == ""
}
