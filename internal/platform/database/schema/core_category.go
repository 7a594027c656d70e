package schema

// RefTaxonomyTable describes a name/slug lookup table. Categories and genres
// share the layout.
type RefTaxonomyTable struct {
	Table   string
	ID      string
	Name    string
	Slug    string
	SlugKey string
}

// CoreCategory is the schema definition for core.category
var CoreCategory = RefTaxonomyTable{
	Table:   "core.category",
	ID:      "id",
	Name:    "name",
	Slug:    "slug",
	SlugKey: "category_slug_key",
}

// CoreGenre is the schema definition for core.genre
var CoreGenre = RefTaxonomyTable{
	Table:   "core.genre",
	ID:      "id",
	Name:    "name",
	Slug:    "slug",
	SlugKey: "genre_slug_key",
}
