package schema

// CoreTitleTable represents the 'core.title' table
type CoreTitleTable struct {
	Table       string
	ID          string
	Name        string
	Year        string
	Description string
	CategoryID  string
	CreatedAt   string

	// YearCheck rejects negative years.
	YearCheck string
}

// CoreTitle is the schema definition for core.title
var CoreTitle = CoreTitleTable{
	Table:       "core.title",
	ID:          "id",
	Name:        "name",
	Year:        "year",
	Description: "description",
	CategoryID:  "categoryid",
	CreatedAt:   "createdat",
	YearCheck:   "title_year_check",
}

// TitleGenreTable represents the 'core.titlegenre' junction
type TitleGenreTable struct {
	Table   string
	TitleID string
	GenreID string
}

// TitleGenre is the schema definition for core.titlegenre
var TitleGenre = TitleGenreTable{
	Table:   "core.titlegenre",
	TitleID: "titleid",
	GenreID: "genreid",
}
