package domain

import "sort"

// Genre is one id/name pair of the provider's genre list.
type Genre struct {
	ID   int
	Name string
}

// GenreTable maps genre ids to display names. It is populated once per
// resolution and only read afterwards.
type GenreTable map[int]string

// builtinGenres mirrors TMDB's movie genre list and backs names the remote
// table does not carry.
var builtinGenres = GenreTable{
	28:    "Action",
	12:    "Adventure",
	16:    "Animation",
	35:    "Comedy",
	80:    "Crime",
	99:    "Documentary",
	18:    "Drama",
	10751: "Family",
	14:    "Fantasy",
	36:    "History",
	27:    "Horror",
	10402: "Music",
	9648:  "Mystery",
	10749: "Romance",
	878:   "Sci-Fi",
	10770: "TV Movie",
	53:    "Thriller",
	10752: "War",
	37:    "Western",
}

// NewGenreTable builds a table from decoded genres. Later duplicates win.
func NewGenreTable(genres []Genre) GenreTable {
	table := make(GenreTable, len(genres))
	for _, g := range genres {
		table[g.ID] = g.Name
	}
	return table
}

// Name looks id up in the table, then in the built-in names.
func (t GenreTable) Name(id int) (string, bool) {
	if name, ok := t[id]; ok && name != "" {
		return name, true
	}
	name, ok := builtinGenres[id]
	return name, ok
}

// Sorted returns the table's entries ordered by id.
func (t GenreTable) Sorted() []Genre {
	out := make([]Genre, 0, len(t))
	for id, name := range t {
		out = append(out, Genre{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
