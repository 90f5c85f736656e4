package models

import "strings"

// Item is one catalog member with the cheap, pre-joined fields that every candidate carries.
//
// Zero numeric values mean the value is unknown to the catalog.
type Item struct {
	ID          int64   `db:"id" json:"id"`
	Title       string  `db:"title" json:"title"`
	ReleaseDate string  `db:"release_date" json:"release_date,omitempty"`
	Year        int     `db:"-" json:"year,omitempty"`
	Runtime     int     `db:"runtime" json:"runtime,omitempty"`
	Budget      int64   `db:"budget" json:"budget,omitempty"`
	Revenue     int64   `db:"revenue" json:"revenue,omitempty"`
	Rating      float64 `db:"vote_average" json:"rating,omitempty"`
	VoteCount   int     `db:"vote_count" json:"vote_count,omitempty"`
	Popularity  float64 `db:"popularity" json:"popularity"`
	Language    string  `db:"original_language" json:"language,omitempty"`
	Adult       *bool   `db:"adult" json:"adult,omitempty"`
	GenreIDs    []int64 `db:"-" json:"genre_ids,omitempty"`
}

// Genre is a coarse catalog category.
type Genre struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// CastMember is a billed performer. Lower Order means higher billing.
type CastMember struct {
	Name      string `db:"name" json:"name"`
	Character string `db:"character" json:"character,omitempty"`
	Order     int    `db:"cast_order" json:"order"`
}

// CrewMember is a person credited with a job, e.g., Director.
type CrewMember struct {
	Name       string `db:"name" json:"name"`
	Job        string `db:"job" json:"job"`
	Department string `db:"department" json:"department,omitempty"`
}

// Collection is the franchise or series a movie belongs to.
type Collection struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Detail is the enriched per-identifier record.
//
// Found is false when the catalog has no record for the identifier, in which case every other field is empty.
type Detail struct {
	Found      bool
	Runtime    int
	Budget     int64
	Revenue    int64
	Genres     []Genre
	Keywords   []string
	Cast       []CastMember
	Crew       []CrewMember
	Countries  []string
	Collection *Collection
}

// Movie is the import format combining the pool fields with the enriched relations.
type Movie struct {
	Item
	Genres     []Genre      `json:"genres,omitempty"`
	Keywords   []string     `json:"keywords,omitempty"`
	Cast       []CastMember `json:"cast,omitempty"`
	Crew       []CrewMember `json:"crew,omitempty"`
	Countries  []string     `json:"countries,omitempty"`
	Collection *Collection  `json:"collection,omitempty"`
}

// Detail returns the enriched record of m with keywords lower-cased.
func (m Movie) Detail() Detail {
	keywords := make([]string, len(m.Keywords))
	for i, k := range m.Keywords {
		keywords[i] = strings.ToLower(k)
	}
	return Detail{
		Found:      true,
		Runtime:    m.Runtime,
		Budget:     m.Budget,
		Revenue:    m.Revenue,
		Genres:     m.Genres,
		Keywords:   keywords,
		Cast:       m.Cast,
		Crew:       m.Crew,
		Countries:  m.Countries,
		Collection: m.Collection,
	}
}

// YearFromDate extracts the year of a YYYY-MM-DD release date. Returns 0 when the date is missing or malformed.
func YearFromDate(date string) int {
	if len(date) < 4 {
		return 0
	}
	year := 0
	for _, r := range date[:4] {
		if r < '0' || r > '9' {
			return 0
		}
		year = year*10 + int(r-'0')
	}
	return year
}
