package testhelpers

import (
	"github.com/myrjola/reelguess/internal/models"
)

var (
	GenreAction    = models.Genre{ID: 28, Name: "Action"}
	GenreAdventure = models.Genre{ID: 12, Name: "Adventure"}
	GenreAnimation = models.Genre{ID: 16, Name: "Animation"}
	GenreComedy    = models.Genre{ID: 35, Name: "Comedy"}
	GenreCrime     = models.Genre{ID: 80, Name: "Crime"}
	GenreDrama     = models.Genre{ID: 18, Name: "Drama"}
	GenreFamily    = models.Genre{ID: 10751, Name: "Family"}
	GenreFantasy   = models.Genre{ID: 14, Name: "Fantasy"}
	GenreRomance   = models.Genre{ID: 10749, Name: "Romance"}
	GenreSciFi     = models.Genre{ID: 878, Name: "Science Fiction"}
	GenreThriller  = models.Genre{ID: 53, Name: "Thriller"}
)

// MovieOption customises a movie built with NewMovie.
type MovieOption func(*models.Movie)

// NewMovie builds an English language movie released on date with popularity 10.
func NewMovie(id int64, title string, date string, opts ...MovieOption) models.Movie {
	m := models.Movie{
		Item: models.Item{
			ID:          id,
			Title:       title,
			ReleaseDate: date,
			Year:        models.YearFromDate(date),
			Popularity:  10,
			Language:    "en",
		},
	}
	for _, opt := range opts {
		opt(&m)
	}
	for _, g := range m.Genres {
		m.GenreIDs = append(m.GenreIDs, g.ID)
	}
	return m
}

func WithGenres(genres ...models.Genre) MovieOption {
	return func(m *models.Movie) { m.Genres = genres }
}

func WithKeywords(keywords ...string) MovieOption {
	return func(m *models.Movie) { m.Keywords = keywords }
}

// WithCast bills names in the given order.
func WithCast(names ...string) MovieOption {
	return func(m *models.Movie) {
		for i, name := range names {
			m.Cast = append(m.Cast, models.CastMember{Name: name, Order: i})
		}
	}
}

func WithDirector(name string) MovieOption {
	return func(m *models.Movie) {
		m.Crew = append(m.Crew, models.CrewMember{Name: name, Job: "Director", Department: "Directing"})
	}
}

func WithLanguage(language string) MovieOption {
	return func(m *models.Movie) { m.Language = language }
}

func WithPopularity(popularity float64) MovieOption {
	return func(m *models.Movie) { m.Popularity = popularity }
}

func WithRuntime(minutes int) MovieOption {
	return func(m *models.Movie) { m.Runtime = minutes }
}

func WithCountries(countries ...string) MovieOption {
	return func(m *models.Movie) { m.Countries = countries }
}

func WithCollection(id int64, name string) MovieOption {
	return func(m *models.Movie) { m.Collection = &models.Collection{ID: id, Name: name} }
}

// SampleMovies returns a small catalog of well-known movies with distinct attributes.
func SampleMovies() []models.Movie {
	return []models.Movie{
		NewMovie(603, "The Matrix", "1999-03-31",
			WithGenres(GenreAction, GenreSciFi),
			WithKeywords("hacker", "virtual reality", "dystopia"),
			WithCast("Keanu Reeves", "Laurence Fishburne", "Carrie-Anne Moss"),
			WithDirector("Lana Wachowski"),
			WithCountries("US"), WithPopularity(80), WithRuntime(136),
			WithCollection(2344, "The Matrix Collection")),
		NewMovie(27205, "Inception", "2010-07-15",
			WithGenres(GenreAction, GenreSciFi, GenreAdventure),
			WithKeywords("dream", "heist", "subconscious"),
			WithCast("Leonardo DiCaprio", "Joseph Gordon-Levitt", "Elliot Page"),
			WithDirector("Christopher Nolan"),
			WithCountries("US", "GB"), WithPopularity(90), WithRuntime(148)),
		NewMovie(862, "Toy Story", "1995-10-30",
			WithGenres(GenreAnimation, GenreFamily, GenreComedy),
			WithKeywords("toy", "friendship"),
			WithCast("Tom Hanks", "Tim Allen"),
			WithDirector("John Lasseter"),
			WithCountries("US"), WithPopularity(70), WithRuntime(81),
			WithCollection(10194, "Toy Story Collection")),
		NewMovie(597, "Titanic", "1997-11-18",
			WithGenres(GenreDrama, GenreRomance),
			WithKeywords("shipwreck", "iceberg"),
			WithCast("Leonardo DiCaprio", "Kate Winslet"),
			WithDirector("James Cameron"),
			WithCountries("US"), WithPopularity(75), WithRuntime(194)),
		NewMovie(194, "Amélie", "2001-04-25",
			WithGenres(GenreComedy, GenreRomance),
			WithKeywords("paris", "waitress"),
			WithCast("Audrey Tautou", "Mathieu Kassovitz"),
			WithDirector("Jean-Pierre Jeunet"),
			WithLanguage("fr"), WithCountries("FR"), WithPopularity(40), WithRuntime(122)),
		NewMovie(129, "Spirited Away", "2001-07-20",
			WithGenres(GenreAnimation, GenreFamily, GenreFantasy),
			WithKeywords("spirit", "bathhouse"),
			WithCast("Rumi Hiiragi", "Miyu Irino"),
			WithDirector("Hayao Miyazaki"),
			WithLanguage("ja"), WithCountries("JP"), WithPopularity(60), WithRuntime(125)),
		NewMovie(238, "The Godfather", "1972-03-14",
			WithGenres(GenreDrama, GenreCrime),
			WithKeywords("mafia", "patriarch"),
			WithCast("Marlon Brando", "Al Pacino"),
			WithDirector("Francis Ford Coppola"),
			WithCountries("US"), WithPopularity(65), WithRuntime(175),
			WithCollection(230, "The Godfather Collection")),
		NewMovie(680, "Pulp Fiction", "1994-09-10",
			WithGenres(GenreThriller, GenreCrime),
			WithKeywords("hitman", "nonlinear timeline"),
			WithCast("John Travolta", "Samuel L. Jackson", "Uma Thurman"),
			WithDirector("Quentin Tarantino"),
			WithCountries("US"), WithPopularity(68), WithRuntime(154)),
		NewMovie(11, "Star Wars", "1977-05-25",
			WithGenres(GenreAdventure, GenreAction, GenreSciFi),
			WithKeywords("space opera", "rebellion"),
			WithCast("Mark Hamill", "Harrison Ford", "Carrie Fisher"),
			WithDirector("George Lucas"),
			WithCountries("US"), WithPopularity(85), WithRuntime(121),
			WithCollection(10, "Star Wars Collection")),
		NewMovie(329, "Jurassic Park", "1993-06-11",
			WithGenres(GenreAdventure, GenreSciFi),
			WithKeywords("dinosaur", "theme park"),
			WithCast("Sam Neill", "Laura Dern", "Jeff Goldblum"),
			WithDirector("Steven Spielberg"),
			WithCountries("US"), WithPopularity(72), WithRuntime(127),
			WithCollection(328, "Jurassic Park Collection")),
		NewMovie(496243, "Parasite", "2019-05-30",
			WithGenres(GenreComedy, GenreThriller, GenreDrama),
			WithKeywords("class differences", "basement"),
			WithCast("Song Kang-ho", "Lee Sun-kyun"),
			WithDirector("Bong Joon-ho"),
			WithLanguage("ko"), WithCountries("KR"), WithPopularity(55), WithRuntime(133)),
		NewMovie(13, "Forrest Gump", "1994-06-23",
			WithGenres(GenreComedy, GenreDrama, GenreRomance),
			WithKeywords("vietnam war", "running"),
			WithCast("Tom Hanks", "Robin Wright"),
			WithDirector("Robert Zemeckis"),
			WithCountries("US"), WithPopularity(78), WithRuntime(142)),
	}
}
