package tmdb

// movieResponse is the raw TMDB movie details payload (fields we use).
type movieResponse struct {
	ID                  int64            `json:"id"`
	Title               string           `json:"title"`
	Overview            string           `json:"overview"`
	PosterPath          string           `json:"poster_path"`
	BackdropPath        string           `json:"backdrop_path"`
	OriginalLanguage    string           `json:"original_language"`
	SpokenLanguages     []spokenLanguage `json:"spoken_languages"`
	ProductionCountries []country        `json:"production_countries"`
	Runtime             int              `json:"runtime"`
}

// tvResponse is the raw TMDB TV details payload (fields we use).
type tvResponse struct {
	ID               int64            `json:"id"`
	Name             string           `json:"name"`
	Overview         string           `json:"overview"`
	PosterPath       string           `json:"poster_path"`
	BackdropPath     string           `json:"backdrop_path"`
	OriginalLanguage string           `json:"original_language"`
	SpokenLanguages  []spokenLanguage `json:"spoken_languages"`
	OriginCountry    []string         `json:"origin_country"`
	NumberOfEpisodes int              `json:"number_of_episodes"`
}

type spokenLanguage struct {
	ISO6391 string `json:"iso_639_1"`
}

type country struct {
	ISO31661 string `json:"iso_3166_1"`
}

// statusResponse is TMDB's error envelope.
type statusResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}
