package domain

import (
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// MediaType is the canonical media category a record is keyed under.
type MediaType string

// Canonical media types.
const (
	MediaTypeMovie  MediaType = "movie"
	MediaTypeTV     MediaType = "tv"
	MediaTypeAnime  MediaType = "anime"
	MediaTypeManga  MediaType = "manga"
	MediaTypeManhwa MediaType = "manhwa"
)

// Valid reports whether the media type is a recognized value.
func (t MediaType) Valid() bool {
	switch t {
	case MediaTypeMovie, MediaTypeTV, MediaTypeAnime, MediaTypeManga, MediaTypeManhwa:
		return true
	default:
		return false
	}
}

// Episodic reports whether the type tracks episode progress (as opposed to chapters).
func (t MediaType) Episodic() bool {
	switch t {
	case MediaTypeMovie, MediaTypeTV, MediaTypeAnime:
		return true
	default:
		return false
	}
}

// LegacyEquivalent returns the pre-classification type a record may have been
// stored under, for backward compatibility with records created before the
// classifier existed (manga<->manhwa, anime<->tv).
// Returns false if the type has no legacy counterpart.
func (t MediaType) LegacyEquivalent() (MediaType, bool) {
	switch t {
	case MediaTypeManga:
		return MediaTypeManhwa, true
	case MediaTypeManhwa:
		return MediaTypeManga, true
	case MediaTypeAnime:
		return MediaTypeTV, true
	case MediaTypeTV:
		return MediaTypeAnime, true
	default:
		return "", false
	}
}

// RawMediaSignals carries the catalog metadata the classifier keys on.
// Fields are optional; absent signals simply never match.
type RawMediaSignals struct {
	OriginalLanguage string
	SpokenLanguages  []string
	OriginCountry    []string
}

// Classify maps a raw media type plus catalog signals to the canonical type.
// Rules are applied in order, first match wins:
//
//  1. Movies are never reclassified, regardless of language.
//  2. TV with Japanese as original or spoken language is anime.
//  3. Manga with Korean origin (language or country) is manhwa.
//  4. Anything else keeps its raw type.
//
// Note the asymmetry: an item already typed manhwa is never demoted back to
// manga, even absent Korean signals. Only the forward transition exists.
func Classify(rawType MediaType, sig RawMediaSignals) MediaType {
	switch rawType {
	case MediaTypeMovie:
		return MediaTypeMovie
	case MediaTypeTV:
		if isLanguage(sig.OriginalLanguage, "ja") || anyLanguage(sig.SpokenLanguages, "ja") {
			return MediaTypeAnime
		}
	case MediaTypeManga:
		if isLanguage(sig.OriginalLanguage, "ko") || slices.Contains(sig.OriginCountry, "KR") {
			return MediaTypeManhwa
		}
	}
	return rawType
}

// isLanguage reports whether tag denotes the given base language.
// Region-qualified tags ("ja-JP") match their base; unparseable tags
// fall back to a case-insensitive literal comparison.
func isLanguage(tag, base string) bool {
	if tag == "" {
		return false
	}
	t, err := language.Parse(tag)
	if err != nil {
		return strings.EqualFold(tag, base)
	}
	b, conf := t.Base()
	if conf == language.No {
		return strings.EqualFold(tag, base)
	}
	return b.String() == base
}

// anyLanguage reports whether any tag in the list denotes the given base language.
func anyLanguage(tags []string, base string) bool {
	for _, tag := range tags {
		if isLanguage(tag, base) {
			return true
		}
	}
	return false
}
