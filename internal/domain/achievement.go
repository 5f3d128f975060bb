package domain

import "time"

// Category is one aggregate bucket of the achievement system.
type Category string

// Achievement categories.
const (
	CategoryAnime       Category = "anime"
	CategorySeries      Category = "series"
	CategoryMovies      Category = "movies"
	CategoryAnimeMovies Category = "animeMovies"
	CategoryManga       Category = "manga"
)

// Categories returns all achievement categories in recalculation order.
func Categories() []Category {
	return []Category{
		CategoryAnime,
		CategorySeries,
		CategoryMovies,
		CategoryAnimeMovies,
		CategoryManga,
	}
}

// Valid reports whether the category is a recognized value.
func (c Category) Valid() bool {
	switch c {
	case CategoryAnime, CategorySeries, CategoryMovies, CategoryAnimeMovies, CategoryManga:
		return true
	default:
		return false
	}
}

// Tier is one rung of a category's achievement ladder.
type Tier string

// Achievement tiers. Not every category carries every tier.
const (
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
	TierDiamond  Tier = "diamond"
)

// TierTarget pairs a tier with its cumulative threshold.
type TierTarget struct {
	Tier   Tier
	Target int
}

// ladders is the immutable tier table, keyed by category, targets ascending.
// Anime and series count episodes watched; the rest count completed items.
var ladders = map[Category][]TierTarget{
	CategoryAnime: {
		{TierBronze, 10}, {TierSilver, 50}, {TierGold, 100}, {TierPlatinum, 500}, {TierDiamond, 1000},
	},
	CategorySeries: {
		{TierBronze, 50}, {TierSilver, 100}, {TierGold, 500}, {TierPlatinum, 1000},
	},
	CategoryMovies: {
		{TierBronze, 10}, {TierSilver, 50}, {TierGold, 100}, {TierPlatinum, 500},
	},
	CategoryAnimeMovies: {
		{TierBronze, 5}, {TierSilver, 10}, {TierGold, 25}, {TierPlatinum, 50},
	},
	CategoryManga: {
		{TierBronze, 5}, {TierSilver, 25}, {TierGold, 50}, {TierPlatinum, 100}, {TierDiamond, 250},
	},
}

// Ladder returns the ordered (tier, target) pairs for a category.
// The returned slice is shared; callers must not mutate it.
func Ladder(c Category) []TierTarget {
	return ladders[c]
}

// CategoryForMediaType maps a canonical type to the single achievement
// category its mutations affect. ok is false for anime, whose completed
// entries feed both the anime and animeMovies aggregates - callers should
// recalculate all categories in that case.
func CategoryForMediaType(t MediaType) (Category, bool) {
	switch t {
	case MediaTypeMovie:
		return CategoryMovies, true
	case MediaTypeTV:
		return CategorySeries, true
	case MediaTypeManga, MediaTypeManhwa:
		return CategoryManga, true
	default:
		return "", false
	}
}

// AchievementRecord is one tier's progress for one user.
// Unique per (UserID, Category, Tier). Created lazily, never deleted.
type AchievementRecord struct {
	ID       string   `json:"id"`
	UserID   string   `json:"user_id"`
	Category Category `json:"category"`
	Tier     Tier     `json:"tier"`

	Progress   int        `json:"progress"`
	Target     int        `json:"target"`
	Completed  bool       `json:"completed"`
	UnlockedAt *time.Time `json:"unlocked_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Advance applies a freshly computed aggregate to the record.
// Completed is a one-way ratchet: once set it survives any later aggregate
// drop, and UnlockedAt is written exactly once.
// Returns true if this call unlocked the tier.
func (a *AchievementRecord) Advance(aggregate int, now time.Time) bool {
	a.Progress = aggregate
	a.UpdatedAt = now
	if !a.Completed && aggregate >= a.Target {
		a.Completed = true
		unlocked := now
		a.UnlockedAt = &unlocked
		return true
	}
	return false
}
