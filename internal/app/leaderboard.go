package app

import (
	"sort"

	"ballknowledge-game-service/internal/domain"
)

// Rank orders leaderboard entries by score descending and returns the
// first n. Equal scores tie-break by date ascending (earlier entry ranks
// higher) and then by name, so ranking never depends on storage order.
func Rank(entries []domain.LeaderboardEntry, n int) []domain.LeaderboardEntry {
	ranked := make([]domain.LeaderboardEntry, len(entries))
	copy(ranked, entries)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		if !ranked[i].Date.Equal(ranked[j].Date) {
			return ranked[i].Date.Before(ranked[j].Date)
		}
		return ranked[i].Name < ranked[j].Name
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
