package pipeline

import "github.com/trajectory-labs/pathways-cli/internal/model"

// defaultStoryLimit is the number of results a path surfaces per request.
const defaultStoryLimit = 4

// SelectForPath deterministically carves a rank-specific slice out of the
// filtered result list so that different paths surface different sources
// from one shared search.
//
// Rank 1 takes the first N. When the list holds at least 2N results, rank 2
// takes N starting at total/3 and rank 3 takes the last N offset by 2 from
// the very end. Smaller lists fall back to the first N for every rank;
// overlap across paths on small result sets is accepted.
func SelectForPath(results []model.SearchResult, limit int, rank model.PathRank) []model.SearchResult {
	if limit <= 0 {
		limit = defaultStoryLimit
	}
	total := len(results)
	if total == 0 {
		return nil
	}

	if total >= 2*limit {
		switch rank {
		case model.RankProject:
			start := total / 3
			return results[start : start+limit]
		case model.RankUnconventional:
			start := total - limit - 2
			if start < 0 {
				start = 0
			}
			return results[start : start+limit]
		}
	}

	if total < limit {
		limit = total
	}
	return results[:limit]
}
