package validate

import (
	"sort"

	"github.com/wonny/argus/internal/contracts"
)

// tickerGroups buckets position row indices per ticker. Tickers come
// back sorted so detectors that iterate groups stay deterministic; rows
// inside a group are sorted by date (stable, so same-day rows keep their
// input order).
func tickerGroups(positions []contracts.Position) ([]string, map[string][]int) {
	groups := make(map[string][]int)
	for i, p := range positions {
		groups[p.Ticker] = append(groups[p.Ticker], i)
	}

	tickers := make([]string, 0, len(groups))
	for t := range groups {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)

	for _, t := range tickers {
		idx := groups[t]
		sort.SliceStable(idx, func(a, b int) bool {
			return positions[idx[a]].Date.Before(positions[idx[b]].Date)
		})
	}
	return tickers, groups
}
