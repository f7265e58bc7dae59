// Package ranking はタグ選好スコアに基づくアイテムの順位付けを提供する。
// 順位付けは純粋な算術であり、外部状態には依存しない。
package ranking

import (
	"sort"

	"github.com/hitoshi/trendcatch/internal/model"
)

// Priority はアイテムの優先度を計算する。
// アイテムの各タグの選好スコアの総和。未知のタグは0として扱うため、
// タグなしアイテムや選好が空のユーザーでは常に0になる。
func Priority(item *model.Item, prefs map[string]int) int {
	total := 0
	for _, tag := range item.Tags {
		total += prefs[tag]
	}
	return total
}

// Ranked は優先度を付与したアイテム。
type Ranked struct {
	model.Item
	Priority int `json:"priority"`
}

// Rank はアイテム群を優先度の降順に並べ替えて返す。
// 同点のアイテム同士は入力順を保持する（安定ソート）。
// 入力スライスは変更しない。
func Rank(items []model.Item, prefs map[string]int) []Ranked {
	ranked := make([]Ranked, 0, len(items))
	for _, it := range items {
		ranked = append(ranked, Ranked{Item: it, Priority: Priority(&it, prefs)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Priority > ranked[j].Priority
	})

	return ranked
}

// ForYou は優先度がminScore以上のアイテムのみを降順でlimit件まで返す。
// 境界は含む: 優先度がちょうどminScoreのアイテムは残る。タグなしアイテムは
// 優先度0のため、minScoreが0以下なら含まれる。
// 好みがまだ分からないユーザーへの空応答はここではなくService側が保証する。
func ForYou(items []model.Item, prefs map[string]int, minScore, limit int) []Ranked {
	ranked := Rank(items, prefs)

	filtered := make([]Ranked, 0, len(ranked))
	for _, r := range ranked {
		if r.Priority < minScore {
			// 降順のため以降はすべてminScore未満
			break
		}
		filtered = append(filtered, r)
		if limit > 0 && len(filtered) >= limit {
			break
		}
	}

	return filtered
}
