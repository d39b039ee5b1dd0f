package capture

import (
	"context"
	"sort"

	"github.com/irislab/irisgo/internal/match"
	"github.com/irislab/irisgo/internal/model"
)

const (
	maxSelectedFrames    = 5
	consistencyMaxHD     = 0.30
	enrollmentPoolSize   = 3
	verificationPoolSize = 1
)

// selectTopFrames keeps frames with composite >= minScore, sorted
// descending by composite, capped at maxSelectedFrames, per spec.md §4.7.
func selectTopFrames(frames []*model.ScoredFrame, minScore float64) []*model.ScoredFrame {
	kept := make([]*model.ScoredFrame, 0, len(frames))
	for _, f := range frames {
		if f.Quality.Composite >= minScore {
			kept = append(kept, f)
		}
	}
	sort.Slice(kept, func(i, j int) bool {
		return kept[i].Quality.Composite > kept[j].Quality.Composite
	})
	if len(kept) > maxSelectedFrames {
		kept = kept[:maxSelectedFrames]
	}
	return kept
}

// encodeAndFilter encodes every selected frame, discards any template
// whose Hamming distance to the first successfully encoded template
// exceeds consistencyMaxHD (spec.md §4.7's "consistency filter"), then
// keeps the first keep survivors. frames arrives quality-sorted from
// selectTopFrames, so a plain slice truncation is the per-burst "keep
// 3 (enrollment) / 1 (verification)" reduction spec.md §4.7 describes.
// EncodingTooNoisy is a per-frame soft failure: that frame is skipped, not
// fatal to the burst.
func encodeAndFilter(ctx context.Context, frames []*model.ScoredFrame, keep int) []*model.Template {
	var templates []*model.Template
	for _, f := range frames {
		tmpl, err := encodeFrame(ctx, f)
		if err != nil {
			continue
		}
		templates = append(templates, tmpl)
	}

	if len(templates) == 0 {
		return nil
	}

	anchor := templates[0]
	survivors := make([]*model.Template, 0, len(templates))
	survivors = append(survivors, anchor)
	for _, t := range templates[1:] {
		if match.Distance(anchor, t) <= consistencyMaxHD {
			survivors = append(survivors, t)
		}
	}
	if len(survivors) > keep {
		survivors = survivors[:keep]
	}
	return survivors
}

// diverseSelect greedily picks n templates maximizing diversity: seed with
// pool[0], then repeatedly add the candidate maximizing its minimum
// distance to the already-selected set. Returns the entire pool if
// |pool| <= n (spec.md §8's idempotence property).
func diverseSelect(pool []*model.Template, n int) []*model.Template {
	if len(pool) <= n {
		return pool
	}

	used := make([]bool, len(pool))
	selected := make([]*model.Template, 0, n)
	selected = append(selected, pool[0])
	used[0] = true

	for len(selected) < n {
		bestIdx := -1
		bestMinDist := -1.0
		for i, candidate := range pool {
			if used[i] {
				continue
			}
			minDist := minDistanceTo(candidate, selected)
			if minDist > bestMinDist {
				bestMinDist = minDist
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			break
		}
		selected = append(selected, pool[bestIdx])
		used[bestIdx] = true
	}
	return selected
}

func minDistanceTo(candidate *model.Template, selected []*model.Template) float64 {
	min := 2.0 // larger than any possible Hamming distance (max 1.0)
	for _, s := range selected {
		d := match.Distance(candidate, s)
		if d < min {
			min = d
		}
	}
	return min
}
