// Package diagnostics renders offline visualizations of enrolled
// template distributions, used by cmd/iris-diagnose. gonum/plot appears
// only in the dependency declarations across the example pack (no
// example repo exercises it directly), so this is built straight
// against the documented gonum.org/v1/plot/plotter API rather than
// adapted from a specific corpus file.
package diagnostics

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/irislab/irisgo/internal/match"
	"github.com/irislab/irisgo/internal/model"
)

// DistanceHistogram renders a histogram of pairwise Hamming distances to
// a PNG file at the given path.
func DistanceHistogram(distances []float64, title, path string) error {
	if len(distances) == 0 {
		return fmt.Errorf("diagnostics: no distances to plot")
	}

	values := make(plotter.Values, len(distances))
	copy(values, distances)

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "fractional Hamming distance"
	p.Y.Label.Text = "count"

	hist, err := plotter.NewHist(values, 40)
	if err != nil {
		return fmt.Errorf("diagnostics: build histogram: %w", err)
	}
	hist.Normalize(1)
	p.Add(hist)

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("diagnostics: save histogram: %w", err)
	}
	return nil
}

// DistanceSets splits pairwise Hamming distances among a set of enrolled
// subjects into genuine (same-subject) and impostor (cross-subject)
// pools, the conventional way to visualize separation between the two
// populations.
type DistanceSets struct {
	Genuine  []float64
	Impostor []float64
}

// Subject pairs a subject id with its enrolled templates, the minimal
// shape PairwiseDistances needs from a repository record.
type Subject struct {
	ID        string
	Templates []*model.Template
}

// PairwiseDistances computes every same-subject and cross-subject
// distance among the given subjects' templates.
func PairwiseDistances(subjects []Subject) DistanceSets {
	var sets DistanceSets
	for i, s := range subjects {
		for a := 0; a < len(s.Templates); a++ {
			for b := a + 1; b < len(s.Templates); b++ {
				sets.Genuine = append(sets.Genuine, match.Distance(s.Templates[a], s.Templates[b]))
			}
		}
		for j := i + 1; j < len(subjects); j++ {
			for _, ta := range s.Templates {
				for _, tb := range subjects[j].Templates {
					sets.Impostor = append(sets.Impostor, match.Distance(ta, tb))
				}
			}
		}
	}
	return sets
}
