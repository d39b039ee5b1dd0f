// Command iris-diagnose is an offline tool: it reads every enrolled
// subject's templates from a repository and renders a genuine/impostor
// distance histogram PNG, the classical way to eyeball separation
// between the two populations before tuning match.Thresholds.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/irislab/irisgo/internal/config"
	"github.com/irislab/irisgo/internal/diagnostics"
	"github.com/irislab/irisgo/internal/repository"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (defaults built in if omitted)")
	out := flag.String("out", "distances.png", "output PNG path")
	title := flag.String("title", "iris template distances", "histogram title")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("iris-diagnose: %v", err)
		}
		cfg = loaded
	}

	ctx := context.Background()

	repo, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		log.Fatalf("iris-diagnose: repository: %v", err)
	}
	defer closeRepo()

	records, err := repo.ListWithTemplates(ctx)
	if err != nil {
		log.Fatalf("iris-diagnose: list templates: %v", err)
	}

	var subjects []diagnostics.Subject
	for _, r := range records {
		subjects = append(subjects, diagnostics.Subject{ID: r.ID, Templates: r.Templates})
	}

	sets := diagnostics.PairwiseDistances(subjects)
	all := append(append([]float64{}, sets.Genuine...), sets.Impostor...)
	if len(all) == 0 {
		log.Fatalf("iris-diagnose: no template pairs to plot (need at least two subjects or repeat enrollments)")
	}

	if err := diagnostics.DistanceHistogram(all, *title, *out); err != nil {
		log.Fatalf("iris-diagnose: %v", err)
	}

	log.Printf("iris-diagnose: wrote %s (%d genuine pairs, %d impostor pairs)", *out, len(sets.Genuine), len(sets.Impostor))
}

func openRepository(ctx context.Context, cfg config.Config) (repository.Repository, func(), error) {
	if cfg.Storage.Backend == "postgres" {
		pg, err := repository.NewPostgres(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, func() {}, err
		}
		return pg, pg.Close, nil
	}
	return repository.NewMemory(), func() {}, nil
}
