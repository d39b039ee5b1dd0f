// Package config loads the iris pipeline's tunables from a YAML document:
// a single typed struct covering controller timing, quality thresholds,
// match zone boundaries, and storage/events/API wiring, loaded via
// gopkg.in/yaml.v3.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Mode selects which controller flow spec.md §4.7 runs.
type Mode string

const (
	ModeEnrollment   Mode = "enrollment"
	ModeVerification Mode = "verification"
)

// Controller holds spec.md §6's controller inputs.
type Controller struct {
	Mode              Mode `yaml:"mode"`
	EnrollmentBursts  int  `yaml:"enrollmentBursts"`
	BurstTargetFrames int  `yaml:"burstTargetFrames"`
	BurstMaxMs        int  `yaml:"burstMaxMs"`
	ReadyHoldMs       int  `yaml:"readyHoldMs"`
	FrameIntervalMs   int  `yaml:"frameIntervalMs"`
}

// Quality holds the two empirically-chosen sharpness thresholds spec.md §9
// calls out as an explicit open question, kept configurable per deployment.
type Quality struct {
	SharpnessMinPreview float64 `yaml:"sharpnessMinPreview"`
	SharpnessMinFull    float64 `yaml:"sharpnessMinFull"`
	MinScoreVerify      float64 `yaml:"minScoreVerify"`
	MinScoreEnroll      float64 `yaml:"minScoreEnroll"`
}

// Match holds the matcher's decision-zone boundaries from spec.md §4.6,
// with the "suggested" upper bound configurable per spec.md §9.
type Match struct {
	ConfirmedMax float64 `yaml:"confirmedMax"`
	SuggestedMax float64 `yaml:"suggestedMax"`
}

// Storage selects and configures the repository and image-store backends.
type Storage struct {
	Backend    string `yaml:"backend"` // "memory" | "postgres"
	PostgresDSN string `yaml:"postgresDSN"`
	ImagesDir  string `yaml:"imagesDir"`
	MinIO      *MinIO `yaml:"minio,omitempty"`
}

type MinIO struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	UseSSL    bool   `yaml:"useSSL"`
}

// Events configures the NATS decision-event publisher.
type Events struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// API configures the gin-based debug/ops HTTP surface.
type API struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Config is the top-level document loaded from disk.
type Config struct {
	Controller Controller `yaml:"controller"`
	Quality    Quality    `yaml:"quality"`
	Match      Match      `yaml:"match"`
	Storage    Storage    `yaml:"storage"`
	Events     Events     `yaml:"events"`
	API        API        `yaml:"api"`
}

// Default returns spec.md's normative defaults.
func Default() Config {
	return Config{
		Controller: Controller{
			Mode:              ModeVerification,
			EnrollmentBursts:  3,
			BurstTargetFrames: 20,
			BurstMaxMs:        2000,
			ReadyHoldMs:       500,
			FrameIntervalMs:   400,
		},
		Quality: Quality{
			SharpnessMinPreview: 30,
			SharpnessMinFull:    50,
			MinScoreVerify:      50,
			MinScoreEnroll:      60,
		},
		Match: Match{
			ConfirmedMax: 0.27,
			SuggestedMax: 0.35,
		},
		Storage: Storage{
			Backend:   "memory",
			ImagesDir: "iris_images",
		},
		Events: Events{
			Subject: "iris.decisions",
		},
		API: API{
			Addr: ":8080",
		},
	}
}

// Load reads and parses a YAML config file, starting from Default() so a
// partial document only overrides what it names.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Validate checks the document for internally-inconsistent values.
func (c Config) Validate() error {
	if c.Controller.Mode != ModeEnrollment && c.Controller.Mode != ModeVerification {
		return fmt.Errorf("controller.mode must be %q or %q, got %q", ModeEnrollment, ModeVerification, c.Controller.Mode)
	}
	if c.Controller.EnrollmentBursts < 1 {
		return fmt.Errorf("controller.enrollmentBursts must be >= 1")
	}
	if c.Match.ConfirmedMax <= 0 || c.Match.ConfirmedMax > c.Match.SuggestedMax {
		return fmt.Errorf("match.confirmedMax must be in (0, suggestedMax]")
	}
	if c.Storage.Backend != "memory" && c.Storage.Backend != "postgres" {
		return fmt.Errorf("storage.backend must be %q or %q, got %q", "memory", "postgres", c.Storage.Backend)
	}
	return nil
}
