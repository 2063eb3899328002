package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"kdrama-dashboard/internal/config"
	"kdrama-dashboard/internal/dataset"
	"kdrama-dashboard/internal/logging"
	"kdrama-dashboard/internal/quiz"
)

type commandContext struct {
	configFlag *string
	seedFlag   *int64

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string, seedFlag *int64) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		seedFlag:   seedFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) loadDataset(ctx context.Context) (*dataset.Dataset, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	fetcher := dataset.NewFetcher(&http.Client{Timeout: cfg.FetchTimeout()})
	data, err := dataset.Load(ctx, cfg.Dataset.Path, dataset.LoadOptions{
		GenreDelimiter: cfg.Dataset.GenreDelimiter,
		Fetcher:        fetcher,
	})
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", cfg.Dataset.Path, err)
	}
	return data, nil
}

// newEngine seeds from --seed, then quiz.seed, then the clock.
func (c *commandContext) newEngine(data *dataset.Dataset) (*quiz.Engine, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	seed := cfg.Quiz.Seed
	if c.seedFlag != nil && *c.seedFlag != 0 {
		seed = *c.seedFlag
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1))
	return quiz.NewEngine(data, cfg.Quiz.Offsets, rng)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
