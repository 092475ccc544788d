package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/harentsoaR/doctors-portal-api/internal/metrics"
	"github.com/harentsoaR/doctors-portal-api/internal/models"
	"github.com/harentsoaR/doctors-portal-api/internal/repository"
)

const (
	catalogKey      = "services:all"
	catalogNamesKey = "services:names"
)

// Cache is the subset of cache.JSONCache the catalog needs.
type Cache interface {
	Get(ctx context.Context, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, key string, v interface{}) error
	Delete(ctx context.Context, keys ...string) error
}

// Catalog serves the service list, read-through an optional cache. Cache
// failures are logged and fall back to the store.
type Catalog struct {
	repo  repository.ServiceRepository
	cache Cache
	log   zerolog.Logger
}

// NewCatalog accepts a nil cache.
func NewCatalog(repo repository.ServiceRepository, cache Cache, log zerolog.Logger) *Catalog {
	return &Catalog{repo: repo, cache: cache, log: log}
}

func (c *Catalog) List(ctx context.Context) ([]models.Service, error) {
	return c.load(ctx, catalogKey, c.repo.List)
}

func (c *Catalog) Names(ctx context.Context) ([]models.ServiceName, error) {
	services, err := c.load(ctx, catalogNamesKey, c.repo.ListNames)
	if err != nil {
		return nil, err
	}
	names := make([]models.ServiceName, 0, len(services))
	for _, s := range services {
		names = append(names, models.ServiceName{ID: s.ID, Name: s.Name})
	}
	return names, nil
}

// Seed upserts every service by name and drops the cached lists.
func (c *Catalog) Seed(ctx context.Context, services []models.Service) (int, error) {
	changed := 0
	for _, s := range services {
		res, err := c.repo.UpsertByName(ctx, s)
		if err != nil {
			return changed, fmt.Errorf("seed %q: %w", s.Name, err)
		}
		changed += int(res.ModifiedCount + res.UpsertedCount)
	}
	c.invalidate(ctx)
	return changed, nil
}

func (c *Catalog) load(ctx context.Context, key string, fetch func(context.Context) ([]models.Service, error)) ([]models.Service, error) {
	if c.cache != nil {
		var cached []models.Service
		hit, err := c.cache.Get(ctx, key, &cached)
		switch {
		case err != nil:
			c.log.Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
		case hit:
			metrics.CatalogLookups.WithLabelValues("hit").Inc()
			return cached, nil
		default:
			metrics.CatalogLookups.WithLabelValues("miss").Inc()
		}
	}

	services, err := fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("load services: %w", err)
	}
	if c.cache != nil {
		if err := c.cache.Set(ctx, key, services); err != nil {
			c.log.Warn().Err(err).Str("key", key).Msg("catalog cache write failed")
		}
	}
	return services, nil
}

func (c *Catalog) invalidate(ctx context.Context) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Delete(ctx, catalogKey, catalogNamesKey); err != nil {
		c.log.Warn().Err(err).Msg("catalog cache invalidation failed")
	}
}

// DefaultCatalog is the treatment list installed by the seed command.
func DefaultCatalog() []models.Service {
	slots := []string{
		"08.00 AM - 08.30 AM",
		"08.30 AM - 09.00 AM",
		"09.00 AM - 09.30 AM",
		"09.30 AM - 10.00 AM",
		"10.00 AM - 10.30 AM",
		"10.30 AM - 11.00 AM",
		"11.00 AM - 11.30 AM",
		"11.30 AM - 12.00 PM",
		"04.00 PM - 04.30 PM",
		"04.30 PM - 05.00 PM",
		"05.00 PM - 05.30 PM",
	}
	names := []string{
		"Teeth Orthodontics",
		"Cosmetic Dentistry",
		"Teeth Cleaning",
		"Cavity Protection",
		"Pediatric Dental",
		"Oral Surgery",
	}
	out := make([]models.Service, 0, len(names))
	for _, n := range names {
		out = append(out, models.Service{Name: n, Slots: append([]string(nil), slots...)})
	}
	return out
}
