package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/elastic-opd/internal/domain/entities"
	"github.com/zatekoja/elastic-opd/internal/domain/providers"
	"github.com/zatekoja/elastic-opd/internal/domain/repositories"
)

// CachedDoctorAdapter wraps a DoctorRepository with caching. Doctor records
// are read on every engine operation and immutable after creation, which
// makes them ideal cache residents.
type CachedDoctorAdapter struct {
	adapter repositories.DoctorRepository
	cache   providers.CacheProvider
}

// NewCachedDoctorAdapter creates a new cached doctor adapter
func NewCachedDoctorAdapter(adapter repositories.DoctorRepository, cache providers.CacheProvider) repositories.DoctorRepository {
	return &CachedDoctorAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

// Cache TTLs (in seconds)
const (
	doctorByIDTTL  = 300
	doctorsListTTL = 120
)

const doctorsListCacheKey = "doctors:list"

func doctorCacheKey(id string) string {
	return fmt.Sprintf("doctor:%s", id)
}

// GetByID retrieves a doctor by ID with caching
func (a *CachedDoctorAdapter) GetByID(ctx context.Context, id string) (*entities.Doctor, error) {
	cacheKey := doctorCacheKey(id)

	if cached, err := a.cache.Get(ctx, cacheKey); err == nil {
		var doctor entities.Doctor
		if err := json.Unmarshal(cached, &doctor); err == nil {
			return &doctor, nil
		}
		log.Warn().Str("doctor_id", id).Msg("failed to unmarshal cached doctor")
	}

	doctor, err := a.adapter.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Update cache asynchronously to avoid blocking the response
	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(doctor); err == nil {
			if err := a.cache.Set(bgCtx, cacheKey, data, doctorByIDTTL); err != nil {
				log.Warn().Err(err).Str("doctor_id", id).Msg("failed to cache doctor")
			}
		}
	}()

	return doctor, nil
}

// List retrieves all doctors with caching
func (a *CachedDoctorAdapter) List(ctx context.Context) ([]*entities.Doctor, error) {
	if cached, err := a.cache.Get(ctx, doctorsListCacheKey); err == nil {
		var doctors []*entities.Doctor
		if err := json.Unmarshal(cached, &doctors); err == nil {
			return doctors, nil
		}
		log.Warn().Msg("failed to unmarshal cached doctors list")
	}

	doctors, err := a.adapter.List(ctx)
	if err != nil {
		return nil, err
	}

	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(doctors); err == nil {
			if err := a.cache.Set(bgCtx, doctorsListCacheKey, data, doctorsListTTL); err != nil {
				log.Warn().Err(err).Msg("failed to cache doctors list")
			}
		}
	}()

	return doctors, nil
}

// Create creates a doctor and invalidates the list cache
func (a *CachedDoctorAdapter) Create(ctx context.Context, doctor *entities.Doctor) error {
	if err := a.adapter.Create(ctx, doctor); err != nil {
		return err
	}

	go func() {
		bgCtx := context.Background()
		if err := a.cache.Delete(bgCtx, doctorsListCacheKey); err != nil {
			log.Warn().Err(err).Msg("failed to invalidate doctors list cache")
		}
	}()

	return nil
}
