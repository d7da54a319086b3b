package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/seenimoa/biasfeed/pkg/models"
	"github.com/seenimoa/biasfeed/pkg/utils"
)

// ListSources returns every registry entry in insertion order. The
// ordering matters: the bias registry's containment fallback is
// first-match-wins over this sequence.
func (s *Store) ListSources(ctx context.Context) ([]models.Source, error) {
	var sources []models.Source
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&sources).Error; err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	return sources, nil
}

// GetSourceByDomain looks up a source by its normalized domain.
// Returns ErrNotFound when no such source exists.
func (s *Store) GetSourceByDomain(ctx context.Context, domain string) (*models.Source, error) {
	domain = utils.NormalizeDomain(domain)

	var src models.Source
	err := s.db.WithContext(ctx).Where("domain = ?", domain).First(&src).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get source %s: %w", domain, err)
	}
	return &src, nil
}

// UpsertSource creates a source or updates the existing entry for the
// same domain. The domain is normalized before writing so the registry
// never holds "www."-prefixed or mixed-case keys.
func (s *Store) UpsertSource(ctx context.Context, src *models.Source) error {
	src.Domain = utils.NormalizeDomain(src.Domain)

	var existing models.Source
	err := s.db.WithContext(ctx).Where("domain = ?", src.Domain).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := s.db.WithContext(ctx).Create(src).Error; err != nil {
			return fmt.Errorf("insert source %s: %w", src.Domain, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup source %s: %w", src.Domain, err)
	}

	existing.Name = src.Name
	existing.BiasRating = src.BiasRating
	existing.ReferenceURL = src.ReferenceURL
	if err := s.db.WithContext(ctx).Save(&existing).Error; err != nil {
		return fmt.Errorf("update source %s: %w", src.Domain, err)
	}
	*src = existing
	return nil
}

// CountSources returns the number of registry entries.
func (s *Store) CountSources(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Source{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count sources: %w", err)
	}
	return n, nil
}
