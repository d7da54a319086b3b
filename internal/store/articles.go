package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/seenimoa/biasfeed/pkg/models"
)

// InsertNewArticles persists the articles whose URL is not already
// stored, all within one transaction, and returns only the inserted
// rows. The URL is the uniqueness key; duplicates are skipped, never
// updated.
func (s *Store) InsertNewArticles(ctx context.Context, articles []models.Article) ([]models.Article, error) {
	var saved []models.Article

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range articles {
			a := articles[i]
			var existing models.Article
			err := tx.Where("url = ?", a.URL).First(&existing).Error
			if err == nil {
				continue // already stored
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("lookup article by url: %w", err)
			}
			if err := tx.Create(&a).Error; err != nil {
				return fmt.Errorf("insert article %s: %w", a.URL, err)
			}
			saved = append(saved, a)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// ArticlesSince returns all articles for ticker published at or after
// the given instant.
func (s *Store) ArticlesSince(ctx context.Context, ticker string, since time.Time) ([]models.Article, error) {
	var articles []models.Article
	err := s.db.WithContext(ctx).
		Where("ticker = ? AND published_at >= ?", ticker, since).
		Find(&articles).Error
	if err != nil {
		return nil, fmt.Errorf("query articles for %s: %w", ticker, err)
	}
	return articles, nil
}

// ListArticles returns articles for a ticker ordered newest first,
// optionally filtered by bias and sentiment labels, with pagination.
func (s *Store) ListArticles(ctx context.Context, ticker string, bias []models.BiasCategory, sentiment []models.SentimentCategory, limit, offset int) ([]models.Article, error) {
	q := s.db.WithContext(ctx).Where("ticker = ?", ticker)
	if len(bias) > 0 {
		q = q.Where("bias_label IN ?", bias)
	}
	if len(sentiment) > 0 {
		q = q.Where("sentiment_label IN ?", sentiment)
	}

	var articles []models.Article
	err := q.Order("published_at DESC").Limit(limit).Offset(offset).Find(&articles).Error
	if err != nil {
		return nil, fmt.Errorf("list articles for %s: %w", ticker, err)
	}
	return articles, nil
}

// RecentArticles returns the newest articles across all tickers.
func (s *Store) RecentArticles(ctx context.Context, limit int) ([]models.Article, error) {
	var articles []models.Article
	err := s.db.WithContext(ctx).
		Order("published_at DESC").Limit(limit).
		Find(&articles).Error
	if err != nil {
		return nil, fmt.Errorf("list recent articles: %w", err)
	}
	return articles, nil
}

// ArticlesLabeledNeutral returns up to limit articles whose sentiment
// label is still the neutral ingest placeholder, oldest first so the
// backfill drains the backlog in publication order.
func (s *Store) ArticlesLabeledNeutral(ctx context.Context, limit int) ([]models.Article, error) {
	var articles []models.Article
	err := s.db.WithContext(ctx).
		Where("sentiment_label = ?", models.SentimentNeutral).
		Order("published_at ASC").Limit(limit).
		Find(&articles).Error
	if err != nil {
		return nil, fmt.Errorf("query unclassified articles: %w", err)
	}
	return articles, nil
}

// ArticlesWithUnknownBias returns up to limit articles still labeled
// with unknown bias, for the bias backfill pass.
func (s *Store) ArticlesWithUnknownBias(ctx context.Context, limit int) ([]models.Article, error) {
	var articles []models.Article
	err := s.db.WithContext(ctx).
		Where("bias_label = ?", models.BiasUnknown).
		Order("published_at ASC").Limit(limit).
		Find(&articles).Error
	if err != nil {
		return nil, fmt.Errorf("query unknown-bias articles: %w", err)
	}
	return articles, nil
}

// SentimentUpdate carries one article's classification result.
type SentimentUpdate struct {
	ArticleID  uint
	Label      models.SentimentCategory
	Confidence float64
}

// UpdateSentimentBatch applies all sentiment updates in a single
// transaction: readers never observe a partially labeled batch.
func (s *Store) UpdateSentimentBatch(ctx context.Context, updates []SentimentUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			err := tx.Model(&models.Article{}).
				Where("id = ?", u.ArticleID).
				Updates(map[string]any{
					"sentiment_label":      u.Label,
					"sentiment_confidence": u.Confidence,
				}).Error
			if err != nil {
				return fmt.Errorf("update sentiment for article %d: %w", u.ArticleID, err)
			}
		}
		return nil
	})
}

// BiasUpdate carries one article's re-resolved bias label.
type BiasUpdate struct {
	ArticleID uint
	Label     models.BiasCategory
}

// UpdateBiasBatch applies all bias updates in a single transaction.
func (s *Store) UpdateBiasBatch(ctx context.Context, updates []BiasUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			err := tx.Model(&models.Article{}).
				Where("id = ?", u.ArticleID).
				Update("bias_label", u.Label).Error
			if err != nil {
				return fmt.Errorf("update bias for article %d: %w", u.ArticleID, err)
			}
		}
		return nil
	})
}

// CountArticles returns the total number of stored articles.
func (s *Store) CountArticles(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Article{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return n, nil
}
