package store

import (
	"context"
	"fmt"

	"github.com/seenimoa/biasfeed/pkg/models"
)

// DefaultSources is the initial source registry, with bias ratings
// based on AllSides Media Bias Ratings.
var DefaultSources = []models.Source{
	{Name: "CNN", Domain: "cnn.com", BiasRating: models.BiasLeft, ReferenceURL: "https://www.allsides.com/news-source/cnn-media-bias"},
	{Name: "New York Times", Domain: "nytimes.com", BiasRating: models.BiasLeanLeft, ReferenceURL: "https://www.allsides.com/news-source/new-york-times"},
	{Name: "Washington Post", Domain: "washingtonpost.com", BiasRating: models.BiasLeanLeft, ReferenceURL: "https://www.allsides.com/news-source/washington-post-media-bias"},
	{Name: "MSNBC", Domain: "msnbc.com", BiasRating: models.BiasLeft, ReferenceURL: "https://www.allsides.com/news-source/msnbc"},
	{Name: "HuffPost", Domain: "huffpost.com", BiasRating: models.BiasLeft, ReferenceURL: "https://www.allsides.com/news-source/huffpost-media-bias"},
	{Name: "Vox", Domain: "vox.com", BiasRating: models.BiasLeft, ReferenceURL: "https://www.allsides.com/news-source/vox-news-media-bias"},
	{Name: "Bloomberg", Domain: "bloomberg.com", BiasRating: models.BiasLeanLeft, ReferenceURL: "https://www.allsides.com/news-source/bloomberg"},
	{Name: "CNBC", Domain: "cnbc.com", BiasRating: models.BiasCenter, ReferenceURL: "https://www.allsides.com/news-source/cnbc-media-bias"},
	{Name: "Reuters", Domain: "reuters.com", BiasRating: models.BiasCenter, ReferenceURL: "https://www.allsides.com/news-source/reuters"},
	{Name: "Associated Press", Domain: "apnews.com", BiasRating: models.BiasCenter, ReferenceURL: "https://www.allsides.com/news-source/associated-press-media-bias"},
	{Name: "Financial Times", Domain: "ft.com", BiasRating: models.BiasCenter, ReferenceURL: "https://www.allsides.com/news-source/financial-times-media-bias"},
	{Name: "The Hill", Domain: "thehill.com", BiasRating: models.BiasCenter, ReferenceURL: "https://www.allsides.com/news-source/hill-media-bias"},
	{Name: "Wall Street Journal", Domain: "wsj.com", BiasRating: models.BiasLeanRight, ReferenceURL: "https://www.allsides.com/news-source/wall-street-journal-media-bias"},
	{Name: "Fox Business", Domain: "foxbusiness.com", BiasRating: models.BiasLeanRight, ReferenceURL: "https://www.allsides.com/news-source/fox-business"},
	{Name: "Fox News", Domain: "foxnews.com", BiasRating: models.BiasRight, ReferenceURL: "https://www.allsides.com/news-source/fox-news-media-bias"},
	{Name: "New York Post", Domain: "nypost.com", BiasRating: models.BiasLeanRight, ReferenceURL: "https://www.allsides.com/news-source/new-york-post"},
	{Name: "The Epoch Times", Domain: "theepochtimes.com", BiasRating: models.BiasRight, ReferenceURL: "https://www.allsides.com/news-source/epoch-times-media-bias"},
	{Name: "Breitbart News", Domain: "breitbart.com", BiasRating: models.BiasRight, ReferenceURL: "https://www.allsides.com/news-source/breitbart"},
	{Name: "Business Insider", Domain: "businessinsider.com", BiasRating: models.BiasLeanLeft, ReferenceURL: "https://www.allsides.com/news-source/business-insider"},
	{Name: "Yahoo Finance", Domain: "finance.yahoo.com", BiasRating: models.BiasCenter, ReferenceURL: "https://www.allsides.com/news-source/yahoo-news-media-bias"},
	{Name: "MarketWatch", Domain: "marketwatch.com", BiasRating: models.BiasCenter, ReferenceURL: "https://www.allsides.com/news-source/marketwatch-media-bias"},
	{Name: "Seeking Alpha", Domain: "seekingalpha.com", BiasRating: models.BiasCenter},
	{Name: "Benzinga", Domain: "benzinga.com", BiasRating: models.BiasCenter},
	{Name: "Motley Fool", Domain: "fool.com", BiasRating: models.BiasCenter},
	{Name: "Investor's Business Daily", Domain: "investors.com", BiasRating: models.BiasLeanRight, ReferenceURL: "https://www.allsides.com/news-source/investors-business-daily-media-bias"},
}

// SeedSources inserts the default source registry, skipping domains
// that already exist. Safe to run repeatedly. Returns the number of
// sources added.
func (s *Store) SeedSources(ctx context.Context) (int, error) {
	added := 0
	for i := range DefaultSources {
		src := DefaultSources[i]

		existing, err := s.GetSourceByDomain(ctx, src.Domain)
		if err == nil && existing != nil {
			continue
		}
		if err != nil && err != ErrNotFound {
			return added, fmt.Errorf("seed sources: %w", err)
		}

		if err := s.db.WithContext(ctx).Create(&src).Error; err != nil {
			return added, fmt.Errorf("seed source %s: %w", src.Domain, err)
		}
		added++
	}
	return added, nil
}
