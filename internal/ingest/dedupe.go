package ingest

import "github.com/seenimoa/biasfeed/pkg/models"

// Merge concatenates article batches, keeping only the first article
// seen for each exact URL. Batch order is the precedence order: when
// two sources report the same URL, the earlier batch wins.
func Merge(batches ...[]models.Article) []models.Article {
	seen := make(map[string]struct{})
	var merged []models.Article
	for _, batch := range batches {
		for _, a := range batch {
			if _, ok := seen[a.URL]; ok {
				continue
			}
			seen[a.URL] = struct{}{}
			merged = append(merged, a)
		}
	}
	return merged
}
