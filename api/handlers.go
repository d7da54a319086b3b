package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/seenimoa/biasfeed/internal/analysis"
	"github.com/seenimoa/biasfeed/internal/store"
	"github.com/seenimoa/biasfeed/pkg/models"
	"github.com/seenimoa/biasfeed/pkg/utils"
)

const defaultAnalysisDays = 7

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":  "ok",
			"version": Version,
			"time":    time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// handleNews returns articles for a ticker, optionally filtered by
// comma-separated bias and sentiment categories.
func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	ticker := utils.NormalizeTicker(r.URL.Query().Get("ticker"))
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	biasFilter, err := parseBiasFilter(r.URL.Query().Get("bias"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sentimentFilter, err := parseSentimentFilter(r.URL.Query().Get("sentiment"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	limit, err := queryInt(r, "limit", 20)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	articles, err := s.store.ListArticles(r.Context(), ticker, biasFilter, sentimentFilter, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: articles})
}

// handleTrendingNews returns the most recent articles across all
// tickers.
func (s *Server) handleTrendingNews(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 10)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	articles, err := s.store.RecentArticles(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: articles})
}

// handlePortfolioNews returns recent articles per ticker for a
// comma-separated list of tickers.
func (s *Server) handlePortfolioNews(w http.ResponseWriter, r *http.Request) {
	tickers := utils.SplitTickers(r.URL.Query().Get("tickers"))
	if len(tickers) == 0 {
		writeError(w, http.StatusBadRequest, "tickers is required")
		return
	}

	limit, err := queryInt(r, "limit", 10)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := make(map[string][]models.Article, len(tickers))
	for _, ticker := range tickers {
		articles, err := s.store.ListArticles(r.Context(), ticker, nil, nil, limit, 0)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		result[ticker] = articles
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: result})
}

func (s *Server) handleTickerAnalysis(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	days, err := queryInt(r, "days", defaultAnalysisDays)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.analysis.AnalyzeTicker(r.Context(), ticker, days)
	if err != nil {
		writeError(w, analysisStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: result})
}

func (s *Server) handleTickerBias(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	days, err := queryInt(r, "days", defaultAnalysisDays)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	dist, err := s.analysis.BiasDistribution(r.Context(), ticker, days)
	if err != nil {
		writeError(w, analysisStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: dist})
}

func (s *Server) handleTickerSentiment(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	days, err := queryInt(r, "days", defaultAnalysisDays)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	dist, err := s.analysis.SentimentDistribution(r.Context(), ticker, days)
	if err != nil {
		writeError(w, analysisStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: dist})
}

func (s *Server) handlePortfolioAnalysis(w http.ResponseWriter, r *http.Request) {
	tickers := utils.SplitTickers(r.URL.Query().Get("tickers"))
	if len(tickers) == 0 {
		writeError(w, http.StatusBadRequest, "tickers is required")
		return
	}

	days, err := queryInt(r, "days", defaultAnalysisDays)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	agg, err := s.analysis.Portfolio(r.Context(), tickers, days)
	if err != nil {
		writeError(w, analysisStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: agg})
}

// handleRunAnalysis kicks off the backfill passes in the background.
func (s *Server) handleRunAnalysis(w http.ResponseWriter, r *http.Request) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if err := s.analysis.RunBatch(ctx); err != nil {
			s.logger.Error("background analysis failed", "error", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, APIResponse{
		Success: true,
		Data:    map[string]string{"message": "Analysis started in background"},
	})
}

// handleIngest runs the fetch pipeline for one ticker synchronously
// and reports how many new articles landed.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	saved, err := s.ingester.Run(r.Context(), ticker)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.analysis.InvalidateCaches()

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"ticker":       utils.NormalizeTicker(ticker),
			"new_articles": len(saved),
		},
	})
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	sources, err := s.store.ListSources(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: sources})
}

func (s *Server) handleSourceByDomain(w http.ResponseWriter, r *http.Request) {
	domain := chi.URLParam(r, "domain")

	src, err := s.store.GetSourceByDomain(r.Context(), domain)
	if err != nil {
		if err == store.ErrNotFound {
			writeError(w, http.StatusNotFound, "source with domain "+utils.NormalizeDomain(domain)+" not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: src})
}

func (s *Server) handleMethodology(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: methodology})
}

// analysisStatus maps analysis errors onto HTTP statuses: request
// validation failures are the caller's fault, anything else is ours.
func analysisStatus(err error) int {
	if errors.Is(err, analysis.ErrInvalidInput) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func parseBiasFilter(raw string) ([]models.BiasCategory, error) {
	if raw == "" {
		return nil, nil
	}
	var filter []models.BiasCategory
	for _, part := range strings.Split(raw, ",") {
		c := models.BiasCategory(strings.TrimSpace(strings.ToLower(part)))
		if !c.Valid() {
			return nil, errInvalidFilter("bias", string(c))
		}
		filter = append(filter, c)
	}
	return filter, nil
}

func parseSentimentFilter(raw string) ([]models.SentimentCategory, error) {
	if raw == "" {
		return nil, nil
	}
	var filter []models.SentimentCategory
	for _, part := range strings.Split(raw, ",") {
		c := models.SentimentCategory(strings.TrimSpace(strings.ToLower(part)))
		if !c.Valid() {
			return nil, errInvalidFilter("sentiment", string(c))
		}
		filter = append(filter, c)
	}
	return filter, nil
}
