package dataforseo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"linkdesk-backend/internal/inflight"
	"linkdesk-backend/internal/logger"
	"linkdesk-backend/internal/metrics"
	"linkdesk-backend/internal/models"
)

const (
	DefaultResultsLimit = 100
	MaxResultsLimit     = 1000
)

var (
	ErrAnalysisRunning = errors.New("analysis already running for this domain")
	ErrDomainMismatch  = errors.New("domain does not belong to this client")
	ErrMissingDomain   = errors.New("domainId is required")
)

type Store interface {
	GetDomain(ctx context.Context, domainID uuid.UUID) (*models.BulkAnalysisDomain, error)
	ReplaceKeywordResults(ctx context.Context, domainID uuid.UUID, results []models.KeywordResult) error
	KeywordResults(ctx context.Context, domainID uuid.UUID, limit int) ([]models.KeywordResult, error)
	KeywordSummary(ctx context.Context, domainID uuid.UUID) (models.KeywordSummary, error)
}

type Fetcher interface {
	RankedKeywords(ctx context.Context, domain string, limit int) ([]RankedKeyword, error)
}

type AnalysisStatus struct {
	Analyzed       bool       `json:"analyzed"`
	ResultCount    int        `json:"resultCount"`
	LastAnalyzedAt *time.Time `json:"lastAnalyzedAt,omitempty"`
}

type AnalyzeRequest struct {
	ClientID uuid.UUID
	DomainID uuid.UUID
	Domain   string
	Keywords []string
	UseCache bool
}

type AnalyzeResult struct {
	DomainID     uuid.UUID              `json:"domainId"`
	Domain       string                 `json:"domain"`
	KeywordCount int                    `json:"keywordCount"`
	FromCache    bool                   `json:"fromCache"`
	Results      []models.KeywordResult `json:"results"`
}

type Service struct {
	store   Store
	fetcher Fetcher
	cache   Cache
	rows    *inflight.Tracker
	metrics *metrics.Metrics
	log     logger.Logger
	now     func() time.Time
}

// NewService wires the analysis flow. cache may be nil, in which case every
// analysis goes to the API.
func NewService(store Store, fetcher Fetcher, cache Cache, m *metrics.Metrics, log logger.Logger) *Service {
	return &Service{
		store:   store,
		fetcher: fetcher,
		cache:   cache,
		rows:    inflight.New(),
		metrics: m,
		log:     log,
		now:     time.Now,
	}
}

// Rows exposes the per-domain loading state.
func (s *Service) Rows() *inflight.Tracker {
	return s.rows
}

func (s *Service) CheckAnalyzed(ctx context.Context, clientID, domainID uuid.UUID) (*AnalysisStatus, error) {
	if _, err := s.ownedDomain(ctx, clientID, domainID); err != nil {
		return nil, err
	}
	summary, err := s.store.KeywordSummary(ctx, domainID)
	if err != nil {
		return nil, err
	}
	return &AnalysisStatus{
		Analyzed:       summary.Count > 0,
		ResultCount:    summary.Count,
		LastAnalyzedAt: summary.LastAnalyzedAt,
	}, nil
}

// NormalizeLimit applies the default and the upper bound to a results limit.
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultResultsLimit
	case limit > MaxResultsLimit:
		return MaxResultsLimit
	}
	return limit
}

func (s *Service) Results(ctx context.Context, clientID, domainID uuid.UUID, limit int) ([]models.KeywordResult, error) {
	if _, err := s.ownedDomain(ctx, clientID, domainID); err != nil {
		return nil, err
	}
	return s.store.KeywordResults(ctx, domainID, NormalizeLimit(limit))
}

// Analyze fetches ranked keywords, keeps the requested ones and replaces the
// stored results. Only one analysis per domain runs at a time.
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResult, error) {
	if req.DomainID == uuid.Nil {
		return nil, ErrMissingDomain
	}

	key := req.DomainID.String()
	if !s.rows.TryStart(key) {
		return nil, ErrAnalysisRunning
	}

	result, err := s.analyze(ctx, req)
	s.rows.Finish(key, err)
	if err != nil {
		s.log.Error("DataForSEO analysis failed",
			logger.String("domain_id", key),
			logger.String("domain", req.Domain),
			logger.Error(err),
		)
		return nil, err
	}

	s.log.Info("DataForSEO analysis stored",
		logger.String("domain", result.Domain),
		logger.Int("keywords", result.KeywordCount),
		logger.Bool("from_cache", result.FromCache),
	)
	return result, nil
}

func (s *Service) analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResult, error) {
	d, err := s.ownedDomain(ctx, req.ClientID, req.DomainID)
	if err != nil {
		return nil, err
	}
	domain := strings.TrimSpace(req.Domain)
	if domain == "" {
		domain = d.Domain
	}

	ranked, fromCache, err := s.rankedKeywords(ctx, domain, req.UseCache)
	if err != nil {
		return nil, err
	}

	analyzedAt := s.now().UTC()
	results := make([]models.KeywordResult, 0, len(ranked))
	for _, kw := range FilterKeywords(ranked, req.Keywords) {
		results = append(results, models.KeywordResult{
			DomainID:     req.DomainID,
			Keyword:      kw.Keyword,
			Position:     kw.Position,
			SearchVolume: kw.SearchVolume,
			URL:          kw.URL,
			AnalyzedAt:   analyzedAt,
		})
	}

	if err := s.store.ReplaceKeywordResults(ctx, req.DomainID, results); err != nil {
		return nil, err
	}

	return &AnalyzeResult{
		DomainID:     req.DomainID,
		Domain:       domain,
		KeywordCount: len(results),
		FromCache:    fromCache,
		Results:      results,
	}, nil
}

func (s *Service) rankedKeywords(ctx context.Context, domain string, useCache bool) ([]RankedKeyword, bool, error) {
	if useCache && s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, domain)
		switch {
		case err != nil:
			s.log.Warn("DataForSEO cache read failed", logger.String("domain", domain), logger.Error(err))
			s.countCache("error")
		case ok:
			s.countCache("hit")
			return cached, true, nil
		default:
			s.countCache("miss")
		}
	}

	ranked, err := s.fetcher.RankedKeywords(ctx, domain, MaxFetchLimit)
	if s.metrics != nil {
		s.metrics.DataForSEORequestsTotal.WithLabelValues(metrics.Outcome(err)).Inc()
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch ranked keywords for %s: %w", domain, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, domain, ranked); err != nil {
			s.log.Warn("DataForSEO cache write failed", logger.String("domain", domain), logger.Error(err))
		}
	}
	return ranked, false, nil
}

func (s *Service) countCache(result string) {
	if s.metrics != nil {
		s.metrics.DataForSEOCacheTotal.WithLabelValues(result).Inc()
	}
}

func (s *Service) ownedDomain(ctx context.Context, clientID, domainID uuid.UUID) (*models.BulkAnalysisDomain, error) {
	d, err := s.store.GetDomain(ctx, domainID)
	if err != nil {
		return nil, err
	}
	if d.ClientID != clientID {
		return nil, fmt.Errorf("domain %s: %w", domainID, ErrDomainMismatch)
	}
	return d, nil
}

// FilterKeywords keeps ranked keywords whose text matches one of wanted,
// ignoring case. An empty wanted list keeps everything.
func FilterKeywords(ranked []RankedKeyword, wanted []string) []RankedKeyword {
	set := make(map[string]struct{}, len(wanted))
	for _, w := range wanted {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			set[w] = struct{}{}
		}
	}
	if len(set) == 0 {
		return ranked
	}

	var out []RankedKeyword
	for _, kw := range ranked {
		if _, ok := set[strings.ToLower(strings.TrimSpace(kw.Keyword))]; ok {
			out = append(out, kw)
		}
	}
	return out
}
