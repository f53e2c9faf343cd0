// internal/matching/history/elasticsearch.go
package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"venture-match/internal/matching"
	"venture-match/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const DefaultOutcomeIndex = "match-outcomes"

var ErrOutcomeNotResolved = errors.New("record has no actual outcome")

// outcomeIndexMapping keeps the filter fields as keywords so slugs like "series-a" are
// matched whole instead of being split by the standard analyzer.
const outcomeIndexMapping = `{
  "mappings": {
    "properties": {
      "id": {"type": "keyword"},
      "startupId": {"type": "keyword"},
      "investorId": {"type": "keyword"},
      "matchType": {"type": "keyword"},
      "startupStage": {"type": "keyword"},
      "startupIndustry": {"type": "keyword"},
      "overallScore": {"type": "integer"},
      "confidence": {"type": "float"},
      "actualOutcome": {"type": "keyword"},
      "resolvedAt": {"type": "date"}
    }
  }
}`

// outcomeDocument is the shape stored in the outcome index.
type outcomeDocument struct {
	ID              string    `json:"id"`
	StartupID       string    `json:"startupId"`
	InvestorID      string    `json:"investorId"`
	MatchType       string    `json:"matchType"`
	StartupStage    string    `json:"startupStage"`
	StartupIndustry string    `json:"startupIndustry"`
	OverallScore    int       `json:"overallScore"`
	Confidence      float64   `json:"confidence"`
	ActualOutcome   string    `json:"actualOutcome"`
	ResolvedAt      time.Time `json:"resolvedAt"`
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source outcomeDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// ElasticsearchSource searches the outcome index for completed matches.
type ElasticsearchSource struct {
	client *elasticsearch.Client
	index  string
	pool   int

	mu      sync.Mutex
	ensured bool
}

// NewElasticsearchSource searches and indexes resolved outcomes in index.
// Call EnsureIndex before the first search so exact-match filters see keyword fields.
func NewElasticsearchSource(client *elasticsearch.Client, index string, pool int) *ElasticsearchSource {
	if index == "" {
		index = DefaultOutcomeIndex
	}
	if pool <= 0 {
		pool = DefaultPoolSize
	}
	return &ElasticsearchSource{client: client, index: index, pool: pool}
}

// EnsureIndex creates the outcome index with its keyword mapping unless it already exists.
func (s *ElasticsearchSource) EnsureIndex(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ensured {
		return nil
	}

	exists, err := esapi.IndicesExistsRequest{Index: []string{s.index}}.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("check outcome index: %w", err)
	}
	exists.Body.Close()

	switch exists.StatusCode {
	case http.StatusOK:
		s.ensured = true
		return nil
	case http.StatusNotFound:
	default:
		return fmt.Errorf("check outcome index: %s", exists.Status())
	}

	res, err := esapi.IndicesCreateRequest{
		Index: s.index,
		Body:  strings.NewReader(outcomeIndexMapping),
	}.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("create outcome index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		if !bytes.Contains(body, []byte("resource_already_exists_exception")) {
			return fmt.Errorf("create outcome index: %s", res.Status())
		}
	}
	s.ensured = true
	return nil
}

// exactMatch also tries the .keyword subfield that dynamic mapping adds to text fields.
func exactMatch(field, value string) map[string]interface{} {
	return map[string]interface{}{
		"bool": map[string]interface{}{
			"should": []interface{}{
				map[string]interface{}{"term": map[string]interface{}{field: value}},
				map[string]interface{}{"term": map[string]interface{}{field + ".keyword": value}},
			},
			"minimum_should_match": 1,
		},
	}
}

func buildResolvedQuery(stage, industry string) map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []interface{}{
					exactMatch("startupStage", stage),
					exactMatch("startupIndustry", industry),
					map[string]interface{}{"exists": map[string]interface{}{"field": "actualOutcome"}},
				},
			},
		},
		"sort": []interface{}{
			map[string]interface{}{"resolvedAt": map[string]interface{}{"order": "desc"}},
		},
	}
}

// ResolvedMatches returns resolved outcomes for the stage and industry, newest first.
func (s *ElasticsearchSource) ResolvedMatches(ctx context.Context, stage, industry string) ([]matching.HistoricalMatch, error) {
	body, err := json.Marshal(buildResolvedQuery(stage, industry))
	if err != nil {
		return nil, err
	}

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(body),
		Size:  &s.pool,
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("search outcomes: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return nil, nil
	}
	if res.IsError() {
		return nil, fmt.Errorf("search outcomes: %s", res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode outcome search: %w", err)
	}

	out := make([]matching.HistoricalMatch, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		out = append(out, matching.HistoricalMatch{
			ID:           hit.Source.ID,
			OverallScore: hit.Source.OverallScore,
			Outcome:      models.ActualOutcome(hit.Source.ActualOutcome),
		})
	}
	return out, nil
}

// IndexOutcome writes a completed record into the outcome index, keyed by record id.
func (s *ElasticsearchSource) IndexOutcome(ctx context.Context, rec *models.MatchRecord) error {
	if rec.ActualOutcome == nil {
		return fmt.Errorf("%w: %s", ErrOutcomeNotResolved, rec.ID)
	}
	if err := s.EnsureIndex(ctx); err != nil {
		return err
	}
	doc := outcomeDocument{
		ID:              rec.ID,
		StartupID:       rec.StartupID,
		InvestorID:      rec.InvestorID,
		MatchType:       rec.MatchType,
		StartupStage:    rec.StartupStage,
		StartupIndustry: rec.StartupIndustry,
		OverallScore:    rec.OverallScore,
		Confidence:      rec.Confidence,
		ActualOutcome:   string(*rec.ActualOutcome),
		ResolvedAt:      rec.LastUpdated,
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: rec.ID,
		Body:       strings.NewReader(string(body)),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("index outcome %s: %w", rec.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index outcome %s: %s", rec.ID, res.Status())
	}
	return nil
}
