// Package search mirrors committed company dashboards into Elasticsearch for
// reporting.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"valyntra-workers/internal/common/errors"
	"valyntra-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const SinkName = "search"

// DashboardMapping is the index mapping for DashboardDocument.
var DashboardMapping = []byte(`{
  "mappings": {
    "properties": {
      "companyId":          {"type": "keyword"},
      "companyName":        {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "industry":           {"type": "keyword"},
      "assessmentId":       {"type": "keyword"},
      "overall":            {"type": "float"},
      "tier":               {"type": "keyword"},
      "categories":         {"type": "object"},
      "opportunities": {
        "type": "nested",
        "properties": {
          "rank":       {"type": "integer"},
          "useCase":    {"type": "keyword"},
          "tag":        {"type": "keyword"},
          "priority":   {"type": "float"},
          "providers":  {"type": "keyword"},
          "pilotValue": {"type": "double"}
        }
      },
      "matchCount":         {"type": "integer"},
      "totalPipelineValue": {"type": "double"},
      "indexedAt":          {"type": "date"}
    }
  }
}`)

type DashboardDocument struct {
	CompanyID          string                `json:"companyId"`
	CompanyName        string                `json:"companyName"`
	Industry           string                `json:"industry"`
	AssessmentID       string                `json:"assessmentId"`
	Overall            float64               `json:"overall"`
	Tier               string                `json:"tier"`
	Categories         models.CategoryScores `json:"categories"`
	Opportunities      []OpportunitySummary  `json:"opportunities"`
	MatchCount         int                   `json:"matchCount"`
	TotalPipelineValue float64               `json:"totalPipelineValue"`
	IndexedAt          time.Time             `json:"indexedAt"`
}

type OpportunitySummary struct {
	Rank       int      `json:"rank"`
	UseCase    string   `json:"useCase"`
	Tag        string   `json:"tag"`
	Priority   float64  `json:"priority"`
	Providers  []string `json:"providers"`
	PilotValue float64  `json:"pilotValue"`
}

// NewDashboardDocument flattens a committed result into one document per
// company. Matches are grouped under their opportunity.
func NewDashboardDocument(company models.Company, result models.PipelineResult, now time.Time) DashboardDocument {
	dashboard := models.NewDashboard(result.Snapshot())

	byOpportunity := make(map[string][]models.Match, len(dashboard.Opportunities))
	for _, m := range dashboard.Matches {
		byOpportunity[m.OpportunityID] = append(byOpportunity[m.OpportunityID], m)
	}

	summaries := make([]OpportunitySummary, 0, len(dashboard.Opportunities))
	for _, o := range dashboard.Opportunities {
		matches := byOpportunity[o.ID]
		providers := make([]string, 0, len(matches))
		for _, m := range matches {
			providers = append(providers, m.ProviderName)
		}
		summaries = append(summaries, OpportunitySummary{
			Rank:       o.Rank,
			UseCase:    o.Name,
			Tag:        o.Tag,
			Priority:   o.Priority,
			Providers:  providers,
			PilotValue: models.TotalPipelineValue(matches),
		})
	}

	sort.SliceStable(summaries, func(a, b int) bool { return summaries[a].Rank < summaries[b].Rank })

	return DashboardDocument{
		CompanyID:          company.ID,
		CompanyName:        company.Name,
		Industry:           company.Industry,
		AssessmentID:       result.AssessmentID,
		Overall:            result.Score.Overall,
		Tier:               result.Score.Tier.String(),
		Categories:         result.Score.Categories,
		Opportunities:      summaries,
		MatchCount:         dashboard.MatchCount,
		TotalPipelineValue: dashboard.TotalPipelineValue,
		IndexedAt:          now,
	}
}

// DashboardIndexer writes one document per company, keyed by company id, so
// each commit overwrites the previous dashboard.
type DashboardIndexer struct {
	client *elasticsearch.Client
	index  string
	now    func() time.Time
}

func NewDashboardIndexer(client *elasticsearch.Client, index string) *DashboardIndexer {
	return &DashboardIndexer{
		client: client,
		index:  index,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (i *DashboardIndexer) Name() string { return SinkName }

func (i *DashboardIndexer) Deliver(ctx context.Context, company models.Company, result models.PipelineResult) error {
	body, err := json.Marshal(NewDashboardDocument(company, result, i.now()))
	if err != nil {
		return errors.NewSearchIndexFailedError(i.index, fmt.Errorf("encode dashboard: %w", err))
	}

	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: company.ID,
		Body:       bytes.NewReader(body),
	}

	res, err := req.Do(ctx, i.client)
	if err != nil {
		return errors.NewSearchIndexFailedError(i.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return errors.NewSearchIndexFailedError(i.index, fmt.Errorf("index response: %s", res.Status()))
	}
	return nil
}
