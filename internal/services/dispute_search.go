package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"disputeshield_back_end/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const disputeIndexMapping = `{
  "mappings": {
    "properties": {
      "id":                   {"type": "keyword"},
      "user_id":              {"type": "keyword"},
      "stripe_connection_id": {"type": "keyword"},
      "stripe_dispute_id":    {"type": "keyword"},
      "charge_id":            {"type": "keyword"},
      "status":               {"type": "keyword"},
      "currency":             {"type": "keyword"},
      "reason":               {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "amount":               {"type": "double"},
      "evidence_due_by":      {"type": "date"},
      "created_at":           {"type": "date"},
      "updated_at":           {"type": "date"}
    }
  }
}`

// DisputeSearch indexe et recherche les litiges dans Elasticsearch
type DisputeSearch struct {
	client *elasticsearch.Client
	index  string
}

func NewDisputeSearch(client *elasticsearch.Client, index string) *DisputeSearch {
	if index == "" {
		index = "disputes"
	}
	return &DisputeSearch{client: client, index: index}
}

// EnsureIndex crée l'index avec son mapping s'il n'existe pas encore
func (s *DisputeSearch) EnsureIndex(ctx context.Context) error {
	res, err := esapi.IndicesExistsRequest{Index: []string{s.index}}.Do(ctx, s.client)
	if err != nil {
		return err
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = esapi.IndicesCreateRequest{
		Index: s.index,
		Body:  strings.NewReader(disputeIndexMapping),
	}.Do(ctx, s.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("création de l'index %s: %s", s.index, res.String())
	}
	log.Printf("✅ Index Elasticsearch %s créé", s.index)
	return nil
}

func (s *DisputeSearch) IndexDispute(ctx context.Context, d *models.Dispute) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: d.ID.String(),
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elastic a renvoyé une erreur pour %s: %s", d.StripeDisputeID, res.String())
	}
	return nil
}

// SearchDisputes : multi_match sur les champs texte, filtré par propriétaire
func (s *DisputeSearch) SearchDisputes(ctx context.Context, userID, query string) ([]map[string]any, error) {
	var buf bytes.Buffer
	q := map[string]any{
		"size": 50,
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":  query,
						"fields": []string{"stripe_dispute_id", "charge_id", "reason", "status", "currency"},
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"user_id": userID},
				},
			},
		},
	}
	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		return nil, fmt.Errorf("erreur encodage requête: %v", err)
	}

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  &buf,
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("erreur requête Elastic: %v", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Printf("❌ Elasticsearch erreur: %s", res.String())
		return nil, errors.New("index non trouvé ou vide")
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("erreur décodage JSON: %v", err)
	}

	results := make([]map[string]any, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		if hit.Source != nil {
			results = append(results, hit.Source)
		}
	}
	return results, nil
}
