package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// IndexPractitioners is the Elasticsearch index holding practitioner profiles
const IndexPractitioners = "practitioners"

// Client wraps the Elasticsearch client with practitioner search functionality
type Client struct {
	es *elasticsearch.Client
}

// NewClient creates an Elasticsearch client and verifies the connection
func NewClient(esURL string) (*Client, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{esURL},
	}

	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	client := &Client{es: es}

	if _, err := es.Info(); err != nil {
		return nil, fmt.Errorf("failed to connect to Elasticsearch: %w", err)
	}

	return client, nil
}

// InitializeIndices creates the search indices with proper mappings
func (c *Client) InitializeIndices(ctx context.Context) error {
	if err := c.createPractitionersIndex(ctx); err != nil {
		return fmt.Errorf("failed to create practitioners index: %w", err)
	}
	return nil
}

// createPractitionersIndex creates the practitioners search index with mapping
func (c *Client) createPractitionersIndex(ctx context.Context) error {
	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"id": map[string]interface{}{
					"type": "keyword",
				},
				"username": map[string]interface{}{
					"type":     "text",
					"analyzer": "standard",
					"fields": map[string]interface{}{
						"keyword": map[string]interface{}{
							"type": "keyword",
						},
						"suggest": map[string]interface{}{
							"type":     "completion",
							"analyzer": "simple",
						},
					},
				},
				"display_name": map[string]interface{}{
					"type":     "text",
					"analyzer": "standard",
				},
				"bio": map[string]interface{}{
					"type":     "text",
					"analyzer": "standard",
				},
				"specialty": map[string]interface{}{
					"type": "keyword",
				},
				"procedures": map[string]interface{}{
					"type": "keyword",
				},
				"follower_count": map[string]interface{}{
					"type": "integer",
				},
				"created_at": map[string]interface{}{
					"type": "date",
				},
			},
		},
	}

	return c.createIndex(ctx, IndexPractitioners, mapping)
}

// createIndex creates an Elasticsearch index with the given mapping
func (c *Client) createIndex(ctx context.Context, indexName string, mapping map[string]interface{}) error {
	res, err := c.es.Indices.Exists([]string{indexName})
	if err != nil {
		return fmt.Errorf("failed to check if index exists: %w", err)
	}
	res.Body.Close()

	// Index already exists
	if res.StatusCode == 200 {
		return nil
	}

	mappingJSON, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	res, err = c.es.Indices.Create(indexName,
		c.es.Indices.Create.WithBody(bytes.NewReader(mappingJSON)),
		c.es.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		var errResp map[string]interface{}
		if err := json.NewDecoder(res.Body).Decode(&errResp); err != nil {
			return fmt.Errorf("error response [%s]", res.Status())
		}
		return fmt.Errorf("error creating index: [%s] %v", res.Status(), errResp["error"])
	}

	return nil
}

// IndexPractitioner indexes a practitioner document for search
func (c *Client) IndexPractitioner(ctx context.Context, userID string, doc map[string]interface{}) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal practitioner document: %w", err)
	}

	res, err := c.es.Index(IndexPractitioners, bytes.NewReader(body),
		c.es.Index.WithDocumentID(userID),
		c.es.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to index practitioner: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		var errResp map[string]interface{}
		if err := json.NewDecoder(res.Body).Decode(&errResp); err != nil {
			return fmt.Errorf("error response [%s]", res.Status())
		}
		return fmt.Errorf("error indexing practitioner: [%s] %v", res.Status(), errResp["error"])
	}

	return nil
}

// DeletePractitioner removes a practitioner document from the search index
func (c *Client) DeletePractitioner(ctx context.Context, userID string) error {
	res, err := c.es.Delete(IndexPractitioners, userID,
		c.es.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to delete practitioner: %w", err)
	}
	defer res.Body.Close()

	// 404 is OK - document doesn't exist
	if res.IsError() && res.StatusCode != 404 {
		var errResp map[string]interface{}
		if err := json.NewDecoder(res.Body).Decode(&errResp); err != nil {
			return fmt.Errorf("error response [%s]", res.Status())
		}
		return fmt.Errorf("error deleting practitioner: [%s] %v", res.Status(), errResp["error"])
	}

	return nil
}

// PractitionerSearchParams holds the filters for a practitioner search
type PractitionerSearchParams struct {
	Query      string
	Specialty  string
	Procedures []string
	Limit      int
	Offset     int
}

// PractitionerSearchResult represents a practitioner search result page
type PractitionerSearchResult struct {
	IDs   []string `json:"ids"`
	Total int      `json:"total"`
}

// SearchPractitioners searches for practitioners matching the params and
// returns matching user IDs in relevance order
func (c *Client) SearchPractitioners(ctx context.Context, params PractitionerSearchParams) (*PractitionerSearchResult, error) {
	queryJSON, err := json.Marshal(buildSearchQuery(params))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(IndexPractitioners),
		c.es.Search.WithBody(bytes.NewReader(queryJSON)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	return decodeSearchResult(res)
}

// buildSearchQuery assembles the bool query for a practitioner search.
// Text matches are scored with boosted fields while specialty and
// procedure filters do not affect relevance.
func buildSearchQuery(params PractitionerSearchParams) map[string]interface{} {
	boolQuery := map[string]interface{}{}

	if params.Query != "" {
		boolQuery["should"] = []map[string]interface{}{
			{
				"match": map[string]interface{}{
					"username": map[string]interface{}{
						"query":         params.Query,
						"boost":         2.0,
						"fuzziness":     "AUTO",
						"prefix_length": 1,
					},
				},
			},
			{
				"match": map[string]interface{}{
					"display_name": map[string]interface{}{
						"query":     params.Query,
						"boost":     1.5,
						"fuzziness": "AUTO",
					},
				},
			},
			{
				"match": map[string]interface{}{
					"bio": map[string]interface{}{
						"query":     params.Query,
						"boost":     0.5,
						"fuzziness": "AUTO",
					},
				},
			},
		}
		boolQuery["minimum_should_match"] = 1
	}

	filters := []map[string]interface{}{}
	if params.Specialty != "" {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"specialty": params.Specialty},
		})
	}
	if len(params.Procedures) > 0 {
		filters = append(filters, map[string]interface{}{
			"terms": map[string]interface{}{"procedures": params.Procedures},
		})
	}
	if len(filters) > 0 {
		boolQuery["filter"] = filters
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": boolQuery,
		},
		"sort": []map[string]interface{}{
			{"_score": map[string]interface{}{"order": "desc"}},
			{"follower_count": map[string]interface{}{"order": "desc"}},
		},
		"from": params.Offset,
		"size": params.Limit,
	}
}

// decodeSearchResult extracts the matching IDs and total from a search response
func decodeSearchResult(res *esapi.Response) (*PractitionerSearchResult, error) {
	if res.IsError() {
		var errResp map[string]interface{}
		if err := json.NewDecoder(res.Body).Decode(&errResp); err != nil {
			return nil, fmt.Errorf("error response [%s]", res.Status())
		}
		return nil, fmt.Errorf("error searching practitioners: [%s] %v", res.Status(), errResp["error"])
	}

	var searchResp struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	ids := make([]string, 0, len(searchResp.Hits.Hits))
	for _, hit := range searchResp.Hits.Hits {
		ids = append(ids, hit.ID)
	}

	return &PractitionerSearchResult{
		IDs:   ids,
		Total: searchResp.Hits.Total.Value,
	}, nil
}
