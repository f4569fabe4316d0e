package database

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"valyntra-workers/internal/common/config"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cannedResponse struct {
	status int
	body   string
}

// scriptedTransport replays responses in order and records each request.
type scriptedTransport struct {
	responses []cannedResponse
	requests  []*http.Request
}

func (s *scriptedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	s.requests = append(s.requests, req)
	r := s.responses[0]
	s.responses = s.responses[1:]

	header := http.Header{}
	header.Set("X-Elastic-Product", "Elasticsearch")
	header.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: r.status,
		Status:     http.StatusText(r.status),
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(r.body)),
	}, nil
}

func newScriptedClient(t *testing.T, responses ...cannedResponse) (*ElasticsearchClient, *scriptedTransport) {
	t.Helper()
	transport := &scriptedTransport{responses: responses}
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{"http://es.test:9200"},
		Transport: transport,
	})
	require.NoError(t, err)
	return &ElasticsearchClient{Client: es}, transport
}

func TestEnsureIndex_AlreadyExists(t *testing.T) {
	client, transport := newScriptedClient(t, cannedResponse{status: 200})

	require.NoError(t, client.EnsureIndex(context.Background(), "company-dashboards", []byte(`{}`)))
	require.Len(t, transport.requests, 1)
	assert.Equal(t, http.MethodHead, transport.requests[0].Method)
	assert.Equal(t, "/company-dashboards", transport.requests[0].URL.Path)
}

func TestEnsureIndex_CreatesMissingIndex(t *testing.T) {
	client, transport := newScriptedClient(t,
		cannedResponse{status: 404},
		cannedResponse{status: 200, body: `{"acknowledged":true}`},
	)

	require.NoError(t, client.EnsureIndex(context.Background(), "company-dashboards", []byte(`{"mappings":{}}`)))
	require.Len(t, transport.requests, 2)
	assert.Equal(t, http.MethodPut, transport.requests[1].Method)
}

func TestEnsureIndex_CreatedConcurrently(t *testing.T) {
	client, _ := newScriptedClient(t,
		cannedResponse{status: 404},
		cannedResponse{status: 400, body: `{"error":{"type":"resource_already_exists_exception"}}`},
	)

	assert.NoError(t, client.EnsureIndex(context.Background(), "company-dashboards", []byte(`{}`)))
}

func TestEnsureIndex_BadMapping(t *testing.T) {
	client, _ := newScriptedClient(t,
		cannedResponse{status: 404},
		cannedResponse{status: 400, body: `{"error":{"type":"mapper_parsing_exception"}}`},
	)

	err := client.EnsureIndex(context.Background(), "company-dashboards", []byte(`{"mappings":1}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mapper_parsing_exception")
}

func TestEnsureIndex_ClusterError(t *testing.T) {
	client, _ := newScriptedClient(t, cannedResponse{status: 503})

	err := client.EnsureIndex(context.Background(), "company-dashboards", []byte(`{}`))
	assert.Error(t, err)
}

func TestNewElasticsearch_RequiresAddress(t *testing.T) {
	_, err := NewElasticsearch(config.ElasticsearchConfig{})
	assert.Error(t, err)

	client, err := NewElasticsearch(config.ElasticsearchConfig{URL: "http://localhost:9200"})
	require.NoError(t, err)
	assert.NotNil(t, client.Client)
}
