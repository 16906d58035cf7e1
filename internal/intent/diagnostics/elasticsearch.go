package diagnostics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"
)

// ElasticsearchWriter indexes each entry as one document keyed by its id.
type ElasticsearchWriter struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchWriter(client *elasticsearch.Client, index string) *ElasticsearchWriter {
	return &ElasticsearchWriter{client: client, index: index}
}

func (w *ElasticsearchWriter) Write(ctx context.Context, e Entry) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode diagnostic: %w", err)
	}

	res, err := w.client.Index(
		w.index,
		bytes.NewReader(body),
		w.client.Index.WithContext(ctx),
		w.client.Index.WithDocumentID(e.ID),
	)
	if err != nil {
		return fmt.Errorf("index diagnostic: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("index diagnostic: %s: %s", res.Status(), bytes.TrimSpace(msg))
	}
	return nil
}
