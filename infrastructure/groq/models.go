package groq

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"

	"github.com/pkg/errors"
)

// Model is an entry of the /models listing
type Model struct {
	ID      string `json:"id"`
	OwnedBy string `json:"owned_by"`
	Active  bool   `json:"active"`
}

// ListModels returns the models available to the configured API key, sorted by ID.
func (c *Client) ListModels(ctx context.Context) ([]Model, error) {
	resp, err := c.do(ctx, "list models", request{method: http.MethodGet, path: "models"})
	if err != nil {
		return nil, errors.Wrap(err, "list models")
	}
	var payload struct {
		Data []Model `json:"data"`
	}
	if err := json.Unmarshal(resp, &payload); err != nil {
		return nil, errors.Wrap(err, "decode models")
	}
	sort.Slice(payload.Data, func(i, j int) bool { return payload.Data[i].ID < payload.Data[j].ID })
	return payload.Data, nil
}
