package api

import (
	"context"
	"net/http"

	"github.com/rcliao/sheria/internal/model"
)

type completionRequest struct {
	Query  string           `json:"query"`
	Config model.ChatConfig `json:"config"`
}

type completionResponse struct {
	Response string `json:"response"`
}

// Complete sends a legal-research query and returns the answer text.
func (c *Client) Complete(ctx context.Context, query string, cfg model.ChatConfig) (string, error) {
	var out completionResponse
	err := c.do(ctx, http.MethodPost, "/gpt/sheria-ai/", completionRequest{Query: query, Config: cfg}, &out, "Chat request failed")
	if err != nil {
		return "", err
	}
	return out.Response, nil
}
