package llm

import (
	"context"
)

// MockClient returns a fixed, structurally valid document payload. It backs
// the "mock" provider and the degraded-output path: callers that cannot reach
// a real model still get parseable JSON.
type MockClient struct {
	Response string
}

func NewMockClient() *MockClient {
	return &MockClient{
		Response: `{
  "title": "Draft Document",
  "sections": [
    {"name": "Business Context", "content": "Generated in mock mode. No model was available."},
    {"name": "Objectives", "content": "Review the feature request manually."}
  ]
}`,
	}
}

func (c *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	return c.Response, nil
}
