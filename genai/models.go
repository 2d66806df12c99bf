package genai

import (
	"context"
	"fmt"
	"iter"

	"github.com/leofalp/genai-go/internal/transport"
)

// ListModels returns every model available to the API key, fetching pages
// as the sequence is ranged over. A failure is yielded once and ends it.
func (m *GenerativeModel) ListModels(ctx context.Context) iter.Seq2[*Model, error] {
	return func(yield func(*Model, error) bool) {
		request := listModelsRequest{}
		for {
			page, err := transport.Send[ListModelsResponse](ctx, m.service, request)
			if err != nil {
				yield(nil, fmt.Errorf("genai: list models: %w", err))
				return
			}
			for index := range page.Models {
				if !yield(&page.Models[index], nil) {
					return
				}
			}
			if page.NextPageToken == "" {
				return
			}
			request.PageToken = page.NextPageToken
		}
	}
}

// GetModel describes the model called name ("gemini-pro" or "models/gemini-pro").
func (m *GenerativeModel) GetModel(ctx context.Context, name string) (*Model, error) {
	model, err := transport.Send[Model](ctx, m.service, getModelRequest{Name: name})
	if err != nil {
		return nil, fmt.Errorf("genai: get model %s: %w", modelResourceName(name), err)
	}
	return model, nil
}

// Info describes this model.
func (m *GenerativeModel) Info(ctx context.Context) (*Model, error) {
	return m.GetModel(ctx, m.name)
}
