package llm

import (
	"context"

	"github.com/pkg/errors"
)

// Client sends a single prompt to a language model.
type Client interface {
	Query(ctx context.Context, prompt string) (string, error)
}

// Exchange is one prompt and the model's response.
type Exchange struct {
	Prompt   string
	Response string
}

// QueryAll sends prompts one after the other and stops at the first error.
func QueryAll(ctx context.Context, client Client, prompts []string) ([]Exchange, error) {
	ret := make([]Exchange, 0, len(prompts))
	for i, prompt := range prompts {
		response, err := client.Query(ctx, prompt)
		if err != nil {
			return nil, errors.Wrapf(err, "prompt %d failed", i+1)
		}
		ret = append(ret, Exchange{Prompt: prompt, Response: response})
	}
	return ret, nil
}
