package llm

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// ScriptedResponse is returned by ScriptedClient for one call.
type ScriptedResponse struct {
	Response string
	Err      error
}

// ScriptedClient returns scripted responses in order and records every
// prompt it receives. It is meant for tests.
type ScriptedClient struct {
	mu        sync.Mutex
	responses []ScriptedResponse
	calls     []string
	index     int
}

var _ Client = (*ScriptedClient)(nil)

func NewScriptedClient(responses ...ScriptedResponse) *ScriptedClient {
	return &ScriptedClient{responses: responses}
}

// NewEchoClient answers every prompt with the prompt itself.
func NewEchoClient() *ScriptedClient {
	return &ScriptedClient{}
}

func (s *ScriptedClient) Query(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.calls = append(s.calls, prompt)

	if s.responses == nil {
		return prompt, nil
	}
	if s.index >= len(s.responses) {
		return "", errors.Errorf("no scripted response left for prompt %q", prompt)
	}
	r := s.responses[s.index]
	s.index++
	return r.Response, r.Err
}

// Calls returns the prompts received so far.
func (s *ScriptedClient) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}
