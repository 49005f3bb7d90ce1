package openai

import (
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

// NewClient constructs an OpenAI API client for the given token. The client
// is built once at startup and handed to the collaborators that need it;
// there is no lazily-initialized process-wide instance.
func NewClient(token string) (*openai.Client, error) {
	if token == "" {
		return nil, errors.New("OpenAI API token is required")
	}
	return openai.NewClient(token), nil
}
