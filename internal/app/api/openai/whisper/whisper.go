package whisper

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"

	"voicenotes/internal/app/api"
	"voicenotes/internal/app/api/retry"
)

// RemoteTranscriber implements remote transcription using the OpenAI API.
type RemoteTranscriber struct {
	client *openai.Client
	policy retry.Policy
}

// NewRemoteTranscriber creates a new RemoteTranscriber instance.
func NewRemoteTranscriber(client *openai.Client, policy retry.Policy) *RemoteTranscriber {
	return &RemoteTranscriber{client: client, policy: policy}
}

// Transcribe uses the OpenAI API for remote transcription of a validated
// local file. Rate limiting and server errors are retried per the policy;
// everything else fails immediately.
func (rt *RemoteTranscriber) Transcribe(ctx context.Context, inputFilePath string) (string, error) {
	var text string
	err := rt.policy.Do(ctx, func(ctx context.Context) error {
		req := openai.AudioRequest{
			Model:    openai.Whisper1,
			FilePath: inputFilePath,
		}
		resp, err := rt.client.CreateTranscription(ctx, req)
		if err != nil {
			return classify(err)
		}
		text = resp.Text
		return nil
	})
	if err != nil {
		return "", &api.TranscriptionError{
			Code:     "transcription_failed",
			Message:  err.Error(),
			Provider: "openai/whisper",
		}
	}

	return text, nil
}

// classify maps OpenAI client errors onto the retry policy's error shapes.
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &retry.StatusError{Status: apiErr.HTTPStatusCode, Err: err}
	}
	// Transport-level failures carry no status; treat them as transient.
	return retry.MarkRetryable(err)
}
