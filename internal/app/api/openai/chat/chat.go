package chat

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"voicenotes/internal/app/api"
	"voicenotes/internal/app/api/retry"
)

// systemPrompt instructs the model to reshape a dictated medical free-text
// transcript into the sectioned note format used in patient records.
const systemPrompt = `You are a clinical documentation assistant. Restructure the
provided free-text medical dictation into a structured patient note with these
sections, in this order:

HISTORY: A thorough account of the patient history. Include sub-histories
(social history, substance use, occupational history) when the dictation
supports them.

EXAMINATION and FINDINGS: Summarize laboratory work, imaging and physical
examination results, organized into sub-categories where appropriate.

ASSESSMENT: Synthesize the findings, explain the diagnostic and clinical
strategy, and give the rationale for decisions.

PLAN and THERAPY: List diagnostic and therapeutic steps clearly, grouped into
diagnostics, therapy and patient tasks.

CURRENT DIAGNOSES: Summarize current diagnoses in free text. Do not assign
ICD codes.

Use medical terminology. Structure headings and lists with plain text and
paragraphs only; never use asterisks, bold markers or other markup. Return
only the structured note.`

// NoteStructurer turns raw transcripts into structured notes via the chat
// completion API.
type NoteStructurer struct {
	client *openai.Client
	model  string
	policy retry.Policy
}

// NewNoteStructurer creates a NoteStructurer. An empty model selects GPT-4o.
func NewNoteStructurer(client *openai.Client, model string, policy retry.Policy) *NoteStructurer {
	if model == "" {
		model = openai.GPT4o
	}
	return &NoteStructurer{client: client, model: model, policy: policy}
}

// StructureNote produces the structured note for a transcript.
func (ns *NoteStructurer) StructureNote(ctx context.Context, transcript string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", &api.TranscriptionError{
			Code:     "empty_transcript",
			Message:  "transcript is empty",
			Provider: "openai/chat",
		}
	}

	var note string
	err := ns.policy.Do(ctx, func(ctx context.Context) error {
		request := openai.ChatCompletionRequest{
			Model:       ns.model,
			Temperature: 0.2,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: transcript},
			},
		}
		resp, err := ns.client.CreateChatCompletion(ctx, request)
		if err != nil {
			return classify(err)
		}
		if len(resp.Choices) == 0 {
			return errors.New("chat completion returned no choices")
		}
		note = strings.TrimSpace(resp.Choices[0].Message.Content)
		return nil
	})
	if err != nil {
		return "", &api.TranscriptionError{
			Code:     "note_structuring_failed",
			Message:  err.Error(),
			Provider: "openai/chat",
		}
	}

	return note, nil
}

func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &retry.StatusError{Status: apiErr.HTTPStatusCode, Err: err}
	}
	return retry.MarkRetryable(err)
}
