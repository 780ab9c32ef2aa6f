package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/stickon/stickon/internal/apperr"
	"github.com/stickon/stickon/internal/models"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-sonnet-4-20250514"

const (
	summarizeSystem = "You summarize sticky notes. Reply with one or two short sentences capturing the essence of the note. No preamble."

	transcribeSystem = "You transcribe audio recordings attached to sticky notes. Reply with only the transcript text."

	tasksSystem = "You extract actionable tasks from a sticky note. Reply with a JSON array of short task strings. Reply with [] when the note contains no tasks. No other text."

	relatedSystem = "You find related sticky notes. Given one note and a list of other notes with their ids, reply with a JSON array of at most three ids from the list that are most related to the note. Reply with [] when nothing relates. No other text."

	expandSystem = "You expand rough sticky notes into fuller drafts. Keep the author's voice and intent. Reply with only the expanded text."

	insightsSystem = "You review a collection of sticky notes and surface themes, connections, and suggested next steps. Reply with a short readable digest."

	querySystem = `You are a canvas assistant for a sticky note collection.
Reply with a single JSON object and nothing else:
  {"kind":"answer","content":"..."} to answer a question,
  {"kind":"create_note","content":"...","note":{"text":"...","tags":[],"color":"yellow"}} to propose a new note,
  {"kind":"update_note","content":"...","note":{"id":"note_...","text":"..."}} to propose changing an existing note.
content is the message shown to the user. Only propose mutations the user asked for.`
)

// Anthropic implements Client on the Anthropic Messages API.
type Anthropic struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	enabled   bool
}

// NewAnthropic creates the collaborator. An empty apiKey yields a client
// whose calls all return apperr.ErrAINotConfigured, so the rest of the app
// runs without credentials.
func NewAnthropic(apiKey, model string, maxTokens int64) *Anthropic {
	if model == "" {
		model = DefaultModel
	}
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	return &Anthropic{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     anthropic.Model(model),
		maxTokens: maxTokens,
		enabled:   apiKey != "",
	}
}

var _ Client = (*Anthropic)(nil)

func (a *Anthropic) Summarize(ctx context.Context, note models.Note) (string, error) {
	out, err := a.complete(ctx, summarizeSystem, nil, noteBody(note))
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func (a *Anthropic) Transcribe(ctx context.Context, audioURL string) (string, error) {
	if audioURL == "" {
		return "", fmt.Errorf("transcribe: no audio attached: %w", apperr.ErrValidation)
	}
	out, err := a.complete(ctx, transcribeSystem, nil, "Audio recording: "+audioURL)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func (a *Anthropic) ExtractTasks(ctx context.Context, note models.Note) ([]string, error) {
	out, err := a.complete(ctx, tasksSystem, nil, noteBody(note))
	if err != nil {
		return nil, fmt.Errorf("extract tasks: %w", err)
	}
	return parseStringList(out), nil
}

func (a *Anthropic) RelatedNotes(ctx context.Context, note models.Note, all []models.Note) ([]string, error) {
	var b strings.Builder
	b.WriteString("Note:\n")
	b.WriteString(noteBody(note))
	b.WriteString("\n\nOther notes:\n")
	b.WriteString(collectionContext(all, note.ID))

	out, err := a.complete(ctx, relatedSystem, nil, b.String())
	if err != nil {
		return nil, fmt.Errorf("related notes: %w", err)
	}
	return parseRelated(out, note.ID, all), nil
}

func (a *Anthropic) Expand(ctx context.Context, note models.Note) (string, error) {
	out, err := a.complete(ctx, expandSystem, nil, noteBody(note))
	if err != nil {
		return "", fmt.Errorf("expand: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func (a *Anthropic) Insights(ctx context.Context, all []models.Note) (string, error) {
	out, err := a.complete(ctx, insightsSystem, nil, "Notes:\n"+collectionContext(all, ""))
	if err != nil {
		return "", fmt.Errorf("insights: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func (a *Anthropic) Query(ctx context.Context, question string, all []models.Note, history []Message) (QueryResult, error) {
	prompt := "Notes:\n" + collectionContext(all, "") + "\n\nQuestion: " + question
	out, err := a.complete(ctx, querySystem, history, prompt)
	if err != nil {
		return QueryResult{}, fmt.Errorf("query: %w", err)
	}
	return parseQueryResult(out), nil
}

// complete sends one Messages API call: optional conversation history, then
// the prompt as the final user turn.
func (a *Anthropic) complete(ctx context.Context, system string, history []Message, prompt string) (string, error) {
	if !a.enabled {
		return "", apperr.ErrAINotConfigured
	}

	msgs := make([]anthropic.MessageParam, 0, len(history)+1)
	for _, m := range history {
		if m.Role == "assistant" {
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		} else {
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)))

	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		Messages:  msgs,
		System:    []anthropic.TextBlockParam{{Text: system}},
	})
	if err != nil {
		return "", err
	}

	out := textContent(resp.Content)
	if out == "" {
		return "", fmt.Errorf("empty completion")
	}
	return out, nil
}

// textContent concatenates the text blocks of a reply, skipping any other
// block kinds.
func textContent(blocks []anthropic.ContentBlockUnion) string {
	var out strings.Builder
	for _, block := range blocks {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	return out.String()
}

// noteBody renders a note's content for a prompt.
func noteBody(n models.Note) string {
	var b strings.Builder
	b.WriteString(n.Text)
	if len(n.Tags) > 0 {
		b.WriteString("\nTags: " + strings.Join(n.Tags, ", "))
	}
	if n.Summary != "" {
		b.WriteString("\nSummary: " + n.Summary)
	}
	return b.String()
}

// collectionContext renders the collection as one id-prefixed line per note,
// excluding excludeID. Long texts are truncated to keep prompts bounded.
func collectionContext(all []models.Note, excludeID string) string {
	const maxLine = 200
	var b strings.Builder
	for _, n := range all {
		if n.ID == excludeID {
			continue
		}
		text := strings.ReplaceAll(n.Text, "\n", " ")
		if len(text) > maxLine {
			text = text[:maxLine]
		}
		fmt.Fprintf(&b, "[%s] %s", n.ID, text)
		if len(n.Tags) > 0 {
			fmt.Fprintf(&b, " (tags: %s)", strings.Join(n.Tags, ", "))
		}
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return "(no notes)\n"
	}
	return b.String()
}

// stripFences removes a surrounding markdown code fence, if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// parseStringList decodes a JSON string array, tolerating code fences.
// Undecodable replies yield an empty list.
func parseStringList(raw string) []string {
	var out []string
	if err := json.Unmarshal([]byte(stripFences(raw)), &out); err != nil {
		return []string{}
	}
	if out == nil {
		out = []string{}
	}
	return out
}

// parseRelated decodes a related-ids reply and keeps only ids that exist in
// the collection, excluding the subject note, capped at three.
func parseRelated(raw, selfID string, all []models.Note) []string {
	valid := make(map[string]struct{}, len(all))
	for _, n := range all {
		valid[n.ID] = struct{}{}
	}

	out := []string{}
	for _, id := range parseStringList(raw) {
		if id == selfID {
			continue
		}
		if _, ok := valid[id]; !ok {
			continue
		}
		out = append(out, id)
		if len(out) == 3 {
			break
		}
	}
	return out
}

// parseQueryResult decodes a query reply. Replies that are not the expected
// JSON shape degrade to a plain answer carrying the raw text.
func parseQueryResult(raw string) QueryResult {
	cleaned := stripFences(raw)

	var res QueryResult
	if err := json.Unmarshal([]byte(cleaned), &res); err == nil {
		switch res.Kind {
		case KindAnswer:
			res.Note = nil
			return res
		case KindCreateNote, KindUpdateNote:
			if res.Note != nil && res.Note.Text != "" {
				return res
			}
		}
	}
	return QueryResult{Kind: KindAnswer, Content: strings.TrimSpace(raw)}
}
