package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ExtractedIssue holds a single issue extracted from markdown content.
type ExtractedIssue struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	Priority    string   `json:"priority"`
	Assignee    string   `json:"assignee"`
	Labels      []string `json:"labels"`
	StoryPoints int      `json:"story_points"`
}

// Client wraps the Anthropic API for issue extraction.
type Client struct {
	api   *anthropic.Client
	model anthropic.Model
}

// NewClient creates an LLM client with the given API key and model.
func NewClient(apiKey, model string) *Client {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	client := anthropic.NewClient(opts...)
	return &Client{
		api:   &client,
		model: anthropic.Model(model),
	}
}

// buildPrompt constructs the system and user prompts for issue extraction.
func buildPrompt(content string, iterations []string) (system string, user string) {
	system = `You extract structured issues from markdown planning notes. Return ONLY a JSON array of objects with these fields:
- "title": concise issue title
- "description": brief description (empty string if the title is self-explanatory)
- "type": one of "bug", "story", "task", "spike", "epic"
- "priority": one of "low", "medium", "high", "critical"
- "assignee": the person named for this item, or empty string
- "labels": array of short lowercase tags inferred from context (may be empty)
- "story_points": integer effort estimate if the text states one, else 0

Rules:
- Each numbered/bulleted item is one issue
- Infer type from context (problems = bug, user-facing work = story, research = spike, everything else = task)
- Default priority to "medium" unless the text suggests otherwise
- Never invent assignees or story points that the text does not state
- If a section contains no actionable items, produce nothing for it
- Return valid JSON only, no markdown fencing or explanation`

	var sb strings.Builder
	if len(iterations) > 0 {
		sb.WriteString("Known iterations: ")
		sb.WriteString(strings.Join(iterations, ", "))
		sb.WriteString("\n\n")
	}
	sb.WriteString("Extract issues from this markdown:\n\n")
	sb.WriteString(content)
	user = sb.String()
	return
}

// ExtractIssues sends markdown content to the LLM and returns structured issues.
func (c *Client) ExtractIssues(ctx context.Context, content string, iterations []string) ([]ExtractedIssue, error) {
	systemPrompt, userPrompt := buildPrompt(content, iterations)

	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 4096,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API call: %w", err)
	}

	// Extract text from response
	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}

	if text == "" {
		return nil, fmt.Errorf("no text content in API response")
	}

	text = stripFence(text)

	var issues []ExtractedIssue
	if err := json.Unmarshal([]byte(text), &issues); err != nil {
		return nil, fmt.Errorf("parse LLM response as JSON: %w\nraw response: %s", err, text)
	}

	return issues, nil
}

// stripFence removes markdown code fencing if the model added it anyway.
func stripFence(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		lines := strings.SplitN(text, "\n", 2)
		if len(lines) > 1 {
			text = lines[1]
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}
	return text
}
