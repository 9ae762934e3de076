package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/fyrsmithlabs/topicd/internal/topic"
)

var (
	// ErrEmptyResponse indicates the service returned no usable text.
	ErrEmptyResponse = errors.New("empty response from summarizer")

	// ErrMalformedResponse indicates the response could not be parsed
	// into a topic name and description.
	ErrMalformedResponse = errors.New("malformed summarizer response")
)

// Client generates a text response for a sequence of prompt messages.
type Client interface {
	Respond(ctx context.Context, messages []topic.Message) (string, error)
}

// TopicInfo is a proposed name and description for a conversation segment.
type TopicInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// topicPrompt instructs the model to characterize a conversation segment.
const topicPrompt = `Analyze the following conversation and identify its single dominant topic.

Respond with a JSON object containing exactly two fields:
- "name": a short topic name (2-5 words)
- "description": one or two sentences describing what the conversation is about`

// TopicInfoPrompt builds the prompt messages for extracting a topic name
// and description from a conversation segment.
func TopicInfoPrompt(history []topic.Message) []topic.Message {
	var b strings.Builder
	for _, msg := range history {
		b.WriteString(string(msg.Role))
		b.WriteString(": ")
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}

	return []topic.Message{
		{Role: topic.RoleSystem, Content: topicPrompt},
		{Role: topic.RoleUser, Content: b.String()},
	}
}

// quotedFieldPattern recovers quoted values from near-JSON output when
// strict parsing fails. The first match is the name, the second the
// description.
var quotedFieldPattern = regexp.MustCompile(`:\s*"([^"]+)"`)

// ParseTopicInfo parses a summarizer response into a TopicInfo.
//
// Models sometimes wrap JSON in markdown code fences or emit imperfect
// JSON; the fences are stripped and a quoted-field scan is used as a
// fallback before giving up.
func ParseTopicInfo(response string) (TopicInfo, error) {
	content := strings.TrimSpace(response)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	if content == "" {
		return TopicInfo{}, ErrEmptyResponse
	}

	var info TopicInfo
	if err := json.Unmarshal([]byte(content), &info); err == nil {
		if info.Name != "" && info.Description != "" {
			return info, nil
		}
	}

	matches := quotedFieldPattern.FindAllStringSubmatch(content, -1)
	if len(matches) >= 2 {
		return TopicInfo{
			Name:        matches[0][1],
			Description: matches[1][1],
		}, nil
	}

	return TopicInfo{}, fmt.Errorf("%w: %q", ErrMalformedResponse, truncate(content, 120))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
