package topic

// Role represents the role of a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is a single conversation entry. Messages are immutable once
// created; ordering within a history is significant.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// FileRecord holds an indexed file reference. The embedding is computed
// over the combined path and content, so path-only queries still score.
type FileRecord struct {
	Name      string
	Path      string
	Embedding []float32
}
