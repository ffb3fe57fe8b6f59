package models

// Message is one entry of a Conversation between the current user and a counterpart.
type Message struct {
	ID         string `json:"id"`
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
	Read       bool   `json:"read,omitempty"`
	CreatedAt  string `json:"createdAt"`
}

// MessageKey identifies a message for merge-by-id.
func MessageKey(m Message) string { return m.ID }

// MessageBefore orders messages by creation time, falling back to id.
func MessageBefore(a, b Message) bool {
	if a.CreatedAt != b.CreatedAt {
		return a.CreatedAt < b.CreatedAt
	}
	return a.ID < b.ID
}

// OutgoingMessage is the body of POST /messages/send.
type OutgoingMessage struct {
	ReceiverID string `json:"receiverId" binding:"required"`
	Content    string `json:"content" binding:"required,max=2000"`
}
