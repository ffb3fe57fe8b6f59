package models

type Notification struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title,omitempty"`
	Message   string `json:"message"`
	Link      string `json:"link,omitempty"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"createdAt"`
}

func NotificationKey(n Notification) string { return n.ID }

// NotificationAfter orders the newest notification first.
func NotificationAfter(a, b Notification) bool {
	if a.CreatedAt != b.CreatedAt {
		return a.CreatedAt > b.CreatedAt
	}
	return a.ID > b.ID
}

// UnreadCount is the body of GET /notifications/unread-count.
type UnreadCount struct {
	Count int `json:"count"`
}
