package models

type AnnouncementStatus string

const (
	AnnouncementPending  AnnouncementStatus = "PENDING"
	AnnouncementApproved AnnouncementStatus = "APPROVED"
	AnnouncementRejected AnnouncementStatus = "REJECTED"
)

// Announcement is a post that goes through mentor (or admin) approval before it reaches the feed.
type Announcement struct {
	ID              string             `json:"id"`
	Title           string             `json:"title"`
	Content         string             `json:"content"`
	Status          AnnouncementStatus `json:"status"`
	AuthorID        string             `json:"authorId"`
	AuthorName      string             `json:"authorName,omitempty"`
	AuthorRole      Role               `json:"authorRole,omitempty"`
	RejectionReason string             `json:"rejectionReason,omitempty"`
	CreatedAt       string             `json:"createdAt,omitempty"`
}

// NewAnnouncement is the body of POST /announcements/create and the admin/mentor broadcasts.
type NewAnnouncement struct {
	Title   string `json:"title" binding:"required,max=200"`
	Content string `json:"content" binding:"required"`
}

// ModerationDecision carries an approve/reject call for a pending announcement.
type ModerationDecision struct {
	AnnouncementID string `json:"announcementId" binding:"required"`
	Reason         string `json:"reason,omitempty"`
}
