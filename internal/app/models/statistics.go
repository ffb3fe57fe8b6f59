package models

// Statistics is the body of GET /admin/statistics.
type Statistics struct {
	TotalStudents        int `json:"totalStudents"`
	TotalMentors         int `json:"totalMentors"`
	PendingStudents      int `json:"pendingStudents"`
	BlockedUsers         int `json:"blockedUsers"`
	TotalAnnouncements   int `json:"totalAnnouncements"`
	PendingAnnouncements int `json:"pendingAnnouncements"`
}
