package models

// ReferenceItem is an entry of the college, city and batch reference lists.
type ReferenceItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DirectoryEntry is one student as listed by /student/directory.
type DirectoryEntry struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	College string `json:"college,omitempty"`
	City    string `json:"city,omitempty"`
	Batch   string `json:"batch,omitempty"`
	Bio     string `json:"bio,omitempty"`
}

// Mentor is the mentor assigned to a student, or a row of the admin mentor list.
type Mentor struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone,omitempty"`
	Expertise     string `json:"expertise,omitempty"`
	Status        Status `json:"status,omitempty"`
	StudentsCount int    `json:"studentsCount,omitempty"`
}

// NewMentor is the body of POST /admin/add-mentor.
type NewMentor struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	Phone     string `json:"phone,omitempty"`
	Expertise string `json:"expertise,omitempty"`
}

// UserAction targets one user for approve/block moderation calls.
type UserAction struct {
	UserID string `json:"userId" binding:"required"`
	Reason string `json:"reason,omitempty"`
}
