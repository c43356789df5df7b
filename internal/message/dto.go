package message

import "time"

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

type SendMessageDTO struct {
	GroupID int64  `json:"groupId"`
	Content string `json:"content"`
}

type MessageResponse struct {
	ID           int64      `json:"id"`
	Content      string     `json:"content"`
	SenderID     int64      `json:"senderId"`
	Sender       *Sender    `json:"sender,omitempty"`
	GroupID      int64      `json:"groupId"`
	CompanyID    int64      `json:"companyId"`
	DepartmentID int64      `json:"departmentId"`
	EditedAt     *time.Time `json:"editedAt"`
	CreatedAt    time.Time  `json:"createdAt"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// Page is one slice of a group's history, oldest first.
type Page struct {
	Messages   []MessageResponse `json:"messages"`
	Pagination Pagination        `json:"pagination"`
}

type MessageEnvelope struct {
	Message MessageResponse `json:"message"`
}

type DeleteResponse struct {
	Message string `json:"message"`
}

// NormalizePaging applies the default and maximum page size.
func NormalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}
