package message

import (
	"time"

	"github.com/frahmantamala/teamchat/internal/core/account"
	messageDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/message"
)

// Sender holds the display fields shown next to a message.
type Sender struct {
	ID    int64        `json:"id"`
	Name  string       `json:"name"`
	Email string       `json:"email"`
	Role  account.Role `json:"role"`
}

type Message struct {
	ID           int64
	Content      string
	SenderID     int64
	Sender       *Sender
	GroupID      int64
	CompanyID    int64
	DepartmentID int64
	IsDeleted    bool
	EditedAt     *time.Time
	CreatedAt    time.Time
}

func SenderFromAccount(a *account.Account) *Sender {
	return &Sender{ID: a.ID, Name: a.Name, Email: a.Email, Role: a.Role()}
}

func (m *Message) ToResponse() MessageResponse {
	return MessageResponse{
		ID:           m.ID,
		Content:      m.Content,
		SenderID:     m.SenderID,
		Sender:       m.Sender,
		GroupID:      m.GroupID,
		CompanyID:    m.CompanyID,
		DepartmentID: m.DepartmentID,
		EditedAt:     m.EditedAt,
		CreatedAt:    m.CreatedAt,
	}
}

func ToDataModel(m *Message) *messageDatamodel.Message {
	return &messageDatamodel.Message{
		ID:           m.ID,
		Content:      m.Content,
		SenderID:     m.SenderID,
		GroupID:      m.GroupID,
		CompanyID:    m.CompanyID,
		DepartmentID: m.DepartmentID,
		IsDeleted:    m.IsDeleted,
		EditedAt:     m.EditedAt,
		CreatedAt:    m.CreatedAt,
	}
}

func FromDataModel(m *messageDatamodel.Message) *Message {
	out := &Message{
		ID:           m.ID,
		Content:      m.Content,
		SenderID:     m.SenderID,
		GroupID:      m.GroupID,
		CompanyID:    m.CompanyID,
		DepartmentID: m.DepartmentID,
		IsDeleted:    m.IsDeleted,
		EditedAt:     m.EditedAt,
		CreatedAt:    m.CreatedAt,
	}
	if m.Sender != nil {
		out.Sender = &Sender{
			ID:    m.Sender.ID,
			Name:  m.Sender.Name,
			Email: m.Sender.Email,
			Role:  account.Role(m.Sender.Role),
		}
	}
	return out
}
