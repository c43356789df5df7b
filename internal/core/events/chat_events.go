package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeMessageCreated     = "message.created"
	EventTypeMessageDeleted     = "message.deleted"
	EventTypeAccountDeactivated = "account.deactivated"
	EventTypeAccountReassigned  = "account.reassigned"
)

// MessageCreatedEvent carries the persisted message as it must appear on the wire.
// Message is left opaque so the bus does not depend on the message package.
type MessageCreatedEvent struct {
	BaseEvent
	GroupID   int64       `json:"group_id"`
	MessageID int64       `json:"message_id"`
	Message   interface{} `json:"message"`
}

func NewMessageCreatedEvent(groupID, messageID int64, message interface{}) *MessageCreatedEvent {
	return &MessageCreatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeMessageCreated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"group_id":   groupID,
				"message_id": messageID,
			},
		},
		GroupID:   groupID,
		MessageID: messageID,
		Message:   message,
	}
}

type MessageDeletedEvent struct {
	BaseEvent
	GroupID   int64 `json:"group_id"`
	MessageID int64 `json:"message_id"`
	DeletedBy int64 `json:"deleted_by"`
}

func NewMessageDeletedEvent(groupID, messageID, deletedBy int64) *MessageDeletedEvent {
	return &MessageDeletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeMessageDeleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"group_id":   groupID,
				"message_id": messageID,
				"deleted_by": deletedBy,
			},
		},
		GroupID:   groupID,
		MessageID: messageID,
		DeletedBy: deletedBy,
	}
}

type AccountDeactivatedEvent struct {
	BaseEvent
	AccountID int64 `json:"account_id"`
	CompanyID int64 `json:"company_id"`
}

func NewAccountDeactivatedEvent(accountID, companyID int64) *AccountDeactivatedEvent {
	return &AccountDeactivatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeAccountDeactivated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"account_id": accountID,
				"company_id": companyID,
			},
		},
		AccountID: accountID,
		CompanyID: companyID,
	}
}

// AccountReassignedEvent is published after an employee changes department. DepartmentID 0 means unassigned.
type AccountReassignedEvent struct {
	BaseEvent
	AccountID    int64 `json:"account_id"`
	CompanyID    int64 `json:"company_id"`
	DepartmentID int64 `json:"department_id"`
}

func NewAccountReassignedEvent(accountID, companyID, departmentID int64) *AccountReassignedEvent {
	return &AccountReassignedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeAccountReassigned,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"account_id":    accountID,
				"company_id":    companyID,
				"department_id": departmentID,
			},
		},
		AccountID:    accountID,
		CompanyID:    companyID,
		DepartmentID: departmentID,
	}
}
