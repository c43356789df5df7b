package message

import (
	"time"

	userDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/user"
)

type Message struct {
	ID           int64               `gorm:"primaryKey"`
	Content      string              `gorm:"column:content;not null"`
	SenderID     int64               `gorm:"column:sender_id;not null"`
	Sender       *userDatamodel.User `gorm:"foreignKey:SenderID"`
	GroupID      int64               `gorm:"column:group_id;not null;index:idx_messages_group_created,priority:1"`
	CompanyID    int64               `gorm:"column:company_id;not null;index"`
	DepartmentID int64               `gorm:"column:department_id;not null"`
	IsDeleted    bool                `gorm:"column:is_deleted;not null"`
	EditedAt     *time.Time          `gorm:"column:edited_at"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime;index:idx_messages_group_created,priority:2"`
}
