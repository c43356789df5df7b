package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	messageDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/message"
	"github.com/frahmantamala/teamchat/internal/message"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) message.RepositoryAPI {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, m *messageDatamodel.Message) error {
	return r.db.WithContext(ctx).Omit("Sender").Create(m).Error
}

func (r *MessageRepository) ListPage(ctx context.Context, companyID, groupID int64, offset, limit int) ([]*messageDatamodel.Message, error) {
	var messages []*messageDatamodel.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("company_id = ? AND group_id = ? AND is_deleted = ?", companyID, groupID, false).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

func (r *MessageRepository) Count(ctx context.Context, companyID, groupID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&messageDatamodel.Message{}).
		Where("company_id = ? AND group_id = ? AND is_deleted = ?", companyID, groupID, false).
		Count(&n).Error
	return n, err
}

func (r *MessageRepository) GetByID(ctx context.Context, companyID, id int64) (*messageDatamodel.Message, error) {
	var m messageDatamodel.Message
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ? AND is_deleted = ?", companyID, id, false).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *MessageRepository) MarkDeleted(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&messageDatamodel.Message{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("is_deleted", true)
	return res.RowsAffected > 0, res.Error
}
