package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	departmentDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/department"
	groupDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/group"
	"github.com/frahmantamala/teamchat/internal/group"
)

type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) group.RepositoryAPI {
	return &GroupRepository{db: db}
}

func (r *GroupRepository) Create(ctx context.Context, g *groupDatamodel.Group) error {
	err := r.db.WithContext(ctx).Omit("Department").Create(g).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return group.ErrDuplicate
	}
	return err
}

func (r *GroupRepository) GetByID(ctx context.Context, companyID, id int64) (*groupDatamodel.Group, error) {
	return r.first(ctx, "company_id = ? AND id = ?", companyID, id)
}

func (r *GroupRepository) GetByDepartment(ctx context.Context, companyID, departmentID int64) (*groupDatamodel.Group, error) {
	return r.first(ctx, "company_id = ? AND department_id = ?", companyID, departmentID)
}

func (r *GroupRepository) first(ctx context.Context, query string, args ...interface{}) (*groupDatamodel.Group, error) {
	var g groupDatamodel.Group
	err := r.db.WithContext(ctx).Preload("Department").Where(query, args...).First(&g).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

func (r *GroupRepository) List(ctx context.Context, companyID int64, departmentID *int64) ([]*groupDatamodel.Group, error) {
	var groups []*groupDatamodel.Group
	q := r.db.WithContext(ctx).Preload("Department").Where("company_id = ?", companyID)
	if departmentID != nil {
		q = q.Where("department_id = ?", *departmentID)
	}
	err := q.Order("created_at ASC, id ASC").Find(&groups).Error
	return groups, err
}

func (r *GroupRepository) DepartmentExists(ctx context.Context, companyID, departmentID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&departmentDatamodel.Department{}).
		Where("company_id = ? AND id = ?", companyID, departmentID).
		Count(&n).Error
	return n > 0, err
}
