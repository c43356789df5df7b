package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	departmentDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/department"
	groupDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/group"
	userDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/user"
	"github.com/frahmantamala/teamchat/internal/department"
)

type DepartmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) department.RepositoryAPI {
	return &DepartmentRepository{db: db}
}

func (r *DepartmentRepository) CreateWithGroup(ctx context.Context, d *departmentDatamodel.Department, newGroup func(*departmentDatamodel.Department) *groupDatamodel.Group) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(d).Error; err != nil {
			return err
		}
		return tx.Create(newGroup(d)).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return department.ErrDuplicate
	}
	return err
}

func (r *DepartmentRepository) GetByName(ctx context.Context, companyID int64, name string) (*departmentDatamodel.Department, error) {
	var d departmentDatamodel.Department
	err := r.db.WithContext(ctx).Where("company_id = ? AND name = ?", companyID, name).First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *DepartmentRepository) GetByID(ctx context.Context, companyID, id int64) (*departmentDatamodel.Department, error) {
	var d departmentDatamodel.Department
	err := r.db.WithContext(ctx).Where("company_id = ? AND id = ?", companyID, id).First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *DepartmentRepository) List(ctx context.Context, companyID int64, onlyID *int64) ([]*departmentDatamodel.Department, error) {
	var departments []*departmentDatamodel.Department
	q := r.db.WithContext(ctx).Where("company_id = ?", companyID)
	if onlyID != nil {
		q = q.Where("id = ?", *onlyID)
	}
	err := q.Order("name ASC").Find(&departments).Error
	return departments, err
}

func (r *DepartmentRepository) CountActiveMembers(ctx context.Context, companyID, departmentID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("company_id = ? AND department_id = ? AND is_active = ?", companyID, departmentID, true).
		Count(&n).Error
	return n, err
}

func (r *DepartmentRepository) ListActiveMembers(ctx context.Context, companyID, departmentID int64) ([]*userDatamodel.User, error) {
	var users []*userDatamodel.User
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND department_id = ? AND is_active = ?", companyID, departmentID, true).
		Order("name ASC").
		Find(&users).Error
	return users, err
}

func (r *DepartmentRepository) UpdateDescription(ctx context.Context, companyID, id int64, description string) error {
	return r.db.WithContext(ctx).
		Model(&departmentDatamodel.Department{}).
		Where("company_id = ? AND id = ?", companyID, id).
		Update("description", description).Error
}
