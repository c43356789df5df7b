package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	departmentDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/department"
	userDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/user"
	"github.com/frahmantamala/teamchat/internal/user"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

type userRow struct {
	userDatamodel.User
	DepartmentName *string `gorm:"column:department_name"`
}

func (r *UserRepository) Create(ctx context.Context, u *userDatamodel.User) error {
	err := r.db.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return user.ErrDuplicateEmail
	}
	return err
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("email = ?", email).Count(&n).Error
	return n > 0, err
}

func (r *UserRepository) base(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("users").
		Select("users.*, departments.name AS department_name").
		Joins("LEFT JOIN departments ON departments.id = users.department_id")
}

func (r *UserRepository) GetByID(ctx context.Context, companyID, id int64) (*user.Row, error) {
	var rows []userRow
	err := r.base(ctx).
		Where("users.company_id = ? AND users.id = ?", companyID, id).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return toRow(&rows[0]), nil
}

func (r *UserRepository) List(ctx context.Context, companyID int64, departmentID *int64) ([]*user.Row, error) {
	var rows []userRow
	q := r.base(ctx).Where("users.company_id = ?", companyID)
	if departmentID != nil {
		q = q.Where("users.department_id = ?", *departmentID)
	}
	if err := q.Order("users.name ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*user.Row, 0, len(rows))
	for i := range rows {
		out = append(out, toRow(&rows[i]))
	}
	return out, nil
}

func (r *UserRepository) DepartmentExists(ctx context.Context, companyID, departmentID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&departmentDatamodel.Department{}).
		Where("company_id = ? AND id = ?", companyID, departmentID).
		Count(&n).Error
	return n > 0, err
}

func (r *UserRepository) SetDepartment(ctx context.Context, companyID, id int64, departmentID *int64) (bool, error) {
	if departmentID != nil && *departmentID == 0 {
		departmentID = nil
	}
	res := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("company_id = ? AND id = ? AND role = ?", companyID, id, "EMPLOYEE").
		Update("department_id", departmentID)
	return res.RowsAffected > 0, res.Error
}

func (r *UserRepository) SetActive(ctx context.Context, companyID, id int64, active bool) error {
	return r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("company_id = ? AND id = ?", companyID, id).
		Update("is_active", active).Error
}

func toRow(r *userRow) *user.Row {
	u := r.User
	row := &user.Row{User: &u}
	if r.DepartmentName != nil {
		row.DepartmentName = *r.DepartmentName
	}
	return row
}
