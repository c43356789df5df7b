package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/teamchat/internal/company"
	companyDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/company"
	departmentDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/department"
	userDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/user"
)

type CompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) company.RepositoryAPI {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) Create(ctx context.Context, c *companyDatamodel.Company) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CompanyRepository) GetByID(ctx context.Context, id int64) (*companyDatamodel.Company, error) {
	var c companyDatamodel.Company
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *CompanyRepository) Update(ctx context.Context, c *companyDatamodel.Company) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *CompanyRepository) CountDepartments(ctx context.Context, companyID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&departmentDatamodel.Department{}).
		Where("company_id = ?", companyID).
		Count(&n).Error
	return n, err
}

func (r *CompanyRepository) CountActiveEmployees(ctx context.Context, companyID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("company_id = ? AND role = ? AND is_active = ?", companyID, "EMPLOYEE", true).
		Count(&n).Error
	return n, err
}
