package company

import (
	"context"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/teamchat/internal"
	"github.com/frahmantamala/teamchat/internal/access"
	"github.com/frahmantamala/teamchat/internal/core/account"
	companyDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/company"
)

type RepositoryAPI interface {
	Create(ctx context.Context, c *companyDatamodel.Company) error
	GetByID(ctx context.Context, id int64) (*companyDatamodel.Company, error)
	Update(ctx context.Context, c *companyDatamodel.Company) error
	CountDepartments(ctx context.Context, companyID int64) (int64, error)
	CountActiveEmployees(ctx context.Context, companyID int64) (int64, error)
}

type ServiceAPI interface {
	Create(ctx context.Context, actor *account.Account, dto CreateCompanyDTO) (*CompanyResponse, error)
	Get(ctx context.Context, actor *account.Account, id int64) (*CompanyDetailResponse, error)
	Update(ctx context.Context, actor *account.Account, id int64, dto UpdateCompanyDTO) (*CompanyResponse, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) Create(ctx context.Context, actor *account.Account, dto CreateCompanyDTO) (*CompanyResponse, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	c := NewCompany(dto.Name, dto.Description)
	row := ToDataModel(c)
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create company", "error", err)
		return nil, errors.NewInternalError("failed to create company", err)
	}

	s.logger.Info("company created", "company_id", row.ID, "actor_id", actor.ID)
	resp := FromDataModel(row).ToResponse()
	return &resp, nil
}

// Get returns the caller's own company with department and active employee counts.
func (s *Service) Get(ctx context.Context, actor *account.Account, id int64) (*CompanyDetailResponse, error) {
	if !access.CanViewCompany(actor, id) {
		return nil, errors.ErrAccessDenied
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError("failed to load company", err)
	}
	if row == nil {
		return nil, errors.ErrCompanyNotFound
	}

	departments, err := s.repo.CountDepartments(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError("failed to count departments", err)
	}
	employees, err := s.repo.CountActiveEmployees(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError("failed to count employees", err)
	}

	return &CompanyDetailResponse{
		Company: FromDataModel(row).ToResponse(),
		Stats:   CompanyStats{Departments: departments, Employees: employees},
	}, nil
}

func (s *Service) Update(ctx context.Context, actor *account.Account, id int64, dto UpdateCompanyDTO) (*CompanyResponse, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if !access.CanManageCompany(actor, id) {
		return nil, errors.ErrAccessDenied
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError("failed to load company", err)
	}
	if row == nil {
		return nil, errors.ErrCompanyNotFound
	}

	if dto.Name != nil {
		row.Name = *dto.Name
	}
	if dto.Description != nil {
		row.Description = *dto.Description
	}
	row.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, errors.NewInternalError("failed to update company", err)
	}

	resp := FromDataModel(row).ToResponse()
	return &resp, nil
}
