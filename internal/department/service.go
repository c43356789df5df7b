package department

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/teamchat/internal"
	"github.com/frahmantamala/teamchat/internal/access"
	"github.com/frahmantamala/teamchat/internal/core/account"
	departmentDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/department"
	groupDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/group"
	userDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/user"
)

// ErrDuplicate is returned by repositories when a unique key is violated.
var ErrDuplicate = stderrors.New("duplicate department")

type RepositoryAPI interface {
	// CreateWithGroup stores the department and the group built by newGroup in one transaction.
	CreateWithGroup(ctx context.Context, d *departmentDatamodel.Department, newGroup func(*departmentDatamodel.Department) *groupDatamodel.Group) error
	GetByName(ctx context.Context, companyID int64, name string) (*departmentDatamodel.Department, error)
	GetByID(ctx context.Context, companyID, id int64) (*departmentDatamodel.Department, error)
	List(ctx context.Context, companyID int64, onlyID *int64) ([]*departmentDatamodel.Department, error)
	CountActiveMembers(ctx context.Context, companyID, departmentID int64) (int64, error)
	ListActiveMembers(ctx context.Context, companyID, departmentID int64) ([]*userDatamodel.User, error)
	UpdateDescription(ctx context.Context, companyID, id int64, description string) error
}

type ServiceAPI interface {
	Create(ctx context.Context, actor *account.Account, dto CreateDepartmentDTO) (*DepartmentResponse, error)
	List(ctx context.Context, actor *account.Account) ([]DepartmentResponse, error)
	Get(ctx context.Context, actor *account.Account, id int64) (*DepartmentDetailResponse, error)
	Update(ctx context.Context, actor *account.Account, id int64, dto UpdateDepartmentDTO) (*DepartmentResponse, error)
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

// Create adds a department to the admin's company together with its "<Name> Team" group.
func (s *Service) Create(ctx context.Context, actor *account.Account, dto CreateDepartmentDTO) (*DepartmentResponse, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByName(ctx, actor.CompanyID, dto.Name)
	if err != nil {
		return nil, errors.NewInternalError("failed to check department", err)
	}
	if existing != nil {
		return nil, errors.ErrDepartmentExists
	}

	row := ToDataModel(NewDepartment(actor.CompanyID, dto.Name, dto.Description))
	err = s.repo.CreateWithGroup(ctx, row, func(d *departmentDatamodel.Department) *groupDatamodel.Group {
		return FromDataModel(d).TeamGroup()
	})
	if err != nil {
		if stderrors.Is(err, ErrDuplicate) {
			return nil, errors.ErrDepartmentExists
		}
		s.logger.Error("failed to create department", "company_id", actor.CompanyID, "name", dto.Name, "error", err)
		return nil, errors.NewInternalError("failed to create department", err)
	}

	s.logger.Info("department created", "company_id", actor.CompanyID, "department_id", row.ID, "actor_id", actor.ID)
	resp := FromDataModel(row).ToResponse()
	return &resp, nil
}

// List returns every department of the company for admins, and only their own for employees.
func (s *Service) List(ctx context.Context, actor *account.Account) ([]DepartmentResponse, error) {
	if actor == nil {
		return nil, errors.ErrUnauthenticated
	}

	var onlyID *int64
	if !actor.IsAdmin() {
		dept := actor.DepartmentID()
		if dept == 0 {
			return []DepartmentResponse{}, nil
		}
		onlyID = &dept
	}

	rows, err := s.repo.List(ctx, actor.CompanyID, onlyID)
	if err != nil {
		return nil, errors.NewInternalError("failed to list departments", err)
	}

	responses := make([]DepartmentResponse, 0, len(rows))
	for _, row := range rows {
		count, err := s.repo.CountActiveMembers(ctx, actor.CompanyID, row.ID)
		if err != nil {
			return nil, errors.NewInternalError("failed to count members", err)
		}
		resp := FromDataModel(row).ToResponse()
		resp.MemberCount = &count
		responses = append(responses, resp)
	}
	return responses, nil
}

func (s *Service) Get(ctx context.Context, actor *account.Account, id int64) (*DepartmentDetailResponse, error) {
	if actor == nil {
		return nil, errors.ErrUnauthenticated
	}
	if !actor.IsAdmin() && !access.CanViewDepartment(actor, actor.CompanyID, id) {
		return nil, errors.ErrAccessDenied
	}

	row, err := s.repo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, errors.NewInternalError("failed to load department", err)
	}
	if row == nil {
		return nil, errors.ErrDepartmentNotFound
	}

	members, err := s.repo.ListActiveMembers(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, errors.NewInternalError("failed to list members", err)
	}

	profiles := make([]account.Profile, 0, len(members))
	for _, m := range members {
		profiles = append(profiles, account.FromDataModel(m).ToProfile())
	}

	return &DepartmentDetailResponse{
		Department: FromDataModel(row).ToResponse(),
		Members:    profiles,
	}, nil
}

func (s *Service) Update(ctx context.Context, actor *account.Account, id int64, dto UpdateDepartmentDTO) (*DepartmentResponse, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, errors.NewInternalError("failed to load department", err)
	}
	if row == nil {
		return nil, errors.ErrDepartmentNotFound
	}

	if err := s.repo.UpdateDescription(ctx, actor.CompanyID, id, dto.Description); err != nil {
		return nil, errors.NewInternalError("failed to update department", err)
	}

	row.Description = dto.Description
	row.UpdatedAt = time.Now()
	resp := FromDataModel(row).ToResponse()
	return &resp, nil
}
