package group

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	errors "github.com/frahmantamala/teamchat/internal"
	"github.com/frahmantamala/teamchat/internal/access"
	"github.com/frahmantamala/teamchat/internal/core/account"
	groupDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/group"
)

var ErrDuplicate = stderrors.New("duplicate group")

type RepositoryAPI interface {
	Create(ctx context.Context, g *groupDatamodel.Group) error
	GetByID(ctx context.Context, companyID, id int64) (*groupDatamodel.Group, error)
	GetByDepartment(ctx context.Context, companyID, departmentID int64) (*groupDatamodel.Group, error)
	List(ctx context.Context, companyID int64, departmentID *int64) ([]*groupDatamodel.Group, error)
	DepartmentExists(ctx context.Context, companyID, departmentID int64) (bool, error)
}

type ServiceAPI interface {
	Create(ctx context.Context, actor *account.Account, dto CreateGroupDTO) (*GroupResponse, error)
	List(ctx context.Context, actor *account.Account) ([]GroupResponse, error)
	Get(ctx context.Context, actor *account.Account, id int64) (*GroupResponse, error)
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

// Lookup finds a group inside one company. It does not apply the department rule.
func (s *Service) Lookup(ctx context.Context, companyID, groupID int64) (*Group, error) {
	row, err := s.repo.GetByID(ctx, companyID, groupID)
	if err != nil {
		return nil, errors.NewInternalError("failed to load group", err)
	}
	if row == nil {
		return nil, errors.ErrGroupNotFound
	}
	return FromDataModel(row), nil
}

// Authorize looks up the group in the actor's company and applies the access policy.
func (s *Service) Authorize(ctx context.Context, actor *account.Account, groupID int64) (*Group, error) {
	if actor == nil {
		return nil, errors.ErrUnauthenticated
	}
	g, err := s.Lookup(ctx, actor.CompanyID, groupID)
	if err != nil {
		if stderrors.Is(err, errors.ErrGroupNotFound) {
			s.logger.Warn("group access to unknown group",
				"actor_id", actor.ID,
				"company_id", actor.CompanyID,
				"group_id", groupID)
		}
		return nil, err
	}
	if err := access.RequireGroup(actor, g.Scope()); err != nil {
		s.logger.Warn("group access denied",
			"actor_id", actor.ID,
			"company_id", actor.CompanyID,
			"group_id", groupID)
		return nil, err
	}
	return g, nil
}

func (s *Service) Create(ctx context.Context, actor *account.Account, dto CreateGroupDTO) (*GroupResponse, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	ok, err := s.repo.DepartmentExists(ctx, actor.CompanyID, dto.DepartmentID)
	if err != nil {
		return nil, errors.NewInternalError("failed to check department", err)
	}
	if !ok {
		return nil, errors.ErrInvalidDepartment
	}

	existing, err := s.repo.GetByDepartment(ctx, actor.CompanyID, dto.DepartmentID)
	if err != nil {
		return nil, errors.NewInternalError("failed to check group", err)
	}
	if existing != nil {
		return nil, errors.ErrGroupExists
	}

	now := time.Now()
	row := ToDataModel(&Group{
		Name:         dto.Name,
		Description:  dto.Description,
		CompanyID:    actor.CompanyID,
		DepartmentID: dto.DepartmentID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err := s.repo.Create(ctx, row); err != nil {
		if stderrors.Is(err, ErrDuplicate) {
			return nil, errors.ErrGroupExists
		}
		return nil, errors.NewInternalError("failed to create group", err)
	}

	s.logger.Info("group created", "company_id", actor.CompanyID, "group_id", row.ID, "actor_id", actor.ID)
	resp := FromDataModel(row).ToResponse()
	return &resp, nil
}

// List returns all company groups for admins and the department group for employees.
func (s *Service) List(ctx context.Context, actor *account.Account) ([]GroupResponse, error) {
	if actor == nil {
		return nil, errors.ErrUnauthenticated
	}

	var dept *int64
	if !actor.IsAdmin() {
		id := actor.DepartmentID()
		if id == 0 {
			return []GroupResponse{}, nil
		}
		dept = &id
	}

	rows, err := s.repo.List(ctx, actor.CompanyID, dept)
	if err != nil {
		return nil, errors.NewInternalError("failed to list groups", err)
	}

	out := make([]GroupResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row).ToResponse())
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, actor *account.Account, id int64) (*GroupResponse, error) {
	g, err := s.Authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	resp := g.ToResponse()
	return &resp, nil
}
