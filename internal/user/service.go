package user

import (
	"context"
	stderrors "errors"
	"log/slog"

	errors "github.com/frahmantamala/teamchat/internal"
	"github.com/frahmantamala/teamchat/internal/access"
	"github.com/frahmantamala/teamchat/internal/auth"
	"github.com/frahmantamala/teamchat/internal/core/account"
	userDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/user"
	"github.com/frahmantamala/teamchat/internal/core/events"
)

var ErrDuplicateEmail = stderrors.New("duplicate email")

// Row pairs a stored account with its department name.
type Row struct {
	User           *userDatamodel.User
	DepartmentName string
}

type RepositoryAPI interface {
	Create(ctx context.Context, u *userDatamodel.User) error
	EmailExists(ctx context.Context, email string) (bool, error)
	GetByID(ctx context.Context, companyID, id int64) (*Row, error)
	List(ctx context.Context, companyID int64, departmentID *int64) ([]*Row, error)
	DepartmentExists(ctx context.Context, companyID, departmentID int64) (bool, error)
	SetDepartment(ctx context.Context, companyID, id int64, departmentID *int64) (bool, error)
	SetActive(ctx context.Context, companyID, id int64, active bool) error
}

type ServiceAPI interface {
	Create(ctx context.Context, actor *account.Account, dto CreateUserDTO) (*UserResponse, error)
	List(ctx context.Context, actor *account.Account) ([]UserResponse, error)
	Get(ctx context.Context, actor *account.Account, id int64) (*UserResponse, error)
	AssignDepartment(ctx context.Context, actor *account.Account, id int64, dto AssignDepartmentDTO) (*UserResponse, error)
	ToggleStatus(ctx context.Context, actor *account.Account, id int64) (*StatusResponse, error)
}

type Service struct {
	repo       RepositoryAPI
	publisher  events.Publisher
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, publisher events.Publisher, bcryptCost int, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		publisher:  publisher,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Create adds an employee to the admin's company.
func (s *Service) Create(ctx context.Context, actor *account.Account, dto CreateUserDTO) (*UserResponse, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if err := s.checkDepartment(ctx, actor.CompanyID, dto.DepartmentID); err != nil {
		return nil, err
	}

	exists, err := s.repo.EmailExists(ctx, dto.Email)
	if err != nil {
		return nil, errors.NewInternalError("failed to check email", err)
	}
	if exists {
		return nil, errors.ErrEmailInUse
	}

	hash, err := auth.HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, errors.NewInternalError("failed to hash password", err)
	}

	var dept int64
	if dto.DepartmentID != nil {
		dept = *dto.DepartmentID
	}
	row := account.ToDataModel(&account.Account{
		Name:         dto.Name,
		Email:        dto.Email,
		PasswordHash: hash,
		CompanyID:    actor.CompanyID,
		Affiliation:  account.Employee{DepartmentID: dept},
		IsActive:     true,
	})
	if err := s.repo.Create(ctx, row); err != nil {
		if stderrors.Is(err, ErrDuplicateEmail) {
			return nil, errors.ErrEmailInUse
		}
		return nil, errors.NewInternalError("failed to create user", err)
	}

	s.logger.Info("employee created", "company_id", actor.CompanyID, "user_id", row.ID, "actor_id", actor.ID)
	return s.reload(ctx, actor.CompanyID, row.ID)
}

// List returns the whole company for admins and the department roster for employees, sorted by name.
func (s *Service) List(ctx context.Context, actor *account.Account) ([]UserResponse, error) {
	if actor == nil {
		return nil, errors.ErrUnauthenticated
	}

	var dept *int64
	if !actor.IsAdmin() {
		id := actor.DepartmentID()
		if id == 0 {
			return []UserResponse{}, nil
		}
		dept = &id
	}

	rows, err := s.repo.List(ctx, actor.CompanyID, dept)
	if err != nil {
		return nil, errors.NewInternalError("failed to list users", err)
	}

	out := make([]UserResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row.User, row.DepartmentName).ToResponse())
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, actor *account.Account, id int64) (*UserResponse, error) {
	if actor == nil {
		return nil, errors.ErrUnauthenticated
	}

	row, err := s.repo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, errors.NewInternalError("failed to load user", err)
	}
	if row == nil {
		return nil, errors.ErrUserNotFound
	}

	member := FromDataModel(row.User, row.DepartmentName)
	if !access.CanViewAccount(actor, member.Account) {
		return nil, errors.ErrAccessDenied
	}

	resp := member.ToResponse()
	return &resp, nil
}

// AssignDepartment moves an employee of the admin's company and announces the move.
// Admin accounts cannot be assigned.
func (s *Service) AssignDepartment(ctx context.Context, actor *account.Account, id int64, dto AssignDepartmentDTO) (*UserResponse, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := s.checkDepartment(ctx, actor.CompanyID, dto.DepartmentID); err != nil {
		return nil, err
	}

	updated, err := s.repo.SetDepartment(ctx, actor.CompanyID, id, dto.DepartmentID)
	if err != nil {
		return nil, errors.NewInternalError("failed to assign department", err)
	}
	if !updated {
		return nil, errors.ErrUserNotFound
	}

	s.logger.Info("department assigned", "company_id", actor.CompanyID, "user_id", id, "actor_id", actor.ID)

	var dept int64
	if dto.DepartmentID != nil {
		dept = *dto.DepartmentID
	}
	if err := s.publisher.PublishSync(ctx, events.NewAccountReassignedEvent(id, actor.CompanyID, dept)); err != nil {
		s.logger.Error("failed to announce reassignment", "user_id", id, "error", err)
	}
	return s.reload(ctx, actor.CompanyID, id)
}

// ToggleStatus flips the active flag. Deactivation is announced so live sessions can be closed.
func (s *Service) ToggleStatus(ctx context.Context, actor *account.Account, id int64) (*StatusResponse, error) {
	if err := access.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if actor.ID == id {
		return nil, errors.NewValidationError("You cannot change your own status", errors.ErrCodeValidationFailed)
	}

	row, err := s.repo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, errors.NewInternalError("failed to load user", err)
	}
	if row == nil {
		return nil, errors.ErrUserNotFound
	}

	active := !row.User.IsActive
	if err := s.repo.SetActive(ctx, actor.CompanyID, id, active); err != nil {
		return nil, errors.NewInternalError("failed to update status", err)
	}

	message := "User activated."
	if !active {
		message = "User deactivated."
		if err := s.publisher.PublishSync(ctx, events.NewAccountDeactivatedEvent(id, actor.CompanyID)); err != nil {
			s.logger.Error("failed to announce deactivation", "user_id", id, "error", err)
		}
	}

	s.logger.Info("user status changed", "company_id", actor.CompanyID, "user_id", id, "active", active, "actor_id", actor.ID)
	return &StatusResponse{Message: message, IsActive: active}, nil
}

func (s *Service) checkDepartment(ctx context.Context, companyID int64, departmentID *int64) error {
	if departmentID == nil || *departmentID == 0 {
		return nil
	}
	ok, err := s.repo.DepartmentExists(ctx, companyID, *departmentID)
	if err != nil {
		return errors.NewInternalError("failed to check department", err)
	}
	if !ok {
		return errors.ErrInvalidDepartment
	}
	return nil
}

func (s *Service) reload(ctx context.Context, companyID, id int64) (*UserResponse, error) {
	row, err := s.repo.GetByID(ctx, companyID, id)
	if err != nil {
		return nil, errors.NewInternalError("failed to load user", err)
	}
	if row == nil {
		return nil, errors.ErrUserNotFound
	}
	resp := FromDataModel(row.User, row.DepartmentName).ToResponse()
	return &resp, nil
}
