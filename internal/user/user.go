package user

import (
	"github.com/frahmantamala/teamchat/internal/core/account"
	userDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/user"
)

// Member is a directory entry: an account plus the name of its department, if any.
type Member struct {
	*account.Account
	DepartmentName string
}

func (m *Member) ToResponse() UserResponse {
	return UserResponse{
		Profile:        m.Account.ToProfile(),
		DepartmentName: m.DepartmentName,
	}
}

func FromDataModel(u *userDatamodel.User, departmentName string) *Member {
	return &Member{
		Account:        account.FromDataModel(u),
		DepartmentName: departmentName,
	}
}
