package group

import (
	"time"

	"github.com/frahmantamala/teamchat/internal/access"
	groupDatamodel "github.com/frahmantamala/teamchat/internal/core/datamodel/group"
)

// Group is a department's chat channel. Its room on the realtime transport is "group:<id>".
type Group struct {
	ID             int64
	Name           string
	Description    string
	CompanyID      int64
	DepartmentID   int64
	DepartmentName string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (g *Group) Scope() access.Scope {
	return access.Scope{CompanyID: g.CompanyID, DepartmentID: g.DepartmentID}
}

func (g *Group) ToResponse() GroupResponse {
	resp := GroupResponse{
		ID:           g.ID,
		Name:         g.Name,
		Description:  g.Description,
		CompanyID:    g.CompanyID,
		DepartmentID: g.DepartmentID,
		IsActive:     g.IsActive,
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
	}
	if g.DepartmentName != "" {
		resp.Department = &DepartmentRef{ID: g.DepartmentID, Name: g.DepartmentName}
	}
	return resp
}

func ToDataModel(g *Group) *groupDatamodel.Group {
	return &groupDatamodel.Group{
		ID:           g.ID,
		Name:         g.Name,
		Description:  g.Description,
		CompanyID:    g.CompanyID,
		DepartmentID: g.DepartmentID,
		IsActive:     g.IsActive,
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
	}
}

func FromDataModel(g *groupDatamodel.Group) *Group {
	out := &Group{
		ID:           g.ID,
		Name:         g.Name,
		Description:  g.Description,
		CompanyID:    g.CompanyID,
		DepartmentID: g.DepartmentID,
		IsActive:     g.IsActive,
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
	}
	if g.Department != nil {
		out.DepartmentName = g.Department.Name
	}
	return out
}
