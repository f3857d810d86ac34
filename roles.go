package panther

import (
	"context"
)

// Role represents an RBAC role that can be assigned to users.
type Role struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions,omitempty"`
}

// RoleService provides operations on Panther roles.
type RoleService interface {
	// List returns roles sorted by name in ascending order. A non-empty
	// nameContains restricts the result to roles whose name contains the
	// given substring.
	List(ctx context.Context, nameContains string, opts ...RequestOption) ([]*Role, error)
}

// roleService implements RoleService.
type roleService struct {
	gql *gqlExecutor
}

func newRoleService(gql *gqlExecutor) *roleService {
	return &roleService{gql: gql}
}

// List returns roles sorted by name in ascending order.
func (s *roleService) List(ctx context.Context, nameContains string, opts ...RequestOption) ([]*Role, error) {
	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	input := map[string]any{"sortDir": "ascending"}
	if nameContains != "" {
		input["nameContains"] = nameContains
	}

	var result struct {
		Roles []*Role `json:"roles"`
	}
	err := s.gql.execute(ctx, "roles/list", map[string]any{"input": input}, reqCfg.headers, &result)
	if err != nil {
		return nil, err
	}

	return result.Roles, nil
}
