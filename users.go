package panther

import (
	"context"
	"time"
)

// User represents a Panther console user.
type User struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	GivenName  string    `json:"givenName,omitempty"`
	FamilyName string    `json:"familyName,omitempty"`
	Status     string    `json:"status,omitempty"`
	Role       *Role     `json:"role,omitempty"`
	CreatedAt  time.Time `json:"createdAt,omitzero"`
}

// UpdateUserRequest describes changes to apply to a user. Zero-value fields
// are left unchanged. RoleID and RoleName each select a new role for the
// user; at most one of them may be set.
type UpdateUserRequest struct {
	Email      string
	GivenName  string
	FamilyName string
	RoleID     string
	RoleName   string
}

// UserService provides operations on Panther users.
type UserService interface {
	// List returns every user in the Panther instance.
	List(ctx context.Context, opts ...RequestOption) ([]*User, error)

	// Get retrieves a single user by ID or by email address. Fetching by ID
	// is preferable; an email is not guaranteed to identify a unique user.
	Get(ctx context.Context, userID string, opts ...RequestOption) (*User, error)

	// Update modifies a user's details.
	Update(ctx context.Context, userID string, req *UpdateUserRequest, opts ...RequestOption) (*User, error)
}

// userService implements UserService.
type userService struct {
	gql *gqlExecutor
}

func newUserService(gql *gqlExecutor) *userService {
	return &userService{gql: gql}
}

// List returns every user in the Panther instance.
func (s *userService) List(ctx context.Context, opts ...RequestOption) ([]*User, error) {
	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	var result struct {
		Users []*User `json:"users"`
	}
	err := s.gql.execute(ctx, "users/list", nil, reqCfg.headers, &result)
	if err != nil {
		return nil, err
	}

	return result.Users, nil
}

// Get retrieves a single user by ID or by email address.
func (s *userService) Get(ctx context.Context, userID string, opts ...RequestOption) (*User, error) {
	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	// The backend looks up users by email and by ID through separate
	// queries; the value's shape selects which one to use.
	if emailPattern.MatchString(userID) {
		var result struct {
			UserByEmail *User `json:"userByEmail"`
		}
		err := s.gql.execute(ctx, "users/get_by_email", map[string]any{"email": userID}, reqCfg.headers, &result)
		if err != nil {
			return nil, err
		}
		return result.UserByEmail, nil
	}

	var result struct {
		UserByID *User `json:"userById"`
	}
	err := s.gql.execute(ctx, "users/get_by_id", map[string]any{"id": userID}, reqCfg.headers, &result)
	if err != nil {
		return nil, err
	}
	return result.UserByID, nil
}

// Update modifies a user's details.
func (s *userService) Update(ctx context.Context, userID string, req *UpdateUserRequest, opts ...RequestOption) (*User, error) {
	if userID == "" {
		return nil, &ValidationError{Message: "user ID cannot be empty"}
	}
	if req == nil {
		return nil, &ValidationError{Message: "update request cannot be nil"}
	}
	if req.RoleID != "" && req.RoleName != "" {
		return nil, &ValidationError{Message: "cannot set both a role ID and a role name"}
	}
	if req.Email != "" && !emailPattern.MatchString(req.Email) {
		return nil, &ValidationError{Message: "invalid email: " + req.Email}
	}

	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	input := map[string]any{"id": userID}
	if req.Email != "" {
		input["email"] = req.Email
	}
	if req.GivenName != "" {
		input["givenName"] = req.GivenName
	}
	if req.FamilyName != "" {
		input["familyName"] = req.FamilyName
	}
	if req.RoleID != "" {
		input["role"] = map[string]any{"kind": "ID", "value": req.RoleID}
	}
	if req.RoleName != "" {
		input["role"] = map[string]any{"kind": "NAME", "value": req.RoleName}
	}

	var result struct {
		UpdateUser *User `json:"updateUser"`
	}
	err := s.gql.execute(ctx, "users/update", map[string]any{"input": input}, reqCfg.headers, &result)
	if err != nil {
		return nil, err
	}

	return result.UpdateUser, nil
}
