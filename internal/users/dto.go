package users

import "time"

type roleRefResponse struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

type userResponse struct {
	ID          int64            `json:"id"`
	Username    string           `json:"username"`
	Email       string           `json:"email"`
	FirstName   string           `json:"firstName"`
	LastName    string           `json:"lastName"`
	RoleID      int64            `json:"roleId"`
	Permissions []string         `json:"permissions"`
	Role        *roleRefResponse `json:"role,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

type createUserPayload struct {
	Username    string   `json:"username" validate:"required"`
	Email       string   `json:"email" validate:"required,email"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	Password    string   `json:"password" validate:"required,min=8"`
	RoleID      int64    `json:"roleId" validate:"required"`
	Permissions []string `json:"permissions"`
}

type updateUserPayload struct {
	Username    string   `json:"username" validate:"required"`
	Email       string   `json:"email" validate:"required,email"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	Password    string   `json:"password" validate:"omitempty,min=8"`
	RoleID      int64    `json:"roleId" validate:"required"`
	Permissions []string `json:"permissions"`
}

func toUserResponse(user User) userResponse {
	resp := userResponse{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		RoleID:      user.RoleID,
		Permissions: user.Permissions,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
	if resp.Permissions == nil {
		resp.Permissions = []string{}
	}
	if user.Role != nil {
		perms := user.Role.Permissions
		if perms == nil {
			perms = []string{}
		}
		resp.Role = &roleRefResponse{ID: user.Role.ID, Name: user.Role.Name, Permissions: perms}
	}
	return resp
}

func toUserResponses(list []User) []userResponse {
	out := make([]userResponse, len(list))
	for i, user := range list {
		out[i] = toUserResponse(user)
	}
	return out
}
