package roles

import "time"

type creatorResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type roleResponse struct {
	ID              int64            `json:"id"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	Permissions     []string         `json:"permissions"`
	CreatedByUserID *int64           `json:"createdByUserId"`
	CreatedByUser   *creatorResponse `json:"createdByUser,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

type rolePayload struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

func toRoleResponse(role Role) roleResponse {
	resp := roleResponse{
		ID:              role.ID,
		Name:            role.Name,
		Description:     role.Description,
		Permissions:     role.Permissions,
		CreatedByUserID: role.CreatedByUserID,
		CreatedAt:       role.CreatedAt,
		UpdatedAt:       role.UpdatedAt,
	}
	if resp.Permissions == nil {
		resp.Permissions = []string{}
	}
	if role.CreatedBy != nil {
		resp.CreatedByUser = &creatorResponse{
			ID:        role.CreatedBy.ID,
			FirstName: role.CreatedBy.FirstName,
			LastName:  role.CreatedBy.LastName,
			Email:     role.CreatedBy.Email,
		}
	}
	return resp
}

func toRoleResponses(list []Role) []roleResponse {
	out := make([]roleResponse, len(list))
	for i, role := range list {
		out[i] = toRoleResponse(role)
	}
	return out
}
