package handler

import (
	"github.com/onduty/roster/internal/core/domain"
)

func toUserResponse(u *domain.User) *userResponse {
	if u == nil {
		return nil
	}
	return &userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

func toRequestResponse(r *domain.DutyRequest) dutyRequestResponse {
	self := "/api/requests/" + r.ID
	return dutyRequestResponse{
		ID:        r.ID,
		UserID:    r.UserID,
		UserName:  r.UserName,
		Date:      r.Date,
		Shift:     string(r.Shift),
		Reason:    r.Reason,
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt,
		HandledBy: r.HandledBy,
		HandledAt: r.HandledAt,
		Links: requestLinks{
			Self:    self,
			History: self + "/history",
			Actions: self + "/actions",
		},
	}
}
