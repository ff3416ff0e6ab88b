package handler

import (
	"sarkar/internal/profile/models"
)

type SaveProfileResponse struct {
	Message string `json:"message"`
	UserID  string `json:"uid"`
}

type AddFamilyMemberResponse struct {
	Message string              `json:"message"`
	Member  models.FamilyMember `json:"member"`
}

type FamilyMembersResponse struct {
	FamilyMembers []models.FamilyMember `json:"familyMembers"`
}

type RemoveFamilyMemberResponse struct {
	Message  string `json:"message"`
	MemberID string `json:"memberId"`
}
