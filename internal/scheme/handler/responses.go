package handler

import (
	"sarkar/internal/scheme/models"
)

// PartitionResponse is returned by GET /schemes and POST /schemes/eligible.
type PartitionResponse struct {
	Eligible []models.Summary `json:"eligible"`
	Rejected []models.Summary `json:"rejected"`
}

// PrimaryPartitionResponse adds totals for GET /schemes/eligible.
type PrimaryPartitionResponse struct {
	UserID        string           `json:"uid"`
	TotalEligible int              `json:"totalEligible"`
	TotalRejected int              `json:"totalRejected"`
	Eligible      []models.Summary `json:"eligible"`
	Rejected      []models.Summary `json:"rejected"`
}
