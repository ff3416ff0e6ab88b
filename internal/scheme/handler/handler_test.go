package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	profilemodels "sarkar/internal/profile/models"
	"sarkar/internal/scheme/handler/mocks"
	"sarkar/internal/scheme/models"
	dErrors "sarkar/pkg/domain-errors"
	"sarkar/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// =============================================================================
// Scheme Handler Test Suite
// =============================================================================

type SchemeHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
	now     time.Time
}

func TestSchemeHandlerSuite(t *testing.T) {
	suite.Run(t, new(SchemeHandlerSuite))
}

func (s *SchemeHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.router = chi.NewRouter()
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
	s.now = time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
}

func reason(r string) *string { return &r }

func samplePartition() models.Partition {
	return models.Partition{
		Eligible: []models.Summary{
			{ID: "nsp", SchemeName: "National Scholarship", SchemeCategory: "Education", State: "ALL"},
			{ID: "kl-edu", SchemeName: "Kerala Merit Award", SchemeCategory: "Education", State: "Kerala"},
		},
		Rejected: []models.Summary{
			{ID: "ignoaps", SchemeName: "Old Age Pension", SchemeCategory: "Pension", State: "ALL", Reason: reason("Scheme for senior citizens only")},
		},
	}
}

func (s *SchemeHandlerSuite) TestListForProfile() {
	s.Run("profileType is required", func() {
		req := testutil.WithAuth(testutil.NewRequest(s.T(), http.MethodGet, "/schemes"), "user-1", s.now)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, MsgProfileTypeRequired)
	})

	s.Run("family member partition", func() {
		s.service.EXPECT().PartitionForUser(gomock.Any(), "user-1", "family", "m-1").Return(samplePartition(), nil)

		req := testutil.WithAuth(testutil.NewRequest(s.T(), http.MethodGet, "/schemes?profileType=family&memberId=m-1"), "user-1", s.now)
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		resp := testutil.UnmarshalData[PartitionResponse](s.T(), rr)
		s.Len(resp.Eligible, 2)
		s.Require().Len(resp.Rejected, 1)
		s.Equal("Scheme for senior citizens only", *resp.Rejected[0].Reason)
	})

	s.Run("unknown member maps to 404", func() {
		s.service.EXPECT().PartitionForUser(gomock.Any(), "user-1", "family", "m-9").
			Return(models.Partition{}, dErrors.New(dErrors.CodeNotFound, `Family member "m-9" not found.`))

		req := testutil.WithAuth(testutil.NewRequest(s.T(), http.MethodGet, "/schemes?profileType=family&memberId=m-9"), "user-1", s.now)
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, `Family member "m-9" not found.`)
	})
}

func (s *SchemeHandlerSuite) TestListForPrimary() {
	s.service.EXPECT().PartitionForUser(gomock.Any(), "user-1", profilemodels.ProfileTypePrimary, "").Return(samplePartition(), nil)

	req := testutil.WithAuth(testutil.NewRequest(s.T(), http.MethodGet, "/schemes/eligible"), "user-1", s.now)
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	resp := testutil.UnmarshalData[PrimaryPartitionResponse](s.T(), rr)
	s.Equal("user-1", resp.UserID)
	s.Equal(2, resp.TotalEligible)
	s.Equal(1, resp.TotalRejected)
}

func (s *SchemeHandlerSuite) TestCheckEligibility() {
	profile := map[string]any{
		"dateOfBirth":      "2003-06-15",
		"annualIncome":     150000,
		"category":         "OBC",
		"state":            "Kerala",
		"gender":           "Male",
		"isStudent":        true,
		"employmentStatus": "Unemployed",
		"isDisabled":       false,
	}

	s.Run("missing profile object", func() {
		req := testutil.WithAuth(testutil.NewJSONRequest(s.T(), http.MethodPost, "/schemes/eligible", map[string]any{}), "user-1", s.now)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, `Request body must contain a "profile" object.`)
	})

	s.Run("missing engine field", func() {
		partial := map[string]any{"dateOfBirth": "2003-06-15"}
		req := testutil.WithAuth(testutil.NewJSONRequest(s.T(), http.MethodPost, "/schemes/eligible", map[string]any{"profile": partial}), "user-1", s.now)
		rr := testutil.DoRequest(s.router, req)
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "Missing required profile field: annualIncome")
	})

	s.Run("filters apply to both sides", func() {
		s.service.EXPECT().Partition(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, p profilemodels.Profile) (models.Partition, error) {
				s.Equal("OBC", p.Category)
				s.True(p.IsStudent)
				return samplePartition(), nil
			})

		body := map[string]any{
			"profile": profile,
			"filters": map[string]any{"schemeCategory": "education", "state": "Delhi"},
		}
		req := testutil.WithAuth(testutil.NewJSONRequest(s.T(), http.MethodPost, "/schemes/eligible", body), "user-1", s.now)
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		resp := testutil.UnmarshalData[PartitionResponse](s.T(), rr)
		s.Require().Len(resp.Eligible, 1)
		s.Equal("nsp", resp.Eligible[0].ID)
		s.Empty(resp.Rejected)
	})

	s.Run("without filters the partition is returned as is", func() {
		s.service.EXPECT().Partition(gomock.Any(), gomock.Any()).Return(samplePartition(), nil)

		req := testutil.WithAuth(testutil.NewJSONRequest(s.T(), http.MethodPost, "/schemes/eligible", map[string]any{"profile": profile}), "user-1", s.now)
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatus(s.T(), rr, http.StatusOK)
		resp := testutil.UnmarshalData[PartitionResponse](s.T(), rr)
		s.Len(resp.Eligible, 2)
		s.Len(resp.Rejected, 1)
	})

	s.Run("future date of birth", func() {
		s.service.EXPECT().Partition(gomock.Any(), gomock.Any()).
			Return(models.Partition{}, dErrors.New(dErrors.CodeValidation, profilemodels.MsgInvalidDateOfBirth))

		future := map[string]any{}
		for k, v := range profile {
			future[k] = v
		}
		future["dateOfBirth"] = "2030-01-01"
		req := testutil.WithAuth(testutil.NewJSONRequest(s.T(), http.MethodPost, "/schemes/eligible", map[string]any{"profile": future}), "user-1", s.now)
		rr := testutil.DoRequest(s.router, req)

		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, profilemodels.MsgInvalidDateOfBirth)
	})
}
