package sweep

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"sarkar/internal/notification/sweep/mocks"
	profilemodels "sarkar/internal/profile/models"
	profilestore "sarkar/internal/profile/store"
	schememodels "sarkar/internal/scheme/models"
	schemestore "sarkar/internal/scheme/store"
	"sarkar/pkg/platform/sentinel"
)

//go:generate mockgen -source=sweep.go -destination=mocks/mocks.go -package=mocks Sender

// =============================================================================
// Deadline Sweep Test Suite
// =============================================================================

type SweepSuite struct {
	suite.Suite
	ctx      context.Context
	now      time.Time
	profiles *profilestore.InMemoryStore
	catalog  *schemestore.InMemoryStore
	sender   *mocks.MockSender
	sweeper  *Sweeper
}

func TestSweepSuite(t *testing.T) {
	suite.Run(t, new(SweepSuite))
}

func (s *SweepSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	s.profiles = profilestore.NewInMemoryStore()
	s.catalog = schemestore.NewInMemoryStore()
	s.sender = mocks.NewMockSender(gomock.NewController(s.T()))
	s.sweeper = s.newSweeper(s.catalog)
}

func (s *SweepSuite) newSweeper(catalog CatalogStore) *Sweeper {
	return s.newSweeperWith(s.profiles, catalog)
}

func (s *SweepSuite) newSweeperWith(profiles ProfileStore, catalog CatalogStore) *Sweeper {
	sw, err := New(profiles, catalog, s.sender,
		WithClock(func() time.Time { return s.now }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithConcurrency(4),
	)
	s.Require().NoError(err)
	return sw
}

func ptr[T any](v T) *T { return &v }

func adult(name string) profilemodels.Profile {
	return profilemodels.Profile{
		Name: name, DateOfBirth: "1980-05-20", Gender: "Female", AnnualIncome: 90000,
		Category: "SC", State: "Bihar", EmploymentStatus: "Self-Employed",
	}
}

func (s *SweepSuite) addSchemes(schemes ...schememodels.Scheme) {
	s.Require().NoError(s.catalog.Upsert(s.ctx, schemes))
}

func deadlineScheme(id, deadline string) schememodels.Scheme {
	return schememodels.Scheme{ID: id, SchemeName: "Scheme " + id, State: "ALL", IsActive: true, Deadline: ptr(deadline)}
}

func (s *SweepSuite) TestNew() {
	_, err := New(nil, s.catalog, s.sender)
	s.Error(err)
	_, err = New(s.profiles, nil, s.sender)
	s.Error(err)
	_, err = New(s.profiles, s.catalog, nil)
	s.Error(err)
}

func (s *SweepSuite) TestDedupAcrossRuns() {
	s.addSchemes(deadlineScheme("pmay", "2026-03-05"))
	s.profiles.Put(&profilemodels.UserDocument{
		UserID:                "u1",
		PrimaryProfile:        ptr(adult("Sita")),
		DeviceTokens:          []string{"tok-1", "tok-2"},
		DeadlineNotifications: profilemodels.NotificationRecord{},
	})

	s.sender.EXPECT().
		Send(gomock.Any(), []string{"tok-1", "tok-2"}, Title, "Scheme pmay deadline is near. Eligible for: You", map[string]string{
			"schemeId":    "pmay",
			"schemeName":  "Scheme pmay",
			"deadline":    "2026-03-05",
			"daysLeft":    "4",
			"eligibleFor": "You",
			"type":        TypeDeadline,
		}).
		Return(2, nil).
		Times(1)

	first, err := s.sweeper.Run(s.ctx)
	s.Require().NoError(err)
	s.Equal(Report{NearDeadline: 1, TotalUsers: 1, Notified: 1}, first)

	second, err := s.sweeper.Run(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, second.Notified)

	doc, err := s.profiles.Get(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal(s.now, doc.DeadlineNotifications["pmay"])
}

func (s *SweepSuite) TestWindow() {
	s.addSchemes(
		deadlineScheme("today", "2026-03-01"),
		deadlineScheme("week", "2026-03-08"),
		deadlineScheme("too-far", "2026-03-09"),
		deadlineScheme("past", "2026-02-28"),
		deadlineScheme("garbled", "soon"),
		schememodels.Scheme{ID: "open-ended", SchemeName: "Open", IsActive: true},
	)
	s.profiles.Put(&profilemodels.UserDocument{
		UserID:         "u1",
		PrimaryProfile: ptr(adult("Sita")),
		DeviceTokens:   []string{"tok"},
	})

	sent := map[string]string{}
	s.sender.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ []string, _, _ string, data map[string]string) (int, error) {
			sent[data["schemeId"]] = data["daysLeft"]
			return 1, nil
		}).
		Times(2)

	report, err := s.sweeper.Run(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, report.NearDeadline)
	s.Equal(map[string]string{"today": "0", "week": "7"}, sent)
}

func (s *SweepSuite) TestHouseholdLabels() {
	s.addSchemes(schememodels.Scheme{
		ID: "ujjwala", SchemeName: "Ujjwala", State: "ALL", IsActive: true, Deadline: ptr("2026-03-03"),
		EligibilityRules: schememodels.RuleSet{Gender: ptr("Female")},
	})
	brother := adult("Mohan")
	brother.Gender = "Male"
	unnamed := adult("")
	s.profiles.Put(&profilemodels.UserDocument{
		UserID:         "u1",
		PrimaryProfile: ptr(adult("Sita")),
		FamilyMembers: []profilemodels.FamilyMember{
			{ID: "m-1", Profile: adult("Gita")},
			{ID: "m-2", Profile: brother},
			{ID: "abcdef0123", Profile: unnamed},
		},
		DeviceTokens: []string{"tok"},
	})

	s.sender.EXPECT().
		Send(gomock.Any(), gomock.Any(), Title, "Ujjwala deadline is near. Eligible for: You, Gita, Member abcdef", gomock.Any()).
		Return(1, nil)

	report, err := s.sweeper.Run(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, report.Notified)
}

func (s *SweepSuite) TestNobodyEligible() {
	s.addSchemes(schememodels.Scheme{
		ID: "ignoaps", SchemeName: "Pension", SchemeCategory: "Pension", IsActive: true, Deadline: ptr("2026-03-03"),
	})
	s.profiles.Put(&profilemodels.UserDocument{
		UserID:         "u1",
		PrimaryProfile: ptr(adult("Sita")),
		DeviceTokens:   []string{"tok"},
	})

	report, err := s.sweeper.Run(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, report.Notified)

	s.Run("legacy record is initialized anyway", func() {
		doc, err := s.profiles.Get(s.ctx, "u1")
		s.Require().NoError(err)
		s.NotNil(doc.DeadlineNotifications)
		s.Empty(doc.DeadlineNotifications)
	})
}

func (s *SweepSuite) TestSkipsUsersWithoutTokens() {
	s.addSchemes(deadlineScheme("pmay", "2026-03-05"))
	s.profiles.Put(&profilemodels.UserDocument{UserID: "u1", PrimaryProfile: ptr(adult("Sita"))})
	s.profiles.Put(&profilemodels.UserDocument{UserID: "u2", PrimaryProfile: ptr(adult("Rani")), DeviceTokens: []string{}})

	report, err := s.sweeper.Run(s.ctx)
	s.Require().NoError(err)
	s.Equal(Report{NearDeadline: 1, TotalUsers: 2, SkippedNoTokens: 2}, report)

	doc, err := s.profiles.Get(s.ctx, "u1")
	s.Require().NoError(err)
	s.Nil(doc.DeadlineNotifications)
}

func (s *SweepSuite) TestFailedDeliveryIsRetriedNextRun() {
	s.addSchemes(deadlineScheme("pmay", "2026-03-05"))
	s.profiles.Put(&profilemodels.UserDocument{
		UserID:         "u1",
		PrimaryProfile: ptr(adult("Sita")),
		DeviceTokens:   []string{"tok"},
	})

	gomock.InOrder(
		s.sender.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(0, errors.New("upstream down")),
		s.sender.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(0, nil),
		s.sender.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(1, nil),
	)

	report, err := s.sweeper.Run(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, report.SendErrors)
	s.Equal(0, report.Notified)

	report, err = s.sweeper.Run(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, report.Notified)

	report, err = s.sweeper.Run(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, report.Notified)
}

func (s *SweepSuite) TestManyUsers() {
	s.addSchemes(deadlineScheme("pmay", "2026-03-05"))
	for i := 0; i < 40; i++ {
		s.profiles.Put(&profilemodels.UserDocument{
			UserID:         fmt.Sprintf("u%02d", i),
			PrimaryProfile: ptr(adult("Sita")),
			DeviceTokens:   []string{"tok"},
		})
	}
	s.sender.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(1, nil).Times(40)

	report, err := s.sweeper.Run(s.ctx)
	s.Require().NoError(err)
	s.Equal(40, report.Notified)
	s.Equal(40, report.TotalUsers)
}

// flakyProfiles fails writes for one user while failing is set.
type flakyProfiles struct {
	*profilestore.InMemoryStore
	userID  string
	failing bool
}

func (f *flakyProfiles) SetNotificationRecord(ctx context.Context, userID string, record profilemodels.NotificationRecord) error {
	if f.failing && userID == f.userID {
		return errors.New("write conflict")
	}
	return f.InMemoryStore.SetNotificationRecord(ctx, userID, record)
}

func (f *flakyProfiles) MarkNotified(ctx context.Context, userID, schemeID string, at time.Time) error {
	if f.failing && userID == f.userID {
		return errors.New("write conflict")
	}
	return f.InMemoryStore.MarkNotified(ctx, userID, schemeID, at)
}

// putUsers stores eligible users; a nil record marks a legacy document.
func (s *SweepSuite) putUsers(initialized bool, ids ...string) {
	for _, id := range ids {
		var rec profilemodels.NotificationRecord
		if initialized {
			rec = profilemodels.NotificationRecord{}
		}
		s.profiles.Put(&profilemodels.UserDocument{
			UserID:                id,
			PrimaryProfile:        ptr(adult("Sita")),
			DeviceTokens:          []string{"tok-" + id},
			DeadlineNotifications: rec,
		})
	}
}

func (s *SweepSuite) notifiedFor(userID, schemeID string) bool {
	doc, err := s.profiles.Get(s.ctx, userID)
	s.Require().NoError(err)
	return doc.DeadlineNotifications.Notified(schemeID)
}

// =============================================================================
// Per-user failure isolation
// =============================================================================

func (s *SweepSuite) TestUserFailuresDoNotStopOthers() {
	s.Run("mark failure leaves the scheme unmarked for the next run", func() {
		s.SetupTest()
		s.addSchemes(deadlineScheme("pmay", "2026-03-05"))
		s.putUsers(true, "u1", "u2", "u3")
		profiles := &flakyProfiles{InMemoryStore: s.profiles, userID: "u2", failing: true}
		sw := s.newSweeperWith(profiles, s.catalog)

		s.sender.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(1, nil).Times(3)
		report, err := sw.Run(s.ctx)
		s.Require().NoError(err)
		s.Equal(Report{NearDeadline: 1, TotalUsers: 3, Notified: 2, FailedUsers: 1}, report)
		s.True(s.notifiedFor("u1", "pmay"))
		s.False(s.notifiedFor("u2", "pmay"))
		s.True(s.notifiedFor("u3", "pmay"))

		profiles.failing = false
		s.sender.EXPECT().Send(gomock.Any(), []string{"tok-u2"}, gomock.Any(), gomock.Any(), gomock.Any()).Return(1, nil)
		report, err = sw.Run(s.ctx)
		s.Require().NoError(err)
		s.Equal(1, report.Notified)
		s.Zero(report.FailedUsers)
		s.True(s.notifiedFor("u2", "pmay"))
	})

	s.Run("record initialization failure skips only that user", func() {
		s.SetupTest()
		s.addSchemes(deadlineScheme("pmay", "2026-03-05"))
		s.putUsers(false, "u1", "u2", "u3")
		profiles := &flakyProfiles{InMemoryStore: s.profiles, userID: "u2", failing: true}
		sw := s.newSweeperWith(profiles, s.catalog)

		s.sender.EXPECT().Send(gomock.Any(), []string{"tok-u1"}, gomock.Any(), gomock.Any(), gomock.Any()).Return(1, nil)
		s.sender.EXPECT().Send(gomock.Any(), []string{"tok-u3"}, gomock.Any(), gomock.Any(), gomock.Any()).Return(1, nil)
		report, err := sw.Run(s.ctx)
		s.Require().NoError(err)
		s.Equal(Report{NearDeadline: 1, TotalUsers: 3, Notified: 2, FailedUsers: 1}, report)

		doc, err := s.profiles.Get(s.ctx, "u2")
		s.Require().NoError(err)
		s.Nil(doc.DeadlineNotifications)
	})

	s.Run("panicking send is contained to its user", func() {
		s.SetupTest()
		s.addSchemes(deadlineScheme("pmay", "2026-03-05"))
		s.putUsers(true, "u1", "u2", "u3")

		s.sender.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, tokens []string, _, _ string, _ map[string]string) (int, error) {
				if tokens[0] == "tok-u2" {
					panic("boom")
				}
				return 1, nil
			}).
			Times(3)

		report, err := s.sweeper.Run(s.ctx)
		s.Require().NoError(err)
		s.Equal(Report{NearDeadline: 1, TotalUsers: 3, Notified: 2, FailedUsers: 1}, report)
		s.False(s.notifiedFor("u2", "pmay"))
	})
}

type failingCatalog struct {
	err error
}

func (f failingCatalog) ListActiveSchemesWithDeadline(context.Context) ([]schememodels.Scheme, error) {
	return nil, f.err
}

func (s *SweepSuite) TestCatalogFailures() {
	s.Run("missing index ends the run quietly", func() {
		sw := s.newSweeper(failingCatalog{err: fmt.Errorf("%w: relation \"schemes\" does not exist", sentinel.ErrUnavailable)})
		report, err := sw.Run(s.ctx)
		s.NoError(err)
		s.Equal(Report{}, report)
	})

	s.Run("other failures are returned", func() {
		sw := s.newSweeper(failingCatalog{err: errors.New("connection refused")})
		_, err := sw.Run(s.ctx)
		s.Error(err)
	})
}

func (s *SweepSuite) TestNoSchemesNearDeadline() {
	s.addSchemes(deadlineScheme("far", "2026-06-01"))
	s.profiles.Put(&profilemodels.UserDocument{UserID: "u1", DeviceTokens: []string{"tok"}})

	report, err := s.sweeper.Run(s.ctx)
	s.Require().NoError(err)
	s.Equal(Report{}, report)

	doc, err := s.profiles.Get(s.ctx, "u1")
	s.Require().NoError(err)
	s.Nil(doc.DeadlineNotifications)
}

func TestMemberLabel(t *testing.T) {
	cases := map[string]profilemodels.FamilyMember{
		"Ravi":          {ID: "0123456789", Profile: profilemodels.Profile{Name: "Ravi"}},
		"Member 0123":   {ID: "0123"},
		"Member 012345": {ID: "0123456789", Profile: profilemodels.Profile{Name: "  "}},
	}
	for want, m := range cases {
		if got := memberLabel(m); got != want {
			t.Errorf("memberLabel(%+v) = %q, want %q", m, got, want)
		}
	}
}
