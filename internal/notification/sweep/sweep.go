// Package sweep sends one consolidated reminder per user and scheme when an
// active scheme's deadline is close and someone in the household qualifies.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"sarkar/internal/eligibility"
	"sarkar/internal/notification/metrics"
	profilemodels "sarkar/internal/profile/models"
	schememodels "sarkar/internal/scheme/models"
	"sarkar/pkg/platform/sentinel"
	"sarkar/pkg/requestcontext"
)

var tracer = otel.Tracer("sarkar/internal/notification/sweep")

// Notification content.
const (
	Title            = "Scheme Deadline Approaching"
	TypeDeadline     = "DEADLINE_REMINDER"
	LabelPrimary     = "You"
	DefaultWindow    = 7
	DefaultParallel  = 16
	memberIDLabelLen = 6
)

// Run results recorded in metrics.
const (
	resultCompleted   = "completed"
	resultNoSchemes   = "no_schemes"
	resultUnavailable = "store_unavailable"
	resultFailed      = "failed"
)

// ProfileStore is the slice of the profile store the sweep needs.
type ProfileStore interface {
	ListAllUsers(ctx context.Context) ([]*profilemodels.UserDocument, error)
	SetNotificationRecord(ctx context.Context, userID string, record profilemodels.NotificationRecord) error
	MarkNotified(ctx context.Context, userID, schemeID string, at time.Time) error
}

// CatalogStore lists the schemes that carry a deadline.
type CatalogStore interface {
	ListActiveSchemesWithDeadline(ctx context.Context) ([]schememodels.Scheme, error)
}

// Sender delivers a notification to every token of one user and reports how
// many tokens accepted it.
type Sender interface {
	Send(ctx context.Context, tokens []string, title, body string, data map[string]string) (int, error)
}

// Report summarizes one run.
type Report struct {
	NearDeadline    int
	TotalUsers      int
	Notified        int
	SkippedNoTokens int
	FailedUsers     int
	SendErrors      int
}

// nearScheme is an active scheme inside the reminder window.
type nearScheme struct {
	scheme   schememodels.Scheme
	daysLeft int
}

// userOutcome is written by exactly one task.
type userOutcome struct {
	notified   int
	skipped    bool
	sendErrors int
	err        error
}

// Sweeper runs the deadline reminder job.
type Sweeper struct {
	profiles    ProfileStore
	catalog     CatalogStore
	sender      Sender
	engine      *eligibility.Engine
	logger      *slog.Logger
	metrics     *metrics.Metrics
	concurrency int
	windowDays  int
	clock       func() time.Time
}

// Option configures a Sweeper.
type Option func(*Sweeper)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Sweeper) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Sweeper) {
		s.metrics = m
	}
}

func WithEngine(engine *eligibility.Engine) Option {
	return func(s *Sweeper) {
		s.engine = engine
	}
}

// WithConcurrency bounds how many users are processed at once.
func WithConcurrency(n int) Option {
	return func(s *Sweeper) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithWindowDays sets how many days ahead a deadline counts as near.
func WithWindowDays(days int) Option {
	return func(s *Sweeper) {
		if days >= 0 {
			s.windowDays = days
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(s *Sweeper) {
		s.clock = clock
	}
}

func New(profiles ProfileStore, catalog CatalogStore, sender Sender, opts ...Option) (*Sweeper, error) {
	if profiles == nil {
		return nil, errors.New("profile store is required")
	}
	if catalog == nil {
		return nil, errors.New("catalog store is required")
	}
	if sender == nil {
		return nil, errors.New("sender is required")
	}
	s := &Sweeper{
		profiles:    profiles,
		catalog:     catalog,
		sender:      sender,
		engine:      eligibility.NewEngine(),
		logger:      slog.Default(),
		concurrency: DefaultParallel,
		windowDays:  DefaultWindow,
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run performs one sweep. A missing table or index ends the run quietly with
// remediation guidance in the log. Failures of individual users are counted
// in the report and never returned; an error means the run could not start.
// The already-notified check reads each user's record from the snapshot taken
// when the run lists users, so overlapping runs may send a reminder twice.
func (s *Sweeper) Run(ctx context.Context) (Report, error) {
	ctx, span := tracer.Start(ctx, "notification.Sweep")
	defer span.End()
	start := time.Now()
	now := s.clock()
	ctx = requestcontext.WithTime(ctx, now)

	s.logger.InfoContext(ctx, "deadline sweep started", "at", now.UTC().Format(time.RFC3339))

	near, err := s.nearDeadline(ctx, now)
	if err != nil {
		if errors.Is(err, sentinel.ErrUnavailable) {
			s.logger.ErrorContext(ctx, "deadline query needs the schemes (is_active, deadline) index; run `sarkarctl migrate up` to create it",
				"error", err,
			)
			s.metrics.ObserveSweep(resultUnavailable, time.Since(start))
			return Report{}, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "list schemes")
		s.metrics.ObserveSweep(resultFailed, time.Since(start))
		return Report{}, fmt.Errorf("list schemes with deadline: %w", err)
	}
	if len(near) == 0 {
		s.logger.InfoContext(ctx, "no schemes near deadline")
		s.metrics.ObserveSweep(resultNoSchemes, time.Since(start))
		return Report{}, nil
	}
	s.logger.InfoContext(ctx, "schemes near deadline", "count", len(near))

	users, err := s.profiles.ListAllUsers(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list users")
		s.metrics.ObserveSweep(resultFailed, time.Since(start))
		return Report{}, fmt.Errorf("list users: %w", err)
	}

	outcomes := make([]userOutcome, len(users))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, doc := range users {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					outcomes[i] = userOutcome{err: fmt.Errorf("panic: %v", r)}
				}
			}()
			outcomes[i] = s.processUser(ctx, doc, near, now)
			return nil
		})
	}
	_ = g.Wait()

	report := Report{NearDeadline: len(near), TotalUsers: len(users)}
	for i, o := range outcomes {
		report.Notified += o.notified
		report.SendErrors += o.sendErrors
		if o.skipped {
			report.SkippedNoTokens++
		}
		if o.err != nil {
			report.FailedUsers++
			s.metrics.IncrementUserFailed()
			s.logger.ErrorContext(ctx, "deadline sweep failed for user",
				"user_id", users[i].UserID,
				"error", o.err,
			)
		}
	}

	span.SetAttributes(
		attribute.Int("sweep.users", report.TotalUsers),
		attribute.Int("sweep.notified", report.Notified),
	)
	s.metrics.ObserveSweep(resultCompleted, time.Since(start))
	s.logger.InfoContext(ctx, "deadline sweep finished",
		"notified", report.Notified,
		"skipped_no_tokens", report.SkippedNoTokens,
		"total_users", report.TotalUsers,
		"failed_users", report.FailedUsers,
		"send_errors", report.SendErrors,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return report, nil
}

func (s *Sweeper) nearDeadline(ctx context.Context, now time.Time) ([]nearScheme, error) {
	schemes, err := s.catalog.ListActiveSchemesWithDeadline(ctx)
	if err != nil {
		return nil, err
	}
	near := make([]nearScheme, 0, len(schemes))
	for _, sc := range schemes {
		if sc.Deadline == nil {
			continue
		}
		days, err := eligibility.DaysUntil(*sc.Deadline, now)
		if err != nil {
			s.logger.WarnContext(ctx, "skipping scheme with malformed deadline",
				"scheme_id", sc.ID,
				"deadline", *sc.Deadline,
			)
			continue
		}
		if days >= 0 && days <= s.windowDays {
			near = append(near, nearScheme{scheme: sc, daysLeft: days})
		}
	}
	return near, nil
}

func (s *Sweeper) processUser(ctx context.Context, doc *profilemodels.UserDocument, near []nearScheme, now time.Time) userOutcome {
	var out userOutcome
	if len(doc.DeviceTokens) == 0 {
		out.skipped = true
		return out
	}

	record := doc.DeadlineNotifications
	if record == nil {
		record = profilemodels.NotificationRecord{}
		if err := s.profiles.SetNotificationRecord(ctx, doc.UserID, record); err != nil {
			out.err = fmt.Errorf("initialize notification record: %w", err)
			return out
		}
		s.logger.InfoContext(ctx, "initialized deadline notification record", "user_id", doc.UserID)
	}

	for _, ns := range near {
		sc := ns.scheme
		if record.Notified(sc.ID) {
			continue
		}
		labels := s.eligibleLabels(ctx, doc, sc, now)
		if len(labels) == 0 {
			continue
		}

		eligibleFor := strings.Join(labels, ", ")
		body := fmt.Sprintf("%s deadline is near. Eligible for: %s", sc.SchemeName, eligibleFor)
		data := map[string]string{
			"schemeId":    sc.ID,
			"schemeName":  sc.SchemeName,
			"deadline":    *sc.Deadline,
			"daysLeft":    strconv.Itoa(ns.daysLeft),
			"eligibleFor": eligibleFor,
			"type":        TypeDeadline,
		}

		delivered, err := s.sender.Send(ctx, doc.DeviceTokens, Title, body, data)
		if err != nil {
			out.sendErrors++
			s.logger.WarnContext(ctx, "deadline reminder send failed",
				"user_id", doc.UserID,
				"scheme_id", sc.ID,
				"error", err,
			)
			continue
		}
		if delivered == 0 {
			continue
		}
		if err := s.profiles.MarkNotified(ctx, doc.UserID, sc.ID, now); err != nil {
			out.err = fmt.Errorf("mark %s notified: %w", sc.ID, err)
			continue
		}
		out.notified++
		s.metrics.IncrementNotified()
		s.logger.InfoContext(ctx, "deadline reminder sent",
			"user_id", doc.UserID,
			"scheme_id", sc.ID,
			"eligible_for", eligibleFor,
			"delivered", delivered,
			"tokens", len(doc.DeviceTokens),
		)
	}
	return out
}

// eligibleLabels lists who in the household qualifies: "You" for the primary
// profile, then each qualifying member by name.
func (s *Sweeper) eligibleLabels(ctx context.Context, doc *profilemodels.UserDocument, sc schememodels.Scheme, now time.Time) []string {
	var labels []string
	if doc.PrimaryProfile != nil && s.qualifies(ctx, doc.UserID, *doc.PrimaryProfile, sc, now) {
		labels = append(labels, LabelPrimary)
	}
	for _, m := range doc.FamilyMembers {
		if s.qualifies(ctx, doc.UserID, m.Profile, sc, now) {
			labels = append(labels, memberLabel(m))
		}
	}
	return labels
}

func (s *Sweeper) qualifies(ctx context.Context, userID string, p profilemodels.Profile, sc schememodels.Scheme, now time.Time) bool {
	result, err := s.engine.Evaluate(p, sc, now)
	if err != nil {
		s.logger.WarnContext(ctx, "stored profile has an invalid date of birth",
			"user_id", userID,
			"scheme_id", sc.ID,
		)
		return false
	}
	return result.IsEligible
}

func memberLabel(m profilemodels.FamilyMember) string {
	if name := strings.TrimSpace(m.Name); name != "" {
		return name
	}
	id := m.ID
	if len(id) > memberIDLabelLen {
		id = id[:memberIDLabelLen]
	}
	return "Member " + id
}
