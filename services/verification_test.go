package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"civicpulse-be/apperrors"
	"civicpulse-be/models"
	"civicpulse-be/stores"
)

type stubVerifier struct {
	verdict Verdict
	err     error

	calls      int
	lastBefore string
	lastAfter  string
}

func (s *stubVerifier) Verify(_ context.Context, before, after string) (Verdict, error) {
	s.calls++
	s.lastBefore = before
	s.lastAfter = after
	return s.verdict, s.err
}

type stubNotifier struct {
	err error

	calls int
	last  ResolutionNotice
}

func (s *stubNotifier) NotifyResolved(_ context.Context, notice ResolutionNotice) error {
	s.calls++
	s.last = notice
	return s.err
}

type ResolutionGatewaySuite struct {
	suite.Suite
	issues   *stores.MemoryIssueStore
	users    *stores.MemoryUserStore
	verifier *stubVerifier
	notifier *stubNotifier
	gateway  *ResolutionGateway
	ctx      context.Context
}

func (s *ResolutionGatewaySuite) SetupTest() {
	s.issues = stores.NewMemoryIssueStore()
	s.users = stores.NewMemoryUserStore()
	s.verifier = &stubVerifier{verdict: Verdict{Resolved: true}}
	s.notifier = &stubNotifier{}

	log := zap.NewNop().Sugar()
	workflow := NewStatusWorkflow(s.issues, log)
	s.gateway = NewResolutionGateway(s.issues, s.users, s.verifier, s.notifier, workflow, log)
	s.ctx = context.Background()
}

func TestResolutionGatewaySuite(t *testing.T) {
	suite.Run(t, new(ResolutionGatewaySuite))
}

func (s *ResolutionGatewaySuite) newReporter() *models.User {
	user := &models.User{
		Username: "asha",
		Email:    "asha@example.com",
		Role:     models.Citizen,
	}
	s.Require().NoError(s.users.Insert(s.ctx, user))
	return user
}

func (s *ResolutionGatewaySuite) newIssue(reporter primitive.ObjectID, images ...string) *models.Issue {
	issue := &models.Issue{
		Title:       "Pothole near market",
		Description: "Deep pothole blocking the left lane",
		Location:    models.Location{Lat: 12.97, Lng: 77.59},
		Images:      images,
		Reporter:    reporter,
		Status:      models.Reported,
		Category:    models.Roads,
		Priority:    models.Medium,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	s.Require().NoError(s.issues.Insert(s.ctx, issue))
	return issue
}

// TestMissingBeforeImage verifies the guard fires before any collaborator
// is contacted.
func (s *ResolutionGatewaySuite) TestMissingBeforeImage() {
	reporter := s.newReporter()
	issue := s.newIssue(reporter.ID)

	_, err := s.gateway.VerifyAndResolve(s.ctx, issue.ID, "img_after.jpg")
	s.Require().ErrorIs(err, apperrors.ErrMissingBeforeImage)
	s.Equal(0, s.verifier.calls)
	s.Equal(0, s.notifier.calls)
}

func (s *ResolutionGatewaySuite) TestUnknownIssue() {
	_, err := s.gateway.VerifyAndResolve(s.ctx, primitive.NewObjectID(), "img_after.jpg")
	s.Require().ErrorIs(err, apperrors.ErrNotFound)
	s.Equal(0, s.verifier.calls)
}

// TestNegativeVerdict verifies a rejected comparison is a normal outcome:
// the reason passes through untouched and nothing changes.
func (s *ResolutionGatewaySuite) TestNegativeVerdict() {
	reporter := s.newReporter()
	issue := s.newIssue(reporter.ID, "img_before.jpg")
	s.verifier.verdict = Verdict{Resolved: false, Reason: "no visible change"}

	result, err := s.gateway.VerifyAndResolve(s.ctx, issue.ID, "img_after.jpg")
	s.Require().NoError(err)
	s.Equal(StagePending, result.Stage)
	s.False(result.Verification.Resolved)
	s.Equal("no visible change", result.Verification.Reason)
	s.Equal(0, s.notifier.calls)

	stored, err := s.issues.GetByID(s.ctx, issue.ID)
	s.Require().NoError(err)
	s.Equal(models.Reported, stored.Status)
}

// TestVerifiedAndResolved walks the happy path: verify, notify, commit.
func (s *ResolutionGatewaySuite) TestVerifiedAndResolved() {
	reporter := s.newReporter()
	issue := s.newIssue(reporter.ID, "img_before.jpg")

	result, err := s.gateway.VerifyAndResolve(s.ctx, issue.ID, "img_after.jpg")
	s.Require().NoError(err)
	s.Equal(StageCommitted, result.Stage)
	s.True(result.Verification.Resolved)
	s.False(result.AlreadyResolved)
	s.Equal(models.Resolved, result.Issue.Status)

	s.Equal(1, s.verifier.calls)
	s.Equal("img_before.jpg", s.verifier.lastBefore)
	s.Equal("img_after.jpg", s.verifier.lastAfter)

	s.Equal(1, s.notifier.calls)
	s.Equal(issue.ID.Hex(), s.notifier.last.IssueID)
	s.Equal("Pothole near market", s.notifier.last.Title)
	s.Equal("asha@example.com", s.notifier.last.ReporterEmail)
	s.Equal("asha", s.notifier.last.ReporterUsername)
	s.Equal("Resolved", s.notifier.last.Status)
	s.Equal("img_before.jpg", s.notifier.last.BeforeImage)
	s.Equal("img_after.jpg", s.notifier.last.AfterImage)

	stored, err := s.issues.GetByID(s.ctx, issue.ID)
	s.Require().NoError(err)
	s.Equal(models.Resolved, stored.Status)
}

// TestIdempotentReinvocation verifies a second call on a resolved issue
// short-circuits without double-notifying.
func (s *ResolutionGatewaySuite) TestIdempotentReinvocation() {
	reporter := s.newReporter()
	issue := s.newIssue(reporter.ID, "img_before.jpg")

	_, err := s.gateway.VerifyAndResolve(s.ctx, issue.ID, "img_after.jpg")
	s.Require().NoError(err)

	result, err := s.gateway.VerifyAndResolve(s.ctx, issue.ID, "img_after.jpg")
	s.Require().NoError(err)
	s.True(result.AlreadyResolved)
	s.Equal(StageCommitted, result.Stage)
	s.True(result.Verification.Resolved)

	s.Equal(1, s.verifier.calls)
	s.Equal(1, s.notifier.calls)
}

func (s *ResolutionGatewaySuite) TestVerifierFailure() {
	reporter := s.newReporter()
	issue := s.newIssue(reporter.ID, "img_before.jpg")
	s.verifier.err = fmt.Errorf("webhook returned 500: %w", apperrors.ErrVerificationService)

	_, err := s.gateway.VerifyAndResolve(s.ctx, issue.ID, "img_after.jpg")
	s.Require().ErrorIs(err, apperrors.ErrVerificationService)
	s.Equal(0, s.notifier.calls)

	stored, gerr := s.issues.GetByID(s.ctx, issue.ID)
	s.Require().NoError(gerr)
	s.Equal(models.Reported, stored.Status)
}

// TestNotifierFailureLeavesIssueRetryable verifies the chosen ordering:
// nothing is persisted when notification fails, so the caller can retry.
func (s *ResolutionGatewaySuite) TestNotifierFailureLeavesIssueRetryable() {
	reporter := s.newReporter()
	issue := s.newIssue(reporter.ID, "img_before.jpg")
	s.notifier.err = fmt.Errorf("webhook returned 503: %w", apperrors.ErrNotificationFailed)

	_, err := s.gateway.VerifyAndResolve(s.ctx, issue.ID, "img_after.jpg")
	s.Require().ErrorIs(err, apperrors.ErrNotificationFailed)

	stored, gerr := s.issues.GetByID(s.ctx, issue.ID)
	s.Require().NoError(gerr)
	s.Equal(models.Reported, stored.Status)

	// Retry after the notifier recovers.
	s.notifier.err = nil
	result, err := s.gateway.VerifyAndResolve(s.ctx, issue.ID, "img_after.jpg")
	s.Require().NoError(err)
	s.Equal(StageCommitted, result.Stage)
	s.Equal(models.Resolved, result.Issue.Status)
}

// TestMissingReporterStillResolves verifies a dangling reporter reference
// does not block a verified resolution.
func (s *ResolutionGatewaySuite) TestMissingReporterStillResolves() {
	issue := s.newIssue(primitive.NewObjectID(), "img_before.jpg")

	result, err := s.gateway.VerifyAndResolve(s.ctx, issue.ID, "img_after.jpg")
	s.Require().NoError(err)
	s.Equal(StageCommitted, result.Stage)
	s.Equal("", s.notifier.last.ReporterEmail)
	s.Equal("", s.notifier.last.ReporterUsername)
}

type funcNotifier struct {
	fn func(ResolutionNotice) error
}

func (f funcNotifier) NotifyResolved(_ context.Context, notice ResolutionNotice) error {
	return f.fn(notice)
}

// TestConcurrentCommitLosesGracefully verifies a lost revision race at
// commit time is reported as an already-resolved outcome, not an error.
func (s *ResolutionGatewaySuite) TestConcurrentCommitLosesGracefully() {
	reporter := s.newReporter()
	issue := s.newIssue(reporter.ID, "img_before.jpg")

	// A concurrent resolution lands between our verify and commit: the
	// notifier callback patches the issue first, invalidating our revision.
	racing := funcNotifier{fn: func(ResolutionNotice) error {
		status := models.Resolved
		_, err := s.issues.Patch(s.ctx, issue.ID, stores.IssuePatch{Status: &status})
		return err
	}}

	log := zap.NewNop().Sugar()
	workflow := NewStatusWorkflow(s.issues, log)
	gateway := NewResolutionGateway(s.issues, s.users, s.verifier, racing, workflow, log)

	result, err := gateway.VerifyAndResolve(s.ctx, issue.ID, "img_after.jpg")
	s.Require().NoError(err)
	s.True(result.AlreadyResolved)
	s.Equal(StageCommitted, result.Stage)
	s.Equal(models.Resolved, result.Issue.Status)
}
