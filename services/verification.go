package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"civicpulse-be/apperrors"
	"civicpulse-be/models"
	"civicpulse-be/stores"
)

// Verdict is the verification collaborator's answer to a before/after pair.
// A negative verdict is a normal outcome, not an error.
type Verdict struct {
	Resolved bool   `json:"resolved"`
	Reason   string `json:"reason,omitempty"`
}

// ResolutionNotice is the payload sent to the notification collaborator
// when an issue is verified as resolved
type ResolutionNotice struct {
	IssueID          string `json:"issueId"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	ReporterEmail    string `json:"reporterEmail"`
	ReporterUsername string `json:"reporterUsername"`
	Status           string `json:"status"`
	BeforeImage      string `json:"beforeImage"`
	AfterImage       string `json:"afterImage"`
}

// Verifier is the external before/after image comparison service
type Verifier interface {
	Verify(ctx context.Context, before, after string) (Verdict, error)
}

// Notifier is the external service that tells the reporter their issue
// was resolved
type Notifier interface {
	NotifyResolved(ctx context.Context, notice ResolutionNotice) error
}

// ResolutionStage marks how far a resolution attempt progressed
type ResolutionStage string

const (
	StagePending   ResolutionStage = "Pending"
	StageVerified  ResolutionStage = "Verified"
	StageNotified  ResolutionStage = "Notified"
	StageCommitted ResolutionStage = "Committed"
)

// ResolutionResult is the outcome of a VerifyAndResolve call
type ResolutionResult struct {
	Stage           ResolutionStage `json:"stage"`
	Verification    Verdict         `json:"verification"`
	AlreadyResolved bool            `json:"alreadyResolved,omitempty"`
	Issue           *models.Issue   `json:"issue"`
}

// ResolutionGateway coordinates the evidence-based resolution of an issue:
// verify the before/after pair, notify the reporter, then commit the
// Resolved status. Notification runs before the commit so a failure leaves
// the issue unresolved and the whole call retryable; the saga carries no
// compensation, the stage in the result says how far it got.
type ResolutionGateway struct {
	issues   stores.IssueStore
	users    stores.UserStore
	verifier Verifier
	notifier Notifier
	workflow *StatusWorkflow
	log      *zap.SugaredLogger
}

func NewResolutionGateway(issues stores.IssueStore, users stores.UserStore, verifier Verifier, notifier Notifier, workflow *StatusWorkflow, log *zap.SugaredLogger) *ResolutionGateway {
	return &ResolutionGateway{
		issues:   issues,
		users:    users,
		verifier: verifier,
		notifier: notifier,
		workflow: workflow,
		log:      log,
	}
}

// VerifyAndResolve runs the resolution saga for one issue. The first stored
// image is the "before" evidence. Re-invoking on an already-Resolved issue
// short-circuits without touching either collaborator.
func (g *ResolutionGateway) VerifyAndResolve(ctx context.Context, issueID primitive.ObjectID, afterImage string) (*ResolutionResult, error) {
	issue, err := g.issues.GetByID(ctx, issueID)
	if err != nil {
		return nil, err
	}

	if issue.Status == models.Resolved {
		return &ResolutionResult{
			Stage:           StageCommitted,
			Verification:    Verdict{Resolved: true},
			AlreadyResolved: true,
			Issue:           issue,
		}, nil
	}

	if len(issue.Images) == 0 {
		return nil, fmt.Errorf("issue %s: %w", issue.ID.Hex(), apperrors.ErrMissingBeforeImage)
	}
	beforeImage := issue.Images[0]

	verdict, err := g.verifier.Verify(ctx, beforeImage, afterImage)
	if err != nil {
		return nil, err
	}

	if !verdict.Resolved {
		g.log.Infow("verification rejected resolution",
			"issue", issue.ID.Hex(),
			"reason", verdict.Reason,
		)
		return &ResolutionResult{
			Stage:        StagePending,
			Verification: verdict,
			Issue:        issue,
		}, nil
	}

	notice := ResolutionNotice{
		IssueID:     issue.ID.Hex(),
		Title:       issue.Title,
		Description: issue.Description,
		Status:      string(models.Resolved),
		BeforeImage: beforeImage,
		AfterImage:  afterImage,
	}
	if reporter, rerr := g.users.GetByID(ctx, issue.Reporter); rerr == nil {
		notice.ReporterEmail = reporter.Email
		notice.ReporterUsername = reporter.Username
	} else {
		g.log.Warnw("reporter lookup failed, notifying without contact info",
			"issue", issue.ID.Hex(),
			"error", rerr,
		)
	}

	if err := g.notifier.NotifyResolved(ctx, notice); err != nil {
		return nil, err
	}

	updated, err := g.workflow.commitResolved(ctx, issue)
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			// A concurrent call got here first. If the issue is now
			// Resolved the outcome is the same; report it as such.
			current, gerr := g.issues.GetByID(ctx, issueID)
			if gerr == nil && current.Status == models.Resolved {
				return &ResolutionResult{
					Stage:           StageCommitted,
					Verification:    verdict,
					AlreadyResolved: true,
					Issue:           current,
				}, nil
			}
		}
		return nil, err
	}

	g.log.Infow("issue resolved",
		"issue", issue.ID.Hex(),
		"before", beforeImage,
		"after", afterImage,
	)
	return &ResolutionResult{
		Stage:        StageCommitted,
		Verification: verdict,
		Issue:        updated,
	}, nil
}
