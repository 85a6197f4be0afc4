// Package services holds the issue lifecycle logic: the status workflow
// engine and the resolution verification gateway.
package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"civicpulse-be/apperrors"
	"civicpulse-be/models"
	"civicpulse-be/stores"
)

// StatusExtras are the optional fields a government user can set alongside
// a status change
type StatusExtras struct {
	AssignedDepartment      *string
	EstimatedResolutionTime *string
	ResolutionNotes         *string
	Priority                *models.IssuePriority
}

// StatusWorkflow owns the valid-transition rules for issue status.
// Role checks happen at the API boundary, not here.
type StatusWorkflow struct {
	issues stores.IssueStore
	log    *zap.SugaredLogger
}

func NewStatusWorkflow(issues stores.IssueStore, log *zap.SugaredLogger) *StatusWorkflow {
	return &StatusWorkflow{issues: issues, log: log}
}

// UpdateStatus moves an issue to newStatus and merges extras into the record.
// Resolved is not reachable through this path: that transition is gated on
// image verification and only the resolution gateway may commit it.
func (w *StatusWorkflow) UpdateStatus(ctx context.Context, issueID primitive.ObjectID, newStatus models.IssueStatus, extras StatusExtras) (*models.Issue, error) {
	if !models.ValidIssueStatus(string(newStatus)) {
		return nil, fmt.Errorf("status %q: %w", newStatus, apperrors.ErrValidation)
	}
	if newStatus == models.Resolved {
		return nil, fmt.Errorf("status can only reach Resolved through verification: %w", apperrors.ErrInvalidTransition)
	}
	if extras.Priority != nil && !models.ValidIssuePriority(string(*extras.Priority)) {
		return nil, fmt.Errorf("priority %q: %w", *extras.Priority, apperrors.ErrValidation)
	}

	issue, err := w.issues.GetByID(ctx, issueID)
	if err != nil {
		return nil, err
	}

	patch := stores.IssuePatch{
		Status:                  &newStatus,
		Priority:                extras.Priority,
		AssignedDepartment:      extras.AssignedDepartment,
		EstimatedResolutionTime: extras.EstimatedResolutionTime,
		ResolutionNotes:         extras.ResolutionNotes,
	}

	updated, err := w.issues.Patch(ctx, issue.ID, patch)
	if err != nil {
		return nil, err
	}

	w.log.Infow("issue status updated",
		"issue", issue.ID.Hex(),
		"from", issue.Status,
		"to", newStatus,
	)
	return updated, nil
}

// commitResolved writes the Resolved status after verification and
// notification have succeeded. The revision check guards against a
// concurrent resolution of the same issue.
func (w *StatusWorkflow) commitResolved(ctx context.Context, issue *models.Issue) (*models.Issue, error) {
	status := models.Resolved
	return w.issues.PatchIfRevision(ctx, issue.ID, issue.Revision, stores.IssuePatch{Status: &status})
}
