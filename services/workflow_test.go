package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"civicpulse-be/apperrors"
	"civicpulse-be/models"
	"civicpulse-be/stores"
)

func newTestWorkflow(t *testing.T) (*StatusWorkflow, *stores.MemoryIssueStore) {
	t.Helper()
	issues := stores.NewMemoryIssueStore()
	return NewStatusWorkflow(issues, zap.NewNop().Sugar()), issues
}

func seedIssue(t *testing.T, issues *stores.MemoryIssueStore, images ...string) *models.Issue {
	t.Helper()
	issue := &models.Issue{
		Title:       "Broken streetlight",
		Description: "Streetlight out on Main St",
		Location:    models.Location{Lat: 12.97, Lng: 77.59},
		Images:      images,
		Reporter:    primitive.NewObjectID(),
		Status:      models.Reported,
		Category:    models.Electricity,
		Priority:    models.Medium,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	require.NoError(t, issues.Insert(context.Background(), issue))
	return issue
}

func TestUpdateStatusMergesExtras(t *testing.T) {
	workflow, issues := newTestWorkflow(t)
	issue := seedIssue(t, issues, "img1.jpg")

	dept := "Electrical Department"
	eta := "3 days"
	priority := models.High

	updated, err := workflow.UpdateStatus(context.Background(), issue.ID, models.InProgress, StatusExtras{
		AssignedDepartment:      &dept,
		EstimatedResolutionTime: &eta,
		Priority:                &priority,
	})
	require.NoError(t, err)
	require.Equal(t, models.InProgress, updated.Status)
	require.Equal(t, "Electrical Department", updated.AssignedDepartment)
	require.Equal(t, "3 days", updated.EstimatedResolutionTime)
	require.Equal(t, models.High, updated.Priority)

	// Untouched fields survive the patch.
	require.Equal(t, issue.Title, updated.Title)
	require.Equal(t, issue.Images, updated.Images)
}

func TestUpdateStatusBackToReported(t *testing.T) {
	workflow, issues := newTestWorkflow(t)
	issue := seedIssue(t, issues)

	_, err := workflow.UpdateStatus(context.Background(), issue.ID, models.InProgress, StatusExtras{})
	require.NoError(t, err)

	updated, err := workflow.UpdateStatus(context.Background(), issue.ID, models.Reported, StatusExtras{})
	require.NoError(t, err)
	require.Equal(t, models.Reported, updated.Status)
}

func TestUpdateStatusRejectsDirectResolved(t *testing.T) {
	workflow, issues := newTestWorkflow(t)
	issue := seedIssue(t, issues, "img1.jpg")

	_, err := workflow.UpdateStatus(context.Background(), issue.ID, models.Resolved, StatusExtras{})
	require.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	// Status must be unchanged after the rejected transition.
	stored, err := issues.GetByID(context.Background(), issue.ID)
	require.NoError(t, err)
	require.Equal(t, models.Reported, stored.Status)
}

func TestUpdateStatusUnknownStatus(t *testing.T) {
	workflow, issues := newTestWorkflow(t)
	issue := seedIssue(t, issues)

	_, err := workflow.UpdateStatus(context.Background(), issue.ID, "Closed", StatusExtras{})
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestUpdateStatusInvalidPriority(t *testing.T) {
	workflow, issues := newTestWorkflow(t)
	issue := seedIssue(t, issues)

	bad := models.IssuePriority("Urgent")
	_, err := workflow.UpdateStatus(context.Background(), issue.ID, models.InProgress, StatusExtras{Priority: &bad})
	require.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestUpdateStatusUnknownIssue(t *testing.T) {
	workflow, _ := newTestWorkflow(t)

	_, err := workflow.UpdateStatus(context.Background(), primitive.NewObjectID(), models.InProgress, StatusExtras{})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
