package stores

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicpulse-be/apperrors"
	"civicpulse-be/models"
)

// In-memory store implementations with the same contracts as the Mongo
// ones. They back the package tests and any deployment without a database.

// MemoryIssueStore implements IssueStore over a map
type MemoryIssueStore struct {
	mu     sync.RWMutex
	issues map[primitive.ObjectID]models.Issue
}

func NewMemoryIssueStore() *MemoryIssueStore {
	return &MemoryIssueStore{issues: make(map[primitive.ObjectID]models.Issue)}
}

func (s *MemoryIssueStore) Insert(_ context.Context, issue *models.Issue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	s.issues[issue.ID] = cloneIssue(*issue)
	return nil
}

func (s *MemoryIssueStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	issue, ok := s.issues[id]
	if !ok {
		return nil, fmt.Errorf("issue %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	issue = cloneIssue(issue)
	return &issue, nil
}

func (s *MemoryIssueStore) List(_ context.Context, f IssueFilter) ([]models.Issue, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []models.Issue{}
	for _, issue := range s.issues {
		if f.Category != "" && f.Category != "all" && string(issue.Category) != f.Category {
			continue
		}
		if f.Status != "" && f.Status != "all" && string(issue.Status) != f.Status {
			continue
		}
		if f.Area != "" && f.Area != "all" && issue.Area != f.Area {
			continue
		}
		if f.Search != "" {
			needle := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(issue.Title), needle) &&
				!strings.Contains(strings.ToLower(issue.Description), needle) {
				continue
			}
		}
		matched = append(matched, cloneIssue(issue))
	}

	sortIssues(matched, f.Sort)

	total := int64(len(matched))

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 || limit > 100 {
		limit = 10
	}
	start := (page - 1) * limit
	if start >= len(matched) {
		return []models.Issue{}, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (s *MemoryIssueStore) ListByReporter(_ context.Context, reporter primitive.ObjectID) ([]models.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []models.Issue{}
	for _, issue := range s.issues {
		if issue.Reporter == reporter {
			matched = append(matched, cloneIssue(issue))
		}
	}
	sortIssues(matched, "newest")
	return matched, nil
}

func (s *MemoryIssueStore) ListUnresolved(_ context.Context) ([]models.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []models.Issue{}
	for _, issue := range s.issues {
		if issue.Status != models.Resolved {
			matched = append(matched, cloneIssue(issue))
		}
	}
	sortIssues(matched, "newest")
	return matched, nil
}

func (s *MemoryIssueStore) ListRecent(_ context.Context, limit int) ([]models.Issue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []models.Issue{}
	for _, issue := range s.issues {
		matched = append(matched, cloneIssue(issue))
	}
	sortIssues(matched, "newest")
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *MemoryIssueStore) Patch(_ context.Context, id primitive.ObjectID, p IssuePatch) (*models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.patchLocked(id, nil, p)
}

func (s *MemoryIssueStore) PatchIfRevision(_ context.Context, id primitive.ObjectID, revision int64, p IssuePatch) (*models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.patchLocked(id, &revision, p)
}

func (s *MemoryIssueStore) patchLocked(id primitive.ObjectID, revision *int64, p IssuePatch) (*models.Issue, error) {
	issue, ok := s.issues[id]
	if !ok {
		return nil, fmt.Errorf("issue %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	if revision != nil && issue.Revision != *revision {
		return nil, fmt.Errorf("issue %s revision changed: %w", id.Hex(), apperrors.ErrConflict)
	}

	if p.Status != nil {
		issue.Status = *p.Status
	}
	if p.Priority != nil {
		issue.Priority = *p.Priority
	}
	if p.Area != nil {
		issue.Area = *p.Area
	}
	if p.AssignedDepartment != nil {
		issue.AssignedDepartment = *p.AssignedDepartment
	}
	if p.EstimatedResolutionTime != nil {
		issue.EstimatedResolutionTime = *p.EstimatedResolutionTime
	}
	if p.ResolutionNotes != nil {
		issue.ResolutionNotes = *p.ResolutionNotes
	}
	issue.Revision++
	issue.UpdatedAt = time.Now()

	s.issues[id] = cloneIssue(issue)
	issue = cloneIssue(issue)
	return &issue, nil
}

func (s *MemoryIssueStore) CountByCategory(_ context.Context) ([]CategoryCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byCategory := map[string]int64{}
	for _, issue := range s.issues {
		byCategory[string(issue.Category)]++
	}
	counts := []CategoryCount{}
	for name, value := range byCategory {
		counts = append(counts, CategoryCount{Name: name, Value: value})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Name < counts[j].Name })
	return counts, nil
}

func (s *MemoryIssueStore) CountByStatus(_ context.Context) ([]StatusCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byStatus := map[string]int64{}
	for _, issue := range s.issues {
		byStatus[string(issue.Status)]++
	}
	counts := []StatusCount{}
	for status, count := range byStatus {
		counts = append(counts, StatusCount{Status: status, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Status < counts[j].Status })
	return counts, nil
}

func (s *MemoryIssueStore) CountCreatedBetween(_ context.Context, from, to time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, issue := range s.issues {
		if !issue.CreatedAt.Before(from) && issue.CreatedAt.Before(to) {
			count++
		}
	}
	return count, nil
}

func cloneIssue(issue models.Issue) models.Issue {
	images := make([]string, len(issue.Images))
	copy(images, issue.Images)
	issue.Images = images
	return issue
}

func sortIssues(issues []models.Issue, order string) {
	sort.Slice(issues, func(i, j int) bool {
		if order == "oldest" {
			return issues[i].CreatedAt.Before(issues[j].CreatedAt)
		}
		return issues[i].CreatedAt.After(issues[j].CreatedAt)
	})
}

// MemoryInfrastructureStore implements InfrastructureStore over a map
type MemoryInfrastructureStore struct {
	mu       sync.RWMutex
	projects map[primitive.ObjectID]models.Infrastructure
}

func NewMemoryInfrastructureStore() *MemoryInfrastructureStore {
	return &MemoryInfrastructureStore{projects: make(map[primitive.ObjectID]models.Infrastructure)}
}

func (s *MemoryInfrastructureStore) Insert(_ context.Context, project *models.Infrastructure) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if project.ID.IsZero() {
		project.ID = primitive.NewObjectID()
	}
	s.projects[project.ID] = *project
	return nil
}

func (s *MemoryInfrastructureStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.Infrastructure, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	project, ok := s.projects[id]
	if !ok {
		return nil, fmt.Errorf("infrastructure project %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	return &project, nil
}

func (s *MemoryInfrastructureStore) List(_ context.Context) ([]models.Infrastructure, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	projects := []models.Infrastructure{}
	for _, project := range s.projects {
		projects = append(projects, project)
	}
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})
	return projects, nil
}

func (s *MemoryInfrastructureStore) Patch(_ context.Context, id primitive.ObjectID, p InfrastructurePatch) (*models.Infrastructure, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	project, ok := s.projects[id]
	if !ok {
		return nil, fmt.Errorf("infrastructure project %s: %w", id.Hex(), apperrors.ErrNotFound)
	}

	if p.Name != nil {
		project.Name = *p.Name
	}
	if p.Type != nil {
		project.Type = *p.Type
	}
	if p.Description != nil {
		project.Description = *p.Description
	}
	if p.Location != nil {
		project.Location = *p.Location
	}
	if p.Area != nil {
		project.Area = *p.Area
	}
	if p.Status != nil {
		project.Status = *p.Status
	}
	if p.Budget != nil {
		project.Budget = p.Budget
	}
	if p.EstimatedCompletion != nil {
		project.EstimatedCompletion = p.EstimatedCompletion
	}
	if p.Contractor != nil {
		project.Contractor = *p.Contractor
	}
	if p.Progress != nil {
		project.Progress = *p.Progress
	}
	if p.Notes != nil {
		project.Notes = *p.Notes
	}
	project.UpdatedAt = time.Now()

	s.projects[id] = project
	return &project, nil
}

func (s *MemoryInfrastructureStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[id]; !ok {
		return fmt.Errorf("infrastructure project %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	delete(s.projects, id)
	return nil
}

// MemoryUserStore implements UserStore over a map
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[primitive.ObjectID]models.User)}
}

func (s *MemoryUserStore) Insert(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return fmt.Errorf("email or username already exists: %w", apperrors.ErrConflict)
		}
	}

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	s.users[user.ID] = *user
	return nil
}

func (s *MemoryUserStore) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id.Hex(), apperrors.ErrNotFound)
	}
	return &user, nil
}

func (s *MemoryUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user %s: %w", email, apperrors.ErrNotFound)
}
