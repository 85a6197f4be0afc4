package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IssueCategory enum
type IssueCategory string

const (
	Roads          IssueCategory = "Roads"
	Water          IssueCategory = "Water"
	Electricity    IssueCategory = "Electricity"
	Sanitation     IssueCategory = "Sanitation"
	PublicProperty IssueCategory = "Public Property"
	OtherCategory  IssueCategory = "Other"
)

// IssueStatus enum
type IssueStatus string

const (
	Reported   IssueStatus = "Reported"
	InProgress IssueStatus = "In Progress"
	Resolved   IssueStatus = "Resolved"
)

// IssuePriority enum
type IssuePriority string

const (
	Low      IssuePriority = "Low"
	Medium   IssuePriority = "Medium"
	High     IssuePriority = "High"
	Critical IssuePriority = "Critical"
)

// Location is a {lat, lng} coordinate pair
type Location struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// Issue represents a civic issue reported by a citizen.
// Revision is bumped on every patch; the resolution commit does a
// compare-and-swap on it to guard concurrent resolution attempts.
type Issue struct {
	ID                      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title                   string             `bson:"title" json:"title"`
	Description             string             `bson:"description" json:"description"`
	Location                Location           `bson:"location" json:"location"`
	Images                  []string           `bson:"images" json:"images"`
	Reporter                primitive.ObjectID `bson:"reporter" json:"reporter"`
	Status                  IssueStatus        `bson:"status" json:"status"`
	Area                    string             `bson:"area,omitempty" json:"area,omitempty"`
	Category                IssueCategory      `bson:"category" json:"category"`
	Priority                IssuePriority      `bson:"priority" json:"priority"`
	AssignedDepartment      string             `bson:"assignedDepartment,omitempty" json:"assignedDepartment,omitempty"`
	EstimatedResolutionTime string             `bson:"estimatedResolutionTime,omitempty" json:"estimatedResolutionTime,omitempty"`
	ResolutionNotes         string             `bson:"resolutionNotes,omitempty" json:"resolutionNotes,omitempty"`
	Revision                int64              `bson:"revision" json:"-"`
	CreatedAt               time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt               time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ValidIssueCategory reports whether s is one of the issue category values
func ValidIssueCategory(s string) bool {
	switch IssueCategory(s) {
	case Roads, Water, Electricity, Sanitation, PublicProperty, OtherCategory:
		return true
	}
	return false
}

// ValidIssueStatus reports whether s is one of the issue status values
func ValidIssueStatus(s string) bool {
	switch IssueStatus(s) {
	case Reported, InProgress, Resolved:
		return true
	}
	return false
}

// ValidIssuePriority reports whether s is one of the issue priority values
func ValidIssuePriority(s string) bool {
	switch IssuePriority(s) {
	case Low, Medium, High, Critical:
		return true
	}
	return false
}
