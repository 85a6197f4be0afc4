package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InfrastructureType enum
type InfrastructureType string

const (
	Road            InfrastructureType = "Road"
	Bridge          InfrastructureType = "Bridge"
	Building        InfrastructureType = "Building"
	Park            InfrastructureType = "Park"
	WaterSystem     InfrastructureType = "Water System"
	ElectricityGrid InfrastructureType = "Electricity Grid"
	SewageSystem    InfrastructureType = "Sewage System"
	OtherType       InfrastructureType = "Other"
)

// InfrastructureStatus enum
type InfrastructureStatus string

const (
	Planned             InfrastructureStatus = "Planned"
	UnderConstruction   InfrastructureStatus = "Under Construction"
	Completed           InfrastructureStatus = "Completed"
	MaintenanceRequired InfrastructureStatus = "Maintenance Required"
	OutOfService        InfrastructureStatus = "Out of Service"
)

// Infrastructure represents a government-managed public-works project
type Infrastructure struct {
	ID                  primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name                string               `bson:"name" json:"name"`
	Type                InfrastructureType   `bson:"type" json:"type"`
	Description         string               `bson:"description" json:"description"`
	Location            Location             `bson:"location" json:"location"`
	Area                string               `bson:"area" json:"area"`
	Status              InfrastructureStatus `bson:"status" json:"status"`
	Budget              *float64             `bson:"budget,omitempty" json:"budget,omitempty"`
	EstimatedCompletion *time.Time           `bson:"estimatedCompletion,omitempty" json:"estimatedCompletion,omitempty"`
	Contractor          string               `bson:"contractor,omitempty" json:"contractor,omitempty"`
	Progress            int                  `bson:"progress" json:"progress"`
	Notes               string               `bson:"notes,omitempty" json:"notes,omitempty"`
	Images              []string             `bson:"images" json:"images"`
	CreatedBy           primitive.ObjectID   `bson:"createdBy" json:"createdBy"`
	CreatedAt           time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// ValidInfrastructureType reports whether s is one of the asset type values
func ValidInfrastructureType(s string) bool {
	switch InfrastructureType(s) {
	case Road, Bridge, Building, Park, WaterSystem, ElectricityGrid, SewageSystem, OtherType:
		return true
	}
	return false
}

// ValidInfrastructureStatus reports whether s is one of the project status values
func ValidInfrastructureStatus(s string) bool {
	switch InfrastructureStatus(s) {
	case Planned, UnderConstruction, Completed, MaintenanceRequired, OutOfService:
		return true
	}
	return false
}
