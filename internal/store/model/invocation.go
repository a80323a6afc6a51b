package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Invocation status values.
const (
	InvocationSuccess = "success"
	InvocationFailure = "failure"
)

// Invocation is one orchestrated call, recorded after the outcome settles.
type Invocation struct {
	ID         uuid.UUID      `gorm:"primaryKey;type:uuid"`
	PolicyName string         `gorm:"column:policy_name;not null"`
	Provider   Provider       `gorm:"column:provider;not null"`
	Target     string         `gorm:"column:target;not null"`
	Status     string         `gorm:"column:status;not null"`
	ErrorKind  string         `gorm:"column:error_kind"`
	LatencyMs  int64          `gorm:"column:latency_ms"`
	Payload    datatypes.JSON `gorm:"column:payload;type:jsonb;serializer:json"`
	CreateTime time.Time      `gorm:"column:create_time;autoCreateTime"`
}

type InvocationList []Invocation
