package capture

import (
	"time"

	"github.com/google/uuid"
)

type Direction string

const (
	DirectionEntry Direction = "entry"
	DirectionExit  Direction = "exit"
)

// EventPayload is what the external capture pipeline posts for every
// plate read at a location gate.
type EventPayload struct {
	SourceID    string                 `json:"source_id"`
	SourceModel string                 `json:"source_model,omitempty"`
	LocationID  uuid.UUID              `json:"location_id"`
	Plate       string                 `json:"plate"`
	Confidence  float64                `json:"confidence"`
	Direction   Direction              `json:"direction"`
	EventTime   time.Time              `json:"event_time"`
	ImageRef    string                 `json:"image_ref,omitempty"`
	RawPayload  map[string]interface{} `json:"raw_payload,omitempty"`
}

// Entry is an automatically captured entry/exit record.
type Entry struct {
	ID            int64      `json:"id"`
	VehicleRef    string     `json:"vehicle_ref"`
	EntryTime     time.Time  `json:"entry_time"`
	ExitTime      *time.Time `json:"exit_time,omitempty"`
	EntryImageRef string     `json:"entry_image_ref,omitempty"`
	ExitImageRef  string     `json:"exit_image_ref,omitempty"`
	LocationID    uuid.UUID  `json:"location_id"`
	CreatedAt     time.Time  `json:"created_at"`
}

type Filter struct {
	LocationID *uuid.UUID
	VehicleRef string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

type ProcessResult struct {
	EntryID    int64     `json:"entry_id"`
	VehicleRef string    `json:"vehicle_ref"`
	Direction  Direction `json:"direction"`
	Closed     bool      `json:"closed"`
}
