package storage

import (
	"time"
)

// Survey is the metadata of a stored site survey.
type Survey struct {
	ID        int64
	CreatedAt time.Time
	Title     string
	FloorPlan *string // Path of the floor-plan image, if recorded
	Config    *string // Serialized render configuration, if recorded
	Rows      int     // Number of stored measurement rows
}
