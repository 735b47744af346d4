package models

import "time"

const (
	MappingSourceSeed = "seed"
	MappingSourceFile = "file"
)

type CommunityMapping struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Aliases     []string  `json:"aliases,omitempty"`
	Communities []string  `json:"communities"`
	Source      string    `json:"source"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
