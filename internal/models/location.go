package models

import "time"

type LocationUpdate struct {
	Latitude  float64
	Longitude float64
	Address   *string
}

type UserLocation struct {
	ID                string     `json:"id"`
	Latitude          *float64   `json:"latitude"`
	Longitude         *float64   `json:"longitude"`
	Address           *string    `json:"address"`
	LocationUpdatedAt *time.Time `json:"locationUpdatedAt"`
}

type OperatorLocation struct {
	ID                string           `json:"id"`
	FirstName         string           `json:"firstName"`
	LastName          string           `json:"lastName"`
	Phone             *string          `json:"phone"`
	AvatarURL         *string          `json:"avatarUrl"`
	Latitude          float64          `json:"latitude"`
	Longitude         float64          `json:"longitude"`
	Address           *string          `json:"address"`
	LocationUpdatedAt *time.Time       `json:"locationUpdatedAt"`
	AssignedMachines  []MachineSummary `json:"assignedMachines"`
}
