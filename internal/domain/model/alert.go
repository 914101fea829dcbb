package model

import "time"

// Alert is an emergency raised by a committed panic button hold.
type Alert struct {
	ID           string         `json:"id"`
	TouristID    string         `json:"tourist_id"`
	TouristName  string         `json:"tourist_name"`
	SessionID    string         `json:"session_id"`
	Position     PositionSample `json:"position"`
	Message      string         `json:"message"`
	RaisedAt     time.Time      `json:"raised_at"`
	DispatchedAt time.Time      `json:"dispatched_at,omitzero"`
	Unit         string         `json:"unit,omitempty"`
}

// Notification is a toast shown to the tourist.
type Notification struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	AlertID     string    `json:"alert_id"`
	At          time.Time `json:"at"`
}
