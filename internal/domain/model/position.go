package model

import "time"

// PositionSample is one simulated location reading.
type PositionSample struct {
	Seq        uint64    `json:"seq"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Label      string    `json:"label"`
	CapturedAt time.Time `json:"captured_at"`
	Simulated  bool      `json:"simulated"`
}
