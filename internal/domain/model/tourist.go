package model

// TouristStatus is the safety status shown on the police roster.
type TouristStatus string

// Tourist statuses.
const (
	StatusSafe     TouristStatus = "safe"
	StatusAlert    TouristStatus = "alert"
	StatusInactive TouristStatus = "inactive"
)

// StopStatus is the progress of an itinerary stop.
type StopStatus string

// Itinerary stop statuses.
const (
	StopCompleted StopStatus = "completed"
	StopCurrent   StopStatus = "current"
	StopUpcoming  StopStatus = "upcoming"
)

// EmergencyContact is someone to call on the tourist's behalf.
type EmergencyContact struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Relation string `json:"relation,omitempty"`
}

// ItineraryStop is one planned destination.
type ItineraryStop struct {
	ID          int        `json:"id"`
	Destination string     `json:"destination"`
	Description string     `json:"description,omitempty"`
	Time        string     `json:"time"`
	Date        string     `json:"date,omitempty"`
	Status      StopStatus `json:"status"`
	Coordinates string     `json:"coordinates,omitempty"`
	SafetyNotes string     `json:"safety_notes,omitempty"`
}

// Tourist is a registered visitor. Fixture data only.
type Tourist struct {
	ID                string             `json:"id"`
	Name              string             `json:"name"`
	BlockchainID      string             `json:"blockchain_id"`
	Status            TouristStatus      `json:"status"`
	ContactNumber     string             `json:"contact_number"`
	LastSeen          string             `json:"last_seen"`
	CurrentLocation   string             `json:"current_location"`
	IDType            string             `json:"id_type"`
	IDNumber          string             `json:"id_number"`
	TripStartDate     string             `json:"trip_start_date,omitempty"`
	TripEndDate       string             `json:"trip_end_date,omitempty"`
	Latitude          float64            `json:"latitude"`
	Longitude         float64            `json:"longitude"`
	EmergencyContacts []EmergencyContact `json:"emergency_contacts"`
	Itinerary         []ItineraryStop    `json:"itinerary"`
}

// SafeZone is a geo-fenced area drawn on the police map.
type SafeZone struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	RadiusKM  float64 `json:"radius_km"`
}

// Screen is a navigation destination of the front end.
type Screen struct {
	ID   string `json:"id"`
	Path string `json:"path"`
}
