// Package fixtures holds the immutable demo data served by the API: the
// police roster, the tourist itinerary, safe zones and front-end screens.
//
// Every accessor returns a deep copy.
package fixtures

import (
	"slices"
	"strings"

	"github.com/okian/safetravel/internal/domain/model"
)

// DashboardTouristID is the tourist signed in on the tourist dashboard.
const DashboardTouristID = "1"

var itinerary = []model.ItineraryStop{
	{
		ID:          1,
		Destination: "Tawang Monastery",
		Description: "Ancient Buddhist monastery with stunning mountain views",
		Time:        "9:00 AM - 12:00 PM",
		Date:        "Day 1 - Today",
		Status:      model.StopCompleted,
		Coordinates: "27.5858° N, 91.8656° E",
		SafetyNotes: "Well-monitored tourist zone with local guides available",
	},
	{
		ID:          2,
		Destination: "Sela Pass",
		Description: "High altitude mountain pass with pristine lakes",
		Time:        "2:00 PM - 5:00 PM",
		Date:        "Day 1 - Today",
		Status:      model.StopCurrent,
		Coordinates: "27.3669° N, 92.0635° E",
		SafetyNotes: "Weather dependent - carry warm clothing",
	},
	{
		ID:          3,
		Destination: "Bomdila View Point",
		Description: "Panoramic views of the Himalayas and valleys below",
		Time:        "10:00 AM - 1:00 PM",
		Date:        "Day 2 - Tomorrow",
		Status:      model.StopUpcoming,
		Coordinates: "27.2378° N, 92.4158° E",
		SafetyNotes: "Designated safe zone with emergency facilities",
	},
	{
		ID:          4,
		Destination: "Kaziranga National Park",
		Description: "Famous wildlife sanctuary and UNESCO World Heritage site",
		Time:        "8:00 AM - 6:00 PM",
		Date:        "Day 3",
		Status:      model.StopUpcoming,
		Coordinates: "26.5775° N, 93.1714° E",
		SafetyNotes: "Guided safari tours only - follow park guidelines",
	},
	{
		ID:          5,
		Destination: "Majuli Island",
		Description: "World's largest river island with unique culture",
		Time:        "9:00 AM - 4:00 PM",
		Date:        "Day 4",
		Status:      model.StopUpcoming,
		Coordinates: "26.9510° N, 94.2224° E",
		SafetyNotes: "Ferry crossing required - life jackets mandatory",
	},
}

var roster = []model.Tourist{
	{
		ID:              "1",
		Name:            "John Doe",
		BlockchainID:    "BC1234567890ABC",
		Status:          model.StatusAlert,
		ContactNumber:   "+91 98765 43210",
		LastSeen:        "2 minutes ago",
		CurrentLocation: "Sela Pass",
		IDType:          "Aadhaar",
		IDNumber:        "****-****-1234",
		TripStartDate:   "2024-01-15",
		TripEndDate:     "2024-01-22",
		Latitude:        27.5858,
		Longitude:       91.8656,
		EmergencyContacts: []model.EmergencyContact{
			{Name: "Jane Doe", Phone: "+91 98765 43211", Relation: "Family"},
			{Name: "Tourist Helpline", Phone: "+91 98765 43212", Relation: "Official"},
		},
		Itinerary: itinerary,
	},
	{
		ID:              "2",
		Name:            "Alice Smith",
		BlockchainID:    "BC2345678901DEF",
		Status:          model.StatusSafe,
		ContactNumber:   "+91 98765 43213",
		LastSeen:        "5 minutes ago",
		CurrentLocation: "Tawang Monastery",
		IDType:          "Passport",
		IDNumber:        "A1234567",
		Latitude:        27.5900,
		Longitude:       91.8600,
		EmergencyContacts: []model.EmergencyContact{
			{Name: "Bob Smith", Phone: "+91 98765 43214"},
		},
		Itinerary: []model.ItineraryStop{
			{ID: 1, Destination: "Tawang Monastery", Time: "10:00 AM", Status: model.StopCurrent},
		},
	},
	{
		ID:              "3",
		Name:            "Robert Johnson",
		BlockchainID:    "BC3456789012GHI",
		Status:          model.StatusSafe,
		ContactNumber:   "+91 98765 43215",
		LastSeen:        "1 minute ago",
		CurrentLocation: "Bomdila View Point",
		IDType:          "Aadhaar",
		IDNumber:        "****-****-5678",
		Latitude:        27.2378,
		Longitude:       92.4158,
		EmergencyContacts: []model.EmergencyContact{
			{Name: "Mary Johnson", Phone: "+91 98765 43216"},
		},
		Itinerary: []model.ItineraryStop{
			{ID: 1, Destination: "Bomdila View Point", Time: "11:00 AM", Status: model.StopCurrent},
		},
	},
	{
		ID:              "4",
		Name:            "Emily Davis",
		BlockchainID:    "BC4567890123JKL",
		Status:          model.StatusInactive,
		ContactNumber:   "+91 98765 43217",
		LastSeen:        "30 minutes ago",
		CurrentLocation: "Kaziranga National Park",
		IDType:          "Passport",
		IDNumber:        "B9876543",
		Latitude:        26.5775,
		Longitude:       93.1714,
		EmergencyContacts: []model.EmergencyContact{
			{Name: "David Davis", Phone: "+91 98765 43218"},
		},
		Itinerary: []model.ItineraryStop{
			{ID: 1, Destination: "Kaziranga National Park", Time: "8:00 AM", Status: model.StopCurrent},
		},
	},
}

var zones = []model.SafeZone{
	{Name: "Tawang Monastery Zone", Latitude: 27.5900, Longitude: 91.8600, RadiusKM: 2},
	{Name: "Sela Pass Zone", Latitude: 27.3669, Longitude: 92.0635, RadiusKM: 1.5},
	{Name: "Bomdila Zone", Latitude: 27.2378, Longitude: 92.4158, RadiusKM: 3},
}

var screens = []model.Screen{
	{ID: "home", Path: "/"},
	{ID: "tourist-auth", Path: "/tourist"},
	{ID: "tourist-dashboard", Path: "/tourist/dashboard"},
	{ID: "tourist-profile", Path: "/tourist/profile"},
	{ID: "tourist-itinerary", Path: "/tourist/itinerary"},
	{ID: "police", Path: "/police"},
}

// Roster returns every tourist in fixture order.
func Roster() []model.Tourist {
	out := make([]model.Tourist, len(roster))
	for i := range roster {
		out[i] = clone(roster[i])
	}
	return out
}

// Tourist returns the tourist with the given id.
func Tourist(id string) (model.Tourist, bool) {
	for i := range roster {
		if roster[i].ID == id {
			return clone(roster[i]), true
		}
	}
	return model.Tourist{}, false
}

// Search filters the roster by a case-insensitive match on name or
// blockchain id. Tourists on alert come first; fixture order is otherwise
// kept. An empty query matches everyone.
func Search(q string) []model.Tourist {
	return Rank(Roster(), q)
}

// Rank filters and orders an arbitrary tourist list the way Search does.
func Rank(in []model.Tourist, q string) []model.Tourist {
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]model.Tourist, 0, len(in))
	for _, t := range in {
		if q == "" ||
			strings.Contains(strings.ToLower(t.Name), q) ||
			strings.Contains(strings.ToLower(t.BlockchainID), q) {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, func(a, b model.Tourist) int {
		return alertRank(a) - alertRank(b)
	})
	return out
}

// Itinerary returns the dashboard tourist's trip plan.
func Itinerary() []model.ItineraryStop {
	return slices.Clone(itinerary)
}

// SafeZones returns the zones drawn on the police map.
func SafeZones() []model.SafeZone {
	return slices.Clone(zones)
}

// Screens returns the front-end navigation destinations.
func Screens() []model.Screen {
	return slices.Clone(screens)
}

// Screen looks a screen up by id.
func Screen(id string) (model.Screen, bool) {
	i := slices.IndexFunc(screens, func(s model.Screen) bool { return s.ID == id })
	if i < 0 {
		return model.Screen{}, false
	}
	return screens[i], true
}

func alertRank(t model.Tourist) int {
	if t.Status == model.StatusAlert {
		return 0
	}
	return 1
}

func clone(t model.Tourist) model.Tourist {
	t.EmergencyContacts = slices.Clone(t.EmergencyContacts)
	t.Itinerary = slices.Clone(t.Itinerary)
	return t
}
