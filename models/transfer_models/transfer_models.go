package transfer_models

import "strings"

// Airport is a fixed pickup/dropoff airport entry.
type Airport struct {
	Code        string   `json:"code"`
	Name        string   `json:"name"`
	City        string   `json:"city"`
	Country     string   `json:"country"`
	Coordinates *LatLng  `json:"coordinates,omitempty"`
}

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Destination is a named dropoff point. Distances are tabulated per area.
type Destination struct {
	Name string `json:"name"`
	Area string `json:"area"`
	Type string `json:"type"` // city, beach, attraction, hill-country, wildlife, nature
}

// Extra is an optional or included add-on service.
type Extra struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	PriceUSD         float64 `json:"price_usd"`
	IsIncluded       bool    `json:"is_included"`
	RequiresQuantity bool    `json:"requires_quantity"`
	Icon             string  `json:"icon"`
}

// Airports covered by the transfer service. Only the international airports
// carry coordinates; the rest rely on the named route table.
var Airports = []Airport{
	{Code: "CMB", Name: "Bandaranaike International Airport", City: "Colombo", Country: "Sri Lanka", Coordinates: &LatLng{Lat: 7.1808, Lng: 79.8841}},
	{Code: "JAF", Name: "Jaffna International Airport", City: "Jaffna", Country: "Sri Lanka", Coordinates: &LatLng{Lat: 9.7923, Lng: 80.0700}},
	{Code: "HRI", Name: "Mattala Rajapaksa International Airport", City: "Hambantota", Country: "Sri Lanka", Coordinates: &LatLng{Lat: 6.2846, Lng: 81.1241}},
	{Code: "RML", Name: "Ratmalana Airport", City: "Colombo", Country: "Sri Lanka"},
	{Code: "BTC", Name: "Batticaloa Airport", City: "Batticaloa", Country: "Sri Lanka"},
	{Code: "TRR", Name: "China Bay Airport", City: "Trincomalee", Country: "Sri Lanka"},
}

var Destinations = []Destination{
	{Name: "Colombo City Center", Area: "Colombo", Type: "city"},
	{Name: "Colombo Fort", Area: "Colombo", Type: "city"},
	{Name: "Negombo Beach", Area: "Negombo", Type: "beach"},
	{Name: "Negombo City", Area: "Negombo", Type: "city"},
	{Name: "Kandy City", Area: "Kandy", Type: "city"},
	{Name: "Temple of the Tooth", Area: "Kandy", Type: "attraction"},
	{Name: "Galle Fort", Area: "Galle", Type: "attraction"},
	{Name: "Unawatuna Beach", Area: "Galle", Type: "beach"},
	{Name: "Bentota Beach", Area: "Bentota", Type: "beach"},
	{Name: "Hikkaduwa Beach", Area: "Hikkaduwa", Type: "beach"},
	{Name: "Mirissa Beach", Area: "Mirissa", Type: "beach"},
	{Name: "Tangalle Beach", Area: "Tangalle", Type: "beach"},
	{Name: "Ella Town", Area: "Ella", Type: "hill-country"},
	{Name: "Nine Arch Bridge", Area: "Ella", Type: "attraction"},
	{Name: "Nuwara Eliya", Area: "Nuwara Eliya", Type: "hill-country"},
	{Name: "Sigiriya Rock Fortress", Area: "Sigiriya", Type: "attraction"},
	{Name: "Dambulla Cave Temple", Area: "Dambulla", Type: "attraction"},
	{Name: "Polonnaruwa Ancient City", Area: "Polonnaruwa", Type: "attraction"},
	{Name: "Anuradhapura Ancient City", Area: "Anuradhapura", Type: "attraction"},
	{Name: "Yala National Park", Area: "Yala", Type: "wildlife"},
	{Name: "Udawalawe National Park", Area: "Udawalawe", Type: "wildlife"},
	{Name: "Arugam Bay", Area: "Arugam Bay", Type: "beach"},
	{Name: "Trincomalee", Area: "Trincomalee", Type: "beach"},
	{Name: "Jaffna City", Area: "Jaffna", Type: "city"},
	{Name: "Pasikuda Beach", Area: "Batticaloa", Type: "beach"},
	{Name: "Hambantota", Area: "Hambantota", Type: "city"},
	{Name: "Kalpitiya", Area: "Kalpitiya", Type: "beach"},
}

// RouteDistances holds pre-measured road distances in km from CMB airport,
// keyed by normalized destination area. These are preferred over great-circle
// estimates because they reflect actual roads.
var RouteDistances = map[string]float64{
	"colombo":      35,
	"negombo":      10,
	"kandy":        120,
	"galle":        150,
	"bentota":      95,
	"hikkaduwa":    120,
	"mirissa":      165,
	"tangalle":     210,
	"ella":         250,
	"nuwara-eliya": 180,
	"sigiriya":     175,
	"dambulla":     155,
	"polonnaruwa":  200,
	"anuradhapura": 195,
	"yala":         280,
	"udawalawe":    195,
	"arugam-bay":   320,
	"trincomalee":  275,
	"jaffna":       400,
	"hambantota":   260,
	"kalpitiya":    130,
	"pasikuda":     310,
}

// TransferExtras is the add-on catalogue. Meet & greet ships with every
// transfer and cannot be deselected; child seats are priced per seat.
var TransferExtras = []Extra{
	{ID: "meet-greet", Name: "Meet & Greet", PriceUSD: 0, IsIncluded: true, Icon: "UserCheck"},
	{ID: "child-seat", Name: "Child Seat", PriceUSD: 5, RequiresQuantity: true, Icon: "Baby"},
	{ID: "wifi", Name: "In-car WiFi", PriceUSD: 8, Icon: "Wifi"},
	{ID: "flower-garland", Name: "Welcome Flower Garland", PriceUSD: 15, Icon: "Flower2"},
	{ID: "water", Name: "Bottled Water", PriceUSD: 3, Icon: "Droplets"},
	{ID: "sim-card", Name: "Tourist SIM Card", PriceUSD: 10, Icon: "Smartphone"},
	{ID: "porter", Name: "Porter Service", PriceUSD: 5, Icon: "Luggage"},
	{ID: "fast-track", Name: "Airport Fast Track", PriceUSD: 20, Icon: "Zap"},
}

// NormalizeArea converts a destination area to its route-table key.
func NormalizeArea(area string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(area)), " ", "-")
}

// FindAirport looks an airport up by its IATA code.
func FindAirport(code string) (Airport, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, a := range Airports {
		if a.Code == code {
			return a, true
		}
	}
	return Airport{}, false
}

// FindExtra looks an extra up by id.
func FindExtra(id string) (Extra, bool) {
	for _, e := range TransferExtras {
		if e.ID == id {
			return e, true
		}
	}
	return Extra{}, false
}

// SearchAirports filters airports by code, name or city. An empty query
// returns the full list.
func SearchAirports(query string) []Airport {
	if query == "" {
		return Airports
	}
	q := strings.ToLower(query)
	var out []Airport
	for _, a := range Airports {
		if strings.Contains(strings.ToLower(a.Code), q) ||
			strings.Contains(strings.ToLower(a.Name), q) ||
			strings.Contains(strings.ToLower(a.City), q) {
			out = append(out, a)
		}
	}
	return out
}

// SearchDestinations filters destinations by name or area. Queries shorter
// than two characters return the head of the list.
func SearchDestinations(query string) []Destination {
	if len(query) < 2 {
		if len(Destinations) > 10 {
			return Destinations[:10]
		}
		return Destinations
	}
	q := strings.ToLower(query)
	var out []Destination
	for _, d := range Destinations {
		if strings.Contains(strings.ToLower(d.Name), q) || strings.Contains(strings.ToLower(d.Area), q) {
			out = append(out, d)
			if len(out) == 10 {
				break
			}
		}
	}
	return out
}
