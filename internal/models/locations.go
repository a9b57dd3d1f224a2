// internal/models/locations.go
package models

// Region groups the districts a maintenance request can be located in.
// The set is fixed; requests store the district name.
type Region struct {
	Name      string   `json:"name"`
	Districts []string `json:"districts"`
}

var LebanonRegions = []Region{
	{Name: "Beirut", Districts: []string{"Beirut"}},
	{Name: "Mount Lebanon", Districts: []string{"Baabda", "Matn", "Chouf", "Aley", "Keserwan", "Jbeil"}},
	{Name: "North Lebanon", Districts: []string{"Tripoli", "Zgharta", "Bsharri", "Batroun", "Koura", "Minieh-Danniyeh"}},
	{Name: "Akkar", Districts: []string{"Akkar"}},
	{Name: "Beqaa", Districts: []string{"Zahle", "Rashaya", "West Beqaa"}},
	{Name: "Baalbek-Hermel", Districts: []string{"Baalbek", "Hermel"}},
	{Name: "South Lebanon", Districts: []string{"Sidon", "Jezzine", "Tyre"}},
	{Name: "Nabatieh", Districts: []string{"Nabatieh", "Marjeyoun", "Hasbaya", "Bint Jbeil"}},
}

// ValidLocation reports whether the district exists in the fixed set.
func ValidLocation(district string) bool {
	for _, r := range LebanonRegions {
		for _, d := range r.Districts {
			if d == district {
				return true
			}
		}
	}
	return false
}

// LocationDisplay returns the human-readable form of a stored
// location. District codes equal their labels, so unknown or empty
// values pass through unchanged.
func LocationDisplay(district string) string {
	return district
}
