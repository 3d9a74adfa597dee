package models

// Accepted values for enumerated document attributes. The serialization
// boundary validates against these lists; the core never sees anything
// else.

var Activities = []string{
	"skitouring",
	"snow_ice_mixed",
	"mountain_climbing",
	"rock_climbing",
	"ice_climbing",
	"hiking",
	"snowshoeing",
	"paragliding",
	"mountain_biking",
	"via_ferrata",
}

var WaypointTypes = []string{
	"summit",
	"pass",
	"lake",
	"waterfall",
	"cave",
	"bivouac",
	"hut",
	"gite",
	"camp_site",
	"access",
	"climbing_outdoor",
}

// IsActivity reports whether s is an accepted route activity.
func IsActivity(s string) bool {
	return contains(Activities, s)
}

// IsWaypointType reports whether s is an accepted waypoint type.
func IsWaypointType(s string) bool {
	return contains(WaypointTypes, s)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
