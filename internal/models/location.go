package models

import "fmt"

// Location represents a geographical location with latitude and longitude coordinates.
type Location struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lon float64 `bson:"lon" json:"lon"`
}

// Coordinates renders the location as a "lat,lon" string for display and exports.
func (l Location) Coordinates() string {
	return fmt.Sprintf("%.6f,%.6f", l.Lat, l.Lon)
}
