package domain

import (
	"errors"
	"fmt"
)

var ErrLocationNotFound = errors.New("location not found")

// Coordinates is a WGS-84/GCJ-02 point expressed as longitude, latitude.
type Coordinates struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// String renders the point in the "lng,lat" form the vendors accept.
func (c Coordinates) String() string {
	return fmt.Sprintf("%f,%f", c.Lng, c.Lat)
}

// Location is a geocoded place. ID is a vendor location id when the source
// provides one.
type Location struct {
	Name        string      `json:"name"`
	ID          string      `json:"id,omitempty"`
	Coordinates Coordinates `json:"coordinates"`
	Source      string      `json:"source"`
}
