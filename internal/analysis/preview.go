package analysis

import "churnboard/domain/customer"

// Preview returns the first n rows of the view, or all of them when fewer.
func Preview(view customer.View, n int) []customer.Record {
	if n < 0 {
		n = 0
	}
	if n > view.Len() {
		n = view.Len()
	}
	return append([]customer.Record{}, view.Records[:n]...)
}

// Location is a city marker on the customer locations map.
type Location struct {
	City      string  `json:"city"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Locations is the fixed marker set; the dataset carries no geography.
func Locations() []Location {
	return []Location{
		{City: "Kolkata", Latitude: 22.5726, Longitude: 88.3639},
		{City: "Delhi", Latitude: 28.7041, Longitude: 77.1025},
		{City: "Mumbai", Latitude: 19.0760, Longitude: 72.8777},
		{City: "Chennai", Latitude: 13.0827, Longitude: 80.2707},
		{City: "Bhopal", Latitude: 23.2599, Longitude: 77.4126},
	}
}
