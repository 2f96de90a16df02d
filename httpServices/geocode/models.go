package httpServices

// Result is the geocoder output for one address.
type Result struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// searchResult mirrors one entry of a Nominatim-style /search response,
// which encodes coordinates as strings.
type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}
