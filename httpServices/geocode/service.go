package httpServices

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrNoMatch is returned when the geocoder has no result for an address.
// Callers treat any error from this client as best-effort: order creation
// proceeds with null coordinates.
var ErrNoMatch = errors.New("geocoder: no match for address")

type GeocodeClient struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(baseURL string) *GeocodeClient {
	return &GeocodeClient{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Lookup geocodes a free-text address, optionally narrowed by city.
func (c *GeocodeClient) Lookup(address string, city string) (*Result, error) {
	if c.baseURL == "" {
		return nil, errors.New("geocoder base URL is not configured")
	}

	query := address
	if city != "" {
		query = address + ", " + city
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")

	httpReq, err := http.NewRequest("GET", c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("geocoder API returned non-OK status: " + resp.Status)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNoMatch
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("geocoder returned invalid latitude %q: %w", results[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("geocoder returned invalid longitude %q: %w", results[0].Lon, err)
	}

	return &Result{Lat: lat, Lng: lng}, nil
}
