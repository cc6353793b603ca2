package meteo

import (
	"encoding/json"
	"fmt"
)

// ElevationClient queries the OpenTopoData SRTM90m dataset for surface
// elevation at a coordinate.
type ElevationClient struct {
	client *Client
}

// NewElevationClient creates an elevation client sharing the forecast
// client's HTTP transport and retry behavior.
func NewElevationClient(c *Client) *ElevationClient {
	ec := &ElevationClient{client: &Client{
		httpClient: c.httpClient,
		baseURL:    "https://api.opentopodata.org/v1/srtm90m",
		userAgent:  c.userAgent,
		maxRetries: c.maxRetries,
		retryDelay: c.retryDelay,
	}}
	return ec
}

// SetBaseURL sets the base URL for the elevation API (useful for testing).
func (ec *ElevationClient) SetBaseURL(baseURL string) {
	ec.client.baseURL = baseURL
}

type elevationResponse struct {
	Results []struct {
		Elevation *float64 `json:"elevation"`
	} `json:"results"`
}

// GetElevation returns the surface elevation in meters at the coordinate.
func (ec *ElevationClient) GetElevation(loc Location) (float64, error) {
	if err := ValidateLocation(loc); err != nil {
		return 0, err
	}

	reqURL := fmt.Sprintf("%s?locations=%s,%s",
		ec.client.baseURL,
		formatFloat(loc.Latitude),
		formatFloat(loc.Longitude))

	body, err := ec.client.getWithRetry(reqURL)
	if err != nil {
		return 0, err
	}

	var resp elevationResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("failed to unmarshal elevation response: %w", err)
	}

	if len(resp.Results) == 0 || resp.Results[0].Elevation == nil {
		return 0, &APIError{StatusCode: 200, Message: "no elevation result in response"}
	}

	return *resp.Results[0].Elevation, nil
}

// GetElevationOrDefault returns the surface elevation, falling back to 0 m
// (sea level) when the service is unavailable. Flat-terrain planning with a
// zero elevation is the documented degraded mode.
func (ec *ElevationClient) GetElevationOrDefault(loc Location) float64 {
	elev, err := ec.GetElevation(loc)
	if err != nil {
		return 0
	}
	return elev
}
