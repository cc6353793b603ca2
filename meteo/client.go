package meteo

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Hourly variables requested for every forecast.
var surfaceVariables = []string{
	"temperature_2m",
	"relativehumidity_2m",
	"dewpoint_2m",
	"windspeed_10m",
	"winddirection_10m",
	"surface_pressure",
	"precipitation",
	"precipitation_probability",
	"visibility",
	"cloudcover",
}

// Additional pressure-level variables requested when QueryParams.UpperAir is set.
var upperAirVariables = []string{
	"temperature_975hPa", "temperature_950hPa", "temperature_925hPa", "temperature_900hPa",
	"windspeed_975hPa", "windspeed_950hPa", "windspeed_925hPa", "windspeed_900hPa",
	"winddirection_975hPa", "winddirection_950hPa", "winddirection_925hPa", "winddirection_900hPa",
	"relativehumidity_975hPa", "relativehumidity_950hPa", "relativehumidity_925hPa", "relativehumidity_900hPa",
}

// Client represents a client for the Open-Meteo forecast API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	maxRetries int
	retryDelay time.Duration
}

// NewClient creates a new Open-Meteo client with default retry behavior
// (3 attempts, 1 s base delay growing linearly per attempt).
func NewClient(userAgent string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:    "https://api.open-meteo.com/v1/forecast",
		userAgent:  userAgent,
		maxRetries: 3,
		retryDelay: time.Second,
	}
}

// NewClientWithHTTPClient creates a new client with a custom HTTP client.
func NewClientWithHTTPClient(httpClient *http.Client, userAgent string) *Client {
	c := NewClient(userAgent)
	c.httpClient = httpClient
	return c
}

// SetBaseURL sets the base URL for the API (useful for testing).
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// SetRetry overrides the retry count and base delay.
func (c *Client) SetRetry(maxRetries int, retryDelay time.Duration) {
	c.maxRetries = maxRetries
	c.retryDelay = retryDelay
}

// GetForecast retrieves hourly forecast data for the specified location.
// The hourly arrays are length-validated before the forecast is returned.
func (c *Client) GetForecast(params QueryParams) (*Forecast, error) {
	if err := ValidateLocation(params.Location); err != nil {
		return nil, err
	}

	reqURL, err := c.buildURL(params)
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}

	body, err := c.getWithRetry(reqURL)
	if err != nil {
		return nil, err
	}

	var forecast Forecast
	if err := json.Unmarshal(body, &forecast); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if err := forecast.Hourly.Validate(); err != nil {
		return nil, fmt.Errorf("invalid forecast payload: %w", err)
	}

	return &forecast, nil
}

// getWithRetry performs a GET request, retrying failed attempts with a
// linearly growing delay (delay * attempt). A non-2xx status on the final
// attempt surfaces as an APIError, transport failures as a NetworkError.
func (c *Client) getWithRetry(reqURL string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if attempt > 1 {
			time.Sleep(c.retryDelay * time.Duration(attempt-1))
		}

		body, err := c.get(reqURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
	}

	if _, ok := lastErr.(*APIError); ok {
		return nil, lastErr
	}
	return nil, &NetworkError{Operation: "forecast request", Err: lastErr}
}

func (c *Client) get(reqURL string) ([]byte, error) {
	req, err := http.NewRequest("GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}

// buildURL constructs the API URL with query parameters.
func (c *Client) buildURL(params QueryParams) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}

	variables := surfaceVariables
	if params.UpperAir {
		variables = append(append([]string{}, surfaceVariables...), upperAirVariables...)
	}

	days := params.ForecastDays
	if days <= 0 {
		days = 1
	}

	query := u.Query()
	query.Set("latitude", formatFloat(params.Location.Latitude))
	query.Set("longitude", formatFloat(params.Location.Longitude))
	query.Set("hourly", strings.Join(variables, ","))
	query.Set("timezone", "auto")
	query.Set("forecast_days", strconv.Itoa(days))

	u.RawQuery = query.Encode()
	return u.String(), nil
}

// formatFloat formats a float64 to a string with appropriate precision.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
