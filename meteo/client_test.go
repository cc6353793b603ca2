package meteo

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewClient(t *testing.T) {
	userAgent := "TestApp/1.0 (test@example.com)"
	client := NewClient(userAgent)

	if client == nil {
		t.Fatal("NewClient returned nil")
	}

	if client.userAgent != userAgent {
		t.Errorf("Expected user agent %q, got %q", userAgent, client.userAgent)
	}

	if client.baseURL != "https://api.open-meteo.com/v1/forecast" {
		t.Errorf("Expected default base URL, got %q", client.baseURL)
	}

	if client.maxRetries != 3 {
		t.Errorf("Expected 3 retries by default, got %d", client.maxRetries)
	}
}

func TestNewClientWithHTTPClient(t *testing.T) {
	httpClient := &http.Client{Timeout: 5 * time.Second}
	client := NewClientWithHTTPClient(httpClient, "TestApp/1.0")

	if client.httpClient != httpClient {
		t.Error("Custom HTTP client was not set")
	}
}

func TestBuildURL(t *testing.T) {
	client := NewClient("TestApp/1.0")
	client.SetBaseURL("https://api.example.com/v1/forecast")

	url, err := client.buildURL(QueryParams{
		Location: Location{Latitude: 55.30, Longitude: 66.60},
	})
	if err != nil {
		t.Fatalf("buildURL returned error: %v", err)
	}

	for _, want := range []string{
		"latitude=55.3",
		"longitude=66.6",
		"temperature_2m",
		"winddirection_10m",
		"visibility",
		"forecast_days=1",
		"timezone=auto",
	} {
		if !strings.Contains(url, want) {
			t.Errorf("URL %q missing %q", url, want)
		}
	}

	if strings.Contains(url, "temperature_950hPa") {
		t.Error("Upper-air variables should not be requested by default")
	}
}

func TestBuildURLUpperAir(t *testing.T) {
	client := NewClient("TestApp/1.0")

	url, err := client.buildURL(QueryParams{
		Location: Location{Latitude: 55.30, Longitude: 66.60},
		UpperAir: true,
	})
	if err != nil {
		t.Fatalf("buildURL returned error: %v", err)
	}

	for _, want := range []string{"temperature_950hPa", "winddirection_900hPa", "relativehumidity_975hPa"} {
		if !strings.Contains(url, want) {
			t.Errorf("URL %q missing upper-air variable %q", url, want)
		}
	}
}

func TestGetForecast(t *testing.T) {
	payload := Forecast{
		Latitude:  55.3,
		Longitude: 66.6,
		Elevation: 120,
		Hourly: &Hourly{
			Time:        []string{"2024-01-07T00:00", "2024-01-07T01:00"},
			Temperature: []*float64{Float64Ptr(-8.5), Float64Ptr(-9.1)},
			WindSpeed:   []*float64{Float64Ptr(4.2), Float64Ptr(5.0)},
		},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != "TestApp/1.0" {
			t.Errorf("Expected User-Agent header, got %q", ua)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(payload)
	}))
	defer server.Close()

	client := NewClient("TestApp/1.0")
	client.SetBaseURL(server.URL)

	forecast, err := client.GetForecast(QueryParams{
		Location: Location{Latitude: 55.3, Longitude: 66.6},
	})
	if err != nil {
		t.Fatalf("GetForecast returned error: %v", err)
	}

	if forecast.Hourly.Len() != 2 {
		t.Errorf("Expected 2 hourly entries, got %d", forecast.Hourly.Len())
	}
	if forecast.Elevation != 120 {
		t.Errorf("Expected elevation 120, got %v", forecast.Elevation)
	}
}

func TestGetForecastInvalidLocation(t *testing.T) {
	client := NewClient("TestApp/1.0")

	_, err := client.GetForecast(QueryParams{
		Location: Location{Latitude: 91, Longitude: 0},
	})
	if err == nil {
		t.Fatal("Expected error for invalid latitude")
	}
	if _, ok := err.(*ValidationError); !ok {
		t.Errorf("Expected *ValidationError, got %T", err)
	}
}

func TestGetForecastAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient("TestApp/1.0")
	client.SetBaseURL(server.URL)
	client.SetRetry(2, time.Millisecond)

	_, err := client.GetForecast(QueryParams{
		Location: Location{Latitude: 55.3, Longitude: 66.6},
	})
	if err == nil {
		t.Fatal("Expected error for 429 response")
	}

	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("Expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", apiErr.StatusCode)
	}
}

func TestGetForecastRetriesThenSucceeds(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			http.Error(w, "temporarily unavailable", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(Forecast{
			Hourly: &Hourly{Time: []string{"2024-01-07T00:00"}},
		})
	}))
	defer server.Close()

	client := NewClient("TestApp/1.0")
	client.SetBaseURL(server.URL)
	client.SetRetry(3, time.Millisecond)

	_, err := client.GetForecast(QueryParams{
		Location: Location{Latitude: 55.3, Longitude: 66.6},
	})
	if err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestGetForecastRejectsMisalignedArrays(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Forecast{
			Hourly: &Hourly{
				Time:        []string{"2024-01-07T00:00", "2024-01-07T01:00"},
				Temperature: []*float64{Float64Ptr(-8)},
			},
		})
	}))
	defer server.Close()

	client := NewClient("TestApp/1.0")
	client.SetBaseURL(server.URL)

	_, err := client.GetForecast(QueryParams{
		Location: Location{Latitude: 55.3, Longitude: 66.6},
	})
	if err == nil {
		t.Fatal("Expected error for misaligned hourly arrays")
	}
}

func TestGetElevation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"elevation":147.2}]}`))
	}))
	defer server.Close()

	ec := NewElevationClient(NewClient("TestApp/1.0"))
	ec.SetBaseURL(server.URL)

	elev, err := ec.GetElevation(Location{Latitude: 55.3, Longitude: 66.6})
	if err != nil {
		t.Fatalf("GetElevation returned error: %v", err)
	}
	if elev != 147.2 {
		t.Errorf("Expected elevation 147.2, got %v", elev)
	}
}

func TestGetElevationOrDefault(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient("TestApp/1.0")
	client.SetRetry(1, time.Millisecond)
	ec := NewElevationClient(client)
	ec.SetBaseURL(server.URL)

	if elev := ec.GetElevationOrDefault(Location{Latitude: 55.3, Longitude: 66.6}); elev != 0 {
		t.Errorf("Expected 0 m fallback, got %v", elev)
	}
}

func TestValidateLocation(t *testing.T) {
	tests := []struct {
		name        string
		location    Location
		expectError bool
	}{
		{"valid location", Location{Latitude: 55.30, Longitude: 66.60}, false},
		{"boundary latitude", Location{Latitude: 90, Longitude: 0}, false},
		{"latitude too high", Location{Latitude: 91, Longitude: 0}, true},
		{"latitude too low", Location{Latitude: -91, Longitude: 0}, true},
		{"longitude too high", Location{Latitude: 0, Longitude: 181}, true},
		{"longitude too low", Location{Latitude: 0, Longitude: -181}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLocation(tt.location)
			if tt.expectError && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}
