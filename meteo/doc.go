// Package meteo provides a Go client for the Open-Meteo forecast API and the
// sanitized hourly weather series the rest of the planner consumes.
//
// The provider returns hourly data as parallel arrays (one array per variable,
// all the same length as the time array). Individual entries may be null, so
// the raw arrays are decoded into []*float64 and converted to complete
// Sample values through Hourly.SampleAt, which substitutes documented default
// values for anything missing. That conversion is the single place where
// missing provider data is papered over; downstream packages always see
// complete samples.
//
// Basic Usage:
//
//	client := meteo.NewClient("YourApp/1.0 (your-email@example.com)")
//
//	forecast, err := client.GetForecast(meteo.QueryParams{
//		Location:     meteo.Location{Latitude: 55.30, Longitude: 66.60},
//		ForecastDays: 1,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for i := 0; i < forecast.Hourly.Len(); i++ {
//		s := forecast.Hourly.SampleAt(i)
//		fmt.Printf("%s  %.1f°C  wind %.1f m/s\n", s.Time, s.Temperature, s.WindSpeed)
//	}
//
// The client retries failed requests with a linearly growing delay and returns
// typed errors (APIError, ValidationError) for HTTP and input failures.
package meteo
