package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/anglerlab/finbot/pkg/utils/safe"
)

// DefaultWeatherBaseURL is the OpenWeatherMap 5-day forecast API
const DefaultWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

// OpenWeatherMapProvider implements ForecastProvider against the
// OpenWeatherMap 3-hourly forecast endpoint.
type OpenWeatherMapProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewOpenWeatherMapProvider builds a provider. The API key is required; the
// base URL falls back to the public endpoint when empty.
func NewOpenWeatherMapProvider(baseURL, apiKey string) (*OpenWeatherMapProvider, error) {
	if apiKey == "" {
		return nil, goerr.New("weather API key is required")
	}
	if baseURL == "" {
		baseURL = DefaultWeatherBaseURL
	}
	return &OpenWeatherMapProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// forecastResponse mirrors the subset of the OpenWeatherMap forecast payload
// the tool consumes.
type forecastResponse struct {
	City struct {
		Timezone int `json:"timezone"` // offset from UTC in seconds
	} `json:"city"`
	List []struct {
		DT   int64 `json:"dt"`
		Main struct {
			Temp     float64 `json:"temp"`
			Humidity float64 `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Rain struct {
			ThreeHours float64 `json:"3h"`
		} `json:"rain"`
	} `json:"list"`
}

// Fetch retrieves the raw forecast for a Tasmania location. An unknown
// location maps to ErrLocationNotFound; everything else is a provider fault.
func (p *OpenWeatherMapProvider) Fetch(ctx context.Context, location string) (*Forecast, error) {
	endpoint := fmt.Sprintf("%s/forecast", p.baseURL)

	query := url.Values{}
	query.Set("q", fmt.Sprintf("%s,Tasmania,AU", location))
	query.Set("appid", p.apiKey)
	query.Set("units", "metric")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build forecast request")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "forecast request failed", goerr.V("location", location))
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return nil, goerr.Wrap(ErrLocationNotFound, "forecast provider does not know the location",
			goerr.V("location", location))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, goerr.New("forecast provider returned an error",
			goerr.V("status", resp.StatusCode), goerr.V("location", location))
	}

	var payload forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, goerr.Wrap(err, "failed to decode forecast response")
	}

	forecast := &Forecast{
		Location:       location,
		TimezoneOffset: time.Duration(payload.City.Timezone) * time.Second,
		Points:         make([]ForecastPoint, 0, len(payload.List)),
	}
	for _, item := range payload.List {
		point := ForecastPoint{
			Time:        time.Unix(item.DT, 0).UTC(),
			TempC:       item.Main.Temp,
			WindSpeedMS: item.Wind.Speed,
			Humidity:    item.Main.Humidity,
			RainMM:      item.Rain.ThreeHours,
		}
		if len(item.Weather) > 0 {
			point.Conditions = item.Weather[0].Description
		}
		forecast.Points = append(forecast.Points, point)
	}

	return forecast, nil
}
