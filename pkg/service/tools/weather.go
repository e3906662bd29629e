package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/m-mizutani/gollem"

	"github.com/anglerlab/finbot/pkg/domain/model"
	"github.com/anglerlab/finbot/pkg/domain/types"
)

// Forecast day-count bounds (the free forecast tier covers five days)
const (
	minForecastDays = 1
	maxForecastDays = 5
)

// ErrLocationNotFound is returned by a ForecastProvider when the location is
// not in the provider's gazetteer. It maps to an UnsupportedInput failure,
// unlike other provider errors which map to ProviderUnavailable.
var ErrLocationNotFound = errors.New("location not found")

// ForecastPoint is one 3-hourly observation from the provider, in UTC
type ForecastPoint struct {
	Time        time.Time
	TempC       float64
	Conditions  string
	WindSpeedMS float64
	Humidity    float64
	RainMM      float64
}

// Forecast is the provider's raw multi-day forecast for a location
type Forecast struct {
	Location       string
	TimezoneOffset time.Duration
	Points         []ForecastPoint
}

// ForecastProvider fetches a raw forecast for a location. Implementations
// are external collaborators; only this contract matters to the orchestrator.
type ForecastProvider interface {
	Fetch(ctx context.Context, location string) (*Forecast, error)
}

// weatherTool turns a raw forecast into daily fishing-condition summaries
type weatherTool struct {
	provider ForecastProvider
	now      func() time.Time
}

// NewWeatherTool builds the get_fishing_weather tool over the given provider
func NewWeatherTool(provider ForecastProvider) *weatherTool {
	return &weatherTool{provider: provider, now: time.Now}
}

func (t *weatherTool) Name() types.ToolName {
	return types.ToolGetFishingWeather
}

func (t *weatherTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        types.ToolGetFishingWeather.String(),
		Description: "Get a multi-day weather forecast and fishing condition assessment for a Tasmania location.",
		Parameters: map[string]*gollem.Parameter{
			"location": {
				Type:        gollem.TypeString,
				Description: "Tasmania location name (e.g. 'Hobart', 'Port Sorell')",
				Required:    true,
			},
			"days": {
				Type:        gollem.TypeInteger,
				Description: "Number of days to forecast (1-5, default 5)",
				Required:    false,
			},
		},
	}
}

func (t *weatherTool) Invoke(ctx context.Context, params map[string]any) *model.ToolOutcome {
	location, err := extractString(params, "location")
	if err != nil {
		return model.NewToolFailure(t.Name(), types.FailureInvalidParameters, err.Error())
	}

	days, err := extractIntOr(params, "days", maxForecastDays)
	if err != nil {
		return model.NewToolFailure(t.Name(), types.FailureInvalidParameters, err.Error())
	}
	if days < minForecastDays {
		days = minForecastDays
	}
	if days > maxForecastDays {
		days = maxForecastDays
	}

	forecast, err := t.provider.Fetch(ctx, location)
	if err != nil {
		if errors.Is(err, ErrLocationNotFound) {
			return model.NewToolFailure(t.Name(), types.FailureUnsupportedInput,
				fmt.Sprintf("unknown location %q: the forecast provider only covers named Tasmania localities", location))
		}
		return model.NewToolFailure(t.Name(), types.FailureProviderUnavailable,
			"weather forecast is temporarily unavailable, please try again later")
	}

	daily := summarizeByDay(forecast, t.now().UTC(), days)
	if len(daily) == 0 {
		return model.NewToolFailure(t.Name(), types.FailureProviderUnavailable,
			"the forecast provider returned no usable data")
	}

	best := bestFishingDay(daily)

	forecasts := make([]map[string]any, len(daily))
	for i, d := range daily {
		forecasts[i] = d.toMap()
	}

	return model.NewToolSuccess(t.Name(), map[string]any{
		"location":      location,
		"forecast_days": len(daily),
		"forecasts":     forecasts,
		"best_fishing_day": map[string]any{
			"date":       best.Date,
			"score":      best.FishingScore,
			"rating":     scoreRating(best.FishingScore),
			"temp_c":     best.TempAvgC,
			"wind_kmh":   best.WindKMH,
			"rain_mm":    best.RainMM,
			"conditions": best.Conditions,
		},
		"recommendation": overallRecommendation(daily, best),
	})
}

// dailySummary aggregates the provider's 3-hourly points over one local date
type dailySummary struct {
	Date         string
	TempAvgC     float64
	TempMaxC     float64
	TempMinC     float64
	Conditions   string
	WindKMH      float64
	RainMM       float64
	Humidity     float64
	FishingScore int
}

func (d *dailySummary) toMap() map[string]any {
	return map[string]any{
		"date":             d.Date,
		"temp_avg_c":       d.TempAvgC,
		"temp_max_c":       d.TempMaxC,
		"temp_min_c":       d.TempMinC,
		"conditions":       d.Conditions,
		"wind_speed_kmh":   d.WindKMH,
		"rainfall_mm":      d.RainMM,
		"humidity_percent": d.Humidity,
		"fishing_score":    d.FishingScore,
	}
}

// summarizeByDay groups forecast points by local date, keeps today and later,
// and computes per-day fishing scores.
func summarizeByDay(forecast *Forecast, nowUTC time.Time, days int) []dailySummary {
	type accumulator struct {
		temps      []float64
		winds      []float64
		humidity   []float64
		conditions map[string]int
		rain       float64
	}

	byDate := map[string]*accumulator{}
	for _, p := range forecast.Points {
		local := p.Time.Add(forecast.TimezoneOffset)
		date := local.Format("2006-01-02")

		acc, ok := byDate[date]
		if !ok {
			acc = &accumulator{conditions: map[string]int{}}
			byDate[date] = acc
		}
		acc.temps = append(acc.temps, p.TempC)
		acc.winds = append(acc.winds, p.WindSpeedMS)
		acc.humidity = append(acc.humidity, p.Humidity)
		acc.conditions[p.Conditions]++
		acc.rain += p.RainMM
	}

	today := nowUTC.Add(forecast.TimezoneOffset).Format("2006-01-02")
	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		if date >= today {
			dates = append(dates, date)
		}
	}
	sort.Strings(dates)
	if len(dates) > days {
		dates = dates[:days]
	}

	summaries := make([]dailySummary, 0, len(dates))
	for _, date := range dates {
		acc := byDate[date]
		if len(acc.temps) == 0 {
			continue
		}

		d := dailySummary{
			Date:       date,
			TempAvgC:   round1(mean(acc.temps)),
			TempMaxC:   round1(maxOf(acc.temps)),
			TempMinC:   round1(minOf(acc.temps)),
			Conditions: mostCommon(acc.conditions),
			WindKMH:    round1(mean(acc.winds) * 3.6), // m/s -> km/h
			RainMM:     round1(acc.rain),
			Humidity:   round1(mean(acc.humidity)),
		}
		d.FishingScore = fishingScore(&d)
		summaries = append(summaries, d)
	}

	return summaries
}

// fishingScore rates a day 0 (worst) to 10 (best) from temperature, wind and
// rain bands.
func fishingScore(d *dailySummary) int {
	score := 0

	// Temperature (ideal: 10-25C)
	switch temp := d.TempAvgC; {
	case temp >= 10 && temp <= 25:
		score += 4
	case (temp >= 5 && temp < 10) || (temp > 25 && temp <= 30):
		score += 2
	case (temp >= 0 && temp < 5) || (temp > 30 && temp <= 35):
		score += 1
	}

	// Wind (ideal: < 15 km/h)
	switch wind := d.WindKMH; {
	case wind < 15:
		score += 3
	case wind < 25:
		score += 2
	case wind < 35:
		score += 1
	}

	// Rain (ideal: < 2 mm)
	switch rain := d.RainMM; {
	case rain < 2:
		score += 3
	case rain < 10:
		score += 2
	case rain < 20:
		score += 1
	}

	if score > 10 {
		score = 10
	}
	return score
}

func bestFishingDay(daily []dailySummary) *dailySummary {
	best := &daily[0]
	for i := range daily[1:] {
		if daily[i+1].FishingScore > best.FishingScore {
			best = &daily[i+1]
		}
	}
	return best
}

func scoreRating(score int) string {
	switch {
	case score >= 8:
		return "Excellent"
	case score >= 6:
		return "Good"
	case score >= 4:
		return "Fair"
	default:
		return "Poor"
	}
}

func overallRecommendation(daily []dailySummary, best *dailySummary) string {
	var total int
	for _, d := range daily {
		total += d.FishingScore
	}
	avg := float64(total) / float64(len(daily))

	var outlook string
	switch {
	case avg >= 7:
		outlook = "Great conditions ahead for fishing!"
	case avg >= 5:
		outlook = "Generally good conditions expected."
	case avg >= 3:
		outlook = "Mixed conditions throughout the period."
	default:
		outlook = "Challenging conditions expected."
	}

	return fmt.Sprintf("%s Best day: %s (%s)", outlook, best.Date, scoreRating(best.FishingScore))
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func mostCommon(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var best string
	bestCount := -1
	for _, k := range keys {
		if counts[k] > bestCount {
			best = k
			bestCount = counts[k]
		}
	}
	return best
}
