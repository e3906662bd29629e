package tools_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/anglerlab/finbot/pkg/domain/types"
	"github.com/anglerlab/finbot/pkg/service/tools"
)

// fakeProvider serves a canned forecast without network access
type fakeProvider struct {
	forecast *tools.Forecast
	err      error
}

func (p *fakeProvider) Fetch(ctx context.Context, location string) (*tools.Forecast, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.forecast, nil
}

// idealForecast builds n days of perfect fishing weather starting today
func idealForecast(location string, days int) *tools.Forecast {
	f := &tools.Forecast{
		Location:       location,
		TimezoneOffset: 10 * time.Hour, // AEST
	}
	base := time.Now().UTC().Truncate(24 * time.Hour)
	for day := 0; day < days; day++ {
		for hour := 0; hour < 24; hour += 3 {
			f.Points = append(f.Points, tools.ForecastPoint{
				Time:        base.Add(time.Duration(day)*24*time.Hour + time.Duration(hour)*time.Hour),
				TempC:       15,
				Conditions:  "clear sky",
				WindSpeedMS: 2, // 7.2 km/h
				Humidity:    60,
				RainMM:      0,
			})
		}
	}
	return f
}

func TestWeatherIdealConditions(t *testing.T) {
	tool := tools.NewWeatherTool(&fakeProvider{forecast: idealForecast("Hobart", 5)})

	outcome := tool.Invoke(context.Background(), map[string]any{"location": "Hobart"})

	gt.Bool(t, outcome.OK()).True()
	gt.Value(t, outcome.Data["location"]).Equal(any("Hobart"))

	forecasts, ok := outcome.Data["forecasts"].([]map[string]any)
	gt.Bool(t, ok).True()
	gt.Number(t, len(forecasts)).GreaterOrEqual(4)

	// Temp 15C (4) + wind 7.2km/h (3) + rain 0mm (3) = 10
	gt.Value(t, forecasts[0]["fishing_score"]).Equal(any(10))
	gt.Value(t, forecasts[0]["conditions"]).Equal(any("clear sky"))

	best, ok := outcome.Data["best_fishing_day"].(map[string]any)
	gt.Bool(t, ok).True()
	gt.Value(t, best["rating"]).Equal(any("Excellent"))

	recommendation, ok := outcome.Data["recommendation"].(string)
	gt.Bool(t, ok).True()
	gt.String(t, recommendation).Contains("Best day:")
}

func TestWeatherDayClamping(t *testing.T) {
	tool := tools.NewWeatherTool(&fakeProvider{forecast: idealForecast("Hobart", 5)})

	outcome := tool.Invoke(context.Background(), map[string]any{
		"location": "Hobart",
		"days":     99,
	})
	gt.Bool(t, outcome.OK()).True()
	gt.Number(t, outcome.Data["forecast_days"].(int)).LessOrEqual(5)

	outcome = tool.Invoke(context.Background(), map[string]any{
		"location": "Hobart",
		"days":     -2,
	})
	gt.Bool(t, outcome.OK()).True()
	gt.Value(t, outcome.Data["forecast_days"]).Equal(any(1))
}

func TestWeatherPoorConditionsScore(t *testing.T) {
	// Zero offset keeps all points on one local date
	f := &tools.Forecast{
		Location:       "Hobart",
		TimezoneOffset: 0,
	}
	base := time.Now().UTC().Add(24 * time.Hour).Truncate(24 * time.Hour)
	for hour := 0; hour < 24; hour += 3 {
		f.Points = append(f.Points, tools.ForecastPoint{
			Time:        base.Add(time.Duration(hour) * time.Hour),
			TempC:       -2, // out of every band
			Conditions:  "heavy snow",
			WindSpeedMS: 12, // 43.2 km/h, out of every band
			Humidity:    90,
			RainMM:      3, // 24mm over the day, out of every band
		})
	}

	tool := tools.NewWeatherTool(&fakeProvider{forecast: f})
	outcome := tool.Invoke(context.Background(), map[string]any{"location": "Hobart"})

	gt.Bool(t, outcome.OK()).True()
	forecasts := outcome.Data["forecasts"].([]map[string]any)
	gt.Array(t, forecasts).Length(1)
	gt.Value(t, forecasts[0]["fishing_score"]).Equal(any(0))

	best := outcome.Data["best_fishing_day"].(map[string]any)
	gt.Value(t, best["rating"]).Equal(any("Poor"))
}

func TestWeatherUnknownLocation(t *testing.T) {
	tool := tools.NewWeatherTool(&fakeProvider{
		err: goerr.Wrap(tools.ErrLocationNotFound, "no such place"),
	})

	outcome := tool.Invoke(context.Background(), map[string]any{"location": "Atlantis"})

	gt.Bool(t, outcome.OK()).False()
	gt.Value(t, outcome.Failure.Kind).Equal(types.FailureUnsupportedInput)
	gt.String(t, outcome.Failure.Message).Contains("Atlantis")
}

func TestWeatherProviderDown(t *testing.T) {
	tool := tools.NewWeatherTool(&fakeProvider{err: errors.New("connection refused")})

	outcome := tool.Invoke(context.Background(), map[string]any{"location": "Hobart"})

	gt.Bool(t, outcome.OK()).False()
	gt.Value(t, outcome.Failure.Kind).Equal(types.FailureProviderUnavailable)
}

func TestWeatherMissingLocation(t *testing.T) {
	tool := tools.NewWeatherTool(&fakeProvider{forecast: idealForecast("Hobart", 5)})

	outcome := tool.Invoke(context.Background(), map[string]any{})

	gt.Bool(t, outcome.OK()).False()
	gt.Value(t, outcome.Failure.Kind).Equal(types.FailureInvalidParameters)
}

func TestWeatherEmptyForecast(t *testing.T) {
	tool := tools.NewWeatherTool(&fakeProvider{forecast: &tools.Forecast{Location: "Hobart"}})

	outcome := tool.Invoke(context.Background(), map[string]any{"location": "Hobart"})

	gt.Bool(t, outcome.OK()).False()
	gt.Value(t, outcome.Failure.Kind).Equal(types.FailureProviderUnavailable)
}
