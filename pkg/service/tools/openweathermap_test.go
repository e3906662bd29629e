package tools_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/anglerlab/finbot/pkg/service/tools"
)

func TestOpenWeatherMapFetch(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gt.Value(t, r.URL.Path).Equal("/forecast")
		gt.Value(t, r.URL.Query().Get("units")).Equal("metric")
		gt.Value(t, r.URL.Query().Get("appid")).Equal("test-key")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"city": {"timezone": 36000},
			"list": [
				{
					"dt": 1756000800,
					"main": {"temp": 14.2, "humidity": 65},
					"weather": [{"description": "light rain"}],
					"wind": {"speed": 3.4},
					"rain": {"3h": 0.8}
				},
				{
					"dt": 1756011600,
					"main": {"temp": 16.0, "humidity": 58},
					"weather": [{"description": "clear sky"}],
					"wind": {"speed": 2.1}
				}
			]
		}`))
	}))
	defer srv.Close()

	provider, err := tools.NewOpenWeatherMapProvider(srv.URL, "test-key")
	gt.NoError(t, err).Required()

	forecast, err := provider.Fetch(context.Background(), "Hobart")
	gt.NoError(t, err).Required()

	gt.Value(t, gotQuery).Equal("Hobart,Tasmania,AU")
	gt.Value(t, forecast.Location).Equal("Hobart")
	gt.Value(t, forecast.TimezoneOffset).Equal(10 * time.Hour)
	gt.Array(t, forecast.Points).Length(2)

	gt.Value(t, forecast.Points[0].TempC).Equal(14.2)
	gt.Value(t, forecast.Points[0].Conditions).Equal("light rain")
	gt.Value(t, forecast.Points[0].WindSpeedMS).Equal(3.4)
	gt.Value(t, forecast.Points[0].RainMM).Equal(0.8)

	// Missing rain block defaults to zero
	gt.Value(t, forecast.Points[1].RainMM).Equal(0.0)
}

func TestOpenWeatherMapLocationNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"cod": "404", "message": "city not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	provider, err := tools.NewOpenWeatherMapProvider(srv.URL, "test-key")
	gt.NoError(t, err).Required()

	_, err = provider.Fetch(context.Background(), "Atlantis")
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, tools.ErrLocationNotFound)).True()
}

func TestOpenWeatherMapServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	provider, err := tools.NewOpenWeatherMapProvider(srv.URL, "test-key")
	gt.NoError(t, err).Required()

	_, err = provider.Fetch(context.Background(), "Hobart")
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, tools.ErrLocationNotFound)).False()
}

func TestOpenWeatherMapRequiresAPIKey(t *testing.T) {
	_, err := tools.NewOpenWeatherMapProvider("", "")
	gt.Error(t, err)
}
