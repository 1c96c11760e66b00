package weather

import (
	"context"
	"dynamic-route-service/internal/domain"
	"dynamic-route-service/internal/platform/httpretry"
	"dynamic-route-service/internal/platform/obs"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type currentResponse struct {
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
}

// OpenWeatherClient reads current conditions from the OpenWeatherMap API.
// Only "Rain" maps to rainy weather; every other condition is treated as sunny.
type OpenWeatherClient struct {
	http    *httpretry.Client
	apiKey  string
	baseURL string
}

func NewOpenWeatherClient(apiKey, baseURL string) (*OpenWeatherClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("openweather api key is empty")
	}
	if baseURL == "" {
		baseURL = "https://api.openweathermap.org/data/2.5"
	}
	return &OpenWeatherClient{
		http:    httpretry.New(5 * time.Second),
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (c *OpenWeatherClient) CurrentWeather(ctx context.Context, region string) (_ domain.Weather, err error) {
	defer obs.Time(ctx, "openweather.CurrentWeather")(&err)

	region = strings.TrimSpace(region)
	if region == "" {
		return domain.Weather{}, errors.New("current weather: region must be non-empty")
	}

	q := url.Values{}
	q.Set("q", region)
	q.Set("appid", c.apiKey)
	endpoint := c.baseURL + "/weather?" + q.Encode()

	resp, err := c.http.Do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		return domain.Weather{}, fmt.Errorf("current weather %q: %w", region, err)
	}
	defer resp.Body.Close()

	var cr currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return domain.Weather{}, fmt.Errorf("current weather %q: decode response: %w", region, err)
	}
	if len(cr.Weather) == 0 {
		return domain.Weather{}, fmt.Errorf("current weather %q: response has no conditions", region)
	}

	if cr.Weather[0].Main == "Rain" {
		return domain.Weather{Condition: domain.WeatherRainy, Multiplier: domain.RainyMultiplier}, nil
	}
	return domain.DefaultWeather(), nil
}
