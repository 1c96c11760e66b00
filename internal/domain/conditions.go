package domain

// Region-wide weather condition reported by a weather provider.
type WeatherCondition string

const (
	WeatherSunny   WeatherCondition = "Sunny"
	WeatherRainy   WeatherCondition = "Rainy"
	WeatherUnknown WeatherCondition = "Unknown"
)

const (
	SunnyMultiplier = 1.0
	RainyMultiplier = 1.2
)

// Weather pairs a condition with the travel-time multiplier it implies.
type Weather struct {
	Condition  WeatherCondition
	Multiplier float64
}

// DefaultWeather is the safe value used whenever a lookup fails.
func DefaultWeather() Weather {
	return Weather{Condition: WeatherSunny, Multiplier: SunnyMultiplier}
}

// ParseWeather maps a condition name to its Weather. Unknown names report ok=false.
func ParseWeather(name string) (Weather, bool) {
	switch WeatherCondition(name) {
	case WeatherSunny:
		return Weather{Condition: WeatherSunny, Multiplier: SunnyMultiplier}, true
	case WeatherRainy:
		return Weather{Condition: WeatherRainy, Multiplier: RainyMultiplier}, true
	default:
		return Weather{}, false
	}
}

// Traffic state of a single directed arc.
type TrafficStatus string

const (
	TrafficNormal TrafficStatus = "Normal"
	TrafficJam    TrafficStatus = "Traffic Jam"
)

const (
	NormalTrafficMultiplier = 1.0
	JamTrafficMultiplier    = 1.3
)
