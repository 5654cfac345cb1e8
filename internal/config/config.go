package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config aggregates every runtime tunable. Values not present in the config
// file fall back to the defaults below, which match the reference hardware.
type Config struct {
	Port     string
	LogLevel string
	DBPath   string

	Weather WeatherConfig
	Notify  NotifyConfig
	Care    CareConfig
	Sensors SensorConfig
	Shade   ShadeConfig
}

// WeatherConfig configures the forecast upstream.
type WeatherConfig struct {
	BaseURL         string
	APIKey          string
	Latitude        string
	Longitude       string
	Units           string
	RefreshInterval time.Duration
	RequestTimeout  time.Duration
	Retries         int
	RetryDelay      time.Duration
	StaleAfter      time.Duration
}

// NotifyConfig configures the webhook notification sink.
type NotifyConfig struct {
	WebhookURL     string
	Retries        int
	RetryDelay     time.Duration
	RequestTimeout time.Duration
}

// CareConfig holds the decision thresholds and timing of the control engine.
type CareConfig struct {
	DryThreshold            int
	WetThreshold            int
	TargetThreshold         int
	CriticalThreshold       int
	SafeSkipThreshold       int
	PreventiveSkipThreshold int
	Rain3hSkipMm            float64
	Rain6hSkipMm            float64
	LuxHighThreshold        float64

	MinWateringInterval time.Duration
	MaxWateringDuration time.Duration
	TickInterval        time.Duration
	StatusInterval      time.Duration
	LuxCheckInterval    time.Duration
}

// SensorConfig holds calibration and plausibility bounds for the inputs.
type SensorConfig struct {
	SoilDryRaw       int
	SoilWetRaw       int
	SoilPlausibleMin int
	SoilPlausibleMax int
	RainThreshold    int
	RainDebounce     time.Duration
	LuxPlausibleMax  float64
}

// ShadeConfig holds the servo travel parameters.
type ShadeConfig struct {
	RetractedAngle int
	DeployedAngle  int
	StepDelay      time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("db.path", "plantcare.db")

	v.SetDefault("weather.base_url", "https://api.openweathermap.org/data/2.5/forecast")
	v.SetDefault("weather.units", "metric")
	v.SetDefault("weather.refresh_interval", "5m")
	v.SetDefault("weather.request_timeout", "10s")
	v.SetDefault("weather.retries", 3)
	v.SetDefault("weather.retry_delay", "2s")
	v.SetDefault("weather.stale_after", "2h")

	v.SetDefault("notify.retries", 3)
	v.SetDefault("notify.retry_delay", "2s")
	v.SetDefault("notify.request_timeout", "10s")

	v.SetDefault("care.dry_threshold", 30)
	v.SetDefault("care.wet_threshold", 70)
	v.SetDefault("care.target_threshold", 40)
	v.SetDefault("care.critical_threshold", 20)
	v.SetDefault("care.safe_skip_threshold", 30)
	v.SetDefault("care.preventive_skip_threshold", 40)
	v.SetDefault("care.rain_3h_skip_mm", 3.0)
	v.SetDefault("care.rain_6h_skip_mm", 2.0)
	v.SetDefault("care.lux_high_threshold", 50000.0)
	v.SetDefault("care.min_watering_interval", "30m")
	v.SetDefault("care.max_watering_duration", "30s")
	v.SetDefault("care.tick_interval", "10s")
	v.SetDefault("care.status_interval", "30m")
	v.SetDefault("care.lux_check_interval", "60s")

	v.SetDefault("sensors.soil_dry_raw", 1023)
	v.SetDefault("sensors.soil_wet_raw", 300)
	v.SetDefault("sensors.soil_plausible_min", 150)
	v.SetDefault("sensors.soil_plausible_max", 1023)
	v.SetDefault("sensors.rain_threshold", 500)
	v.SetDefault("sensors.rain_debounce", "50ms")
	v.SetDefault("sensors.lux_plausible_max", 120000.0)

	v.SetDefault("shade.retracted_angle", 0)
	v.SetDefault("shade.deployed_angle", 90)
	v.SetDefault("shade.step_delay", "15ms")
}

// Load reads configs/config.yml (if present) and returns the merged config.
// A missing file is not an error; defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName("config")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		Port:     v.GetString("port"),
		LogLevel: v.GetString("log_level"),
		DBPath:   v.GetString("db.path"),
		Weather: WeatherConfig{
			BaseURL:         v.GetString("weather.base_url"),
			APIKey:          v.GetString("weather.api_key"),
			Latitude:        v.GetString("weather.latitude"),
			Longitude:       v.GetString("weather.longitude"),
			Units:           v.GetString("weather.units"),
			RefreshInterval: v.GetDuration("weather.refresh_interval"),
			RequestTimeout:  v.GetDuration("weather.request_timeout"),
			Retries:         v.GetInt("weather.retries"),
			RetryDelay:      v.GetDuration("weather.retry_delay"),
			StaleAfter:      v.GetDuration("weather.stale_after"),
		},
		Notify: NotifyConfig{
			WebhookURL:     v.GetString("notify.webhook_url"),
			Retries:        v.GetInt("notify.retries"),
			RetryDelay:     v.GetDuration("notify.retry_delay"),
			RequestTimeout: v.GetDuration("notify.request_timeout"),
		},
		Care: CareConfig{
			DryThreshold:            v.GetInt("care.dry_threshold"),
			WetThreshold:            v.GetInt("care.wet_threshold"),
			TargetThreshold:         v.GetInt("care.target_threshold"),
			CriticalThreshold:       v.GetInt("care.critical_threshold"),
			SafeSkipThreshold:       v.GetInt("care.safe_skip_threshold"),
			PreventiveSkipThreshold: v.GetInt("care.preventive_skip_threshold"),
			Rain3hSkipMm:            v.GetFloat64("care.rain_3h_skip_mm"),
			Rain6hSkipMm:            v.GetFloat64("care.rain_6h_skip_mm"),
			LuxHighThreshold:        v.GetFloat64("care.lux_high_threshold"),
			MinWateringInterval:     v.GetDuration("care.min_watering_interval"),
			MaxWateringDuration:     v.GetDuration("care.max_watering_duration"),
			TickInterval:            v.GetDuration("care.tick_interval"),
			StatusInterval:          v.GetDuration("care.status_interval"),
			LuxCheckInterval:        v.GetDuration("care.lux_check_interval"),
		},
		Sensors: SensorConfig{
			SoilDryRaw:       v.GetInt("sensors.soil_dry_raw"),
			SoilWetRaw:       v.GetInt("sensors.soil_wet_raw"),
			SoilPlausibleMin: v.GetInt("sensors.soil_plausible_min"),
			SoilPlausibleMax: v.GetInt("sensors.soil_plausible_max"),
			RainThreshold:    v.GetInt("sensors.rain_threshold"),
			RainDebounce:     v.GetDuration("sensors.rain_debounce"),
			LuxPlausibleMax:  v.GetFloat64("sensors.lux_plausible_max"),
		},
		Shade: ShadeConfig{
			RetractedAngle: v.GetInt("shade.retracted_angle"),
			DeployedAngle:  v.GetInt("shade.deployed_angle"),
			StepDelay:      v.GetDuration("shade.step_delay"),
		},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	cc := c.Care
	if !(cc.CriticalThreshold < cc.DryThreshold && cc.DryThreshold <= cc.TargetThreshold && cc.TargetThreshold < cc.WetThreshold) {
		return fmt.Errorf("care thresholds must satisfy critical < dry <= target < wet, got %d/%d/%d/%d",
			cc.CriticalThreshold, cc.DryThreshold, cc.TargetThreshold, cc.WetThreshold)
	}
	if c.Sensors.SoilDryRaw <= c.Sensors.SoilWetRaw {
		return fmt.Errorf("soil calibration requires dry raw (%d) > wet raw (%d)",
			c.Sensors.SoilDryRaw, c.Sensors.SoilWetRaw)
	}
	if c.Shade.DeployedAngle <= c.Shade.RetractedAngle {
		return fmt.Errorf("shade angles invalid: deployed %d <= retracted %d",
			c.Shade.DeployedAngle, c.Shade.RetractedAngle)
	}
	return nil
}
