package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env      string
	Server   ServerConfig
	Sotkanet SotkanetConfig
	Cache    CacheConfig
	Redis    RedisConfig
	Metadata MetadataConfig
	Log      LogConfig
	Worker   WorkerConfig

	// IndicatorIDs - активный набор показателей для текущего окружения
	IndicatorIDs []int
}

type ServerConfig struct {
	Host string
	Port int
}

type SotkanetConfig struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	RetryDelay time.Duration
	RegionID   int
	YearStart  int
	YearEnd    int
}

type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	// Backend: badger (локальный диск) или redis (общий кеш для
	// нескольких процессов)
	Backend string
	Dir     string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type MetadataConfig struct {
	File            string
	MaxAgeDays      int
	AutoRefresh     bool
	FallbackToCache bool
}

type LogConfig struct {
	Level string
	File  string
}

type WorkerConfig struct {
	Enabled         bool
	RefreshInterval time.Duration
}

// Наборы показателей по окружениям. production дополняет базовый набор
// развития; testing держит один показатель для юнит-тестов.
var indicatorSets = map[string][]int{
	"development": {186, 322, 5527},
	"production":  {186, 322, 5527, 5529, 4559, 4461},
	"testing":     {186},
}

// Load читает конфигурацию из .env и переменных окружения.
// Возвращает неизменяемый снимок; для перечитывания есть Reload.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// .env опционален - без него работаем от переменных окружения
	_ = v.ReadInConfig()

	setDefaults(v)

	env := v.GetString("APP_ENV")

	cfg := &Config{
		Env: env,
		Server: ServerConfig{
			Host: v.GetString("API_HOST"),
			Port: v.GetInt("API_PORT"),
		},
		Sotkanet: SotkanetConfig{
			BaseURL:    v.GetString("SOTKANET_BASE_URL"),
			Timeout:    time.Duration(v.GetInt("API_TIMEOUT")) * time.Second,
			RetryCount: v.GetInt("API_RETRY_COUNT"),
			RetryDelay: time.Duration(v.GetInt("API_RETRY_DELAY")) * time.Second,
			RegionID:   v.GetInt("REGION_ID"),
			YearStart:  v.GetInt("DEFAULT_YEAR_START"),
			YearEnd:    v.GetInt("DEFAULT_YEAR_END"),
		},
		Cache: CacheConfig{
			Enabled: v.GetBool("CACHE_ENABLED"),
			TTL:     time.Duration(v.GetInt("CACHE_TTL")) * time.Second,
			Backend: v.GetString("CACHE_BACKEND"),
			Dir:     v.GetString("CACHE_DIR"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Metadata: MetadataConfig{
			File:            v.GetString("METADATA_FILE"),
			MaxAgeDays:      v.GetInt("METADATA_MAX_AGE_DAYS"),
			AutoRefresh:     v.GetBool("METADATA_AUTO_REFRESH"),
			FallbackToCache: v.GetBool("METADATA_FALLBACK_TO_CACHE"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
			File:  v.GetString("LOG_FILE"),
		},
		Worker: WorkerConfig{
			Enabled:         v.GetBool("WORKER_ENABLED"),
			RefreshInterval: time.Duration(v.GetInt("WORKER_REFRESH_INTERVAL")) * time.Second,
		},
	}

	ids, err := resolveIndicatorIDs(env, v.GetString("INDICATOR_IDS"))
	if err != nil {
		return nil, err
	}
	cfg.IndicatorIDs = ids

	if cfg.Sotkanet.YearEnd < cfg.Sotkanet.YearStart {
		return nil, fmt.Errorf("invalid year range: %d-%d", cfg.Sotkanet.YearStart, cfg.Sotkanet.YearEnd)
	}

	return cfg, nil
}

// Reload перечитывает конфигурацию и возвращает новый снимок,
// не изменяя существующий
func (c *Config) Reload() (*Config, error) {
	return Load()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("API_HOST", "0.0.0.0")
	v.SetDefault("API_PORT", 8080)

	v.SetDefault("SOTKANET_BASE_URL", "https://sotkanet.fi/rest/1.1")
	v.SetDefault("API_TIMEOUT", 30)
	v.SetDefault("API_RETRY_COUNT", 3)
	v.SetDefault("API_RETRY_DELAY", 1)
	// HUS (Helsingin ja Uudenmaan sairaanhoitopiiri)
	v.SetDefault("REGION_ID", 629)
	v.SetDefault("DEFAULT_YEAR_START", 2018)
	v.SetDefault("DEFAULT_YEAR_END", 2023)

	v.SetDefault("CACHE_ENABLED", true)
	v.SetDefault("CACHE_TTL", 3600)
	v.SetDefault("CACHE_BACKEND", "badger")
	v.SetDefault("CACHE_DIR", "data/cache")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("METADATA_FILE", "config/indicators_metadata.json")
	v.SetDefault("METADATA_MAX_AGE_DAYS", 7)
	v.SetDefault("METADATA_AUTO_REFRESH", false)
	v.SetDefault("METADATA_FALLBACK_TO_CACHE", true)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")

	v.SetDefault("WORKER_ENABLED", false)
	v.SetDefault("WORKER_REFRESH_INTERVAL", 6*3600)
}

// resolveIndicatorIDs выбирает набор показателей: явный INDICATOR_IDS
// имеет приоритет над набором окружения
func resolveIndicatorIDs(env, override string) ([]int, error) {
	if override != "" {
		parts := strings.Split(override, ",")
		ids := make([]int, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			id, err := strconv.Atoi(p)
			if err != nil {
				return nil, fmt.Errorf("invalid indicator id %q in INDICATOR_IDS", p)
			}
			ids = append(ids, id)
		}
		if len(ids) > 0 {
			return ids, nil
		}
	}

	if ids, ok := indicatorSets[env]; ok {
		set := make([]int, len(ids))
		copy(set, ids)
		return set, nil
	}
	set := make([]int, len(indicatorSets["development"]))
	copy(set, indicatorSets["development"])
	return set, nil
}

// DefaultYears возвращает годы по умолчанию для запросов данных
func (c *SotkanetConfig) DefaultYears() []int {
	years := make([]int, 0, c.YearEnd-c.YearStart+1)
	for y := c.YearStart; y <= c.YearEnd; y++ {
		years = append(years, y)
	}
	return years
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
