package core

import (
	"log"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	// Config carries all runtime settings. It is built once in main and
	// passed explicitly to every constructor that needs it.
	Config struct {
		Debug          bool
		TestMode       bool
		Env            string
		Build          string
		AppName        string
		SecretKey      []byte
		FromEmail      mail.Address
		SendgridAPIKey string
		RollbarToken   string
		AllowedOrigins []string
		Server         ServerConfig
		Mongo          MongoConfig
		School         SchoolConfig
		OSS            OSSConfig
	}

	ServerConfig struct {
		Host               string
		Addr               string
		DebugAddr          string
		ShutdownTimeout    time.Duration
		AccessTokenExpiry  time.Duration
		RefreshTokenExpiry time.Duration
	}

	MongoConfig struct {
		URI      string
		Database string
	}

	// SchoolConfig holds the reference geocoordinates and allowed radius
	// used for staff attendance check-in.
	SchoolConfig struct {
		Latitude     float64
		Longitude    float64
		RadiusMeters float64
	}

	OSSConfig struct {
		Endpoint        string
		AccessKeyID     string
		AccessKeySecret string
		Bucket          string
	}
)

// NewConfig loads configuration from the environment (and an optional
// .env file), applying defaults for anything unset.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "SchoolSite")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "x3&vq)d0u^5mh$1!+8gz@rw#e7s(k2cn*b4j9l6f%typ_a-o")
	v.SetDefault("fromEmail", "noreply@localhost")
	v.SetDefault("corsOrigins", "http://localhost:3000")

	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverAddr", ":8000")
	v.SetDefault("serverDebugAddr", ":4000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("accessTokenExpiry", 24*time.Hour)
	v.SetDefault("refreshTokenExpiry", 7*24*time.Hour)

	v.SetDefault("mongoUri", "mongodb://localhost:27017")
	v.SetDefault("mongoDb", "schoolsite")

	v.SetDefault("schoolLatitude", 0.0)
	v.SetDefault("schoolLongitude", 0.0)
	v.SetDefault("schoolRadiusMeters", 200.0)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}

	// load .env if it exists (ignore if it does not)
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Fatalf("config.godotenv: %v", err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(.env): %v", err)
	}
	v.AutomaticEnv()

	return &Config{
		Debug:          v.GetBool("debug"),
		TestMode:       env == "TEST",
		Env:            env,
		Build:          v.GetString("build"),
		AppName:        v.GetString("appName"),
		SecretKey:      []byte(v.GetString("secretKey")),
		FromEmail:      mail.Address{Name: v.GetString("appName"), Address: v.GetString("fromEmail")},
		SendgridAPIKey: v.GetString("sendgridApiKey"),
		RollbarToken:   v.GetString("rollbarToken"),
		AllowedOrigins: splitAndTrim(v.GetString("corsOrigins")),
		Server: ServerConfig{
			Host:               v.GetString("serverHost"),
			Addr:               v.GetString("serverAddr"),
			DebugAddr:          v.GetString("serverDebugAddr"),
			ShutdownTimeout:    v.GetDuration("serverShutdownTimeout"),
			AccessTokenExpiry:  v.GetDuration("accessTokenExpiry"),
			RefreshTokenExpiry: v.GetDuration("refreshTokenExpiry"),
		},
		Mongo: MongoConfig{
			URI:      v.GetString("mongoUri"),
			Database: v.GetString("mongoDb"),
		},
		School: SchoolConfig{
			Latitude:     v.GetFloat64("schoolLatitude"),
			Longitude:    v.GetFloat64("schoolLongitude"),
			RadiusMeters: v.GetFloat64("schoolRadiusMeters"),
		},
		OSS: OSSConfig{
			Endpoint:        v.GetString("ossEndpoint"),
			AccessKeyID:     v.GetString("ossAccessKeyId"),
			AccessKeySecret: v.GetString("ossAccessKeySecret"),
			Bucket:          v.GetString("ossBucket"),
		},
	}
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
