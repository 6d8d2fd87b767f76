package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func baseEnv() map[string]string {
	return map[string]string{
		"JWT_SECRET":               "secret",
		"DEEPSEEK_API_KEY":         "sk-test",
		"FEISHU_APP_ID":            "cli_a",
		"FEISHU_APP_SECRET":        "s",
		"FEISHU_APP_TOKEN_REQUEST": "app_req",
		"FEISHU_TABLE_ID_REQUEST":  "tbl_req",
		"FEISHU_APP_TOKEN_GUIDE":   "app_guide",
		"FEISHU_TABLE_ID_GUIDE":    "tbl_guide",
		"FEISHU_APP_TOKEN_USER":    "app_user",
		"FEISHU_TABLE_ID_USER":     "tbl_user",
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(baseEnv()))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults: port=%q level=%q", cfg.Port, cfg.LogLevel)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Fatalf("expected 24h session ttl, got %v", cfg.SessionTTL)
	}
	if cfg.Store.Backend != StoreFeishu || cfg.WeatherProvider != WeatherQWeather {
		t.Fatalf("unexpected backends: %q %q", cfg.Store.Backend, cfg.WeatherProvider)
	}
	if cfg.Feishu.GuideTableID != "tbl_guide" {
		t.Fatalf("feishu table not loaded: %+v", cfg.Feishu)
	}
	if cfg.Mongo.URI != "" || cfg.Redis.Addr != "" || cfg.NATS.URL != "" {
		t.Fatalf("optional infrastructure should default to disabled")
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	env := baseEnv()
	delete(env, "DEEPSEEK_API_KEY")

	if _, err := load(context.Background(), envconfig.MapLookuper(env)); err == nil {
		t.Fatalf("expected error for missing DEEPSEEK_API_KEY")
	}
}

func TestLoad_FeishuKeysNamed(t *testing.T) {
	env := baseEnv()
	delete(env, "FEISHU_TABLE_ID_USER")
	delete(env, "FEISHU_APP_SECRET")

	_, err := load(context.Background(), envconfig.MapLookuper(env))
	if err == nil {
		t.Fatalf("expected error for missing feishu keys")
	}
	for _, key := range []string{"FEISHU_TABLE_ID_USER", "FEISHU_APP_SECRET"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("error should name %s: %v", key, err)
		}
	}
}

func TestLoad_SQLiteSkipsFeishu(t *testing.T) {
	env := map[string]string{
		"JWT_SECRET":       "secret",
		"DEEPSEEK_API_KEY": "sk-test",
		"STORE_BACKEND":    "sqlite",
		"WEATHER_PROVIDER": "openweather",
		"SESSION_TTL":      "2h",
	}
	cfg, err := load(context.Background(), envconfig.MapLookuper(env))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store.SQLitePath == "" || cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("unexpected config: %+v", cfg.Store)
	}
}

func TestLoad_RejectsUnknownProvider(t *testing.T) {
	env := baseEnv()
	env["WEATHER_PROVIDER"] = "accuweather"

	if _, err := load(context.Background(), envconfig.MapLookuper(env)); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}
