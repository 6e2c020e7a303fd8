package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"signaly.chapter42.de/a/internal/auth"
	"signaly.chapter42.de/a/internal/data"
	"signaly.chapter42.de/a/internal/tmpl"
)

const (
	DefaultPort     string = "4224"
	DefaultInterval string = "15m"
)

var Config *data.SignalyConfig

func InitConfig(logger *zap.Logger) error {
	v := viper.New()
	v.SetDefault("port", DefaultPort)
	v.SetDefault("interval", DefaultInterval)
	v.SetDefault("feed.mode", "native")
	v.SetDefault("feed.pair", "BTC/USDT")
	v.SetDefault("feed.low_tf", "15m")
	v.SetDefault("feed.high_tf", "4h")
	v.SetDefault("feed.don_period", 20)
	v.SetDefault("feed.atr_pct_min", 0.003)
	v.SetDefault("feed.ema_slope_eps", 0.0)
	v.SetDefault("feed.file_name", "btc_feed.json")
	v.SetDefault("feed.history_dir", "history_btc")
	v.SetDefault("feed.backoff", "exponential")
	v.SetDefault("feed.taapi_base_url", "https://api.taapi.io")
	v.SetDefault("feed.github_base_url", "https://api.github.com")
	v.SetDefault("feed.endpoints.bulk", "/bulk")
	v.SetDefault("feed.endpoints.gist", "/gists/{{.ID}}")
	v.SetDefault("feed.auth.type", "token")
	v.SetConfigName("signaly.cfg")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app/config")
	err := v.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.Warn("Konfigurationsdatei nicht gefunden, verwende Standardwerte")
		} else {
			logger.Error("Fehler beim Lesen der Konfigurationsdatei:", zap.Error(err))
		}
	}

	if err := v.Unmarshal(&Config); err != nil {
		logger.Error("Fehler beim Lesen der Konfigurationsdatei:", zap.Error(err))
		return err
	}

	// Secrets nur aus der Umgebung; sie tauchen in keinem Log auf.
	Config.Feed.TaapiSecret = os.Getenv("TAAPI_SECRET")
	Config.Feed.GistID = os.Getenv("GIST_ID")
	Config.Feed.GistToken = os.Getenv("GIST_TOKEN")
	if Config.Feed.Auth.Type == "token" && Config.Feed.Auth.Token == "" {
		Config.Feed.Auth.Token = Config.Feed.GistToken
	}

	if err := tmpl.PrepareTemplates(Config); err != nil {
		logger.Error("Fehler beim Parsen der Templates:", zap.Error(err))
		return err
	}

	provider, err := auth.BuildAuthProvider(Config.Feed.Auth)
	if err != nil {
		return fmt.Errorf("fehler beim Erzeugen des AuthProviders: %w", err)
	}
	Config.Feed.AuthProvider = provider

	return Validate(Config)
}

// Validate stellt sicher, dass der native Modus alle Secrets hat.
// Im Script-Modus reicht der Pfad; was das Skript mit fehlenden
// Variablen macht, ist dessen Sache.
func Validate(cfg *data.SignalyConfig) error {
	switch cfg.Feed.Mode {
	case "native":
		if cfg.Feed.TaapiSecret == "" {
			return fmt.Errorf("TAAPI_SECRET ist nicht gesetzt")
		}
		if cfg.Feed.GistID == "" {
			return fmt.Errorf("GIST_ID ist nicht gesetzt")
		}
		if cfg.Feed.GistToken == "" {
			return fmt.Errorf("GIST_TOKEN ist nicht gesetzt")
		}
	case "script":
		if cfg.Feed.ScriptPath == "" {
			return fmt.Errorf("feed.script_path ist nicht gesetzt")
		}
	default:
		return fmt.Errorf("unbekannter feed.mode: %s", cfg.Feed.Mode)
	}
	return nil
}
