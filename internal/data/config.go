package data

import (
	"html/template"

	"signaly.chapter42.de/a/internal/auth"
)

type SignalyConfig struct {
	Port     string     `mapstructure:"port"`
	Debug    bool       `mapstructure:"debug"`
	Interval string     `mapstructure:"interval"`
	Feed     FeedConfig `mapstructure:"feed"`
}

type FeedConfig struct {
	// native: Indikatoren selbst abrufen und veröffentlichen.
	// script: externes Programm ausführen und dessen Ausgabezeile übernehmen.
	Mode       string `mapstructure:"mode"`
	ScriptPath string `mapstructure:"script_path"`

	Pair        string  `mapstructure:"pair"`
	LowTF       string  `mapstructure:"low_tf"`
	HighTF      string  `mapstructure:"high_tf"`
	DonPeriod   int     `mapstructure:"don_period"`
	ATRMin      float64 `mapstructure:"atr_pct_min"`
	EMASlopeEps float64 `mapstructure:"ema_slope_eps"`

	FileName   string `mapstructure:"file_name"`
	HistoryDir string `mapstructure:"history_dir"`

	// Backoff-Strategie der HTTP-Retries: exponential oder sinus
	Backoff string `mapstructure:"backoff"`

	TaapiBaseURL  string          `mapstructure:"taapi_base_url"`
	GithubBaseURL string          `mapstructure:"github_base_url"`
	Endpoints     EndpointConfig  `mapstructure:"endpoints"`
	Auth          auth.AuthConfig `mapstructure:"auth"`

	// Secrets kommen ausschließlich aus der Umgebung, nie aus der Datei.
	TaapiSecret string `mapstructure:"-"`
	GistID      string `mapstructure:"-"`
	GistToken   string `mapstructure:"-"`

	// Caching vorbereiteter Templates
	ParsedBulkTpl *template.Template
	ParsedGistTpl *template.Template

	// Authentication provider
	AuthProvider auth.AuthProvider
}

type EndpointConfig struct {
	Bulk string `mapstructure:"bulk"`
	Gist string `mapstructure:"gist"`
}
