package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

type Config struct {
	Agent     AgentConfig     `json:"agent"`
	Assistant AssistantConfig `json:"assistant"`
	Server    ServerConfig    `json:"server"`
	Proxy     ProxyConfig     `json:"proxy"`
	Google    GoogleConfig    `json:"google"`
	Timer     TimerConfig     `json:"timer"`
	Sync      SyncConfig      `json:"sync"`
}

type AgentConfig struct {
	Name      string `json:"name"`
	CLIUserID string `json:"cli_user_id"`
}

type AssistantConfig struct {
	Model          string `json:"model"`
	APIKeyEnv      string `json:"api_key_env"`
	BaseURL        string `json:"base_url,omitempty"`
	HistoryWindow  int    `json:"history_window"`
	RequestTimeout int    `json:"request_timeout_sec"`
}

type ServerConfig struct {
	Port int `json:"port"`
}

type ProxyConfig struct {
	BaseURL      string `json:"base_url"`
	AuthTokenEnv string `json:"auth_token_env"`
	TimeoutSec   int    `json:"timeout_sec"`
}

type GoogleConfig struct {
	BaseURL        string `json:"base_url"`
	AccessTokenEnv string `json:"access_token_env"`
	TimeoutSec     int    `json:"timeout_sec"`
}

type TimerConfig struct {
	SessionLength int `json:"session_length_min"`
	ShortBreak    int `json:"short_break_min"`
	LongBreak     int `json:"long_break_min"`
	CustomMinutes int `json:"custom_min"`
}

type SyncConfig struct {
	RangeDays        int    `json:"range_days"`
	DefaultStartTime string `json:"default_start_time"`
	DefaultEndTime   string `json:"default_end_time"`
}

type Manager struct {
	path string
	mu   sync.RWMutex
	cfg  Config
}

func DefaultPath() string {
	return filepath.Join("config", "config.json")
}

func NewManager(path string) (*Manager, error) {
	cfg := defaultConfig()
	mgr := &Manager{
		path: path,
		cfg:  cfg,
	}
	if err := mgr.load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	}
	if err := mgr.save(); err != nil {
		return nil, err
	}
	return mgr, nil
}

func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

func (m *Manager) Update(apply func(*Config)) (Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	apply(&m.cfg)
	applyDefaults(&m.cfg)
	if err := m.saveLocked(); err != nil {
		return Config{}, err
	}
	return m.cfg, nil
}

func (m *Manager) load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return err
	}
	var fileCfg Config
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		return err
	}
	m.cfg = fileCfg
	applyDefaults(&m.cfg)
	return nil
}

func (m *Manager) save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked()
}

func (m *Manager) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(m.cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, data, 0644)
}

func defaultConfig() Config {
	return Config{
		Agent: AgentConfig{
			Name:      "FocusDesk",
			CLIUserID: "local_user",
		},
		Assistant: AssistantConfig{
			Model:          "gpt-4o-mini",
			APIKeyEnv:      "OPENAI_API_KEY",
			HistoryWindow:  10,
			RequestTimeout: 60,
		},
		Server: ServerConfig{
			Port: 8080,
		},
		Proxy: ProxyConfig{
			BaseURL:      "http://localhost:8000/data",
			AuthTokenEnv: "FOCUSDESK_PROXY_TOKEN",
			TimeoutSec:   15,
		},
		Google: GoogleConfig{
			BaseURL:        "http://localhost:8000",
			AccessTokenEnv: "GOOGLE_ACCESS_TOKEN",
			TimeoutSec:     20,
		},
		Timer: TimerConfig{
			SessionLength: 25,
			ShortBreak:    5,
			LongBreak:     45,
			CustomMinutes: 15,
		},
		Sync: SyncConfig{
			RangeDays:        7,
			DefaultStartTime: "09:00",
			DefaultEndTime:   "10:00",
		},
	}
}

func applyDefaults(cfg *Config) {
	def := defaultConfig()
	if strings.TrimSpace(cfg.Agent.Name) == "" {
		cfg.Agent.Name = def.Agent.Name
	}
	if strings.TrimSpace(cfg.Agent.CLIUserID) == "" {
		cfg.Agent.CLIUserID = def.Agent.CLIUserID
	}
	if strings.TrimSpace(cfg.Assistant.Model) == "" {
		cfg.Assistant.Model = def.Assistant.Model
	}
	if strings.TrimSpace(cfg.Assistant.APIKeyEnv) == "" {
		cfg.Assistant.APIKeyEnv = def.Assistant.APIKeyEnv
	}
	if cfg.Assistant.HistoryWindow <= 0 {
		cfg.Assistant.HistoryWindow = def.Assistant.HistoryWindow
	}
	if cfg.Assistant.RequestTimeout <= 0 {
		cfg.Assistant.RequestTimeout = def.Assistant.RequestTimeout
	}
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = def.Server.Port
	}
	if strings.TrimSpace(cfg.Proxy.BaseURL) == "" {
		cfg.Proxy.BaseURL = def.Proxy.BaseURL
	}
	if strings.TrimSpace(cfg.Proxy.AuthTokenEnv) == "" {
		cfg.Proxy.AuthTokenEnv = def.Proxy.AuthTokenEnv
	}
	if cfg.Proxy.TimeoutSec <= 0 {
		cfg.Proxy.TimeoutSec = def.Proxy.TimeoutSec
	}
	if strings.TrimSpace(cfg.Google.BaseURL) == "" {
		cfg.Google.BaseURL = def.Google.BaseURL
	}
	if strings.TrimSpace(cfg.Google.AccessTokenEnv) == "" {
		cfg.Google.AccessTokenEnv = def.Google.AccessTokenEnv
	}
	if cfg.Google.TimeoutSec <= 0 {
		cfg.Google.TimeoutSec = def.Google.TimeoutSec
	}
	if cfg.Timer.SessionLength <= 0 {
		cfg.Timer.SessionLength = def.Timer.SessionLength
	}
	if cfg.Timer.ShortBreak <= 0 {
		cfg.Timer.ShortBreak = def.Timer.ShortBreak
	}
	if cfg.Timer.LongBreak <= 0 {
		cfg.Timer.LongBreak = def.Timer.LongBreak
	}
	if cfg.Timer.CustomMinutes <= 0 {
		cfg.Timer.CustomMinutes = def.Timer.CustomMinutes
	}
	if cfg.Sync.RangeDays <= 0 {
		cfg.Sync.RangeDays = def.Sync.RangeDays
	}
	if !validClock(cfg.Sync.DefaultStartTime) {
		cfg.Sync.DefaultStartTime = def.Sync.DefaultStartTime
	}
	if !validClock(cfg.Sync.DefaultEndTime) {
		cfg.Sync.DefaultEndTime = def.Sync.DefaultEndTime
	}
}

func validClock(v string) bool {
	v = strings.TrimSpace(v)
	if len(v) != 5 || v[2] != ':' {
		return false
	}
	for i, r := range v {
		if i == 2 {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
