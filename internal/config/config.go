package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	GCP         GCPConfig         `yaml:"gcp"`
	Speech      SpeechConfig      `yaml:"speech"`
	Audio       AudioConfig       `yaml:"audio"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	Paths       PathsConfig       `yaml:"paths"`
	Logging     LoggingConfig     `yaml:"logging"`
	Performance PerformanceConfig `yaml:"performance"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type GCPConfig struct {
	ProjectID string `yaml:"project_id"`
	Location  string `yaml:"location"`
	Bucket    string `yaml:"bucket"`
}

type SpeechConfig struct {
	Language       string `yaml:"language"`
	Model          string `yaml:"model"`
	UseEnhanced    bool   `yaml:"use_enhanced"`
	Diarize        bool   `yaml:"diarize"`
	MinSpeakers    int    `yaml:"min_speakers"`
	MaxSpeakers    int    `yaml:"max_speakers"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type AudioConfig struct {
	ChunkDurationMs int `yaml:"chunk_duration_ms"`
	FrameSizeBytes  int `yaml:"frame_size_bytes"`
}

type GeminiConfig struct {
	Model         string `yaml:"model"`
	SchemaVersion string `yaml:"schema_version"`
	SchemaDir     string `yaml:"schema_dir"`
}

type PathsConfig struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
	Temp   string `yaml:"temp"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

// Load reads a YAML config file, applies defaults and validates it
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.GCP.ProjectID == "" {
		return fmt.Errorf("gcp.project_id is required")
	}
	if c.GCP.Bucket == "" {
		return fmt.Errorf("gcp.bucket is required")
	}

	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.GCP.Location == "" {
		c.GCP.Location = "us-central1"
	}

	if c.Speech.Language == "" {
		c.Speech.Language = "en-US"
	}
	if c.Speech.Model == "" {
		c.Speech.Model = "medical_conversation"
	}
	// The product is a two-party clinician/patient conversation
	if c.Speech.MinSpeakers == 0 {
		c.Speech.MinSpeakers = 2
	}
	if c.Speech.MaxSpeakers == 0 {
		c.Speech.MaxSpeakers = 2
	}
	if c.Speech.TimeoutSeconds == 0 {
		c.Speech.TimeoutSeconds = 120
	}

	if c.Audio.ChunkDurationMs == 0 {
		c.Audio.ChunkDurationMs = 30000
	}
	if c.Audio.FrameSizeBytes == 0 {
		c.Audio.FrameSizeBytes = 4800 // ~150ms at 16kHz mono 16-bit
	}

	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-1.5-pro"
	}
	if c.Gemini.SchemaVersion == "" {
		c.Gemini.SchemaVersion = "1.3"
	}
	if c.Gemini.SchemaDir == "" {
		c.Gemini.SchemaDir = "summarySchema"
	}

	if c.Paths.Input == "" {
		c.Paths.Input = "data/input"
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "data/output"
	}
	if c.Paths.Temp == "" {
		c.Paths.Temp = "data/temp"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Performance.MaxConcurrent == 0 {
		c.Performance.MaxConcurrent = 2
	}

	return nil
}
