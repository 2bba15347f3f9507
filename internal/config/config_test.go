package config

import (
	"os"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid config",
			config: Config{
				GCP: GCPConfig{
					ProjectID: "test-project",
					Bucket:    "test-bucket",
				},
			},
			wantErr: false,
		},
		{
			name: "missing project id",
			config: Config{
				GCP: GCPConfig{
					Bucket: "test-bucket",
				},
			},
			wantErr: true,
		},
		{
			name: "missing bucket",
			config: Config{
				GCP: GCPConfig{
					ProjectID: "test-project",
				},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := Config{
		GCP: GCPConfig{ProjectID: "p", Bucket: "b"},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.Audio.ChunkDurationMs != 30000 {
		t.Errorf("ChunkDurationMs = %d, want 30000", cfg.Audio.ChunkDurationMs)
	}
	if cfg.Audio.FrameSizeBytes != 4800 {
		t.Errorf("FrameSizeBytes = %d, want 4800", cfg.Audio.FrameSizeBytes)
	}
	if cfg.Speech.Model != "medical_conversation" {
		t.Errorf("Speech.Model = %q, want medical_conversation", cfg.Speech.Model)
	}
	if cfg.Speech.MinSpeakers != 2 || cfg.Speech.MaxSpeakers != 2 {
		t.Errorf("speaker bounds = %d/%d, want 2/2", cfg.Speech.MinSpeakers, cfg.Speech.MaxSpeakers)
	}
	if cfg.Gemini.SchemaVersion != "1.3" {
		t.Errorf("SchemaVersion = %q, want 1.3", cfg.Gemini.SchemaVersion)
	}
}

func TestLoad(t *testing.T) {
	// Create a temporary config file
	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	content := `
server:
  port: 9090

gcp:
  project_id: "test-project"
  location: "us-central1"
  bucket: "test-bucket"

speech:
  language: "en-US"
  diarize: true

gemini:
  model: "gemini-1.5-pro"
  schema_version: "1.3"

logging:
  level: "info"
`

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	// Test loading
	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Port = %v, want %v", cfg.Server.Port, 9090)
	}

	if cfg.GCP.ProjectID != "test-project" {
		t.Errorf("ProjectID = %v, want %v", cfg.GCP.ProjectID, "test-project")
	}

	if !cfg.Speech.Diarize {
		t.Error("Diarize = false, want true")
	}
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	if err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}
