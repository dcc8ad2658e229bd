package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "")
	t.Setenv("S3_BUCKET", "")
	t.Setenv("RENDER_DPI", "not-a-number")
	t.Setenv("S3_USE_SSL", "false")

	c := Load()
	if c.S3Bucket != "source-images" {
		t.Errorf("S3Bucket = %q, want source-images", c.S3Bucket)
	}
	if c.RenderDPI != 200 {
		t.Errorf("RenderDPI = %d, want 200", c.RenderDPI)
	}
	if c.S3UseSSL {
		t.Errorf("S3UseSSL = true, want false")
	}
	if err := c.RequireDatabase(); err == nil {
		t.Errorf("RequireDatabase = nil, want error")
	}
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	os.WriteFile(filepath.Join(dir, ".env.local"), []byte("REDIS_DB=3\n"), 0o644)
	os.WriteFile(filepath.Join(dir, ".env"), []byte("REDIS_DB=5\nREDIS_ADDR=localhost:6379\n"), 0o644)
	t.Setenv("REDIS_DB", "")
	t.Setenv("REDIS_ADDR", "")
	os.Unsetenv("REDIS_DB")
	os.Unsetenv("REDIS_ADDR")

	c := Load()
	if c.RedisDB != 3 {
		t.Errorf("RedisDB = %d, want 3 from .env.local", c.RedisDB)
	}
	if c.RedisAddr != "localhost:6379" {
		t.Errorf("RedisAddr = %q, want value from .env", c.RedisAddr)
	}
}

func TestRequireStorage(t *testing.T) {
	tests := []struct {
		cfg     Config
		wantErr bool
	}{
		{Config{StorageBackend: StorageS3}, true},
		{Config{StorageBackend: StorageS3, S3Endpoint: "s3:9000", S3AccessKey: "a", S3SecretKey: "s"}, false},
		{Config{StorageBackend: StorageLocal, LocalStorageDir: "out"}, false},
		{Config{StorageBackend: "ftp"}, true},
	}
	for _, tt := range tests {
		if err := tt.cfg.RequireStorage(); (err != nil) != tt.wantErr {
			t.Errorf("RequireStorage(%s) = %v, wantErr %v", tt.cfg.StorageBackend, err, tt.wantErr)
		}
	}
}

func TestRequireEmbeddings(t *testing.T) {
	c := Config{EmbeddingProvider: "gemini", OpenAIKey: "k"}
	if err := c.RequireEmbeddings(); err == nil {
		t.Errorf("gemini without GOOGLE_API_KEY = nil error")
	}
	c.GoogleAPIKey = "g"
	if err := c.RequireEmbeddings(); err != nil {
		t.Errorf("RequireEmbeddings = %v", err)
	}
	if c.EmbeddingKey() != "g" || c.EmbeddingModel() != "" {
		t.Errorf("EmbeddingKey/Model = %q/%q", c.EmbeddingKey(), c.EmbeddingModel())
	}
}
