package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wingmate-ai/wingmate/src/gateway"
	"github.com/wingmate-ai/wingmate/src/logging"
)

func clearKeyEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"GOOGLE_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OLLAMA_HOST"} {
		t.Setenv(name, "")
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearKeyEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	require.Equal(t, "gemini", cfg.Cloud.Engine)
	require.Equal(t, "http://localhost:11434", cfg.Local.Endpoint)
	require.Equal(t, "llama3.2", cfg.Local.Model)
	require.False(t, cfg.Assistant.UseLocal)
	require.False(t, cfg.Cache.Enabled)
}

func TestLoadFile(t *testing.T) {
	clearKeyEnv(t)

	path := filepath.Join(t.TempDir(), "wingmate.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[assistant]
persona = "Answer briefly."
use_local = true

[local]
endpoint = "http://10.0.0.5:11434"
model = "mistral"
temperature = 0.2
top_p = 0.8

[cache]
enabled = true
size = 32
ttl_seconds = 60
path = "answers.json"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.True(t, cfg.Assistant.UseLocal)
	require.Equal(t, "Answer briefly.", cfg.Assistant.Persona)
	require.Equal(t, "http://10.0.0.5:11434", cfg.Local.Endpoint)
	require.Equal(t, "mistral", cfg.Local.Model)

	gc := cfg.Gateway(logging.NoOpLogger{})
	require.True(t, gc.UseLocal)
	require.Equal(t, 0.2, gc.LocalOptions.Temperature)
	require.NotNil(t, gc.Cache)
	require.Equal(t, gateway.CacheConfig{Size: 32, TTL: time.Minute, Path: "answers.json"}, *gc.Cache)
}

func TestEnvOverridesCredential(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("GEMINI_API_KEY", "from-env")

	path := filepath.Join(t.TempDir(), "wingmate.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[cloud]
engine = "gemini"
api_key = "from-file"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.Cloud.APIKey)
}

func TestEnvSelectsKeyPerEngine(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("OPENAI_API_KEY", "openai-key")
	t.Setenv("GEMINI_API_KEY", "gemini-key")

	path := filepath.Join(t.TempDir(), "wingmate.toml")
	require.NoError(t, os.WriteFile(path, []byte("[cloud]\nengine = \"openai\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "openai-key", cfg.Cloud.APIKey)
}

func TestOllamaHostOverride(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("OLLAMA_HOST", "http://192.168.1.20:11434")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "http://192.168.1.20:11434", cfg.Local.Endpoint)
}

func TestLoadRejectsBadTOML(t *testing.T) {
	clearKeyEnv(t)

	path := filepath.Join(t.TempDir(), "broken.toml")
	require.NoError(t, os.WriteFile(path, []byte("not [valid\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
