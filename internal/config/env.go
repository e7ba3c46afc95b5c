package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Environment variable names (§6.4).
const (
	EnvDBPath      = "URIDX_DB_PATH"
	EnvOllamaURL   = "OLLAMA_BASE_URL"
	EnvEmbedModel  = "OLLAMA_EMBED_MODEL"
	EnvVisionModel = "OLLAMA_VISION_MODEL"
)

const (
	AppDirName    = ".uridx"
	DefaultDBName = "uridx.db"
	DefaultOllama = "http://localhost:11434"
	DefaultVision = "llava"
)

// Env holds the resolved runtime configuration for a process.
type Env struct {
	DBPath      string
	OllamaURL   string
	EmbedModel  string
	VisionModel string
}

// LoadEnv reads §6.4's environment variables, falling back to
// ~/.uridx/uridx.db and the teacher's own directory-default convention
// (store.Manager.NewManager) when URIDX_DB_PATH is unset.
func LoadEnv() (Env, error) {
	var e Env

	e.DBPath = os.Getenv(EnvDBPath)
	if e.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return e, fmt.Errorf("could not resolve default db path: %w", err)
		}
		e.DBPath = filepath.Join(home, AppDirName, DefaultDBName)
	}

	e.OllamaURL = os.Getenv(EnvOllamaURL)
	if e.OllamaURL == "" {
		e.OllamaURL = DefaultOllama
	}

	e.EmbedModel = os.Getenv(EnvEmbedModel)
	if e.EmbedModel == "" {
		e.EmbedModel = CurrentDefaults.Model
	}

	e.VisionModel = os.Getenv(EnvVisionModel)
	if e.VisionModel == "" {
		e.VisionModel = DefaultVision
	}

	return e, nil
}

// EnsureDBDir creates the parent directory of DBPath if needed, the way
// store.Manager.NewManager pre-creates its managed directories.
func EnsureDBDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
