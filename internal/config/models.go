package config

// AppVersion is stamped into the settings table isn't needed here; uridx
// only needs to remember which embedding model produced a given store's
// vectors (§3 Setting, §7 ConfigError).

// EmbeddingDefaults describes the embedding model this binary talks to by
// default. The model's dimension is NOT hardcoded here — it is whatever
// the embedding provider reports for Model, queried once on
// first bootstrap and persisted (§4.1).
type EmbeddingDefaults struct {
	// Model is the default OLLAMA_EMBED_MODEL value (§6.4).
	Model string
}

// CurrentDefaults is the configuration baked into this build.
var CurrentDefaults = EmbeddingDefaults{
	Model: "nomic-embed-text",
}
