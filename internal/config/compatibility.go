package config

import "fmt"

// CheckDimension compares the dimension persisted in Setting["embed_dimension"]
// against what the embedding provider reports for the configured model right
// now. A mismatch means the store's vectors were built against a different
// model and is a fatal ConfigError (§7, §8 scenario 5) — it is never silently
// migrated.
func CheckDimension(persisted, current int) error {
	if persisted != current {
		return fmt.Errorf("embedding dimension mismatch: store has %d, provider reports %d for the configured model — refusing to open", persisted, current)
	}
	return nil
}
