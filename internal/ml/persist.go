package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SaveArtifact writes the artifact as JSON, creating parent directories
// as needed. The write goes through a temp file and rename so a crashed
// save never leaves a truncated artifact behind.
func SaveArtifact(artifact *Artifact, path string) error {
	if err := artifact.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid artifact: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create artifact directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode artifact: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace artifact: %w", err)
	}
	return nil
}

// LoadArtifact reads and validates a JSON artifact.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}

	artifact := &Artifact{}
	if err := json.Unmarshal(data, artifact); err != nil {
		return nil, fmt.Errorf("failed to decode artifact: %w", err)
	}
	if err := artifact.Validate(); err != nil {
		return nil, err
	}
	return artifact, nil
}
