package events

import "time"

// ArtifactPublishedEvent announces that a run replaced the artifact and the
// stored snapshot.
type ArtifactPublishedEvent struct {
	RunID       string         `json:"run_id"`
	PublishedAt time.Time      `json:"published_at"`
	Count       int            `json:"count"`
	ByProtocol  map[string]int `json:"by_protocol,omitempty"`
	Path        string         `json:"path"`
}
