package domain

import "time"

// BuildResult is the outcome of one successful node execution. It is owned
// by the result store once written and read-shared by any node whose
// fingerprint matches.
type BuildResult struct {
	Fingerprint Fingerprint `json:"fingerprint,omitzero"`
	// OutputPath is the content-addressed location of the produced artifact.
	OutputPath string `json:"output_path,omitzero"`
	// OutputHash is the xxhash of the produced artifact content. The store
	// compares it on put to detect fingerprint collisions.
	OutputHash string `json:"output_hash,omitzero"`
	// LogPath is the captured build log for the node.
	LogPath   string    `json:"log_path,omitzero"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// SameContent reports whether two results carry the same artifact content.
// A put of a result with the same fingerprint but different content is a
// collision, never a silent overwrite.
func (r BuildResult) SameContent(other BuildResult) bool {
	return r.OutputHash == other.OutputHash
}
