package domain

import (
	"fmt"
	"slices"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint is a deterministic content hash identifying a reproducible
// build input set. It is the cache key for build results.
type Fingerprint string

// String returns the hex form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }

// ComputeFingerprint hashes the specification content together with the
// sorted fingerprints of its resolved inputs. Two nodes with identical
// specification content and identical input fingerprints always produce the
// same fingerprint; cache correctness depends on this.
//
// Description is documentation only and deliberately excluded, so editing
// it never invalidates cached results.
func ComputeFingerprint(spec *Specification, inputs []Fingerprint) Fingerprint {
	h := xxhash.New()

	writeField(h, spec.Name.String())
	writeField(h, spec.Version.String())

	writeField(h, spec.Source.Method)
	writeField(h, spec.Source.Location)
	writeField(h, spec.Source.Revision)
	writeField(h, spec.Source.Checksum)
	section(h)

	for _, in := range spec.Inputs {
		writeField(h, in.Name.String())
		writeField(h, string(in.Kind))
	}
	section(h)

	for _, p := range spec.Phases {
		writeField(h, p.Name.String())
		writeField(h, p.Action)
		writeField(h, string(p.Override))
		writeField(h, p.With)
	}
	section(h)

	writeField(h, spec.License)
	section(h)

	// Input order must not influence the fingerprint.
	sorted := make([]string, len(inputs))
	for i, fp := range inputs {
		sorted[i] = string(fp)
	}
	slices.Sort(sorted)
	for _, fp := range sorted {
		writeField(h, fp)
	}

	return Fingerprint(fmt.Sprintf("%016x", h.Sum64()))
}

func writeField(h *xxhash.Digest, s string) {
	_, _ = h.WriteString(s)
	_, _ = h.Write([]byte{0})
}

func section(h *xxhash.Digest) {
	_, _ = h.Write([]byte{0})
}
