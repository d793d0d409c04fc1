// SPDX-License-Identifier: Apache-2.0

package edi

// Result is the output of one parse: the sealed documents and every
// extraction failure met while building them.
type Result struct {
	Dialect   Dialect              `json:"dialect" yaml:"dialect"`
	Envelope  Envelope             `json:"envelope" yaml:"envelope"`
	Documents []*Document          `json:"documents" yaml:"documents"`
	Failures  []*ExtractionFailure `json:"failures" yaml:"failures"`
	Segments  int                  `json:"segments" yaml:"segments"`
	Skipped   int                  `json:"skipped" yaml:"skipped"`
}

// FailuresOf returns the failures recorded at the given point.
func (r *Result) FailuresOf(point FailurePoint) []*ExtractionFailure {
	var out []*ExtractionFailure
	for _, f := range r.Failures {
		if f.Point == point {
			out = append(out, f)
		}
	}
	return out
}

// PartCount returns the number of parts across all documents.
func (r *Result) PartCount() int {
	n := 0
	for _, d := range r.Documents {
		n += len(d.Parts)
	}
	return n
}

// ReleaseCount returns the number of releases across all parts.
func (r *Result) ReleaseCount() int {
	n := 0
	for _, d := range r.Documents {
		for _, p := range d.Parts {
			n += len(p.Releases)
		}
	}
	return n
}
