// SPDX-License-Identifier: Apache-2.0

package edi

// Role is the semantic role of a segment. Role values are the keys of the
// registry's segments table.
type Role string

const (
	RoleUnrecognized  Role = ""
	RoleEnvelope      Role = "envelope"
	RoleInnerMessage  Role = "inner_message"
	RoleDocumentStart Role = "record_start"
	RoleAddress       Role = "address"
	RoleLoop          Role = "loop"
	RolePartDetails   Role = "part_details"
	RoleRelease       Role = "release"
	RoleReleaseType   Role = "release_type"
	RoleAccumulation  Role = "accum"
	RoleFileEnd       Role = "file_end"

	// Recognised but not dispatched.
	RoleClaimDetails  Role = "claim_details"
	RoleDateDetails   Role = "date_details"
	RoleServiceLine   Role = "service_line_details"
	RoleProblemRecord Role = "problem_record_details"
	RoleMessage       Role = "message"
	RoleTotalCharge   Role = "total_charge"
	RoleQuantity      Role = "quantity"
	RoleReference     Role = "reference"
)

// classifyOrder is the order roles are tried in. Dispatched roles come first
// so a code listed under both a dispatched and a descriptive role is
// handled.
var classifyOrder = []Role{
	RoleEnvelope,
	RoleInnerMessage,
	RoleLoop,
	RoleDocumentStart,
	RoleAddress,
	RolePartDetails,
	RoleRelease,
	RoleReleaseType,
	RoleAccumulation,
	RoleFileEnd,
	RoleClaimDetails,
	RoleDateDetails,
	RoleServiceLine,
	RoleProblemRecord,
	RoleMessage,
	RoleTotalCharge,
	RoleQuantity,
	RoleReference,
}

// Dispatched reports whether segments of this role reach a handler.
func (r Role) Dispatched() bool {
	switch r {
	case RoleEnvelope, RoleInnerMessage, RoleLoop, RoleDocumentStart, RoleAddress,
		RolePartDetails, RoleRelease, RoleReleaseType, RoleAccumulation, RoleFileEnd:
		return true
	}
	return false
}
