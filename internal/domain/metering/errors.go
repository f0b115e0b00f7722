package metering

import (
	"fmt"

	"github.com/google/uuid"
)

// UnitConflict identifies a unit that is already covered by another active
// meter of the same utility type.
type UnitConflict struct {
	UnitID      uuid.UUID   `json:"unit_id"`
	UtilityType UtilityType `json:"utility_type"`
}

// AllocationConflictError is returned when registering or updating a meter
// would give two active meters of the same utility type overlapping unit
// coverage. It carries every offending unit so the caller can fix the whole
// request at once. The write it guards is never partially applied.
type AllocationConflictError struct {
	Conflicts []UnitConflict
}

// Error implements the error interface
func (e *AllocationConflictError) Error() string {
	return fmt.Sprintf("meter allocation conflict: %d unit(s) already covered by an active meter", len(e.Conflicts))
}

// NewAllocationConflictError creates a new AllocationConflictError
func NewAllocationConflictError(conflicts []UnitConflict) *AllocationConflictError {
	return &AllocationConflictError{Conflicts: conflicts}
}
