package authz

import (
	"fmt"
)

// TaskField names a patchable task attribute.
type TaskField string

const (
	FieldName        TaskField = "name"
	FieldDescription TaskField = "description"
	FieldStatus      TaskField = "status"
	FieldPriority    TaskField = "priority"
	FieldDueDate     TaskField = "due_date"
	FieldParentTask  TaskField = "parent_task"
	FieldAssignedTo  TaskField = "assigned_to"
	FieldAssignedBy  TaskField = "assigned_by"
)

// Surface is the entry point a task patch arrives through.
type Surface int

const (
	APISurface Surface = iota
	AdminSurface
)

// assigned_by is always set from the creating actor.
var apiReadOnly = []TaskField{FieldAssignedBy}

var adminReadOnly = []TaskField{FieldAssignedBy, FieldAssignedTo, FieldStatus}

var developerAPIReadOnly = []TaskField{FieldStatus, FieldAssignedTo, FieldAssignedBy}

var developerAdminReadOnly = []TaskField{
	FieldName, FieldDueDate, FieldPriority, FieldStatus, FieldAssignedTo, FieldAssignedBy,
}

// ReadOnlyTaskFields lists the task fields actor may not modify through surface.
func (g *Gate) ReadOnlyTaskFields(actor *Actor, surface Surface) []TaskField {
	if actor.IsDeveloper() {
		if surface == AdminSurface {
			return developerAdminReadOnly
		}
		return developerAPIReadOnly
	}
	if surface == AdminSurface {
		return adminReadOnly
	}
	return apiReadOnly
}

// CheckTaskPatch rejects a patch touching any read-only field for actor.
func (g *Gate) CheckTaskPatch(actor *Actor, surface Surface, fields []TaskField) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	readOnly := g.ReadOnlyTaskFields(actor, surface)
	for _, f := range fields {
		for _, ro := range readOnly {
			if f == ro {
				return fmt.Errorf("%w: %s", ErrFieldNotEditable, f)
			}
		}
	}
	return nil
}
