package authz

// TaskScope narrows task queries. A nil field means no restriction.
type TaskScope struct {
	AssignedToID *uint64
	AssignedByID *uint64
}

// AdminTaskScope limits Developers to the tasks assigned to them on the
// administrative listing. Other roles see every task.
func AdminTaskScope(actor *Actor) TaskScope {
	if actor.IsDeveloper() {
		id := actor.ID
		return TaskScope{AssignedToID: &id}
	}
	return TaskScope{}
}

// ApprovalScope limits the approval queue to tasks the actor assigned.
func ApprovalScope(actor *Actor) TaskScope {
	id := actor.ID
	return TaskScope{AssignedByID: &id}
}
