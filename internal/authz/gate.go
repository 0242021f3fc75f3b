// Package authz decides which actor may perform which operation. Decisions
// come from a Policy table plus a few role rules; resource-level rules such as
// "only the assigner resolves an extension" live in the workflow package.
package authz

import (
	"fmt"
	"net/http"

	apierrors "github.com/yukikurage/taskmanager-api/internal/errors"
	"github.com/yukikurage/taskmanager-api/internal/models"
)

var (
	ErrUnauthenticated  = apierrors.Authentication(apierrors.ErrCodeUnauthorized, "Authentication required")
	ErrForbidden        = apierrors.Authorization(apierrors.ErrCodeForbidden, "You do not have permission to perform this action")
	ErrFieldNotEditable = apierrors.Authorization("FIELD_NOT_EDITABLE", "field cannot be modified")
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID       uint64
	Username string
	Email    string
	Role     models.Role
}

// ActorFromUser builds an Actor from a loaded user.
func ActorFromUser(u *models.User) *Actor {
	return &Actor{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

// IsTaskProvider reports whether the actor assigns tasks and resolves extensions.
func (a *Actor) IsTaskProvider() bool {
	return a != nil && a.Role == models.RoleTaskProvider
}

// IsDeveloper reports whether the actor executes assigned tasks.
func (a *Actor) IsDeveloper() bool {
	return a != nil && a.Role == models.RoleDeveloper
}

// View identifies a group of endpoints sharing one permission rule set.
type View int

const (
	TaskView View = iota + 1
	ExtensionRequestView
	ExtensionApprovalView
)

func (v View) String() string {
	switch v {
	case TaskView:
		return "tasks"
	case ExtensionRequestView:
		return "extension requests"
	case ExtensionApprovalView:
		return "extension approvals"
	}
	return "unknown view"
}

// Operation is the verb class of a request.
type Operation int

const (
	OpRead Operation = iota + 1
	OpCreate
	OpUpdate
	OpDelete
)

// OperationForMethod maps an HTTP method to an Operation.
func OperationForMethod(method string) (Operation, bool) {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return OpRead, true
	case http.MethodPost:
		return OpCreate, true
	case http.MethodPut, http.MethodPatch:
		return OpUpdate, true
	case http.MethodDelete:
		return OpDelete, true
	}
	return 0, false
}

// Gate evaluates (actor, view, operation) against a Policy.
type Gate struct {
	policy *Policy
}

func NewGate(policy *Policy) *Gate {
	if policy == nil {
		policy = DefaultPolicy()
	}
	return &Gate{policy: policy}
}

// Allowed reports the decision for actor without building an error.
func (g *Gate) Allowed(actor *Actor, view View, op Operation) bool {
	if actor == nil {
		return false
	}
	p, role := g.policy, actor.Role

	switch view {
	case TaskView:
		switch op {
		case OpRead:
			return p.Can(role, ViewTask)
		case OpCreate:
			return p.Can(role, AddTask)
		case OpUpdate, OpDelete:
			return p.CanAny(role, ChangeTask, DeleteTask)
		}

	case ExtensionRequestView:
		switch op {
		case OpRead:
			return p.Can(role, ViewExtension)
		case OpCreate:
			// Task Providers resolve requests, they never file them.
			return !actor.IsTaskProvider() && p.Can(role, AddExtension)
		case OpUpdate, OpDelete:
			return p.CanAny(role, ChangeExtension, DeleteExtension)
		}

	case ExtensionApprovalView:
		switch op {
		case OpRead, OpUpdate, OpDelete:
			return p.CanAny(role, ChangeExtension, DeleteExtension)
		}
	}

	return false
}

// Authorize returns nil when actor may perform op on view.
func (g *Gate) Authorize(actor *Actor, view View, op Operation) error {
	if actor == nil {
		return ErrUnauthenticated
	}
	if !g.Allowed(actor, view, op) {
		return fmt.Errorf("%w on %s", ErrForbidden, view)
	}
	return nil
}
