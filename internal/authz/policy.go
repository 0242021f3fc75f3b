package authz

import (
	"fmt"
	"os"

	"github.com/yukikurage/taskmanager-api/internal/models"
	"gopkg.in/yaml.v3"
)

// Capability is a named permission checked by the gate.
type Capability string

const (
	ViewTask        Capability = "view_task"
	AddTask         Capability = "add_task"
	ChangeTask      Capability = "change_task"
	DeleteTask      Capability = "delete_task"
	ViewExtension   Capability = "view_extensionrequest"
	AddExtension    Capability = "add_extensionrequest"
	ChangeExtension Capability = "change_extensionrequest"
	DeleteExtension Capability = "delete_extensionrequest"
)

var allCapabilities = []Capability{
	ViewTask, AddTask, ChangeTask, DeleteTask,
	ViewExtension, AddExtension, ChangeExtension, DeleteExtension,
}

func (c Capability) valid() bool {
	for _, known := range allCapabilities {
		if c == known {
			return true
		}
	}
	return false
}

// Policy is the role x capability table. It is built once at startup and
// only read afterwards.
type Policy struct {
	grants map[models.Role]map[Capability]bool
}

// NewPolicy builds a policy from role grants.
func NewPolicy(grants map[models.Role][]Capability) *Policy {
	p := &Policy{grants: make(map[models.Role]map[Capability]bool, len(grants))}
	for role, caps := range grants {
		set := make(map[Capability]bool, len(caps))
		for _, c := range caps {
			set[c] = true
		}
		p.grants[role] = set
	}
	return p
}

func defaultGrants() map[models.Role][]Capability {
	return map[models.Role][]Capability{
		models.RoleDeveloper: {ViewTask, ChangeTask, ViewExtension, AddExtension},
		models.RoleTaskProvider: {
			ViewTask, AddTask, ChangeTask, DeleteTask,
			ViewExtension, AddExtension, ChangeExtension, DeleteExtension,
		},
		models.RoleMember: {ViewTask, ViewExtension},
	}
}

// DefaultPolicy grants Developers read access plus extension submission,
// Task Providers everything, and generic members read access only.
func DefaultPolicy() *Policy {
	return NewPolicy(defaultGrants())
}

type policyFile struct {
	Roles map[string][]string `yaml:"roles"`
}

// LoadPolicyFile reads role grants from a yaml file of the form
//
//	roles:
//	  developer: [view_task, add_extensionrequest]
//
// Roles listed in the file replace their default grants; others keep them.
func LoadPolicyFile(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read permissions file: %w", err)
	}

	var file policyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse permissions file: %w", err)
	}

	grants := defaultGrants()
	for name, caps := range file.Roles {
		role := models.Role(name)
		if !role.Valid() {
			return nil, fmt.Errorf("permissions file: unknown role %q", name)
		}
		parsed := make([]Capability, 0, len(caps))
		for _, c := range caps {
			capability := Capability(c)
			if !capability.valid() {
				return nil, fmt.Errorf("permissions file: unknown capability %q for role %q", c, name)
			}
			parsed = append(parsed, capability)
		}
		grants[role] = parsed
	}

	return NewPolicy(grants), nil
}

// Can reports whether role holds capability c.
func (p *Policy) Can(role models.Role, c Capability) bool {
	return p.grants[role][c]
}

// CanAny reports whether role holds at least one of caps.
func (p *Policy) CanAny(role models.Role, caps ...Capability) bool {
	for _, c := range caps {
		if p.Can(role, c) {
			return true
		}
	}
	return false
}
