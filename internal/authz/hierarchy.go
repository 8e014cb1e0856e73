// Package authz implements the fixed permission hierarchy and the
// broad-implies-narrow authorization check used by every protected endpoint.
package authz

// node is a single permission in the hierarchy. Children are permissions
// implied by holding this one. The requires list names permissions that must
// be satisfied independently before this node is reachable by direct grant;
// it is carried as metadata only and is not consulted by Can.
type node struct {
	children map[string]*node
	requires []string
}

func leaf() *node {
	return &node{}
}

func requiring(perms ...string) *node {
	return &node{requires: perms}
}

func group(children map[string]*node) *node {
	return &node{children: children}
}

// Hierarchy is the immutable permission tree. Build it once with
// NewHierarchy and share the value; concurrent reads are safe.
type Hierarchy struct {
	root map[string]*node
}

// NewHierarchy constructs the application's permission tree. The shape is
// fixed per process; there is no runtime editing or persistence.
func NewHierarchy() *Hierarchy {
	return &Hierarchy{
		root: map[string]*node{
			DoEverything: group(map[string]*node{
				ManageDepartments: group(map[string]*node{
					ReadDepartments:   leaf(),
					CreateDepartments: requiring(ReadDepartments),
					UpdateDepartments: requiring(ReadDepartments),
					DeleteDepartments: requiring(ReadDepartments),
				}),
				ManageUsers: group(map[string]*node{
					ReadUsers:   leaf(),
					CreateUsers: requiring(ReadUsers),
					UpdateUsers: requiring(ReadUsers),
					DeleteUsers: requiring(ReadUsers),
				}),
				ManageRoles: group(map[string]*node{
					ReadRoles:   leaf(),
					CreateRoles: requiring(ReadRoles),
					UpdateRoles: requiring(ReadRoles),
					DeleteRoles: requiring(ReadRoles),
				}),
				ReadReports: leaf(),
			}),
		},
	}
}

// PermissionPath returns the chain of ancestors from the tree root down to
// the requested permission, root first and inclusive of the permission
// itself. An unknown label yields an empty path. Sibling visit order is
// unspecified; labels are unique so the result is deterministic.
func (h *Hierarchy) PermissionPath(permission string) []string {
	type frame struct {
		nodes map[string]*node
		path  []string
	}
	stack := []frame{{nodes: h.root}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for label, n := range top.nodes {
			if label == permission {
				path := make([]string, 0, len(top.path)+1)
				path = append(path, top.path...)
				return append(path, label)
			}
			if len(n.children) > 0 {
				child := make([]string, 0, len(top.path)+1)
				child = append(child, top.path...)
				stack = append(stack, frame{nodes: n.children, path: append(child, label)})
			}
		}
	}
	return nil
}

// AllPermissions returns every label present in the tree. Order is
// unspecified.
func (h *Hierarchy) AllPermissions() []string {
	var labels []string
	stack := []map[string]*node{h.root}
	for len(stack) > 0 {
		nodes := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for label, n := range nodes {
			labels = append(labels, label)
			if len(n.children) > 0 {
				stack = append(stack, n.children)
			}
		}
	}
	return labels
}

// Requires returns the prerequisite labels declared on a permission, if any.
func (h *Hierarchy) Requires(permission string) []string {
	stack := []map[string]*node{h.root}
	for len(stack) > 0 {
		nodes := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for label, n := range nodes {
			if label == permission {
				out := make([]string, len(n.requires))
				copy(out, n.requires)
				return out
			}
			if len(n.children) > 0 {
				stack = append(stack, n.children)
			}
		}
	}
	return nil
}

// Can reports whether the granted set authorizes the requested permission.
// A grant anywhere on the permission's ancestor path counts, so holding a
// coarse permission authorizes every permission beneath it.
func (h *Hierarchy) Can(granted []string, requested string) bool {
	path := h.PermissionPath(requested)
	if len(path) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(granted))
	for _, g := range granted {
		set[g] = struct{}{}
	}
	for _, p := range path {
		if _, ok := set[p]; ok {
			return true
		}
	}
	return false
}

// EffectiveGrants resolves the permission set used for an authorization
// check: a non-empty per-user override fully replaces the role's set.
func EffectiveGrants(override, rolePerms []string) []string {
	if len(override) > 0 {
		return override
	}
	return rolePerms
}
