package authz

import "fmt"

// RoleSeed is a built-in role definition.
type RoleSeed struct {
	Role      string
	Inherits  []string
	Policies  []Policy
	Immutable bool
}

// BuiltinRoleSeeds returns the role matrix seeded on startup.
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "readonly_auditor",
			Policies: []Policy{
				{Object: "/*", Action: "GET"},
			},
			Immutable: true,
		},
		{
			Role:     "moderator",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/api/moderation/v2/*", Action: "*"},
				{Object: "/reviews/:id", Action: "DELETE"},
			},
			Immutable: true,
		},
		{
			Role:     "support",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/users", Action: "GET"},
				{Object: "/users/:id", Action: "GET"},
				{Object: "/users/:id/status", Action: "PATCH"},
				{Object: "/rewards/adjust", Action: "POST"},
			},
			Immutable: true,
		},
		{
			Role:     "trust_officer",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/orgs/:id/verify", Action: "PATCH"},
				{Object: "/orgs/:id", Action: "DELETE"},
				{Object: "/anomalies", Action: "GET"},
				{Object: "/anomalies/:id/ack", Action: "POST"},
				{Object: "/orgs/:id/trust/recompute", Action: "POST"},
			},
			Immutable: true,
		},
		{
			Role:     "billing",
			Inherits: []string{"readonly_auditor"},
			Policies: []Policy{
				{Object: "/plans", Action: "*"},
				{Object: "/plans/:id", Action: "*"},
				{Object: "/orgs/:id/subscription", Action: "POST"},
			},
			Immutable: true,
		},
	}
}

// BootstrapBuiltinRoles seeds the built-in roles and their policies.
// Idempotent: existing rules are left alone.
func (s *Service) BootstrapBuiltinRoles() error {
	if s == nil || s.enforcer == nil {
		return fmt.Errorf("authz service unavailable")
	}

	changed := false
	for _, seed := range BuiltinRoleSeeds() {
		role, err := NormalizeRole(seed.Role)
		if err != nil {
			return err
		}

		exists, err := s.enforcer.HasNamedGroupingPolicy("g", role, roleAnchor)
		if err != nil {
			return fmt.Errorf("check builtin role failed: %w", err)
		}
		if !exists {
			added, err := s.enforcer.AddNamedGroupingPolicy("g", role, roleAnchor)
			if err != nil {
				return fmt.Errorf("create builtin role failed: %w", err)
			}
			if added {
				changed = true
			}
		}

		for _, parent := range seed.Inherits {
			parentRole, err := NormalizeRole(parent)
			if err != nil {
				return err
			}
			added, err := s.enforcer.AddNamedGroupingPolicy("g", role, parentRole)
			if err != nil {
				return fmt.Errorf("link role inheritance failed: %w", err)
			}
			if added {
				changed = true
			}
		}

		for _, policy := range seed.Policies {
			added, err := s.enforcer.AddPolicy(role, NormalizeObject(policy.Object), NormalizeAction(policy.Action))
			if err != nil {
				return fmt.Errorf("seed builtin policy failed: %w", err)
			}
			if added {
				changed = true
			}
		}
	}

	if changed {
		return s.ReloadPolicy()
	}
	return nil
}
