package tenancy

import (
	"context"
	"fmt"
	"log/slog"
)

// Scope is the per-request tenant context of a principal. Empty strings
// stand for "not assigned".
type Scope struct {
	UserID              string `json:"userId"`
	ConstructionGroupID string `json:"constructionGroupId,omitempty"`
	RegionID            string `json:"regionId,omitempty"`
	ZoneID              string `json:"zoneId,omitempty"`
	BranchID            string `json:"branchId,omitempty"`
	Role                Role   `json:"role"`
	Capabilities
}

// NewScope derives capabilities from role. Used by the resolver and tests.
func NewScope(userID string, role Role, cgID, regionID, zoneID, branchID string) *Scope {
	return &Scope{
		UserID:              userID,
		ConstructionGroupID: cgID,
		RegionID:            regionID,
		ZoneID:              zoneID,
		BranchID:            branchID,
		Role:                role,
		Capabilities:        role.Capabilities(),
	}
}

func (s *Scope) HasTenant() bool {
	return s != nil && s.ConstructionGroupID != ""
}

func (s *Scope) IsSuperAdmin() bool {
	return s != nil && s.CanViewAllBranches
}

// PrincipalRecord is the user row joined with its hierarchy ancestry.
type PrincipalRecord struct {
	UserID              string
	Role                string
	IsActive            bool
	ConstructionGroupID string
	RegionID            string
	ZoneID              string
	BranchID            string
}

type RepositoryAPI interface {
	FindPrincipal(ctx context.Context, userID string) (*PrincipalRecord, error)
}

type Resolver struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewResolver(repo RepositoryAPI, logger *slog.Logger) *Resolver {
	return &Resolver{repo: repo, logger: logger}
}

// Resolve returns nil when there is no usable principal. Callers must deny
// on nil.
func (r *Resolver) Resolve(ctx context.Context, userID string) (*Scope, error) {
	if userID == "" {
		return nil, nil
	}

	rec, err := r.repo.FindPrincipal(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve scope: %w", err)
	}
	if rec == nil || !rec.IsActive {
		r.logger.WarnContext(ctx, "scope requested for missing or inactive user", "user_id", userID)
		return nil, nil
	}

	role, ok := ParseRole(rec.Role)
	if !ok {
		r.logger.WarnContext(ctx, "user has unknown role, no capabilities granted", "user_id", userID, "role", rec.Role)
	}

	return NewScope(rec.UserID, role, rec.ConstructionGroupID, rec.RegionID, rec.ZoneID, rec.BranchID), nil
}
