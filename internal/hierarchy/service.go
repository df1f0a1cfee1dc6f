package hierarchy

import (
	"context"
	"errors"
	"log/slog"

	"github.com/frahmantamala/ldc-construction/internal"
	hierarchyDatamodel "github.com/frahmantamala/ldc-construction/internal/core/datamodel/hierarchy"
	"github.com/frahmantamala/ldc-construction/internal/core/ids"
	"github.com/frahmantamala/ldc-construction/internal/tenancy"
	"gorm.io/gorm"
)

// RegionQuery and CGQuery narrow active rows. Empty fields do not filter.
type RegionQuery struct {
	ZoneID   string
	RegionID string
}

type CGQuery struct {
	ZoneID string
	ID     string
}

type RepositoryAPI interface {
	ListBranches(ctx context.Context, branchID string) ([]*hierarchyDatamodel.Branch, error)
	ListZones(ctx context.Context, zoneID string) ([]*hierarchyDatamodel.Zone, error)
	ListRegions(ctx context.Context, q RegionQuery) ([]*hierarchyDatamodel.Region, error)
	ListConstructionGroups(ctx context.Context, q CGQuery) ([]*hierarchyDatamodel.ConstructionGroup, error)
	GetConstructionGroup(ctx context.Context, id string) (*hierarchyDatamodel.ConstructionGroup, error)
	GetConstructionGroupByCode(ctx context.Context, code string) (*hierarchyDatamodel.ConstructionGroup, error)
	GetRegion(ctx context.Context, id string) (*hierarchyDatamodel.Region, error)
	CreateConstructionGroup(ctx context.Context, cg *hierarchyDatamodel.ConstructionGroup) error
	UpdateConstructionGroup(ctx context.Context, cg *hierarchyDatamodel.ConstructionGroup) error
	SetConstructionGroupActive(ctx context.Context, id string, active bool) error
}

type DependencyCounter interface {
	CountDependencies(ctx context.Context, cgID string) (DependencyCounts, error)
}

type AccessPolicy interface {
	CanAccessCG(ctx context.Context, scope *tenancy.Scope, cgID string) (bool, error)
}

// Auditor is the subset of the audit recorder used here.
type Auditor interface {
	CGCreated(ctx context.Context, userID, cgID, code, name, regionID string)
	CGUpdated(ctx context.Context, userID, cgID string, oldValues, newValues map[string]interface{})
	CGDeleted(ctx context.Context, userID, cgID, code, name string)
	CGReactivated(ctx context.Context, userID, cgID, code, name string)
	CGFilterChange(ctx context.Context, userID, fromCGID, toCGID, staleFrom string)
}

type Service struct {
	repo    RepositoryAPI
	deps    DependencyCounter
	policy  AccessPolicy
	auditor Auditor
	logger  *slog.Logger
}

func NewService(repo RepositoryAPI, deps DependencyCounter, policy AccessPolicy, auditor Auditor, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		deps:    deps,
		policy:  policy,
		auditor: auditor,
		logger:  logger,
	}
}

func requireSuperAdmin(scope *tenancy.Scope) error {
	if scope == nil {
		return internal.ErrScopeUnavailable
	}
	if !scope.CanViewAllBranches {
		return internal.ErrSuperAdminOnly
	}
	return nil
}

// AccessibleConstructionGroups lists the active groups a principal may see.
// Principals without a tenant or elevated capability get an empty list.
func (s *Service) AccessibleConstructionGroups(ctx context.Context, scope *tenancy.Scope) ([]ConstructionGroup, error) {
	out := []ConstructionGroup{}
	if scope == nil {
		return out, nil
	}

	var q CGQuery
	switch {
	case scope.CanViewAllBranches:
	case scope.CanViewZoneRegions && scope.ZoneID != "":
		q.ZoneID = scope.ZoneID
	case scope.ConstructionGroupID != "":
		q.ID = scope.ConstructionGroupID
	default:
		return out, nil
	}

	rows, err := s.repo.ListConstructionGroups(ctx, q)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list accessible construction groups", "error", err, "user_id", scope.UserID)
		return nil, internal.NewInternalError("failed to list construction groups", err)
	}
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, nil
}

func (s *Service) Hierarchy(ctx context.Context, scope *tenancy.Scope, level Level) (*HierarchyResponse, error) {
	if scope == nil {
		return nil, internal.ErrScopeUnavailable
	}
	resp := &HierarchyResponse{}
	all := level == LevelAll

	if all || level == LevelBranches {
		branches, err := s.branches(ctx, scope)
		if err != nil {
			return nil, err
		}
		resp.Branches = &branches
	}
	if all || level == LevelZones {
		zones, err := s.zones(ctx, scope)
		if err != nil {
			return nil, err
		}
		resp.Zones = &zones
	}
	if all || level == LevelRegions {
		regions, err := s.regions(ctx, scope)
		if err != nil {
			return nil, err
		}
		resp.Regions = &regions
	}
	if all || level == LevelConstructionGroups {
		cgs, err := s.AccessibleConstructionGroups(ctx, scope)
		if err != nil {
			return nil, err
		}
		resp.ConstructionGroups = &cgs
	}
	if all {
		resp.Scope = &HierarchyScope{
			ConstructionGroupID: scope.ConstructionGroupID,
			CanViewAllBranches:  scope.CanViewAllBranches,
			CanViewZoneRegions:  scope.CanViewZoneRegions,
		}
	}
	return resp, nil
}

func (s *Service) branches(ctx context.Context, scope *tenancy.Scope) ([]Branch, error) {
	out := []Branch{}
	branchID := ""
	if !scope.CanViewAllBranches {
		if scope.BranchID == "" {
			return out, nil
		}
		branchID = scope.BranchID
	}
	rows, err := s.repo.ListBranches(ctx, branchID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list branches", err)
	}
	for _, row := range rows {
		out = append(out, BranchFromDataModel(row))
	}
	return out, nil
}

func (s *Service) zones(ctx context.Context, scope *tenancy.Scope) ([]Zone, error) {
	out := []Zone{}
	zoneID := ""
	if !scope.CanViewAllBranches {
		if scope.ZoneID == "" {
			return out, nil
		}
		zoneID = scope.ZoneID
	}
	rows, err := s.repo.ListZones(ctx, zoneID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list zones", err)
	}
	for _, row := range rows {
		out = append(out, ZoneFromDataModel(row))
	}
	return out, nil
}

func (s *Service) regions(ctx context.Context, scope *tenancy.Scope) ([]Region, error) {
	out := []Region{}
	var q RegionQuery
	switch {
	case scope.CanViewAllBranches:
	case scope.CanViewZoneRegions && scope.ZoneID != "":
		q.ZoneID = scope.ZoneID
	case scope.RegionID != "":
		q.RegionID = scope.RegionID
	default:
		return out, nil
	}
	rows, err := s.repo.ListRegions(ctx, q)
	if err != nil {
		return nil, internal.NewInternalError("failed to list regions", err)
	}
	for _, row := range rows {
		out = append(out, RegionFromDataModel(row))
	}
	return out, nil
}

func (s *Service) GetConstructionGroup(ctx context.Context, scope *tenancy.Scope, id string) (*ConstructionGroupResponse, error) {
	if scope == nil {
		return nil, internal.ErrScopeUnavailable
	}
	row, err := s.repo.GetConstructionGroup(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load construction group", err)
	}
	if row == nil {
		return nil, internal.ErrCGNotFound
	}

	ok, err := s.policy.CanAccessCG(ctx, scope, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to check construction group access", err)
	}
	if !ok {
		s.logger.WarnContext(ctx, "construction group read denied", "user_id", scope.UserID, "cg_id", id)
		return nil, internal.ErrCGAccessDenied
	}

	resp := &ConstructionGroupResponse{ConstructionGroup: FromDataModel(row)}
	if scope.CanManageCG {
		counts, err := s.deps.CountDependencies(ctx, id)
		if err != nil {
			return nil, internal.NewInternalError("failed to count dependencies", err)
		}
		resp.Dependencies = &counts
	}
	return resp, nil
}

// CreateConstructionGroup reactivates an inactive group holding the same
// code instead of failing. The bool reports whether a new row was created.
func (s *Service) CreateConstructionGroup(ctx context.Context, scope *tenancy.Scope, dto CreateConstructionGroupDTO) (*ConstructionGroupResponse, bool, error) {
	if err := requireSuperAdmin(scope); err != nil {
		return nil, false, err
	}
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, false, err
	}

	region, err := s.repo.GetRegion(ctx, dto.RegionID)
	if err != nil {
		return nil, false, internal.NewInternalError("failed to load region", err)
	}
	if region == nil {
		return nil, false, internal.ErrRegionNotFound
	}

	existing, err := s.repo.GetConstructionGroupByCode(ctx, dto.Code)
	if err != nil {
		return nil, false, internal.NewInternalError("failed to check construction group code", err)
	}

	if existing != nil {
		if existing.IsActive {
			return nil, false, internal.ErrCGCodeConflict
		}

		existing.Name = dto.Name
		existing.Description = dto.Description
		existing.RegionID = dto.RegionID
		existing.IsActive = true
		if err := s.repo.UpdateConstructionGroup(ctx, existing); err != nil {
			s.logger.ErrorContext(ctx, "failed to reactivate construction group", "error", err, "cg_id", existing.ID)
			return nil, false, internal.NewInternalError("failed to reactivate construction group", err)
		}
		s.auditor.CGReactivated(ctx, scope.UserID, existing.ID, existing.Code, existing.Name)
		s.logger.InfoContext(ctx, "construction group reactivated", "cg_id", existing.ID, "code", existing.Code)

		return s.reload(ctx, existing.ID, "Construction group reactivated", false)
	}

	row := &hierarchyDatamodel.ConstructionGroup{
		ID:          ids.New(),
		Code:        dto.Code,
		Name:        dto.Name,
		Description: dto.Description,
		RegionID:    dto.RegionID,
		IsActive:    true,
	}
	if err := s.repo.CreateConstructionGroup(ctx, row); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, false, internal.ErrCGCodeConflict
		}
		s.logger.ErrorContext(ctx, "failed to create construction group", "error", err, "code", dto.Code)
		return nil, false, internal.NewInternalError("failed to create construction group", err)
	}
	s.auditor.CGCreated(ctx, scope.UserID, row.ID, row.Code, row.Name, row.RegionID)
	s.logger.InfoContext(ctx, "construction group created", "cg_id", row.ID, "code", row.Code)

	return s.reload(ctx, row.ID, "Construction group created", true)
}

func (s *Service) reload(ctx context.Context, id, message string, created bool) (*ConstructionGroupResponse, bool, error) {
	row, err := s.repo.GetConstructionGroup(ctx, id)
	if err != nil {
		return nil, false, internal.NewInternalError("failed to load construction group", err)
	}
	if row == nil {
		return nil, false, internal.ErrCGNotFound
	}
	return &ConstructionGroupResponse{ConstructionGroup: FromDataModel(row), Message: message}, created, nil
}

func (s *Service) UpdateConstructionGroup(ctx context.Context, scope *tenancy.Scope, id string, dto UpdateConstructionGroupDTO) (*ConstructionGroupResponse, error) {
	if err := requireSuperAdmin(scope); err != nil {
		return nil, err
	}
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetConstructionGroup(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load construction group", err)
	}
	if row == nil {
		return nil, internal.ErrCGNotFound
	}

	if dto.Code != row.Code {
		other, err := s.repo.GetConstructionGroupByCode(ctx, dto.Code)
		if err != nil {
			return nil, internal.NewInternalError("failed to check construction group code", err)
		}
		if other != nil && other.ID != row.ID {
			return nil, internal.ErrCGCodeConflict
		}
	}

	region, err := s.repo.GetRegion(ctx, dto.RegionID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load region", err)
	}
	if region == nil {
		return nil, internal.ErrRegionNotFound
	}

	oldValues := FromDataModel(row).auditValues()

	row.Code = dto.Code
	row.Name = dto.Name
	row.Description = dto.Description
	row.RegionID = dto.RegionID
	row.Region = nil

	if err := s.repo.UpdateConstructionGroup(ctx, row); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, internal.ErrCGCodeConflict
		}
		s.logger.ErrorContext(ctx, "failed to update construction group", "error", err, "cg_id", id)
		return nil, internal.NewInternalError("failed to update construction group", err)
	}

	s.auditor.CGUpdated(ctx, scope.UserID, row.ID, oldValues, FromDataModel(row).auditValues())
	s.logger.InfoContext(ctx, "construction group updated", "cg_id", row.ID, "code", row.Code)

	resp, _, err := s.reload(ctx, row.ID, "Construction group updated", false)
	return resp, err
}

// DeleteConstructionGroup deactivates a group that no active user,
// volunteer, trade team or project references. A refused delete is not
// audited.
func (s *Service) DeleteConstructionGroup(ctx context.Context, scope *tenancy.Scope, id string) (*ConstructionGroupResponse, error) {
	if err := requireSuperAdmin(scope); err != nil {
		return nil, err
	}

	row, err := s.repo.GetConstructionGroup(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load construction group", err)
	}
	if row == nil || !row.IsActive {
		return nil, internal.ErrCGNotFound
	}

	counts, err := s.deps.CountDependencies(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to count construction group dependencies", "error", err, "cg_id", id)
		return nil, internal.NewInternalError("failed to count dependencies", err)
	}
	if counts.Total() > 0 {
		s.logger.InfoContext(ctx, "construction group delete refused", "cg_id", id,
			"users", counts.Users, "volunteers", counts.Volunteers,
			"trade_teams", counts.TradeTeams, "projects", counts.Projects)
		return nil, internal.NewDependencyError(counts)
	}

	if err := s.repo.SetConstructionGroupActive(ctx, id, false); err != nil {
		s.logger.ErrorContext(ctx, "failed to deactivate construction group", "error", err, "cg_id", id)
		return nil, internal.NewInternalError("failed to deactivate construction group", err)
	}
	s.auditor.CGDeleted(ctx, scope.UserID, row.ID, row.Code, row.Name)
	s.logger.InfoContext(ctx, "construction group deactivated", "cg_id", id, "code", row.Code)

	row.IsActive = false
	return &ConstructionGroupResponse{ConstructionGroup: FromDataModel(row), Message: "Construction group deactivated"}, nil
}

// SetFilter validates the selection and records the change from previous.
// It returns the value to store; "" clears the filter.
func (s *Service) SetFilter(ctx context.Context, scope *tenancy.Scope, previous string, dto CGFilterDTO) (string, error) {
	if err := requireSuperAdmin(scope); err != nil {
		return "", err
	}

	next := ""
	if dto.ConstructionGroupID != nil {
		next = *dto.ConstructionGroupID
	}
	if next != "" {
		row, err := s.repo.GetConstructionGroup(ctx, next)
		if err != nil {
			return "", internal.NewInternalError("failed to load construction group", err)
		}
		if row == nil || !row.IsActive {
			return "", internal.ErrCGNotFound
		}
	}

	from, stale := previous, ""
	if previous != "" {
		row, err := s.repo.GetConstructionGroup(ctx, previous)
		if err != nil {
			return "", internal.NewInternalError("failed to load construction group", err)
		}
		if row == nil {
			from, stale = "", previous
		}
	}

	s.auditor.CGFilterChange(ctx, scope.UserID, from, next, stale)
	return next, nil
}

func (s *Service) Info(ctx context.Context, scope *tenancy.Scope, selected string) (*CGInfoResponse, error) {
	if scope == nil {
		return nil, internal.ErrScopeUnavailable
	}

	cgID := tenancy.EffectiveCGID(scope, selected)
	active := ""
	if scope.CanViewAllBranches {
		active = selected
	}

	if cgID == "" {
		if scope.CanViewAllBranches {
			return &CGInfoResponse{Name: "All Construction Groups", RegionName: "All Regions"}, nil
		}
		return &CGInfoResponse{Name: "No Construction Group", RegionName: "No Region"}, nil
	}

	row, err := s.repo.GetConstructionGroup(ctx, cgID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load construction group", err)
	}
	if row == nil {
		return &CGInfoResponse{Name: "No Construction Group", RegionName: "No Region", ActiveFilter: active}, nil
	}

	info := &CGInfoResponse{
		ConstructionGroupID: row.ID,
		Code:                row.Code,
		Name:                row.Name,
		RegionName:          "No Region",
		ActiveFilter:        active,
	}
	if row.Region != nil {
		info.RegionCode = row.Region.Code
		info.RegionName = row.Region.Name
	}
	return info, nil
}
