package volunteer

import (
	"context"
	"log/slog"
	"strings"

	"github.com/frahmantamala/ldc-construction/internal"
	"github.com/frahmantamala/ldc-construction/internal/audit"
	volunteerDatamodel "github.com/frahmantamala/ldc-construction/internal/core/datamodel/volunteer"
	"github.com/frahmantamala/ldc-construction/internal/core/ids"
	"github.com/frahmantamala/ldc-construction/internal/tenancy"
)

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200
)

type ListQuery struct {
	Search string
	Page   int
	Limit  int
}

func (q *ListQuery) Normalize() {
	q.Search = strings.TrimSpace(q.Search)
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
}

func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

type RepositoryAPI interface {
	List(ctx context.Context, pred tenancy.Predicate, q ListQuery) ([]*volunteerDatamodel.Volunteer, int64, error)
	GetByID(ctx context.Context, id string) (*volunteerDatamodel.Volunteer, error)
	Create(ctx context.Context, v *volunteerDatamodel.Volunteer) error
	UpdateConstructionGroup(ctx context.Context, id, cgID string) error
	ActiveConstructionGroupExists(ctx context.Context, cgID string) (bool, error)
}

type AccessPolicy interface {
	CanAccessCG(ctx context.Context, scope *tenancy.Scope, cgID string) (bool, error)
	CanManageInCG(ctx context.Context, scope *tenancy.Scope, cgID string) (bool, error)
}

type Auditor interface {
	VolunteerCreated(ctx context.Context, userID, volunteerID, cgID string, newValues map[string]interface{})
	VolunteerCGTransfer(ctx context.Context, userID, volunteerID, volunteerName, fromCGID, toCGID string)
	CrossCGAccess(ctx context.Context, userID string, resource audit.Resource, resourceID, ownCGID, targetCGID string)
}

type Service struct {
	repo    RepositoryAPI
	policy  AccessPolicy
	auditor Auditor
	logger  *slog.Logger
}

func NewService(repo RepositoryAPI, policy AccessPolicy, auditor Auditor, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		policy:  policy,
		auditor: auditor,
		logger:  logger,
	}
}

// List returns the volunteers visible to the scope. A super admin with a
// selected construction group only sees that group.
func (s *Service) List(ctx context.Context, scope *tenancy.Scope, selected string, q ListQuery) (*ListResponse, error) {
	if scope == nil {
		return nil, internal.ErrScopeUnavailable
	}
	q.Normalize()

	pred := tenancy.BuildFilter(scope).Narrow(tenancy.EffectiveCGID(scope, selected))
	rows, total, err := s.repo.List(ctx, pred, q)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list volunteers", "error", err, "user_id", scope.UserID, "predicate", pred.Kind.String())
		return nil, internal.NewInternalError("failed to list volunteers", err)
	}

	out := make([]Volunteer, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return &ListResponse{Volunteers: out, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

// Get hides volunteers of other construction groups behind a 404.
func (s *Service) Get(ctx context.Context, scope *tenancy.Scope, id string) (*Volunteer, error) {
	if scope == nil {
		return nil, internal.ErrScopeUnavailable
	}
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !scope.CanViewAllBranches {
		ok, err := s.policy.CanAccessCG(ctx, scope, deref(row.ConstructionGroupID))
		if err != nil {
			return nil, internal.NewInternalError("failed to check construction group access", err)
		}
		if !ok {
			return nil, internal.ErrVolunteerNotFound
		}
	}
	v := FromDataModel(row)
	return &v, nil
}

func (s *Service) Create(ctx context.Context, scope *tenancy.Scope, selected string, dto CreateVolunteerDTO) (*Volunteer, error) {
	if scope == nil {
		return nil, internal.ErrScopeUnavailable
	}
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	cgID := dto.ConstructionGroupID
	if cgID == "" {
		cgID = tenancy.EffectiveCGID(scope, selected)
	}
	if cgID == "" {
		return nil, internal.NewValidationFieldError("constructionGroupId", "a construction group is required", internal.ErrCodeValidationFailed)
	}

	if err := s.requireManage(ctx, scope, cgID); err != nil {
		return nil, err
	}
	if err := s.requireActiveGroup(ctx, cgID); err != nil {
		return nil, err
	}

	row := &volunteerDatamodel.Volunteer{
		ID:                  ids.New(),
		FirstName:           dto.FirstName,
		LastName:            dto.LastName,
		Email:               dto.Email,
		ConstructionGroupID: &cgID,
		IsActive:            true,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.ErrorContext(ctx, "failed to create volunteer", "error", err, "cg_id", cgID)
		return nil, internal.NewInternalError("failed to create volunteer", err)
	}

	v := FromDataModel(row)
	s.auditor.VolunteerCreated(ctx, scope.UserID, v.ID, cgID, map[string]interface{}{
		"firstName":           v.FirstName,
		"lastName":            v.LastName,
		"email":               v.Email,
		"constructionGroupId": cgID,
	})
	s.logger.InfoContext(ctx, "volunteer created", "volunteer_id", v.ID, "cg_id", cgID)
	return &v, nil
}

// Transfer moves a volunteer to another construction group. The caller
// must manage both groups; moving outside the caller's own group is also
// recorded as cross-group access.
func (s *Service) Transfer(ctx context.Context, scope *tenancy.Scope, id string, dto TransferDTO) (*TransferResponse, error) {
	if scope == nil {
		return nil, internal.ErrScopeUnavailable
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	to := strings.TrimSpace(dto.ToConstructionGroupID)

	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	from := deref(row.ConstructionGroupID)
	if from == to {
		return nil, internal.NewValidationFieldError("toConstructionGroupId", "volunteer already belongs to this construction group", internal.ErrCodeValidationFailed)
	}

	if from != "" {
		if err := s.requireManage(ctx, scope, from); err != nil {
			return nil, err
		}
	}
	if err := s.requireManage(ctx, scope, to); err != nil {
		return nil, err
	}
	if err := s.requireActiveGroup(ctx, to); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateConstructionGroup(ctx, id, to); err != nil {
		s.logger.ErrorContext(ctx, "failed to transfer volunteer", "error", err, "volunteer_id", id)
		return nil, internal.NewInternalError("failed to transfer volunteer", err)
	}

	row.ConstructionGroupID = &to
	v := FromDataModel(row)
	s.auditor.VolunteerCGTransfer(ctx, scope.UserID, v.ID, v.FullName(), from, to)
	if to != scope.ConstructionGroupID {
		s.auditor.CrossCGAccess(ctx, scope.UserID, audit.ResourceVolunteer, v.ID, scope.ConstructionGroupID, to)
	}
	s.logger.InfoContext(ctx, "volunteer transferred", "volunteer_id", v.ID, "from_cg", from, "to_cg", to)

	return &TransferResponse{Volunteer: v, Message: "Volunteer transferred"}, nil
}

func (s *Service) load(ctx context.Context, id string) (*volunteerDatamodel.Volunteer, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load volunteer", err)
	}
	if row == nil || !row.IsActive {
		return nil, internal.ErrVolunteerNotFound
	}
	return row, nil
}

func (s *Service) requireManage(ctx context.Context, scope *tenancy.Scope, cgID string) error {
	ok, err := s.policy.CanManageInCG(ctx, scope, cgID)
	if err != nil {
		return internal.NewInternalError("failed to check construction group access", err)
	}
	if !ok {
		s.logger.WarnContext(ctx, "construction group write denied", "user_id", scope.UserID, "cg_id", cgID)
		return internal.ErrCGAccessDenied
	}
	return nil
}

func (s *Service) requireActiveGroup(ctx context.Context, cgID string) error {
	ok, err := s.repo.ActiveConstructionGroupExists(ctx, cgID)
	if err != nil {
		return internal.NewInternalError("failed to load construction group", err)
	}
	if !ok {
		return internal.ErrCGNotFound
	}
	return nil
}
