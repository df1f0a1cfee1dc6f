package user

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/ldc-construction/internal"
	userDatamodel "github.com/frahmantamala/ldc-construction/internal/core/datamodel/user"
	volunteerDatamodel "github.com/frahmantamala/ldc-construction/internal/core/datamodel/volunteer"
	"github.com/frahmantamala/ldc-construction/internal/tenancy"
)

type RepositoryAPI interface {
	GetByID(ctx context.Context, id string) (*userDatamodel.User, error)
	GetVolunteer(ctx context.Context, id string) (*volunteerDatamodel.Volunteer, error)
	// LinkVolunteer moves the user into cgID and makes volunteerID the
	// user's only linked volunteer, atomically.
	LinkVolunteer(ctx context.Context, userID, volunteerID, cgID string) error
}

type AccessPolicy interface {
	CanManageInCG(ctx context.Context, scope *tenancy.Scope, cgID string) (bool, error)
}

type Auditor interface {
	UserCGAssignment(ctx context.Context, userID, targetUserID, fromCGID, toCGID, volunteerID string)
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

func (s *Service) GetCurrentUser(ctx context.Context, scope *tenancy.Scope) (*ProfileResponse, error) {
	if scope == nil {
		return nil, internal.ErrScopeUnavailable
	}
	u, err := s.loadUser(ctx, scope.UserID)
	if err != nil {
		return nil, err
	}
	return &ProfileResponse{User: FromDataModel(u), Scope: scope}, nil
}

// LinkVolunteer assigns the target user to the construction group of the
// volunteer they are linked to.
func (s *Service) LinkVolunteer(ctx context.Context, scope *tenancy.Scope, targetUserID string, dto LinkVolunteerDTO) (*LinkVolunteerResponse, error) {
	if scope == nil {
		return nil, internal.ErrScopeUnavailable
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	target, err := s.loadUser(ctx, targetUserID)
	if err != nil {
		return nil, err
	}

	vol, err := s.repo.GetVolunteer(ctx, dto.VolunteerID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load volunteer", err)
	}
	if vol == nil || !vol.IsActive {
		return nil, internal.ErrVolunteerNotFound
	}
	if vol.ConstructionGroupID == nil || *vol.ConstructionGroupID == "" {
		return nil, internal.NewValidationFieldError("volunteerId", "volunteer has no construction group", internal.ErrCodeValidationFailed)
	}
	if vol.UserID != nil && *vol.UserID != target.ID {
		return nil, internal.ErrVolunteerLinked
	}
	toCG := *vol.ConstructionGroupID

	ok, err := s.policy.CanManageInCG(ctx, scope, toCG)
	if err != nil {
		return nil, internal.NewInternalError("failed to check construction group access", err)
	}
	if !ok {
		s.logger.WarnContext(ctx, "volunteer link denied", "user_id", scope.UserID, "cg_id", toCG)
		return nil, internal.ErrCGAccessDenied
	}

	fromCG := deref(target.ConstructionGroupID)
	if targetRole, _ := tenancy.ParseRole(target.Role); targetRole.Outranks(scope.Role) {
		s.logger.WarnContext(ctx, "volunteer link denied: target outranks caller", "user_id", scope.UserID, "target_user_id", target.ID)
		return nil, internal.ErrCGAccessDenied
	}
	if fromCG != "" && fromCG != toCG {
		ok, err := s.policy.CanManageInCG(ctx, scope, fromCG)
		if err != nil {
			return nil, internal.NewInternalError("failed to check construction group access", err)
		}
		if !ok {
			s.logger.WarnContext(ctx, "volunteer link denied", "user_id", scope.UserID, "cg_id", fromCG)
			return nil, internal.ErrCGAccessDenied
		}
	}

	if err := s.repo.LinkVolunteer(ctx, target.ID, vol.ID, toCG); err != nil {
		s.logger.ErrorContext(ctx, "failed to link volunteer", "error", err, "target_user_id", target.ID, "volunteer_id", vol.ID)
		return nil, internal.NewInternalError("failed to link volunteer", err)
	}

	s.auditor.UserCGAssignment(ctx, scope.UserID, target.ID, fromCG, toCG, vol.ID)
	s.logger.InfoContext(ctx, "volunteer linked", "target_user_id", target.ID, "volunteer_id", vol.ID, "from_cg", fromCG, "to_cg", toCG)

	updated, err := s.loadUser(ctx, target.ID)
	if err != nil {
		return nil, err
	}
	return &LinkVolunteerResponse{User: FromDataModel(updated), VolunteerID: vol.ID, Message: "Volunteer linked"}, nil
}

func (s *Service) loadUser(ctx context.Context, id string) (*userDatamodel.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if u == nil {
		return nil, internal.ErrUserNotFound
	}
	return u, nil
}
