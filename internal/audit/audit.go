package audit

import (
	"time"

	auditDatamodel "github.com/frahmantamala/ldc-construction/internal/core/datamodel/audit"
)

type Action string

const (
	ActionCreate         Action = "CREATE"
	ActionUpdate         Action = "UPDATE"
	ActionDelete         Action = "DELETE"
	ActionLogin          Action = "LOGIN"
	ActionLogout         Action = "LOGOUT"
	ActionView           Action = "VIEW"
	ActionExport         Action = "EXPORT"
	ActionImport         Action = "IMPORT"
	ActionInvite         Action = "INVITE"
	ActionActivate       Action = "ACTIVATE"
	ActionDeactivate     Action = "DEACTIVATE"
	ActionPasswordChange Action = "PASSWORD_CHANGE"
	ActionRoleChange     Action = "ROLE_CHANGE"
	ActionConfigChange   Action = "CONFIG_CHANGE"

	// tenant actions
	ActionCGFilterChange      Action = "CG_FILTER_CHANGE"
	ActionUserCGAssignment    Action = "USER_CG_ASSIGNMENT"
	ActionCrossCGAccess       Action = "CROSS_CG_ACCESS"
	ActionCGCreated           Action = "CG_CREATED"
	ActionCGUpdated           Action = "CG_UPDATED"
	ActionCGDeleted           Action = "CG_DELETED"
	ActionCGReactivated       Action = "CG_REACTIVATED"
	ActionVolunteerCGTransfer Action = "VOLUNTEER_CG_TRANSFER"
	ActionUserCreated         Action = "USER_CREATED"
	ActionUserUpdated         Action = "USER_UPDATED"
	ActionUserDeleted         Action = "USER_DELETED"
	ActionVolunteerCreated    Action = "VOLUNTEER_CREATED"
	ActionVolunteerUpdated    Action = "VOLUNTEER_UPDATED"
	ActionVolunteerDeleted    Action = "VOLUNTEER_DELETED"
)

var actions = map[Action]struct{}{
	ActionCreate: {}, ActionUpdate: {}, ActionDelete: {}, ActionLogin: {}, ActionLogout: {},
	ActionView: {}, ActionExport: {}, ActionImport: {}, ActionInvite: {}, ActionActivate: {},
	ActionDeactivate: {}, ActionPasswordChange: {}, ActionRoleChange: {}, ActionConfigChange: {},
	ActionCGFilterChange: {}, ActionUserCGAssignment: {}, ActionCrossCGAccess: {},
	ActionCGCreated: {}, ActionCGUpdated: {}, ActionCGDeleted: {}, ActionCGReactivated: {},
	ActionVolunteerCGTransfer: {}, ActionUserCreated: {}, ActionUserUpdated: {}, ActionUserDeleted: {},
	ActionVolunteerCreated: {}, ActionVolunteerUpdated: {}, ActionVolunteerDeleted: {},
}

func ParseAction(s string) (Action, bool) {
	a := Action(s)
	_, ok := actions[a]
	return a, ok
}

type Resource string

const (
	ResourceUser              Resource = "USER"
	ResourceSession           Resource = "SESSION"
	ResourceProject           Resource = "PROJECT"
	ResourceRole              Resource = "ROLE"
	ResourceRoleAssignment    Resource = "ROLE_ASSIGNMENT"
	ResourceTradeTeam         Resource = "TRADE_TEAM"
	ResourceCrew              Resource = "CREW"
	ResourceEmailConfig       Resource = "EMAIL_CONFIG"
	ResourceInvitation        Resource = "INVITATION"
	ResourceSystem            Resource = "SYSTEM"
	ResourceCGFilter          Resource = "CG_FILTER"
	ResourceConstructionGroup Resource = "CONSTRUCTION_GROUP"
	ResourceVolunteer         Resource = "VOLUNTEER"
)

var resources = map[Resource]struct{}{
	ResourceUser: {}, ResourceSession: {}, ResourceProject: {}, ResourceRole: {},
	ResourceRoleAssignment: {}, ResourceTradeTeam: {}, ResourceCrew: {}, ResourceEmailConfig: {},
	ResourceInvitation: {}, ResourceSystem: {}, ResourceCGFilter: {}, ResourceConstructionGroup: {},
	ResourceVolunteer: {},
}

func ParseResource(s string) (Resource, bool) {
	r := Resource(s)
	_, ok := resources[r]
	return r, ok
}

// Entry describes one auditable action. Empty strings and nil maps are
// stored as NULL.
type Entry struct {
	UserID     string
	Action     Action
	Resource   Resource
	ResourceID string
	FromCGID   string
	ToCGID     string
	OldValues  map[string]interface{}
	NewValues  map[string]interface{}
	Metadata   map[string]interface{}
	IPAddress  string
	UserAgent  string
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ToDataModel(e Entry, id string, createdAt time.Time) *auditDatamodel.AuditLog {
	return &auditDatamodel.AuditLog{
		ID:                      id,
		UserID:                  nullable(e.UserID),
		Action:                  string(e.Action),
		Resource:                string(e.Resource),
		ResourceID:              nullable(e.ResourceID),
		FromConstructionGroupID: nullable(e.FromCGID),
		ToConstructionGroupID:   nullable(e.ToCGID),
		OldValues:               auditDatamodel.JSONMap(e.OldValues),
		NewValues:               auditDatamodel.JSONMap(e.NewValues),
		Metadata:                auditDatamodel.JSONMap(e.Metadata),
		IPAddress:               nullable(e.IPAddress),
		UserAgent:               nullable(e.UserAgent),
		CreatedAt:               createdAt,
	}
}

type ActorView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type GroupRef struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// EntryView is the API shape of a stored audit log row.
type EntryView struct {
	ID                    string                 `json:"id"`
	UserID                string                 `json:"userId,omitempty"`
	User                  *ActorView             `json:"user,omitempty"`
	Action                string                 `json:"action"`
	Resource              string                 `json:"resource"`
	ResourceID            string                 `json:"resourceId,omitempty"`
	FromConstructionGroup *GroupRef              `json:"fromConstructionGroup,omitempty"`
	ToConstructionGroup   *GroupRef              `json:"toConstructionGroup,omitempty"`
	OldValues             map[string]interface{} `json:"oldValues,omitempty"`
	NewValues             map[string]interface{} `json:"newValues,omitempty"`
	Metadata              map[string]interface{} `json:"metadata,omitempty"`
	IPAddress             string                 `json:"ipAddress,omitempty"`
	UserAgent             string                 `json:"userAgent,omitempty"`
	CreatedAt             time.Time              `json:"createdAt"`
}

func FromDataModel(l *auditDatamodel.AuditLog) EntryView {
	v := EntryView{
		ID:         l.ID,
		UserID:     value(l.UserID),
		Action:     l.Action,
		Resource:   l.Resource,
		ResourceID: value(l.ResourceID),
		OldValues:  l.OldValues,
		NewValues:  l.NewValues,
		Metadata:   l.Metadata,
		IPAddress:  value(l.IPAddress),
		UserAgent:  value(l.UserAgent),
		CreatedAt:  l.CreatedAt,
	}
	if l.User != nil {
		v.User = &ActorView{ID: l.User.ID, Name: l.User.Name, Email: l.User.Email, Role: l.User.Role}
	}
	if cg := l.FromConstructionGroup; cg != nil {
		v.FromConstructionGroup = &GroupRef{ID: cg.ID, Code: cg.Code, Name: cg.Name}
	} else if l.FromConstructionGroupID != nil {
		v.FromConstructionGroup = &GroupRef{ID: *l.FromConstructionGroupID}
	}
	if cg := l.ToConstructionGroup; cg != nil {
		v.ToConstructionGroup = &GroupRef{ID: cg.ID, Code: cg.Code, Name: cg.Name}
	} else if l.ToConstructionGroupID != nil {
		v.ToConstructionGroup = &GroupRef{ID: *l.ToConstructionGroupID}
	}
	return v
}
