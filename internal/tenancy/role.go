package tenancy

// Role is the closed set of principal roles. Anything that does not parse
// becomes RoleUnknown and carries no capabilities.
type Role string

const (
	RoleUnknown Role = ""

	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"

	RoleZoneOverseer          Role = "ZONE_OVERSEER"
	RoleZoneOverseerAssistant Role = "ZONE_OVERSEER_ASSISTANT"
	RoleZoneOverseerSupport   Role = "ZONE_OVERSEER_SUPPORT"

	RoleCGOverseer          Role = "CONSTRUCTION_GROUP_OVERSEER"
	RoleCGOverseerAssistant Role = "CONSTRUCTION_GROUP_OVERSEER_ASSISTANT"

	RolePersonnelContact          Role = "PERSONNEL_CONTACT"
	RolePersonnelContactAssistant Role = "PERSONNEL_CONTACT_ASSISTANT"
	RolePersonnelContactSupport   Role = "PERSONNEL_CONTACT_SUPPORT"

	RoleTradeTeamOverseer          Role = "TRADE_TEAM_OVERSEER"
	RoleTradeTeamOverseerAssistant Role = "TRADE_TEAM_OVERSEER_ASSISTANT"
	RoleTradeTeamSupport           Role = "TRADE_TEAM_SUPPORT"

	RoleReadOnly      Role = "READ_ONLY"
	RoleReadOnlyAdmin Role = "READ_ONLY_ADMIN"
)

var knownRoles = map[Role]struct{}{
	RoleSuperAdmin:                 {},
	RoleAdmin:                      {},
	RoleZoneOverseer:               {},
	RoleZoneOverseerAssistant:      {},
	RoleZoneOverseerSupport:        {},
	RoleCGOverseer:                 {},
	RoleCGOverseerAssistant:        {},
	RolePersonnelContact:           {},
	RolePersonnelContactAssistant:  {},
	RolePersonnelContactSupport:    {},
	RoleTradeTeamOverseer:          {},
	RoleTradeTeamOverseerAssistant: {},
	RoleTradeTeamSupport:           {},
	RoleReadOnly:                   {},
	RoleReadOnlyAdmin:              {},
}

// ParseRole maps a stored role string onto the enum.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	if _, ok := knownRoles[r]; ok {
		return r, true
	}
	return RoleUnknown, false
}

// Roles lists every known role, in declaration order.
func Roles() []Role {
	return []Role{
		RoleSuperAdmin, RoleAdmin,
		RoleZoneOverseer, RoleZoneOverseerAssistant, RoleZoneOverseerSupport,
		RoleCGOverseer, RoleCGOverseerAssistant,
		RolePersonnelContact, RolePersonnelContactAssistant, RolePersonnelContactSupport,
		RoleTradeTeamOverseer, RoleTradeTeamOverseerAssistant, RoleTradeTeamSupport,
		RoleReadOnly, RoleReadOnlyAdmin,
	}
}

func (r Role) String() string { return string(r) }

type Capabilities struct {
	CanViewAllBranches bool `json:"canViewAllBranches"`
	CanViewAllZones    bool `json:"canViewAllZones"`
	CanViewZoneRegions bool `json:"canViewZoneRegions"`
	CanManageCG        bool `json:"canManageCG"`
}

func (r Role) Capabilities() Capabilities {
	switch r {
	case RoleSuperAdmin:
		return Capabilities{CanViewAllBranches: true, CanViewAllZones: true, CanViewZoneRegions: true, CanManageCG: true}
	case RoleZoneOverseer, RoleZoneOverseerAssistant, RoleZoneOverseerSupport:
		return Capabilities{CanViewZoneRegions: true, CanManageCG: true}
	case RoleCGOverseer, RoleCGOverseerAssistant,
		RolePersonnelContact, RolePersonnelContactAssistant, RolePersonnelContactSupport:
		return Capabilities{CanManageCG: true}
	case RoleAdmin, RoleTradeTeamOverseer, RoleTradeTeamOverseerAssistant, RoleTradeTeamSupport,
		RoleReadOnly, RoleReadOnlyAdmin:
		return Capabilities{}
	default:
		return Capabilities{}
	}
}

// Outranks reports whether r sees a wider slice of the hierarchy than other.
func (r Role) Outranks(other Role) bool {
	return r.Capabilities().reach() > other.Capabilities().reach()
}

func (c Capabilities) reach() int {
	switch {
	case c.CanViewAllBranches:
		return 3
	case c.CanViewZoneRegions:
		return 2
	default:
		return 1
	}
}
