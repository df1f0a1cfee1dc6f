package datamodel

import (
	"github.com/frahmantamala/ldc-construction/internal/core/datamodel/audit"
	"github.com/frahmantamala/ldc-construction/internal/core/datamodel/hierarchy"
	"github.com/frahmantamala/ldc-construction/internal/core/datamodel/user"
	"github.com/frahmantamala/ldc-construction/internal/core/datamodel/volunteer"
	"github.com/frahmantamala/ldc-construction/internal/core/datamodel/workforce"
)

// All lists every persisted model in dependency order. Production schema
// comes from the goose migrations; this is for AutoMigrate in tests.
func All() []interface{} {
	return []interface{}{
		&hierarchy.Branch{},
		&hierarchy.Zone{},
		&hierarchy.Region{},
		&hierarchy.ConstructionGroup{},
		&user.User{},
		&volunteer.Volunteer{},
		&workforce.TradeTeam{},
		&workforce.Project{},
		&audit.AuditLog{},
	}
}
