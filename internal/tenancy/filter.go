package tenancy

import "gorm.io/gorm"

// NoTenantSentinel never matches a real construction group id.
const NoTenantSentinel = "NO_CG_ASSIGNED"

const (
	DefaultTenantField  = "constructionGroupId"
	DefaultTenantColumn = "construction_group_id"
)

type PredicateKind int

const (
	PredicateNone PredicateKind = iota
	PredicateAll
	PredicateZone
	PredicateTenant
)

func (k PredicateKind) String() string {
	switch k {
	case PredicateAll:
		return "all"
	case PredicateZone:
		return "zone"
	case PredicateTenant:
		return "tenant"
	default:
		return "none"
	}
}

// Predicate restricts a tenant-owned query. Build it with BuildFilter.
type Predicate struct {
	Kind   PredicateKind
	Value  string
	Field  string
	Column string
}

type filterOptions struct {
	field  string
	column string
}

type FilterOption func(*filterOptions)

// WithField overrides the tenant foreign key. field names the key in Map,
// column the SQL column used by Apply.
func WithField(field, column string) FilterOption {
	return func(o *filterOptions) {
		if field != "" {
			o.field = field
		}
		if column != "" {
			o.column = column
		}
	}
}

func BuildFilter(scope *Scope, opts ...FilterOption) Predicate {
	o := filterOptions{field: DefaultTenantField, column: DefaultTenantColumn}
	for _, opt := range opts {
		opt(&o)
	}
	p := Predicate{Field: o.field, Column: o.column}

	switch {
	case scope == nil:
		p.Kind, p.Value = PredicateNone, NoTenantSentinel
	case scope.CanViewAllBranches:
		p.Kind = PredicateAll
	case scope.CanViewZoneRegions && scope.ZoneID != "":
		p.Kind, p.Value = PredicateZone, scope.ZoneID
	case scope.ConstructionGroupID != "":
		p.Kind, p.Value = PredicateTenant, scope.ConstructionGroupID
	default:
		p.Kind, p.Value = PredicateNone, NoTenantSentinel
	}
	return p
}

// Restricted is false only for the unrestricted predicate.
func (p Predicate) Restricted() bool {
	return p.Kind != PredicateAll
}

// Map renders the predicate in its structural form, e.g.
// {"constructionGroup": {"region": {"zoneId": "Z1"}}}.
func (p Predicate) Map() map[string]any {
	switch p.Kind {
	case PredicateAll:
		return map[string]any{}
	case PredicateZone:
		return map[string]any{
			"constructionGroup": map[string]any{
				"region": map[string]any{"zoneId": p.Value},
			},
		}
	default:
		return map[string]any{p.Field: p.Value}
	}
}

// Apply attaches the predicate to a query on a table that has the tenant
// column.
func (p Predicate) Apply(db *gorm.DB) *gorm.DB {
	switch p.Kind {
	case PredicateAll:
		return db
	case PredicateZone:
		sub := db.Session(&gorm.Session{NewDB: true}).
			Table("construction_groups").
			Select("construction_groups.id").
			Joins("JOIN regions ON regions.id = construction_groups.region_id").
			Where("regions.zone_id = ?", p.Value)
		return db.Where(p.Column+" IN (?)", sub)
	default:
		return db.Where(p.Column+" = ?", p.Value)
	}
}

// Narrow restricts an unrestricted predicate to the selected construction
// group. Restricted predicates are returned unchanged.
func (p Predicate) Narrow(cgID string) Predicate {
	if p.Kind != PredicateAll || cgID == "" {
		return p
	}
	p.Kind, p.Value = PredicateTenant, cgID
	return p
}
