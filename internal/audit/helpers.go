package audit

import (
	"context"
	"fmt"
	"time"
)

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func (r *Recorder) Login(ctx context.Context, userID, email string) {
	r.Record(ctx, Entry{
		UserID:    userID,
		Action:    ActionLogin,
		Resource:  ResourceSession,
		NewValues: map[string]interface{}{"email": email, "loginTime": r.now().UTC().Format(time.RFC3339)},
	})
}

func (r *Recorder) Logout(ctx context.Context, userID, email string) {
	r.Record(ctx, Entry{
		UserID:    userID,
		Action:    ActionLogout,
		Resource:  ResourceSession,
		NewValues: map[string]interface{}{"email": email, "logoutTime": r.now().UTC().Format(time.RFC3339)},
	})
}

func (r *Recorder) Create(ctx context.Context, userID string, resource Resource, resourceID string, newValues map[string]interface{}) {
	r.Record(ctx, Entry{UserID: userID, Action: ActionCreate, Resource: resource, ResourceID: resourceID, NewValues: newValues})
}

func (r *Recorder) Update(ctx context.Context, userID string, resource Resource, resourceID string, oldValues, newValues map[string]interface{}) {
	r.Record(ctx, Entry{UserID: userID, Action: ActionUpdate, Resource: resource, ResourceID: resourceID, OldValues: oldValues, NewValues: newValues})
}

func (r *Recorder) Delete(ctx context.Context, userID string, resource Resource, resourceID string, oldValues map[string]interface{}) {
	r.Record(ctx, Entry{UserID: userID, Action: ActionDelete, Resource: resource, ResourceID: resourceID, OldValues: oldValues})
}

func (r *Recorder) ConfigChange(ctx context.Context, userID, configType string, oldValues, newValues map[string]interface{}) {
	r.Record(ctx, Entry{UserID: userID, Action: ActionConfigChange, Resource: ResourceSystem, ResourceID: configType, OldValues: oldValues, NewValues: newValues})
}

func (r *Recorder) Export(ctx context.Context, userID string, resource Resource, details map[string]interface{}) {
	r.Record(ctx, Entry{UserID: userID, Action: ActionExport, Resource: resource, NewValues: details})
}

func (r *Recorder) Import(ctx context.Context, userID string, resource Resource, details map[string]interface{}) {
	r.Record(ctx, Entry{UserID: userID, Action: ActionImport, Resource: resource, NewValues: details})
}

// CGFilterChange records a super admin switching the construction group
// being viewed. Empty ids mean "all". staleFrom carries a previous cookie
// value that named no construction group; it is kept in metadata only.
func (r *Recorder) CGFilterChange(ctx context.Context, userID, fromCGID, toCGID, staleFrom string) {
	meta := map[string]interface{}{
		"description": fmt.Sprintf("Changed CG filter from %s to %s", orDefault(fromCGID, "ALL"), orDefault(toCGID, "ALL")),
	}
	if staleFrom != "" {
		meta["previousFilterRaw"] = staleFrom
	}
	r.Record(ctx, Entry{
		UserID:   userID,
		Action:   ActionCGFilterChange,
		Resource: ResourceCGFilter,
		FromCGID: fromCGID,
		ToCGID:   toCGID,
		Metadata: meta,
	})
}

func (r *Recorder) UserCGAssignment(ctx context.Context, userID, targetUserID, fromCGID, toCGID, volunteerID string) {
	r.Record(ctx, Entry{
		UserID:     userID,
		Action:     ActionUserCGAssignment,
		Resource:   ResourceUser,
		ResourceID: targetUserID,
		FromCGID:   fromCGID,
		ToCGID:     toCGID,
		Metadata: map[string]interface{}{
			"volunteerId": volunteerID,
			"description": fmt.Sprintf("User CG changed from %s to %s via volunteer link", orDefault(fromCGID, "none"), orDefault(toCGID, "none")),
		},
	})
}

func (r *Recorder) CGCreated(ctx context.Context, userID, cgID, code, name, regionID string) {
	r.Record(ctx, Entry{
		UserID:     userID,
		Action:     ActionCGCreated,
		Resource:   ResourceConstructionGroup,
		ResourceID: cgID,
		ToCGID:     cgID,
		NewValues:  map[string]interface{}{"code": code, "name": name, "regionId": regionID},
		Metadata: map[string]interface{}{
			"description": fmt.Sprintf("Created Construction Group: %s - %s", code, name),
		},
	})
}

func (r *Recorder) CGUpdated(ctx context.Context, userID, cgID string, oldValues, newValues map[string]interface{}) {
	code, _ := newValues["code"].(string)
	if code == "" {
		code, _ = oldValues["code"].(string)
	}
	r.Record(ctx, Entry{
		UserID:     userID,
		Action:     ActionCGUpdated,
		Resource:   ResourceConstructionGroup,
		ResourceID: cgID,
		FromCGID:   cgID,
		ToCGID:     cgID,
		OldValues:  oldValues,
		NewValues:  newValues,
		Metadata: map[string]interface{}{
			"description": "Updated Construction Group: " + code,
		},
	})
}

func (r *Recorder) CGDeleted(ctx context.Context, userID, cgID, code, name string) {
	r.Record(ctx, Entry{
		UserID:     userID,
		Action:     ActionCGDeleted,
		Resource:   ResourceConstructionGroup,
		ResourceID: cgID,
		FromCGID:   cgID,
		OldValues:  map[string]interface{}{"code": code, "name": name, "isActive": true},
		NewValues:  map[string]interface{}{"isActive": false},
		Metadata: map[string]interface{}{
			"description": fmt.Sprintf("Deactivated Construction Group: %s - %s", code, name),
		},
	})
}

func (r *Recorder) CGReactivated(ctx context.Context, userID, cgID, code, name string) {
	r.Record(ctx, Entry{
		UserID:     userID,
		Action:     ActionCGReactivated,
		Resource:   ResourceConstructionGroup,
		ResourceID: cgID,
		ToCGID:     cgID,
		OldValues:  map[string]interface{}{"isActive": false},
		NewValues:  map[string]interface{}{"isActive": true},
		Metadata: map[string]interface{}{
			"description": fmt.Sprintf("Reactivated Construction Group: %s - %s", code, name),
		},
	})
}

func (r *Recorder) VolunteerCGTransfer(ctx context.Context, userID, volunteerID, volunteerName, fromCGID, toCGID string) {
	r.Record(ctx, Entry{
		UserID:     userID,
		Action:     ActionVolunteerCGTransfer,
		Resource:   ResourceVolunteer,
		ResourceID: volunteerID,
		FromCGID:   fromCGID,
		ToCGID:     toCGID,
		Metadata: map[string]interface{}{
			"volunteerName": volunteerName,
			"description":   fmt.Sprintf("Transferred volunteer %s between CGs", volunteerName),
		},
	})
}

// CrossCGAccess records a principal acting on a construction group other
// than its own.
func (r *Recorder) CrossCGAccess(ctx context.Context, userID string, resource Resource, resourceID, ownCGID, targetCGID string) {
	r.Record(ctx, Entry{
		UserID:     userID,
		Action:     ActionCrossCGAccess,
		Resource:   resource,
		ResourceID: resourceID,
		FromCGID:   ownCGID,
		ToCGID:     targetCGID,
		Metadata: map[string]interface{}{
			"description": fmt.Sprintf("Accessed %s in CG %s from CG %s", resource, targetCGID, orDefault(ownCGID, "none")),
		},
	})
}

func (r *Recorder) VolunteerCreated(ctx context.Context, userID, volunteerID, cgID string, newValues map[string]interface{}) {
	r.Record(ctx, Entry{
		UserID:     userID,
		Action:     ActionVolunteerCreated,
		Resource:   ResourceVolunteer,
		ResourceID: volunteerID,
		ToCGID:     cgID,
		NewValues:  newValues,
	})
}
