package workflow

import "github.com/noah-isme/uni-hours-api/internal/models"

// PendingForActor returns the declarations waiting on the actor: exactly
// those for which CanProcess holds.
func PendingForActor(declarations []models.Declaration, actor models.Actor) []models.Declaration {
	result := make([]models.Declaration, 0, len(declarations))
	for _, d := range declarations {
		d := d
		if CanProcess(&d, actor) {
			result = append(result, d)
		}
	}
	return result
}

// OwnedEditable returns the actor's own declarations still open to edit or
// delete: authored by the actor and in pending or rejected status.
func OwnedEditable(declarations []models.Declaration, actor models.Actor) []models.Declaration {
	result := make([]models.Declaration, 0, len(declarations))
	for _, d := range declarations {
		if d.AuthorID == actor.ID && d.Editable() {
			result = append(result, d)
		}
	}
	return result
}

// StatsForActor computes the role-scoped dashboard counters over the given
// declaration set. The population mirrors each role's review or ownership
// scope: teachers count their own records, registrars and directors count
// everything, department heads count their department.
func StatsForActor(declarations []models.Declaration, actor models.Actor) models.DeclarationStats {
	var stats models.DeclarationStats

	switch actor.Role {
	case models.RoleRegistrar, models.RoleAdmin:
		for _, d := range declarations {
			stats.TotalHours += d.Hours
			switch d.Status {
			case models.StatusPending:
				stats.PendingDeclarations++
			case models.StatusRegistrarVerified, models.StatusDepartmentApproved, models.StatusDirectorValidated:
				stats.ApprovedDeclarations++
			case models.StatusRejected:
				stats.RejectedDeclarations++
			}
		}
	case models.RoleDepartmentHead:
		for _, d := range declarations {
			if d.DepartmentID != actor.DepartmentID {
				continue
			}
			stats.TotalHours += d.Hours
			switch d.Status {
			case models.StatusRegistrarVerified:
				stats.PendingDeclarations++
			case models.StatusDepartmentApproved, models.StatusDirectorValidated:
				stats.ApprovedDeclarations++
			case models.StatusRejected:
				stats.RejectedDeclarations++
			}
		}
	case models.RoleDirector:
		for _, d := range declarations {
			stats.TotalHours += d.Hours
			switch d.Status {
			case models.StatusDepartmentApproved:
				stats.PendingDeclarations++
			case models.StatusDirectorValidated:
				stats.ApprovedDeclarations++
			case models.StatusRejected:
				stats.RejectedDeclarations++
			}
		}
	default:
		// Teachers (and department heads acting as submitters elsewhere)
		// see their own records; only fully validated hours count.
		for _, d := range declarations {
			if d.AuthorID != actor.ID {
				continue
			}
			switch d.Status {
			case models.StatusDirectorValidated:
				stats.TotalHours += d.Hours
				stats.ApprovedDeclarations++
			case models.StatusPending, models.StatusRegistrarVerified, models.StatusDepartmentApproved:
				stats.PendingDeclarations++
			case models.StatusRejected:
				stats.RejectedDeclarations++
			}
		}
	}
	return stats
}
