// Package workflow owns the declaration status state machine: which
// transitions are legal for which role, the audit stamps and notification
// intents each transition produces, and the derived visibility rules.
// Everything here is pure computation over the inputs; persistence and
// notification dispatch belong to the calling service.
package workflow

import (
	"strings"
	"time"

	"github.com/noah-isme/uni-hours-api/internal/models"
	appErrors "github.com/noah-isme/uni-hours-api/pkg/errors"
)

// Action is a reviewer decision on a declaration.
type Action string

const (
	ActionApprove Action = "APPROVE"
	ActionReject  Action = "REJECT"
)

// Rule is one row of the transition table: the role that may act, the status
// it acts on, and the statuses an approve or reject produces.
type Rule struct {
	Role       models.UserRole
	From       models.DeclarationStatus
	Approve    models.DeclarationStatus
	Reject     models.DeclarationStatus
	DeptScoped bool
}

// rules is the full transition table. Department heads only act on
// declarations of their own department; admins hold no transition authority.
var rules = []Rule{
	{Role: models.RoleRegistrar, From: models.StatusPending, Approve: models.StatusRegistrarVerified, Reject: models.StatusRejected},
	{Role: models.RoleDepartmentHead, From: models.StatusRegistrarVerified, Approve: models.StatusDepartmentApproved, Reject: models.StatusRejected, DeptScoped: true},
	{Role: models.RoleDirector, From: models.StatusDepartmentApproved, Approve: models.StatusDirectorValidated, Reject: models.StatusRejected},
}

// ruleFor returns the transition row matching the (declaration, actor) pair.
func ruleFor(d *models.Declaration, actor models.Actor) (Rule, bool) {
	for _, rule := range rules {
		if rule.Role != actor.Role || rule.From != d.Status {
			continue
		}
		if rule.DeptScoped && actor.DepartmentID != d.DepartmentID {
			continue
		}
		return rule, true
	}
	return Rule{}, false
}

// CanProcess reports whether the actor's role owns a transition row whose
// from-status matches the declaration's current status.
func CanProcess(d *models.Declaration, actor models.Actor) bool {
	_, ok := ruleFor(d, actor)
	return ok
}

// NextStatus returns the status an approve by this actor produces, or false
// when the actor cannot process the declaration.
func NextStatus(d *models.Declaration, actor models.Actor) (models.DeclarationStatus, bool) {
	rule, ok := ruleFor(d, actor)
	if !ok {
		return "", false
	}
	return rule.Approve, true
}

// RejectStatus returns the status a reject by this actor produces, or false
// when the actor cannot process the declaration.
func RejectStatus(d *models.Declaration, actor models.Actor) (models.DeclarationStatus, bool) {
	rule, ok := ruleFor(d, actor)
	if !ok {
		return "", false
	}
	return rule.Reject, true
}

// Engine applies transitions. The clock is injectable for tests.
type Engine struct {
	now func() time.Time
}

// NewEngine constructs an engine using the wall clock.
func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// NewEngineWithClock constructs an engine with a fixed clock source.
func NewEngineWithClock(now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now}
}

// Apply validates and performs a transition, returning a copy of the
// declaration with the new status and audit stamps plus the notification
// intents the caller should dispatch once the write commits. The input
// declaration is never mutated.
func (e *Engine) Apply(d *models.Declaration, actor models.Actor, action Action, reason string) (*models.Declaration, []models.NotificationIntent, error) {
	rule, ok := ruleFor(d, actor)
	if !ok {
		return nil, nil, appErrors.ErrUnauthorized
	}

	updated := *d
	now := e.now().UTC()
	updated.UpdatedAt = now

	switch action {
	case ActionApprove:
		updated.Status = rule.Approve
		stampApproval(&updated, rule.Approve, actor.ID, now)
	case ActionReject:
		reason = strings.TrimSpace(reason)
		if reason == "" {
			return nil, nil, appErrors.Clone(appErrors.ErrReasonRequired, "a rejection reason is required")
		}
		updated.Status = rule.Reject
		updated.RejectedBy = &actor.ID
		updated.RejectedAt = &now
		updated.RejectionReason = &reason
		clearForwardStamps(&updated, d.Status)
	default:
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "action must be APPROVE or REJECT")
	}

	return &updated, transitionIntents(&updated, actor), nil
}

// stampApproval records the acting reviewer on the stage being entered.
func stampApproval(d *models.Declaration, to models.DeclarationStatus, actorID string, at time.Time) {
	switch to {
	case models.StatusRegistrarVerified:
		d.RegistrarVerifiedBy = &actorID
		d.RegistrarVerifiedAt = &at
	case models.StatusDepartmentApproved:
		d.DepartmentApprovedBy = &actorID
		d.DepartmentApprovedAt = &at
	case models.StatusDirectorValidated:
		d.DirectorValidatedBy = &actorID
		d.DirectorValidatedAt = &at
	}
}

// clearForwardStamps erases stamps for stages the declaration never reached,
// so a rejection at stage N leaves exactly the stamps of stages < N.
func clearForwardStamps(d *models.Declaration, from models.DeclarationStatus) {
	switch from {
	case models.StatusPending:
		d.RegistrarVerifiedBy, d.RegistrarVerifiedAt = nil, nil
		fallthrough
	case models.StatusRegistrarVerified:
		d.DepartmentApprovedBy, d.DepartmentApprovedAt = nil, nil
		fallthrough
	case models.StatusDepartmentApproved:
		d.DirectorValidatedBy, d.DirectorValidatedAt = nil, nil
	}
}

// InitialStatus decides the status a freshly created declaration enters.
// A department head declaring hours in their own department bypasses
// registrar review: the declaration starts registrar-verified and carries the
// creator's verification stamp.
func (e *Engine) InitialStatus(d *models.Declaration, creator models.Actor) (*models.Declaration, []models.NotificationIntent) {
	created := *d
	now := e.now().UTC()

	if creator.Role == models.RoleDepartmentHead && creator.DepartmentID != "" && creator.DepartmentID == d.DepartmentID {
		created.Status = models.StatusRegistrarVerified
		created.RegistrarVerifiedBy = &creator.ID
		created.RegistrarVerifiedAt = &now
	} else {
		created.Status = models.StatusPending
	}

	return &created, creationIntents(&created)
}

// transitionIntents derives the notification set for a completed transition:
// the author always hears about it; the next stage's responsible reviewers
// are alerted; on rejection only the author is notified, with a template
// chosen by the rejecting role.
func transitionIntents(d *models.Declaration, actor models.Actor) []models.NotificationIntent {
	author := models.RecipientSelector{Kind: models.RecipientAuthor}

	switch d.Status {
	case models.StatusRegistrarVerified:
		return []models.NotificationIntent{
			intent(d, author, models.TemplateDeclarationVerified),
			intent(d, models.RecipientSelector{Kind: models.RecipientDepartmentHeads, DepartmentID: d.DepartmentID}, models.TemplatePendingApproval),
		}
	case models.StatusDepartmentApproved:
		return []models.NotificationIntent{
			intent(d, author, models.TemplateDeclarationApproved),
			intent(d, models.RecipientSelector{Kind: models.RecipientDirectors}, models.TemplatePendingValidation),
		}
	case models.StatusDirectorValidated:
		return []models.NotificationIntent{
			intent(d, author, models.TemplateDeclarationValidated),
		}
	case models.StatusRejected:
		return []models.NotificationIntent{
			intent(d, author, rejectionTemplate(actor.Role)),
		}
	}
	return nil
}

// creationIntents derives the notification set for a newly created
// declaration, honoring the fast-track branch.
func creationIntents(d *models.Declaration) []models.NotificationIntent {
	author := models.RecipientSelector{Kind: models.RecipientAuthor}

	if d.Status == models.StatusRegistrarVerified {
		// Fast-tracked: registrar review is skipped entirely.
		return []models.NotificationIntent{
			intent(d, author, models.TemplateDeclarationVerified),
			intent(d, models.RecipientSelector{Kind: models.RecipientDepartmentHeads, DepartmentID: d.DepartmentID}, models.TemplatePendingApproval),
		}
	}
	return []models.NotificationIntent{
		intent(d, author, models.TemplateDeclarationSubmitted),
		intent(d, models.RecipientSelector{Kind: models.RecipientRegistrars}, models.TemplatePendingVerification),
	}
}

func rejectionTemplate(role models.UserRole) models.TemplateID {
	switch role {
	case models.RoleDepartmentHead:
		return models.TemplateRejectedByHead
	case models.RoleDirector:
		return models.TemplateRejectedByDirector
	default:
		return models.TemplateRejectedByRegistrar
	}
}

func intent(d *models.Declaration, recipient models.RecipientSelector, template models.TemplateID) models.NotificationIntent {
	params := map[string]string{
		"date":       d.Date.Format("2006-01-02"),
		"authorName": d.AuthorName,
	}
	if d.RejectionReason != nil {
		params["rejectionReason"] = *d.RejectionReason
	}
	return models.NotificationIntent{
		Recipient:     recipient,
		Template:      template,
		DeclarationID: d.ID,
		Params:        params,
	}
}
