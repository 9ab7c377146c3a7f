package models

import "time"

// RecipientKind selects who a notification intent addresses. Selectors are
// resolved to concrete users at dispatch time, never inside the engine.
type RecipientKind string

const (
	RecipientAuthor          RecipientKind = "AUTHOR"
	RecipientRegistrars      RecipientKind = "REGISTRARS"
	RecipientDepartmentHeads RecipientKind = "DEPARTMENT_HEADS"
	RecipientDirectors       RecipientKind = "DIRECTORS"
)

// RecipientSelector pairs a recipient kind with its scoping argument
// (department id for DEPARTMENT_HEADS, unused otherwise).
type RecipientSelector struct {
	Kind         RecipientKind `json:"kind"`
	DepartmentID string        `json:"department_id,omitempty"`
}

// TemplateID identifies a notification template.
type TemplateID string

const (
	TemplateDeclarationSubmitted TemplateID = "declaration_submitted"
	TemplateDeclarationVerified  TemplateID = "declaration_verified"
	TemplateDeclarationApproved  TemplateID = "declaration_approved"
	TemplateDeclarationValidated TemplateID = "declaration_validated"
	TemplateRejectedByRegistrar  TemplateID = "declaration_rejected_registrar"
	TemplateRejectedByHead       TemplateID = "declaration_rejected_department_head"
	TemplateRejectedByDirector   TemplateID = "declaration_rejected_director"
	TemplatePendingVerification  TemplateID = "pending_verification"
	TemplatePendingApproval      TemplateID = "pending_approval"
	TemplatePendingValidation    TemplateID = "pending_validation"
)

// NotificationIntent is the pure data a workflow transition emits: who to
// tell, with which template, about which declaration. Dispatch happens after
// the authoritative state change commits.
type NotificationIntent struct {
	Recipient     RecipientSelector `json:"recipient"`
	Template      TemplateID        `json:"template"`
	DeclarationID string            `json:"declaration_id"`
	Params        map[string]string `json:"params,omitempty"`
}

// Notification is the in-app record created per resolved recipient.
type Notification struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user_id"`
	Title         string    `db:"title" json:"title"`
	Message       string    `db:"message" json:"message"`
	DeclarationID *string   `db:"declaration_id" json:"declaration_id,omitempty"`
	Read          bool      `db:"read" json:"read"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// NotificationFilter constrains notification listing.
type NotificationFilter struct {
	UserID     string
	UnreadOnly bool
	Limit      int
	Offset     int
}
