package workflow

import (
	"fmt"

	"github.com/noah-isme/uni-hours-api/internal/models"
)

// Template carries the subject line and a body renderer for one
// notification template.
type Template struct {
	Subject string
	Body    func(params map[string]string) string
}

// Templates maps template ids to their rendered form. The wording mirrors
// the institution's existing notification set.
var Templates = map[models.TemplateID]Template{
	models.TemplateDeclarationSubmitted: {
		Subject: "Déclaration d'heures soumise",
		Body: func(p map[string]string) string {
			return fmt.Sprintf("Votre déclaration d'heures du %s a été soumise avec succès. Elle est en attente de vérification par la scolarité.", p["date"])
		},
	},
	models.TemplateDeclarationVerified: {
		Subject: "Déclaration d'heures vérifiée",
		Body: func(p map[string]string) string {
			return fmt.Sprintf("Votre déclaration d'heures du %s a été vérifiée par la scolarité. Elle est en attente de validation par le chef de département.", p["date"])
		},
	},
	models.TemplateDeclarationApproved: {
		Subject: "Déclaration d'heures validée",
		Body: func(p map[string]string) string {
			return fmt.Sprintf("Votre déclaration d'heures du %s a été validée par le chef de département. Elle est en attente d'approbation finale par la direction des études.", p["date"])
		},
	},
	models.TemplateDeclarationValidated: {
		Subject: "Déclaration d'heures approuvée",
		Body: func(p map[string]string) string {
			return fmt.Sprintf("Votre déclaration d'heures du %s a été approuvée par la direction des études. Le paiement sera traité selon les procédures en vigueur.", p["date"])
		},
	},
	models.TemplateRejectedByRegistrar: {
		Subject: "Déclaration d'heures refusée",
		Body: func(p map[string]string) string {
			return fmt.Sprintf("Votre déclaration d'heures du %s a été refusée par la scolarité. Motif du refus: %s. Vous pouvez la modifier ou la supprimer dans votre espace personnel.", p["date"], reasonOrDefault(p))
		},
	},
	models.TemplateRejectedByHead: {
		Subject: "Déclaration d'heures refusée",
		Body: func(p map[string]string) string {
			return fmt.Sprintf("Votre déclaration d'heures du %s a été refusée par le chef de département. Motif du refus: %s. Vous pouvez la modifier ou la supprimer dans votre espace personnel.", p["date"], reasonOrDefault(p))
		},
	},
	models.TemplateRejectedByDirector: {
		Subject: "Déclaration d'heures refusée",
		Body: func(p map[string]string) string {
			return fmt.Sprintf("Votre déclaration d'heures du %s a été refusée par la direction des études. Motif du refus: %s. Vous pouvez la modifier ou la supprimer dans votre espace personnel.", p["date"], reasonOrDefault(p))
		},
	},
	models.TemplatePendingVerification: {
		Subject: "Nouvelle déclaration à vérifier",
		Body: func(p map[string]string) string {
			return fmt.Sprintf("Une nouvelle déclaration d'heures a été soumise par %s pour le %s. Elle est en attente de vérification par la scolarité.", p["authorName"], p["date"])
		},
	},
	models.TemplatePendingApproval: {
		Subject: "Déclaration à valider",
		Body: func(p map[string]string) string {
			return fmt.Sprintf("Une déclaration d'heures de %s du %s a été vérifiée et est en attente de votre validation.", p["authorName"], p["date"])
		},
	},
	models.TemplatePendingValidation: {
		Subject: "Déclaration à approuver",
		Body: func(p map[string]string) string {
			return fmt.Sprintf("Une déclaration d'heures de %s du %s a été validée et est en attente de votre approbation finale.", p["authorName"], p["date"])
		},
	},
}

// Render resolves an intent to its subject and body. Unknown templates fall
// back to a generic notice so a bad id never blocks dispatch.
func Render(id models.TemplateID, params map[string]string) (subject, body string) {
	tpl, ok := Templates[id]
	if !ok {
		return "Notification", fmt.Sprintf("Mise à jour de la déclaration du %s.", params["date"])
	}
	return tpl.Subject, tpl.Body(params)
}

func reasonOrDefault(p map[string]string) string {
	if r := p["rejectionReason"]; r != "" {
		return r
	}
	return "Non spécifié"
}
