// Package drafting renders stakeholder notifications for a crisis.
//
// Rendering is a fixed per-role template lookup with a generic fallback
// for unknown roles. It is pure: identical inputs always produce
// byte-identical output. Nothing here sends mail; delivery belongs to
// the yard's messaging system.
package drafting

import "fmt"

// Known stakeholder roles with dedicated templates.
const (
	RoleOperationsManager = "Operations Manager"
	RoleDockScheduler     = "Dock Scheduler"
	RoleTechnicalLead     = "Technical Lead"
)

// Message is one drafted notification.
type Message struct {
	RecipientRole string `json:"recipient_role"`
	Body          string `json:"email_content"`
}

// Drafter renders notifications from role templates.
type Drafter struct{}

// NewDrafter creates a drafter.
func NewDrafter() *Drafter {
	return &Drafter{}
}

// Draft renders the notification for role, embedding the situation and
// the recommended action. Unknown roles get the generic template.
func (d *Drafter) Draft(role, situation, recommendation string) Message {
	var body string
	switch role {
	case RoleOperationsManager:
		body = fmt.Sprintf(`Subject: URGENT: Crisis Response - %s

Dear Operations Team,

SITUATION:
%s

RECOMMENDED ACTION:
%s

This recommendation is based on analysis of historical similar incidents, current dock availability, and cost-benefit analysis.

Please review and approve to proceed.

Best regards,
HelmStream Crisis Response Agent`, situation, situation, recommendation)

	case RoleDockScheduler:
		body = fmt.Sprintf(`Subject: Emergency Dock Allocation - %s

Hi,

We have an emergency situation requiring immediate dock allocation:

%s

Recommended schedule adjustment:
%s

Please confirm availability and any conflicts.

Thanks,
HelmStream Agent`, situation, situation, recommendation)

	case RoleTechnicalLead:
		body = fmt.Sprintf(`Subject: Emergency Repair Assessment - %s

Hello,

Crisis situation detected:
%s

Proposed technical approach:
%s

Please assess feasibility and provide technical input.

Regards,
HelmStream Agent`, situation, situation, recommendation)

	default:
		body = fmt.Sprintf("Subject: Crisis Update\n\n%s\n\nRecommendation: %s", situation, recommendation)
	}

	return Message{RecipientRole: role, Body: body}
}
