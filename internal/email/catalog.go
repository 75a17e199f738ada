package email

import (
	"embed"

	"github.com/fundlift/mailroom/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// layoutFile is the shared master layout wrapping every rendered body.
const layoutFile = "templates/layout.html"

// Template identifiers (business keys). The catalog below is the source of
// truth for which templates exist and which variables they declare.
const (
	TemplateWelcome                = "WELCOME"
	TemplateVerifyEmail            = "VERIFY_EMAIL"
	TemplatePasswordReset          = "PASSWORD_RESET"
	TemplateInvestmentConfirmation = "INVESTMENT_CONFIRMATION"
	TemplateCampaignPublished      = "CAMPAIGN_PUBLISHED"
	TemplatePayoutCompleted        = "PAYOUT_COMPLETED"
)

// catalog is the static template table, loaded once at process start and
// immutable afterwards. HTML bodies live in the embedded templates directory
// and are attached by NewRegistry.
var catalog = map[string]domain.TemplateDefinition{
	TemplateWelcome: {
		TemplateID:     TemplateWelcome,
		Name:           "Welcome",
		Description:    "Sent after a new investor or campaigner account is created",
		SubjectPattern: "Welcome to {{appName}}, {{firstName}}!",
		SourceFile:     "welcome.html",
		IsActive:       true,
		Variables: map[string]domain.TemplateVariable{
			"firstName": {Description: "Recipient first name", Required: true},
		},
	},
	TemplateVerifyEmail: {
		TemplateID:     TemplateVerifyEmail,
		Name:           "Verify Email",
		Description:    "Email address verification link",
		SubjectPattern: "Verify your {{appName}} email address",
		SourceFile:     "verify_email.html",
		IsActive:       true,
		Variables: map[string]domain.TemplateVariable{
			"firstName": {Description: "Recipient first name", Required: true},
			"verifyUrl": {Description: "One-time verification link", Required: true},
		},
	},
	TemplatePasswordReset: {
		TemplateID:     TemplatePasswordReset,
		Name:           "Password Reset",
		Description:    "Password reset link with expiry",
		SubjectPattern: "Reset your {{appName}} password",
		SourceFile:     "password_reset.html",
		IsActive:       true,
		Variables: map[string]domain.TemplateVariable{
			"firstName": {Description: "Recipient first name", Required: true},
			"resetUrl":  {Description: "One-time reset link", Required: true},
			"expiresIn": {Description: "Human-readable link lifetime", Required: false},
		},
	},
	TemplateInvestmentConfirmation: {
		TemplateID:     TemplateInvestmentConfirmation,
		Name:           "Investment Confirmation",
		Description:    "Receipt for a completed investment in a campaign",
		SubjectPattern: "Your investment in {{campaignName}} is confirmed",
		SourceFile:     "investment_confirmation.html",
		IsActive:       true,
		Variables: map[string]domain.TemplateVariable{
			"firstName":    {Description: "Investor first name", Required: true},
			"campaignName": {Description: "Campaign title", Required: true},
			"amount":       {Description: "Formatted investment amount", Required: true},
			"reference":    {Description: "Payment reference", Required: false},
		},
	},
	TemplateCampaignPublished: {
		TemplateID:     TemplateCampaignPublished,
		Name:           "Campaign Published",
		Description:    "Notifies a campaigner that their campaign went live",
		SubjectPattern: "{{campaignName}} is now live on {{appName}}",
		SourceFile:     "campaign_published.html",
		IsActive:       true,
		Variables: map[string]domain.TemplateVariable{
			"firstName":    {Description: "Campaigner first name", Required: true},
			"campaignName": {Description: "Campaign title", Required: true},
			"campaignUrl":  {Description: "Public campaign page", Required: false},
		},
	},
	TemplatePayoutCompleted: {
		TemplateID:     TemplatePayoutCompleted,
		Name:           "Payout Completed",
		Description:    "Notifies a campaigner that funds were transferred",
		SubjectPattern: "Your payout of {{amount}} has been sent",
		SourceFile:     "payout_completed.html",
		IsActive:       true,
		Variables: map[string]domain.TemplateVariable{
			"firstName": {Description: "Campaigner first name", Required: true},
			"amount":    {Description: "Formatted payout amount", Required: true},
			"bankLast4": {Description: "Last four digits of the payout account", Required: false},
		},
	},
}
