package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/docket/internal/cli/formatter"
	"github.com/alexanderramin/docket/internal/domain"
)

func docketHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// templateFormValues backs the interactive template form. Numbers stay
// strings until submit so the inputs can validate them as typed.
type templateFormValues struct {
	Name         string
	Description  string
	Category     string
	TrackingMode string
	WarnWindow   string
	AllowDecline bool
	Steps        string
}

func templateForm(v *templateFormValues) *huh.Form {
	categories := []huh.Option[string]{
		huh.NewOption("Signing packet", string(domain.CategorySigning)),
		huh.NewOption("Certification", string(domain.CategoryCertification)),
		huh.NewOption("Write-up", string(domain.CategoryWriteUp)),
		huh.NewOption("Custom form", string(domain.CategoryCustomForm)),
	}
	modes := []huh.Option[string]{
		huh.NewOption("Category default", ""),
		huh.NewOption("Progress", string(domain.TrackingProgress)),
		huh.NewOption("Compliance", string(domain.TrackingCompliance)),
		huh.NewOption("Issuance", string(domain.TrackingIssuance)),
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&v.Name).Validate(validateRequired("name")),
			huh.NewInput().Title("Description").Value(&v.Description),
			huh.NewSelect[string]().Title("Category").Options(categories...).Value(&v.Category),
			huh.NewSelect[string]().Title("Tracking").Options(modes...).Value(&v.TrackingMode),
		),
		huh.NewGroup(
			huh.NewInput().Title("Warn window (days)").Placeholder("30").Value(&v.WarnWindow).Validate(validateOptionalNonNegative),
			huh.NewConfirm().Title("Allow recipients to decline?").Value(&v.AllowDecline),
			huh.NewInput().
				Title("Escalation steps").
				Description("DAY:ACTION pairs, e.g. 3:remind,5:notify_manager,7:mark_refused").
				Value(&v.Steps).
				Validate(validateSteps),
		),
	).WithTheme(docketHuhTheme()).WithShowHelp(false)
}

func (v *templateFormValues) template(defaultWarnWindow int) (*domain.Template, error) {
	t := &domain.Template{
		Name:           strings.TrimSpace(v.Name),
		Description:    strings.TrimSpace(v.Description),
		Category:       domain.Category(v.Category),
		TrackingMode:   domain.TrackingMode(v.TrackingMode),
		AllowDecline:   v.AllowDecline,
		WarnWindowDays: defaultWarnWindow,
	}
	if w := strings.TrimSpace(v.WarnWindow); w != "" {
		n, err := strconv.Atoi(w)
		if err != nil {
			return nil, fmt.Errorf("%w: warn window must be a number", domain.ErrValidation)
		}
		t.WarnWindowDays = n
	}
	policy, err := parseSteps(v.Steps)
	if err != nil {
		return nil, err
	}
	t.EscalationPolicy = policy
	return t, nil
}

func validateRequired(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validateOptionalNonNegative(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return fmt.Errorf("enter a whole number of days")
	}
	return nil
}

func validateSteps(s string) error {
	policy, err := parseSteps(s)
	if err != nil {
		return err
	}
	return policy.Validate()
}
