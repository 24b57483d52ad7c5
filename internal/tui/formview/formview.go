// ABOUTME: Marketplace input forms (login, register, post, bid, review, profile) as a bubbletea model
// ABOUTME: Uses huh forms with a step indicator; submits typed requests built by the forms package

package formview

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/Modhak129/WEB-freelance/internal/client"
	"github.com/Modhak129/WEB-freelance/internal/forms"
	"github.com/Modhak129/WEB-freelance/internal/tui/icons"
	"github.com/Modhak129/WEB-freelance/internal/tui/styles"
)

// Kind selects which form is shown
type Kind int

const (
	KindLogin Kind = iota
	KindRegister
	KindPostProject
	KindEditProfile
	KindBid
	KindReview
)

// String returns the form's title
func (k Kind) String() string {
	switch k {
	case KindLogin:
		return "Log in"
	case KindRegister:
		return "Create an account"
	case KindPostProject:
		return "Post a project"
	case KindEditProfile:
		return "Edit profile"
	case KindBid:
		return "Place a bid"
	case KindReview:
		return "Leave a review"
	default:
		return "Form"
	}
}

// Role values of the register form
const (
	RoleFreelancer = "freelancer"
	RoleClient     = "client"
)

// SubmittedMsg carries a validated request. Request is forms.LoginForm for
// KindLogin and the matching client request type for the other kinds.
type SubmittedMsg struct {
	Kind    Kind
	Request any
}

// CancelledMsg is sent when the user leaves the form with esc
type CancelledMsg struct {
	Kind Kind
}

// Values holds the raw text of every field. Only the fields of the form's
// kind are used.
type Values struct {
	Email       string
	Password    string
	Username    string
	Role        string
	Title       string
	Description string
	Budget      string
	Bio         string
	Skills      string
	Amount      string
	Proposal    string
	Rating      string
	Comment     string
}

// Form manages one marketplace form as a bubbletea model
type Form struct {
	kind       Kind
	values     Values
	form       *huh.Form
	step       int
	width      int
	err        string
	notice     string
	submitting bool
}

// Step names for the progress indicator of multi-step forms
var stepNames = map[Kind][]string{
	KindRegister:    {"Account", "Role"},
	KindPostProject: {"Details", "Budget"},
}

// createTheme returns a huh theme in the application palette
func createTheme() *huh.Theme {
	t := huh.ThemeBase()

	primary := styles.Primary
	accent := styles.Accent
	gray := lipgloss.Color("#9CA3AF")
	grayLight := lipgloss.Color("#E5E7EB")
	red := lipgloss.Color("#F87171")

	t.Group.Title = lipgloss.NewStyle().
		Foreground(primary).
		Bold(true).
		MarginBottom(1)
	t.Group.Description = lipgloss.NewStyle().
		Foreground(gray).
		MarginBottom(1)

	t.Focused.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(primary)
	t.Focused.Title = lipgloss.NewStyle().
		Foreground(accent).
		Bold(true)
	t.Focused.Description = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.ErrorIndicator = lipgloss.NewStyle().
		Foreground(red).
		SetString(" *")
	t.Focused.ErrorMessage = lipgloss.NewStyle().
		Foreground(red)

	t.Focused.SelectSelector = lipgloss.NewStyle().
		Foreground(primary).
		SetString("> ")
	t.Focused.Option = lipgloss.NewStyle().
		Foreground(grayLight)
	t.Focused.SelectedOption = lipgloss.NewStyle().
		Foreground(primary).
		Bold(true)

	t.Focused.TextInput.Cursor = lipgloss.NewStyle().
		Foreground(primary)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().
		Foreground(primary)
	t.Focused.TextInput.Text = lipgloss.NewStyle().
		Foreground(grayLight)

	t.Focused.FocusedButton = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(styles.Info).
		Padding(0, 2).
		MarginRight(1)
	t.Focused.BlurredButton = lipgloss.NewStyle().
		Foreground(gray).
		Background(styles.Surface).
		Padding(0, 2).
		MarginRight(1)

	t.Blurred = t.Focused
	t.Blurred.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true)
	t.Blurred.Title = lipgloss.NewStyle().
		Foreground(gray)
	t.Blurred.SelectSelector = lipgloss.NewStyle().
		Foreground(gray).
		SetString("  ")
	t.Blurred.Option = lipgloss.NewStyle().
		Foreground(gray)

	return t
}

var ratingOptions = []huh.Option[string]{
	huh.NewOption("★★★★★  Excellent", "5"),
	huh.NewOption("★★★★☆  Good", "4"),
	huh.NewOption("★★★☆☆  Okay", "3"),
	huh.NewOption("★★☆☆☆  Poor", "2"),
	huh.NewOption("★☆☆☆☆  Bad", "1"),
}

var roleOptions = []huh.Option[string]{
	huh.NewOption("Freelancer (bid on projects)", RoleFreelancer),
	huh.NewOption("Client (post projects)", RoleClient),
}

// New creates a form of the given kind prefilled with initial
func New(kind Kind, initial Values) *Form {
	f := &Form{kind: kind, values: initial, step: 1}
	if f.values.Role == "" {
		f.values.Role = RoleFreelancer
	}
	if f.values.Rating == "" {
		f.values.Rating = "5"
	}
	f.form = f.createForm()
	return f
}

func amountValidator(field string) func(string) error {
	return func(s string) error {
		_, err := forms.ParsePositiveAmount(field, s)
		return err
	}
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func (f *Form) createForm() *huh.Form {
	v := &f.values
	var group *huh.Group

	switch f.kind {
	case KindLogin:
		group = huh.NewGroup(
			huh.NewInput().Title("Email").Value(&v.Email).Validate(required("email")),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&v.Password).Validate(required("password")),
		).Title(icons.Login.String() + " Log in")

	case KindRegister:
		if f.step == 1 {
			group = huh.NewGroup(
				huh.NewInput().Title("Username").CharLimit(80).Value(&v.Username).Validate(required("username")),
				huh.NewInput().Title("Email").CharLimit(120).Value(&v.Email).Validate(required("email")),
				huh.NewInput().Title("Password").Description("At least 6 characters").EchoMode(huh.EchoModePassword).Value(&v.Password),
			).Title("Step 1: Account")
		} else {
			group = huh.NewGroup(
				huh.NewSelect[string]().
					Title("I am joining as").
					Description("Use ↑/↓ to select, Enter to confirm").
					Options(roleOptions...).
					Value(&v.Role),
			).Title("Step 2: Role")
		}

	case KindPostProject:
		if f.step == 1 {
			group = huh.NewGroup(
				huh.NewInput().Title("Title").CharLimit(150).Value(&v.Title).Validate(required("title")),
				huh.NewText().Title("Description").Value(&v.Description).Validate(required("description")),
			).Title("Step 1: Details").
				Description("Describe the work you need done")
		} else {
			group = huh.NewGroup(
				huh.NewInput().Title("Budget").Placeholder("e.g., 1500").Value(&v.Budget).Validate(amountValidator("budget")),
			).Title("Step 2: Budget")
		}

	case KindEditProfile:
		group = huh.NewGroup(
			huh.NewText().Title("Bio").CharLimit(2000).Value(&v.Bio),
			huh.NewInput().Title("Skills").Description("Comma separated, e.g. Go, React, SQL").Value(&v.Skills),
		).Title(icons.User.String() + " Edit profile")

	case KindBid:
		group = huh.NewGroup(
			huh.NewInput().Title("Amount").Placeholder("e.g., 1200").Value(&v.Amount).Validate(amountValidator("amount")),
			huh.NewText().Title("Proposal").Value(&v.Proposal).Validate(required("proposal")),
		).Title(icons.Bid.String() + " Place a bid")

	case KindReview:
		group = huh.NewGroup(
			huh.NewSelect[string]().Title("Rating").Options(ratingOptions...).Value(&v.Rating),
			huh.NewText().Title("Comment").CharLimit(2000).Value(&v.Comment),
		).Title(icons.Review.String() + " Leave a review")
	}

	return huh.NewForm(group).WithTheme(createTheme()).WithShowHelp(false)
}

// Kind returns the form's kind
func (f *Form) Kind() Kind {
	return f.kind
}

// Values returns the current raw field values
func (f *Form) Values() Values {
	return f.values
}

// Err returns the error currently shown on the form
func (f *Form) Err() string {
	return f.err
}

// SetWidth sets the width used by the progress indicator
func (f *Form) SetWidth(width int) {
	f.width = width
}

// SetNotice shows an informational line above the form
func (f *Form) SetNotice(msg string) {
	f.notice = msg
}

// SetSubmitting marks the form as waiting for the server
func (f *Form) SetSubmitting(submitting bool) {
	f.submitting = submitting
	if submitting {
		f.err = ""
	}
}

// Fail shows msg and reopens the form with the entered values so the user may retry
func (f *Form) Fail(msg string) tea.Cmd {
	f.submitting = false
	f.err = msg
	f.step = 1
	f.form = f.createForm()
	return f.form.Init()
}

// Init implements tea.Model
func (f *Form) Init() tea.Cmd {
	return f.form.Init()
}

// Update implements tea.Model
func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if f.submitting {
		return f, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		f.width = msg.Width
		form, cmd := f.form.Update(msg)
		if hf, ok := form.(*huh.Form); ok {
			f.form = hf
		}
		return f, cmd

	case tea.KeyMsg:
		if msg.String() == "esc" {
			kind := f.kind
			return f, func() tea.Msg { return CancelledMsg{Kind: kind} }
		}
	}

	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}

	if f.form.State == huh.StateCompleted {
		return f.advanceStep()
	}

	return f, cmd
}

func (f *Form) advanceStep() (tea.Model, tea.Cmd) {
	if f.step < len(stepNames[f.kind]) {
		f.step++
		f.form = f.createForm()
		return f, f.form.Init()
	}
	return f, f.Submit()
}

// Submit validates the values and returns a command producing SubmittedMsg.
// On a validation failure the form is reopened with the error and the returned
// command only restarts the form.
func (f *Form) Submit() tea.Cmd {
	req, err := f.request()
	if err != nil {
		var verr *forms.ValidationError
		if errors.As(err, &verr) {
			return f.Fail(verr.Error())
		}
		return f.Fail(err.Error())
	}
	f.err = ""
	kind := f.kind
	return func() tea.Msg { return SubmittedMsg{Kind: kind, Request: req} }
}

func (f *Form) request() (any, error) {
	v := f.values
	switch f.kind {
	case KindLogin:
		form := forms.LoginForm{Email: strings.TrimSpace(v.Email), Password: v.Password}
		if err := form.Validate(); err != nil {
			return nil, err
		}
		return form, nil
	case KindRegister:
		return forms.RegisterForm{
			Username:     v.Username,
			Email:        v.Email,
			Password:     v.Password,
			IsFreelancer: v.Role == RoleFreelancer,
		}.Request()
	case KindPostProject:
		return forms.ProjectForm{Title: v.Title, Description: v.Description, Budget: v.Budget}.Request()
	case KindEditProfile:
		return forms.ProfileForm{Bio: v.Bio, Skills: v.Skills}.Request()
	case KindBid:
		return forms.BidForm{Amount: v.Amount, Proposal: v.Proposal}.Request()
	case KindReview:
		return forms.ReviewForm{Rating: v.Rating, Comment: v.Comment}.Request()
	}
	return nil, fmt.Errorf("unknown form kind %d", f.kind)
}

// ProfileValues prefills the edit-profile form from a user
func ProfileValues(u client.User) Values {
	v := Values{Skills: strings.Join(u.Skills, ", ")}
	if u.Bio != nil {
		v.Bio = *u.Bio
	}
	return v
}

// View implements tea.Model
func (f *Form) View() string {
	var sb strings.Builder

	if len(stepNames[f.kind]) > 1 {
		sb.WriteString(f.renderProgress())
		sb.WriteString("\n\n")
	}
	if f.notice != "" {
		sb.WriteString(styles.Notice.Render(f.notice))
		sb.WriteString("\n\n")
	}

	if f.submitting {
		sb.WriteString(styles.Subtitle.Render("Submitting..."))
	} else {
		sb.WriteString(f.form.View())
	}

	if f.err != "" {
		sb.WriteString("\n")
		sb.WriteString(styles.StatusCritical.Render("Error: " + f.err))
	}

	return sb.String()
}

// renderProgress renders the step indicator of multi-step forms
func (f *Form) renderProgress() string {
	width := f.width - 1
	if width < 60 {
		width = 60
	}

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary)

	names := stepNames[f.kind]
	var steps []string
	for i, name := range names {
		stepNum := i + 1
		var indicator string
		var nameStyle lipgloss.Style

		switch {
		case stepNum < f.step:
			indicator = lipgloss.NewStyle().Foreground(styles.Secondary).Render(icons.CheckOK.String())
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		case stepNum == f.step:
			indicator = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true).Render("●")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
		default:
			indicator = lipgloss.NewStyle().Foreground(styles.Muted).Render("○")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		}

		steps = append(steps, fmt.Sprintf("%s %s", indicator, nameStyle.Render(name)))
	}
	stepsLine := strings.Join(steps, "    ")

	// "│  " + bar + " │"
	barWidth := width - 5
	filledWidth := (f.step * barWidth) / len(names)
	progressBar := lipgloss.NewStyle().Foreground(styles.Primary).Render(strings.Repeat("━", filledWidth)) +
		lipgloss.NewStyle().Foreground(styles.Surface).Render(strings.Repeat("─", barWidth-filledWidth))

	title := f.kind.String()
	topBorder := "┌─ " + titleStyle.Render(title) + " " + strings.Repeat("─", max(0, width-5-lipgloss.Width(title))) + "┐"
	stepsLinePadded := "│ " + stepsLine + strings.Repeat(" ", max(0, width-4-lipgloss.Width(stepsLine))) + " │"
	progressLine := "│  " + progressBar + " │"
	bottomBorder := "└" + strings.Repeat("─", width-2) + "┘"

	return borderStyle.Render(strings.Join([]string{
		topBorder,
		stepsLinePadded,
		progressLine,
		bottomBorder,
	}, "\n"))
}
