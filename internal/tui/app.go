// ABOUTME: Root bubbletea model for the marketplace TUI
// ABOUTME: Owns navigation history, routes input to screens and reacts to session changes

package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/Modhak129/WEB-freelance/internal/authz"
	"github.com/Modhak129/WEB-freelance/internal/client"
	"github.com/Modhak129/WEB-freelance/internal/forms"
	"github.com/Modhak129/WEB-freelance/internal/resource"
	"github.com/Modhak129/WEB-freelance/internal/session"
	"github.com/Modhak129/WEB-freelance/internal/tui/formview"
	"github.com/Modhak129/WEB-freelance/internal/tui/icons"
	"github.com/Modhak129/WEB-freelance/internal/tui/profile"
	"github.com/Modhak129/WEB-freelance/internal/tui/project"
	"github.com/Modhak129/WEB-freelance/internal/tui/projects"
	"github.com/Modhak129/WEB-freelance/internal/tui/recent"
	"github.com/Modhak129/WEB-freelance/internal/tui/styles"
)

// Screen represents a TUI page
type Screen int

const (
	ScreenProjects Screen = iota
	ScreenProject
	ScreenProfile
	ScreenPostProject
	ScreenEditProfile
	ScreenLogin
	ScreenRegister
)

// protected screens require an authenticated session
func (s Screen) protected() bool {
	return s == ScreenPostProject || s == ScreenEditProfile
}

func (s Screen) form() bool {
	return s >= ScreenPostProject
}

// Route is a history entry. ID is the project or user id where the screen needs one.
type Route struct {
	Screen Screen
	ID     int
}

// Layout constants
const (
	minTerminalWidth = 80
	frameOverhead    = 4 // header, footer and the blank lines around content
)

const (
	noticeExpired    = "Your session has expired. Please log in again."
	noticeRegistered = "Account created. Please log in."
)

// API is the part of the marketplace client the screens use
type API interface {
	ListProjects(ctx context.Context, skill string) ([]client.Project, error)
	GetProject(ctx context.Context, id int) (*client.Project, error)
	CreateProject(ctx context.Context, token string, req client.CreateProjectRequest) (*client.Project, error)
	PlaceBid(ctx context.Context, token string, projectID int, req client.PlaceBidRequest) error
	AcceptBid(ctx context.Context, token string, projectID, bidID int) error
	UpdateProject(ctx context.Context, token string, id int, req client.UpdateProjectRequest) (*client.Project, error)
	GetUser(ctx context.Context, id int) (*client.User, error)
	UpdateProfile(ctx context.Context, token string, req client.UpdateProfileRequest) error
	PostReview(ctx context.Context, token string, projectID int, req client.PostReviewRequest) error
}

// Options configures the App
type Options struct {
	// ConfigDir holds recent searches; empty keeps them in memory
	ConfigDir string
	Timeout   time.Duration
	Logger    zerolog.Logger
}

// sessionChangedMsg relays a session transition from another goroutine
type sessionChangedMsg struct {
	from, to session.Status
}

type bootstrappedMsg struct {
	err error
}

// authResultMsg reports a finished login or registration
type authResultMsg struct {
	kind  formview.Kind
	email string
	err   error
}

// App is the root model for the TUI
type App struct {
	api     API
	session *session.Manager
	log     zerolog.Logger
	timeout time.Duration

	history []Route
	pending *Route // where to resume after logging in
	notice  string
	prefill formview.Values

	width   int
	height  int
	spinner spinner.Model

	projects *projects.Model
	project  *project.Model
	profile  *profile.Model
	// postSync has no key; it only carries the create-project mutation
	postSync *resource.Synchronizer[int, client.Project]

	form   *formview.Form // full-screen form
	inline *formview.Form // bid or review form on the project screen
	// done is the notice for a finished project action that has no form
	done string

	lastUpdate time.Time
}

// New creates the TUI application on the project list
func New(api API, mgr *session.Manager, opts Options) *App {
	if opts.Timeout <= 0 {
		opts.Timeout = resource.DefaultTimeout
	}
	resOpts := []resource.Option{resource.WithTimeout(opts.Timeout), resource.WithMessage(errorMessage)}

	searches := recent.New(opts.ConfigDir)
	if _, err := searches.Load(); err != nil {
		opts.Logger.Warn().Err(err).Msg("failed to load recent searches")
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return &App{
		api:     api,
		session: mgr,
		log:     opts.Logger,
		timeout: opts.Timeout,
		history: []Route{{Screen: ScreenProjects}},
		spinner: s,
		projects: projects.New(func(ctx context.Context, skill string) ([]client.Project, error) {
			return api.ListProjects(ctx, skill)
		}, searches, resOpts...),
		project: project.New(func(ctx context.Context, id int) (client.Project, error) {
			p, err := api.GetProject(ctx, id)
			if err != nil {
				return client.Project{}, err
			}
			return *p, nil
		}, resOpts...),
		profile: profile.New(func(ctx context.Context, id int) (client.User, error) {
			u, err := api.GetUser(ctx, id)
			if err != nil {
				return client.User{}, err
			}
			return *u, nil
		}, resOpts...),
		// never activated, so the fetcher does not run
		postSync: resource.New(func(ctx context.Context, _ int) (client.Project, error) {
			return client.Project{}, nil
		}, resOpts...),
	}
}

// errorMessage maps client errors to the text shown on screen
func errorMessage(err error) string {
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		return noticeExpired
	case errors.Is(err, client.ErrNotFound):
		return "Not found."
	case errors.Is(err, client.ErrTimeout):
		return "The marketplace took too long to respond."
	case errors.Is(err, client.ErrUnreachable):
		return "Cannot reach the marketplace. Check your connection."
	default:
		return err.Error()
	}
}

// authMessage strips the sentinel prefix so the server's own reason is shown
func authMessage(err error) string {
	if errors.Is(err, session.ErrCredentials) {
		return strings.TrimPrefix(err.Error(), session.ErrCredentials.Error()+": ")
	}
	return errorMessage(err)
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.bootstrap(), a.enter(a.current()))
}

func (a *App) current() Route {
	return a.history[len(a.history)-1]
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case resource.Fetched[string, []client.Project]:
		if a.projects.Apply(msg) && msg.Err == nil {
			a.lastUpdate = time.Now()
		}
		return a, nil

	case resource.Fetched[int, client.Project]:
		if a.project.Apply(msg) && msg.Err == nil {
			a.lastUpdate = time.Now()
		}
		return a, nil

	case resource.Fetched[int, client.User]:
		if a.profile.Apply(msg) && msg.Err == nil {
			a.lastUpdate = time.Now()
		}
		return a, nil

	case resource.Mutated:
		return a.handleMutated(msg)

	case projects.SelectedMsg:
		return a, a.navigate(Route{Screen: ScreenProject, ID: msg.ID}, false)

	case formview.SubmittedMsg:
		return a.handleSubmitted(msg)

	case formview.CancelledMsg:
		if a.inline != nil {
			a.inline = nil
			return a, nil
		}
		return a, a.back()

	case authResultMsg:
		return a.handleAuthResult(msg)

	case bootstrappedMsg:
		if msg.err != nil {
			a.log.Warn().Err(msg.err).Msg("session bootstrap failed")
		}
		return a, nil

	case sessionChangedMsg:
		if msg.to != session.Invalid {
			return a, nil
		}
		if msg.from == session.Authenticated {
			return a, a.sessionExpired()
		}
		a.notice = noticeExpired
		return a, nil
	}

	return a.forward(msg)
}

// forward passes other messages to whichever component has focus
func (a *App) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case a.inline != nil:
		_, cmd = a.inline.Update(msg)
	case a.form != nil && a.current().Screen.form():
		_, cmd = a.form.Update(msg)
	case a.current().Screen == ScreenProjects:
		_, cmd = a.projects.Update(msg)
	}
	return a, cmd
}

func (a *App) resize() {
	w := a.frameWidth()
	h := a.height - frameOverhead
	a.projects.SetSize(w, h)
	a.project.SetSize(w, h)
	a.profile.SetWidth(w)
	if a.form != nil {
		a.form.SetWidth(w)
	}
	if a.inline != nil {
		a.inline.SetWidth(w)
	}
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cur := a.current()

	// Focused inputs take every key; esc inside them cancels
	if a.inline != nil || (a.form != nil && cur.Screen.form()) {
		return a.forward(msg)
	}
	if cur.Screen == ScreenProjects && a.projects.Filtering() {
		return a.forward(msg)
	}

	a.notice = ""
	s := a.session.Current()

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "esc":
		return a, a.back()
	case "p":
		if cur.Screen != ScreenProjects {
			return a, a.navigate(Route{Screen: ScreenProjects}, false)
		}
		return a, nil
	case "m":
		if s.Authenticated() {
			return a, a.navigate(Route{Screen: ScreenProfile, ID: s.User.ID}, false)
		}
		a.notice = authz.ReasonUnauthenticated.Message()
		return a, a.navigate(Route{Screen: ScreenLogin}, false)
	case "n":
		return a, a.navigate(Route{Screen: ScreenPostProject}, false)
	case "l":
		if !s.Authenticated() {
			return a, a.navigate(Route{Screen: ScreenLogin}, false)
		}
		return a, nil
	case "g":
		if !s.Authenticated() {
			return a, a.navigate(Route{Screen: ScreenRegister}, false)
		}
		return a, nil
	case "o":
		if s.Authenticated() {
			return a, a.logout()
		}
		return a, nil
	}

	switch cur.Screen {
	case ScreenProjects:
		return a.forward(msg)
	case ScreenProject:
		return a.handleProjectKey(msg, s)
	case ScreenProfile:
		return a.handleProfileKey(msg, s)
	}
	return a, nil
}

func (a *App) handleProjectKey(msg tea.KeyMsg, s session.Session) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "r" {
		return a, a.project.Refresh()
	}

	p, loaded := a.project.Project()
	if !loaded {
		return a, nil
	}

	switch key {
	case "b":
		d := authz.ShowBidForm(s, p)
		if d.Allowed {
			return a, a.openInline(formview.KindBid)
		}
		return a, a.denied(d)

	case "v":
		d := authz.ShowReviewForm(s, p)
		if d.Allowed {
			return a, a.openInline(formview.KindReview)
		}
		return a, a.denied(d)

	case "a":
		d := authz.ShowAcceptBidAction(s, p)
		if !d.Allowed {
			return a, a.denied(d)
		}
		bid, ok := a.project.SelectedBid()
		if !ok {
			return a, nil
		}
		a.done = "Bid accepted."
		api, projectID, bidID := a.api, p.ID, bid.ID
		return a, a.project.Mutate(a.authed(func(ctx context.Context, token string) (any, error) {
			return nil, api.AcceptBid(ctx, token, projectID, bidID)
		}))

	case "d":
		d := authz.ShowCompleteAction(s, p)
		if !d.Allowed {
			return a, a.denied(d)
		}
		a.done = "Project marked completed."
		api, projectID := a.api, p.ID
		return a, a.project.Mutate(a.authed(func(ctx context.Context, token string) (any, error) {
			return api.UpdateProject(ctx, token, projectID, client.CompleteProjectRequest())
		}))

	case "c":
		return a, a.navigate(Route{Screen: ScreenProfile, ID: p.Client.ID}, false)

	case "enter":
		if bid, ok := a.project.SelectedBid(); ok {
			return a, a.navigate(Route{Screen: ScreenProfile, ID: bid.Freelancer.ID}, false)
		}
		return a, nil
	}

	a.project, _ = a.project.Update(msg)
	return a, nil
}

func (a *App) handleProfileKey(msg tea.KeyMsg, s session.Session) (tea.Model, tea.Cmd) {
	cur := a.current()
	switch msg.String() {
	case "r":
		return a, a.profile.Refresh()
	case "e":
		d := authz.ShowEditProfileAction(s, cur.ID)
		if !d.Allowed {
			return a, a.denied(d)
		}
		return a, a.navigate(Route{Screen: ScreenEditProfile, ID: cur.ID}, false)
	}
	return a, nil
}

// denied reports a refused action. Anonymous users are sent to log in and
// brought back afterwards.
func (a *App) denied(d authz.Decision) tea.Cmd {
	a.notice = d.Reason.Message()
	if d.Reason != authz.ReasonUnauthenticated {
		return nil
	}
	cur := a.current()
	a.pending = &cur
	return a.navigate(Route{Screen: ScreenLogin}, false)
}

// navigate enters r, pushing it onto the history or replacing the top entry.
// A protected route entered without a session redirects to the login form
// and is remembered so login can resume it; it never enters the history.
func (a *App) navigate(r Route, replace bool) tea.Cmd {
	s := a.session.Current()

	if r.Screen.protected() {
		if d := authz.EnterProtectedRoute(s); !d.Allowed {
			a.notice = d.Reason.Message()
			blocked := r
			a.pending = &blocked
			r = Route{Screen: ScreenLogin}
		} else if r.Screen == ScreenEditProfile {
			r.ID = s.User.ID
		}
	}
	if r.Screen == ScreenPostProject {
		if d := authz.ShowPostProjectAction(s); !d.Allowed {
			a.notice = d.Reason.Message()
			if !replace {
				return nil
			}
			r = Route{Screen: ScreenProjects}
		}
	}

	if r.Screen != ScreenLogin && r.Screen != ScreenRegister {
		a.pending = nil
	}

	a.inline = nil
	if replace {
		a.history[len(a.history)-1] = r
	} else {
		a.history = append(a.history, r)
	}
	a.log.Debug().Int("screen", int(r.Screen)).Int("id", r.ID).Bool("replace", replace).Msg("navigate")
	return a.enter(r)
}

// replaceWith leaves the current page for r. When r is the page underneath,
// that entry is reused instead of stacking a duplicate.
func (a *App) replaceWith(r Route) tea.Cmd {
	if n := len(a.history); n > 1 && a.history[n-2] == r {
		a.history = a.history[:n-1]
	}
	return a.navigate(r, true)
}

// back pops the history. The previous route is re-entered, so a protected
// page left behind after logout is checked again.
func (a *App) back() tea.Cmd {
	if len(a.history) < 2 {
		return nil
	}
	prev := a.history[len(a.history)-2]
	a.history = a.history[:len(a.history)-2]
	return a.navigate(prev, false)
}

// enter activates the screen for r
func (a *App) enter(r Route) tea.Cmd {
	if !r.Screen.form() {
		a.form = nil
	}

	switch r.Screen {
	case ScreenProjects:
		return a.projects.Activate()
	case ScreenProject:
		return a.project.Activate(r.ID)
	case ScreenProfile:
		return a.profile.Activate(r.ID)
	case ScreenLogin:
		return a.openForm(formview.KindLogin)
	case ScreenRegister:
		return a.openForm(formview.KindRegister)
	case ScreenPostProject:
		return a.openForm(formview.KindPostProject)
	case ScreenEditProfile:
		if u, ok := a.profile.User(r.ID); ok {
			a.prefill = formview.ProfileValues(u)
		} else if s := a.session.Current(); s.Authenticated() {
			a.prefill = formview.ProfileValues(*s.User)
		}
		// the profile sync owns the update so success refetches it
		return tea.Batch(a.openForm(formview.KindEditProfile), a.profile.Activate(r.ID))
	}
	return nil
}

func (a *App) openForm(kind formview.Kind) tea.Cmd {
	a.form = formview.New(kind, a.prefill)
	a.prefill = formview.Values{}
	a.form.SetWidth(a.frameWidth())
	a.form.SetNotice(a.notice)
	return a.form.Init()
}

func (a *App) openInline(kind formview.Kind) tea.Cmd {
	a.inline = formview.New(kind, formview.Values{})
	a.inline.SetWidth(a.frameWidth())
	return a.inline.Init()
}

// authed wraps an authenticated call. The token is read now, at submit time,
// and a rejection of that token invalidates the session.
func (a *App) authed(fn func(ctx context.Context, token string) (any, error)) func(ctx context.Context) (any, error) {
	mgr := a.session
	token := mgr.Token()
	return func(ctx context.Context) (any, error) {
		result, err := fn(ctx, token)
		mgr.CheckError(ctx, token, err)
		return result, err
	}
}

func (a *App) handleSubmitted(msg formview.SubmittedMsg) (tea.Model, tea.Cmd) {
	api := a.api

	switch req := msg.Request.(type) {
	case forms.LoginForm:
		a.setSubmitting(a.form)
		return a, a.login(req.Email, req.Password)

	case client.RegisterRequest:
		a.setSubmitting(a.form)
		return a, a.register(req)

	case client.CreateProjectRequest:
		a.setSubmitting(a.form)
		return a, a.postSync.Mutate(a.authed(func(ctx context.Context, token string) (any, error) {
			return api.CreateProject(ctx, token, req)
		}))

	case client.UpdateProfileRequest:
		a.setSubmitting(a.form)
		return a, a.profile.Mutate(a.authed(func(ctx context.Context, token string) (any, error) {
			return nil, api.UpdateProfile(ctx, token, req)
		}))

	case client.PlaceBidRequest:
		a.setSubmitting(a.inline)
		projectID := a.current().ID
		return a, a.project.Mutate(a.authed(func(ctx context.Context, token string) (any, error) {
			return nil, api.PlaceBid(ctx, token, projectID, req)
		}))

	case client.PostReviewRequest:
		a.setSubmitting(a.inline)
		projectID := a.current().ID
		return a, a.project.Mutate(a.authed(func(ctx context.Context, token string) (any, error) {
			return nil, api.PostReview(ctx, token, projectID, req)
		}))
	}

	a.log.Warn().Str("kind", msg.Kind.String()).Msg("unhandled form submission")
	return a, nil
}

func (a *App) setSubmitting(f *formview.Form) {
	if f != nil {
		f.SetSubmitting(true)
	}
}

func (a *App) handleMutated(msg resource.Mutated) (tea.Model, tea.Cmd) {
	expired := errors.Is(msg.Err, client.ErrUnauthorized) && !a.session.Current().Authenticated()

	switch {
	case a.postSync.Owns(msg):
		a.postSync.ApplyMutation(msg)
		if expired {
			return a, a.sessionExpired()
		}
		if msg.Err != nil {
			return a, a.failForm(a.form, a.postSync.State().MutationErr)
		}
		a.notice = "Project posted."
		if created, ok := msg.Result.(*client.Project); ok && created != nil {
			return a, a.navigate(Route{Screen: ScreenProject, ID: created.ID}, true)
		}
		return a, a.navigate(Route{Screen: ScreenProjects}, true)

	case a.project.Owns(msg):
		cmd := a.project.ApplyMutation(msg)
		if expired {
			return a, a.sessionExpired()
		}
		if msg.Err != nil {
			return a, a.failForm(a.inline, a.project.State().MutationErr)
		}
		switch {
		case a.inline == nil:
			a.notice = a.done
		case a.inline.Kind() == formview.KindBid:
			a.notice = "Your bid has been placed."
		default:
			a.notice = "Thanks for your review."
		}
		a.inline = nil
		return a, cmd

	case a.profile.Owns(msg):
		a.profile.ApplyMutation(msg)
		if expired {
			return a, a.sessionExpired()
		}
		if msg.Err != nil {
			return a, a.failForm(a.form, a.profile.State().MutationErr)
		}
		a.notice = "Profile updated."
		// entering the profile refetches it
		return a, a.replaceWith(Route{Screen: ScreenProfile, ID: a.current().ID})
	}

	return a, nil
}

func (a *App) failForm(f *formview.Form, msg string) tea.Cmd {
	if f == nil {
		return nil
	}
	return f.Fail(msg)
}

// sessionExpired sends the user to log in after the server rejected the
// token, remembering the current page. Safe to call more than once.
func (a *App) sessionExpired() tea.Cmd {
	a.notice = noticeExpired
	a.inline = nil

	cur := a.current()
	if cur.Screen == ScreenLogin {
		if a.form != nil {
			a.form.SetNotice(a.notice)
		}
		return nil
	}
	if cur.Screen != ScreenRegister {
		a.pending = &cur
	}
	return a.navigate(Route{Screen: ScreenLogin}, cur.Screen.protected())
}

func (a *App) handleAuthResult(msg authResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return a, a.failForm(a.form, authMessage(msg.err))
	}

	switch msg.kind {
	case formview.KindLogin:
		target := Route{Screen: ScreenProjects}
		if a.pending != nil {
			target = *a.pending
		}
		if s := a.session.Current(); s.Authenticated() {
			a.notice = "Welcome back, " + s.User.Username + "."
		}
		return a, a.replaceWith(target)

	case formview.KindRegister:
		a.notice = noticeRegistered
		a.prefill = formview.Values{Email: msg.email}
		return a, a.navigate(Route{Screen: ScreenLogin}, true)
	}
	return a, nil
}

func (a *App) bootstrap() tea.Cmd {
	mgr, timeout := a.session, a.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return bootstrappedMsg{err: mgr.Bootstrap(ctx)}
	}
}

func (a *App) login(email, password string) tea.Cmd {
	mgr, timeout := a.session, a.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_, err := mgr.Login(ctx, email, password)
		return authResultMsg{kind: formview.KindLogin, email: email, err: err}
	}
}

func (a *App) register(req client.RegisterRequest) tea.Cmd {
	mgr, timeout := a.session, a.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_, err := mgr.Register(ctx, req)
		return authResultMsg{kind: formview.KindRegister, email: req.Email, err: err}
	}
}

// logout ends the session before returning. Only the follow-up navigation
// is left to the returned command.
func (a *App) logout() tea.Cmd {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	if err := a.session.Logout(ctx); err != nil {
		a.log.Error().Err(err).Msg("logout")
	}

	a.notice = "You have been logged out."
	a.inline = nil
	if a.current().Screen.protected() {
		return a.navigate(Route{Screen: ScreenProjects}, true)
	}
	return nil
}

// View implements tea.Model
func (a *App) View() string {
	var content string
	s := a.session.Current()
	cur := a.current()

	switch cur.Screen {
	case ScreenProjects:
		content = a.projects.View()
	case ScreenProject:
		content = a.project.View(s)
		if a.inline != nil {
			content += "\n" + styles.Title.Render(a.inline.Kind().String()) + "\n" + a.inline.View()
		}
	case ScreenProfile:
		content = a.profile.View(s)
	default:
		if a.form != nil {
			content = styles.Title.Render(a.form.Kind().String()) + "\n" + a.form.View()
		}
	}

	if a.notice != "" && !cur.Screen.form() {
		content = styles.Notice.Render(a.notice) + "\n\n" + content
	}

	return a.wrapWithFrame(content)
}

// frameWidth is one column short of the terminal to avoid wrapping, clamped to a usable minimum
func (a *App) frameWidth() int {
	return max(a.width-1, minTerminalWidth)
}

// renderHeader creates the header bar with app branding and the signed-in user
func (a *App) renderHeader() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	leftText := fmt.Sprintf(" %s %s ", icons.App.String(), titleStyle.Render("Freelance Marketplace"))

	var rightText string
	s := a.session.Current()
	switch {
	case s.Authenticated():
		rightText = " " + contextStyle.Render(fmt.Sprintf("%s %s (%s)", icons.User.String(), s.User.Username, s.User.Role())) + " "
	case s.Status == session.Initializing || s.Status == session.Validating:
		rightText = " " + lipgloss.NewStyle().Foreground(styles.Muted).Render("Checking session...") + " "
	default:
		rightText = " " + lipgloss.NewStyle().Foreground(styles.Muted).Render("Not logged in") + " "
	}

	fillWidth := width - 4 - lipgloss.Width(leftText) - lipgloss.Width(rightText) // -4 for ╭─ and ─╮
	if fillWidth < 0 {
		fillWidth = 0
	}

	return borderStyle.Render("╭─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╮")
}

func (a *App) shortcuts() []string {
	if a.inline != nil {
		return []string{"Tab Next", "Enter Confirm", "Esc Cancel"}
	}

	account := []string{"l Login", "g Register"}
	if a.session.Current().Authenticated() {
		account = []string{"m Profile", "o Logout"}
	}

	switch a.current().Screen {
	case ScreenProjects:
		if a.projects.Filtering() {
			return []string{"Enter Search", "↑↓ Recent", "Esc Cancel"}
		}
		out := []string{"↑↓ Navigate", "Enter Open", "/ Filter", "n Post"}
		return append(append(out, account...), "q Quit")
	case ScreenProject:
		return []string{"↑↓ Bids", "b Bid", "a Accept", "d Complete", "v Review", "c Client", "r Refresh", "Esc Back", "q Quit"}
	case ScreenProfile:
		out := []string{"e Edit", "r Refresh", "p Projects", "Esc Back"}
		return append(append(out, account...), "q Quit")
	default:
		return []string{"Tab Next", "Enter Confirm", "Esc Cancel"}
	}
}

func (a *App) loading() bool {
	switch a.current().Screen {
	case ScreenProjects:
		return a.projects.State().Loading
	case ScreenProject:
		return a.project.State().Loading
	case ScreenProfile:
		return a.profile.State().Loading
	}
	return false
}

// renderFooter creates the footer with keyboard shortcuts and status.
// Shortcuts are dropped from the end until the footer fits.
func (a *App) renderFooter() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	// Right side status
	rightText := ""
	rightPlainText := ""
	switch {
	case a.loading():
		rightText = a.spinner.View() + statusStyle.Render(" Loading") + " "
		rightPlainText = a.spinner.View() + " Loading "
	case !a.lastUpdate.IsZero() && !a.current().Screen.form():
		elapsed := a.formatTimeSince(a.lastUpdate)
		rightText = statusStyle.Render("Updated "+elapsed) + " "
		rightPlainText = "Updated " + elapsed + " "
	}
	rightWidth := lipgloss.Width(rightPlainText)

	shortcuts := a.shortcuts()
	leftPlainText := " " + strings.Join(shortcuts, "  ") + " "
	for len(shortcuts) > 0 && lipgloss.Width(leftPlainText)+rightWidth+4 > width {
		shortcuts = shortcuts[:len(shortcuts)-1]
		leftPlainText = " " + strings.Join(shortcuts, "  ") + " "
	}

	var styled []string
	for _, s := range shortcuts {
		parts := strings.SplitN(s, " ", 2)
		if len(parts) == 2 {
			styled = append(styled, keyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
		} else {
			styled = append(styled, s)
		}
	}
	leftText := " " + strings.Join(styled, "  ") + " "

	fillWidth := width - 4 - lipgloss.Width(leftPlainText) - rightWidth // -4 for ╰─ and ─╯
	if fillWidth < 0 {
		fillWidth = 0
	}

	return borderStyle.Render("╰─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╯")
}

// formatTimeSince formats a duration since the given time in human-readable form
func (a *App) formatTimeSince(t time.Time) string {
	d := time.Since(t)

	if d < time.Minute {
		secs := int(d.Seconds())
		if secs < 5 {
			return "just now"
		}
		return fmt.Sprintf("%ds ago", secs)
	}

	if d < time.Hour {
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	}

	return fmt.Sprintf("%dh ago", int(d.Hours()))
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}

// Run starts the TUI and relays session transitions into it
func Run(api API, mgr *session.Manager, opts Options) error {
	app := New(api, mgr, opts)

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
	)
	// logout runs inside Update, so the send must not block the event loop
	mgr.Observe(func(from, to session.Status) {
		go p.Send(sessionChangedMsg{from: from, to: to})
	})

	_, err := p.Run()
	return err
}
