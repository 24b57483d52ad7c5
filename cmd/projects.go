// ABOUTME: Project commands: list, show, post, complete, bid, accept and review
// ABOUTME: Checks capabilities before calling the server and re-reads the project after every change

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/Modhak129/WEB-freelance/internal/authz"
	"github.com/Modhak129/WEB-freelance/internal/client"
	"github.com/Modhak129/WEB-freelance/internal/forms"
	"github.com/Modhak129/WEB-freelance/internal/resource"
	"github.com/Modhak129/WEB-freelance/internal/tui/projects"
	"github.com/Modhak129/WEB-freelance/internal/tui/styles"
	"github.com/Modhak129/WEB-freelance/internal/tui/widgets"
)

var (
	projectsSkill   string
	postTitle       string
	postDescription string
	postBudget      string
	bidAmount       string
	bidProposal     string
	acceptBidID     int
	reviewRating    string
	reviewComment   string
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List open projects",
	Run: func(cmd *cobra.Command, args []string) {
		exit(func(ctx context.Context) int { return runProjects(ctx, os.Stdout, projectsSkill) })
	},
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Show, post or complete a project",
}

var projectShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a project with its bids and reviews",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exit(func(ctx context.Context) int { return runProjectShow(ctx, os.Stdout, args[0]) })
	},
}

var projectPostCmd = &cobra.Command{
	Use:   "post",
	Short: "Post a new project (clients only)",
	Run: func(cmd *cobra.Command, args []string) {
		exit(func(ctx context.Context) int {
			return runProjectPost(ctx, os.Stdout, forms.ProjectForm{
				Title:       postTitle,
				Description: postDescription,
				Budget:      postBudget,
			})
		})
	},
}

var projectCompleteCmd = &cobra.Command{
	Use:   "complete ID",
	Short: "Mark your hired project completed so both sides can review",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exit(func(ctx context.Context) int { return runProjectComplete(ctx, os.Stdout, args[0]) })
	},
}

var bidCmd = &cobra.Command{
	Use:   "bid PROJECT_ID",
	Short: "Bid on an open project (freelancers only)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exit(func(ctx context.Context) int {
			return runBid(ctx, os.Stdout, args[0], forms.BidForm{Amount: bidAmount, Proposal: bidProposal})
		})
	},
}

var acceptCmd = &cobra.Command{
	Use:   "accept PROJECT_ID",
	Short: "Accept a bid on your project",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exit(func(ctx context.Context) int { return runAccept(ctx, os.Stdout, args[0], acceptBidID) })
	},
}

var reviewCmd = &cobra.Command{
	Use:   "review PROJECT_ID",
	Short: "Review the other party of a completed project",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		exit(func(ctx context.Context) int {
			return runReview(ctx, os.Stdout, args[0], forms.ReviewForm{Rating: reviewRating, Comment: reviewComment})
		})
	},
}

func init() {
	rootCmd.AddCommand(projectsCmd, projectCmd, bidCmd, acceptCmd, reviewCmd)
	projectCmd.AddCommand(projectShowCmd, projectPostCmd, projectCompleteCmd)

	projectsCmd.Flags().StringVar(&projectsSkill, "skill", "", "Only projects mentioning this skill")

	projectPostCmd.Flags().StringVar(&postTitle, "title", "", "Project title")
	projectPostCmd.Flags().StringVar(&postDescription, "description", "", "What needs doing")
	projectPostCmd.Flags().StringVar(&postBudget, "budget", "", "Budget in dollars")

	bidCmd.Flags().StringVar(&bidAmount, "amount", "", "Bid amount in dollars")
	bidCmd.Flags().StringVar(&bidProposal, "proposal", "", "Why you are a good fit")

	acceptCmd.Flags().IntVar(&acceptBidID, "bid", 0, "ID of the bid to accept")

	reviewCmd.Flags().StringVar(&reviewRating, "rating", "5", "Rating from 1 to 5")
	reviewCmd.Flags().StringVar(&reviewComment, "comment", "", "Optional comment")
}

func (e *env) projectsSync() *resource.Synchronizer[string, []client.Project] {
	api := e.api
	return resource.New(func(ctx context.Context, skill string) ([]client.Project, error) {
		return api.ListProjects(ctx, skill)
	}, resource.WithTimeout(e.cfg.RequestTimeout))
}

func (e *env) projectSync() *resource.Synchronizer[int, client.Project] {
	api := e.api
	return resource.New(func(ctx context.Context, id int) (client.Project, error) {
		p, err := api.GetProject(ctx, id)
		if err != nil {
			return client.Project{}, err
		}
		return *p, nil
	}, resource.WithTimeout(e.cfg.RequestTimeout))
}

// loadProject fetches a project, printing the failure if there is one
func (e *env) loadProject(w io.Writer, sync *resource.Synchronizer[int, client.Project], id int) (client.Project, bool) {
	state := sync.Load(id)
	if state.Err != "" || state.Data == nil {
		fmt.Fprintf(w, "Error: %s\n", state.Err)
		return client.Project{}, false
	}
	return *state.Data, true
}

// runProjects lists open projects
func runProjects(ctx context.Context, w io.Writer, skill string) int {
	e, code := setup(ctx, w)
	if code != exitOK {
		return code
	}
	defer e.Close()

	state := e.projectsSync().Load(strings.TrimSpace(skill))
	if state.Err != "" {
		fmt.Fprintf(w, "Error: %s\n", state.Err)
		return exitError
	}

	if IsJSONOutput() {
		writeJSON(w, *state.Data)
	} else {
		fmt.Fprintln(w, formatProjectsHuman(*state.Data))
	}
	return exitOK
}

func formatProjectsHuman(list []client.Project) string {
	if len(list) == 0 {
		return projects.EmptyMessage
	}

	rows := make([][]string, len(list))
	for i, p := range list {
		rows[i] = []string{
			fmt.Sprintf("%d", p.ID),
			p.Title,
			styles.FormatAmount(p.Budget),
			fmt.Sprintf("%d", len(p.Bids)),
			p.Client.Username,
		}
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "BUDGET", "BIDS", "CLIENT").
		Rows(rows...).
		Render()
}

// runProjectShow prints one project
func runProjectShow(ctx context.Context, w io.Writer, arg string) int {
	id, err := parseID(arg)
	if err != nil {
		return fail(w, err)
	}

	e, code := setup(ctx, w)
	if code != exitOK {
		return code
	}
	defer e.Close()

	p, ok := e.loadProject(w, e.projectSync(), id)
	if !ok {
		return exitError
	}

	if IsJSONOutput() {
		writeJSON(w, p)
	} else {
		fmt.Fprintln(w, formatProjectHuman(p))
	}
	return exitOK
}

func formatProjectHuman(p client.Project) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "#%d %s [%s]\n", p.ID, p.Title, p.Status.Label())
	fmt.Fprintf(&sb, "Client:   %s\n", p.Client.Username)
	fmt.Fprintf(&sb, "Budget:   %s\n", styles.FormatAmount(p.Budget))
	if p.Freelancer != nil {
		fmt.Fprintf(&sb, "Hired:    %s\n", p.Freelancer.Username)
	}
	if p.Description != "" {
		sb.WriteString("\n" + p.Description + "\n")
	}

	fmt.Fprintf(&sb, "\nBids (%d)\n", len(p.Bids))
	for _, b := range p.Bids {
		fmt.Fprintf(&sb, "  #%d %-16s %10s  %s\n", b.ID, b.Freelancer.Username, styles.FormatAmount(b.Amount), b.Proposal)
	}

	if len(p.Reviews) > 0 {
		fmt.Fprintf(&sb, "\nReviews (%d)\n", len(p.Reviews))
		for _, r := range p.Reviews {
			fmt.Fprintf(&sb, "  %s %s: %s\n", widgets.Stars(r.Rating), r.Reviewer.Username, r.Comment)
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

// runProjectPost creates a project as the logged-in client
func runProjectPost(ctx context.Context, w io.Writer, form forms.ProjectForm) int {
	req, err := form.Request()
	if err != nil {
		return fail(w, err)
	}

	e, code := setup(ctx, w)
	if code != exitOK {
		return code
	}
	defer e.Close()

	s, code := e.authenticate(ctx, w)
	if code != exitOK {
		return code
	}
	if d := authz.ShowPostProjectAction(s); !d.Allowed {
		return deny(w, d)
	}

	api := e.api
	result, err := e.authed(func(ctx context.Context, token string) (any, error) {
		return api.CreateProject(ctx, token, req)
	})(ctx)
	if err != nil {
		return fail(w, err)
	}

	created := result.(*client.Project)
	if IsJSONOutput() {
		writeJSON(w, created)
	} else {
		fmt.Fprintf(w, "Posted project #%d: %s\n", created.ID, created.Title)
	}
	return exitOK
}

// runProjectComplete moves the user's in-progress project to completed
func runProjectComplete(ctx context.Context, w io.Writer, arg string) int {
	id, err := parseID(arg)
	if err != nil {
		return fail(w, err)
	}

	e, code := setup(ctx, w)
	if code != exitOK {
		return code
	}
	defer e.Close()

	s, code := e.authenticate(ctx, w)
	if code != exitOK {
		return code
	}
	sync := e.projectSync()
	p, ok := e.loadProject(w, sync, id)
	if !ok {
		return exitError
	}
	if d := authz.ShowCompleteAction(s, p); !d.Allowed {
		return deny(w, d)
	}

	api := e.api
	state, msg := sync.Submit(e.authed(func(ctx context.Context, token string) (any, error) {
		return api.UpdateProject(ctx, token, id, client.CompleteProjectRequest())
	}))
	if msg.Err != nil {
		return fail(w, msg.Err)
	}
	return printMutated(w, state, fmt.Sprintf("Marked %q completed.", p.Title))
}

// runBid places a bid and prints the refreshed project
func runBid(ctx context.Context, w io.Writer, arg string, form forms.BidForm) int {
	id, err := parseID(arg)
	if err != nil {
		return fail(w, err)
	}
	req, err := form.Request()
	if err != nil {
		return fail(w, err)
	}

	e, code := setup(ctx, w)
	if code != exitOK {
		return code
	}
	defer e.Close()

	s, code := e.authenticate(ctx, w)
	if code != exitOK {
		return code
	}
	sync := e.projectSync()
	p, ok := e.loadProject(w, sync, id)
	if !ok {
		return exitError
	}
	if d := authz.ShowBidForm(s, p); !d.Allowed {
		return deny(w, d)
	}

	api := e.api
	state, msg := sync.Submit(e.authed(func(ctx context.Context, token string) (any, error) {
		return nil, api.PlaceBid(ctx, token, id, req)
	}))
	if msg.Err != nil {
		return fail(w, msg.Err)
	}
	return printMutated(w, state, fmt.Sprintf("Bid of %s placed on %q.", styles.FormatAmount(req.Amount), p.Title))
}

// runAccept accepts one bid on the user's project
func runAccept(ctx context.Context, w io.Writer, arg string, bidID int) int {
	id, err := parseID(arg)
	if err != nil {
		return fail(w, err)
	}
	if bidID <= 0 {
		fmt.Fprintln(w, "Error: --bid is required")
		return exitRefused
	}

	e, code := setup(ctx, w)
	if code != exitOK {
		return code
	}
	defer e.Close()

	s, code := e.authenticate(ctx, w)
	if code != exitOK {
		return code
	}
	sync := e.projectSync()
	p, ok := e.loadProject(w, sync, id)
	if !ok {
		return exitError
	}
	if d := authz.ShowAcceptBidAction(s, p); !d.Allowed {
		return deny(w, d)
	}

	var bid *client.Bid
	for i := range p.Bids {
		if p.Bids[i].ID == bidID {
			bid = &p.Bids[i]
		}
	}
	if bid == nil {
		fmt.Fprintf(w, "Error: project #%d has no bid #%d\n", id, bidID)
		return exitRefused
	}

	api := e.api
	state, msg := sync.Submit(e.authed(func(ctx context.Context, token string) (any, error) {
		return nil, api.AcceptBid(ctx, token, id, bidID)
	}))
	if msg.Err != nil {
		return fail(w, msg.Err)
	}
	return printMutated(w, state, fmt.Sprintf("Accepted %s's bid of %s.", bid.Freelancer.Username, styles.FormatAmount(bid.Amount)))
}

// runReview reviews the other party of a completed project
func runReview(ctx context.Context, w io.Writer, arg string, form forms.ReviewForm) int {
	id, err := parseID(arg)
	if err != nil {
		return fail(w, err)
	}
	req, err := form.Request()
	if err != nil {
		return fail(w, err)
	}

	e, code := setup(ctx, w)
	if code != exitOK {
		return code
	}
	defer e.Close()

	s, code := e.authenticate(ctx, w)
	if code != exitOK {
		return code
	}
	sync := e.projectSync()
	p, ok := e.loadProject(w, sync, id)
	if !ok {
		return exitError
	}
	if d := authz.ShowReviewForm(s, p); !d.Allowed {
		return deny(w, d)
	}

	api := e.api
	state, msg := sync.Submit(e.authed(func(ctx context.Context, token string) (any, error) {
		return nil, api.PostReview(ctx, token, id, req)
	}))
	if msg.Err != nil {
		return fail(w, msg.Err)
	}
	return printMutated(w, state, fmt.Sprintf("Review of %s posted.", widgets.Stars(req.Rating)))
}

// printMutated reports a successful change together with the re-read project
func printMutated(w io.Writer, state resource.State[client.Project], summary string) int {
	if IsJSONOutput() {
		writeJSON(w, state.Data)
		return exitOK
	}
	fmt.Fprintln(w, summary)
	if state.Err != "" {
		fmt.Fprintf(w, "Could not reload the project: %s\n", state.Err)
		return exitOK
	}
	if state.Data != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, formatProjectHuman(*state.Data))
	}
	return exitOK
}
