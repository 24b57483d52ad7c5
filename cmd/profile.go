// ABOUTME: Profile commands: show any user's profile and edit your own
// ABOUTME: Edits start from the current profile so unset flags keep their values

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Modhak129/WEB-freelance/internal/authz"
	"github.com/Modhak129/WEB-freelance/internal/client"
	"github.com/Modhak129/WEB-freelance/internal/forms"
	"github.com/Modhak129/WEB-freelance/internal/resource"
	"github.com/Modhak129/WEB-freelance/internal/tui/widgets"
)

var (
	profileBio    string
	profileSkills string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or edit profiles",
}

var profileShowCmd = &cobra.Command{
	Use:   "show [USER_ID]",
	Short: "Show a user's profile (yours when no id is given)",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		arg := ""
		if len(args) == 1 {
			arg = args[0]
		}
		exit(func(ctx context.Context) int { return runProfileShow(ctx, os.Stdout, arg) })
	},
}

var profileEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Update your bio and skills",
	Run: func(cmd *cobra.Command, args []string) {
		var bio, skills *string
		if cmd.Flags().Changed("bio") {
			bio = &profileBio
		}
		if cmd.Flags().Changed("skills") {
			skills = &profileSkills
		}
		exit(func(ctx context.Context) int { return runProfileEdit(ctx, os.Stdout, bio, skills) })
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileShowCmd, profileEditCmd)

	profileEditCmd.Flags().StringVar(&profileBio, "bio", "", "Short bio")
	profileEditCmd.Flags().StringVar(&profileSkills, "skills", "", "Comma-separated skills, e.g. \"Go, React\"")
}

func (e *env) userSync() *resource.Synchronizer[int, client.User] {
	api := e.api
	return resource.New(func(ctx context.Context, id int) (client.User, error) {
		u, err := api.GetUser(ctx, id)
		if err != nil {
			return client.User{}, err
		}
		return *u, nil
	}, resource.WithTimeout(e.cfg.RequestTimeout))
}

// runProfileShow prints a profile; with no id it shows the logged-in user
func runProfileShow(ctx context.Context, w io.Writer, arg string) int {
	e, code := setup(ctx, w)
	if code != exitOK {
		return code
	}
	defer e.Close()

	var id int
	if arg == "" {
		s, code := e.authenticate(ctx, w)
		if code != exitOK {
			return code
		}
		id = s.User.ID
	} else {
		var err error
		if id, err = parseID(arg); err != nil {
			return fail(w, err)
		}
	}

	state := e.userSync().Load(id)
	if state.Err != "" || state.Data == nil {
		fmt.Fprintf(w, "Error: %s\n", state.Err)
		return exitError
	}

	if IsJSONOutput() {
		writeJSON(w, state.Data)
	} else {
		fmt.Fprintln(w, formatProfileHuman(*state.Data))
	}
	return exitOK
}

func formatProfileHuman(u client.User) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s (%s)\n", u.Username, u.Role())
	if u.Email != "" {
		fmt.Fprintf(&sb, "Email:    %s\n", u.Email)
	}
	if u.RankingScore != nil && len(u.ReviewsReceived) > 0 {
		fmt.Fprintf(&sb, "Ranking:  %.2f / 5 from %d reviews\n", *u.RankingScore, len(u.ReviewsReceived))
	} else {
		sb.WriteString("Ranking:  No ratings yet\n")
	}
	if len(u.Skills) > 0 {
		fmt.Fprintf(&sb, "Skills:   %s\n", strings.Join(u.Skills, ", "))
	}
	if u.Bio != nil && *u.Bio != "" {
		sb.WriteString("\n" + *u.Bio + "\n")
	}

	if len(u.ReviewsReceived) > 0 {
		sb.WriteString("\nReviews\n")
		for _, r := range u.ReviewsReceived {
			fmt.Fprintf(&sb, "  %s %s: %s\n", widgets.Stars(r.Rating), r.Reviewer.Username, r.Comment)
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

// runProfileEdit updates the logged-in user's profile. Nil fields keep their current value.
func runProfileEdit(ctx context.Context, w io.Writer, bio, skills *string) int {
	if bio == nil && skills == nil {
		fmt.Fprintln(w, "Error: nothing to change; pass --bio and/or --skills")
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
	if d := authz.ShowEditProfileAction(s, s.User.ID); !d.Allowed {
		return deny(w, d)
	}

	sync := e.userSync()
	state := sync.Load(s.User.ID)
	if state.Data == nil {
		fmt.Fprintf(w, "Error: %s\n", state.Err)
		return exitError
	}

	form := forms.ProfileForm{Skills: strings.Join(state.Data.Skills, ", ")}
	if state.Data.Bio != nil {
		form.Bio = *state.Data.Bio
	}
	if bio != nil {
		form.Bio = *bio
	}
	if skills != nil {
		form.Skills = *skills
	}
	req, err := form.Request()
	if err != nil {
		return fail(w, err)
	}

	api := e.api
	state, msg := sync.Submit(e.authed(func(ctx context.Context, token string) (any, error) {
		return nil, api.UpdateProfile(ctx, token, req)
	}))
	if msg.Err != nil {
		return fail(w, msg.Err)
	}

	if IsJSONOutput() {
		writeJSON(w, state.Data)
		return exitOK
	}
	fmt.Fprintln(w, "Profile updated.")
	if state.Data != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, formatProfileHuman(*state.Data))
	}
	return exitOK
}
