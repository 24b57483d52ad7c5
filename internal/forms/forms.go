// ABOUTME: Input forms for login, registration, projects, bids, profiles and reviews
// ABOUTME: Validates raw text with go-playground/validator and parses numbers explicitly

package forms

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Modhak129/WEB-freelance/internal/client"
)

// FieldError is a problem with one input field
type FieldError struct {
	Field   string
	Message string
}

// ValidationError collects every problem found in a form before submission
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

// For returns the message for field, or ""
func (e *ValidationError) For(field string) string {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}

func (e *ValidationError) add(field, msg string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: msg})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("form"); name != "" {
			return name
		}
		return strings.ToLower(f.Name)
	})
	return v
}

// check runs struct validation and returns the collected field problems
func check(form any) *ValidationError {
	verr := &ValidationError{}
	if err := validate.Struct(form); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			verr.add("", err.Error())
			return verr
		}
		for _, fe := range ve {
			verr.add(fe.Field(), fieldError(fe))
		}
	}
	return verr
}

// fieldError converts a single validator error into a human-readable message
func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

// ParsePositiveAmount parses a money amount. Non-numeric, non-finite and
// non-positive values are rejected with a *ValidationError.
func ParsePositiveAmount(field, s string) (float64, error) {
	verr := &ValidationError{}
	v, msg := parseAmount(field, s)
	if msg != "" {
		verr.add(field, msg)
		return 0, verr
	}
	return v, nil
}

func parseAmount(field, s string) (float64, string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, field + " is required"
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, field + " must be a number"
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, field + " must be a finite number"
	}
	if v <= 0 {
		return 0, field + " must be greater than 0"
	}
	return v, ""
}

// ParseSkills splits comma-separated input into a clean skill list
func ParseSkills(s string) []string {
	return client.SplitSkills(s)
}

// LoginForm holds the login screen's inputs
type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// Validate checks the form before submission
func (f LoginForm) Validate() error {
	f.Email = strings.TrimSpace(f.Email)
	return check(f).orNil()
}

// RegisterForm holds the registration screen's inputs
type RegisterForm struct {
	Username     string `form:"username" validate:"required,max=80"`
	Email        string `form:"email" validate:"required,email,max=120"`
	Password     string `form:"password" validate:"required,min=6"`
	IsFreelancer bool   `form:"is_freelancer"`
}

// Request validates the form and builds the registration body
func (f RegisterForm) Request() (client.RegisterRequest, error) {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
	if err := check(f).orNil(); err != nil {
		return client.RegisterRequest{}, err
	}
	return client.RegisterRequest{
		Username:     f.Username,
		Email:        f.Email,
		Password:     f.Password,
		IsFreelancer: f.IsFreelancer,
	}, nil
}

// ProjectForm holds the post-project inputs. Budget is raw text.
type ProjectForm struct {
	Title       string `form:"title" validate:"required,max=150"`
	Description string `form:"description" validate:"required"`
	Budget      string `form:"budget"`
}

// Request validates the form and builds the create-project body
func (f ProjectForm) Request() (client.CreateProjectRequest, error) {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	verr := check(f)
	budget, msg := parseAmount("budget", f.Budget)
	if msg != "" {
		verr.add("budget", msg)
	}
	if err := verr.orNil(); err != nil {
		return client.CreateProjectRequest{}, err
	}
	return client.CreateProjectRequest{Title: f.Title, Description: f.Description, Budget: budget}, nil
}

// BidForm holds the bid inputs. Amount is raw text.
type BidForm struct {
	Amount   string `form:"amount"`
	Proposal string `form:"proposal" validate:"required"`
}

// Request validates the form and builds the place-bid body
func (f BidForm) Request() (client.PlaceBidRequest, error) {
	f.Proposal = strings.TrimSpace(f.Proposal)
	verr := &ValidationError{}
	amount, msg := parseAmount("amount", f.Amount)
	if msg != "" {
		verr.add("amount", msg)
	}
	verr.Fields = append(verr.Fields, check(f).Fields...)
	if err := verr.orNil(); err != nil {
		return client.PlaceBidRequest{}, err
	}
	return client.PlaceBidRequest{Amount: amount, Proposal: f.Proposal}, nil
}

// ProfileForm holds the edit-profile inputs
type ProfileForm struct {
	Bio    string `form:"bio" validate:"max=2000"`
	Skills string `form:"skills" validate:"max=500"`
}

// Request validates the form and builds the update-profile body.
// Skills are normalized to the server's comma-separated form.
func (f ProfileForm) Request() (client.UpdateProfileRequest, error) {
	f.Bio = strings.TrimSpace(f.Bio)
	if err := check(f).orNil(); err != nil {
		return client.UpdateProfileRequest{}, err
	}
	skills := client.Skills(ParseSkills(f.Skills)).String()
	return client.UpdateProfileRequest{Bio: &f.Bio, Skills: &skills}, nil
}

// ReviewForm holds the review inputs. Rating is raw text.
type ReviewForm struct {
	Rating  string `form:"rating" validate:"required,oneof=1 2 3 4 5"`
	Comment string `form:"comment" validate:"max=2000"`
}

// Request validates the form and builds the post-review body
func (f ReviewForm) Request() (client.PostReviewRequest, error) {
	f.Rating = strings.TrimSpace(f.Rating)
	f.Comment = strings.TrimSpace(f.Comment)
	if err := check(f).orNil(); err != nil {
		return client.PostReviewRequest{}, err
	}
	rating, _ := strconv.Atoi(f.Rating)
	return client.PostReviewRequest{Rating: rating, Comment: f.Comment}, nil
}
