// Package validation checks user input before it reaches the store.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Limits on the profile completion form.
const (
	MaxUsernameLength = 30
	MaxInterests      = 25
	MaxInterestLength = 40
)

// MsgUsernameTaken is reported when another profile already uses the username.
const MsgUsernameTaken = "Username is already taken"

var usernameRegex = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	if err := v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRegex.MatchString(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("validation: register username rule: %v", err))
	}
	return v
}

// ProfileForm is the input of the profile completion form and of PUT /api/profile/me.
// The max values in the tags must match MaxUsernameLength, MaxInterests and
// MaxInterestLength.
type ProfileForm struct {
	Username  string   `json:"username" validate:"required,max=30,username"`
	Country   string   `json:"country" validate:"required,max=64"`
	Interests []string `json:"interests" validate:"min=1,max=25,dive,required,max=40"`
}

// Normalize trims every field in place.
func (f *ProfileForm) Normalize() {
	f.Username = strings.TrimSpace(f.Username)
	f.Country = strings.TrimSpace(f.Country)
	for i, l := range f.Interests {
		f.Interests[i] = strings.TrimSpace(l)
	}
}

// Errors maps form field names to a message for the user.
type Errors map[string]string

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, e[f])
	}
	return strings.Join(msgs, "; ")
}

// ValidateProfile normalizes and validates f. It returns nil or an Errors value.
func ValidateProfile(f *ProfileForm) error {
	f.Normalize()
	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := Errors{}
	for _, fe := range verrs {
		field := fe.Field()
		if strings.HasPrefix(field, "interests[") {
			field = "interests"
		}
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = message(field, fe)
	}
	return out
}

func message(field string, fe validator.FieldError) string {
	switch field {
	case "username":
		switch fe.Tag() {
		case "required":
			return "Username is required"
		case "max":
			return fmt.Sprintf("Username must be at most %d characters", MaxUsernameLength)
		default:
			return "Username may only use letters, digits, dots, dashes and underscores"
		}
	case "country":
		if fe.Tag() == "required" {
			return "Country is required"
		}
		return "Country is too long"
	case "interests":
		switch {
		case fe.Field() == "interests" && fe.Tag() == "min":
			return "Pick at least one interest"
		case fe.Field() == "interests" && fe.Tag() == "max":
			return fmt.Sprintf("Pick at most %d interests", MaxInterests)
		case fe.Tag() == "required":
			return "Interests cannot be blank"
		default:
			return fmt.Sprintf("Each interest must be at most %d characters", MaxInterestLength)
		}
	}
	return fmt.Sprintf("%s is invalid", field)
}
