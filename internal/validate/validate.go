// Package validate checks form input locally, before anything is sent.
package validate

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"taskcli/internal/service"
)

// FieldError is a problem with one input field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// Errors collects every field problem of one form.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Error()
	}
	return strings.Join(parts, "; ")
}

// Kind lets callers treat Errors like other classified failures.
func (e Errors) Kind() service.Kind { return service.KindValidation }

func (e *Errors) add(field, msg string) {
	*e = append(*e, FieldError{Field: field, Message: msg})
}

func (e Errors) orNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

const (
	usernameMin    = 3
	usernameMax    = 50
	passwordMin    = 6
	titleMax       = 255
	categoryMaxLen = 100
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

func checkUsername(errs *Errors, username string) {
	n := utf8.RuneCountInString(username)
	switch {
	case strings.TrimSpace(username) == "":
		errs.add("username", "username is required")
	case n < usernameMin:
		errs.add("username", "username must be at least 3 characters")
	case n > usernameMax:
		errs.add("username", "username must be less than 50 characters")
	}
}

// Login checks the login form.
func Login(c service.Credentials) error {
	var errs Errors
	checkUsername(&errs, c.Username)
	switch {
	case c.Password == "":
		errs.add("password", "password is required")
	case utf8.RuneCountInString(c.Password) < passwordMin:
		errs.add("password", "password must be at least 6 characters")
	}
	return errs.orNil()
}

// Registration checks the sign-up form, including the confirmation field.
func Registration(c service.Credentials, confirm string) error {
	var errs Errors
	checkUsername(&errs, c.Username)
	if len(errs) == 0 && !usernamePattern.MatchString(c.Username) {
		errs.add("username", "username can only contain letters, numbers, and underscores")
	}

	switch {
	case c.Password == "":
		errs.add("password", "password is required")
	case utf8.RuneCountInString(c.Password) < passwordMin:
		errs.add("password", "password must be at least 6 characters")
	case !mixedCase(c.Password):
		errs.add("password", "password must contain at least one uppercase letter, one lowercase letter, and one number")
	}

	switch {
	case confirm == "":
		errs.add("confirm", "please confirm your password")
	case confirm != c.Password:
		errs.add("confirm", "passwords must match")
	}
	return errs.orNil()
}

func mixedCase(s string) bool {
	var lower, upper, digit bool
	for _, r := range s {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}

// Task checks a task form. A category is mandatory on the backend.
func Task(in service.TaskInput) error {
	var errs Errors
	switch {
	case strings.TrimSpace(in.Title) == "":
		errs.add("title", "title is required")
	case utf8.RuneCountInString(in.Title) > titleMax:
		errs.add("title", "title must be at most 255 characters")
	}
	if in.CategoryID <= 0 {
		errs.add("category", "category is required")
	}
	return errs.orNil()
}

// Category checks a category form.
func Category(in service.CategoryInput) error {
	var errs Errors
	switch {
	case strings.TrimSpace(in.Name) == "":
		errs.add("name", "name is required")
	case utf8.RuneCountInString(in.Name) > categoryMaxLen:
		errs.add("name", "name must be at most 100 characters")
	}
	return errs.orNil()
}
