package validators

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmailValidator(t *testing.T) {
	cases := []struct {
		email string
		want  error
	}{
		{"", ErrEmailEmpty},
		{"user@example.com", nil},
		{"User Name <user@example.com>", nil},
		{"not-an-email", ErrEmailInvalid},
		{"@example.com", ErrEmailInvalid},
	}

	for _, c := range cases {
		assert.ErrorIs(t, EmailValidator(c.email), c.want, c.email)
	}
}

func TestPasswordValidator(t *testing.T) {
	cases := []struct {
		password string
		want     error
	}{
		{"", ErrPasswordEmpty},
		{"short", ErrPasswordTooShort},
		{"just-right", nil},
		{strings.Repeat("x", 256), ErrPasswordTooLong},
	}

	for _, c := range cases {
		assert.ErrorIs(t, PasswordValidator(c.password), c.want)
	}
}
