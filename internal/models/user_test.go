package models

import "testing"

// TestUserDisplayName verifies the name shown for an author falls back to
// the username when no personal name is set.
func TestUserDisplayName(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{name: "full name", user: User{Username: "ada", FirstName: "Ada", LastName: "Lovelace"}, want: "Ada Lovelace"},
		{name: "first name only", user: User{Username: "ada", FirstName: "Ada"}, want: "Ada"},
		{name: "last name only", user: User{Username: "ada", LastName: "Lovelace"}, want: "Lovelace"},
		{name: "no name", user: User{Username: "ada"}, want: "ada"},
		{name: "whitespace name", user: User{Username: "ada", FirstName: " ", LastName: " "}, want: "ada"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}
