package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestNewParticipant(t *testing.T) {
	p, err := NewParticipant("Ann Lee")
	if err != nil {
		t.Fatal(err)
	}
	if p.ID == "" {
		t.Fatal("expected generated ID")
	}
	if p.DisplayName != "Ann Lee" {
		t.Fatalf("display name = %q", p.DisplayName)
	}
}

func TestNewParticipantValidation(t *testing.T) {
	if _, err := NewParticipant("   "); !errors.Is(err, ErrDisplayNameEmpty) {
		t.Fatalf("err = %v, want ErrDisplayNameEmpty", err)
	}
	if _, err := NewParticipant(strings.Repeat("x", 200)); !errors.Is(err, ErrDisplayNameTooLong) {
		t.Fatalf("err = %v, want ErrDisplayNameTooLong", err)
	}
}

func TestRoleFor(t *testing.T) {
	cases := []struct {
		label string
		self  string
		want  Role
	}{
		{"Ann", "Ann", RoleSelf},
		{"ann", "Ann", RoleSelf},
		{"agent", "Ann", RoleAgent},
		{"Agent-7", "Ann", RoleAgent},
		{"system", "Ann", RoleSystem},
		{" SYSTEM ", "Ann", RoleSystem},
		{"bob", "Ann", RoleOther},
		{"", "Ann", RoleOther},
		{"Ann", "", RoleOther},
	}
	for _, tc := range cases {
		if got := RoleFor(tc.label, tc.self); got != tc.want {
			t.Errorf("RoleFor(%q, %q) = %v, want %v", tc.label, tc.self, got, tc.want)
		}
	}
}

func TestProfileFullName(t *testing.T) {
	cases := []struct {
		p    Profile
		want string
	}{
		{Profile{FirstName: "Ann", LastName: "Lee"}, "Ann Lee"},
		{Profile{FirstName: "Ann"}, "Ann"},
		{Profile{LastName: "Lee"}, "Lee"},
		{Profile{}, ""},
	}
	for _, tc := range cases {
		if got := tc.p.FullName(); got != tc.want {
			t.Errorf("FullName() = %q, want %q", got, tc.want)
		}
	}
}
