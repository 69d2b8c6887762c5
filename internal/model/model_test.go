package model

import (
	"errors"
	"testing"

	"github.com/five82/circle/internal/apperr"
	"github.com/five82/circle/internal/rows"
)

func TestValidSlug(t *testing.T) {
	tests := []struct {
		slug string
		want bool
	}{
		{"jazz-club", true},
		{"a1", true},
		{"Jazz", false},
		{"jazz club", false},
		{"-jazz", false},
		{"jazz--club", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ValidSlug(tt.slug); got != tt.want {
			t.Errorf("ValidSlug(%q) = %v, want %v", tt.slug, got, tt.want)
		}
	}
}

func TestMembership_NormalizeRole(t *testing.T) {
	m := Membership{CommunityID: "c1", UserID: "u1", Role: RoleMember}
	if got := m.NormalizeRole("u1").Role; got != RoleOwner {
		t.Fatalf("owner role = %q, want owner", got)
	}
	if got := m.NormalizeRole("u2").Role; got != RoleMember {
		t.Fatalf("non-owner role = %q, want member", got)
	}
	if got := m.NormalizeRole("").Role; got != RoleMember {
		t.Fatalf("unknown owner role = %q, want member", got)
	}
}

func TestMembershipFromRow(t *testing.T) {
	m, err := MembershipFromRow(rows.Row{"community_id": "c1", "user_id": "u1", "status": "joined"})
	if err != nil {
		t.Fatalf("MembershipFromRow returned error: %v", err)
	}
	if m.Key() != "c1/u1" || m.Role != RoleMember || m.Status != StatusJoined {
		t.Fatalf("membership = %#v, want c1/u1 member joined", m)
	}

	bad := []rows.Row{
		{"user_id": "u1", "status": "joined"},
		{"community_id": "c1", "user_id": "u1", "status": "pending"},
		{"community_id": "c1", "user_id": "u1", "status": "joined", "role": "root"},
	}
	for _, r := range bad {
		if _, err := MembershipFromRow(r); !errors.Is(err, apperr.ErrShape) {
			t.Errorf("MembershipFromRow(%v) error = %v, want ErrShape", r, err)
		}
	}
}

func TestCommunityFromRow(t *testing.T) {
	c, err := CommunityFromRow(rows.Row{"community_id": "c1", "slug": "jazz", "name": "Jazz", "description": nil, "public": true})
	if err != nil {
		t.Fatalf("CommunityFromRow returned error: %v", err)
	}
	if c.Description != nil || !c.Public || c.Name != "Jazz" {
		t.Fatalf("community = %#v", c)
	}
	if _, err := CommunityFromRow(rows.Row{"community_id": "c1"}); !errors.Is(err, apperr.ErrShape) {
		t.Fatalf("missing slug error = %v, want ErrShape", err)
	}
}

func TestPlaceholderInvitation(t *testing.T) {
	inv := PlaceholderInvitation(InvitationEvent, "e9")
	if inv.Name != "e9" || inv.Slug != "e9" || !inv.IsPlaceholder() {
		t.Fatalf("placeholder = %#v, want id in name and slug", inv)
	}
	inv.Name = "Gig"
	if inv.IsPlaceholder() {
		t.Fatalf("IsPlaceholder = true after name refined")
	}
}
