package canaima

import (
	"testing"

	"github.com/go-test/deep"
	"github.com/pkg/errors"
)

func testProfile() UserProfile {
	return UserProfile{
		Name:      "maria",
		FullName:  "María Rodríguez",
		Telephone: " +58 414-1234567 ",
		Address:   "Puerto Ordaz",
		Email:     " Maria@Canaima.TEST",
	}
}

func TestProfileValidate(t *testing.T) {
	p := testProfile()

	if err := p.Validate(); err != nil {
		t.Fatal("Unexpected error:", err)
	}

	if p.Email != "maria@canaima.test" {
		t.Fatal("Email not normalized:", p.Email)
	}
	if p.Telephone != "+58 414-1234567" {
		t.Fatal("Telephone not trimmed:", p.Telephone)
	}

	var tests = []struct {
		name   string
		modify func(*UserProfile)
		err    error
	}{
		{"bad email", func(p *UserProfile) { p.Email = "María <maria@canaima.test>" }, ErrInvalidEmail},
		{"bad telephone", func(p *UserProfile) { p.Telephone = "0414-CAFE" }, ErrInvalidTelephone},
		{"missing address", func(p *UserProfile) { p.Address = "" }, ErrMissingField{"address"}},
		{"long name", func(p *UserProfile) { p.Name = "abcdefghijklmnopqrstuvwxyzabcde" }, ErrFieldTooLong{"name", MaxNameLen}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			p := testProfile()
			test.modify(&p)

			if err := p.Validate(); !errors.Is(err, test.err) {
				t.Fatal("Unexpected error:", err)
			}
		})
	}
}

func TestUserPatch(t *testing.T) {
	var u = UserPart{
		ID:        1,
		Name:      "maria",
		FullName:  "María Rodríguez",
		Telephone: "+58 414-1234567",
		Address:   "Puerto Ordaz",
		Email:     "maria@canaima.test",
	}

	if !(UserPatch{}).IsEmpty() {
		t.Fatal("Zero patch is not empty")
	}

	address := "San Félix"
	email := "MARIA2@canaima.test"

	patch := UserPatch{Address: &address, Email: &email}
	if patch.IsEmpty() {
		t.Fatal("Patch is empty")
	}

	if err := patch.Apply(&u); err != nil {
		t.Fatal("Failed to apply:", err)
	}

	var expect = UserPart{
		ID:        1,
		Name:      "maria",
		FullName:  "María Rodríguez",
		Telephone: "+58 414-1234567",
		Address:   "San Félix",
		Email:     "maria2@canaima.test",
	}

	if diff := deep.Equal(expect, u); diff != nil {
		t.Fatal("Patched user mismatch:", diff)
	}

	bad := "nope"
	if err := (UserPatch{Email: &bad}).Apply(&u); !errors.Is(err, ErrInvalidEmail) {
		t.Fatal("Unexpected error:", err)
	}

	// A failed patch leaves the user untouched.
	if diff := deep.Equal(expect, u); diff != nil {
		t.Fatal("Failed patch changed the user:", diff)
	}
}

func TestTelephoneAllowed(t *testing.T) {
	var tests = map[string]bool{
		"+58 412-0000000": true,
		"04120000000":     true,
		"+":               false,
		"":                false,
		"0412 000 00 0x":  false,
		"58+412":          false,
	}

	for tel, ok := range tests {
		if TelephoneAllowed(tel) != ok {
			t.Errorf("TelephoneAllowed(%q) != %v", tel, ok)
		}
	}
}
