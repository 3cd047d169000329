package identity

import (
	"errors"
	"testing"
)

func TestParseRoundTrip(t *testing.T) {
	id := Random()

	parsed, err := Parse(id.String())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if parsed != id {
		t.Fatalf("expected %s, got %s", id, parsed)
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	if _, err := Parse("not-hex"); !errors.Is(err, ErrInvalidIdentity) {
		t.Fatalf("expected invalid identity, got %v", err)
	}
	if _, err := Parse("abcd"); !errors.Is(err, ErrInvalidIdentity) {
		t.Fatalf("expected invalid identity for short input, got %v", err)
	}
}

func TestRequire(t *testing.T) {
	admin := Random()

	if err := Require(admin, admin); err != nil {
		t.Fatalf("matching identities should authorize: %v", err)
	}
	if err := Require(Random(), admin); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestTransferAuthorityIdentities(t *testing.T) {
	user := Random()
	vault := Random()

	var a TransferAuthority = UserOwned{Signer: user}
	if a.AuthorityID() != user {
		t.Fatalf("user authority should expose the signer")
	}
	a = ProtocolOwned{Address: vault}
	if a.AuthorityID() != vault {
		t.Fatalf("protocol authority should expose the custody address")
	}
}
