package identity

// TransferAuthority is the identity under which a token debit is authorized.
// The two implementations distinguish, at the type level, debits signed by a
// user from debits issued by protocol logic on behalf of a custody account, so
// a user-supplied signer can never stand in for a vault.
type TransferAuthority interface {
	AuthorityID() Identity
	sealedAuthority()
}

// UserOwned authorizes a debit with an external signer's identity.
type UserOwned struct {
	Signer Identity
}

// AuthorityID returns the signer identity.
func (a UserOwned) AuthorityID() Identity { return a.Signer }

func (UserOwned) sealedAuthority() {}

// ProtocolOwned authorizes a debit with a derived custody address. Only code
// that knows the address derivation can construct one, which is what makes a
// self-owned vault spendable by the protocol and by nothing else.
type ProtocolOwned struct {
	Address Identity
}

// AuthorityID returns the custody address.
func (a ProtocolOwned) AuthorityID() Identity { return a.Address }

func (ProtocolOwned) sealedAuthority() {}
