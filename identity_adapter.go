package auth

// CandidateIdentity is what a provider adapter resolves from a sign-in
// attempt. ID is empty for federated identities until the durable record
// is looked up at mint time.
type CandidateIdentity struct {
	ID          string
	Email       string
	Name        string
	Image       string
	Provider    ProviderTag
	ExternalID  string
	AccountType AccountType
}

// Federated reports whether the identity came from an external provider.
func (c *CandidateIdentity) Federated() bool {
	return c != nil && c.Provider.Federated()
}

// NewCandidateFromUser builds a password-path candidate from a stored record.
func NewCandidateFromUser(user *User) *CandidateIdentity {
	if user == nil {
		return nil
	}
	return &CandidateIdentity{
		ID:          user.ID.String(),
		Email:       user.Email,
		Name:        user.Name,
		Image:       user.Image,
		Provider:    ProviderCredentials,
		AccountType: AccountTypeRegular,
	}
}
