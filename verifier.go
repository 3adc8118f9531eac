package auth

import "context"

// CredentialVerifier checks email and password pairs against the
// credential store. Every call performs exactly one password comparison;
// when no usable record exists the comparison runs against the decoy hash.
type CredentialVerifier struct {
	store     CredentialStore
	comparer  PasswordComparer
	decoyHash string
	logger    Logger
}

// NewCredentialVerifier returns a verifier backed by store.
func NewCredentialVerifier(store CredentialStore, snapshot *Snapshot) *CredentialVerifier {
	return &CredentialVerifier{
		store:     store,
		comparer:  BcryptComparer{},
		decoyHash: snapshot.DecoyHash(),
		logger:    defLogger{},
	}
}

func (v *CredentialVerifier) WithLogger(logger Logger) *CredentialVerifier {
	v.logger = normalizeLogger(logger)
	return v
}

// WithComparer replaces the bcrypt comparer.
func (v *CredentialVerifier) WithComparer(comparer PasswordComparer) *CredentialVerifier {
	if comparer != nil {
		v.comparer = comparer
	}
	return v
}

// Verify returns the candidate identity for a matching pair. Unknown email,
// missing hash, wrong password and store failures all return nil, false.
func (v *CredentialVerifier) Verify(ctx context.Context, email, password string) (*CandidateIdentity, bool) {
	users, err := v.store.LookupByEmail(ctx, email)
	if err != nil {
		v.logger.Error("credential lookup failed", "error", err)
		v.Burn(password)
		return nil, false
	}

	if len(users) == 0 || !users[0].HasPassword() {
		v.Burn(password)
		return nil, false
	}

	user := users[0]
	if !v.comparer.Compare(password, user.PasswordHash) {
		return nil, false
	}

	return NewCandidateFromUser(user), true
}

// Reject mirrors the cost of a failed Verify for a payload that did not
// pass validation: one store lookup and one decoy comparison. The lookup
// result is discarded so a malformed attempt can never match a record.
func (v *CredentialVerifier) Reject(ctx context.Context, email, password string) {
	if _, err := v.store.LookupByEmail(ctx, email); err != nil {
		v.logger.Debug("credential lookup failed on rejected attempt", "error", err)
	}
	v.Burn(password)
}

// Burn runs one comparison against the decoy hash and discards the result.
func (v *CredentialVerifier) Burn(password string) {
	_ = v.comparer.Compare(password, v.decoyHash)
}
