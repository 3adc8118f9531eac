// Package auth is the sign-in core of the chat application: it verifies
// email and password credentials, provisions users arriving from federated
// providers, mints signed session tokens and projects them into the session
// view the rest of the application reads.
//
// Sign-in flow:
//   - A SignInAttempt is either a PasswordAttempt or a FederatedAttempt. It is
//     normalized and validated before any adapter sees it.
//   - PasswordAdapter delegates to CredentialVerifier, which always performs
//     exactly one bcrypt comparison, against a decoy hash when there is no
//     usable record, so unknown emails cost the same as wrong passwords.
//   - Federated identities go through IdentityProvisioner, an idempotent
//     insert-if-absent keyed by email, before any token is minted.
//   - TokenEnricher mints claims with the durable user id and classification.
//     Federated sign-ins re-resolve the id by email and fail closed when no
//     record exists.
//
// Sessions:
//   - Tokens are HS256 JWTs. GetSession validates the token, carries the
//     claims forward without touching the store and projects them with
//     Project.
//
// Activity sinks:
//   - ActivitySink receives sign-in, provisioning and session events. Sinks
//     run best-effort (errors are logged).
package auth
