package auth

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Logger is the logging surface used across the package. glog.Logger
// satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() time.Duration
	GetIssuer() string
	GetAudience() []string
	GetBcryptCost() int
}

// CredentialStore is the durable user store the sign-in core reads and
// writes. Implementations must enforce email uniqueness.
type CredentialStore interface {
	// LookupByEmail returns every record stored under email, possibly none.
	LookupByEmail(ctx context.Context, email string) ([]*User, error)
	// InsertIfAbsent stores user unless a record with the same email
	// already exists. It returns the stored record and whether this call
	// created it. A lost race is not an error.
	InsertIfAbsent(ctx context.Context, user *User) (*User, bool, error)
}

// PasswordComparer checks a cleartext password against a stored hash.
type PasswordComparer interface {
	Compare(password, hash string) bool
}

// ComparerFunc adapts a function to the PasswordComparer interface.
type ComparerFunc func(password, hash string) bool

// Compare implements PasswordComparer.
func (f ComparerFunc) Compare(password, hash string) bool {
	return f(password, hash)
}

type defLogger struct{}

func (d defLogger) Error(msg string, args ...any) {
	fmt.Print("[ERR] AUTH " + render(msg, args...))
}

func (d defLogger) Warn(msg string, args ...any) {
	fmt.Print("[WRN] AUTH " + render(msg, args...))
}

func (d defLogger) Info(msg string, args ...any) {
	fmt.Print("[INF] AUTH " + render(msg, args...))
}

func (d defLogger) Debug(msg string, args ...any) {
	fmt.Print("[DBG] AUTH " + render(msg, args...))
}

func render(msg string, args ...any) string {
	var b strings.Builder
	b.WriteString(msg)
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
			continue
		}
		fmt.Fprintf(&b, " %v", args[i])
	}
	return newline(b.String())
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

func normalizeLogger(l Logger) Logger {
	if l == nil {
		return defLogger{}
	}
	return l
}

// DefaultLogger returns the stdout logger used when none is configured.
func DefaultLogger() Logger {
	return defLogger{}
}
