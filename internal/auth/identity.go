package auth

// ExternalIdentity represents the caller's identity as asserted by the
// external identity provider's session.
type ExternalIdentity struct {
	ExternalUserID string
	SessionID      string
	Email          string
	Name           *string
	AvatarURL      *string
}
