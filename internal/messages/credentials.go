package messages

// Credential provisioning messages.
const (
	// CredentialsMissing is the error text when username or password is absent.
	CredentialsMissing      = "username and password are required to set credentials"
	CredentialsSetFailedFmt = "set password for %s: %w"
	CredentialsInvalid      = "usernames must not contain ':' or newlines and passwords must not contain newlines"
)
