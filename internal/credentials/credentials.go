// Package credentials sets account passwords inside the installed system.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/snowfallorg/icicle/internal/gateway"
	"github.com/snowfallorg/icicle/internal/logging"
	"github.com/snowfallorg/icicle/internal/messages"
)

// RootUser is the account name the root password is set for.
const RootUser = "root"

var (
	// ErrMissingCredentials is returned when username or password is empty.
	ErrMissingCredentials = errors.New(messages.CredentialsMissing)
	// ErrInvalidCredentials is returned for values chpasswd would misparse.
	ErrInvalidCredentials = errors.New(messages.CredentialsInvalid)
)

// Credentials are the passwords retained from an install request.
type Credentials struct {
	Username     string
	Password     string
	RootPassword string
}

func (c Credentials) String() string {
	return "user=" + c.Username
}

// Provisioner runs chpasswd inside the installed root.
type Provisioner struct {
	Gateway gateway.Gateway
	// Root is the mount point of the installed system.
	Root   string
	Logger logrus.FieldLogger
}

// Provision sets the user's password and then, when one was supplied, the
// root password. The password lines are piped to chpasswd and never logged.
func (p *Provisioner) Provision(ctx context.Context, creds Credentials) error {
	if creds.Username == "" || creds.Password == "" {
		return ErrMissingCredentials
	}
	if strings.ContainsAny(creds.Username, ":\n") {
		return ErrInvalidCredentials
	}
	if err := p.set(ctx, creds.Username, creds.Password); err != nil {
		return err
	}
	if creds.RootPassword != "" {
		return p.set(ctx, RootUser, creds.RootPassword)
	}
	return nil
}

func (p *Provisioner) set(ctx context.Context, name string, password string) error {
	if strings.Contains(password, "\n") {
		return ErrInvalidCredentials
	}
	c := gateway.Privileged("nixos-enter", "--root", p.Root, "-c", "chpasswd")
	if err := p.Gateway.Stream(ctx, c, []byte(name+":"+password), nil); err != nil {
		return fmt.Errorf(messages.CredentialsSetFailedFmt, name, err)
	}
	logging.FromContext(ctx, p.Logger).WithField("account", name).Info("password set")
	return nil
}
