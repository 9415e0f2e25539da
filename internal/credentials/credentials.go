// Package credentials stores forge credentials per hostname.
//
// A host has either a token or an auth command, never both. Tokens are
// kept in the OS credential store through go-keyring; auth commands, and
// the list of hosts that have a token, are kept in the git-lab config file.
package credentials

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/zalando/go-keyring"

	"lab/internal/config"
	laberrors "lab/internal/errors"
	"lab/internal/logging"
)

// Service is the keyring service name tokens are stored under.
const Service = "git-lab"

// Credential is what is stored for one host.
type Credential struct {
	Token   string
	Command string
}

// IsCommand reports whether the credential is produced by an auth command.
func (c Credential) IsCommand() bool {
	return c.Command != ""
}

// Secret returns the token. For command credentials the command is run
// through sh and its trimmed standard output is the token.
func (c Credential) Secret(ctx context.Context) (string, error) {
	const op laberrors.Op = "credentials.Secret"

	if !c.IsCommand() {
		return c.Token, nil
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "sh", "-c", c.Command)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", laberrors.E(op, laberrors.KindCredentialMissing,
			fmt.Sprintf("auth command %q failed: %s", c.Command, msg), err)
	}

	token := strings.TrimSpace(stdout.String())
	if token == "" {
		return "", laberrors.E(op, laberrors.KindCredentialMissing,
			fmt.Sprintf("auth command %q printed no token", c.Command))
	}
	return token, nil
}

// Store looks up and persists credentials.
type Store struct {
	service string
	cfg     *config.Config
	logger  *logging.AppLogger
}

// Open loads the git-lab config and returns a Store backed by it and the
// OS keyring.
func Open(logger *logging.AppLogger) (*Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return New(cfg, Service, logger), nil
}

// New returns a Store using cfg for auth commands and the given keyring
// service for tokens.
func New(cfg *config.Config, service string, logger *logging.AppLogger) *Store {
	return &Store{service: service, cfg: cfg, logger: logger}
}

// Token returns the credential stored for host. The boolean is false when
// nothing usable is stored.
func (s *Store) Token(host string) (Credential, bool, error) {
	const op laberrors.Op = "credentials.Token"

	if inst, ok := s.cfg.Instance(host); ok && inst.AuthCommand != "" {
		s.debug("Using auth command", "host", host)
		return Credential{Command: inst.AuthCommand}, true, nil
	}

	token, err := keyring.Get(s.service, host)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return Credential{}, false, nil
		}
		return Credential{}, false, laberrors.E(op, laberrors.KindCredentialMissing,
			"failed to retrieve token from credential store", err)
	}
	if strings.TrimSpace(token) == "" {
		return Credential{}, false, nil
	}

	s.debug("Using stored token", "host", host)
	return Credential{Token: token}, true, nil
}

// SetToken stores token for host and drops any auth command for it.
// Call Save to persist the host list.
func (s *Store) SetToken(host, token string) error {
	const op laberrors.Op = "credentials.SetToken"

	if err := validateHost(host); err != nil {
		return err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return laberrors.E(op, laberrors.KindInvalid, "token cannot be empty")
	}
	if strings.ContainsAny(token, " \t\n") {
		return laberrors.E(op, laberrors.KindInvalid, "token must not contain whitespace")
	}

	if err := keyring.Set(s.service, host, token); err != nil {
		return laberrors.E(op, laberrors.KindIO, "failed to store token in credential store", err)
	}
	s.cfg.SetInstance(host, config.Instance{HasToken: true})
	s.debug("Stored token", "host", host)
	return nil
}

// SetAuthCommand stores command for host and deletes any token for it.
// Call Save to persist it.
func (s *Store) SetAuthCommand(host, command string) error {
	const op laberrors.Op = "credentials.SetAuthCommand"

	if err := validateHost(host); err != nil {
		return err
	}
	command = strings.TrimSpace(command)
	if command == "" {
		return laberrors.E(op, laberrors.KindInvalid, "auth command cannot be empty")
	}

	if err := s.deleteToken(host); err != nil {
		return laberrors.E(op, laberrors.KindIO, "failed to delete token from credential store", err)
	}
	s.cfg.SetInstance(host, config.Instance{AuthCommand: command})
	s.debug("Stored auth command", "host", host)
	return nil
}

// Delete forgets everything stored for host. Call Save to persist it.
func (s *Store) Delete(host string) error {
	if err := s.deleteToken(host); err != nil {
		return laberrors.E(laberrors.Op("credentials.Delete"), laberrors.KindIO,
			"failed to delete token from credential store", err)
	}
	s.cfg.RemoveInstance(host)
	return nil
}

// Hosts returns every host with a stored credential.
func (s *Store) Hosts() []string {
	return s.cfg.Hosts()
}

// Save writes the config file.
func (s *Store) Save() error {
	return s.cfg.Save()
}

// CheckKeyring verifies the OS credential store can hold a secret by
// writing, reading back and deleting a probe entry.
func (s *Store) CheckKeyring() error {
	const (
		op        laberrors.Op = "credentials.CheckKeyring"
		probeKey               = "git-lab-probe"
		probeData              = "probe"
	)

	if err := keyring.Set(s.service, probeKey, probeData); err != nil {
		return laberrors.E(op, laberrors.KindIO, "credential store is not available", err)
	}
	defer keyring.Delete(s.service, probeKey)

	got, err := keyring.Get(s.service, probeKey)
	if err != nil {
		return laberrors.E(op, laberrors.KindIO, "credential store is not available", err)
	}
	if got != probeData {
		return laberrors.E(op, laberrors.KindIO, "credential store corrupted - values don't match")
	}
	return nil
}

func (s *Store) deleteToken(host string) error {
	err := keyring.Delete(s.service, host)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}

func (s *Store) debug(msg string, keyvals ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, keyvals...)
	}
}

func validateHost(host string) error {
	if strings.TrimSpace(host) == "" || strings.ContainsAny(host, "/ ") {
		return laberrors.E(laberrors.Op("credentials.validateHost"), laberrors.KindInvalid,
			fmt.Sprintf("invalid hostname %q", host))
	}
	return nil
}
