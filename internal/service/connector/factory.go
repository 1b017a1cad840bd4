// Package connector turns stored connection profiles into live transfer
// sessions and hosts the profile level tools (test, listing, key generation).
package connector

import (
	"context"
	"strings"
	"time"

	"github.com/irOkoo/exabanque-ftp-refactoring/internal/errs"
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/model"
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/transfer"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/config"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/crypto"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/logger"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/metrics"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/sshclient"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/sshkey"
)

const ftpControlPort = 21

// Opener opens a session for a profile. The caller owns the session.
type Opener interface {
	Open(ctx context.Context, profile *model.ConnectionProfile) (transfer.Session, error)
}

// DisabledAlgorithms holds the two exclusion slots of an SSH connection.
// Both are filled from the same profile entries.
type DisabledAlgorithms struct {
	HostKeys   []string
	PublicKeys []string
}

// Factory validates profiles and dials the matching session type.
type Factory struct {
	crypto   *crypto.Crypto
	transfer config.TransferConfig

	dialFTP  func(ctx context.Context, opts transfer.FTPOptions) (transfer.Session, error)
	dialSFTP func(ctx context.Context, cfg sshclient.SSHConfig, scratchDir string) (transfer.Session, error)
}

func NewFactory(c *crypto.Crypto, cfg config.TransferConfig) *Factory {
	return &Factory{
		crypto:   c,
		transfer: cfg,
		dialFTP: func(ctx context.Context, opts transfer.FTPOptions) (transfer.Session, error) {
			return transfer.DialFTP(ctx, opts)
		},
		dialSFTP: func(ctx context.Context, cfg sshclient.SSHConfig, scratchDir string) (transfer.Session, error) {
			return transfer.DialSFTP(ctx, cfg, scratchDir)
		},
	}
}

// Validate checks a profile before any connection attempt.
func (f *Factory) Validate(p *model.ConnectionProfile) error {
	switch p.Protocol {
	case model.ProtocolFTP, model.ProtocolFTPS, model.ProtocolSFTP:
	case "", model.ProtocolNone:
		return errs.Missing("protocol")
	default:
		return errs.Invalid("protocol", "unknown protocol "+string(p.Protocol))
	}

	if strings.TrimSpace(p.Host) == "" {
		return errs.Missing("host")
	}
	if p.Port == 0 {
		return errs.Missing("port")
	}
	if p.Port < 0 || p.Port > 65535 {
		return errs.Invalid("port", "out of range")
	}
	if p.Protocol == model.ProtocolSFTP && p.Port == ftpControlPort {
		return errs.Invalid("port", "21 is the FTP port")
	}
	if strings.TrimSpace(p.Login) == "" {
		return errs.Missing("login")
	}

	switch {
	case p.CredentialMode == model.CredentialPassword || p.CredentialMode == "":
		if p.Password == "" {
			return errs.Missing("password")
		}
	case p.CredentialMode.IsKey():
		if p.Protocol != model.ProtocolSFTP {
			return errs.Invalid("credential_mode", "key authentication needs sftp")
		}
		if p.PrivateKey == "" {
			return errs.Missing("private_key")
		}
	default:
		return errs.Invalid("credential_mode", "unknown mode "+string(p.CredentialMode))
	}
	return nil
}

// DisabledAlgorithmSet replicates the profile entries into both slots.
func DisabledAlgorithmSet(p *model.ConnectionProfile) DisabledAlgorithms {
	names := p.DisabledAlgorithmNames()
	return DisabledAlgorithms{
		HostKeys:   names,
		PublicKeys: append([]string(nil), names...),
	}
}

// Open validates the profile, decrypts its credentials and connects.
func (f *Factory) Open(ctx context.Context, p *model.ConnectionProfile) (transfer.Session, error) {
	if err := f.Validate(p); err != nil {
		return nil, err
	}

	var (
		session transfer.Session
		err     error
	)
	switch p.Protocol {
	case model.ProtocolFTP, model.ProtocolFTPS:
		var opts transfer.FTPOptions
		opts, err = f.FTPOptions(p)
		if err == nil {
			session, err = f.dialFTP(ctx, opts)
		}
	case model.ProtocolSFTP:
		var cfg sshclient.SSHConfig
		cfg, err = f.SSHConfig(p)
		if err == nil {
			session, err = f.dialSFTP(ctx, cfg, f.transfer.ScratchDir)
		}
	}

	metrics.ObserveSession(string(p.Protocol), err)
	if err != nil {
		logger.Warnf("[Factory] Cannot open %s session for profile %d (%s): %v", p.Protocol, p.ID, p.Address(), err)
		return nil, err
	}

	logger.Debugf("[Factory] Opened %s session for profile %d (%s)", p.Protocol, p.ID, p.Address())
	return transfer.Instrument(session), nil
}

// FTPOptions builds the FTP dial options with the password decrypted.
func (f *Factory) FTPOptions(p *model.ConnectionProfile) (transfer.FTPOptions, error) {
	password, err := f.decrypt(p.Password, model.CredentialPassword)
	if err != nil {
		return transfer.FTPOptions{}, err
	}
	return transfer.FTPOptions{
		Host:       p.Host,
		Port:       p.Port,
		Login:      p.Login,
		Password:   password,
		TLS:        p.Protocol == model.ProtocolFTPS,
		Timeout:    time.Duration(f.transfer.DialTimeout) * time.Second,
		ScratchDir: f.transfer.ScratchDir,
	}, nil
}

// SSHConfig builds the SSH client config with credentials decrypted.
func (f *Factory) SSHConfig(p *model.ConnectionProfile) (sshclient.SSHConfig, error) {
	algos := DisabledAlgorithmSet(p)
	cfg := sshclient.SSHConfig{
		Host:                        p.Host,
		Port:                        p.Port,
		Username:                    p.Login,
		DisabledHostKeyAlgorithms:   algos.HostKeys,
		DisabledPublicKeyAlgorithms: algos.PublicKeys,
		AutoAddHostKey:              p.AutoAddHostKey,
		KnownHostsFile:              f.transfer.KnownHosts,
		AllowAgent:                  p.AllowAgent,
		LookForKeys:                 p.LookForKeys,
		Timeout:                     time.Duration(f.transfer.DialTimeout) * time.Second,
		BannerTimeout:               time.Duration(f.transfer.BannerTimeout) * time.Second,
	}

	if p.CredentialMode.IsKey() {
		key, err := f.decrypt(p.PrivateKey, p.CredentialMode)
		if err != nil {
			return cfg, err
		}
		cfg.PrivateKey = key
		cfg.KeyType = keyType(p.CredentialMode)
		return cfg, nil
	}

	password, err := f.decrypt(p.Password, model.CredentialPassword)
	if err != nil {
		return cfg, err
	}
	cfg.Password = password
	return cfg, nil
}

// decrypt opens a stored credential. Without a Crypto values are used as is.
func (f *Factory) decrypt(value string, mode model.CredentialMode) (string, error) {
	if f.crypto == nil || value == "" {
		return value, nil
	}
	plain, err := f.crypto.Decrypt(value)
	if err != nil {
		return "", &errs.CredentialError{Mode: string(mode), Err: err}
	}
	return plain, nil
}

func keyType(mode model.CredentialMode) string {
	if mode == model.CredentialEd25519Key {
		return sshkey.TypeEd25519
	}
	return sshkey.TypeRSA
}
