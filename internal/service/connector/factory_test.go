package connector

import (
	"context"
	"testing"

	"github.com/irOkoo/exabanque-ftp-refactoring/internal/errs"
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/model"
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/transfer"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/config"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/crypto"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/sshclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProfile() *model.ConnectionProfile {
	return &model.ConnectionProfile{
		ID:             1,
		Protocol:       model.ProtocolSFTP,
		Host:           "sftp.bank.example",
		Port:           22,
		Login:          "exa",
		CredentialMode: model.CredentialPassword,
		Password:       "secret",
		MainPath:       "/exa",
	}
}

func TestValidate(t *testing.T) {
	f := NewFactory(nil, config.Default().Transfer)

	tests := []struct {
		name   string
		mutate func(p *model.ConnectionProfile)
		field  string
	}{
		{"valid", func(p *model.ConnectionProfile) {}, ""},
		{"protocol none", func(p *model.ConnectionProfile) { p.Protocol = model.ProtocolNone }, "protocol"},
		{"protocol empty", func(p *model.ConnectionProfile) { p.Protocol = "" }, "protocol"},
		{"protocol unknown", func(p *model.ConnectionProfile) { p.Protocol = "scp" }, "protocol"},
		{"host", func(p *model.ConnectionProfile) { p.Host = " " }, "host"},
		{"port", func(p *model.ConnectionProfile) { p.Port = 0 }, "port"},
		{"sftp on 21", func(p *model.ConnectionProfile) { p.Port = 21 }, "port"},
		{"login", func(p *model.ConnectionProfile) { p.Login = "" }, "login"},
		{"password", func(p *model.ConnectionProfile) { p.Password = "" }, "password"},
		{"rsa without key", func(p *model.ConnectionProfile) { p.CredentialMode = model.CredentialRSAKey }, "private_key"},
		{"key over ftp", func(p *model.ConnectionProfile) {
			p.Protocol = model.ProtocolFTP
			p.Port = 21
			p.CredentialMode = model.CredentialEd25519Key
			p.PrivateKey = "k"
		}, "credential_mode"},
		{"ftp on 21", func(p *model.ConnectionProfile) { p.Protocol = model.ProtocolFTP; p.Port = 21 }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProfile()
			tt.mutate(p)

			err := f.Validate(p)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errs.IsConfiguration(err))
			assert.Equal(t, tt.field, err.(*errs.ConfigurationError).Field)
		})
	}
}

func TestOpenNeverDialsInvalidProfile(t *testing.T) {
	f := NewFactory(nil, config.Default().Transfer)
	dialed := false
	f.dialSFTP = func(context.Context, sshclient.SSHConfig, string) (transfer.Session, error) {
		dialed = true
		return nil, nil
	}

	p := validProfile()
	p.Login = ""
	_, err := f.Open(context.Background(), p)

	assert.True(t, errs.IsConfiguration(err))
	assert.False(t, dialed)
}

func TestDisabledAlgorithmsFillBothSlots(t *testing.T) {
	p := validProfile()
	p.DisabledAlgorithms = []model.DisabledAlgorithm{{Name: "ssh-rsa"}, {Name: "ssh-dss"}}

	set := DisabledAlgorithmSet(p)
	assert.Equal(t, []string{"ssh-rsa", "ssh-dss"}, set.HostKeys)
	assert.Equal(t, set.HostKeys, set.PublicKeys)

	assert.Empty(t, DisabledAlgorithmSet(validProfile()).HostKeys)
}

func TestOpenSFTPDecryptsAndPassesSettings(t *testing.T) {
	c := crypto.NewCrypto("test-key")
	sealed, err := c.Encrypt("secret")
	require.NoError(t, err)

	cfg := config.Default().Transfer
	cfg.ScratchDir = "/var/tmp/exa"
	f := NewFactory(c, cfg)

	var got sshclient.SSHConfig
	var gotScratch string
	mem := transfer.NewMemorySession(model.ProtocolSFTP)
	f.dialSFTP = func(_ context.Context, cfg sshclient.SSHConfig, scratch string) (transfer.Session, error) {
		got, gotScratch = cfg, scratch
		return mem, nil
	}

	p := validProfile()
	p.Password = sealed
	p.AutoAddHostKey = true
	p.DisabledAlgorithms = []model.DisabledAlgorithm{{Name: "ssh-rsa"}}

	s, err := f.Open(context.Background(), p)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "secret", got.Password)
	assert.Equal(t, "exa", got.Username)
	assert.True(t, got.AutoAddHostKey)
	assert.Equal(t, []string{"ssh-rsa"}, got.DisabledHostKeyAlgorithms)
	assert.Equal(t, []string{"ssh-rsa"}, got.DisabledPublicKeyAlgorithms)
	assert.Equal(t, "/var/tmp/exa", gotScratch)
	assert.Equal(t, model.ProtocolSFTP, s.Protocol())
}

func TestOpenWithUndecryptableCredential(t *testing.T) {
	f := NewFactory(crypto.NewCrypto("k"), config.Default().Transfer)

	p := validProfile()
	p.Password = "not-sealed"
	_, err := f.Open(context.Background(), p)

	assert.True(t, errs.IsCredential(err))
}

func TestOpenFTPS(t *testing.T) {
	f := NewFactory(nil, config.Default().Transfer)

	var got transfer.FTPOptions
	f.dialFTP = func(_ context.Context, opts transfer.FTPOptions) (transfer.Session, error) {
		got = opts
		return transfer.NewMemorySession(model.ProtocolFTPS), nil
	}

	p := validProfile()
	p.Protocol = model.ProtocolFTPS
	p.Port = 21
	s, err := f.Open(context.Background(), p)
	require.NoError(t, err)
	defer s.Close()

	assert.True(t, got.TLS)
	assert.Equal(t, "secret", got.Password)
	assert.Equal(t, 21, got.Port)
}
