package sshclient

import (
	"testing"

	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/sshkey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

func TestHostKeyAlgorithmsDropsDisabled(t *testing.T) {
	algos := HostKeyAlgorithms([]string{ssh.KeyAlgoRSA, ssh.KeyAlgoRSASHA256})

	assert.NotContains(t, algos, ssh.KeyAlgoRSA)
	assert.NotContains(t, algos, ssh.KeyAlgoRSASHA256)
	assert.Contains(t, algos, ssh.KeyAlgoED25519)
}

func TestBuildClientConfigRequiresAuth(t *testing.T) {
	_, err := BuildClientConfig(SSHConfig{Host: "h", Port: 22, Username: "u", AutoAddHostKey: true})
	assert.ErrorIs(t, err, ErrNoAuthMethod)
}

func TestBuildClientConfigPassword(t *testing.T) {
	cfg, err := BuildClientConfig(SSHConfig{
		Host: "h", Port: 22, Username: "u", Password: "p",
		AutoAddHostKey:     true,
		DisabledHostKeyAlgorithms: []string{ssh.KeyAlgoRSA},
	})
	require.NoError(t, err)

	assert.Equal(t, "u", cfg.User)
	assert.Len(t, cfg.Auth, 1)
	assert.NotContains(t, cfg.HostKeyAlgorithms, ssh.KeyAlgoRSA)
}

func TestBuildClientConfigKeyMismatch(t *testing.T) {
	kp, err := sshkey.GenerateEd25519KeyPair()
	require.NoError(t, err)

	_, err = BuildClientConfig(SSHConfig{
		Host: "h", Port: 22, Username: "u",
		PrivateKey: kp.PrivateKey, KeyType: sshkey.TypeRSA,
		AutoAddHostKey: true,
	})
	assert.ErrorIs(t, err, sshkey.ErrTypeMismatch)
}

func TestRestrictSignerFiltersRSASignatures(t *testing.T) {
	kp, err := sshkey.GenerateRSAKeyPair(sshkey.RSABits)
	require.NoError(t, err)
	signer, err := sshkey.ParsePrivateKey(sshkey.TypeRSA, []byte(kp.PrivateKey))
	require.NoError(t, err)

	restricted, err := restrictSigner(signer, map[string]bool{ssh.KeyAlgoRSA: true})
	require.NoError(t, err)

	multi, ok := restricted.(ssh.MultiAlgorithmSigner)
	require.True(t, ok)
	assert.Equal(t, []string{ssh.KeyAlgoRSASHA512, ssh.KeyAlgoRSASHA256}, multi.Algorithms())
}

func TestRestrictSignerAllDisabled(t *testing.T) {
	kp, err := sshkey.GenerateEd25519KeyPair()
	require.NoError(t, err)
	signer, err := sshkey.ParsePrivateKey(sshkey.TypeEd25519, []byte(kp.PrivateKey))
	require.NoError(t, err)

	_, err = restrictSigner(signer, map[string]bool{ssh.KeyAlgoED25519: true})
	assert.Error(t, err)
}

func TestStrictHostKeyNeedsKnownHosts(t *testing.T) {
	_, err := BuildClientConfig(SSHConfig{
		Host: "h", Port: 22, Username: "u", Password: "p",
		KnownHostsFile: t.TempDir() + "/missing_known_hosts",
	})
	assert.ErrorIs(t, err, ErrKnownHosts)
}
