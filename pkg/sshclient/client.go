package sshclient

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/logger"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/sshkey"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// ErrNoAuthMethod is returned when no credential could be turned into an
// SSH auth method.
var ErrNoAuthMethod = errors.New("no authentication method provided")

// ErrKnownHosts is returned when strict host key checking has no usable
// known_hosts file.
var ErrKnownHosts = errors.New("known_hosts unavailable")

type SSHClient struct {
	client *ssh.Client
	addr   string
}

type SSHConfig struct {
	Host     string
	Port     int
	Username string
	Password string

	PrivateKey string // PEM, empty for password auth
	KeyType    string // sshkey.TypeRSA / sshkey.TypeEd25519

	// DisabledHostKeyAlgorithms are removed from the host key algorithms we
	// accept, DisabledPublicKeyAlgorithms from the signature algorithms we
	// offer when authenticating with a key.
	DisabledHostKeyAlgorithms   []string
	DisabledPublicKeyAlgorithms []string

	AutoAddHostKey bool
	KnownHostsFile string // defaults to ~/.ssh/known_hosts
	AllowAgent     bool
	LookForKeys    bool

	Timeout       time.Duration // TCP connect
	BannerTimeout time.Duration // SSH handshake
}

func (c SSHConfig) addr() string {
	return net.JoinHostPort(c.Host, fmt.Sprintf("%d", c.Port))
}

// NewSSHClient dials and authenticates. The TCP connect is bounded by
// Timeout and the handshake by BannerTimeout.
func NewSSHClient(ctx context.Context, cfg SSHConfig) (*SSHClient, error) {
	clientConfig, err := BuildClientConfig(cfg)
	if err != nil {
		return nil, err
	}
	return Dial(ctx, cfg, clientConfig)
}

// Dial connects with a prebuilt client config.
func Dial(ctx context.Context, cfg SSHConfig, clientConfig *ssh.ClientConfig) (*SSHClient, error) {
	addr := cfg.addr()
	logger.Debugf("[SSHClient] Dialing %s as user '%s', timeout: %v", addr, cfg.Username, cfg.Timeout)

	dialer := net.Dialer{Timeout: cfg.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}

	if cfg.BannerTimeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(cfg.BannerTimeout))
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, clientConfig)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ssh handshake with %s as %s: %w", addr, cfg.Username, err)
	}
	_ = conn.SetDeadline(time.Time{})

	logger.Debugf("[SSHClient] Connected to %s as user '%s'", addr, cfg.Username)
	return &SSHClient{client: ssh.NewClient(sshConn, chans, reqs), addr: addr}, nil
}

// BuildClientConfig assembles auth methods, host key policy and algorithm
// restrictions without touching the network.
func BuildClientConfig(cfg SSHConfig) (*ssh.ClientConfig, error) {
	disabled := make(map[string]bool, len(cfg.DisabledPublicKeyAlgorithms))
	for _, name := range cfg.DisabledPublicKeyAlgorithms {
		disabled[strings.TrimSpace(name)] = true
	}

	var authMethods []ssh.AuthMethod

	if cfg.PrivateKey != "" {
		signer, err := sshkey.ParsePrivateKey(cfg.KeyType, []byte(cfg.PrivateKey))
		if err != nil {
			return nil, err
		}
		signer, err = restrictSigner(signer, disabled)
		if err != nil {
			return nil, err
		}
		authMethods = append(authMethods, ssh.PublicKeys(signer))
	}

	if cfg.AllowAgent {
		if method := agentAuth(disabled); method != nil {
			authMethods = append(authMethods, method)
		}
	}

	if cfg.LookForKeys {
		if signers := localKeySigners(disabled); len(signers) > 0 {
			authMethods = append(authMethods, ssh.PublicKeys(signers...))
		}
	}

	if cfg.Password != "" {
		authMethods = append(authMethods, ssh.Password(cfg.Password))
	}

	if len(authMethods) == 0 {
		return nil, ErrNoAuthMethod
	}

	hostKeyCallback, err := hostKeyCallback(cfg)
	if err != nil {
		return nil, err
	}

	return &ssh.ClientConfig{
		User:              cfg.Username,
		Auth:              authMethods,
		HostKeyCallback:   hostKeyCallback,
		HostKeyAlgorithms: HostKeyAlgorithms(cfg.DisabledHostKeyAlgorithms),
		Timeout:           cfg.Timeout,
	}, nil
}

// HostKeyAlgorithms returns the supported host key algorithms minus the
// disabled ones.
func HostKeyAlgorithms(disabledNames []string) []string {
	disabled := make(map[string]bool, len(disabledNames))
	for _, name := range disabledNames {
		disabled[strings.TrimSpace(name)] = true
	}
	return without(ssh.SupportedAlgorithms().HostKeys, disabled)
}

// signatureAlgorithms lists what a key of the given format can sign with.
func signatureAlgorithms(keyFormat string) []string {
	if keyFormat == ssh.KeyAlgoRSA {
		return []string{ssh.KeyAlgoRSASHA512, ssh.KeyAlgoRSASHA256, ssh.KeyAlgoRSA}
	}
	return []string{keyFormat}
}

// restrictSigner drops disabled signature algorithms from signer.
func restrictSigner(signer ssh.Signer, disabled map[string]bool) (ssh.Signer, error) {
	keyFormat := signer.PublicKey().Type()
	all := signatureAlgorithms(keyFormat)
	allowed := without(all, disabled)
	if len(allowed) == 0 {
		return nil, fmt.Errorf("every signature algorithm for %s is disabled", keyFormat)
	}
	if len(allowed) == len(all) {
		return signer, nil
	}

	algSigner, ok := signer.(ssh.AlgorithmSigner)
	if !ok {
		return nil, fmt.Errorf("key %s cannot restrict signature algorithms", keyFormat)
	}
	return ssh.NewSignerWithAlgorithms(algSigner, allowed)
}

func restrictSigners(signers []ssh.Signer, disabled map[string]bool) []ssh.Signer {
	out := make([]ssh.Signer, 0, len(signers))
	for _, s := range signers {
		restricted, err := restrictSigner(s, disabled)
		if err != nil {
			logger.Debugf("[SSHClient] Skipping key %s: %v", s.PublicKey().Type(), err)
			continue
		}
		out = append(out, restricted)
	}
	return out
}

func agentAuth(disabled map[string]bool) ssh.AuthMethod {
	sock := os.Getenv("SSH_AUTH_SOCK")
	if sock == "" {
		return nil
	}
	return ssh.PublicKeysCallback(func() ([]ssh.Signer, error) {
		conn, err := net.Dial("unix", sock)
		if err != nil {
			return nil, err
		}
		signers, err := agent.NewClient(conn).Signers()
		if err != nil {
			return nil, err
		}
		return restrictSigners(signers, disabled), nil
	})
}

// localKeySigners loads unencrypted default keys from ~/.ssh.
func localKeySigners(disabled map[string]bool) []ssh.Signer {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	var signers []ssh.Signer
	for _, name := range []string{"id_rsa", "id_ed25519"} {
		data, err := os.ReadFile(filepath.Join(home, ".ssh", name))
		if err != nil {
			continue
		}
		signer, err := ssh.ParsePrivateKey(data)
		if err != nil {
			logger.Debugf("[SSHClient] Ignoring ~/.ssh/%s: %v", name, err)
			continue
		}
		signers = append(signers, signer)
	}
	return restrictSigners(signers, disabled)
}

func hostKeyCallback(cfg SSHConfig) (ssh.HostKeyCallback, error) {
	if cfg.AutoAddHostKey {
		return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
			logger.Infof("[SSHClient] Accepting host key %s %s for %s", key.Type(), ssh.FingerprintSHA256(key), hostname)
			return nil
		}, nil
	}

	file := cfg.KnownHostsFile
	if file == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrKnownHosts, err)
		}
		file = filepath.Join(home, ".ssh", "known_hosts")
	}

	callback, err := knownhosts.New(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrKnownHosts, file, err)
	}
	return callback, nil
}

func without(names []string, disabled map[string]bool) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if !disabled[name] {
			out = append(out, name)
		}
	}
	return out
}

func (c *SSHClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func (c *SSHClient) Client() *ssh.Client {
	return c.client
}

func (c *SSHClient) Addr() string {
	return c.addr
}
