package transfer

import (
	"context"
	"errors"
	"io"
	"os"
	"path"

	"github.com/irOkoo/exabanque-ftp-refactoring/internal/errs"
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/model"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/logger"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/sshclient"
	"github.com/pkg/sftp"
)

// SFTPSession is a Session over github.com/pkg/sftp.
type SFTPSession struct {
	ssh        *sshclient.SSHClient
	client     *sftp.Client
	scratchDir string
}

// DialSFTP connects, authenticates and opens the sftp subsystem.
// Credential problems are reported before any network traffic.
func DialSFTP(ctx context.Context, cfg sshclient.SSHConfig, scratchDir string) (*SFTPSession, error) {
	clientConfig, err := sshclient.BuildClientConfig(cfg)
	if err != nil {
		if errors.Is(err, sshclient.ErrKnownHosts) {
			return nil, errs.Invalid("known_hosts", err.Error())
		}
		mode := cfg.KeyType
		if mode == "" {
			mode = string(model.CredentialPassword)
		}
		return nil, &errs.CredentialError{Mode: mode, Err: err}
	}

	sshClient, err := sshclient.Dial(ctx, cfg, clientConfig)
	if err != nil {
		return nil, &errs.ConnectionError{Addr: cfg.Host, Err: err}
	}

	client, err := sftp.NewClient(sshClient.Client())
	if err != nil {
		sshClient.Close()
		return nil, &errs.ConnectionError{Addr: sshClient.Addr(), Err: err}
	}

	return &SFTPSession{ssh: sshClient, client: client, scratchDir: scratchDir}, nil
}

func (s *SFTPSession) Protocol() model.Protocol {
	return model.ProtocolSFTP
}

func (s *SFTPSession) List(dir string) ([]string, error) {
	entries, err := s.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names, nil
}

func (s *SFTPSession) ReadDir(dir string) ([]Entry, error) {
	infos, err := s.client.ReadDir(dir)
	if err != nil {
		return nil, errs.RemoteIO("list", dir, err)
	}

	entries := make([]Entry, 0, len(infos))
	for _, fi := range infos {
		if fi.Name() == "." || fi.Name() == ".." {
			continue
		}
		entries = append(entries, Entry{Name: fi.Name(), Dir: fi.IsDir()})
	}
	return entries, nil
}

func (s *SFTPSession) Download(remotePath string) ([]byte, error) {
	data, err := downloadVia(s.scratchDir, remotePath, func(w io.Writer) error {
		f, err := s.client.Open(remotePath)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = f.WriteTo(w)
		return err
	})
	if err != nil {
		return nil, errs.RemoteIO("download", remotePath, err)
	}
	return data, nil
}

// Upload writes the bytes unchanged.
func (s *SFTPSession) Upload(remotePath string, data []byte) error {
	f, err := s.client.OpenFile(remotePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return errs.RemoteIO("upload", remotePath, err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return errs.RemoteIO("upload", remotePath, err)
	}
	return errs.RemoteIO("upload", remotePath, f.Close())
}

func (s *SFTPSession) Delete(remotePath string) error {
	return errs.RemoteIO("delete", remotePath, s.client.Remove(remotePath))
}

func (s *SFTPSession) Move(remotePath, newDir string) error {
	target := model.JoinRemote(newDir, path.Base(remotePath))
	return errs.RemoteIO("move", remotePath, s.client.PosixRename(remotePath, target))
}

func (s *SFTPSession) Mkdir(dir string) error {
	return errs.RemoteIO("mkdir", dir, s.client.Mkdir(dir))
}

func (s *SFTPSession) Rmdir(dir string) error {
	return errs.RemoteIO("rmdir", dir, s.client.RemoveDirectory(dir))
}

func (s *SFTPSession) Close() error {
	err := s.client.Close()
	if cerr := s.ssh.Close(); err == nil {
		err = cerr
	}
	logger.Debugf("[SFTP] Connection to %s closed", s.ssh.Addr())
	return err
}
