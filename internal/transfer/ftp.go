package transfer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/irOkoo/exabanque-ftp-refactoring/internal/errs"
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/model"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/logger"
	"github.com/jlaffaye/ftp"
)

// FTPOptions configures an FTP or FTPS session.
type FTPOptions struct {
	Host     string
	Port     int
	Login    string
	Password string

	// TLS switches to explicit FTPS (AUTH TLS on the control port).
	TLS       bool
	TLSConfig *tls.Config

	Timeout    time.Duration
	ScratchDir string
}

// FTPSession is a Session over github.com/jlaffaye/ftp.
type FTPSession struct {
	conn       *ftp.ServerConn
	protocol   model.Protocol
	addr       string
	scratchDir string
}

// DialFTP connects and logs in.
func DialFTP(ctx context.Context, opts FTPOptions) (*FTPSession, error) {
	addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
	protocol := model.ProtocolFTP

	dialOpts := []ftp.DialOption{
		ftp.DialWithContext(ctx),
	}
	if opts.Timeout > 0 {
		dialOpts = append(dialOpts, ftp.DialWithTimeout(opts.Timeout))
	}
	if opts.TLS {
		protocol = model.ProtocolFTPS
		tlsConfig := opts.TLSConfig
		if tlsConfig == nil {
			tlsConfig = &tls.Config{ServerName: opts.Host, MinVersion: tls.VersionTLS12}
		}
		dialOpts = append(dialOpts, ftp.DialWithExplicitTLS(tlsConfig))
	}

	logger.Debugf("[FTP] Dialing %s (%s) as '%s'", addr, protocol, opts.Login)

	conn, err := ftp.Dial(addr, dialOpts...)
	if err != nil {
		return nil, &errs.ConnectionError{Addr: addr, Err: err}
	}

	if err := conn.Login(opts.Login, opts.Password); err != nil {
		_ = conn.Quit()
		return nil, &errs.ConnectionError{Addr: addr, Err: fmt.Errorf("login as %s: %w", opts.Login, err)}
	}

	return &FTPSession{
		conn:       conn,
		protocol:   protocol,
		addr:       addr,
		scratchDir: opts.ScratchDir,
	}, nil
}

func (s *FTPSession) Protocol() model.Protocol {
	return s.protocol
}

func (s *FTPSession) List(dir string) ([]string, error) {
	raw, err := s.conn.NameList(dir)
	if err != nil {
		return nil, errs.RemoteIO("list", dir, err)
	}
	return baseNames(raw), nil
}

func (s *FTPSession) ReadDir(dir string) ([]Entry, error) {
	raw, err := s.conn.List(dir)
	if err != nil {
		return nil, errs.RemoteIO("list", dir, err)
	}

	entries := make([]Entry, 0, len(raw))
	for _, e := range raw {
		name := path.Base(e.Name)
		if name == "." || name == ".." {
			continue
		}
		entries = append(entries, Entry{Name: name, Dir: e.Type == ftp.EntryTypeFolder})
	}
	return entries, nil
}

func (s *FTPSession) Download(remotePath string) ([]byte, error) {
	data, err := downloadVia(s.scratchDir, remotePath, func(w io.Writer) error {
		resp, err := s.conn.Retr(remotePath)
		if err != nil {
			return err
		}
		defer resp.Close()
		_, err = io.Copy(w, resp)
		return err
	})
	if err != nil {
		return nil, errs.RemoteIO("download", remotePath, err)
	}
	return data, nil
}

// Upload stores in line mode: every line is sent CRLF terminated.
func (s *FTPSession) Upload(remotePath string, data []byte) error {
	err := s.conn.Stor(remotePath, bytes.NewReader(toCRLF(data)))
	return errs.RemoteIO("upload", remotePath, err)
}

func (s *FTPSession) Delete(remotePath string) error {
	return errs.RemoteIO("delete", remotePath, s.conn.Delete(remotePath))
}

func (s *FTPSession) Move(remotePath, newDir string) error {
	target := model.JoinRemote(newDir, path.Base(remotePath))
	return errs.RemoteIO("move", remotePath, s.conn.Rename(remotePath, target))
}

func (s *FTPSession) Mkdir(dir string) error {
	return errs.RemoteIO("mkdir", dir, s.conn.MakeDir(dir))
}

func (s *FTPSession) Rmdir(dir string) error {
	return errs.RemoteIO("rmdir", dir, s.conn.RemoveDir(dir))
}

func (s *FTPSession) Close() error {
	logger.Debugf("[FTP] Connection to %s closed", s.addr)
	return s.conn.Quit()
}

// toCRLF terminates every line with CRLF, including a last line that had
// no terminator.
func toCRLF(data []byte) []byte {
	if len(data) == 0 {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data) + bytes.Count(data, []byte{'\n'}) + 2)
	for len(data) > 0 {
		var line []byte
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line, data = data[:i], data[i+1:]
		} else {
			line, data = data, nil
		}
		buf.Write(bytes.TrimSuffix(line, []byte{'\r'}))
		buf.WriteString("\r\n")
	}
	return buf.Bytes()
}
