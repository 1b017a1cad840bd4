// Package transfer implements the remote file session used by every
// connector, over FTP, FTPS and SFTP.
//
// A Session is bound to one profile and one job. It is not safe for
// concurrent use and must be closed exactly once by the caller that opened it.
package transfer

import (
	"path"

	"github.com/irOkoo/exabanque-ftp-refactoring/internal/model"
)

// Entry is one item of a remote directory.
type Entry struct {
	Name string
	Dir  bool
}

// Session is the protocol independent file contract.
type Session interface {
	Protocol() model.Protocol

	// List returns entry names (files and directories) in server order.
	// "." and ".." are never returned.
	List(dir string) ([]string, error)
	// ReadDir is List with the directory flag of every entry.
	ReadDir(dir string) ([]Entry, error)

	// Download returns the file content. Nothing survives locally.
	Download(remotePath string) ([]byte, error)
	// Upload writes data to remotePath, replacing any existing file.
	Upload(remotePath string, data []byte) error

	Delete(remotePath string) error
	// Move renames remotePath into newDir keeping its base name.
	Move(remotePath, newDir string) error
	Mkdir(dir string) error
	Rmdir(dir string) error

	Close() error
}

// ListFiles returns the names of the non-directory entries of dir.
func ListFiles(s Session, dir string) ([]string, error) {
	entries, err := s.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.Dir {
			names = append(names, e.Name)
		}
	}
	return names, nil
}

// Contains reports whether dir lists name.
func Contains(s Session, dir, name string) (bool, error) {
	names, err := s.List(dir)
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// baseNames strips directories from names some servers return with NLST
// and drops the synthetic entries.
func baseNames(raw []string) []string {
	names := make([]string, 0, len(raw))
	for _, r := range raw {
		name := path.Base(r)
		if name == "." || name == ".." || name == "/" || name == "" {
			continue
		}
		names = append(names, name)
	}
	return names
}
