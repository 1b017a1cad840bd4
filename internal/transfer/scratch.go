package transfer

import (
	"io"
	"os"
	"path"
	"path/filepath"
)

// downloadVia streams a remote file into a private temporary directory and
// returns its content. The directory is removed on every exit path.
func downloadVia(scratchDir, remotePath string, fetch func(w io.Writer) error) (data []byte, err error) {
	tmpDir, err := os.MkdirTemp(scratchDir, "exabanque-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	local := filepath.Join(tmpDir, path.Base(remotePath))
	f, err := os.Create(local)
	if err != nil {
		return nil, err
	}

	if err := fetch(f); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	return os.ReadFile(local)
}
