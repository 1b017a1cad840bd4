package transfer

import (
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/model"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/logger"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/metrics"
)

// Instrument wraps s so every operation is counted and debug logged.
func Instrument(s Session) Session {
	if _, ok := s.(*instrumented); ok {
		return s
	}
	return &instrumented{inner: s, label: string(s.Protocol())}
}

type instrumented struct {
	inner Session
	label string
}

func (i *instrumented) observe(op, target string, err error) {
	metrics.ObserveTransfer(i.label, op, err)
	if err != nil {
		logger.Debugf("[Transfer] %s %s %s failed: %v", i.label, op, target, err)
		return
	}
	logger.Debugf("[Transfer] %s %s %s", i.label, op, target)
}

func (i *instrumented) Protocol() model.Protocol {
	return i.inner.Protocol()
}

func (i *instrumented) List(dir string) ([]string, error) {
	names, err := i.inner.List(dir)
	i.observe("list", dir, err)
	return names, err
}

func (i *instrumented) ReadDir(dir string) ([]Entry, error) {
	entries, err := i.inner.ReadDir(dir)
	i.observe("list", dir, err)
	return entries, err
}

func (i *instrumented) Download(remotePath string) ([]byte, error) {
	data, err := i.inner.Download(remotePath)
	i.observe("download", remotePath, err)
	return data, err
}

func (i *instrumented) Upload(remotePath string, data []byte) error {
	err := i.inner.Upload(remotePath, data)
	i.observe("upload", remotePath, err)
	return err
}

func (i *instrumented) Delete(remotePath string) error {
	err := i.inner.Delete(remotePath)
	i.observe("delete", remotePath, err)
	return err
}

func (i *instrumented) Move(remotePath, newDir string) error {
	err := i.inner.Move(remotePath, newDir)
	i.observe("move", remotePath, err)
	return err
}

func (i *instrumented) Mkdir(dir string) error {
	err := i.inner.Mkdir(dir)
	i.observe("mkdir", dir, err)
	return err
}

func (i *instrumented) Rmdir(dir string) error {
	err := i.inner.Rmdir(dir)
	i.observe("rmdir", dir, err)
	return err
}

func (i *instrumented) Close() error {
	return i.inner.Close()
}
