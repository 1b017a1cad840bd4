package connector

import (
	"context"
	"fmt"

	"github.com/irOkoo/exabanque-ftp-refactoring/internal/errs"
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/model"
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/transfer"
	"github.com/irOkoo/exabanque-ftp-refactoring/pkg/logger"
)

// Tools are one-shot operator actions on a profile. Each call opens and
// closes its own session.
type Tools struct {
	opener Opener
}

func NewTools(opener Opener) *Tools {
	return &Tools{opener: opener}
}

func (t *Tools) withSession(ctx context.Context, p *model.ConnectionProfile, fn func(s transfer.Session) error) error {
	s, err := t.opener.Open(ctx, p)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			logger.Warnf("[Tools] Close session for profile %d: %v", p.ID, cerr)
		}
	}()
	return fn(s)
}

// Test connects and lists the main path.
func (t *Tools) Test(ctx context.Context, p *model.ConnectionProfile) error {
	return t.withSession(ctx, p, func(s transfer.Session) error {
		_, err := s.List(p.Paths().Root)
		return err
	})
}

// List returns the entries of dir, or of the main path when dir is empty.
func (t *Tools) List(ctx context.Context, p *model.ConnectionProfile, dir string) ([]transfer.Entry, error) {
	if dir == "" {
		dir = p.Paths().Root
	}
	var entries []transfer.Entry
	err := t.withSession(ctx, p, func(s transfer.Session) error {
		var err error
		entries, err = s.ReadDir(dir)
		return err
	})
	return entries, err
}

// Count returns the number of entries in dir.
func (t *Tools) Count(ctx context.Context, p *model.ConnectionProfile, dir string) (int, error) {
	entries, err := t.List(ctx, p, dir)
	return len(entries), err
}

// FileName returns the name at index in dir's listing.
func (t *Tools) FileName(ctx context.Context, p *model.ConnectionProfile, dir string, index int) (string, error) {
	var name string
	err := t.withSession(ctx, p, func(s transfer.Session) error {
		var err error
		name, err = nameAt(s, dir, index)
		return err
	})
	return name, err
}

// DeleteByIndex deletes the file at index in dir's listing.
func (t *Tools) DeleteByIndex(ctx context.Context, p *model.ConnectionProfile, dir string, index int) (string, error) {
	var name string
	err := t.withSession(ctx, p, func(s transfer.Session) error {
		var err error
		if name, err = nameAt(s, dir, index); err != nil {
			return err
		}
		return s.Delete(model.JoinRemote(dir, name))
	})
	return name, err
}

func nameAt(s transfer.Session, dir string, index int) (string, error) {
	names, err := s.List(dir)
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(names) {
		return "", errs.RemoteIO("list", dir, fmt.Errorf("index %d out of range (%d entries)", index, len(names)))
	}
	return names[index], nil
}
