// Package poller infers the bank's verdict on sent files from the remote
// directory they currently sit in.
package poller

import "github.com/irOkoo/exabanque-ftp-refactoring/internal/model"

// Listings is one snapshot of the status directories.
type Listings struct {
	Process []string
	Error   []string
	Success []string
}

// Location is where a file was found. State is empty when it was found
// nowhere.
type Location struct {
	State     model.TransactionState
	InProcess bool
	InError   bool
	InSuccess bool
}

// Locate checks process, then error, then success. Each hit overrides the
// previous one, so the last match wins.
func Locate(fileName string, l Listings) Location {
	loc := Location{
		InProcess: contains(l.Process, fileName),
		InError:   contains(l.Error, fileName),
		InSuccess: contains(l.Success, fileName),
	}
	if loc.InProcess {
		loc.State = model.StateProcessing
	}
	if loc.InError {
		loc.State = model.StateError
	}
	if loc.InSuccess {
		loc.State = model.StateSuccess
	}
	return loc
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
