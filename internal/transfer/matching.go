package transfer

import (
	"path"
	"sort"
	"strings"

	"github.com/irOkoo/exabanque-ftp-refactoring/internal/errs"
	"github.com/irOkoo/exabanque-ftp-refactoring/internal/model"
)

// ListMatching downloads every file of dir whose name matches pattern.
// Names without a dot are taken for directories and skipped. Downloads run
// one at a time in name order; a failed download is reported in the
// returned error and does not stop the others.
func ListMatching(s Session, dir, pattern string) (map[string][]byte, error) {
	names, err := s.List(dir)
	if err != nil {
		return nil, err
	}

	matched := make([]string, 0, len(names))
	for _, name := range names {
		if !strings.Contains(name, ".") {
			continue
		}
		ok, err := path.Match(pattern, name)
		if err != nil {
			return nil, errs.Invalid("pattern", err.Error())
		}
		if ok {
			matched = append(matched, name)
		}
	}
	sort.Strings(matched)

	report := errs.NewBatchReport("list_matching " + dir)
	files := make(map[string][]byte, len(matched))
	for _, name := range matched {
		data, err := s.Download(model.JoinRemote(dir, name))
		if err != nil {
			report.Fail(name, err)
			continue
		}
		files[name] = data
		report.Succeed(name)
	}
	return files, report.Err()
}
