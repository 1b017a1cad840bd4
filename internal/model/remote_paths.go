package model

import "strings"

// Fixed directory suffixes under a profile's main path.
const (
	SuffixEmission       = "emission"
	SuffixImportForecast = "import/forecast"
	SuffixProcess        = "process"
	SuffixSuccess        = "success"
	SuffixError          = "error"
	SuffixTest           = "test"
	SuffixSuccessRecept  = "success_recept"
	SuffixLog            = "log"
	SuffixExport         = "export"
)

// RemotePaths is the remote directory layout of one profile.
type RemotePaths struct {
	Root           string
	Emission       string
	ImportForecast string
	Process        string
	Success        string
	Error          string
	Test           string
	SuccessRecept  string
	Log            string
	Export         string
}

// DerivePaths computes every directory as root + "/" + suffix with exactly
// one separator. An empty root is "/".
func DerivePaths(mainPath string) RemotePaths {
	root := ensureTrailingSlash(mainPath)
	return RemotePaths{
		Root:           root,
		Emission:       root + SuffixEmission,
		ImportForecast: root + SuffixImportForecast,
		Process:        root + SuffixProcess,
		Success:        root + SuffixSuccess,
		Error:          root + SuffixError,
		Test:           root + SuffixTest,
		SuccessRecept:  root + SuffixSuccessRecept,
		Log:            root + SuffixLog,
		Export:         root + SuffixExport,
	}
}

// JoinRemote joins a directory and a file name with a single "/".
func JoinRemote(dir, name string) string {
	return ensureTrailingSlash(dir) + strings.TrimLeft(name, "/")
}

func ensureTrailingSlash(p string) string {
	trimmed := strings.TrimRight(p, "/")
	return trimmed + "/"
}
