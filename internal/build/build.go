// Package build holds the version information set with -ldflags.
package build

import (
	"fmt"
	"time"
)

var (
	commit  = ""
	date    = ""
	version = "dev"
	repoURL = "https://github.com/ItsNotGoodName/x-rxstore"
)

var Current = parse(commit, date, version, repoURL)

type Build struct {
	Commit    string    `json:"commit,omitempty"`
	Version   string    `json:"version"`
	Date      time.Time `json:"date,omitempty"`
	RepoURL   string    `json:"repo_url,omitempty"`
	CommitURL string    `json:"commit_url,omitempty"`
}

func parse(commit, date, version, repoURL string) Build {
	d, _ := time.Parse(time.RFC3339, date)

	b := Build{
		Commit:  commit,
		Version: version,
		Date:    d,
		RepoURL: repoURL,
	}
	if repoURL != "" && commit != "" {
		b.CommitURL = repoURL + "/tree/" + commit
	}
	return b
}

func (b Build) String() string {
	if b.Commit == "" {
		return b.Version
	}
	return fmt.Sprintf("%s (%s, %s)", b.Version, b.Commit, b.Date.Format(time.DateOnly))
}
