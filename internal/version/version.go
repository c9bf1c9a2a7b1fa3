// Package version holds build metadata injected with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/HerbHall/campaigndesk/internal/version.Version=v0.3.0"
package version

import (
	"fmt"
	"runtime"

	"github.com/gosuri/uitable"
)

// Set at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info is the full build description.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the build description of the running binary.
func Get() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// Short returns the version string alone.
func Short() string {
	return Version
}

// Map returns the build description as a string map for JSON responses.
func Map() map[string]string {
	i := Get()
	return map[string]string{
		"version":    i.Version,
		"git_commit": i.GitCommit,
		"build_date": i.BuildDate,
		"go_version": i.GoVersion,
		"platform":   i.Platform,
	}
}

// Text renders the build description as an aligned two-column table.
func (i Info) Text() string {
	table := uitable.New()
	table.RightAlign(0)
	table.Separator = " "
	table.AddRow("version:", i.Version)
	table.AddRow("gitCommit:", i.GitCommit)
	table.AddRow("buildDate:", i.BuildDate)
	table.AddRow("goVersion:", i.GoVersion)
	table.AddRow("platform:", i.Platform)
	return table.String()
}
