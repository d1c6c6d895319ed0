package main

import (
	"time"

	"github.com/RustWorks/rgis-map/cmd/cli"

	"github.com/carlmjohnson/versioninfo"
)

func main() {
	cli.SetVersionInfo(versioninfo.Version, versioninfo.Revision, versioninfo.LastCommit.Format(time.RFC3339))
	cli.Execute()
}
