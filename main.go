package main

import (
	"github.com/creativeprojects/folderfix/cmd"
)

// values set by the build chain
var (
	version = "0.1.0-dev"
	commit  = ""
	date    = ""
	builtBy = ""
)

func main() {
	cmd.Execute(version, commit, date, builtBy)
}
