package cmd

import "github.com/creativeprojects/folderfix/cfg"

type GlobalFlags struct {
	configFile string
	quiet      bool
	verbose    bool
}

var (
	global GlobalFlags
	config *cfg.Config
)
