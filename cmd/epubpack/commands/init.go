package commands

import (
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/epubpack/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force  bool   `help:"Overwrite existing configuration file"`
	Output string `short:"o" name:"output" help:"Output directory for the generated config file"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	cfgPath := root.Config
	if i.Output != "" {
		cfgPath = filepath.Join(i.Output, "epubpack.yaml")
	}
	if err := config.Init(cfgPath, i.Force); err != nil {
		return err
	}
	fmt.Printf("Wrote configuration to %s\n", cfgPath)
	return nil
}
