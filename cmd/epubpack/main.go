package main

import (
	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/epubpack/cmd/epubpack/commands"
	"git.home.luguber.info/inful/epubpack/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("epubpack"),
		kong.Description("Package module documentation into an EPUB archive"),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)
	err := ctx.Run(&commands.Global{}, &cli)
	ctx.FatalIfErrorf(err)
}
