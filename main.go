package main

import (
	"fmt"
	"os"

	"github.com/agilira/orpheus/pkg/orpheus"
)

func main() {
	settings, err := loadSettings()
	if err != nil {
		RaiseException(err)
	}
	if err := initLogger(settings.LogLevel, settings.LogDev); err != nil {
		RaiseException(err)
	}

	err = run(settings, os.Args[1:])
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(settings Settings, args []string) error {
	app := orpheus.New("sconspp").
		SetDescription("Packaging, configure checks and tool modules for SCons-style builds").
		SetVersion(version)

	app.AddCommand(orpheus.NewCommand("package", "Build packages declared in the build file").
		SetHandler(packageCommand(settings)).
		AddFlag("file", "F", "", "Build file (default $SCONSPP_FILE or sconspp.yaml)").
		AddBoolFlag("verbose", "v", false, "Print every action").
		AddBoolFlag("dry-run", "n", false, "Show what would be built"))

	app.AddCommand(orpheus.NewCommand("configure", "Run the configure checks of the build file").
		SetHandler(configureCommand(settings)).
		AddFlag("file", "F", "", "Build file").
		AddBoolFlag("verbose", "v", false, "Print trial commands"))

	app.AddCommand(orpheus.NewCommand("node", "Look up a file system node: node <entry|file|dir> <name>").
		SetHandler(nodeCommand(settings)).
		AddFlag("file", "F", "", "Build file"))

	app.AddCommand(orpheus.NewCommand("resolve", "Import a tool module by dotted name").
		SetHandler(resolveCommand(settings)).
		AddFlag("file", "F", "", "Build file"))

	app.AddCommand(orpheus.NewCommand("list", "List packages").
		SetHandler(listCommand(settings)).
		AddFlag("file", "F", "", "Build file").
		AddFlag("format", "o", "table", "Output format: table, json or yaml"))

	app.AddCommand(orpheus.NewCommand("validate", "Validate the build file").
		SetHandler(validateCommand(settings)).
		AddFlag("file", "F", "", "Build file"))

	return app.Run(args)
}
