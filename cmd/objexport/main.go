// objexport converts Ragnarok Online models and maps to Wavefront OBJ.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
)

// errUsage reports bad invocation after usage has been printed.
var errUsage = errors.New("invalid usage")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			return
		case !errors.Is(err, errUsage):
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) < 1 {
		printUsage(stderr)
		return errUsage
	}

	command := args[0]
	args = args[1:]

	switch command {
	case "export", "x":
		return cmdExport(args, stdout, stderr)
	case "info":
		return cmdInfo(args, stdout, stderr)
	case "models", "ls":
		return cmdModels(args, stdout, stderr)
	case "config":
		return cmdConfig(args, stdout, stderr)
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		printUsage(stderr)
		return errUsage
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `objexport - Ragnarok Online model to Wavefront OBJ converter

Usage:
  objexport <command> [flags] [arguments]

Commands:
  export <model.rsm|world.rsw> [out.obj]  Export geometry (stdout if no output)
  info <model.rsm|world.rsw>              Show file and export summary
  models [pattern]                        List models and maps in the data source
  config [path]                           Write the effective config as YAML

Flags:
  -config <file>     Config file (default ./objexport.yaml, then user config dir)
  -grf <file.grf>    GRF archive to read from, repeatable
  -data <dir>        Extracted client directory (used without -grf)
  -options <string>  Export options, e.g. "groups=1;ptgroups=0;materials=1;smoothing=1;normals=1"
  -units <unit>      Output unit: cm, mm, m, km, in, ft, yd, mi
  -time <ms>         Animation time to pose keyframed nodes at
  -ground=false      Leave out the ground of worlds
  -select <names>    Comma-separated node names or |full|paths to export
  -log <file>        Also log to a rotating file
  -debug             Debug logging

Examples:
  objexport export data/model/prontera/house.rsm house.obj
  objexport export -grf data.grf -units m prontera.rsw prontera.obj
  objexport export -grf data.grf -select chimney house.rsm > chimney.obj
  objexport models -grf data.grf "*.rsw"`)
}
