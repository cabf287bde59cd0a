package main

import (
	"fmt"
	"io"

	"go.uber.org/multierr"
)

// cmdConfig writes the effective configuration, defaults merged with any
// config file and flags, so it can be edited.
func cmdConfig(args []string, stdout, stderr io.Writer) (err error) {
	s, err := newSession("config", args, stderr)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, s.Close()) }()

	var path string
	switch len(s.flags.Args) {
	case 0:
		path, err = s.cfg.Save()
	case 1:
		path = s.flags.Args[0]
		err = s.cfg.SaveTo(path)
	default:
		fmt.Fprintln(stderr, "Usage: objexport config [flags] [path]")
		return errUsage
	}
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(stdout, "Wrote config to %s\n", path)
	return nil
}
