package main

import (
	"fmt"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/multierr"

	"github.com/Faultbox/objexport/pkg/encoding"
)

// exportable reports whether name is a file the export command reads.
func exportable(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".rsm", ".rsm2", ".rsw":
		return true
	}
	return false
}

// matchPattern matches a glob against the base name or a substring against
// the whole path, both ignoring case.
func matchPattern(name, pattern string) bool {
	if pattern == "" {
		return true
	}
	name = strings.ToLower(name)
	if ok, _ := path.Match(pattern, path.Base(name)); ok {
		return true
	}
	return strings.Contains(name, pattern)
}

func cmdModels(args []string, stdout, stderr io.Writer) (err error) {
	s, err := newSession("models", args, stderr)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, s.Close()) }()

	if len(s.flags.Args) > 1 {
		fmt.Fprintln(stderr, "Usage: objexport models [flags] [pattern]")
		return errUsage
	}
	pattern := ""
	if len(s.flags.Args) == 1 {
		pattern = strings.ToLower(s.flags.Args[0])
	}

	if err := s.openSource(); err != nil {
		return err
	}

	seen := make(map[string]bool)
	if len(s.archives) > 0 {
		for _, a := range s.archives {
			for _, name := range a.List() {
				seen[name] = true
			}
		}
	} else {
		root := s.cfg.Source.DataDir
		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(root, p)
			if err != nil {
				return err
			}
			seen[encoding.NormalizeGRFPath(filepath.ToSlash(rel))] = true
			return nil
		})
		if err != nil {
			return err
		}
	}

	var names []string
	for name := range seen {
		if exportable(name) && matchPattern(name, pattern) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintln(stdout, name)
	}
	fmt.Fprintf(stderr, "%d files\n", len(names))
	return nil
}
