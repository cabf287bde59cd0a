package main

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"go.uber.org/multierr"

	"github.com/Faultbox/objexport/pkg/formats"
	"github.com/Faultbox/objexport/pkg/obj"
)

func cmdInfo(args []string, stdout, stderr io.Writer) (err error) {
	s, err := newSession("info", args, stderr)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, s.Close()) }()

	if len(s.flags.Args) != 1 {
		fmt.Fprintln(stderr, "Usage: objexport info [flags] <model.rsm|world.rsw>")
		return errUsage
	}
	name := s.flags.Args[0]

	if err := s.openSource(); err != nil {
		return err
	}
	data, err := s.readInput(name)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "File:    %s\n", name)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".rsm", ".rsm2":
		rsm, err := formats.ParseRSM(data)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", name, err)
		}
		printModelInfo(stdout, rsm)
	case ".rsw":
		rsw, err := formats.ParseRSW(data)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", name, err)
		}
		printWorldInfo(stdout, rsw)
	}

	sc, _, err := s.buildScene(name)
	if err != nil {
		return err
	}
	plan, err := obj.NewExporter(s.cfg.Export.Options, s.log).Prepare(sc, obj.ScopeAll)
	if err != nil {
		return err
	}

	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "Objects (%s):\n", s.cfg.Export.Units)
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  PATH\tVERTICES\tPOLYGONS\tUVS\tNORMALS")
	for _, t := range plan.Targets() {
		fmt.Fprintf(tw, "  %s\t%d\t%d\t%d\t%d\n", t.Ref.Path,
			t.Mesh.NumVertices(), t.Mesh.NumPolygons(), t.Mesh.NumUVs(), t.Mesh.NumNormals())
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Sets:    %d\n", plan.Membership().NumSets())
	return nil
}

func printModelInfo(w io.Writer, rsm *formats.RSM) {
	fmt.Fprintf(w, "Type:    model %s\n", rsm.Version)
	fmt.Fprintf(w, "Shading: %s\n", rsm.Shading)
	fmt.Fprintf(w, "Nodes:   %d (root %q)\n", len(rsm.Nodes), rsm.RootNode)
	fmt.Fprintf(w, "Faces:   %d\n", rsm.GetTotalFaceCount())
	if rsm.HasAnimation() {
		fmt.Fprintf(w, "Anim:    %d ms\n", rsm.AnimLength)
	}
	fmt.Fprintf(w, "Textures:\n")
	for i, tex := range rsm.Textures {
		fmt.Fprintf(w, "  %2d  %s\n", i, tex)
	}
}

func printWorldInfo(w io.Writer, rsw *formats.RSW) {
	fmt.Fprintf(w, "Type:    world %s\n", rsw.Version)

	counts := rsw.CountByType()
	types := make([]formats.RSWObjectType, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	for _, t := range types {
		fmt.Fprintf(w, "  %-8s %d\n", t, counts[t])
	}

	files := make(map[string]int)
	for _, m := range rsw.GetModels() {
		files[m.ModelName]++
	}
	fmt.Fprintf(w, "Models:  %d placements of %d files\n", len(rsw.GetModels()), len(files))
}
