package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Faultbox/objexport/internal/rsmscene"
	"github.com/Faultbox/objexport/pkg/obj"
)

func cmdExport(args []string, stdout, stderr io.Writer) (err error) {
	s, err := newSession("export", args, stderr)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, s.Close()) }()

	pos := s.flags.Args
	if len(pos) < 1 || len(pos) > 2 {
		fmt.Fprintln(stderr, "Usage: objexport export [flags] <model.rsm|world.rsw> [out.obj]")
		return errUsage
	}
	output := ""
	if len(pos) == 2 {
		output = pos[1]
	} else if isTerminal(stdout) {
		return errors.New("refusing to write OBJ to a terminal; name an output file or redirect stdout")
	}

	if err := s.openSource(); err != nil {
		return err
	}
	sc, b, err := s.buildScene(pos[0])
	if err != nil {
		return err
	}

	scope := obj.ScopeAll
	if len(s.flags.Select) > 0 {
		if err := selectNodes(sc, s.flags.Select); err != nil {
			return err
		}
		scope = obj.ScopeSelection
	}

	// Everything that can fail short of I/O fails here, before the output
	// file exists.
	plan, err := obj.NewExporter(s.cfg.Export.Options, s.log).Prepare(sc, scope)
	if err != nil {
		return err
	}

	var report *obj.Report
	if output == "" {
		output = "stdout"
		report, err = plan.Write(stdout)
	} else {
		report, err = writeFile(output, plan)
	}
	if err != nil {
		return err
	}

	s.log.Debug("export written", zap.String("output", output), zap.Int64("bytes", report.Bytes))
	printReport(stderr, output, b.Stats(), report)
	return nil
}

// writeFile writes plan to path. A partial file is removed on failure.
func writeFile(path string, plan *obj.Plan) (report *obj.Report, err error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		err = multierr.Append(err, f.Close())
		if err != nil {
			report = nil
			_ = os.Remove(path)
		}
	}()
	return plan.Write(f)
}

func printReport(w io.Writer, output string, stats rsmscene.Stats, r *obj.Report) {
	p := message.NewPrinter(language.English)

	p.Fprintf(w, "Wrote %d objects to %s (%d bytes)\n", len(r.Objects), output, r.Bytes)
	p.Fprintf(w, "  vertices:   %d\n", r.Vertices)
	p.Fprintf(w, "  texcoords:  %d\n", r.TexCoords)
	p.Fprintf(w, "  normals:    %d\n", r.Normals)
	p.Fprintf(w, "  polygons:   %d\n", r.Polygons)
	if stats.Models > 1 {
		p.Fprintf(w, "  models:     %d\n", stats.Models)
	}
	if stats.GroundFaces > 0 {
		p.Fprintf(w, "  ground:     %d faces\n", stats.GroundFaces)
	}
	if stats.SkippedFaces > 0 {
		p.Fprintf(w, "  bad faces:  %d skipped\n", stats.SkippedFaces)
	}
	if stats.MissingModels > 0 {
		p.Fprintf(w, "  missing:    %d placed models\n", stats.MissingModels)
	}
	if len(r.Skipped) > 0 {
		p.Fprintf(w, "  skipped:    %d unsupported objects\n", len(r.Skipped))
	}
	if r.Warnings > 0 {
		p.Fprintf(w, "  warnings:   %d\n", r.Warnings)
	}
}
