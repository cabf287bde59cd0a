package obj

import (
	"bufio"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// ObjectRecord describes one object written to the stream. The offsets are
// the number of vertices, texture coordinates and normals written by the
// objects before it.
type ObjectRecord struct {
	Name string
	Path string

	VertexOffset   int
	TexCoordOffset int
	NormalOffset   int

	Vertices        int
	TexCoords       int
	Normals         int
	Polygons        int
	SmoothingGroups int
}

// Report summarizes a finished export.
type Report struct {
	Objects   []ObjectRecord
	Skipped   []NodeRef
	Vertices  int
	TexCoords int
	Normals   int
	Polygons  int
	Warnings  int
	Bytes     int64
}

// countingWriter counts bytes passed to the underlying writer.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// Session carries the mutable state of one export run: running index
// offsets, the last emitted directives and diagnostics. A session writes a
// single stream from a single goroutine.
type Session struct {
	opts       Options
	log        *zap.Logger
	membership *MembershipIndex

	counter    *countingWriter
	out        *bufio.Writer
	buf        []byte
	directives *DirectiveWriter

	// Running totals, used as the next object's offsets.
	v, vt, vn int

	records  []ObjectRecord
	warnings int
}

func newSession(w io.Writer, opts Options, log *zap.Logger, membership *MembershipIndex) *Session {
	counter := &countingWriter{w: w}
	return &Session{
		opts:       opts,
		log:        log,
		membership: membership,
		counter:    counter,
		out:        bufio.NewWriterSize(counter, 64*1024),
		buf:        make([]byte, 0, 256),
		directives: NewDirectiveWriter(opts.Groups, opts.Materials),
	}
}

// flush moves the scratch buffer to the output.
func (s *Session) flush() error {
	if len(s.buf) == 0 {
		return nil
	}
	_, err := s.out.Write(s.buf)
	s.buf = s.buf[:0]
	return err
}

func (s *Session) warn(msg string, fields ...zap.Field) {
	s.warnings++
	s.log.Warn(msg, fields...)
}

func (s *Session) writeHeader(unit Unit) error {
	s.buf = append(s.buf, "# The units used in this file are "...)
	s.buf = append(s.buf, unit.String()...)
	s.buf = append(s.buf, ".\n"...)
	return s.flush()
}

// writeObject writes one mesh and advances the running offsets.
func (s *Session) writeObject(objIdx int, target MeshTarget) error {
	mesh := target.Mesh
	rec := ObjectRecord{
		Name:           target.Ref.Name,
		Path:           target.Ref.Path,
		VertexOffset:   s.v,
		TexCoordOffset: s.vt,
		NormalOffset:   s.vn,
	}

	var smoothing *Smoothing
	if s.opts.Smoothing {
		smoothing = s.smooth(target)
		rec.SmoothingGroups = smoothing.Count
	}

	prec := s.opts.precision()

	// Vertex table
	vertexDirectives := s.opts.PointGroups && s.opts.Groups
	for i := 0; i < mesh.NumVertices(); i++ {
		if vertexDirectives {
			groups, materials := s.membership.VertexSets(objIdx, i)
			s.buf = s.directives.Update(s.buf, groups, materials)
		}
		p := mesh.Vertex(i)
		s.buf = appendFloats(s.buf, "v", prec, p[0], p[1], p[2])
		if err := s.flush(); err != nil {
			return err
		}
		rec.Vertices++
	}

	// UV table
	for i := 0; i < mesh.NumUVs(); i++ {
		uv := mesh.UV(i)
		s.buf = appendFloats(s.buf, "vt", prec, uv[0], uv[1])
		if err := s.flush(); err != nil {
			return err
		}
		rec.TexCoords++
	}

	// Normal table
	if s.opts.Normals {
		for i := 0; i < mesh.NumNormals(); i++ {
			n := mesh.Normal(i)
			s.buf = appendFloats(s.buf, "vn", prec, n[0], n[1], n[2])
			if err := s.flush(); err != nil {
				return err
			}
			rec.Normals++
		}
	}

	// Faces
	hasUVs := mesh.NumUVs() > 0
	hasNormals := s.opts.Normals && mesh.NumNormals() > 0
	polygonDirectives := s.opts.Groups || s.opts.Materials
	lastGroup := unvisited

	for p := 0; p < mesh.NumPolygons(); p++ {
		if smoothing != nil {
			if group := smoothing.Group(p); group != lastGroup {
				s.buf = appendSmoothing(s.buf, group)
				lastGroup = group
			}
		}

		if polygonDirectives {
			groups, materials := s.membership.PolygonSets(objIdx, p)
			s.buf = s.directives.Update(s.buf, groups, materials)
		}

		s.buf = append(s.buf, 'f')
		for corner, v := range mesh.PolygonVertices(p) {
			c := faceCorner{v: v + 1 + rec.VertexOffset}
			if hasUVs {
				if uv, ok := mesh.PolygonUV(p, corner); ok {
					c.vt = uv + 1 + rec.TexCoordOffset
				}
			}
			if hasNormals {
				c.vn = mesh.PolygonNormal(p, corner) + 1 + rec.NormalOffset
			}
			s.buf = appendCorner(s.buf, c)
		}
		s.buf = append(s.buf, '\n')
		if err := s.flush(); err != nil {
			return err
		}
		rec.Polygons++
	}

	s.v += rec.Vertices
	s.vt += rec.TexCoords
	s.vn += rec.Normals
	s.records = append(s.records, rec)

	s.log.Debug("object written",
		zap.String("object", rec.Path),
		zap.Int("vertices", rec.Vertices),
		zap.Int("polygons", rec.Polygons),
		zap.Int("smoothingGroups", rec.SmoothingGroups),
		zap.Int("vertexOffset", rec.VertexOffset))

	return nil
}

// smooth builds the adjacency table for one mesh and labels its polygons.
// The table is dropped once the labels are known.
func (s *Session) smooth(target MeshTarget) *Smoothing {
	adj := BuildAdjacency(target.Mesh)
	if adj.Missing > 0 {
		s.warn("polygon edges missing from edge table, treated as hard",
			zap.String("object", target.Ref.Path),
			zap.Int("count", adj.Missing))
	}

	smoothing := AssignSmoothingGroups(adj)
	for _, c := range smoothing.Conflicts {
		s.warn("smoothing group problem at polygon",
			zap.String("object", target.Ref.Path),
			zap.Int("polygon", c.Polygon),
			zap.Int("group", c.Label),
			zap.Int("proposed", c.Proposed))
	}
	return smoothing
}

func (s *Session) finish() (*Report, error) {
	if err := s.flush(); err != nil {
		return nil, fmt.Errorf("writing output: %w", err)
	}
	if err := s.out.Flush(); err != nil {
		return nil, fmt.Errorf("flushing output: %w", err)
	}

	report := &Report{
		Objects:  s.records,
		Warnings: s.warnings,
		Bytes:    s.counter.n,
	}
	for _, r := range s.records {
		report.Vertices += r.Vertices
		report.TexCoords += r.TexCoords
		report.Normals += r.Normals
		report.Polygons += r.Polygons
	}
	return report, nil
}
