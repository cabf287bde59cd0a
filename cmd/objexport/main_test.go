package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/objexport/pkg/formats"
	"github.com/Faultbox/objexport/pkg/grf"
)

// houseRSM is a textured box node with a "lid" child.
func houseRSM() *formats.RSM {
	identity := [9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1}
	return &formats.RSM{
		Version:  formats.RSMVersion{Major: 1, Minor: 5},
		Shading:  formats.RSMShadingSmooth,
		Alpha:    1,
		Textures: []string{"wall.bmp"},
		RootNode: "box",
		Nodes: []formats.RSMNode{
			{
				Name:       "box",
				TextureIDs: []int32{0},
				Matrix:     identity,
				Scale:      [3]float32{1, 1, 1},
				Vertices:   [][3]float32{{0, 0, 0}, {10, 0, 0}, {10, 0, 10}, {0, 0, 10}},
				TexCoords:  []formats.RSMTexCoord{{U: 0, V: 0}, {U: 1, V: 0}, {U: 1, V: 1}},
				Faces: []formats.RSMFace{
					{VertexIDs: [3]uint16{0, 1, 2}, TexCoordIDs: [3]uint16{0, 1, 2}, SmoothGroup: 1},
					{VertexIDs: [3]uint16{0, 2, 3}, TexCoordIDs: [3]uint16{0, 2, 1}, SmoothGroup: 1},
				},
			},
			{
				Name:     "lid",
				Parent:   "box",
				Matrix:   identity,
				Position: [3]float32{0, 10, 0},
				Scale:    [3]float32{1, 1, 1},
				Vertices: [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 0, 1}},
				Faces:    []formats.RSMFace{{VertexIDs: [3]uint16{0, 1, 2}}},
			},
		},
	}
}

func townRSW() *formats.RSW {
	return &formats.RSW{
		Version: formats.RSWVersion{Major: 2, Minor: 1},
		GndFile: "town.gnd",
		Objects: []formats.RSWObject{
			{Type: formats.RSWObjectModel, Model: &formats.RSWModel{
				Name:      "inn",
				ModelName: "house.rsm",
				Position:  [3]float32{100, 0, 100},
				Scale:     [3]float32{1, 1, 1},
			}},
			{Type: formats.RSWObjectModel, Model: &formats.RSWModel{
				Name:      "ruin",
				ModelName: "gone.rsm",
				Scale:     [3]float32{1, 1, 1},
			}},
		},
	}
}

// townGND is a flat 2x2 grass ground.
func townGND() *formats.GND {
	g := &formats.GND{
		Version:  formats.GNDVersion{Major: 1, Minor: 7},
		Width:    2,
		Height:   2,
		Zoom:     10,
		Textures: []string{"grass.bmp"},
		Surfaces: []formats.GNDSurface{{U: [4]float32{0, 1, 0, 1}, V: [4]float32{0, 0, 1, 1}}},
		Tiles:    make([]formats.GNDTile, 4),
	}
	for i := range g.Tiles {
		g.Tiles[i] = formats.GNDTile{FrontSurface: -1, RightSurface: -1}
	}
	return g
}

// isolate runs the test in an empty directory with no user config.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	chdirForTest(t, dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("HOME", dir)
	t.Setenv("APPDATA", dir)
	return dir
}

func writeFixture(t *testing.T, name string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(name, data, 0644); err != nil {
		t.Fatal(err)
	}
}

func writeArchive(t *testing.T, name string, files []grf.File) {
	t.Helper()
	var buf bytes.Buffer
	if err := grf.Pack(&buf, files); err != nil {
		t.Fatalf("Pack: %v", err)
	}
	writeFixture(t, name, buf.Bytes())
}

func runCmd(args ...string) (stdout, stderr string, err error) {
	var out, errOut bytes.Buffer
	err = run(args, &out, &errOut)
	return out.String(), errOut.String(), err
}

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantErr    error
		wantStdout string
		wantStderr string
	}{
		{"no command", nil, errUsage, "", "Commands:"},
		{"help", []string{"help"}, nil, "Commands:", ""},
		{"unknown", []string{"frobnicate"}, errUsage, "", "Unknown command: frobnicate"},
		{"export without input", []string{"export"}, errUsage, "", "Usage: objexport export"},
		{"export extra args", []string{"export", "a.rsm", "b.obj", "c"}, errUsage, "", "Usage: objexport export"},
		{"config extra args", []string{"config", "a.yaml", "b.yaml"}, errUsage, "", "Usage: objexport config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			stdout, stderr, err := runCmd(tt.args...)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if !strings.Contains(stdout, tt.wantStdout) {
				t.Errorf("stdout missing %q:\n%s", tt.wantStdout, stdout)
			}
			if !strings.Contains(stderr, tt.wantStderr) {
				t.Errorf("stderr missing %q:\n%s", tt.wantStderr, stderr)
			}
		})
	}
}

func TestExport_ModelFile(t *testing.T) {
	dir := isolate(t)
	writeFixture(t, "house.rsm", formats.EncodeRSM(houseRSM()))

	_, stderr, err := runCmd("export", "house.rsm", "house.obj")
	if err != nil {
		t.Fatalf("export: %v\n%s", err, stderr)
	}

	data, err := os.ReadFile(filepath.Join(dir, "house.obj"))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	out := string(data)
	if !strings.HasPrefix(out, "# The units used in this file are centimeters.\n") {
		t.Errorf("unexpected header:\n%s", out)
	}
	for _, want := range []string{"usemtl wall", "vt ", "vn ", "s 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if got := strings.Count(out, "\nf "); got != 3 {
		t.Errorf("face lines = %d, want 3", got)
	}
	if !strings.Contains(stderr, "Wrote 2 objects to house.obj") {
		t.Errorf("unexpected report:\n%s", stderr)
	}
}

func TestExport_Stdout(t *testing.T) {
	isolate(t)
	writeFixture(t, "house.rsm", formats.EncodeRSM(houseRSM()))

	stdout, stderr, err := runCmd("export", "-units", "m", "-options", "normals=0;materials=0", "house.rsm")
	if err != nil {
		t.Fatalf("export: %v\n%s", err, stderr)
	}
	if !strings.HasPrefix(stdout, "# The units used in this file are meters.\n") {
		t.Errorf("unexpected header:\n%s", stdout)
	}
	if strings.Contains(stdout, "vn ") || strings.Contains(stdout, "usemtl") {
		t.Errorf("disabled options still written:\n%s", stdout)
	}
	if !strings.Contains(stderr, "to stdout") {
		t.Errorf("report does not name stdout:\n%s", stderr)
	}
}

func TestExport_Select(t *testing.T) {
	tests := []struct {
		selection string
		objects   string
	}{
		{"lid", "Wrote 1 objects"},
		{"|house|box|lid", "Wrote 1 objects"},
		{"box", "Wrote 2 objects"},
		{"lidShape,boxShape", "Wrote 2 objects"},
	}

	for _, tt := range tests {
		t.Run(tt.selection, func(t *testing.T) {
			isolate(t)
			writeFixture(t, "house.rsm", formats.EncodeRSM(houseRSM()))

			_, stderr, err := runCmd("export", "-select", tt.selection, "house.rsm", "out.obj")
			if err != nil {
				t.Fatalf("export: %v\n%s", err, stderr)
			}
			if !strings.Contains(stderr, tt.objects) {
				t.Errorf("want %q in report:\n%s", tt.objects, stderr)
			}
		})
	}
}

func TestExport_FailureLeavesNoOutput(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown node", []string{"-select", "chimney"}},
		{"unknown path", []string{"-select", "|house|chimney"}},
		{"bad units", []string{"-units", "cubits"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			writeFixture(t, "house.rsm", formats.EncodeRSM(houseRSM()))

			args := append([]string{"export"}, tt.args...)
			args = append(args, "house.rsm", "out.obj")
			if _, _, err := runCmd(args...); err == nil {
				t.Fatal("expected error")
			}
			if _, err := os.Stat(filepath.Join(dir, "out.obj")); !os.IsNotExist(err) {
				t.Errorf("output file created despite failure: %v", err)
			}
		})
	}
}

func TestExport_InputErrors(t *testing.T) {
	isolate(t)
	writeFixture(t, "ground.gat", []byte("GRAT"))
	writeFixture(t, "broken.rsm", []byte("GRSM\x01"))

	tests := []struct {
		input string
		want  string
	}{
		{"ground.gat", "unsupported file type"},
		{"broken.rsm", "parsing broken.rsm"},
		{"missing.rsm", "missing.rsm"},
	}
	for _, tt := range tests {
		_, _, err := runCmd("export", tt.input, "out.obj")
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("export %s: err = %v, want %q", tt.input, err, tt.want)
		}
	}
}

func TestExport_WorldFromArchive(t *testing.T) {
	dir := isolate(t)
	writeArchive(t, "town.grf", []grf.File{
		{Name: "data\\model\\house.rsm", Data: formats.EncodeRSM(houseRSM())},
		{Name: "data\\town.rsw", Data: formats.EncodeRSW(townRSW())},
	})

	_, stderr, err := runCmd("export", "-grf", "town.grf", "town.rsw", "town.obj")
	if err != nil {
		t.Fatalf("export: %v\n%s", err, stderr)
	}
	for _, want := range []string{
		"skipping placed model",
		"Wrote 2 objects to town.obj",
		"missing:    1 placed models",
	} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr missing %q:\n%s", want, stderr)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "town.obj")); err != nil {
		t.Errorf("output not written: %v", err)
	}
}

func TestExport_WorldGround(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"with ground", nil, []string{"Wrote 3 objects to stdout", "ground:     8 faces"}},
		{"without ground", []string{"-ground=false"}, []string{"Wrote 2 objects to stdout"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			writeArchive(t, "town.grf", []grf.File{
				{Name: "data\\model\\house.rsm", Data: formats.EncodeRSM(houseRSM())},
				{Name: "data\\town.rsw", Data: formats.EncodeRSW(townRSW())},
				{Name: "data\\town.gnd", Data: formats.EncodeGND(townGND())},
			})

			args := append([]string{"export", "-grf", "town.grf"}, tt.args...)
			stdout, stderr, err := runCmd(append(args, "town.rsw")...)
			if err != nil {
				t.Fatalf("export: %v\n%s", err, stderr)
			}
			for _, want := range tt.want {
				if !strings.Contains(stderr, want) {
					t.Errorf("stderr missing %q:\n%s", want, stderr)
				}
			}
			if strings.Contains(stderr, "skipping ground") {
				t.Errorf("ground not loaded:\n%s", stderr)
			}
			if got := strings.Contains(stdout, "usemtl grass"); got != (tt.args == nil) {
				t.Errorf("grass material present = %v", got)
			}
		})
	}
}

func TestExport_WorldFromDataDir(t *testing.T) {
	isolate(t)
	writeFixture(t, filepath.Join("client", "data", "model", "house.rsm"), formats.EncodeRSM(houseRSM()))
	writeFixture(t, filepath.Join("client", "data", "town.rsw"), formats.EncodeRSW(townRSW()))

	stdout, stderr, err := runCmd("export", "-data", "client", "-select", "inn", "town.rsw")
	if err != nil {
		t.Fatalf("export: %v\n%s", err, stderr)
	}
	if !strings.Contains(stderr, "Wrote 2 objects to stdout") {
		t.Errorf("unexpected report:\n%s", stderr)
	}
	if !strings.HasPrefix(stdout, "# The units used in this file are centimeters.") {
		t.Errorf("unexpected output:\n%s", stdout)
	}
}

func TestExport_MissingArchive(t *testing.T) {
	isolate(t)
	_, _, err := runCmd("export", "-grf", "nope.grf", "town.rsw", "town.obj")
	if err == nil || !strings.Contains(err.Error(), "opening nope.grf") {
		t.Errorf("err = %v, want archive open error", err)
	}
}

func TestInfo(t *testing.T) {
	isolate(t)
	writeArchive(t, "town.grf", []grf.File{
		{Name: "data\\model\\house.rsm", Data: formats.EncodeRSM(houseRSM())},
		{Name: "data\\town.rsw", Data: formats.EncodeRSW(townRSW())},
	})

	tests := []struct {
		input string
		want  []string
	}{
		{"data/model/house.rsm", []string{"Type:    model 1.5", "Shading: Smooth", "wall.bmp", "|house|box|boxShape"}},
		{"town.rsw", []string{"Type:    world 2.1", "Model    2", "2 placements of 2 files", "|town|inn|box|lid|lidShape"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			stdout, stderr, err := runCmd("info", "-grf", "town.grf", tt.input)
			if err != nil {
				t.Fatalf("info: %v\n%s", err, stderr)
			}
			for _, want := range tt.want {
				if !strings.Contains(stdout, want) {
					t.Errorf("info missing %q:\n%s", want, stdout)
				}
			}
		})
	}
}

func TestModels(t *testing.T) {
	isolate(t)
	writeArchive(t, "a.grf", []grf.File{
		{Name: "data\\model\\house.rsm", Data: []byte("x")},
		{Name: "data\\texture\\wall.bmp", Data: []byte("x")},
		{Name: "data\\town.rsw", Data: []byte("x")},
	})
	writeArchive(t, "b.grf", []grf.File{
		{Name: "data\\model\\HOUSE.rsm", Data: []byte("x")},
		{Name: "data\\model\\tower.rsm2", Data: []byte("x")},
	})

	tests := []struct {
		pattern string
		want    string
	}{
		{"", "data/model/house.rsm\ndata/model/tower.rsm2\ndata/town.rsw\n"},
		{"*.rsw", "data/town.rsw\n"},
		{"TOW", "data/model/tower.rsm2\ndata/town.rsw\n"},
		{"castle", ""},
	}
	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			args := []string{"models", "-grf", "a.grf", "-grf", "b.grf"}
			if tt.pattern != "" {
				args = append(args, tt.pattern)
			}
			stdout, stderr, err := runCmd(args...)
			if err != nil {
				t.Fatalf("models: %v\n%s", err, stderr)
			}
			if stdout != tt.want {
				t.Errorf("models = %q, want %q", stdout, tt.want)
			}
		})
	}
}

func TestModels_DataDir(t *testing.T) {
	isolate(t)
	writeFixture(t, filepath.Join("client", "data", "model", "Hut.rsm"), []byte("x"))
	writeFixture(t, filepath.Join("client", "data", "readme.txt"), []byte("x"))

	stdout, _, err := runCmd("models", "-data", "client")
	if err != nil {
		t.Fatalf("models: %v", err)
	}
	if stdout != "data/model/hut.rsm\n" {
		t.Errorf("models = %q", stdout)
	}
}

func TestConfig(t *testing.T) {
	dir := isolate(t)

	stdout, _, err := runCmd("config", "-units", "ft", "-grf", "data.grf", "out.yaml")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if !strings.Contains(stdout, "Wrote config to out.yaml") {
		t.Errorf("stdout = %q", stdout)
	}
	data, err := os.ReadFile(filepath.Join(dir, "out.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"units: feet", "- data.grf", "smoothing: true"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("config missing %q:\n%s", want, data)
		}
	}

	// Without a path it goes to the user config dir.
	stdout, _, err = runCmd("config")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	want := filepath.Join(dir, "xdg", "objexport", "config.yaml")
	if !strings.Contains(stdout, want) {
		t.Errorf("stdout = %q, want path %s", stdout, want)
	}
}

// chdirForTest changes the working directory for the duration of the test
// and restores it on cleanup (equivalent of testing.T.Chdir, Go 1.24+).
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
