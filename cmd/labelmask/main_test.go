package main

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"go.uber.org/zap"

	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/labelmask"
	"seehuhn.de/go/labelmask/labelme"
	"seehuhn.de/go/labelmask/maskio"
)

func nopLogger(string) (*zap.Logger, error) {
	return zap.NewNop(), nil
}

func writeAnnotation(t *testing.T, dir string) string {
	t.Helper()
	f := labelme.New("img.png", 20, 30)
	f.Add("cat", labelmask.Shape{
		Kind:   labelmask.Rectangle,
		Points: []vec.Vec2{{X: 2, Y: 2}, {X: 8, Y: 6}},
	})
	f.Add("dog/puppy", labelmask.Shape{
		Kind:   labelmask.Polygon,
		Points: []vec.Vec2{{X: 10, Y: 10}, {X: 20, Y: 10}, {X: 15, Y: 18}},
	})
	f.Add("cat", labelmask.Shape{
		Kind:   labelmask.Circle,
		Points: []vec.Vec2{{X: 25, Y: 5}, {X: 27, Y: 5}},
	})

	buf := &bytes.Buffer{}
	if err := f.Encode(buf); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "img.json")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names
}

func TestPerRecord(t *testing.T) {
	in := writeAnnotation(t, t.TempDir())
	out := t.TempDir()

	code := run([]string{"--out", out, in}, &bytes.Buffer{}, nopLogger)
	if code != 0 {
		t.Fatalf("exit code %d", code)
	}

	want := []string{"img_0_cat.png", "img_1_dog-puppy.png", "img_2_cat.png"}
	if got := listDir(t, out); !slices.Equal(got, want) {
		t.Fatalf("wrote %v, want %v", got, want)
	}

	fd, err := os.Open(filepath.Join(out, "img_0_cat.png"))
	if err != nil {
		t.Fatal(err)
	}
	defer fd.Close()
	m, err := maskio.Decode(fd, maskio.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if m.Width() != 30 || m.Height() != 20 {
		t.Errorf("mask size %dx%d", m.Width(), m.Height())
	}
	if m.Count() != 7*5 {
		t.Errorf("%d pixels set, want 35", m.Count())
	}
}

func TestPerLabelAndUnion(t *testing.T) {
	in := writeAnnotation(t, t.TempDir())

	out := t.TempDir()
	if code := run([]string{"--per-label", "--format", "bmp", "-o", out, in}, &bytes.Buffer{}, nopLogger); code != 0 {
		t.Fatalf("exit code %d", code)
	}
	want := []string{"img_cat.bmp", "img_dog-puppy.bmp"}
	if got := listDir(t, out); !slices.Equal(got, want) {
		t.Errorf("wrote %v, want %v", got, want)
	}

	out = t.TempDir()
	if code := run([]string{"--union", "--format=tiff", "-o", out, in}, &bytes.Buffer{}, nopLogger); code != 0 {
		t.Fatalf("exit code %d", code)
	}
	want = []string{"img_mask.tif"}
	if got := listDir(t, out); !slices.Equal(got, want) {
		t.Errorf("wrote %v, want %v", got, want)
	}
}

func TestFailures(t *testing.T) {
	dir := t.TempDir()
	good := writeAnnotation(t, dir)
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"shapes": [{"label": "x", "points": [[1, 1]], "shape_type": "polygon"}],
		"imageHeight": 5, "imageWidth": 5}`), 0o644); err != nil {
		t.Fatal(err)
	}
	missing := filepath.Join(dir, "missing.json")

	out := t.TempDir()
	code := run([]string{"-o", out, bad, missing, good}, &bytes.Buffer{}, nopLogger)
	if code != 1 {
		t.Errorf("exit code %d, want 1", code)
	}
	// the good file is processed after the failures
	if got := listDir(t, out); len(got) != 3 {
		t.Errorf("wrote %v, want the three masks of the good file", got)
	}
}

func TestUsage(t *testing.T) {
	stderr := &bytes.Buffer{}
	if code := run(nil, stderr, nopLogger); code != 2 {
		t.Errorf("exit code %d, want 2", code)
	}
	if code := run([]string{"--union", "--per-label", "x.json"}, stderr, nopLogger); code != 2 {
		t.Errorf("exit code %d, want 2", code)
	}
	if code := run([]string{"--line-width=-1", "x.json"}, stderr, nopLogger); code != 1 {
		t.Errorf("exit code %d, want 1", code)
	}
}

func TestLogMode(t *testing.T) {
	dir := t.TempDir()
	in := writeAnnotation(t, dir)
	configFile := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configFile, []byte("log:\n  mode: release\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var mode string
	record := func(m string) (*zap.Logger, error) {
		mode = m
		return zap.NewNop(), nil
	}

	for _, tc := range []struct {
		args []string
		want string
	}{
		{[]string{"--union", "-o", dir, in}, "debug"},
		{[]string{"--config", configFile, "--union", "-o", dir, in}, "release"},
		{[]string{"--config", configFile, "--log-mode", "debug", "--union", "-o", dir, in}, "debug"},
	} {
		mode = ""
		if code := run(tc.args, &bytes.Buffer{}, record); code != 0 {
			t.Fatalf("%v: exit code %d", tc.args, code)
		}
		if mode != tc.want {
			t.Errorf("%v: logger mode %q, want %q", tc.args, mode, tc.want)
		}
	}
}

func TestSafeName(t *testing.T) {
	for in, want := range map[string]string{
		"cat":       "cat",
		"a/b":       "a-b",
		"big dog":   "big-dog",
		"":          "unlabelled",
		"weiß":      "weiß",
		"x:y\\z?\t": "x-y-z--",
	} {
		if got := safeName(in); got != want {
			t.Errorf("safeName(%q) = %q, want %q", in, got, want)
		}
	}
}
