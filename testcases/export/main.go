// Command export writes every test case as a labelme annotation file, so
// that the cases can be inspected with labelme or fed to other tools.
// Run from the module root directory.
package main

import (
	"maps"
	"os"
	"path/filepath"
	"slices"

	"seehuhn.de/go/labelmask"
	"seehuhn.de/go/labelmask/labelme"
	"seehuhn.de/go/labelmask/testcases"
)

const outDir = "testdata/annotations"

func main() {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		panic(err)
	}

	for _, category := range slices.Sorted(maps.Keys(testcases.All)) {
		for _, tc := range testcases.All[category] {
			name := category + "_" + tc.Name
			if err := export(filepath.Join(outDir, name+".json"), name, tc); err != nil {
				panic(err)
			}
		}
	}
}

func export(path, name string, tc testcases.TestCase) error {
	f := labelme.New(name+".png", tc.Height, tc.Width)
	f.Add(name, tc.Shape)
	if tc.Rule == labelmask.NonZero {
		f.Flags["nonzero"] = true
	}

	fd, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := f.Encode(fd); err != nil {
		fd.Close()
		return err
	}
	return fd.Close()
}
