// Command gen_fixtures runs every testdata/*.wee script to completion and
// (re)generates testdata_fixtures_gen.go, a map from fixture name to the
// stdout it produced, so vm_test.go can assert golden output without
// shelling out to the wee binary at test time.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/net/context"
	"golang.org/x/sync/errgroup"

	"github.com/jcorbin/wee"
)

var (
	testdataDir = flag.String("testdata", "testdata", "directory of *.wee fixtures")
	outPath     = flag.String("out", "testdata_fixtures_gen.go", "generated Go file to write")
)

func main() {
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	names, err := fixtureNames(*testdataDir)
	if err != nil {
		log.Fatalf("failed to list fixtures: %v", err)
	}

	eg, ctx := errgroup.WithContext(ctx)
	outputs := make([]string, len(names))
	for i, name := range names {
		i, name := i, name
		eg.Go(func() error {
			out, err := runFixture(ctx, filepath.Join(*testdataDir, name+".wee"))
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			outputs[i] = out
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		log.Fatal(err)
	}

	if err := writeGenerated(*outPath, names, outputs); err != nil {
		log.Fatal(err)
	}
}

func fixtureNames(dir string) ([]string, error) {
	entries, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if ext := filepath.Ext(e.Name()); ext == ".wee" {
			names = append(names, e.Name()[:len(e.Name())-len(ext)])
		}
	}
	sort.Strings(names)
	return names, nil
}

// runFixture interprets one script in a fresh VM, capturing everything it
// printed; a fixture that raises a compile or runtime error records the
// error text instead, so regressions in error formatting show up too.
func runFixture(ctx context.Context, path string) (string, error) {
	src, err := ioutil.ReadFile(path)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	vm := wee.New(wee.WithStdout(&buf))
	if err := vm.Interpret(ctx, string(src)); err != nil {
		return err.Error() + "\n", nil
	}
	return buf.String(), nil
}

func writeGenerated(path string, names, outputs []string) error {
	var buf bytes.Buffer
	buf.WriteString("// Code generated by scripts/gen_fixtures.go. DO NOT EDIT.\n\n")
	buf.WriteString("package wee_test\n\n")
	buf.WriteString("var fixtureExpectations = map[string]string{\n")
	for i, name := range names {
		fmt.Fprintf(&buf, "\t%q: %q,\n", name, outputs[i])
	}
	buf.WriteString("}\n")

	formatted, err := gofmtPipe(buf.Bytes())
	if err != nil {
		return err
	}
	return ioutil.WriteFile(path, formatted, 0644)
}

func gofmtPipe(src []byte) ([]byte, error) {
	cmd := exec.Command("gofmt")
	cmd.Stdin = bytes.NewReader(src)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("gofmt: %w", err)
	}
	return out.Bytes(), nil
}
