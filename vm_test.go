package wee_test

import (
	"bytes"
	"context"
	"io/ioutil"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/wee"
)

// vmTestCase runs one Wee program to completion in a fresh VM and checks
// either its captured stdout or a substring of the error it raised.
type vmTestCase struct {
	name    string
	source  string
	opts    []wee.Option
	want    string
	wantErr string
}

func (vmt vmTestCase) run(t *testing.T) {
	var buf bytes.Buffer
	opts := append([]wee.Option{wee.WithStdout(&buf)}, vmt.opts...)
	vm := wee.New(opts...)
	err := vm.Interpret(context.Background(), vmt.source)
	if vmt.wantErr != "" {
		require.Error(t, err)
		assert.Contains(t, err.Error(), vmt.wantErr)
		return
	}
	require.NoError(t, err)
	assert.Equal(t, vmt.want, buf.String())
}

type vmTestCases []vmTestCase

func (vmts vmTestCases) run(t *testing.T) {
	for _, vmt := range vmts {
		t.Run(vmt.name, vmt.run)
	}
}

func TestVM(t *testing.T) {
	vmTestCases{

		{
			name:   "arithmetic precedence",
			source: `print 2 + 3 * 4 - (1 + 1) / 2;`,
			want:   "13\n",
		},

		{
			name:   "string concatenation and interning",
			source: `let a = "foo"; let b = "foo"; print a == b; print a + "bar";`,
			want:   "true\nfoobar\n",
		},

		{
			name: "closures share upvalues across invocations, independently per closure",
			source: `
				let makeCounter = fun() {
					let count = 0;
					fun increment() {
						count = count + 1;
						return count;
					}
					return increment;
				};
				let a = makeCounter();
				let b = makeCounter();
				print a();
				print a();
				print b();
			`,
			want: "1\n2\n1\n",
		},

		{
			name: "classes, inheritance, and super",
			source: `
				class Animal {
					init(name) { self.name = name; }
					speak() { return self.name + " makes a sound."; }
				}
				class Dog : Animal {
					speak() { return super.speak() + " Specifically, a bark."; }
				}
				print Dog("Rex").speak();
			`,
			want: "Rex makes a sound. Specifically, a bark.\n",
		},

		{
			name: "recursive fibonacci",
			source: `
				fun fib(n) {
					if (n < 2) { return n; }
					return fib(n - 1) + fib(n - 2);
				}
				print fib(10);
			`,
			want: "55\n",
		},

		{
			name: "block scoping and shadowing",
			source: `
				let x = "outer";
				{
					let x = "inner";
					print x;
				}
				print x;
			`,
			want: "inner\nouter\n",
		},

		{
			name:    "reading an undefined variable is a runtime error",
			source:  `print undefinedThing;`,
			wantErr: "undefined variable 'undefinedThing'",
		},

		{
			name:    "calling a non-callable value is a runtime error",
			source:  `let x = 1; x();`,
			wantErr: "can only call functions and classes",
		},

		{
			name: "stress GC still produces correct results under constant collection",
			source: `
				fun chain(n) {
					if (n == 0) { return "done"; }
					let s = "x" + chain(n - 1);
					return s;
				}
				print chain(5);
			`,
			opts: []wee.Option{wee.WithStressGC(true)},
			want: "xxxxxdone\n",
		},
	}.run(t)
}

func TestVMCompileErrorsAccumulate(t *testing.T) {
	vm := wee.New()
	err := vm.Interpret(context.Background(), `let = ; print`)
	require.Error(t, err)
	var compileErrs wee.CompileErrors
	require.ErrorAs(t, err, &compileErrs)
	assert.Greater(t, len(compileErrs), 1, "panic-mode recovery should surface more than one diagnostic")
}

// TestVMFixtures replays every checked-in testdata/*.wee script and compares
// its stdout against the golden output recorded in fixtureExpectations.
func TestVMFixtures(t *testing.T) {
	matches, err := filepath.Glob("testdata/*.wee")
	require.NoError(t, err)
	sort.Strings(matches)
	require.NotEmpty(t, matches)

	for _, path := range matches {
		path := path
		name := filepath.Base(path)
		name = name[:len(name)-len(filepath.Ext(name))]
		t.Run(name, func(t *testing.T) {
			want, ok := fixtureExpectations[name]
			require.True(t, ok, "no recorded expectation for fixture %q", name)

			src, err := ioutil.ReadFile(path)
			require.NoError(t, err)

			var buf bytes.Buffer
			vm := wee.New(wee.WithStdout(&buf))
			err = vm.Interpret(context.Background(), string(src))
			if err != nil {
				assert.Equal(t, want, err.Error()+"\n")
				return
			}
			assert.Equal(t, want, buf.String())
		})
	}
}
