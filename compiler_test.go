package wee

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileErr(t *testing.T, source string) CompileErrors {
	t.Helper()
	vm := newVM()
	_, err := Compile(vm, source)
	require.Error(t, err)
	errs, ok := err.(CompileErrors)
	require.True(t, ok, "expected CompileErrors, got %T", err)
	return errs
}

func TestCompileValidProgram(t *testing.T) {
	vm := newVM()
	fn, err := Compile(vm, `let x = 1 + 2; print x;`)
	require.NoError(t, err)
	assert.NotNil(t, fn)
	assert.Equal(t, 0, fn.Arity)
}

func TestCompileSelfOutsideClass(t *testing.T) {
	errs := compileErr(t, `print self;`)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Message, "outside of a class")
}

func TestCompileReturnValueFromConstructor(t *testing.T) {
	errs := compileErr(t, `
		class C {
			init() { return 1; }
		}
	`)
	require.NotEmpty(t, errs)
	found := false
	for _, e := range errs {
		if e.Message == "cannot return a value from an initializer" {
			found = true
		}
	}
	assert.True(t, found, "errors: %v", errs)
}

func TestCompileTopLevelReturn(t *testing.T) {
	errs := compileErr(t, `return 1;`)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Message, "return")
}

func TestCompileLocalReadInOwnInitializer(t *testing.T) {
	errs := compileErr(t, `{ let a = a; }`)
	require.NotEmpty(t, errs)
	found := false
	for _, e := range errs {
		if e.Message == "cannot read a local variable in its own initializer" {
			found = true
		}
	}
	assert.True(t, found, "errors: %v", errs)
}

func TestCompileDuplicateLocalInSameScope(t *testing.T) {
	errs := compileErr(t, `{ let a = 1; let a = 2; }`)
	require.NotEmpty(t, errs)
	found := false
	for _, e := range errs {
		if e.Message == "already a variable with this name in this scope" {
			found = true
		}
	}
	assert.True(t, found, "errors: %v", errs)
}

func TestCompileShadowingAcrossScopesIsFine(t *testing.T) {
	vm := newVM()
	_, err := Compile(vm, `let a = 1; { let a = 2; print a; } print a;`)
	assert.NoError(t, err)
}
