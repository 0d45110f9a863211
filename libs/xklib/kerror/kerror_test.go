package kerror

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKerrorBasic(t *testing.T) {
	e1 := Create("Type1", "error happened")
	assert.Regexp(t, "Type1: error happened", e1.Error())
	assert.Equal(t, EC_UNKNOWN, e1.ErrorCode)
}

func TestKerrorWithStack(t *testing.T) {
	e1 := Create("Type1", "error happened")
	expected := "Type1: error happened, stack=github.com/xinkaiwang/tabuplacer/libs/xklib/kerror.TestKerrorWithStack"
	assert.Regexp(t, expected, e1.FullString())
}

func TestKerrorWithFields(t *testing.T) {
	e1 := Create("Type1", "error happened").With("resourceId", "s1").With("load", 120).With("key", nil).With("val", []byte("test"))
	str := e1.Error()
	assert.Regexp(t, "resourceId=s1,", str)
	assert.Regexp(t, "load=120,", str)
	assert.Regexp(t, "key=<nil>,", str)
	assert.Regexp(t, "val=74657374", str)

	v, ok := e1.GetDetail("load")
	assert.True(t, ok)
	assert.Equal(t, 120, v)
	_, ok = e1.GetDetail("missing")
	assert.False(t, ok)
}

func TestKerrorCausedByKerror(t *testing.T) {
	e1 := Create("Type1", "error Type1 happened").WithErrorCode(EC_INVALID_PARAMETER)
	e2 := Wrap(e1, "Type2", "another level", true /* needStack */).With("iteration", 7)
	expected := "Type2: another level, iteration=7;\n Caused by: Type1: error Type1 happened, stack=github.com/xinkaiwang/tabuplacer/libs/xklib/kerror.TestKerrorCausedByKerror"
	assert.Regexp(t, expected, e2.FullString())
	// inner error code is kept, inner stack is not duplicated
	assert.Equal(t, EC_INVALID_PARAMETER, e2.ErrorCode)
	assert.Equal(t, "", e2.Stack)
	assert.True(t, IsType(e2, "Type1"))
	assert.True(t, IsType(e2, "Type2"))
	assert.False(t, IsType(e2, "Type3"))
}

func TestKerrorCausedByError(t *testing.T) {
	e1 := errors.New("hello")
	e2 := Wrap(e1, "Type2", "another level", true /* needStack */).WithErrorCode(EC_INVALID_PARAMETER)
	assert.Regexp(t, "^Type2: another level", e2.FullString())
	assert.Regexp(t, "Caused by: hello", e2.FullString())
	assert.Regexp(t, "^Type2: another level", e2.ShortString())
	assert.Regexp(t, "hello", e2.CausedByString())
	assert.True(t, errors.Is(e2, e1))
	assert.Equal(t, 2, e2.GetExitCode())
}

func TestErrorCodeToExitCode(t *testing.T) {
	assert.Equal(t, 0, EC_OK.ToExitCode())
	assert.Equal(t, 2, EC_INVALID_PARAMETER.ToExitCode())
	assert.Equal(t, 3, EC_NOT_FOUND.ToExitCode())
	assert.Equal(t, 1, ErrorCode("SOMETHING_ELSE").ToExitCode())
}
