package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvString(t *testing.T) {
	t.Setenv("LIB_TEST_STR", "")
	assert.Equal(t, "def", GetEnvString("LIB_TEST_STR", "def"))
	t.Setenv("LIB_TEST_STR", "value")
	assert.Equal(t, "value", GetEnvString("LIB_TEST_STR", "def"))
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		env  string
		want int
	}{
		{"", 7},
		{"42", 42},
		{" 9 ", 9},
		{"-3", -3},
		{"4.5", 7},
		{"lots", 7},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv("LIB_TEST_INT", tt.env)
			assert.Equal(t, tt.want, GetEnvInt("LIB_TEST_INT", 7))
		})
	}
}

func TestGetEnvFloat(t *testing.T) {
	t.Setenv("LIB_TEST_FLOAT", "0.25")
	assert.InDelta(t, 0.25, GetEnvFloat("LIB_TEST_FLOAT", 1), 1e-9)
	t.Setenv("LIB_TEST_FLOAT", "half")
	assert.InDelta(t, 1.0, GetEnvFloat("LIB_TEST_FLOAT", 1), 1e-9)
}

func TestGetEnvBool(t *testing.T) {
	for _, v := range []string{"1", "t", "true", "TRUE"} {
		t.Setenv("LIB_TEST_BOOL", v)
		assert.True(t, GetEnvBool("LIB_TEST_BOOL", false), v)
	}
	for _, v := range []string{"0", "f", "false", "False"} {
		t.Setenv("LIB_TEST_BOOL", v)
		assert.False(t, GetEnvBool("LIB_TEST_BOOL", true), v)
	}
	t.Setenv("LIB_TEST_BOOL", "yes")
	assert.True(t, GetEnvBool("LIB_TEST_BOOL", true))
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("LIB_TEST_DUR", "1h30m")
	assert.Equal(t, 90*time.Minute, GetEnvDuration("LIB_TEST_DUR", time.Second))
	t.Setenv("LIB_TEST_DUR", "soon")
	assert.Equal(t, time.Second, GetEnvDuration("LIB_TEST_DUR", time.Second))
}

func TestGetEnvStringList(t *testing.T) {
	t.Setenv("LIB_TEST_LIST", " a, ,b ,c")
	assert.Equal(t, []string{"a", "b", "c"}, GetEnvStringList("LIB_TEST_LIST", nil))
	t.Setenv("LIB_TEST_LIST", " , ")
	assert.Equal(t, []string{"x"}, GetEnvStringList("LIB_TEST_LIST", []string{"x"}))
}

func TestValidators(t *testing.T) {
	assert.NoError(t, ValidatePositiveDuration(time.Second))
	assert.Error(t, ValidatePositiveDuration(0))

	assert.NoError(t, ValidateDurationRange(time.Minute, time.Second, time.Hour))
	assert.Error(t, ValidateDurationRange(time.Millisecond, time.Second, time.Hour))
	assert.Error(t, ValidateDurationRange(time.Minute, time.Hour, time.Second))

	assert.NoError(t, ValidateIntRange(5, 1, 10))
	assert.Error(t, ValidateIntRange(0, 1, 10))
	assert.Error(t, ValidateIntRange(11, 1, 10))

	assert.NoError(t, ValidateRatio(0))
	assert.NoError(t, ValidateRatio(1))
	assert.Error(t, ValidateRatio(1.5))
}
