package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAtoa(t *testing.T) {
	assert.Equal(t, "4.0.1", Atoa("4.0.1"))
	assert.Equal(t, "8", Atoa(8))
	assert.Equal(t, "2048", Atoa(float64(2048)))
	assert.Equal(t, "2.5", Atoa(2.5))
	assert.Equal(t, "true", Atoa(true))
	assert.Equal(t, "", Atoa(nil))
	assert.Equal(t, "", Atoa([]interface{}{"a"}))
}

func TestAll2Int(t *testing.T) {
	tests := []struct {
		in   interface{}
		want int
		ok   bool
	}{
		{float64(4), 4, true},
		{8, 8, true},
		{" 16 ", 16, true},
		{"n/a", 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := All2Int(tt.in)
		assert.Equal(t, tt.want, got, "%v", tt.in)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)
	}
}

func TestAll2Bool(t *testing.T) {
	for _, v := range []interface{}{true, "True", "true", "yes", "1", float64(1)} {
		assert.True(t, All2Bool(v), "%v", v)
	}
	for _, v := range []interface{}{false, "False", "no", "", float64(0), nil} {
		assert.False(t, All2Bool(v), "%v", v)
	}
}

func TestStringsAndAppendUnique(t *testing.T) {
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, Strings([]interface{}{"10.0.0.1", "10.0.0.2"}))
	assert.Nil(t, Strings("10.0.0.1"))
	assert.Equal(t, []string{"a", "b", "c"}, AppendUnique([]string{"a", "b"}, "b", "c", "a"))
}
