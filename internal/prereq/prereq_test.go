package prereq

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errMissing = errors.New("missing")

type mapSource struct {
	dwords  map[string]uint32
	strings map[string]string
}

func (m mapSource) ReadDWORD(name string) (uint32, error) {
	v, ok := m.dwords[name]
	if !ok {
		return 0, errMissing
	}
	return v, nil
}

func (m mapSource) ReadString(name string) (string, error) {
	v, ok := m.strings[name]
	if !ok {
		return "", errMissing
	}
	return v, nil
}

func TestRequirementSatisfied(t *testing.T) {
	req := Requirement{Major: 14, Minor: 40}
	assert.True(t, req.Satisfied(15, 0))
	assert.True(t, req.Satisfied(14, 40))
	assert.True(t, req.Satisfied(14, 44))
	assert.False(t, req.Satisfied(14, 39))
	assert.False(t, req.Satisfied(13, 99))
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		in           string
		major, minor uint32
	}{
		{"v14.44.33816.0", 14, 44},
		{"v14.40", 14, 40},
		{"v15", 15, 0},
		{"v15.", 15, 0},
		{"14.44.1.0", 0, 0},
		{"v", 0, 0},
		{"", 0, 0},
		{"vX.1", 0, 0},
		{"v14.x", 14, 0},
		{"v14.40x", 14, 40},
	}
	for _, tt := range tests {
		major, minor := ParseVersion(tt.in)
		assert.Equal(t, tt.major, major, tt.in)
		assert.Equal(t, tt.minor, minor, tt.in)
	}
}

func TestCheck(t *testing.T) {
	req := Requirement{Major: 14, Minor: 40}
	tests := []struct {
		name string
		src  mapSource
		ok   bool
	}{
		{
			name: "key missing",
			src:  mapSource{},
		},
		{
			name: "not installed",
			src:  mapSource{dwords: map[string]uint32{ValueInstalled: 0, ValueMajor: 14, ValueMinor: 44}},
		},
		{
			name: "numeric new enough",
			src:  mapSource{dwords: map[string]uint32{ValueInstalled: 1, ValueMajor: 14, ValueMinor: 44}},
			ok:   true,
		},
		{
			name: "numeric too old",
			src:  mapSource{dwords: map[string]uint32{ValueInstalled: 1, ValueMajor: 14, ValueMinor: 29}},
		},
		{
			name: "numeric preferred over string",
			src: mapSource{
				dwords:  map[string]uint32{ValueInstalled: 1, ValueMajor: 14, ValueMinor: 29},
				strings: map[string]string{ValueVersion: "v14.44.0.0"},
			},
		},
		{
			name: "string fallback",
			src: mapSource{
				dwords:  map[string]uint32{ValueInstalled: 1, ValueMajor: 14},
				strings: map[string]string{ValueVersion: "v14.44.33816.0"},
			},
			ok: true,
		},
		{
			name: "no version at all",
			src:  mapSource{dwords: map[string]uint32{ValueInstalled: 1}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Check(tt.src, req)
			assert.Equal(t, tt.ok, res.OK)
			if tt.ok {
				assert.Equal(t, "1", res.PropertyValue())
			} else {
				assert.Equal(t, "0", res.PropertyValue())
			}
			assert.NotEmpty(t, res.Reason)
		})
	}
}
