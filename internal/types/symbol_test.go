package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinMaxArgsCExactArity(t *testing.T) {
	s := Symbol{
		Language: LangC,
		Params:   []Param{{Name: "a"}, {Name: "b"}, {Name: "c"}},
	}
	min, max, unbounded := s.MinMaxArgs()
	assert.Equal(t, 3, min)
	assert.Equal(t, 3, max)
	assert.False(t, unbounded)
}

func TestMinMaxArgsCVariadic(t *testing.T) {
	s := Symbol{
		Language:    LangC,
		Params:      []Param{{Name: "fmt"}},
		VarargsFlag: true,
	}
	_, _, unbounded := s.MinMaxArgs()
	assert.True(t, unbounded)
}

func TestMinMaxArgsPythonDefaults(t *testing.T) {
	s := Symbol{
		Language: LangPython,
		Params: []Param{
			{Name: "a"},
			{Name: "b", Default: "1"},
			{Name: "c", Default: "2"},
		},
	}
	min, max, unbounded := s.MinMaxArgs()
	assert.Equal(t, 1, min)
	assert.Equal(t, 3, max)
	assert.False(t, unbounded)
}

func TestMinMaxArgsPythonVarargsUnbounded(t *testing.T) {
	s := Symbol{
		Language:    LangPython,
		Params:      []Param{{Name: "a"}},
		VarargsFlag: true,
	}
	min, _, unbounded := s.MinMaxArgs()
	assert.Equal(t, 1, min)
	assert.True(t, unbounded)
}

func TestLanguageForPath(t *testing.T) {
	cases := map[string]Language{".c": LangC, ".h": LangC, ".py": LangPython}
	for ext, want := range cases {
		lang, ok := LanguageForPath(ext)
		assert.True(t, ok)
		assert.Equal(t, want, lang)
	}
	_, ok := LanguageForPath(".go")
	assert.False(t, ok)
}
