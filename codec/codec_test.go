package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	Dim    int         `json:"dim"`
	Rows   [][]float64 `json:"rows"`
	Labels []string    `json:"labels"`
}

func sample() fixture {
	return fixture{
		Dim: 3,
		Rows: [][]float64{
			{0.1, 0.2, 0.3, 51.2, -3.4, 7.7},
			{0.9, 0.8, 0.7, 88.1, 2.2, -1.0},
		},
		Labels: []string{"a", "b"},
	}
}

func TestRoundTrip(t *testing.T) {
	codecs := []Codec{
		JSON{},
		Gzip{Inner: JSON{}},
		LZ4{Inner: JSON{}},
	}

	for _, c := range codecs {
		t.Run(c.Name(), func(t *testing.T) {
			in := sample()
			data, err := c.Marshal(in)
			require.NoError(t, err)

			var out fixture
			require.NoError(t, c.Unmarshal(data, &out))
			assert.Equal(t, in, out)
		})
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "json+gzip", "json+lz4"} {
		c, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, c.Name())
	}

	_, ok := ByName("msgpack")
	assert.False(t, ok)
}

func TestWrapperDefaults(t *testing.T) {
	// Zero-value wrappers fall back to the default inner codec.
	in := sample()
	data, err := Gzip{}.Marshal(in)
	require.NoError(t, err)

	var out fixture
	require.NoError(t, Gzip{}.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestMustMarshal(t *testing.T) {
	assert.NotPanics(t, func() { MustMarshal(nil, sample()) })
	assert.Panics(t, func() { MustMarshal(JSON{}, make(chan int)) })
}
