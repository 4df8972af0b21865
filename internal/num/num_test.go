package num

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptoTA/internal/ports"
)

func TestOf_KeepsShortestRepresentation(t *testing.T) {
	assert.Equal(t, "11.38", Of(11.38).String())
	assert.Equal(t, "0.02", Of(0.02).String())
	assert.True(t, Of(0.1).Add(Of(0.2)).Equal(MustParse("0.3")))
}

func TestDiv(t *testing.T) {
	tests := []struct {
		name    string
		a, b    string
		want    string
		wantErr error
	}{
		{name: "exact", a: "10", b: "4", want: "2.5"},
		{name: "rounded to precision", a: "2", b: "3", want: "0.6666666666666667"},
		{name: "negative", a: "-1", b: "8", want: "-0.125"},
		{name: "zero divisor", a: "1", b: "0", wantErr: ports.ErrDivisionByZero},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Div(MustParse(tt.a), MustParse(tt.b))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(MustParse(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestMinMax(t *testing.T) {
	a, b := MustParse("1.5"), MustParse("-2")
	assert.True(t, Min(a, b).Equal(b))
	assert.True(t, Max(a, b).Equal(a))
	assert.True(t, Min(a, a).Equal(a))
}

func TestParse(t *testing.T) {
	d, err := Parse("18.3548")
	require.NoError(t, err)
	assert.Equal(t, 18.3548, Float(d))

	_, err = Parse("abc")
	assert.Error(t, err)
}
