package vedic

import (
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/astrachart/astrachart/pkg/errors"
)

func vargaSignOf(t *testing.T, varga string, lon float64) string {
	t.Helper()
	out, err := ComputeVargas(map[string]float64{"x": lon}, []string{varga})
	require.NoError(t, err)
	require.Len(t, out[varga], 1)
	return out[varga][0].Sign
}

func TestComputeVargasRasi(t *testing.T) {
	require.Equal(t, "aries", vargaSignOf(t, "d1", 15))
	require.Equal(t, "pisces", vargaSignOf(t, "d1", 355))
}

func TestComputeVargasHora(t *testing.T) {
	// Odd signs: first half leo, second half cancer; even signs reversed.
	require.Equal(t, "leo", vargaSignOf(t, "d2", 10))
	require.Equal(t, "cancer", vargaSignOf(t, "d2", 20))
	require.Equal(t, "cancer", vargaSignOf(t, "d2", 40))
	require.Equal(t, "leo", vargaSignOf(t, "d2", 55))
}

func TestComputeVargasDrekkana(t *testing.T) {
	require.Equal(t, "aries", vargaSignOf(t, "d3", 5))
	require.Equal(t, "leo", vargaSignOf(t, "d3", 15))
	require.Equal(t, "sagittarius", vargaSignOf(t, "d3", 25))
}

func TestComputeVargasNavamsa(t *testing.T) {
	require.Equal(t, "aries", vargaSignOf(t, "d9", 0))
	require.Equal(t, "leo", vargaSignOf(t, "d9", 15))
	// Taurus 15 sits in the fifth navamsa counted from capricorn.
	require.Equal(t, "taurus", vargaSignOf(t, "d9", 45))
}

func TestComputeVargasDasamsa(t *testing.T) {
	// Aries, third tenth.
	require.Equal(t, "gemini", vargaSignOf(t, "d10", 7))
	// Even signs count from the ninth sign onward: scorpio opens on cancer.
	require.Equal(t, "cancer", vargaSignOf(t, "d10", 210))
}

func TestComputeVargasDvadasamsa(t *testing.T) {
	// Aries, fifth twelfth.
	require.Equal(t, "leo", vargaSignOf(t, "d12", 10))
	// Cancer, last twelfth.
	require.Equal(t, "gemini", vargaSignOf(t, "d12", 117.5))
}

func TestComputeVargasMultipleObjectsSorted(t *testing.T) {
	out, err := ComputeVargas(map[string]float64{
		"sun":  100,
		"moon": 95.5,
		"mars": 200,
	}, []string{"d1", "d9"})
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Len(t, out["d9"], 3)
	require.Equal(t, "mars", out["d9"][0].Object)
	require.Equal(t, "moon", out["d9"][1].Object)
	require.Equal(t, "sun", out["d9"][2].Object)
}

func TestComputeVargasUnknownName(t *testing.T) {
	_, err := ComputeVargas(map[string]float64{"sun": 10}, []string{"d60"})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestComputeVargasEmptyRequest(t *testing.T) {
	out, err := ComputeVargas(map[string]float64{"sun": 10}, nil)
	require.NoError(t, err)
	require.Nil(t, out)
}

func TestValidVargas(t *testing.T) {
	require.Equal(t, []string{"d1", "d10", "d12", "d2", "d3", "d9"}, ValidVargas())
	require.True(t, IsValidVarga("d9"))
	require.False(t, IsValidVarga("d45"))
}
