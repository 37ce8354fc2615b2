package publish

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mittoalb/tomolog-cli/internal/config"
	"github.com/mittoalb/tomolog-cli/internal/scan"
)

func metaFixture() scan.Meta {
	return scan.Meta{
		scan.KeyResolution:    {Num: 0.65, IsNum: true, Units: "um"},
		scan.KeyPixelSize:     {Num: 3.45, IsNum: true, Units: "um"},
		scan.KeyBinning:       {Num: 2, IsNum: true},
		scan.KeyMagnification: {Str: "10x"},
	}
}

func TestForBeamline(t *testing.T) {
	for name, want := range map[string]string{
		"":      "generic",
		"2-bm":  "2-bm",
		"7-bm":  "7-bm",
		"32-id": "32-id",
	} {
		b, err := ForBeamline(name)
		require.NoError(t, err)
		assert.Equal(t, want, b.Name())
	}

	_, err := ForBeamline("8-id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown beamline")
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"2-bm", "32-id", "7-bm"}, Names())
}

func TestGenericResolutionScalesWithBinning(t *testing.T) {
	s := &Session{Meta: metaFixture()}
	g := &Generic{}
	assert.InDelta(t, 1.3, g.resolution(s), 1e-9)
	assert.InDelta(t, 2.6, g.ReconResolution(s, 2), 1e-9)
}

func TestBM7UsesPixelSize(t *testing.T) {
	s := &Session{Meta: metaFixture()}
	b := &BM7{}
	assert.InDelta(t, 6.9, b.resolution(s), 1e-9)
	assert.InDelta(t, 6.9, b.ReconResolution(s, 1), 1e-9)
}

func TestID32NanoResolution(t *testing.T) {
	s := &Session{Meta: scan.Meta{
		scan.KeyResolution: {Num: 22, IsNum: true, Units: "nm"},
	}}
	i := &ID32{}
	assert.InDelta(t, 0.022, i.nanoResolution(s), 1e-9)
	assert.InDelta(t, 0.044, i.ReconResolution(s, 2), 1e-9)
}

func TestBM2PrepareDetectsDoubleFOV(t *testing.T) {
	cfg := &config.ScanConfig{}
	b := &BM2{}

	s := &Session{Meta: scan.Meta{scan.KeySampleInX: {Num: 0, IsNum: true}}}
	require.NoError(t, b.Prepare(s, cfg))
	assert.False(t, s.DoubleFOV)

	s = &Session{Meta: scan.Meta{scan.KeySampleInX: {Num: 3.2, IsNum: true}}}
	require.NoError(t, b.Prepare(s, cfg))
	assert.True(t, s.DoubleFOV)
}

func TestMagnification(t *testing.T) {
	m := scan.Meta{scan.KeyMagnification: {Str: "10x"}}
	v, err := magnification(m)
	require.NoError(t, err)
	assert.Equal(t, 10.0, v)

	m = scan.Meta{scan.KeyMagnification: {Str: " 5 "}}
	v, err = magnification(m)
	require.NoError(t, err)
	assert.Equal(t, 5.0, v)

	_, err = magnification(scan.Meta{})
	assert.Error(t, err)

	_, err = magnification(scan.Meta{scan.KeyMagnification: {Str: "n/a"}})
	assert.Error(t, err)
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "1500", scan.Value{Num: 1500, IsNum: true}.String())
	assert.Equal(t, "0.65", scan.Value{Num: 0.65, IsNum: true}.String())
	assert.Equal(t, "in situ", scan.Value{Str: "in situ"}.String())
}

func TestScanFailureNote(t *testing.T) {
	invalid := fmt.Errorf("exchange/data has 2 dimensions, want 3: %w", scan.ErrInvalidData)
	note := scanFailureNote(invalid)
	assert.Equal(t, "Data set is invalid", note.text)
	assert.Equal(t, 270.0, note.x)
	assert.Equal(t, 0.0, note.y)

	truncated := scanFailureNote(errors.New("failed to open scan.h5"))
	assert.Equal(t, "Unable to open file (truncated file)", truncated.text)
	assert.Equal(t, 350.0, truncated.x)
}
