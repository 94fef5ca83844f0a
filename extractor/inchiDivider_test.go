package extractor

import (
	"testing"

	"github.com/chembl/sdf2index/sdf"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newDivider() *InchiDivider {
	return &InchiDivider{
		Logger:    zap.NewNop().Sugar(),
		Fields:    DefaultInchiFields,
		KeyFields: DefaultInchiKeyFields,
	}
}

func TestProcessInchi_Single(t *testing.T) {
	i, components, err := newDivider().ProcessInchi("InChI=1S/C2H6O/c1-2-3/h3H,2H2,1H3")
	require.NoError(t, err)
	assert.Equal(t, "1S", i.Version)
	assert.Equal(t, "C2H6O", i.Formula)
	assert.Equal(t, "1-2-3", i.Connections)
	assert.Equal(t, "3H,2H2,1H3", i.HAtoms)
	assert.Nil(t, components)
}

func TestProcessInchi_Stereo(t *testing.T) {
	in := "InChI=1S/C3H7NO2/c1-2(4)3(5)6/h2H,4H2,1H3,(H,5,6)/t2-/m0/s1"
	i, _, err := newDivider().ProcessInchi(in)
	require.NoError(t, err)
	assert.Equal(t, "2-", i.StereoSP3)
	assert.Equal(t, "0", i.StereoSP3inverted)
	assert.Equal(t, "1", i.StereoType)
	assert.Equal(t, "2-01", i.FullStereo)
	assert.Equal(t, in, i.BuildInchiString())
}

func TestProcessInchi_Mixture(t *testing.T) {
	_, components, err := newDivider().ProcessInchi("InChI=1S/C2H6O.ClH/c1-2-3;/h3H,2H2,1H3;1H")
	require.NoError(t, err)
	require.Len(t, components, 2)
	assert.Equal(t, "InChI=1S/C2H6O/c1-2-3/h3H,2H2,1H3", components[0].Inchi)
	assert.Equal(t, "InChI=1S/ClH/h1H", components[1].Inchi)
}

func TestProcessInchi_RepeatedComponent(t *testing.T) {
	_, components, err := newDivider().ProcessInchi("InChI=1S/2ClH.Ca/h2*1H;/q;;+2/p-2")
	require.NoError(t, err)
	require.Len(t, components, 3)
	assert.Equal(t, "ClH", components[0].Formula)
	assert.Equal(t, "ClH", components[1].Formula)
	assert.Equal(t, "Ca", components[2].Formula)
	assert.Equal(t, "1H", components[1].HAtoms)
	assert.Equal(t, "+2", components[2].Charge)
	assert.Equal(t, "-2", components[2].Protons)
}

func TestProcessInchi_Errors(t *testing.T) {
	_, _, err := newDivider().ProcessInchi("")
	assert.Error(t, err)

	_, _, err = newDivider().ProcessInchi("not an inchi")
	assert.Error(t, err)
}

func TestFromProperties(t *testing.T) {
	d := newDivider()

	i, _, key, err := d.FromProperties(sdf.Properties{{Name: "PUBCHEM_IUPAC_INCHIKEY", Value: "KEY"}})
	require.NoError(t, err)
	assert.Nil(t, i)
	assert.Equal(t, "KEY", key)

	i, _, _, err = d.FromProperties(sdf.Properties{{Name: "STANDARD_INCHI", Value: " InChI=1S/CH4/h1H4\n"}})
	require.NoError(t, err)
	require.NotNil(t, i)
	assert.Equal(t, "CH4", i.Formula)

	_, _, _, err = d.FromProperties(sdf.Properties{{Name: "InChI", Value: "garbage"}})
	assert.Error(t, err)
}

func TestPropertySmilesExtractor(t *testing.T) {
	s := sdf.Structure{Name: "x", Properties: sdf.Properties{
		{Name: "SMILES", Value: ""},
		{Name: "PUBCHEM_OPENEYE_CAN_SMILES", Value: "CCO ethanol"},
	}}
	v, err := PropertySmilesExtractor{}.ExtractSmiles(s)
	require.NoError(t, err)
	assert.Equal(t, "CCO", v)

	v, err = PropertySmilesExtractor{Fields: []string{"MY_SMILES"}}.ExtractSmiles(s)
	assert.Equal(t, "", v)
	assert.True(t, errors.Is(err, ErrNoSmiles))
}
