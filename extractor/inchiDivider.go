package extractor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/chembl/sdf2index/loader"
	"github.com/chembl/sdf2index/sdf"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	// DefaultInchiFields are the data fields searched for a standard InChI
	DefaultInchiFields = []string{"InChI", "INCHI", "STANDARD_INCHI", "PUBCHEM_IUPAC_INCHI"}
	// DefaultInchiKeyFields are the data fields searched for a standard InChIKey
	DefaultInchiKeyFields = []string{"InChIKey", "INCHIKEY", "STANDARD_INCHI_KEY", "PUBCHEM_IUPAC_INCHIKEY"}

	inchiReg = regexp.MustCompile(`^InChI=(?P<version>[^/]*)/(?P<formula>[^/]*)` +
		`(?:/c(?P<connections>[^/]*))?` +
		`(?:/h(?P<hAtoms>[^/]*))?` +
		`(?:/q(?P<charge>[^/]*))?` +
		`(?:/p(?P<protons>[^/]*))?` +
		`(?:/b(?P<stereoDbond>[^/]*))?` +
		`(?:/t(?P<stereoSP3>[^/]*))?` +
		`(?:/m(?P<stereoSP3inverted>[^/]*))?` +
		`(?:/s(?P<stereoType>\d))?` +
		`(?:/i(?P<isotopicAtoms>[^/]*))?` +
		`(?:/h(?P<isotopicExchangeableH>[^/]*))?`)
	formulaLayerReg  = regexp.MustCompile(`^(\d+)?(.*)$`)
	standardLayerReg = regexp.MustCompile(`^(?:(\d+)\*)?(.*)$`)
)

//InchiDivider the InChI on its different layers and components.
type InchiDivider struct {
	Logger    *zap.SugaredLogger
	Fields    []string
	KeyFields []string
}

// FromProperties looks for an InChI and an InChIKey in the data fields of a
// structure. A nil Inchi means the structure has none.
func (ind *InchiDivider) FromProperties(props sdf.Properties) (*loader.Inchi, []loader.Inchi, string, error) {
	key := firstField(props, ind.KeyFields)

	value := firstField(props, ind.Fields)
	if value == "" {
		return nil, nil, key, nil
	}

	i, components, err := ind.ProcessInchi(value)
	if err != nil {
		return nil, nil, key, err
	}
	return &i, components, key, nil
}

// ProcessInchi splits inchi in its layers and, for mixtures, in the InChI of
// every component
func (ind *InchiDivider) ProcessInchi(inchi string) (loader.Inchi, []loader.Inchi, error) {
	logger := ind.Logger

	if len(inchi) < 1 {
		return loader.Inchi{}, nil, errors.New("empty inchi")
	}

	s, err := ind.splitInchi(inchi)
	if err != nil {
		logger.Errorf("Error processing Inchi")
		return loader.Inchi{}, nil, err
	}
	i := loader.Inchi{
		Version:               s["version"],
		Formula:               s["formula"],
		Connections:           s["connections"],
		HAtoms:                s["hAtoms"],
		Charge:                s["charge"],
		Protons:               s["protons"],
		StereoDbond:           s["stereoDbond"],
		StereoSP3:             s["stereoSP3"],
		StereoSP3inverted:     s["stereoSP3inverted"],
		StereoType:            s["stereoType"],
		IsotopicAtoms:         s["isotopicAtoms"],
		IsotopicExchangeableH: s["isotopicExchangeableH"],
		FullStereo:            fmt.Sprintf("%s%s%s%s", s["stereoDbond"], s["stereoSP3"], s["stereoSP3inverted"], s["stereoType"]),
		FullIsotopic:          fmt.Sprintf("%s%s", s["isotopicAtoms"], s["isotopicExchangeableH"]),
		Inchi:                 inchi,
	}

	components, err := ind.extractSubCompounds(i)
	if err != nil {
		logger.Errorf("Error getting subcompounds ")
		return i, nil, err
	}
	logger.Debugw("Split Inchi", "Inchi", i.Inchi, "components", len(components))

	return i, components, nil
}

func (ind *InchiDivider) extractSubCompounds(inchi loader.Inchi) ([]loader.Inchi, error) {
	l := ind.Logger

	formula, err := ind.splitFormulaLayer(inchi.Formula)
	if err != nil {
		return nil, err
	}

	if len(formula) <= 1 {
		return nil, nil
	}

	connection, err := ind.splitStandardLayer(inchi.Connections, len(formula))
	if err != nil {
		return nil, err
	}
	hAtoms, err := ind.splitStandardLayer(inchi.HAtoms, len(formula))
	if err != nil {
		return nil, err
	}
	charge, err := ind.splitStandardLayer(inchi.Charge, len(formula))
	if err != nil {
		return nil, err
	}
	stereoDbond, err := ind.splitStandardLayer(inchi.StereoDbond, len(formula))
	if err != nil {
		return nil, err
	}
	stereoSP3, err := ind.splitStandardLayer(inchi.StereoSP3, len(formula))
	if err != nil {
		return nil, err
	}
	isotopicAtoms, err := ind.splitStandardLayer(inchi.IsotopicAtoms, len(formula))
	if err != nil {
		return nil, err
	}
	inchis := make([]loader.Inchi, len(formula))

	p := map[string][]string{
		"formula":       formula,
		"connection":    connection,
		"hAtoms":        hAtoms,
		"charge":        charge,
		"stereoDbond":   stereoDbond,
		"stereoSP3":     stereoSP3,
		"isotopicAtoms": isotopicAtoms,
	}

	for i := range inchis {
		inchis[i] = ind.buildInchi(p, i)
		inchis[i].Version = inchi.Version
		inchis[i].Protons = inchi.Protons
		if len(inchi.StereoSP3inverted) > 0 {
			if len(inchi.StereoSP3inverted) > i {
				inchis[i].StereoSP3inverted = string(inchi.StereoSP3inverted[i])
			} else {
				return nil, errors.Errorf("more inchis found than stereo sp3 flag on StereoSP3inverted: %s", inchi.Inchi)
			}
		}
		inchis[i].StereoType = inchi.StereoType
		inchis[i].IsotopicExchangeableH = inchi.IsotopicExchangeableH
		inchis[i].FullStereo = fmt.Sprintf("%s%s%s%s", inchis[i].StereoDbond, inchis[i].StereoSP3, inchis[i].StereoSP3inverted, inchi.StereoType)
		inchis[i].FullIsotopic = fmt.Sprintf("%s%s", inchis[i].IsotopicAtoms, inchis[i].IsotopicExchangeableH)
		inchis[i].BuildInchiString()
		l.Debugf("Component inchi: %s", inchis[i].Inchi)
	}
	l.Debugf("Inchi has %d components", len(inchis))

	return inchis, nil
}

func (ind *InchiDivider) buildInchi(layers map[string][]string, pos int) loader.Inchi {
	at := func(name string) string {
		if v := layers[name]; pos < len(v) {
			return v[pos]
		}
		return ""
	}
	return loader.Inchi{
		Formula:       at("formula"),
		Connections:   at("connection"),
		HAtoms:        at("hAtoms"),
		Charge:        at("charge"),
		StereoDbond:   at("stereoDbond"),
		StereoSP3:     at("stereoSP3"),
		IsotopicAtoms: at("isotopicAtoms"),
	}
}

func (ind *InchiDivider) splitFormulaLayer(layer string) ([]string, error) {
	return ind.splitLayer(layer, formulaLayerReg, ".", 0)
}

func (ind *InchiDivider) splitStandardLayer(layer string, ninchi int) ([]string, error) {
	return ind.splitLayer(layer, standardLayerReg, ";", ninchi)
}

func (ind *InchiDivider) splitLayer(layer string, reg *regexp.Regexp, separator string, ninchi int) ([]string, error) {
	log := ind.Logger
	if len(layer) < 1 {
		return make([]string, ninchi), nil
	}
	var inchiLayers []string
	for _, l := range strings.Split(layer, separator) {
		p := reg.FindStringSubmatch(l)
		if p == nil {
			log.Errorf("Error trying to get number of components reg exp: %s layer: %s", reg.String(), l)
			return nil, errors.Errorf("bad layer format: %s", l)
		}
		nmol := p[1]
		if len(nmol) < 1 {
			inchiLayers = append(inchiLayers, p[2])
			continue
		}
		a, err := strconv.Atoi(nmol)
		if err != nil {
			return nil, errors.Wrapf(err, "component count in layer %s", l)
		}
		for i := 0; i < a; i++ {
			inchiLayers = append(inchiLayers, p[2])
		}
	}
	return inchiLayers, nil
}

func (ind *InchiDivider) splitInchi(inchi string) (map[string]string, error) {
	splitted := make(map[string]string)

	res := inchiReg.FindStringSubmatch(inchi)
	if res == nil {
		return splitted, errors.Errorf("bad inchi format: %s", inchi)
	}

	for i, name := range inchiReg.SubexpNames() {
		if i != 0 {
			splitted[name] = res[i]
		}
	}
	return splitted, nil
}

func firstField(props sdf.Properties, fields []string) string {
	for _, f := range fields {
		if v, ok := props.Get(f); ok {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return ""
}
