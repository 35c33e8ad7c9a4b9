package denonavr

import (
	"fmt"
	"sort"
	"strings"
)

// Model describes what a particular receiver supports.  Zones lists the
// prefixes of the auxiliary zones, the main zone is always present.
type Model struct {
	Name    string
	Zones   []string
	Sources []Source
}

// AVR3805 returns the configuration of the Denon AVR-3805
func AVR3805() Model {
	return Model{
		Name:  "AVR-3805",
		Zones: []string{"Z1", "Z2"},
		Sources: []Source{
			SourcePhono, SourceCD, SourceTuner, SourceDVD, SourceVDP,
			SourceTV, SourceDBS, SourceVCR1, SourceVCR2, SourceVAux,
			SourceCDRTape1,
		},
	}
}

// AVC3890 returns the configuration of the Denon AVC-3890
func AVC3890() Model {
	return Model{
		Name:  "AVC-3890",
		Zones: []string{"Z1", "Z2"},
		Sources: []Source{
			SourcePhono, SourceCD, SourceTuner, SourceDVD, SourceVDP,
			SourceTV, SourceDBS, SourceVCR1, SourceVCR2, SourceVCR3,
			SourceVAux, SourceCDRTape1, SourceMDTape2,
		},
	}
}

var models = map[string]func() Model{
	"avr-3805": AVR3805,
	"avc-3890": AVC3890,
}

// Models returns the names of the built in models
func Models() []string {
	names := []string{}
	for _, model := range models {
		names = append(names, model().Name)
	}
	sort.Strings(names)
	return names
}

// LookupModel finds a built in model by name, ignoring case.  The dash is
// optional so "avr3805" works as well as "AVR-3805".
func LookupModel(name string) (Model, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if fn, found := models[key]; found {
		return fn(), nil
	}
	if len(key) > 3 {
		if fn, found := models[key[:3]+"-"+key[3:]]; found {
			return fn(), nil
		}
	}
	return Model{}, fmt.Errorf("%w: unknown model %q", ErrInvalidArgument, name)
}
