package denonavr

// Source is an input name as the receiver spells it on the wire
type Source string

const (
	SourcePhono    Source = "PHONO"
	SourceCD       Source = "CD"
	SourceTuner    Source = "TUNER"
	SourceDVD      Source = "DVD"
	SourceVDP      Source = "VDP"
	SourceTV       Source = "TV"
	SourceDBS      Source = "DBS/SAT"
	SourceVCR1     Source = "VCR-1"
	SourceVCR2     Source = "VCR-2"
	SourceVCR3     Source = "VCR-3"
	SourceVAux     Source = "V.AUX"
	SourceCDRTape1 Source = "CDR/TAPE1"
	SourceMDTape2  Source = "MD/TAPE2"
)

func (s Source) String() string {
	return string(s)
}
