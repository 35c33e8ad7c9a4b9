package denonavr

// Status is a point in time reading of a zone
type Status struct {
	Zone   string  `json:"zone"`
	Power  bool    `json:"power"`
	Volume float64 `json:"volume"`
	Source Source  `json:"source,omitempty"`
	Mute   *bool   `json:"mute,omitempty"`
}

// QueryStatus reads power, volume and source from z, and mute if z supports
// it.  Volume and source are only read while the zone is powered on, a zone
// in standby does not report them reliably.
func QueryStatus(z Zone) (status Status, err error) {
	status.Zone = z.Name()
	status.Power, err = z.PoweredOn()
	if err != nil || !status.Power {
		return status, err
	}

	if status.Volume, err = z.Volume(); err != nil {
		return status, err
	}

	if status.Source, err = z.Source(); err != nil {
		return status, err
	}

	if muter, ok := z.(Muter); ok {
		muted, err := muter.Muted()
		if err != nil {
			return status, err
		}
		status.Mute = &muted
	}
	return status, nil
}
