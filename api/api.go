package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/abates/denonavr"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

var ErrNotMutable = errors.New("zone can not be muted")

// ParseOnOff accepts anything strconv.ParseBool does plus "on" and "off"
func ParseOnOff(str string) (bool, error) {
	switch str {
	case "on", "ON":
		return true, nil
	case "off", "OFF", "standby":
		return false, nil
	}
	return strconv.ParseBool(str)
}

type api struct {
	avr *denonavr.Receiver
	log zerolog.Logger
}

// New returns a router exposing avr over HTTP
func New(avr *denonavr.Receiver, logger zerolog.Logger) *mux.Router {
	a := &api{avr: avr, log: logger}

	r := mux.NewRouter()
	r.HandleFunc("/zones", a.listZones).Methods("GET")
	r.HandleFunc("/sources", a.listSources).Methods("GET")
	r.HandleFunc("/power", a.power).Methods("GET")
	r.HandleFunc("/power/{power}", a.setPower).Methods("PUT")
	r.HandleFunc("/{zone}/status", a.zoneHandler(a.status)).Methods("GET")
	r.HandleFunc("/{zone}/power/{power}", a.zoneHandler(a.setZonePower)).Methods("PUT")
	r.HandleFunc("/{zone}/volume/{level}", a.zoneHandler(a.setVolume)).Methods("PUT")
	r.HandleFunc("/{zone}/step/{direction}", a.zoneHandler(a.step)).Methods("PUT")
	r.HandleFunc("/{zone}/source/{source:.+}", a.zoneHandler(a.setSource)).Methods("PUT")
	r.HandleFunc("/{zone}/mute/{mute}", a.zoneHandler(a.setMute)).Methods("PUT")

	return r
}

func (a *api) reply(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func (a *api) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, denonavr.ErrInvalidArgument), errors.Is(err, ErrNotMutable):
		status = http.StatusBadRequest
	case errors.Is(err, denonavr.ErrUnknownZone):
		status = http.StatusNotFound
	case errors.Is(err, denonavr.ErrInvalidResponse):
		status = http.StatusBadGateway
	}
	if status >= http.StatusInternalServerError {
		a.log.Error().Err(err).Msg("Receiver request failed")
	} else {
		a.log.Debug().Err(err).Msg("Rejected request")
	}
	http.Error(w, err.Error(), status)
}

func (a *api) listZones(w http.ResponseWriter, r *http.Request) {
	names := []string{}
	for _, zone := range a.avr.AllZones() {
		names = append(names, zone.Name())
	}
	a.reply(w, names)
}

func (a *api) listSources(w http.ResponseWriter, r *http.Request) {
	a.reply(w, a.avr.Sources())
}

func (a *api) power(w http.ResponseWriter, r *http.Request) {
	on, err := a.avr.PoweredOn()
	if err != nil {
		a.fail(w, err)
		return
	}
	a.reply(w, map[string]bool{"power": on})
}

func (a *api) setPower(w http.ResponseWriter, r *http.Request) {
	on, err := ParseOnOff(mux.Vars(r)["power"])
	if err != nil {
		a.fail(w, fmt.Errorf("%w: power %v", denonavr.ErrInvalidArgument, err))
		return
	}
	if on {
		err = a.avr.PowerOn()
	} else {
		err = a.avr.PowerOff()
	}
	a.done(w, err)
}

func (a *api) done(w http.ResponseWriter, err error) {
	if err != nil {
		a.fail(w, err)
		return
	}
	a.reply(w, struct{}{})
}

func (a *api) zoneHandler(handler func(denonavr.Zone, http.ResponseWriter, *http.Request)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		zone, err := a.avr.Zone(mux.Vars(r)["zone"])
		if err != nil {
			a.fail(w, err)
			return
		}
		handler(zone, w, r)
	}
}

func (a *api) status(zone denonavr.Zone, w http.ResponseWriter, r *http.Request) {
	status, err := denonavr.QueryStatus(zone)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.reply(w, status)
}

func (a *api) setZonePower(zone denonavr.Zone, w http.ResponseWriter, r *http.Request) {
	on, err := ParseOnOff(mux.Vars(r)["power"])
	if err != nil {
		a.fail(w, fmt.Errorf("%w: power %v", denonavr.ErrInvalidArgument, err))
		return
	}
	if on {
		err = zone.PowerOn()
	} else {
		err = zone.PowerOff()
	}
	a.done(w, err)
}

func (a *api) setVolume(zone denonavr.Zone, w http.ResponseWriter, r *http.Request) {
	level, err := strconv.ParseFloat(mux.Vars(r)["level"], 64)
	if err != nil {
		a.fail(w, fmt.Errorf("%w: volume %v", denonavr.ErrInvalidArgument, err))
		return
	}
	a.done(w, zone.SetVolume(level))
}

// step moves the volume one notch.  Pass ?confirm=true to wait for the
// receiver to acknowledge.
func (a *api) step(zone denonavr.Zone, w http.ResponseWriter, r *http.Request) {
	confirm := false
	if v := r.URL.Query().Get("confirm"); v != "" {
		var err error
		if confirm, err = strconv.ParseBool(v); err != nil {
			a.fail(w, fmt.Errorf("%w: confirm %v", denonavr.ErrInvalidArgument, err))
			return
		}
	}

	switch dir := mux.Vars(r)["direction"]; dir {
	case "up":
		a.done(w, zone.VolumeUp(confirm))
	case "down":
		a.done(w, zone.VolumeDown(confirm))
	default:
		a.fail(w, fmt.Errorf("%w: direction %q", denonavr.ErrInvalidArgument, dir))
	}
}

func (a *api) setSource(zone denonavr.Zone, w http.ResponseWriter, r *http.Request) {
	a.done(w, zone.SetSource(denonavr.Source(mux.Vars(r)["source"])))
}

func (a *api) setMute(zone denonavr.Zone, w http.ResponseWriter, r *http.Request) {
	muter, ok := zone.(denonavr.Muter)
	if !ok {
		a.fail(w, fmt.Errorf("%w: %s", ErrNotMutable, zone.Name()))
		return
	}
	mute, err := ParseOnOff(mux.Vars(r)["mute"])
	if err != nil {
		a.fail(w, fmt.Errorf("%w: mute %v", denonavr.ErrInvalidArgument, err))
		return
	}
	if mute {
		err = muter.Mute()
	} else {
		err = muter.Unmute()
	}
	a.done(w, err)
}
