package main

import (
	"encoding/json"
	"io/ioutil"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	sse "github.com/alexandrevicenzi/go-sse"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/mastercactapus/turret/turret"
)

// Turret is the command surface the API drives.
type Turret interface {
	Launch() bool
	Reset() bool
	SpinTurret(power float64) float64
	ChangeHoodPositionBy(speed float64) bool
	Status() turret.Status
	Changes() <-chan turret.Transition
}

type api struct {
	http.Handler
	t   Turret
	sse *sse.Server

	operator operatorLock
	upgrader websocket.Upgrader

	done chan struct{}
}

func newAPI(t Turret, statusInterval time.Duration) *api {
	r := mux.NewRouter()

	a := &api{
		Handler: r,
		t:       t,
		sse: sse.NewServer(&sse.Options{
			Logger: log.New(ioutil.Discard, "", 0),
		}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		done: make(chan struct{}),
	}

	r.HandleFunc("/api/status", a.status).Methods("GET")
	r.HandleFunc("/api/launch", a.launch).Methods("POST")
	r.HandleFunc("/api/reset", a.reset).Methods("POST")
	r.HandleFunc("/api/spin", a.spin).Methods("POST")
	r.HandleFunc("/api/hood", a.hood).Methods("POST")
	r.HandleFunc("/control", a.control)
	r.PathPrefix("/events/").Handler(a.sse)

	go a.publishLoop(statusInterval)

	return a
}

func (a *api) Close() {
	close(a.done)
	a.sse.Shutdown()
}

func (a *api) publishLoop(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-a.done:
			return
		case tr := <-a.t.Changes():
			log.Printf("Turret: %s -> %s", tr.From, tr.To)
		case <-t.C:
		}
		a.publish(a.t.Status())
	}
}

func (a *api) publish(st turret.Status) {
	data, err := json.Marshal(st)
	if err != nil {
		log.Printf("ERROR: marshal json: %+v", err)
		return
	}
	a.sse.SendMessage("/events/state", sse.SimpleMessage(string(data)))
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		log.Println("ERROR: encode:", err)
	}
}

func (a *api) status(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, a.t.Status())
}

func (a *api) launch(w http.ResponseWriter, req *http.Request) {
	if !a.t.Launch() {
		http.Error(w, "turret busy: "+a.t.Status().State.String(), http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusAccepted, a.t.Status())
}

func (a *api) reset(w http.ResponseWriter, req *http.Request) {
	if !a.t.Reset() {
		http.Error(w, "turret not stalled", http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, a.t.Status())
}

// parseFinite reads a form value that must be a finite number.
func parseFinite(req *http.Request, name string) (float64, bool) {
	val, err := strconv.ParseFloat(req.FormValue(name), 64)
	if err != nil || math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, false
	}
	return val, true
}

// parsePower reads a form value that must lie in [-1, 1].
func parsePower(req *http.Request, name string) (float64, bool) {
	val, ok := parseFinite(req, name)
	if !ok || val < -1 || val > 1 {
		return 0, false
	}
	return val, true
}

func (a *api) spin(w http.ResponseWriter, req *http.Request) {
	power, ok := parsePower(req, "power")
	if !ok {
		http.Error(w, "power must be a number in [-1,1]", http.StatusBadRequest)
		return
	}
	applied := a.t.SpinTurret(power)
	writeJSON(w, http.StatusOK, struct {
		Applied       float64
		TurnDirection turret.TurnDirection
	}{applied, a.t.Status().TurnDirection})
}

func (a *api) hood(w http.ResponseWriter, req *http.Request) {
	speed, ok := parseFinite(req, "speed")
	if !ok {
		http.Error(w, "speed must be a finite number", http.StatusBadRequest)
		return
	}
	applied := a.t.ChangeHoodPositionBy(speed)
	writeJSON(w, http.StatusOK, struct {
		Applied   bool
		HoodAngle float64
	}{applied, a.t.Status().HoodAngle})
}
