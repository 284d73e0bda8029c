package main

import (
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// operatorLock lets a single operator hold the control socket.
type operatorLock struct {
	lck   sync.Mutex
	inuse bool
}

func (ol *operatorLock) Lock() error {
	ol.lck.Lock()
	defer ol.lck.Unlock()
	if ol.inuse {
		return errors.New("turret is being controlled by another operator")
	}
	ol.inuse = true
	return nil
}

func (ol *operatorLock) Unlock() {
	ol.lck.Lock()
	defer ol.lck.Unlock()
	ol.inuse = false
}

// controlFrame is one joystick sample from the operator.
type controlFrame struct {
	Turn   float64 // between -1 and 1
	Hood   float64
	Launch bool
}

func bound(x float64, min float64, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}

func (a *api) control(w http.ResponseWriter, req *http.Request) {
	err := a.operator.Lock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	defer a.operator.Unlock()

	ws, err := a.upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.Println("ERROR: upgrade websocket:", err)
		return
	}
	defer ws.Close()

	// never leave the base slewing without an operator
	defer a.t.SpinTurret(0)

	for {
		var f controlFrame
		err = ws.ReadJSON(&f)
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Println("ERROR: read control frame:", err)
			}
			return
		}

		a.t.SpinTurret(bound(f.Turn, -1, 1))
		if f.Hood != 0 {
			a.t.ChangeHoodPositionBy(f.Hood)
		}
		if f.Launch {
			a.t.Launch()
		}

		err = ws.WriteJSON(a.t.Status())
		if err != nil {
			log.Println("ERROR: write status:", err)
			return
		}
	}
}
