package main

import (
	"context"
	"log"
	"time"

	"github.com/mastercactapus/turret/config"
	"github.com/mastercactapus/turret/link"
	"github.com/mastercactapus/turret/sim"
	"github.com/mastercactapus/turret/turret"
)

const simPeriod = 5 * time.Millisecond

func openHardware(ctx context.Context, cfg *config.Config) (turret.Hardware, func(), error) {
	if cfg.Sim {
		rig := sim.NewRig()
		go rig.Run(ctx, simPeriod)
		log.Println("Using simulated hardware.")
		return rig.Hardware(), func() {}, nil
	}

	adapter, err := link.Open(cfg.Board.Port, cfg.Board.Baud, cfg.LinkConfig())
	if err != nil {
		return turret.Hardware{}, nil, err
	}
	log.Println("Connected to controller on", cfg.Board.Port)
	return adapter.Hardware(cfg.Turret.LimitActiveLow), func() { adapter.Close() }, nil
}
