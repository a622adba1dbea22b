package harness

import (
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/TheSmallBoat/tempo/idle"
	"github.com/TheSmallBoat/tempo/rate"
)

// RoundController drives measurement rounds to completion and decides
// whether to run another. The subscriber and any background reporter are
// started once, outside of it; it only owns the send side of each round.
type RoundController struct {
	Settings Settings

	Pub    Publication
	Policy rate.ReportingPolicy
	Coord  *Coordinator
	Idle   idle.Strategy

	// Confirm is the "Execute again?" decision point. Nil means one round.
	Confirm func() bool

	printing uint32
}

// PrintingActive reports whether periodic rate output should be shown.
// True only while a round is in progress (sending or lingering).
func (c *RoundController) PrintingActive() bool {
	return atomic.LoadUint32(&c.printing) == 1
}

// Run validates the configured message length against the transport once,
// then executes rounds until shutdown or the operator declines to repeat.
func (c *RoundController) Run() error {
	if max := c.Pub.MaxPayloadLength(); c.Settings.MessageLength > max {
		return fmt.Errorf("tryClaim limit: message length %d exceeds max payload length %d, use offer or increase MTU",
			c.Settings.MessageLength, max)
	}

	for {
		if err := c.round(); err != nil {
			return err
		}
		if !c.Coord.Running() || c.Confirm == nil || !c.Confirm() {
			return nil
		}
	}
}

func (c *RoundController) round() error {
	atomic.StoreUint32(&c.printing, 1)
	defer atomic.StoreUint32(&c.printing, 0)

	if c.Policy != nil {
		c.Policy.BeginRound()
	}

	publisher := &Publisher{Pub: c.Pub, Idle: c.Idle}
	backPressure, err := publisher.Stream(c.Coord, c.Settings.Messages, c.Settings.MessageLength)
	if err != nil {
		return err
	}

	if c.Policy != nil {
		c.Policy.EndRound()
	}

	log.Printf("Done streaming. Back pressure ratio %v", BackPressureRatio(backPressure, c.Settings.Messages))

	if c.Coord.Running() && c.Settings.Linger > 0 {
		log.Printf("Lingering for %s.", c.Settings.Linger)
		time.Sleep(c.Settings.Linger)
	}

	return nil
}
