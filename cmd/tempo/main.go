package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/TheSmallBoat/tempo/harness"
	"github.com/TheSmallBoat/tempo/rate"
	"github.com/TheSmallBoat/tempo/transport"
)

func main() {
	defaults := harness.DefaultSettings()

	pChannel := flag.String("C", defaults.PubChannel, "publisher channel")
	sChannel := flag.String("c", defaults.SubChannel, "subscriber channel")
	pStreamID := flag.Uint("S", uint(defaults.PubStreamID), "publisher stream id")
	sStreamID := flag.Uint("s", uint(defaults.SubStreamID), "subscriber stream id")
	messages := flag.Int64("m", defaults.Messages, "number of messages")
	length := flag.Int("L", defaults.MessageLength, "length of messages in bytes")
	linger := flag.Int("l", 0, "linger timeout in milliseconds")
	frags := flag.Int("f", defaults.FragmentLimit, "fragment count limit per poll")
	progress := flag.Bool("P", false, "print rate progress while sending")
	delay := flag.Int("d", 0, "subscriber delay in microseconds")
	flag.Parse()

	settings := harness.Settings{
		PubChannel:    *pChannel,
		PubStreamID:   uint32(*pStreamID),
		SubChannel:    *sChannel,
		SubStreamID:   uint32(*sStreamID),
		Messages:      *messages,
		MessageLength: *length,
		Linger:        time.Duration(*linger) * time.Millisecond,
		FragmentLimit: *frags,
		Progress:      *progress,
		PollDelay:     time.Duration(*delay) * time.Microsecond,
	}

	if err := settings.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Subscribing to channel %s on stream id %d\n", settings.SubChannel, settings.SubStreamID)
	fmt.Printf("Streaming %d messages of payload length %d bytes to %s on stream id %d\n",
		settings.Messages, settings.MessageLength, settings.PubChannel, settings.PubStreamID)

	bus := &transport.Bus{}
	sub := bus.AddSubscription(settings.SubChannel, settings.SubStreamID)
	pub := bus.AddPublication(settings.PubChannel, settings.PubStreamID)

	coord := harness.NewCoordinator()
	defer coord.Shutdown()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		coord.Stop()
	}()

	controller := &harness.RoundController{
		Settings: settings,
		Pub:      harness.Publish(pub),
		Coord:    coord,
		Confirm:  confirmFunc(coord),
	}

	reporter := rate.NewReporter(rate.DefaultInterval, func(s rate.Sample) {
		if !controller.PrintingActive() {
			return
		}
		fmt.Printf("%.4g msgs/sec, %.4g bytes/sec, totals %d messages %d MB payloads\n",
			s.MessagesPerSec, s.BytesPerSec, s.TotalMessages, s.TotalBytes/(1024*1024))
	})

	assembler := transport.NewAssembler(func(buf []byte, _ transport.Header) {
		reporter.OnMessage(1, int64(len(buf)))
	})

	subscriber := &harness.Subscriber{
		Sub:           sub,
		FragmentLimit: settings.FragmentLimit,
		Delay:         settings.PollDelay,
	}
	coord.StartSubscriber(func() error {
		return subscriber.Drain(coord, assembler.OnFragment)
	})

	if settings.Progress {
		coord.StartReporter(reporter)
		controller.Policy = rate.PeriodicBackground()
	} else {
		controller.Policy = rate.OnDemandPerRound(reporter)
	}

	err := controller.Run()
	coord.Shutdown()

	if err == nil {
		err = coord.SubscriberErr()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "FAILED: %v\n", err)
		os.Exit(1)
	}
}

func confirmFunc(coord *harness.Coordinator) func() bool {
	reader := bufio.NewReader(os.Stdin)
	return func() bool {
		fmt.Print("Execute again? (y/n): ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return coord.Running()
		}
		return false
	}
}
