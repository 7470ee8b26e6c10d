// nao-hello - connect to a NAO, print who it is and how it feels, and
// light its left eye for a second.
//
// On the robot:
//
//	nao-hello
//
// Against the simulator:
//
//	nao-hello --backend sim
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/teslashibe/go-nidhogg/internal/backend"
	"github.com/teslashibe/go-nidhogg/internal/config"
	"github.com/teslashibe/go-nidhogg/internal/log"
	"github.com/teslashibe/go-nidhogg/pkg/nao"
)

var (
	configPath = kingpin.Flag("config", "Path to a YAML config file").Short('c').String()
	backendArg = kingpin.Flag("backend", "Backend: lola, sim or remote (overrides config)").Short('b').String()
	retries    = kingpin.Flag("retries", "Connection retries (overrides config)").Default("-1").Int()
	hold       = kingpin.Flag("hold", "How long to keep the eye lit").Default("1s").Duration()
)

func main() {
	kingpin.Version("0.1")
	kingpin.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	if *backendArg != "" {
		cfg.Backend = *backendArg
	}
	if *retries >= 0 {
		cfg.Retries = *retries
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Println("🤖 nidhogg hello")
	fmt.Println("================")

	b, err := backend.Open(ctx, cfg)
	if err != nil {
		fmt.Printf("❌ Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer b.Disconnect()
	fmt.Printf("✅ Connected (%s)\n\n", cfg.Backend)

	hw, err := b.ReadHardwareInfo()
	if err != nil {
		fmt.Printf("❌ Hardware info: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Body: %s (v%s)\n", hw.BodyID, hw.BodyVersion)
	fmt.Printf("Head: %s (v%s)\n\n", hw.HeadID, hw.HeadVersion)

	state, err := b.ReadState()
	if err != nil {
		fmt.Printf("❌ State: %v\n", err)
		os.Exit(1)
	}
	printState(state)

	// LoLA drops a joint's stiffness when it stops hearing from us, so the
	// message is resent every cycle rather than once.
	msg := nao.BuildControl().
		LeftEye(nao.FillLeftEye(nao.Blue)).
		Chest(nao.Green).
		Build()

	fmt.Printf("\n💡 Left eye on for %s...\n", *hold)
	deadline := time.Now().Add(*hold)
	for time.Now().Before(deadline) && ctx.Err() == nil {
		if _, err := b.ReadState(); err != nil {
			fmt.Printf("❌ State: %v\n", err)
			os.Exit(1)
		}
		if err := b.SendControl(msg); err != nil {
			fmt.Printf("❌ Control: %v\n", err)
			os.Exit(1)
		}
	}

	// Lights off before leaving.
	b.ReadState()
	b.SendControl(nao.NewControlMessage())
	fmt.Println("👋 Bye")
}

func printState(s nao.State) {
	fmt.Printf("🔋 Battery: %.0f%% (%.2f A, %.1f °C)\n",
		s.Battery.Charge*100, s.Battery.Current, s.Battery.Temperature)
	fmt.Printf("🦶 FSR: left %.2f kg, right %.2f kg\n",
		s.ForceSensitiveResistors.LeftFoot.Sum(), s.ForceSensitiveResistors.RightFoot.Sum())
	fmt.Printf("📐 Torso: x=%.3f y=%.3f rad\n", s.Angles.X, s.Angles.Y)

	hottest, temp := nao.HeadYaw, float32(0)
	for _, id := range nao.AllJoints() {
		if t, _ := s.Temperature.Get(id); t > temp {
			hottest, temp = id, t
		}
	}
	fmt.Printf("🌡️  Hottest joint: %s at %.1f °C\n", hottest, temp)

	fmt.Println("\nJoint positions (rad):")
	for _, id := range nao.AllJoints() {
		p, _ := s.Position.Get(id)
		fmt.Printf("  %-18s %7.3f\n", id, p)
	}
}
