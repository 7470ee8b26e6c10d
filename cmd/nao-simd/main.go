// nao-simd - serve the simulated NAO over the remote backend protocol.
//
//	nao-simd --addr :7070
//	NIDHOGG_BACKEND=remote NIDHOGG_REMOTE_URL=ws://localhost:7070/ws/backend nao-hello
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/teslashibe/go-nidhogg/internal/log"
	"github.com/teslashibe/go-nidhogg/pkg/nao"
	"github.com/teslashibe/go-nidhogg/pkg/remote"
	"github.com/teslashibe/go-nidhogg/pkg/sim"
)

var (
	addr     = kingpin.Flag("addr", "Listen address").Default(":7070").String()
	step     = kingpin.Flag("step", "Simulated time per state read").Default("12ms").Duration()
	velocity = kingpin.Flag("velocity", "Max joint velocity at full stiffness, rad/s").Default("6").Float32()
	sonar    = kingpin.Flag("sonar-range", "Distance reported by enabled sonars, m").Default("1.5").Float32()
	ambient  = kingpin.Flag("ambient", "Ambient temperature, °C").Default("27").Float32()
	bodyID   = kingpin.Flag("body-id", "Body id reported by the simulator").Default(sim.DefaultHardware.BodyID).String()
	logLevel = kingpin.Flag("log-level", "debug, info, warn or error").Default("info").Envar("LOG_LEVEL").String()
)

func main() {
	kingpin.Version("0.1")
	kingpin.Parse()
	log.Init(*logLevel)

	hw := sim.DefaultHardware
	hw.BodyID = *bodyID
	backend := sim.New(sim.Config{
		Step:             *step,
		MaxJointVelocity: *velocity,
		SonarRange:       *sonar,
		Ambient:          ambient,
		Hardware:         hw,
	})
	server := remote.NewServer(backend, "sim")

	app := fiber.New(fiber.Config{
		AppName:               "nidhogg simd",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())
	app.Get("/api/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true, "body_id": hw.BodyID})
	})
	server.RegisterAPIRoutes(app.Group("/api"))
	server.RegisterRoutes(app)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		app.ShutdownWithTimeout(2 * time.Second)
	}()

	fmt.Println("🤖 nidhogg simulator")
	fmt.Println("====================")
	fmt.Printf("Body:     %s\n", hw.BodyID)
	fmt.Printf("Step:     %s\n", *step)
	fmt.Printf("Backend:  ws://localhost%s%s\n", *addr, remote.BackendPath)
	fmt.Printf("Joints:   %d\n\n", nao.JointCount)

	if err := app.Listen(*addr); err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}

	server.Close()
	st := server.GetStats()
	fmt.Printf("\n📊 Stats: %d requests (%d failed), %s simulated\n",
		st.RequestsHandled, st.RequestsFailed, backend.Elapsed())
}
