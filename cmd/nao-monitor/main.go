// nao-monitor - watch a robot backend and fan its state out.
//
// The monitor runs a control loop against the configured backend and feeds
// every state to:
//   - the web dashboard (/api/*, /ws/state, /ws/events)
//   - MQTT and Redis, when MQTT_BROKER / REDIS_ADDR are set
//   - the hardware registry, when DATABASE_URL is set
//
// It only watches: without --keepalive nothing is sent to the robot.
// A backend that keeps failing is reconnected.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/teslashibe/go-nidhogg/internal/backend"
	"github.com/teslashibe/go-nidhogg/internal/config"
	"github.com/teslashibe/go-nidhogg/internal/log"
	"github.com/teslashibe/go-nidhogg/pkg/nao"
	"github.com/teslashibe/go-nidhogg/pkg/registry"
	"github.com/teslashibe/go-nidhogg/pkg/robot"
	"github.com/teslashibe/go-nidhogg/pkg/telemetry"
	"github.com/teslashibe/go-nidhogg/pkg/web"
)

var (
	configPath     = kingpin.Flag("config", "Path to a YAML config file").Short('c').String()
	backendArg     = kingpin.Flag("backend", "Backend: lola, sim or remote (overrides config)").Short('b').String()
	monitorAddr    = kingpin.Flag("addr", "Dashboard listen address (overrides config)").String()
	broadcastEvery = kingpin.Flag("broadcast-every", "Push every n-th state to dashboards").Default("8").Int()
	publishEvery   = kingpin.Flag("publish-every", "Publish every n-th state to MQTT/Redis").Default("83").Int()
	rate           = kingpin.Flag("rate", "Loop period; 0 follows the backend").Default("0s").Duration()
	keepalive      = kingpin.Flag("keepalive", "Send a neutral control message every cycle").Bool()
	maxErrors      = kingpin.Flag("max-errors", "Reconnect after this many failed cycles in a row").Default("50").Int()
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
	if *monitorAddr != "" {
		cfg.MonitorAddr = *monitorAddr
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	log.Init(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Println("🤖 nidhogg monitor")
	fmt.Println("==================")

	var dashboard *web.Server
	if cfg.MonitorAddr != "" {
		dashboard = web.NewServer(cfg.MonitorAddr, cfg.Backend, *broadcastEvery)
		dashboard.StartAsync()
		defer dashboard.Shutdown()
		fmt.Printf("📊 Dashboard on %s\n", cfg.MonitorAddr)
	}

	sink := openSinks(ctx, cfg)
	if sink != nil {
		defer sink.Close()
	}

	var reg *registry.Registry
	if cfg.DatabaseURL != "" {
		if reg, err = registry.Open(cfg.DatabaseURL); err != nil {
			log.Warn("registry disabled", "error", err)
		} else {
			defer reg.Close()
			fmt.Println("🗃️  Registry enabled")
		}
	}

	m := &monitor{
		cfg:       cfg,
		dashboard: dashboard,
		sink:      sink,
		registry:  reg,
		snapshots: make(chan telemetry.Snapshot, 16),
	}

	var wg sync.WaitGroup
	if sink != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.publish(ctx)
		}()
	}

	for ctx.Err() == nil {
		err := m.session(ctx)
		if err == nil || ctx.Err() != nil {
			break
		}
		log.Warn("backend session ended", "error", err)
		if dashboard != nil {
			dashboard.SetConnected(false)
			dashboard.AddEvent("error", err.Error())
		}

		select {
		case <-ctx.Done():
		case <-time.After(cfg.RetryInterval):
		}
	}

	close(m.snapshots)
	wg.Wait()
	fmt.Println("\n👋 Monitor stopped")
}

// openSinks connects the configured telemetry sinks. Sinks that fail to
// connect are skipped.
func openSinks(ctx context.Context, cfg config.Config) telemetry.Sink {
	var sinks []telemetry.Sink

	if cfg.MQTTBroker != "" {
		mcfg := telemetry.DefaultMQTTConfig(cfg.MQTTBroker)
		mcfg.ClientID = fmt.Sprintf("nidhogg-monitor-%d", os.Getpid())
		if s, err := telemetry.NewMQTT(mcfg); err != nil {
			log.Warn("MQTT telemetry disabled", "error", err)
		} else {
			sinks = append(sinks, s)
			fmt.Printf("📡 MQTT telemetry to %s\n", cfg.MQTTBroker)
		}
	}

	if cfg.RedisAddr != "" {
		if s, err := telemetry.NewCache(ctx, cfg.RedisAddr, telemetry.DefaultTTL); err != nil {
			log.Warn("Redis cache disabled", "error", err)
		} else {
			sinks = append(sinks, s)
			fmt.Printf("🗄️  State cache in Redis at %s\n", cfg.RedisAddr)
		}
	}

	if len(sinks) == 0 {
		return nil
	}
	return telemetry.NewSampled(telemetry.Multi(sinks...), *publishEvery)
}

type monitor struct {
	cfg       config.Config
	dashboard *web.Server
	sink      telemetry.Sink
	registry  *registry.Registry
	snapshots chan telemetry.Snapshot

	hw nao.HardwareInfo
}

// session connects once and runs the loop until ctx is done or the backend
// keeps failing.
func (m *monitor) session(ctx context.Context) error {
	b, err := backend.Open(ctx, m.cfg)
	if err != nil {
		return err
	}
	defer b.Disconnect()

	m.hw, err = b.ReadHardwareInfo()
	if err != nil {
		return fmt.Errorf("read hardware info: %w", err)
	}
	log.Info("robot connected", "body_id", m.hw.BodyID, "head_id", m.hw.HeadID)
	fmt.Printf("✅ Connected to %s (head %s)\n", m.hw.BodyID, m.hw.HeadID)

	if m.dashboard != nil {
		m.dashboard.SetHardware(m.hw)
		m.dashboard.SetConnected(true)
	}
	if m.registry != nil {
		if r, err := m.registry.Record(ctx, m.hw, m.cfg.Backend); err != nil {
			log.Warn("registry record failed", "error", err)
		} else {
			log.Info("robot recorded", "body_id", r.BodyID, "connections", r.Connections)
		}
	}

	var loop *robot.Loop
	neutral := nao.NewControlMessage()
	handler := func(state nao.State) (nao.ControlMessage, bool) {
		if m.dashboard != nil {
			m.dashboard.UpdateState(state)
			if stats := loop.Stats(); stats.Ticks%83 == 0 {
				m.dashboard.UpdateStats(stats)
			}
		}
		if m.sink != nil {
			select {
			case m.snapshots <- telemetry.NewSnapshot(m.hw, state):
			default:
				// publisher is behind; this state is dropped
			}
		}
		return neutral, *keepalive
	}

	loop = robot.NewLoop(b, handler, *rate)
	loop.MaxConsecutiveErrors = *maxErrors

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			loop.Stop()
		case <-done:
		}
	}()

	err = loop.Run()
	if m.dashboard != nil {
		m.dashboard.UpdateStats(loop.Stats())
	}
	if errors.Is(err, robot.ErrTooManyErrors) {
		return err
	}
	return nil
}

// publish drains snapshots into the sink until the channel is closed.
func (m *monitor) publish(ctx context.Context) {
	for snap := range m.snapshots {
		if err := m.sink.Publish(ctx, snap); err != nil && ctx.Err() == nil {
			log.Warn("telemetry publish failed", "error", err)
		}
	}
}
