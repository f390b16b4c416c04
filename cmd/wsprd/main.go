// Command wsprd is the WSPR receive daemon: it captures one slot of audio
// per two-minute WSPR cycle, decodes it, and fans results out to wsprnet.org,
// MQTT, a websocket dashboard, and Prometheus. Grounded on the teacher's
// kiwi_wspr/main.go: pflag CLI, a config-file mode vs. a version flag, and
// a main goroutine that blocks on an OS signal for graceful shutdown.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cwsl/wsprgo/internal/archive"
	"github.com/cwsl/wsprgo/internal/audiosource"
	"github.com/cwsl/wsprgo/internal/config"
	"github.com/cwsl/wsprgo/internal/geo"
	"github.com/cwsl/wsprgo/internal/health"
	"github.com/cwsl/wsprgo/internal/mcpserver"
	"github.com/cwsl/wsprgo/internal/metrics"
	"github.com/cwsl/wsprgo/internal/mqttpub"
	"github.com/cwsl/wsprgo/internal/scheduler"
	"github.com/cwsl/wsprgo/internal/webstatus"
	"github.com/cwsl/wsprgo/internal/wspr"
	"github.com/cwsl/wsprgo/internal/wsprnet"
)

const version = "v1.0.0"

func main() {
	var (
		configFile = pflag.StringP("config", "c", "config.yaml", "Configuration file")
		showVer    = pflag.BoolP("version", "v", false, "Print version and exit")
	)
	pflag.Parse()

	if *showVer {
		fmt.Printf("wsprd %s\n", version)
		os.Exit(0)
	}

	log.Printf("wsprd %s starting, config=%s", version, *configFile)

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("wsprd: %v", err)
	}

	hashTable, err := openHashTable(cfg.HashFile)
	if err != nil {
		log.Fatalf("wsprd: %v", err)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	hub := webstatus.NewHub()

	var uploader *wsprnet.Uploader
	if cfg.WSPRNet.Enabled {
		uploader, err = wsprnet.New(cfg.Station.Callsign, cfg.Station.Grid, cfg.WSPRNet.ProgramName, cfg.WSPRNet.ProgramVersion)
		if err != nil {
			log.Fatalf("wsprd: wsprnet: %v", err)
		}
		uploader.Start()
		defer uploader.Stop()
	}

	var publisher *mqttpub.Publisher
	if cfg.MQTT.Enabled {
		publisher, err = mqttpub.New(mqttpub.Config{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Topic:    cfg.MQTT.Topic,
		})
		if err != nil {
			log.Fatalf("wsprd: mqtt: %v", err)
		}
		defer publisher.Close()
	}

	var archiver *archive.Store
	if cfg.ArchiveDir != "" {
		archiver, err = archive.Open(cfg.ArchiveDir)
		if err != nil {
			log.Fatalf("wsprd: archive: %v", err)
		}
		defer archiver.Close()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, health.Now())
	})
	mux.HandleFunc("/ws/status", hub.ServeHTTP)
	if cfg.MCP.Enabled {
		mux.Handle("/mcp", mcpserver.New(hashTable).Handler())
	}

	httpServer := &http.Server{Addr: cfg.Web.Listen, Handler: mux}
	go func() {
		log.Printf("wsprd: web interface listening on %s", cfg.Web.Listen)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("wsprd: web server error: %v", err)
		}
	}()

	receiver, err := newReceiver(cfg)
	if err != nil {
		log.Fatalf("wsprd: %v", err)
	}
	receiver.Start()
	defer receiver.Stop()

	sched := scheduler.New(
		func(ctx context.Context, slot scheduler.Slot) ([]byte, error) {
			return captureSlot(ctx, receiver)
		},
		func(slot scheduler.Slot, pcm []byte, captureErr error) {
			handleSlot(slot, pcm, captureErr, cfg, hashTable, m, hub, uploader, publisher, archiver)
		},
	)
	sched.Start()
	defer sched.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	log.Printf("wsprd: received signal %v, shutting down", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	httpServer.Shutdown(shutdownCtx)
}

func openHashTable(path string) (wspr.HashTable, error) {
	if path == "" {
		return wspr.NewMemHashTable(), nil
	}
	return wspr.OpenFileHashTable(path)
}

func newReceiver(cfg *config.Config) (*audiosource.Receiver, error) {
	addr, err := net.ResolveUDPAddr("udp4", cfg.Audio.Multicast)
	if err != nil {
		return nil, fmt.Errorf("resolve audio.multicast_group %q: %w", cfg.Audio.Multicast, err)
	}
	var iface *net.Interface
	if cfg.Audio.Interface != "" {
		iface, err = net.InterfaceByName(cfg.Audio.Interface)
		if err != nil {
			return nil, fmt.Errorf("resolve audio.interface %q: %w", cfg.Audio.Interface, err)
		}
	}
	payload := audiosource.PayloadPCM
	if cfg.Audio.Source == "opus" {
		payload = audiosource.PayloadOpus
	}
	return audiosource.New(addr, iface, payload)
}

// captureSlot buffers PCM frames arriving from receiver until the capture
// context expires, the same bounded-duration-accumulate shape as the
// teacher's recordCycle around a wsprd subprocess.
func captureSlot(ctx context.Context, receiver *audiosource.Receiver) ([]byte, error) {
	var buf bytes.Buffer
	for {
		select {
		case <-ctx.Done():
			return buf.Bytes(), nil
		case frame, ok := <-receiver.Frames():
			if !ok {
				return buf.Bytes(), nil
			}
			// Frames carry big-endian samples; wspr.Decode reads little-endian.
			for i := 0; i+1 < len(frame.PCM); i += 2 {
				buf.WriteByte(frame.PCM[i+1])
				buf.WriteByte(frame.PCM[i])
			}
		}
	}
}

func handleSlot(slot scheduler.Slot, pcm []byte, captureErr error, cfg *config.Config, hashTable wspr.HashTable,
	m *metrics.Metrics, hub *webstatus.Hub, uploader *wsprnet.Uploader, publisher *mqttpub.Publisher, archiver *archive.Store) {

	if captureErr != nil {
		log.Printf("wsprd: slot %s capture error: %v", slot.RunID, captureErr)
		return
	}

	if archiver != nil {
		if err := archiver.SaveSlot(slot.RunID, slot.Start, pcm); err != nil {
			log.Printf("wsprd: slot %s archive failed: %v", slot.RunID, err)
		}
	}

	start := time.Now()
	decodes, err := wspr.Decode(pcm, cfg.Station.DialMHz, cfg.Station.LSB, hashTable)
	m.RecordSlot(len(decodes), time.Since(start))
	m.SetHashTableSize(hashTable.Len())
	if err != nil {
		log.Printf("wsprd: slot %s decode error: %v", slot.RunID, err)
		return
	}

	log.Printf("wsprd: slot %s: %d decodes", slot.RunID, len(decodes))

	for _, d := range decodes {
		m.RecordDecode(decodeTypeLabel(d), d.SNRDb)

		distanceKm := 0.0
		if km, err := geo.Distance(cfg.Station.Grid, d.Grid); err == nil {
			distanceKm = km
		}
		hub.Broadcast(webstatus.EventFromDecode(d, distanceKm, slot.Start))

		if uploader != nil {
			if report, ok := wsprnet.ReportFromDecode(d, slot.Start); ok {
				if err := uploader.Submit(report); err != nil {
					log.Printf("wsprd: wsprnet submit failed: %v", err)
				}
			}
		}
		if publisher != nil {
			if err := publisher.PublishDecode(d, slot.Start); err != nil {
				log.Printf("wsprd: mqtt publish failed: %v", err)
			}
		}
	}
}

func decodeTypeLabel(d wspr.Decode) string {
	switch d.Type {
	case wspr.TypeCompound:
		return "compound"
	case wspr.TypeExtendedGrid:
		return "extended_grid"
	default:
		return "standard"
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.Encode(v)
}
