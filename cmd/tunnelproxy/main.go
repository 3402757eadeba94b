package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vibeproxy/tunnel/internal/auth"
	"github.com/vibeproxy/tunnel/internal/bots"
	"github.com/vibeproxy/tunnel/internal/chest"
	"github.com/vibeproxy/tunnel/internal/command"
	"github.com/vibeproxy/tunnel/internal/config"
	"github.com/vibeproxy/tunnel/internal/event"
	"github.com/vibeproxy/tunnel/internal/message"
	"github.com/vibeproxy/tunnel/internal/proxy"
	"github.com/vibeproxy/tunnel/internal/translator"
	"github.com/vibeproxy/tunnel/internal/tunnel"
)

func main() {
	listenAddr := flag.String("address", ":25565", "Address to listen on for clients")
	upstreamAddr := flag.String("upstream", "127.0.0.1:25566", "Address of the Minecraft server to forward to")
	configPath := flag.String("config", "tunnelproxy.yaml", "Path to the YAML config file")
	chestDBPath := flag.String("chest-db", "chests.json", "Path to the chest lock JSON store")
	dialTimeout := flag.Duration("dial-timeout", 5*time.Second, "Timeout for dialing the upstream server")
	protocolVersion := flag.Int("protocol-version", 47, "Protocol version reported to server-list pings")
	minecraftVersion := flag.String("minecraft-version", "1.8.9", "Minecraft version string reported to server-list pings")
	flag.Parse()

	cfg, err := config.FromYAML(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config %s: %v", *configPath, err)
	}

	commandPrefix := byte('!')
	if cfg.UseSlashes {
		commandPrefix = '/'
	}

	chestRegistry := chest.NewMemRegistry(*chestDBPath, func(err error) {
		log.Printf("chest registry: persistence error: %v", err)
	})
	botRegistry := bots.NewMemRegistry()
	authenticator := auth.NewMemAuthenticator(cfg.AllowGuests, nil)

	var proxySrv *proxy.Server
	commands := command.NewBasic(func(player, reason string) {
		if proxySrv != nil {
			proxySrv.KickPlayer(player, reason)
		}
	}, func(player string, muted bool) {
		if proxySrv != nil {
			proxySrv.MutePlayer(player, muted)
		}
	})

	shared := &tunnel.Shared{
		Options:           cfg,
		Perm:              config.AllowAllPermissions{},
		Chests:            chestRegistry,
		Bots:              botRegistry,
		Auth:              authenticator,
		Events:            event.NoOp{},
		Commands:          commands,
		Translator:        translator.Identity{},
		Loopback:          message.NewForwardTracker(5 * time.Second),
		CommandPrefix:     commandPrefix,
		ProtocolVersion:   int32(*protocolVersion),
		MinecraftVersion:  *minecraftVersion,
		ServerDescription: cfg.ServerListMOTD,
	}

	proxySrv = proxy.New(proxy.Config{
		ListenAddr:   *listenAddr,
		UpstreamAddr: *upstreamAddr,
		DialTimeout:  *dialTimeout,
	}, shared)

	if err := proxySrv.Start(); err != nil {
		log.Fatalf("Failed to start proxy: %v", err)
	}

	log.Printf("tunnelproxy started (Minecraft %s, protocol %d)", *minecraftVersion, *protocolVersion)
	log.Printf("Listening: %s | Upstream: %s | Command prefix: %c", *listenAddr, *upstreamAddr, commandPrefix)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Printf("Shutting down proxy (received signal: %v)...", sig)

	proxySrv.Stop()
	log.Println("Proxy stopped.")
}
