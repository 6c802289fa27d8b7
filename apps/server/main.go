package main

import (
	"flag"
	"log"
	"net/http"
	"os"

	"mahjong-lite/apps/server/internal/config"
	"mahjong-lite/apps/server/internal/gateway"
	"mahjong-lite/apps/server/internal/ledger"
	"mahjong-lite/apps/server/internal/lobby"
	"mahjong-lite/apps/server/internal/table"
	"mahjong-lite/mahjong/npc"
)

// Built-in roster used when no persona file is configured.
const defaultPersonas = `[
  {"id":"srv_expert","name":"ESPERTO","tier":1,"brain":{"claimGreed":0.4,"caution":0.7,"randomness":0.1}},
  {"id":"srv_standard","name":"MEDIO","tier":2,"brain":{"claimGreed":0.3,"caution":0.5,"randomness":0.3}},
  {"id":"srv_casual_a","name":"BAGITO","tier":3,"brain":{"claimGreed":0.2,"caution":0.3,"randomness":0.5}},
  {"id":"srv_casual_b","name":"TAMBAY","tier":3,"brain":{"claimGreed":0.6,"caution":0.2,"randomness":0.6}}
]`

func main() {
	configPath := flag.String("config", os.Getenv("SERVER_CONFIG"), "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[Server] Failed to load config: %v", err)
	}

	ledgerService, ledgerMode, err := ledger.NewService(cfg.Ledger)
	if err != nil {
		log.Fatalf("[Server] Failed to init ledger service: %v", err)
	}
	defer ledgerService.Close()

	registry := npc.NewRegistry()
	if cfg.NPC.PersonaFile != "" {
		if err := registry.LoadFromFile(cfg.NPC.PersonaFile); err != nil {
			log.Fatalf("[Server] Failed to load personas: %v", err)
		}
	} else if err := registry.LoadFromJSON([]byte(defaultPersonas)); err != nil {
		log.Fatalf("[Server] Failed to load built-in personas: %v", err)
	}
	npcMgr := npc.NewManager(registry)

	lby := lobby.New(table.TableConfig{}, ledgerService, npcMgr)
	defer lby.Shutdown()
	gw := gateway.New(lby)
	auditHTTP := ledger.NewHTTPHandler(ledgerService)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gw.HandleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	auditHTTP.RegisterRoutes(mux)

	log.Printf("[Server] Ledger mode: %s", ledgerMode)
	log.Printf("[Server] NPC personas: %d", registry.Count())
	log.Printf("[Server] Starting WebSocket server on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, mux); err != nil {
		log.Fatalf("[Server] Failed to start: %v", err)
	}
}
