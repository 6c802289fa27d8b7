package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"mahjong-lite/mahjong"
	"mahjong-lite/mahjong/npc"
)

// Built-in roster used when no persona file is given.
const defaultPersonas = `[
  {"id":"sim_expert","name":"ESPERTO","tier":1,"brain":{"claimGreed":0.4,"caution":0.7,"randomness":0.1}},
  {"id":"sim_standard","name":"MEDIO","tier":2,"brain":{"claimGreed":0.3,"caution":0.5,"randomness":0.3}},
  {"id":"sim_casual_a","name":"BAGITO","tier":3,"brain":{"claimGreed":0.2,"caution":0.3,"randomness":0.5}},
  {"id":"sim_casual_b","name":"TAMBAY","tier":3,"brain":{"claimGreed":0.6,"caution":0.2,"randomness":0.6}}
]`

type tally struct {
	wins      [mahjong.SeatCount]int
	drawn     int
	sietePare int
	ambitions map[mahjong.AmbitionKind]int
	payout    [mahjong.SeatCount]float64
}

func main() {
	games := flag.Int("games", 100, "number of hands to simulate")
	seed := flag.Int64("seed", 1, "base RNG seed; hand i uses seed+i")
	personaFile := flag.String("personas", "", "optional persona JSON file")
	verbose := flag.Bool("v", false, "log every NPC decision")
	flag.Parse()

	registry := npc.NewRegistry()
	if *personaFile != "" {
		if err := registry.LoadFromFile(*personaFile); err != nil {
			log.Fatalf("[Simulate] load personas: %v", err)
		}
	} else if err := registry.LoadFromJSON([]byte(defaultPersonas)); err != nil {
		log.Fatalf("[Simulate] load built-in personas: %v", err)
	}
	roster := registry.All()
	if len(roster) < mahjong.SeatCount {
		log.Fatalf("[Simulate] need at least %d personas, have %d", mahjong.SeatCount, registry.Count())
	}

	if !*verbose {
		log.SetOutput(io.Discard)
	}

	result := tally{ambitions: make(map[mahjong.AmbitionKind]int)}
	for i := 0; i < *games; i++ {
		if err := runHand(*seed+int64(i), roster, &result); err != nil {
			fmt.Fprintf(os.Stderr, "hand %d: %v\n", i, err)
			os.Exit(1)
		}
	}

	fmt.Printf("hands: %d  drawn: %d\n", *games, result.drawn)
	for seat := 0; seat < mahjong.SeatCount; seat++ {
		fmt.Printf("seat %d (%s): %d wins, %.2f units\n",
			seat, roster[seat%len(roster)].Name, result.wins[seat], result.payout[seat])
	}
	fmt.Printf("siete pares wins: %d\n", result.sietePare)
	for kind, n := range result.ambitions {
		fmt.Printf("ambition %-12s %d\n", mahjong.AmbitionKindDictionary[kind], n)
	}
	os.Exit(0)
}

func runHand(seed int64, roster []*npc.NPCPersona, result *tally) error {
	game, err := mahjong.NewGame(mahjong.Config{Seed: seed})
	if err != nil {
		return err
	}

	manager := npc.NewManager(npc.NewRegistry())
	seatPlayer := make(map[int]uint64, mahjong.SeatCount)
	for seat := 0; seat < mahjong.SeatCount; seat++ {
		inst, err := manager.SpawnNPC(game, seat, roster[seat%len(roster)])
		if err != nil {
			return err
		}
		seatPlayer[seat] = inst.PlayerID
	}
	if err := game.StartHand(); err != nil {
		return err
	}

	// One hand can never take more actions than this; the bound is a guard
	// against an orchestration bug looping forever.
	claimWindow := false
	for step := 0; step < 4*mahjong.SeatCount*144; step++ {
		snap := game.Snapshot()
		if snap.Status != mahjong.StatusPlaying {
			break
		}

		if claimWindow && snap.HasOpenDiscard {
			claimWindow = false
			if processClaims(game, manager, seatPlayer, snap) {
				continue
			}
		}

		d := manager.OnTurn(seatPlayer[snap.CurrentSeat], snap)
		switch d.Action {
		case npc.ActionDraw:
			if _, ok, err := game.Draw(snap.CurrentSeat); err != nil {
				return err
			} else if !ok {
				if err := game.EndDrawn(); err != nil {
					return err
				}
			}
		case npc.ActionDiscard:
			if err := game.Discard(snap.CurrentSeat, d.Tile); err != nil {
				return err
			}
			claimWindow = true
		case npc.ActionKong:
			if err := game.DeclareKong(snap.CurrentSeat, d.Tile); err != nil {
				return err
			}
		case npc.ActionWin:
			if _, err := game.DeclareWin(snap.CurrentSeat); err != nil {
				return err
			}
		default:
			// Fallback keeps the hand moving.
			players := snap.Players
			hand := players[snap.CurrentSeat].Hand
			if snap.Phase == mahjong.PhaseTypeDiscard && len(hand) > 0 {
				if err := game.Discard(snap.CurrentSeat, hand[0]); err != nil {
					return err
				}
				claimWindow = true
			} else if _, ok, err := game.Draw(snap.CurrentSeat); err != nil {
				return err
			} else if !ok {
				if err := game.EndDrawn(); err != nil {
					return err
				}
			}
		}
	}

	status, winner := game.Status()
	switch status {
	case mahjong.StatusDrawn:
		result.drawn++
	case mahjong.StatusFinished:
		result.wins[winner]++
		if res := game.WinResult(); res != nil && res.Kind == mahjong.WinSietePares {
			result.sietePare++
		}
	}
	for _, rec := range game.Ambitions() {
		result.ambitions[rec.Kind]++
		result.payout[rec.Seat] += rec.Payout
	}
	return nil
}

// processClaims polls every non-discarder seat once and applies the winning
// claim, if any.
func processClaims(game *mahjong.Game, manager *npc.Manager, seatPlayer map[int]uint64, snap mahjong.Snapshot) bool {
	var claims []mahjong.Claim
	for seat := 0; seat < mahjong.SeatCount; seat++ {
		if seat == snap.DiscarderSeat {
			continue
		}
		d := manager.OnTurn(seatPlayer[seat], snap)
		if d.Action == npc.ActionClaim {
			claims = append(claims, mahjong.Claim{Seat: seat, Kind: d.Claim})
		}
	}
	best, found := game.ResolveClaims(claims)
	if !found {
		return false
	}
	if err := game.ProcessClaim(best); err != nil {
		return false
	}
	return true
}
