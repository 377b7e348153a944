// Package main provides a headless verification tool for anchored transitions.
//
// It loads a clip library and the ability tuning, places a character in front of
// a wall, walks it forward while holding B and logs every change of ability,
// climbing state and transition task state.
//
// Usage:
//
//	go run ./cmd/verify_transition [flags]
//
// Flags:
//
//	--library <path>   Clip library YAML (default: data/motion/library.yaml)
//	--config <path>    Ability tuning YAML (default: data/abilities.yaml)
//	--distance <m>     Distance from the character to the wall face (default: 1.5)
//	--seconds <s>      Simulated time (default: 6)
//	--pullup           Press A after reaching the ledge to pull up
//	--verbose          Enable per-frame transition logs
//
// Exit status is 1 when the character never leaves locomotion.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/decker502/anchorclimb/internal/motion"
	"github.com/decker502/anchorclimb/pkg/components"
	"github.com/decker502/anchorclimb/pkg/config"
	"github.com/decker502/anchorclimb/pkg/controller"
	"github.com/decker502/anchorclimb/pkg/ecs"
	"github.com/decker502/anchorclimb/pkg/entities"
	"github.com/decker502/anchorclimb/pkg/geometry"
	"github.com/decker502/anchorclimb/pkg/systems"
	"github.com/decker502/anchorclimb/pkg/utils"
)

const frameRate = 60

var (
	libraryFlag  = flag.String("library", "data/motion/library.yaml", "Clip library YAML")
	configFlag   = flag.String("config", "data/abilities.yaml", "Ability tuning YAML")
	distanceFlag = flag.Float64("distance", 1.5, "Distance from the character to the wall face (m)")
	secondsFlag  = flag.Float64("seconds", 6, "Simulated time (s)")
	pullUpFlag   = flag.Bool("pullup", false, "Press A after reaching the ledge")
	verboseFlag  = flag.Bool("verbose", false, "Enable per-frame transition logs")
)

// snapshot 每帧关心的状态
type snapshot struct {
	ability  string
	climbing string
	task     string
	segment  string
}

func main() {
	flag.Parse()

	if err := run(); err != nil {
		log.Printf("❌ %v", err)
		os.Exit(1)
	}
}

func run() error {
	lib, err := motion.LoadLibrary(*libraryFlag)
	if err != nil {
		return err
	}
	cfg, err := config.LoadAbilitiesConfig(*configFlag)
	if err != nil {
		return err
	}

	wallDepth := 2.0
	world := controller.NewWorld(
		geometry.NewBoxCollider("floor", utils.NewVec3(0, -0.5, 0), 0, utils.NewVec3(40, 1, 40), geometry.LayerDefault),
		geometry.NewBoxCollider("wall", utils.NewVec3(0, 1.5, *distanceFlag+wallDepth/2), 0, utils.NewVec3(6, 3, wallDepth), geometry.LayerWall),
	)

	script := []components.InputStep{
		{Duration: 2, State: utils.InputState{StickVertical: 1, BButton: true}},
		{Duration: 2, State: utils.InputState{StickVertical: 1}},
	}
	if *pullUpFlag {
		script = append(script, components.InputStep{Duration: 2, State: utils.InputState{StickVertical: 1, AButton: true}})
	}

	em := ecs.NewEntityManager()
	id, err := entities.NewCharacterEntity(em, lib, world, cfg, entities.CharacterSpec{
		Name:   "verify",
		Script: script,
	})
	if err != nil {
		return err
	}
	character, _ := ecs.GetComponent[*components.CharacterComponent](em, id)
	character.Climbing.Debug = *verboseFlag
	character.Runner.Debug = *verboseFlag

	input := systems.NewInputSystem(em, nil)
	abilities := systems.NewAbilitySystem(em)

	deltaTime := 1.0 / frameRate
	frames := int(*secondsFlag * frameRate)
	left := false
	var last snapshot

	for frame := 0; frame < frames; frame++ {
		input.Update(deltaTime)
		if err := abilities.Update(context.Background(), deltaTime); err != nil {
			return err
		}

		now := capture(lib, character)
		if now != last {
			root := character.Playback.WorldRootTransform().T
			log.Printf("[Verify] t=%5.2fs ability=%-10s climbing=%-12s task=%-12s segment=%-12s root=(%.2f, %.2f, %.2f)",
				float64(frame+1)*deltaTime, now.ability, now.climbing, now.task, now.segment, root.X, root.Y, root.Z)
			last = now
		}
		if now.ability != "Locomotion" && now.ability != "none" {
			left = true
		}
	}

	fmt.Println("Timeline:")
	for _, r := range character.Runner.Timeline().Records() {
		fmt.Printf("  %-10s %6.2fs - %6.2fs  tasks=%d\n", r.Ability, r.Start, r.End, len(r.TaskIDs))
	}

	if !left {
		return fmt.Errorf("character never left locomotion (wall at %.2fm)", *distanceFlag)
	}
	log.Printf("✅ Transition scenario finished")
	return nil
}

func capture(lib *motion.Library, c *components.CharacterComponent) snapshot {
	s := snapshot{
		ability:  "none",
		climbing: c.Climbing.State().String(),
		task:     "-",
		segment:  lib.GetSegment(c.Playback.Time().Segment).Name,
	}
	if a := c.Runner.Current(); a != nil {
		s.ability = a.Name()
	}
	if task := c.Climbing.Task(); task != nil {
		s.task = task.State().String()
	} else if task := c.Parkour.Task(); task != nil {
		s.task = task.State().String()
	}
	return s
}
