// Headless firing-range scenario: targets behind cover, a burst of
// penetrating rounds, then a grenade. Useful for eyeballing event output
// and step timings without a renderer.
package main

import (
	"flag"
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"go.uber.org/zap"

	"ironsight/internal/physics"
)

func main() {
	configPath := flag.String("config", "", "optional world config YAML")
	useGPU := flag.Bool("gpu", false, "enable the GPU pair scan")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := physics.DefaultConfig()
	if *configPath != "" {
		if cfg, err = physics.LoadConfig(*configPath); err != nil {
			logger.Warn("config load failed, using defaults", zap.Error(err))
		}
	}

	world := physics.NewWorld(cfg, logger)
	defer world.Release()
	if *useGPU {
		if err := world.EnableGPUPairScan(); err != nil {
			logger.Warn("gpu pair scan disabled", zap.Error(err))
		}
	}

	world.AddCollisionListener(physics.CollisionListenerFunc(func(ev physics.CollisionEvent) {
		if ev.Damage <= 0 {
			return
		}
		logger.Info("hit",
			zap.String("kind", ev.Kind.String()),
			zap.Uint64("body", ev.Body.ID),
			zap.Float32("damage", ev.Damage),
			zap.Float32("x", ev.Contact.X),
			zap.Float32("y", ev.Contact.Y),
			zap.Float32("z", ev.Contact.Z))
	}))

	buildRange(world)

	// One fired burst: three rounds with a penetration budget, downrange
	// through the target line.
	for i := 0; i < 3; i++ {
		world.FireProjectile(
			rl.Vector3{X: float32(i)*0.2 - 0.2, Y: 1.5, Z: -20},
			rl.Vector3{Z: 1},
			physics.ProjectileSpec{
				MuzzleSpeed:     400,
				Drag:            0.05,
				GravityAffected: true,
				Damage:          40,
				FalloffStart:    0.3,
				Penetration:     1,
				RicochetChance:  0.2,
				Ricochets:       1,
				MaxDistance:     150,
				Lifetime:        3,
				Layers:          physics.LayerEnemy | physics.LayerWorld,
			})
	}

	// Simulate two seconds of frames, grenade halfway through.
	const frame = 1.0 / 60.0
	for i := 0; i < 120; i++ {
		if i == 60 {
			world.CreateExplosion(rl.Vector3{Z: 10}, 6, 900, 80)
		}
		world.Update(frame)
	}

	stats := world.Stats()
	fmt.Printf("steps=%d bodies=%d projectiles=%d last_step=%v\n",
		stats.Steps, stats.Bodies, stats.Projectiles, stats.StepDuration)
}

// buildRange places a floor, a cover wall and a line of dynamic targets.
func buildRange(world *physics.World) {
	concrete, _ := physics.MaterialByName("concrete")
	flesh, _ := physics.MaterialByName("flesh")

	floor := physics.NewBody(1, physics.BodyStatic, concrete,
		rl.Vector3{X: 100, Y: 0.5, Z: 100})
	floor.Position = rl.Vector3{Y: -0.5}
	floor.Layers = physics.LayerWorld
	world.AddBody(floor)

	wall := physics.NewBody(2, physics.BodyStatic, concrete,
		rl.Vector3{X: 2, Y: 1.5, Z: 0.2})
	wall.Position = rl.Vector3{X: 3, Y: 1.5, Z: 5}
	wall.Layers = physics.LayerWorld
	world.AddBody(wall)

	for i := 0; i < 5; i++ {
		target := physics.NewBody(uint64(10+i), physics.BodyDynamic, flesh,
			rl.Vector3{X: 0.4, Y: 0.9, Z: 0.3})
		target.Position = rl.Vector3{X: float32(i-2) * 2, Y: 0.9, Z: 10}
		target.Layers = physics.LayerEnemy | physics.LayerDefault
		world.AddBody(target)
	}
}
