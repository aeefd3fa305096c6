// Stress test comparing the CPU grid broadphase against the GPU pair
// scan, plus full-world step throughput at each body count.
package main

import (
	"fmt"
	"math/rand"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"ironsight/internal/compute"
	"ironsight/internal/physics"
)

func main() {
	info, err := compute.Initialize()
	gpuOK := err == nil
	if gpuOK {
		fmt.Printf("GPU: %s | %s | %s\n\n", info.Backend, info.Vendor, info.Name)
	} else {
		fmt.Printf("GPU unavailable (%v), CPU only\n\n", err)
	}

	for _, count := range []int{100, 500, 1000, 2000, 5000, 10000} {
		benchBroadphase(count, gpuOK)
		benchWorld(count)
		fmt.Println()
	}
}

// randomBounds scatters spheres in a cube whose size scales with count to
// keep density roughly constant.
func randomBounds(count int) []compute.Bounds {
	rng := rand.New(rand.NewSource(42))
	spawn := 50.0 + float32(count)/100.0

	bounds := make([]compute.Bounds, count)
	for i := range bounds {
		bounds[i] = compute.Bounds{
			X:      rng.Float32()*spawn - spawn/2,
			Y:      rng.Float32()*spawn - spawn/2,
			Z:      rng.Float32()*spawn - spawn/2,
			Radius: 0.5 + rng.Float32()*0.5,
		}
	}
	return bounds
}

func benchBroadphase(count int, gpuOK bool) {
	if !gpuOK {
		return
	}

	bounds := randomBounds(count)
	scanner, err := compute.NewPairScanner(uint32(count), uint32(count*20))
	if err != nil {
		fmt.Printf("%6d bodies: GPU ERROR: %v\n", count, err)
		return
	}
	defer scanner.Release()

	scanner.Scan(bounds) // warm up

	const iterations = 10
	start := time.Now()
	var pairs []compute.Pair
	for i := 0; i < iterations; i++ {
		pairs, err = scanner.Scan(bounds)
		if err != nil {
			fmt.Printf("%6d bodies: GPU ERROR: %v\n", count, err)
			return
		}
	}
	perScan := time.Since(start) / iterations
	fmt.Printf("%6d bodies: GPU scan %8v  (%d pairs)\n", count, perScan, len(pairs))
}

// benchWorld times full fixed steps: integration, grid rebuild, narrow
// phase and resolution.
func benchWorld(count int) {
	cfg := physics.DefaultConfig()
	cfg.MaxBodies = count + 1
	world := physics.NewWorld(cfg, nil)

	floor := physics.NewBody(0, physics.BodyStatic,
		physics.DefaultMaterial(), rl.Vector3{X: 200, Y: 1, Z: 200})
	floor.Position = rl.Vector3{Y: -2}
	floor.Layers = physics.LayerWorld | physics.LayerDefault
	world.AddBody(floor)

	rng := rand.New(rand.NewSource(42))
	spawn := 50.0 + float32(count)/100.0
	mat, _ := physics.MaterialByName("wood")
	for i := 0; i < count; i++ {
		b := physics.NewBody(0, physics.BodyDynamic, mat,
			rl.Vector3{X: 0.5, Y: 0.5, Z: 0.5})
		b.Position = rl.Vector3{
			X: rng.Float32()*spawn - spawn/2,
			Y: rng.Float32() * 20,
			Z: rng.Float32()*spawn - spawn/2,
		}
		world.AddBody(b)
	}

	const steps = 60
	start := time.Now()
	for i := 0; i < steps; i++ {
		world.Update(cfg.Timestep)
	}
	perStep := time.Since(start) / steps
	stats := world.Stats()
	fmt.Printf("%6d bodies: step %12v  (%d contacts)\n", count, perStep, stats.Contacts)
}
