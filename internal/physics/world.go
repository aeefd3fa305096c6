// Package physics is the simulation core: rigid bodies, broadphase and
// narrowphase collision, impulse resolution, ballistics, explosions and
// ray queries, advanced in fixed steps by an explicit per-frame call.
//
// The package is single-threaded by contract: all mutation happens inside
// the step, listeners run synchronously, and re-entrant mutations must go
// through Defer.
package physics

import (
	"fmt"
	"math/rand"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"go.uber.org/zap"

	"ironsight/internal/compute"
)

// SceneGraph lets physics read and write renderable transforms. The scene
// owns the renderables; destroying a body never destroys its renderable.
type SceneGraph interface {
	ReadTransform(renderable uint64) (position, rotation rl.Vector3, ok bool)
	WriteTransform(renderable uint64, position, rotation rl.Vector3)
}

// GPUPairScanThreshold is the minimum dynamic body count before the GPU
// pair scan takes over from the CPU grid. Below this the grid wins on
// dispatch overhead alone.
const GPUPairScanThreshold = 750

// MaxPairScanBodies caps what the GPU pair scan will track.
const MaxPairScanBodies = 50000

// Stats is a per-step snapshot of simulation counters.
type Stats struct {
	Steps        uint64
	Bodies       int
	Projectiles  int
	Contacts     int
	StepDuration time.Duration
	GPUActive    bool
}

// World owns the body store, spatial index, projectiles and scheduler.
type World struct {
	cfg Config
	log *zap.Logger

	store *bodyStore
	grid  *grid

	scene SceneGraph
	query WorldQuery

	listeners collisionEventList

	projectiles     map[uint64]*Projectile
	projectileOrder []*Projectile

	rng *rand.Rand

	accumulator float32
	inStep      bool
	deferred    []func()

	gpu       *compute.PairScanner
	useGPU    bool
	capWarned bool

	stats Stats
}

// NewWorld builds a world from cfg. An invalid config is rejected
// wholesale: a warning is logged and the documented defaults are used
// instead. A nil logger disables logging.
func NewWorld(cfg Config, logger *zap.Logger) *World {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		logger.Warn("invalid world config, using defaults", zap.Error(err))
		cfg = DefaultConfig()
	}

	w := &World{
		cfg:         cfg,
		log:         logger,
		store:       newBodyStore(),
		grid:        newGrid(cfg.CellSize),
		projectiles: make(map[uint64]*Projectile),
		rng:         rand.New(rand.NewSource(cfg.Seed)),
	}
	w.query = storeRaycaster{store: w.store}
	return w
}

// Config returns the active (possibly defaulted) configuration.
func (w *World) Config() Config {
	return w.cfg
}

// SetScene injects the scene graph used for transform sync. Optional; a
// nil scene means bodies are the only transform authority.
func (w *World) SetScene(scene SceneGraph) {
	w.scene = scene
}

// SetWorldQuery replaces the ray-intersection capability. Passing nil
// restores the built-in AABB raycaster.
func (w *World) SetWorldQuery(q WorldQuery) {
	if q == nil {
		q = storeRaycaster{store: w.store}
	}
	w.query = q
}

// AddCollisionListener registers a world-level subscriber for every
// collision, projectile-hit and blast event.
func (w *World) AddCollisionListener(l CollisionListener) {
	w.listeners.add(l)
}

// RemoveAllCollisionListeners clears the world-level subscriber set.
func (w *World) RemoveAllCollisionListeners() {
	w.listeners.clear()
}

// AddBody inserts a body into the store and spatial index. Duplicate ids
// are rejected. Safe to call from listeners: the insert defers to the end
// of the step.
func (w *World) AddBody(b *Body) {
	if b == nil {
		return
	}
	w.mutate(func() {
		if !w.store.add(b) {
			w.log.Warn("duplicate body id ignored", zap.Uint64("id", b.ID))
			return
		}
		w.grid.insert(b)

		if w.store.count() > w.cfg.MaxBodies {
			if !w.capWarned {
				w.capWarned = true
				w.log.Warn("body count exceeds configured cap",
					zap.Int("bodies", w.store.count()),
					zap.Int("max_bodies", w.cfg.MaxBodies))
			}
		} else {
			w.capWarned = false
		}
	})
}

// RemoveBody deletes a body by id and drops it from the spatial index.
// Removing an absent id is a no-op. The renderable stays alive; it belongs
// to the scene.
func (w *World) RemoveBody(id uint64) {
	w.mutate(func() {
		if b := w.store.remove(id); b != nil {
			w.grid.remove(b)
		}
	})
}

// Body looks up a body by id; absent ids return ok=false.
func (w *World) Body(id uint64) (*Body, bool) {
	return w.store.get(id)
}

// Bodies returns every live body, dynamics first.
func (w *World) Bodies() []*Body {
	return w.store.all()
}

// Defer queues fn to run after the current step completes, or runs it
// immediately outside a step. Collision listeners must use this for any
// world mutation to avoid invalidating iteration.
func (w *World) Defer(fn func()) {
	w.mutate(fn)
}

func (w *World) mutate(fn func()) {
	if w.inStep {
		w.deferred = append(w.deferred, fn)
		return
	}
	fn()
}

func (w *World) flushDeferred() {
	for len(w.deferred) > 0 {
		queue := w.deferred
		w.deferred = nil
		for _, fn := range queue {
			fn()
		}
	}
}

// EnableGPUPairScan initializes the WebGPU broadphase accelerator. The
// scan only activates once the dynamic body count crosses
// GPUPairScanThreshold; the CPU grid keeps serving below it.
func (w *World) EnableGPUPairScan() error {
	if w.gpu != nil {
		return nil
	}
	info, err := compute.Initialize()
	if err != nil {
		return fmt.Errorf("gpu pair scan unavailable: %w", err)
	}
	scanner, err := compute.NewPairScanner(MaxPairScanBodies, MaxPairScanBodies*8)
	if err != nil {
		return fmt.Errorf("gpu pair scan init: %w", err)
	}
	w.gpu = scanner
	w.log.Info("gpu pair scan ready",
		zap.String("adapter", info.Name),
		zap.String("backend", info.Backend),
		zap.Int("threshold", GPUPairScanThreshold))
	return nil
}

// Release frees GPU resources. The world remains usable on the CPU path.
func (w *World) Release() {
	if w.gpu != nil {
		w.gpu.Release()
		w.gpu = nil
		w.useGPU = false
	}
}

func (w *World) gpuActive() bool {
	return w.useGPU
}

func (w *World) updateGPUState() {
	wasUsing := w.useGPU
	w.useGPU = w.gpu != nil && len(w.store.dynamics) >= GPUPairScanThreshold
	if w.useGPU && !wasUsing {
		w.log.Info("gpu pair scan on", zap.Int("dynamics", len(w.store.dynamics)))
	} else if !w.useGPU && wasUsing {
		w.log.Info("gpu pair scan off", zap.Int("dynamics", len(w.store.dynamics)))
	}
}

// Stats returns the snapshot from the most recent step.
func (w *World) Stats() Stats {
	return w.stats
}

// Update advances the simulation by the elapsed frame time using the
// fixed-step accumulator: at most MaxSubSteps fixed steps run, and any
// residual carries to the next frame, never discarded.
func (w *World) Update(frameTime float32) {
	if frameTime < 0 || !finite(frameTime) {
		return
	}
	w.accumulator += frameTime
	steps := 0
	for w.accumulator >= w.cfg.Timestep && steps < w.cfg.MaxSubSteps {
		w.stepOnce(w.cfg.Timestep)
		w.accumulator -= w.cfg.Timestep
		steps++
	}
}

// stepOnce runs one deterministic fixed step to completion: scene read,
// integration, grid rebuild, collision detection and resolution,
// projectile step, scene write.
func (w *World) stepOnce(dt float32) {
	start := time.Now()
	w.inStep = true

	w.syncFromScene()
	w.integrate(dt)
	w.grid.rebuild(w.store.all())
	w.updateGPUState()
	w.detectAndResolve()
	w.stepProjectiles(dt)
	w.syncToScene()

	w.inStep = false
	w.flushDeferred()

	w.stats.Steps++
	w.stats.Bodies = w.store.count()
	w.stats.Projectiles = len(w.projectileOrder)
	w.stats.StepDuration = time.Since(start)
	w.stats.GPUActive = w.useGPU
}

// integrate applies gravity, accumulated forces and drag, advances
// positions and rotations, clamps to world bounds and updates sleep
// state. Only dynamic bodies integrate.
func (w *World) integrate(dt float32) {
	for _, b := range w.store.dynamics {
		if b.Sleeping {
			b.acceleration = rl.Vector3{}
			continue
		}

		accel := rl.Vector3Add(w.cfg.Gravity, b.acceleration)
		b.Velocity = rl.Vector3Add(b.Velocity, rl.Vector3Scale(accel, dt))

		damping := 1 - b.Drag*dt
		if damping < 0 {
			damping = 0
		}
		b.Velocity = rl.Vector3Scale(b.Velocity, damping)

		b.Position = rl.Vector3Add(b.Position, rl.Vector3Scale(b.Velocity, dt))
		b.Rotation = rl.Vector3Add(b.Rotation, rl.Vector3Scale(b.AngularVelocity, dt))

		// Acceleration is transient: consumed once, reset every step.
		b.acceleration = rl.Vector3{}

		w.clampToBounds(b)
		b.trySleep(dt, w.cfg.SleepVelocity, w.cfg.SleepTimeout)

		if b.Updater != nil {
			b.Updater.OnBodyUpdate(b, dt)
		}
	}
}

// clampToBounds keeps a body inside the world box. A clamped axis gets its
// velocity negated and scaled by the boundary restitution.
func (w *World) clampToBounds(b *Body) {
	min, max := w.cfg.WorldMin, w.cfg.WorldMax
	e := w.cfg.BoundsRestitution

	if b.Position.X < min.X {
		b.Position.X = min.X
		b.Velocity.X = -b.Velocity.X * e
	} else if b.Position.X > max.X {
		b.Position.X = max.X
		b.Velocity.X = -b.Velocity.X * e
	}
	if b.Position.Y < min.Y {
		b.Position.Y = min.Y
		b.Velocity.Y = -b.Velocity.Y * e
	} else if b.Position.Y > max.Y {
		b.Position.Y = max.Y
		b.Velocity.Y = -b.Velocity.Y * e
	}
	if b.Position.Z < min.Z {
		b.Position.Z = min.Z
		b.Velocity.Z = -b.Velocity.Z * e
	} else if b.Position.Z > max.Z {
		b.Position.Z = max.Z
		b.Velocity.Z = -b.Velocity.Z * e
	}
}

// syncFromScene pulls kinematic transforms at step start: kinematics are
// driven by controllers that live outside physics.
func (w *World) syncFromScene() {
	if w.scene == nil {
		return
	}
	for _, b := range w.store.kinematics {
		if b.Renderable == 0 {
			continue
		}
		if pos, rot, ok := w.scene.ReadTransform(b.Renderable); ok {
			b.Position = pos
			b.Rotation = rot
		}
	}
}

// syncToScene pushes dynamic transforms at step end.
func (w *World) syncToScene() {
	if w.scene == nil {
		return
	}
	for _, b := range w.store.dynamics {
		if b.Renderable == 0 {
			continue
		}
		w.scene.WriteTransform(b.Renderable, b.Position, b.Rotation)
	}
}

// resolveGPUPairs resolves dynamic-dynamic contacts from a GPU pair scan.
// On scan failure the scanner is dropped and the CPU grid takes over from
// the next pass.
func (w *World) resolveGPUPairs(seen map[pairKey]struct{}, emit bool) int {
	dyn := w.store.dynamics
	bounds := make([]compute.Bounds, len(dyn))
	for i, b := range dyn {
		bounds[i] = compute.Bounds{
			X:      b.Position.X,
			Y:      b.Position.Y,
			Z:      b.Position.Z,
			Radius: b.BoundingRadius(),
		}
	}

	pairs, err := w.gpu.Scan(bounds)
	if err != nil {
		w.log.Warn("gpu pair scan failed, reverting to cpu grid", zap.Error(err))
		w.gpu.Release()
		w.gpu = nil
		w.useGPU = false
		count := 0
		for _, a := range dyn {
			for _, b := range w.grid.nearby(a.Position, a.BoundingRadius()) {
				if w.checkPair(a, b, seen, emit) {
					count++
				}
			}
		}
		return count
	}

	count := 0
	for _, pair := range pairs {
		if int(pair.A) >= len(dyn) || int(pair.B) >= len(dyn) {
			continue
		}
		a, b := dyn[pair.A], dyn[pair.B]
		if a.ID > b.ID {
			a, b = b, a
		}
		if w.checkPair(a, b, seen, emit) {
			count++
		}
	}
	return count
}
