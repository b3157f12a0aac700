package sim

import (
	"math"
	"sync"

	"github.com/golang/geo/r3"
	"github.com/gwillem/ftcbot/pkg/vision"
)

// Camera renders AprilTag frames from the world pose.
type Camera struct {
	world *World

	mu        sync.Mutex
	connected bool
	pipeline  int
	hidden    bool
}

var _ vision.Source = (*Camera)(nil)

// Latest returns a frame with the tag when it is within the field of view.
func (c *Camera) Latest() (*vision.Result, error) {
	c.mu.Lock()
	connected, hidden, pipeline := c.connected, c.hidden, c.pipeline
	c.mu.Unlock()
	if !connected {
		return nil, nil
	}

	tx, ahead := c.world.bearing()
	if hidden || !ahead || math.Abs(tx) > vision.HalfFOV {
		return &vision.Result{Valid: false, Tx: math.NaN(), Ty: math.NaN(), Pipeline: pipeline}, nil
	}

	p := c.world.Pose()
	return &vision.Result{
		Valid:    true,
		Tx:       tx,
		Pipeline: pipeline,
		Fiducials: []vision.Fiducial{{
			ID:        c.world.cfg.TagID,
			RobotPose: &r3.Vector{X: p.X, Y: c.world.cfg.TagHeight, Z: p.Z},
		}},
	}, nil
}

func (c *Camera) SetPipeline(pipeline int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pipeline = pipeline
	return nil
}

func (c *Camera) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// SetConnected simulates unplugging the camera.
func (c *Camera) SetConnected(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = v
}

// SetHidden blocks the tag from view.
func (c *Camera) SetHidden(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hidden = v
}
