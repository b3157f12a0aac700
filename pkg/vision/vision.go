// Package vision turns AprilTag camera frames into target observations.
package vision

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	log "github.com/sirupsen/logrus"
)

var logger = log.WithFields(log.Fields{"pkg": "vision"})

// AnyTag tracks the first visible fiducial.
const AnyTag = -1

// HalfFOV is the camera's horizontal half field of view in degrees.
const HalfFOV = 29.8

// Fiducial is one detected AprilTag.
type Fiducial struct {
	ID int
	// RobotPose is the robot position in the tag's coordinate frame:
	// X lateral, Y vertical, Z depth. Nil when the solver produced no pose.
	RobotPose *r3.Vector
}

// Result is one camera frame.
type Result struct {
	Valid bool
	// Tx and Ty are horizontal and vertical angle offsets in degrees. NaN
	// when the frame carries no usable angle.
	Tx, Ty    float64
	Pipeline  int
	Fiducials []Fiducial
}

// Source is a camera capability. Latest returns nil when no frame is ready.
type Source interface {
	Latest() (*Result, error)
	SetPipeline(pipeline int) error
	Connected() bool
}

// Observation is what the approach controller and launcher consume.
type Observation struct {
	Acquired bool
	TagID    int
	// Forward is the signed distance still to cover toward the tag after
	// subtracting the standoff. Lateral is the sideways offset.
	Forward  float64
	Lateral  float64
	Height   float64
	Distance float64
	Yaw      float64 // degrees
	YawValid bool
	Pose     r3.Vector
	// Raw is the frame this observation was made from, nil when the camera
	// had none.
	Raw *Result
}

// Config tunes the tracker.
type Config struct {
	TargetTag int     `json:"target_tag"`
	Standoff  float64 `json:"standoff"` // metres kept between robot and tag
	Pipeline  int     `json:"pipeline"`
}

func DefaultConfig() Config {
	return Config{TargetTag: AnyTag, Standoff: 0, Pipeline: 0}
}

// Tracker filters frames for the target tag and keeps the last observation.
type Tracker struct {
	src            Source
	cfg            Config
	last           Observation
	noTargetFrames int
}

// NewTracker accepts a nil source; the tracker then never acquires.
func NewTracker(src Source, cfg Config) *Tracker {
	t := &Tracker{src: src, cfg: cfg}
	if src != nil {
		if err := src.SetPipeline(cfg.Pipeline); err != nil {
			logger.Warnf("set pipeline %d: %v", cfg.Pipeline, err)
		}
	}
	return t
}

// Update reads the latest frame and returns the resulting observation.
func (t *Tracker) Update() Observation {
	obs, ok := t.observe()
	if !ok {
		t.noTargetFrames++
		t.last = Observation{TagID: AnyTag, Raw: obs.Raw}
		return t.last
	}
	t.noTargetFrames = 0
	t.last = obs
	return obs
}

func (t *Tracker) observe() (Observation, bool) {
	if t.src == nil {
		return Observation{}, false
	}
	res, err := t.src.Latest()
	if err != nil {
		logger.Debugf("read frame: %v", err)
		return Observation{}, false
	}
	if res == nil || !res.Valid || len(res.Fiducials) == 0 {
		return Observation{Raw: res}, false
	}

	var target *Fiducial
	for i := range res.Fiducials {
		if t.cfg.TargetTag == AnyTag || res.Fiducials[i].ID == t.cfg.TargetTag {
			target = &res.Fiducials[i]
			break
		}
	}
	if target == nil || target.RobotPose == nil {
		return Observation{Raw: res}, false
	}

	p := *target.RobotPose
	obs := Observation{
		Acquired: true,
		TagID:    target.ID,
		Forward:  p.Z - t.cfg.Standoff,
		Lateral:  p.X,
		Height:   p.Y,
		Distance: r3.Vector{X: p.X, Z: p.Z}.Norm(),
		Pose:     p,
		Raw:      res,
	}
	if !math.IsNaN(res.Tx) {
		obs.Yaw = res.Tx
		obs.YawValid = true
	}
	return obs, true
}

// Last returns the observation from the most recent Update.
func (t *Tracker) Last() Observation { return t.last }

// NoTargetFrames counts consecutive updates without an acquisition.
func (t *Tracker) NoTargetFrames() int { return t.noTargetFrames }

// Connected reports whether a camera is present and talking.
func (t *Tracker) Connected() bool { return t.src != nil && t.src.Connected() }

func (t *Tracker) TargetTag() int { return t.cfg.TargetTag }

func (t *Tracker) SetTargetTag(id int) { t.cfg.TargetTag = id }

// SetStandoff changes the distance kept in front of the tag.
func (t *Tracker) SetStandoff(m float64) { t.cfg.Standoff = m }

func (t *Tracker) Pipeline() int { return t.cfg.Pipeline }

// SetPipeline switches the camera pipeline. Without a camera it only
// records the choice.
func (t *Tracker) SetPipeline(pipeline int) error {
	t.cfg.Pipeline = pipeline
	if t.src == nil {
		return nil
	}
	if err := t.src.SetPipeline(pipeline); err != nil {
		return fmt.Errorf("switch pipeline %d: %w", pipeline, err)
	}
	return nil
}

// Status renders a one-line telemetry summary.
func (t *Tracker) Status() string {
	if t.src == nil || !t.src.Connected() {
		return "Limelight: Not connected"
	}
	if !t.last.Acquired {
		return "Limelight: No target"
	}
	return fmt.Sprintf("Tag %d | Dist: %.2fm | Height: %.2fm | tx: %.1f°",
		t.last.TagID, t.last.Distance, t.last.Height, t.last.Yaw)
}
