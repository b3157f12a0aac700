// Package ftcbot controls an FTC competition robot: a mecanum drive, an
// intake, a flywheel launcher with a turret and loader, and an AprilTag
// camera.
//
// # Installation
//
//	go install github.com/gwillem/ftcbot/cmd/ftcbot@latest
//
// # Usage
//
// Pick a hardware backend and tunables:
//
//	ftcbot setup
//
// Then run an opmode, on the simulator by default:
//
//	ftcbot run teleop
//	ftcbot run auto-red --headless
//
// Inspect the launcher and drive configuration:
//
//	ftcbot solve 2.5
//	ftcbot presets
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/ftcbot: CLI with run, list, solve, presets and setup commands
//   - pkg/hw: Hardware capabilities and the named hardware map
//   - pkg/drive: Mecanum kinematics, direction presets and the drive subsystem
//   - pkg/launcher: Flywheel RPM solvers (projectile physics, lookup table)
//   - pkg/vision: AprilTag observations from a camera source
//   - pkg/approach: Vision-guided approach controller
//   - pkg/robot: Robot facade and configuration
//   - pkg/opmode: OpMode runner, gamepad input, telemetry and the built-in opmodes
//   - pkg/sim: Simulated plant and camera
//   - pkg/hal/pca9685, pkg/hal/feetech: Real hardware backends
package ftcbot
