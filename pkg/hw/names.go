package hw

// Hardware map names for the competition robot.
const (
	FrontLeftMotor  = "fL"
	FrontRightMotor = "fR"
	BackLeftMotor   = "bL"
	BackRightMotor  = "bR"
	IntakeMotor     = "intake"
	ShooterMotor    = "shooter"
	TurretMotor     = "turret"
	LoaderServo     = "loader"
	Camera          = "limelight"
)

// DriveMotors returns the wheel motor names in FL, FR, BL, BR order.
func DriveMotors() [4]string {
	return [4]string{FrontLeftMotor, FrontRightMotor, BackLeftMotor, BackRightMotor}
}
