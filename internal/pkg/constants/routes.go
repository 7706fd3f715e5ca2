package constants

// Static route constants
const (
	PublicRoute   = "/"
	LoginRoute    = "/login"
	LogoutRoute   = "/logout"
	// ResetPasswordRoute is the page linked from the reset mail.
	ResetPasswordRoute = "/reset-password"
	CalendarRoute = "/calendar"
	// UploadsRoute serves files of the local blob driver.
	UploadsRoute = "/uploads"
	APIRoute     = "/api/v1"
)
