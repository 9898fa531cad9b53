package version

const (
	AppName    = "Sensum"
	AppVersion = "2.0.0"
)
