// Package misc keeps build time program information.
package misc

// set by linker, see Taskfile.yml
var (
	appName = "xmp"
	version = "dev"
	gitHash = "unknown"
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}
