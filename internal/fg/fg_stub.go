//go:build !windows

package fg

// AppID always reports an unknown foreground application on
// non-Windows builds.
func AppID() string { return "" }
