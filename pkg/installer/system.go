package installer

import "context"

// System abstracts the native package tooling, one method per capability.
// The dispatcher and its tests work against this interface; DISM is the
// real implementation.
type System interface {
	// PackageInstalled reports whether an offline package with the given
	// display name is registered as installed.
	PackageInstalled(ctx context.Context, displayName string) (bool, error)

	// AddPackage installs a package cabinet from path, writing the native
	// installer log to logPath (empty for none). It returns the native exit
	// code; the error is non-nil only when the tool could not be invoked.
	AddPackage(ctx context.Context, path, logPath string) (int, error)

	// AppInstalled reports whether an app package with the given display
	// name is present in the app inventory.
	AppInstalled(ctx context.Context, displayName string) (bool, error)

	// AddAppPackage installs an app package from path.
	AddAppPackage(ctx context.Context, path string) error

	// RunInstaller launches an installer executable with silent, no-restart
	// arguments and returns its exit code.
	RunInstaller(ctx context.Context, path string) (int, error)
}
