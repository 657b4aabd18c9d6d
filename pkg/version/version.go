package version

// EmptyValue is the value we use when running a binary that wasn't built with
// the version linker flag. This is helpful for telling when we're running in a
// unit test.
const EmptyValue = "unset"

// Version is the latest tag on git for releases. It's set at build time with
// `-ldflags "-X github.com/sidkik/fss/pkg/version.Version=<version>"`.
var Version = EmptyValue
