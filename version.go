package flo

// Version is the release of this module, overridden at link time by release builds.
var Version = "0.1.0"
