package system

// Version is overwritten at build time with -ldflags.
var Version = "develop"
