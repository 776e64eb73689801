// Package profile loads the HCL runner profile: build-level defaults
// (failure policy, command timeout) and preset variables that seed the
// variable context of every build this runner executes.
//
//	defaults {
//	  onerror         = "fail"
//	  command_timeout = "10m"
//	}
//
//	variables {
//	  platform = "linux"
//	  reponame = "widgets"
//	}
package profile
