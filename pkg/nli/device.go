package nli

import (
	"log/slog"
	"os"
	"strings"
)

// Device is where the local model runs.
type Device string

const (
	DeviceCPU         Device = "cpu"
	DeviceAccelerator Device = "accelerator"
)

// acceleratorProbes are paths present when a CUDA driver is loaded.
var acceleratorProbes = []string{
	"/proc/driver/nvidia/version",
	"/dev/nvidia0",
}

// detectAccelerator reports whether a GPU is visible to this process. It
// only reads CUDA_VISIBLE_DEVICES; device visibility is the operator's call.
func detectAccelerator() bool {
	if v, ok := os.LookupEnv("CUDA_VISIBLE_DEVICES"); ok {
		v = strings.TrimSpace(v)
		if v == "" || v == "-1" {
			return false
		}
	}
	for _, p := range acceleratorProbes {
		if _, err := os.Stat(p); err == nil {
			return true
		}
	}
	return false
}

// selectDevice picks the execution device. Acceleration is opt-in and its
// absence is never an error.
func selectDevice(accelerated bool, detect func() bool, logger *slog.Logger) Device {
	if !accelerated {
		return DeviceCPU
	}
	if detect() {
		return DeviceAccelerator
	}
	logger.Warn("acceleration requested but no accelerator detected, running on CPU")
	return DeviceCPU
}

// deviceFor reports where backend will run. The NLI pipeline uses a pure Go
// session and always runs on CPU.
func deviceFor(backend string, accelerated bool, detect func() bool, logger *slog.Logger) Device {
	if backend == BackendNLI {
		if accelerated {
			logger.Warn("acceleration requested but the nli backend runs on CPU only")
		}
		return DeviceCPU
	}
	return selectDevice(accelerated, detect, logger)
}
