// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdf

import (
	"errors"
	"os/exec"
	"strings"

	"github.com/pdiddy/md-converter/pkg/types"
)

// engineMarkers are substrings that identify a launch error caused by the
// engine itself rather than by the environment around it.
var engineMarkers = []string{"chrome", "chromium", "headless_shell"}

// IsNativeLoadFailure reports whether err means the native engine could
// not be loaded or started. Only such errors let the chain fall back; any
// other native error is a genuine conversion failure. Engine markers are
// matched against launch errors only, never against messages that may
// carry user paths.
func IsNativeLoadFailure(err error) bool {
	if err == nil {
		return false
	}

	var unavailable *NativeUnavailableError
	if errors.As(err, &unavailable) || errors.Is(err, exec.ErrNotFound) {
		return true
	}

	var launch *LaunchError
	if !errors.As(err, &launch) {
		return false
	}
	msg := strings.ToLower(launch.Err.Error())
	for _, m := range engineMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// classify maps a backend error to the outcome it records. ok is false for
// errors that must stop the chain.
func classify(kind types.BackendKind, err error) (outcome types.Outcome, ok bool) {
	if kind == types.BackendNative {
		if IsNativeLoadFailure(err) {
			return types.OutcomeSkipped, true
		}
		return types.OutcomeFailed, false
	}

	var unavailable *UnavailableError
	if errors.As(err, &unavailable) {
		return types.OutcomeSkipped, true
	}
	var failed *FailedError
	if errors.As(err, &failed) {
		return types.OutcomeFailed, true
	}
	return types.OutcomeFailed, false
}
