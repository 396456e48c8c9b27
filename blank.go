// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hub12

import "strconv"

// BlankMode is the display blanking state, as requested by the frontend.
type BlankMode int32

// Blanking modes. Only Unblank keeps the scan running, every other mode
// stops it and turns the LEDs off.
const (
	Unblank BlankMode = iota
	Normal
	VsyncSuspend
	HsyncSuspend
	Powerdown
)

const blankModeName = "UnblankNormalVsyncSuspendHsyncSuspendPowerdown"

var blankModeIndex = [...]uint8{0, 7, 13, 25, 37, 46}

func (i BlankMode) String() string {
	if i < 0 || i >= BlankMode(len(blankModeIndex)-1) {
		return "BlankMode(" + strconv.Itoa(int(i)) + ")"
	}
	return blankModeName[blankModeIndex[i]:blankModeIndex[i+1]]
}
