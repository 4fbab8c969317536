// SPDX-License-Identifier: MIT

package density

import "errors"

var (
	// ErrNotBracketed is the cause of a ConvergenceError when the scan finds
	// no sign change of P − P_target.
	ErrNotBracketed = errors.New("density: root not bracketed")

	// ErrNoStableRoot is the cause when every bracketed root is unstable.
	ErrNoStableRoot = errors.New("density: no mechanically stable root")

	// ErrWrongBranch is the cause when the only stable root lies on the
	// other side of the spinodal loop.
	ErrWrongBranch = errors.New("density: no root on the requested branch")
)
