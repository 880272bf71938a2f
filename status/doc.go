// Copyright 2021 The retryx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package status contains the Status type, the record of progress and
// outcome kept for a single retried call execution.
package status
