// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for bxml packages.
//
// [WriteFile] and [ReadFile] manage fixture files under a test's
// temporary directory. [Isolate] clears the environment variables that
// would let a developer's own configuration leak into a test.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
package testutil
