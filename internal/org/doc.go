// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskFlow Contributors

// Package org provides organizations, role-gated membership, and the
// membership registry for TaskFlow.
//
// An Organization is a tenant with a globally-unique URL slug derived from
// its name. Memberships link accounts to organizations with a closed role
// set; the registry enforces the ownership-protection rules (an owner
// membership cannot be removed, and the last owner cannot be demoted).
package org
