// Copyright 2021 The retryx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package policy provides the immutable retry Policy consumed by the
// retry executor, and the classification of attempt outcomes.
//
// A Policy is built once with New from a list of options, validated at
// construction time, and may then be shared by any number of concurrent
// executions:
//
//	p, err := policy.New(
//		policy.MaxAttempts(5),
//		policy.Delay(100*time.Millisecond),
//		policy.ExponentialBackoff(),
//		policy.RetryOnAnyErrorExcluding(policy.As[*os.PathError]()),
//	)
//
// New returns a *ConfigError naming the violated rule if the options
// are incomplete or conflict with each other, for example if no backoff
// strategy is chosen, or two error matching modes are chosen.
//
// Policies can also be described in YAML and loaded with ParseConfig.
package policy
