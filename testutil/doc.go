// Package testutil provides synthetic device models for testing the
// matching engine without an instrument: exactly invertible input→image
// mappings, optional noise, and helpers to pre-measure seed pools.
package testutil
