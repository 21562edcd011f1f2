// Package testutil provides shared fixtures for mamgo tests: random tryte
// generators, option-pattern channel states, and a scripted tangle that
// serves a pre-published message chain through the mock ledger client.
package testutil
