// Package testsupport holds fixture helpers shared by renderer and CLI tests:
// catalog loading from testdata and golden-file comparison.
package testsupport
