// Package pooling reduces every neighborhood of a GroupedSet to one vector.
package pooling
