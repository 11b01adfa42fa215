// Package container defines the minimal associative-container
// capabilities the grid generator is written against, plus two
// reference implementations.
//
// The generator never names a concrete container type: it receives a
// Factory and works through the Map and Seq contracts only. Builtin
// wraps the native Go map; HashTable is a from-scratch chained table
// driven by a caller-supplied hash function. Any other conforming
// implementation may be substituted without behavior change.
package container
