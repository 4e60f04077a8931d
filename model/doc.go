// Package model defines the shared value types of the storage engine:
// row locators, column identifiers and projected row views.
//
// The types here are deliberately dependency-free so that every other
// package (block, pk, store) can share them without import cycles.
package model
