// Package model defines the core data structures shared across souschef:
// search candidates, structured recipes, scaling metadata, and run reports.
//
// These types are pure data with small helper methods. They carry no
// behavior that touches the network or filesystem, which keeps them easy
// to construct in tests and safe to serialize to JSON or the history
// database.
package model
