// Package store persists rendered recipe artifacts to disk.
package store
