// Package config provides configuration management for souschef.
package config
