// Package log builds slog loggers that mask credentials before they
// reach the output.
//
// The inference API key travels through flags, the environment, and the
// config file, and in verbose mode souschef logs its HTTP and inference
// activity in detail. SecureHandler sits between the logger and its
// slog handler and replaces credential-shaped attributes (API keys,
// bearer tokens, auth headers) with a fixed mask, so a pasted debug log
// never leaks a key.
//
//	logger := log.NewSecureLogger(os.Stderr, true)
//	logger.Info("inference request",
//	    "api_key", "sk-abc123",   // logged as ***REDACTED***
//	    "endpoint", "http://127.0.0.1:1234/v1",
//	)
//	slog.SetDefault(logger)
package log
