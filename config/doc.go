// Package config loads the server configuration.
//
// Sources are applied in order, each overriding the previous one:
//
//  1. Default()
//  2. an optional TOML file
//  3. an optional .env file
//  4. process environment variables prefixed with KULTURPOOL_
//
// Values from the .env file never override variables already present in the
// process environment. The merged result is validated before it is returned.
//
// Durations are written as Go duration strings ("30s", "1h") in both the
// TOML file and the environment.
//
// # Example
//
//	cfg, err := config.Load("kulturpool.toml")
//	if err != nil {
//		return err
//	}
//	client, _ := kulturpool.NewClient(cfg.Client())
//	svc, _ := heritage.New(cfg.Service(), client)
package config
