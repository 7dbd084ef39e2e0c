/*
Package main provides end-to-end tests for campi.

# Package Structure

	test/e2e/
	├── main.go          Entry point: flags, config, InfraManager setup, Ginkgo runner
	├── tests.go         Ginkgo specs (camera server, admin api)
	├── doc.go           This file
	├── infra/
	│   ├── infra.go     InfraManager interface, CampiConfig, token signing
	│   ├── process.go   ProcessInfraManager (runs the campi binary)
	│   └── external.go  ExternalInfraManager (no-op, externally managed)
	└── service/
	    ├── camera.go    CameraSvc: raw TCP client, one request per connection
	    └── admin.go     AdminSvc: HTTP client for the admin api with JWT auth

# InfraManager

	type InfraManager interface {
	    StartCampi(cfg) / StopCampi()
	    GenerateToken(subject)
	}

Two implementations:
  - ProcessInfraManager: starts `campi run` as a child process and stops it
    with SIGTERM, exercising the graceful drain.
  - ExternalInfraManager: no-op; campi is already running.

Selected via the -infra-mode flag ("process" or "external").

# Running

	go build -o bin/campi ./cmd/campi
	go run ./test/e2e -campi-binary ./bin/campi
*/
package main
