// Package config provides configuration parsing for fiberctl.
//
// The configuration is stored in fiber.yaml. Every field is optional;
// missing fields keep their defaults and unknown fields are rejected.
//
// # Configuration File Structure
//
//	scheduler:
//	  frameBudget: 16ms
//	  idleTimeout: 500ms
//	  yieldThreshold: 1ms
//	log:
//	  level: info
//	  format: text
//	metrics:
//	  namespace: fiber
//	inspect:
//	  addr: ":7070"
//
// # Usage
//
//	cfg, err := config.LoadFile("fiber.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Frame budget:", cfg.Scheduler.FrameBudget)
package config
